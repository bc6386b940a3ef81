package stream

import (
	"encoding/json"
	"strings"
)

// DecodeStats counts lines a decode callsite dropped. Skipped frames are
// never fatal to a session, but they should not vanish silently either; the
// session logs these counters when its stream ends.
type DecodeStats struct {
	Events    int // lines decoded into events
	Noise     int // non-blank lines without the data marker
	Malformed int // marked lines whose payload failed to parse
}

// DecodeLine parses one framed line into an Event. Lines that do not carry
// the data marker, and marked lines whose JSON payload does not parse, are
// not events; both are skipped without error. DecodeLine keeps no state of
// its own; stats, when non-nil, records what was skipped.
func DecodeLine(line string, stats *DecodeStats) (*Event, bool) {
	if !strings.HasPrefix(line, Marker) {
		if stats != nil && strings.TrimSpace(line) != "" {
			stats.Noise++
		}
		return nil, false
	}

	payload := line[len(Marker):]
	var ev Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		if stats != nil {
			stats.Malformed++
		}
		return nil, false
	}
	ev.Raw = json.RawMessage(payload)
	if stats != nil {
		stats.Events++
	}
	return &ev, true
}
