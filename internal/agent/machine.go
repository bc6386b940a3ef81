package agent

import (
	"encoding/json"

	"github.com/sitescout-io/sitescout/internal/stream"
)

// Machine drives one agent's status from the events on its stream. It is
// purely computational: the session feeds it decoded events and transport
// faults in arrival order, and it reports what changed so the owner can fan
// updates out. Once a terminal status is reached every further input is
// ignored, so a captured result or error reason can never be overwritten.
type Machine struct {
	status      Status
	stepMessage string
	previewURL  string
	result      json.RawMessage
	errReason   string
	log         []stream.Event
}

// Change describes the side effects of one transition.
type Change struct {
	Status     bool // status moved
	Step       bool // current step message updated
	PreviewURL bool // preview URL captured
	Completed  bool // result captured, terminal
	Failed     bool // error reason captured, terminal
	Cancelled  bool // caller-initiated abort, terminal
}

// Any reports whether the transition had any effect.
func (c Change) Any() bool {
	return c.Status || c.Step || c.PreviewURL
}

// NewMachine returns a machine in the Pending state.
func NewMachine() *Machine {
	return &Machine{status: StatusPending}
}

// Connecting marks the request as issued, first byte not yet seen.
func (m *Machine) Connecting() Change {
	if m.status != StatusPending {
		return Change{}
	}
	m.status = StatusConnecting
	return Change{Status: true}
}

// Apply processes one decoded event. Events arriving after a terminal
// status are dropped entirely, including their log append.
func (m *Machine) Apply(ev *stream.Event) Change {
	if m.status.Terminal() {
		return Change{}
	}

	var ch Change
	m.log = append(m.log, *ev)

	// Preview URL: first non-empty wins. The protocol allows repeats but
	// only the first is meaningful.
	if ev.StreamingURL != "" && m.previewURL == "" {
		m.previewURL = ev.StreamingURL
		ch.PreviewURL = true
	}

	switch {
	case ev.IsComplete():
		m.status = StatusComplete
		m.result = ev.ResultJSON
		ch.Status, ch.Completed = true, true

	case ev.IsFailure():
		m.status = StatusError
		m.errReason = ev.StepMessage()
		if m.errReason == "" {
			m.errReason = "agent automation failed"
		}
		ch.Status, ch.Failed = true, true

	case ev.IsStep():
		if m.status != StatusRunning {
			m.status = StatusRunning
			ch.Status = true
		}
		m.stepMessage = ev.StepMessage()
		ch.Step = true
	}

	return ch
}

// Fail records a transport-level fault (bad response status, connection
// drop, read error, idle timeout) as a terminal error. No-op once terminal.
func (m *Machine) Fail(reason string) Change {
	if m.status.Terminal() {
		return Change{}
	}
	m.status = StatusError
	m.errReason = reason
	return Change{Status: true, Failed: true}
}

// Cancel records a caller-initiated abort. It never overwrites a terminal
// state, so a result or error captured earlier survives a late cancel.
func (m *Machine) Cancel() Change {
	if m.status.Terminal() {
		return Change{}
	}
	m.status = StatusCancelled
	return Change{Status: true, Cancelled: true}
}

// CompleteWith records a result that arrived outside the stream, such as a
// cache hit. No-op once terminal.
func (m *Machine) CompleteWith(result json.RawMessage) Change {
	if m.status.Terminal() {
		return Change{}
	}
	m.status = StatusComplete
	m.result = result
	return Change{Status: true, Completed: true}
}

// Status returns the current lifecycle state.
func (m *Machine) Status() Status { return m.status }

// StepMessage returns the latest progress text.
func (m *Machine) StepMessage() string { return m.stepMessage }

// PreviewURL returns the captured live-view URL, if any.
func (m *Machine) PreviewURL() string { return m.previewURL }

// Result returns the captured result payload for a Complete machine.
func (m *Machine) Result() json.RawMessage { return m.result }

// ErrReason returns the captured failure reason for an Error machine.
func (m *Machine) ErrReason() string { return m.errReason }

// Log returns a copy of the ordered event log. Duplicate step events are
// kept; collapsing repeats is a display concern.
func (m *Machine) Log() []stream.Event {
	out := make([]stream.Event, len(m.log))
	copy(out, m.log)
	return out
}
