package stream

import (
	"reflect"
	"testing"
)

func TestFramerEmitsCompleteLines(t *testing.T) {
	var f Framer

	lines := f.Push([]byte("one\ntwo\npar"))
	want := []string{"one", "two"}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("Push() = %v, want %v", lines, want)
	}

	lines = f.Push([]byte("tial\n"))
	want = []string{"partial"}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("Push() = %v, want %v", lines, want)
	}
}

func TestFramerStripsCarriageReturn(t *testing.T) {
	var f Framer
	lines := f.Push([]byte("alpha\r\nbeta\r\n"))
	want := []string{"alpha", "beta"}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("Push() = %v, want %v", lines, want)
	}
}

func TestFramerDiscardsTrailingPartial(t *testing.T) {
	var f Framer
	f.Push([]byte("complete\nincomple"))
	if dropped := f.Close(); dropped != len("incomple") {
		t.Errorf("Close() dropped %d bytes, want %d", dropped, len("incomple"))
	}
	// Buffer must be empty afterwards
	if dropped := f.Close(); dropped != 0 {
		t.Errorf("second Close() dropped %d bytes, want 0", dropped)
	}
}

// decodeAll frames and decodes a stream delivered in fixed-size chunks,
// returning the ordered event sequence.
func decodeAll(t *testing.T, raw []byte, chunkSize int) []Event {
	t.Helper()
	var f Framer
	var events []Event
	for start := 0; start < len(raw); start += chunkSize {
		end := start + chunkSize
		if end > len(raw) {
			end = len(raw)
		}
		for _, line := range f.Push(raw[start:end]) {
			if ev, ok := DecodeLine(line, nil); ok {
				events = append(events, *ev)
			}
		}
	}
	f.Close()
	return events
}

func TestFramerChunkSplitInvariance(t *testing.T) {
	// Multi-byte characters make every byte offset a potential mid-rune
	// split point.
	raw := []byte("data: {\"type\":\"STEP\",\"message\":\"naviguer à l'accueil\"}\n" +
		"\n" +
		"data: {\"type\":\"PROGRESS\",\"purpose\":\"検索結果を収集中\"}\n" +
		"\n" +
		"data: {\"type\":\"COMPLETE\",\"status\":\"COMPLETED\",\"resultJson\":{\"title\":\"héllo\"}}\n" +
		"\n")

	reference := decodeAll(t, raw, len(raw))
	if len(reference) != 3 {
		t.Fatalf("reference decode produced %d events, want 3", len(reference))
	}

	for chunkSize := 1; chunkSize <= 32; chunkSize++ {
		events := decodeAll(t, raw, chunkSize)
		if len(events) != len(reference) {
			t.Fatalf("chunk size %d: got %d events, want %d", chunkSize, len(events), len(reference))
		}
		for i := range events {
			if events[i].Type != reference[i].Type ||
				events[i].StepMessage() != reference[i].StepMessage() ||
				string(events[i].ResultJSON) != string(reference[i].ResultJSON) {
				t.Errorf("chunk size %d: event %d = %+v, want %+v", chunkSize, i, events[i], reference[i])
			}
		}
	}
}
