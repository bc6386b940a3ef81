package agent

import (
	"encoding/json"
	"testing"

	"github.com/sitescout-io/sitescout/internal/stream"
)

func TestMachineHappyPath(t *testing.T) {
	m := NewMachine()
	if m.Status() != StatusPending {
		t.Fatalf("initial status = %s, want %s", m.Status(), StatusPending)
	}

	m.Connecting()
	if m.Status() != StatusConnecting {
		t.Fatalf("status = %s, want %s", m.Status(), StatusConnecting)
	}

	ch := m.Apply(&stream.Event{Type: stream.KindStep, Message: "opening page"})
	if !ch.Status || !ch.Step {
		t.Errorf("first step change = %+v, want status and step", ch)
	}
	if m.Status() != StatusRunning || m.StepMessage() != "opening page" {
		t.Errorf("after step: status=%s step=%q", m.Status(), m.StepMessage())
	}

	ch = m.Apply(&stream.Event{Type: stream.KindComplete, Status: stream.StatusCompleted, ResultJSON: json.RawMessage(`{"r":1}`)})
	if !ch.Completed {
		t.Errorf("complete change = %+v, want Completed", ch)
	}
	if m.Status() != StatusComplete || string(m.Result()) != `{"r":1}` {
		t.Errorf("after complete: status=%s result=%s", m.Status(), m.Result())
	}
	if len(m.Log()) != 2 {
		t.Errorf("log length = %d, want 2", len(m.Log()))
	}
}

func TestMachineTerminalIdempotence(t *testing.T) {
	m := NewMachine()
	m.Apply(&stream.Event{Type: stream.KindComplete, Status: stream.StatusCompleted, ResultJSON: json.RawMessage(`{"r":1}`)})

	// Later events, faults, and cancels must not alter the captured result.
	if ch := m.Apply(&stream.Event{Type: stream.KindError, Message: "late failure"}); ch.Any() || ch.Failed {
		t.Errorf("event after terminal had effect: %+v", ch)
	}
	if ch := m.Fail("transport blip"); ch.Failed {
		t.Error("Fail after terminal had effect")
	}
	if ch := m.Cancel(); ch.Cancelled {
		t.Error("Cancel after terminal had effect")
	}
	if ch := m.CompleteWith(json.RawMessage(`{"r":2}`)); ch.Completed {
		t.Error("CompleteWith after terminal had effect")
	}

	if m.Status() != StatusComplete || string(m.Result()) != `{"r":1}` {
		t.Errorf("terminal state mutated: status=%s result=%s", m.Status(), m.Result())
	}
	if len(m.Log()) != 1 {
		t.Errorf("log grew after terminal: %d entries", len(m.Log()))
	}
}

func TestMachineErrorCapturesReason(t *testing.T) {
	tests := []struct {
		name   string
		event  stream.Event
		reason string
	}{
		{
			name:   "error with message",
			event:  stream.Event{Type: stream.KindError, Message: "page blocked the agent"},
			reason: "page blocked the agent",
		},
		{
			name:   "failed status without message",
			event:  stream.Event{Status: stream.StatusFailed},
			reason: "agent automation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine()
			ch := m.Apply(&tt.event)
			if !ch.Failed {
				t.Fatalf("change = %+v, want Failed", ch)
			}
			if m.Status() != StatusError || m.ErrReason() != tt.reason {
				t.Errorf("status=%s reason=%q, want %s/%q", m.Status(), m.ErrReason(), StatusError, tt.reason)
			}
		})
	}
}

func TestMachinePreviewURLFirstWins(t *testing.T) {
	m := NewMachine()

	ch := m.Apply(&stream.Event{Type: stream.KindStreaming, StreamingURL: "https://view.example/a"})
	if !ch.PreviewURL {
		t.Fatal("first preview URL not captured")
	}
	// Preview-only events carry no status movement.
	if ch.Status {
		t.Error("preview event moved status")
	}

	ch = m.Apply(&stream.Event{Type: stream.KindStep, Message: "working", StreamingURL: "https://view.example/b"})
	if ch.PreviewURL {
		t.Error("duplicate preview URL captured")
	}
	if m.PreviewURL() != "https://view.example/a" {
		t.Errorf("PreviewURL = %q, want first capture", m.PreviewURL())
	}
}

func TestMachineCancelNonTerminal(t *testing.T) {
	m := NewMachine()
	m.Connecting()
	m.Apply(&stream.Event{Type: stream.KindStep, Message: "working"})

	if ch := m.Cancel(); !ch.Cancelled {
		t.Fatal("Cancel on running machine had no effect")
	}
	if m.Status() != StatusCancelled {
		t.Errorf("status = %s, want %s", m.Status(), StatusCancelled)
	}
	// Cancelled is caller-initiated, not a failure.
	if m.Status().Failed() {
		t.Error("Cancelled counted as Failed")
	}
	// A second cancel is a no-op.
	if ch := m.Cancel(); ch.Cancelled {
		t.Error("second Cancel had effect")
	}
}

func TestMachineKeepsDuplicateStepsInLog(t *testing.T) {
	m := NewMachine()
	for i := 0; i < 3; i++ {
		m.Apply(&stream.Event{Type: stream.KindStep, Message: "retrying selector"})
	}
	if len(m.Log()) != 3 {
		t.Errorf("log length = %d, want 3 (duplicates are authoritative)", len(m.Log()))
	}
}

func TestMachineUnknownKindWithMessageIsStep(t *testing.T) {
	m := NewMachine()
	ch := m.Apply(&stream.Event{Type: "CAPTCHA_CHECK", Message: "solving challenge"})
	if !ch.Step || m.Status() != StatusRunning {
		t.Errorf("unknown kind with message: change=%+v status=%s", ch, m.Status())
	}
}
