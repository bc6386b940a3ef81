// Package stream decodes the line-oriented event protocol emitted by the
// remote automation service. A stream is a sequence of frames of the form
// "data: <json>" separated by blank lines; anything else on the wire is
// noise and is skipped.
package stream

import "encoding/json"

// Marker is the prefix that identifies an event frame in the stream.
const Marker = "data: "

// Event kinds known to this client. The kind field is an open set: the
// service may introduce new kinds at any time, so unknown kinds are carried
// through rather than rejected.
const (
	KindStep      = "STEP"
	KindProgress  = "PROGRESS"
	KindComplete  = "COMPLETE"
	KindError     = "ERROR"
	KindStreaming = "STREAMING_URL"
)

// Status markers used alongside the kind field.
const (
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

// Event is one decoded unit of progress, result, or error information from
// an agent's stream. Events are immutable once decoded and are applied in
// strict arrival order.
type Event struct {
	Type         string          `json:"type"`
	Status       string          `json:"status"`
	Message      string          `json:"message,omitempty"`
	Purpose      string          `json:"purpose,omitempty"`
	ResultJSON   json.RawMessage `json:"resultJson,omitempty"`
	StreamingURL string          `json:"streamingUrl,omitempty"`
	Step         int             `json:"step,omitempty"`
	TotalSteps   int             `json:"totalSteps,omitempty"`

	// Raw holds the original payload so fields this client does not know
	// about survive untouched.
	Raw json.RawMessage `json:"-"`
}

// IsComplete reports whether the event signals successful completion.
func (e *Event) IsComplete() bool {
	return e.Type == KindComplete || e.Status == StatusCompleted
}

// IsFailure reports whether the event signals an agent-reported failure.
func (e *Event) IsFailure() bool {
	return e.Type == KindError || e.Status == StatusFailed
}

// IsStep reports whether the event should be treated as progress: an
// explicit step kind, or any non-terminal event that carries text.
func (e *Event) IsStep() bool {
	if e.IsComplete() || e.IsFailure() {
		return false
	}
	if e.Type == KindStep || e.Type == KindProgress {
		return true
	}
	return e.StepMessage() != ""
}

// StepMessage returns the human-readable progress text for the event,
// preferring message over purpose.
func (e *Event) StepMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Purpose
}
