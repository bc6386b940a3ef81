// Package agent runs one streaming automation session per target site and
// tracks its lifecycle from dispatch to a terminal state.
package agent

// Status is the lifecycle state of a single agent session.
type Status string

// Session statuses. Pending and Connecting are transient; Complete, Error,
// and Cancelled are terminal.
const (
	StatusPending    Status = "pending"
	StatusConnecting Status = "connecting"
	StatusRunning    Status = "running"
	StatusComplete   Status = "complete"
	StatusError      Status = "error"
	StatusCancelled  Status = "cancelled"
)

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusComplete || s == StatusError || s == StatusCancelled
}

// Failed reports whether the status counts as a failure for aggregate
// metrics. Cancelled is terminal but caller-initiated, so it is excluded.
func (s Status) Failed() bool {
	return s == StatusError
}
