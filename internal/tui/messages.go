package tui

// StateChangedMsg signals that the orchestrator state moved and the
// model should take a fresh snapshot. Resubscribe is set when the
// message came from the update subscription, which must be re-issued.
type StateChangedMsg struct {
	Resubscribe bool
}

// CatalogChangedMsg signals that sites.yaml was edited and reloaded.
type CatalogChangedMsg struct{}

// DispatchFailedMsg carries a rejected dispatch.
type DispatchFailedMsg struct {
	Err error
}

// ErrorMsg carries an error to display in the status bar.
type ErrorMsg struct {
	Err error
}

// ClearErrorMsg clears the error display.
type ClearErrorMsg struct{}

// spinnerTickMsg advances the animated spinner for active agents.
type spinnerTickMsg struct{}
