package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sitescout-io/sitescout/internal/catalog"
	"github.com/sitescout-io/sitescout/internal/models"
	"github.com/sitescout-io/sitescout/internal/orchestrator"
)

func dispatchCmd(orch *orchestrator.Orchestrator, query string, sites []models.Site) tea.Cmd {
	return func() tea.Msg {
		if err := orch.Dispatch(query, sites); err != nil {
			return DispatchFailedMsg{Err: err}
		}
		return StateChangedMsg{}
	}
}

// waitForUpdateCmd blocks on the orchestrator's coalesced change signal.
// There is exactly one waiter at a time; the model re-issues it when the
// resulting message carries Resubscribe.
func waitForUpdateCmd(orch *orchestrator.Orchestrator) tea.Cmd {
	return func() tea.Msg {
		<-orch.Updates()
		return StateChangedMsg{Resubscribe: true}
	}
}

// watchCatalogCmd blocks until the catalog watcher reports a reload.
// The model re-issues it after every CatalogChangedMsg.
func watchCatalogCmd(w *catalog.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-w.Changed(); !ok {
			return nil
		}
		return CatalogChangedMsg{}
	}
}

func spinnerTick() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(_ time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

func clearErrorAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(_ time.Time) tea.Msg {
		return ClearErrorMsg{}
	})
}
