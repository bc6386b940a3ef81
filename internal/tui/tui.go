// Package tui implements the interactive search dashboard.
package tui

import (
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/charmbracelet/lipgloss"

	"github.com/sitescout-io/sitescout/internal/catalog"
	"github.com/sitescout-io/sitescout/internal/config"
	"github.com/sitescout-io/sitescout/internal/models"
	"github.com/sitescout-io/sitescout/internal/orchestrator"
)

// Run launches the dashboard. With a non-empty query the search is
// dispatched immediately; otherwise the dashboard opens on the query
// prompt. While the dashboard owns the terminal, log output goes to
// ~/.sitescout/sitescout.log.
func Run(orch *orchestrator.Orchestrator, cat *catalog.Catalog, query string, sites []models.Site) error {
	restoreLog := redirectLog()
	defer restoreLog()

	watcher, err := catalog.Watch(cat)
	if err != nil {
		log.Printf("[tui] catalog watch unavailable: %v", err)
	} else {
		defer watcher.Close()
	}

	model := NewModel(orch, cat, watcher, query, sites)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	_, err = p.Run()
	return err
}

// redirectLog points the standard logger at the debug log file so
// stream and orchestrator logging cannot corrupt the alt screen.
func redirectLog() func() {
	path, err := config.GlobalLogFile()
	if err != nil {
		log.SetOutput(io.Discard)
		return func() { log.SetOutput(os.Stderr) }
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.SetOutput(io.Discard)
		return func() { log.SetOutput(os.Stderr) }
	}
	log.SetOutput(f)
	return func() {
		log.SetOutput(os.Stderr)
		_ = f.Close()
	}
}

// center renders content centered in the given box.
func center(content string, width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}
