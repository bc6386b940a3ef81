package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/sitescout-io/sitescout/internal/orchestrator"
)

// confirmMode values.
const (
	confirmNone = 0
	confirmQuit = 1
)

func renderStatusBar(m *Model, width int) string {
	if m.confirmMode == confirmQuit {
		return renderConfirmBar("Search running. Quit? (y/n)", width)
	}

	if m.err != nil {
		return renderErrorBar(m.err.Error(), width)
	}

	hints := getKeyHints(m)
	left := " " + hints

	right := ""
	if m.snap.Phase == orchestrator.PhaseResults && !m.snap.FinishedAt.IsZero() {
		elapsed := m.snap.FinishedAt.Sub(m.snap.StartedAt).Round(100 * time.Millisecond)
		right = lipgloss.NewStyle().Foreground(colorGreen).Render(elapsed.String()) + " "
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	return statusBarStyle.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

func getKeyHints(m *Model) string {
	switch m.snap.Phase {
	case orchestrator.PhaseInput:
		return keyHint("Enter", "search") + "  " + keyHint("Esc", "quit")
	case orchestrator.PhaseSearching:
		return keyHint("j/k", "navigate") + "  " + keyHint("Tab", "switch panel") + "  " +
			keyHint("c", "cancel") + "  " + keyHint("q", "quit")
	default:
		return keyHint("j/k", "navigate") + "  " + keyHint("Tab", "switch panel") + "  " +
			keyHint("n", "new search") + "  " + keyHint("q", "quit")
	}
}

func keyHint(k, desc string) string {
	if k == "" {
		return hintStyle.Render(desc)
	}
	return keyStyle.Render(k) + " " + hintStyle.Render(desc)
}

func renderConfirmBar(msg string, width int) string {
	return statusBarStyle.
		Background(colorYellow).
		Foreground(lipgloss.AdaptiveColor{Light: "0", Dark: "0"}).
		Width(width).
		Render(" " + msg)
}

func renderErrorBar(msg string, width int) string {
	return statusBarStyle.
		Background(colorRed).
		Width(width).
		Render(" " + msg)
}
