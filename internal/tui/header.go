package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sitescout-io/sitescout/internal/agent"
	"github.com/sitescout-io/sitescout/internal/orchestrator"
)

func renderHeader(snap orchestrator.Snapshot, width int) string {
	brand := brandStyle.Render("Sitescout")

	left := " " + brand
	if snap.Query != "" {
		left += "  " + queryStyle.Render(snap.Query)
	}

	right := renderCounts(snap) + "  " + renderPhaseBadge(snap.Phase) + " "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	return headerStyle.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

func renderPhaseBadge(phase orchestrator.Phase) string {
	switch phase {
	case orchestrator.PhaseSearching:
		return phaseSearchingStyle.Render("● Searching")
	case orchestrator.PhaseResults:
		return phaseResultsStyle.Render("● Results")
	default:
		return phaseInputStyle.Render("● Ready")
	}
}

func renderCounts(snap orchestrator.Snapshot) string {
	if len(snap.Agents) == 0 {
		return ""
	}

	active := snap.Counts[agent.StatusPending] +
		snap.Counts[agent.StatusConnecting] +
		snap.Counts[agent.StatusRunning]
	failed := snap.Counts[agent.StatusError] + snap.Counts[agent.StatusCancelled]

	parts := []string{
		countDoneStyle.Render(fmt.Sprintf("%d✓", snap.Counts[agent.StatusComplete])),
	}
	if failed > 0 {
		parts = append(parts, countErrorStyle.Render(fmt.Sprintf("%d✗", failed)))
	}
	if active > 0 {
		parts = append(parts, countActiveStyle.Render(fmt.Sprintf("%d…", active)))
	}
	return strings.Join(parts, " ")
}
