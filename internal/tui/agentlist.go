package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/sitescout-io/sitescout/internal/agent"
	"github.com/sitescout-io/sitescout/internal/orchestrator"
)

// Spinner frames for running agent animation.
var spinnerFrames = []string{"●", "○"}

// AgentList is the agent roster for the left panel.
type AgentList struct {
	agents       []orchestrator.AgentView
	cursor       int
	scrollOffset int
	height       int
	spinnerFrame int
}

// NewAgentList creates a new agent list.
func NewAgentList() *AgentList {
	return &AgentList{}
}

// SetAgents replaces the roster. Dispatch order is preserved, so the
// cursor keeps pointing at the same agent across refreshes.
func (al *AgentList) SetAgents(agents []orchestrator.AgentView) {
	al.agents = agents
	if al.cursor >= len(agents) {
		al.cursor = len(agents) - 1
	}
	if al.cursor < 0 {
		al.cursor = 0
	}
}

// SetHeight sets the visible height.
func (al *AgentList) SetHeight(h int) {
	al.height = h
}

// Selected returns the agent under the cursor, or nil.
func (al *AgentList) Selected() *orchestrator.AgentView {
	if al.cursor < 0 || al.cursor >= len(al.agents) {
		return nil
	}
	return &al.agents[al.cursor]
}

// MoveUp moves the cursor up.
func (al *AgentList) MoveUp() {
	if al.cursor > 0 {
		al.cursor--
		al.ensureVisible()
	}
}

// MoveDown moves the cursor down.
func (al *AgentList) MoveDown() {
	if al.cursor < len(al.agents)-1 {
		al.cursor++
		al.ensureVisible()
	}
}

// Tick advances the spinner frame.
func (al *AgentList) Tick() {
	al.spinnerFrame = (al.spinnerFrame + 1) % len(spinnerFrames)
}

func (al *AgentList) ensureVisible() {
	if al.cursor < al.scrollOffset {
		al.scrollOffset = al.cursor
	}
	if al.cursor >= al.scrollOffset+al.height {
		al.scrollOffset = al.cursor - al.height + 1
	}
}

// View renders the agent list.
func (al *AgentList) View(width int) string {
	if len(al.agents) == 0 {
		return lipgloss.NewStyle().Foreground(colorDim).Render("No agents dispatched.")
	}

	var lines []string
	end := al.scrollOffset + al.height
	if end > len(al.agents) {
		end = len(al.agents)
	}

	for i := al.scrollOffset; i < end; i++ {
		a := al.agents[i]
		line := fmt.Sprintf("%s %s", al.badge(a), al.label(a))

		// Truncate to fit panel width (2 for indent prefix)
		maxWidth := width - 2
		if maxWidth > 0 {
			line = ansi.Truncate(line, maxWidth, "…")
		}

		if i == al.cursor {
			line = selectedItemStyle.Width(width).Render(line)
		}
		lines = append(lines, "  "+line)
	}

	// Scroll indicators
	if al.scrollOffset > 0 {
		lines = append([]string{lipgloss.NewStyle().Foreground(colorDim).Render("  ▲ more")}, lines...)
	}
	if end < len(al.agents) {
		lines = append(lines, lipgloss.NewStyle().Foreground(colorDim).Render("  ▼ more"))
	}

	return strings.Join(lines, "\n")
}

func (al *AgentList) badge(a orchestrator.AgentView) string {
	switch a.Status {
	case agent.StatusPending:
		return agentPendingStyle.Render("[ ]")
	case agent.StatusConnecting:
		return agentActiveStyle.Render("[~]")
	case agent.StatusRunning:
		frame := spinnerFrames[al.spinnerFrame%len(spinnerFrames)]
		return agentActiveStyle.Render("[" + frame + "]")
	case agent.StatusComplete:
		return agentCompleteStyle.Render("[✓]")
	case agent.StatusError:
		return agentErrorStyle.Render("[✗]")
	case agent.StatusCancelled:
		return agentCancelledStyle.Render("[-]")
	}
	return "[ ]"
}

func (al *AgentList) label(a orchestrator.AgentView) string {
	name := lipgloss.NewStyle().Bold(true).Render(a.Name)
	switch a.Status {
	case agent.StatusError:
		return name + " " + agentErrorStyle.Render(a.Err)
	case agent.StatusComplete:
		return name + " " + agentCompleteStyle.Render("done")
	case agent.StatusCancelled:
		return name + " " + agentCancelledStyle.Render("cancelled")
	}
	if a.StepMessage != "" {
		return name + " " + stepStyle.Render(a.StepMessage)
	}
	return name
}
