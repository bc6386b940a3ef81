package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/sitescout-io/sitescout/internal/orchestrator"
)

// LogViewer shows one agent's step history and captured result in the
// right panel.
type LogViewer struct {
	viewport viewport.Model
	width    int
	height   int
	agentID  string
}

// NewLogViewer creates a new log viewer.
func NewLogViewer() *LogViewer {
	vp := viewport.New(80, 24)
	return &LogViewer{
		viewport: vp,
	}
}

// SetSize updates dimensions.
func (l *LogViewer) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.viewport.Width = width
	// Header takes 3 lines above the viewport.
	vpHeight := height - 3
	if vpHeight < 1 {
		vpHeight = 1
	}
	l.viewport.Height = vpHeight
}

// SetAgent renders an agent into the viewport. Scroll position is kept
// for refreshes of the same agent and reset when the selection moves.
func (l *LogViewer) SetAgent(a *orchestrator.AgentView) {
	if a == nil {
		l.agentID = ""
		l.viewport.SetContent("")
		return
	}

	atBottom := l.viewport.AtBottom()
	changed := a.ID != l.agentID
	l.agentID = a.ID
	l.viewport.SetContent(l.renderAgent(a))
	if changed {
		l.viewport.GotoTop()
	} else if atBottom {
		l.viewport.GotoBottom()
	}
}

// LineUp scrolls up.
func (l *LogViewer) LineUp() { l.viewport.LineUp(1) }

// LineDown scrolls down.
func (l *LogViewer) LineDown() { l.viewport.LineDown(1) }

// PageUp scrolls the viewport up half a page.
func (l *LogViewer) PageUp() { l.viewport.HalfViewUp() }

// PageDown scrolls the viewport down half a page.
func (l *LogViewer) PageDown() { l.viewport.HalfViewDown() }

// View renders the detail panel.
func (l *LogViewer) View(a *orchestrator.AgentView) string {
	if a == nil {
		return lipgloss.NewStyle().Foreground(colorDim).Width(l.width).Align(lipgloss.Center).
			Render("\nSelect an agent to see its activity.")
	}

	header := detailTitleStyle.Render(a.Name) + "  " + detailMetaStyle.Render(a.TargetURL)
	var second string
	switch {
	case a.Err != "":
		second = detailErrStyle.Render(a.Err)
	case a.PreviewURL != "":
		second = detailMetaStyle.Render("watch live: ") + detailURLStyle.Render(a.PreviewURL)
	default:
		second = detailMetaStyle.Render(string(a.Status))
	}

	rule := detailMetaStyle.Render(strings.Repeat("─", l.width))
	return header + "\n" + second + "\n" + rule + "\n" + l.viewport.View()
}

// renderAgent builds the scrollable body: the step history with
// consecutive duplicates collapsed, then the result payload.
func (l *LogViewer) renderAgent(a *orchestrator.AgentView) string {
	var lines []string

	type collapsed struct {
		text  string
		count int
	}
	var steps []collapsed
	for _, ev := range a.Log {
		text := ev.StepMessage()
		if text == "" {
			continue
		}
		if n := len(steps); n > 0 && steps[n-1].text == text {
			steps[n-1].count++
			continue
		}
		steps = append(steps, collapsed{text: text, count: 1})
	}

	for _, s := range steps {
		line := "• " + s.text
		if s.count > 1 {
			line += detailMetaStyle.Render(fmt.Sprintf(" ×%d", s.count))
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		lines = append(lines, detailMetaStyle.Render("No activity yet."))
	}

	if len(a.Result) > 0 {
		lines = append(lines, "", detailTitleStyle.Render("Result"))
		lines = append(lines, prettyJSON(a.Result))
	}

	return strings.Join(lines, "\n")
}

func prettyJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
