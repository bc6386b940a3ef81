package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/sitescout-io/sitescout/internal/catalog"
	"github.com/sitescout-io/sitescout/internal/models"
	"github.com/sitescout-io/sitescout/internal/orchestrator"
)

// Model is the root Bubbletea model for the dashboard.
type Model struct {
	orch    *orchestrator.Orchestrator
	cat     *catalog.Catalog
	watcher *catalog.Watcher

	// Sites for the next dispatch. Refreshed from the catalog between
	// searches; frozen for the duration of a running search.
	sites        []models.Site
	initialQuery string

	snap orchestrator.Snapshot

	// UI state
	queryInput   textinput.Model
	agentList    *AgentList
	logViewer    *LogViewer
	focusedPanel int // 0=agent list, 1=detail
	confirmMode  int
	err          error
	width        int
	height       int

	spinnerRunning bool
}

// NewModel creates the initial dashboard model.
func NewModel(orch *orchestrator.Orchestrator, cat *catalog.Catalog, watcher *catalog.Watcher, query string, sites []models.Site) Model {
	ti := textinput.New()
	ti.Placeholder = "what are you looking for?"
	ti.CharLimit = 200
	ti.Width = 48
	ti.Focus()

	return Model{
		orch:         orch,
		cat:          cat,
		watcher:      watcher,
		sites:        sites,
		initialQuery: query,
		snap:         orch.Snapshot(),
		queryInput:   ti,
		agentList:    NewAgentList(),
		logViewer:    NewLogViewer(),
	}
}

// Init returns the initial commands.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textinput.Blink,
		watchCatalogCmd(m.watcher),
		waitForUpdateCmd(m.orch),
	}
	if m.initialQuery != "" {
		cmds = append(cmds, dispatchCmd(m.orch, m.initialQuery, m.sites))
	}
	return tea.Batch(cmds...)
}

// Update processes messages and returns an updated model and commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateDimensions()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StateChangedMsg:
		m.refresh()
		if msg.Resubscribe {
			cmds = append(cmds, waitForUpdateCmd(m.orch))
		}
		if m.snap.Phase == orchestrator.PhaseSearching && !m.spinnerRunning {
			m.spinnerRunning = true
			cmds = append(cmds, spinnerTick())
		}
		return m, tea.Batch(cmds...)

	case spinnerTickMsg:
		if m.snap.Phase == orchestrator.PhaseSearching {
			m.agentList.Tick()
			cmds = append(cmds, spinnerTick())
		} else {
			m.spinnerRunning = false
		}
		return m, tea.Batch(cmds...)

	case CatalogChangedMsg:
		// A running search keeps its dispatched set; the reload kicks
		// in for the next one.
		if m.snap.Phase == orchestrator.PhaseInput {
			m.sites = m.cat.Enabled()
		}
		cmds = append(cmds, watchCatalogCmd(m.watcher))
		return m, tea.Batch(cmds...)

	case DispatchFailedMsg:
		m.err = msg.Err
		cmds = append(cmds, clearErrorAfter(4*time.Second))
		return m, tea.Batch(cmds...)

	case ErrorMsg:
		m.err = msg.Err
		cmds = append(cmds, clearErrorAfter(4*time.Second))
		return m, tea.Batch(cmds...)

	case ClearErrorMsg:
		m.err = nil
		return m, nil
	}

	// Pass everything else to the focused text input on the prompt.
	if m.snap.Phase == orchestrator.PhaseInput {
		var cmd tea.Cmd
		m.queryInput, cmd = m.queryInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Confirm prompt swallows all keys.
	if m.confirmMode == confirmQuit {
		switch {
		case key.Matches(msg, confirmKeys.Yes):
			m.orch.CancelAll()
			return m, tea.Quit
		case key.Matches(msg, confirmKeys.No), key.Matches(msg, confirmKeys.Cancel):
			m.confirmMode = confirmNone
		}
		return m, nil
	}

	if key.Matches(msg, globalKeys.Quit) {
		return m.requestQuit()
	}

	switch m.snap.Phase {
	case orchestrator.PhaseInput:
		return m.handleInputKey(msg)
	default:
		return m.handleBoardKey(msg)
	}
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, inputKeys.Quit):
		return m, tea.Quit
	case key.Matches(msg, inputKeys.Submit):
		query := strings.TrimSpace(m.queryInput.Value())
		if query == "" {
			return m, nil
		}
		if len(m.sites) == 0 {
			m.err = fmt.Errorf("no enabled sites. Edit the catalog with 'sitescout sites'")
			return m, clearErrorAfter(4*time.Second)
		}
		return m, dispatchCmd(m.orch, query, m.sites)
	}

	var cmd tea.Cmd
	m.queryInput, cmd = m.queryInput.Update(msg)
	return m, cmd
}

func (m Model) handleBoardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, boardKeys.Quit):
		return m.requestQuit()

	case key.Matches(msg, globalKeys.Tab):
		m.focusedPanel = 1 - m.focusedPanel
		return m, nil

	case key.Matches(msg, boardKeys.Up):
		if m.focusedPanel == 0 {
			m.agentList.MoveUp()
			m.logViewer.SetAgent(m.agentList.Selected())
		} else {
			m.logViewer.LineUp()
		}
		return m, nil

	case key.Matches(msg, boardKeys.Down):
		if m.focusedPanel == 0 {
			m.agentList.MoveDown()
			m.logViewer.SetAgent(m.agentList.Selected())
		} else {
			m.logViewer.LineDown()
		}
		return m, nil

	case key.Matches(msg, boardKeys.PageUp):
		m.logViewer.PageUp()
		return m, nil

	case key.Matches(msg, boardKeys.PageDown):
		m.logViewer.PageDown()
		return m, nil

	case key.Matches(msg, boardKeys.Cancel):
		if m.snap.Phase == orchestrator.PhaseSearching {
			m.orch.CancelAll()
			m.refresh()
		}
		return m, nil

	case key.Matches(msg, boardKeys.NewSearch):
		if m.snap.Phase == orchestrator.PhaseResults {
			m.orch.Reset()
			m.sites = m.cat.Enabled()
			m.queryInput.SetValue("")
			m.queryInput.Focus()
			m.refresh()
		}
		return m, nil
	}

	return m, nil
}

func (m Model) requestQuit() (tea.Model, tea.Cmd) {
	if m.snap.Phase == orchestrator.PhaseSearching {
		m.confirmMode = confirmQuit
		return m, nil
	}
	return m, tea.Quit
}

// refresh takes a fresh orchestrator snapshot and pushes it into the
// child components.
func (m *Model) refresh() {
	m.snap = m.orch.Snapshot()
	m.agentList.SetAgents(m.snap.Agents)
	m.logViewer.SetAgent(m.agentList.Selected())
}

// ── Layout ───────────────────────────────────────────────────────

// panelLayout holds computed dimensions for the two-panel layout.
type panelLayout struct {
	leftWidth  int
	rightWidth int
	innerH     int
}

func (m *Model) layout() panelLayout {
	// Reserve: 1 line header, 1 line status bar, 2 lines borders.
	contentHeight := m.height - 2
	if contentHeight < 3 {
		contentHeight = 3
	}

	leftWidth := int(float64(m.width) * 0.38)
	if leftWidth < 24 {
		leftWidth = 24
	}
	rightWidth := m.width - leftWidth
	if rightWidth < 20 {
		rightWidth = 20
	}

	return panelLayout{
		leftWidth:  leftWidth,
		rightWidth: rightWidth,
		innerH:     contentHeight - 2,
	}
}

func (m *Model) updateDimensions() {
	l := m.layout()
	m.agentList.SetHeight(l.innerH)
	m.logViewer.SetSize(l.rightWidth-2, l.innerH)
}

// ── View ─────────────────────────────────────────────────────────

// View renders the dashboard.
func (m Model) View() string {
	if m.width < 60 || m.height < 16 {
		sizeStr := fmt.Sprintf("%dx%d", m.width, m.height)
		return center(lipgloss.JoinVertical(lipgloss.Center,
			"Terminal too small",
			lipgloss.NewStyle().Foreground(colorDim).Render(
				"Need 60x16, have "+lipgloss.NewStyle().Bold(true).Render(sizeStr),
			),
		), m.width, m.height)
	}

	header := renderHeader(m.snap, m.width)
	statusBar := renderStatusBar(&m, m.width)

	var body string
	if m.snap.Phase == orchestrator.PhaseInput {
		body = m.renderPrompt()
	} else {
		body = m.renderBoard()
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, statusBar)
}

func (m Model) renderPrompt() string {
	hint := lipgloss.NewStyle().Foreground(colorDim).Render(
		fmt.Sprintf("%d sites enabled", len(m.sites)))
	prompt := lipgloss.JoinVertical(lipgloss.Center,
		m.queryInput.View(),
		"",
		hint,
	)
	return center(prompt, m.width, m.height-2)
}

func (m Model) renderBoard() string {
	l := m.layout()

	leftStyle := unfocusedBorderStyle
	rightStyle := unfocusedBorderStyle
	if m.focusedPanel == 0 {
		leftStyle = focusedBorderStyle
	} else {
		rightStyle = focusedBorderStyle
	}

	left := leftStyle.
		Width(l.leftWidth - 2).
		Height(l.innerH).
		Render(truncateContent(m.agentList.View(l.leftWidth-2), l.leftWidth-2, l.innerH))

	right := rightStyle.
		Width(l.rightWidth - 2).
		Height(l.innerH).
		Render(truncateContent(m.logViewer.View(m.agentList.Selected()), l.rightWidth-2, l.innerH))

	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

// truncateContent ensures content fits within the given dimensions.
func truncateContent(content string, width, height int) string {
	lines := strings.Split(content, "\n")

	if len(lines) > height {
		lines = lines[:height]
	}

	// Truncate long lines (ANSI-aware)
	for i, line := range lines {
		if lipgloss.Width(line) > width {
			lines[i] = ansi.Truncate(line, width, "")
		}
	}

	return strings.Join(lines, "\n")
}
