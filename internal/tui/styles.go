package tui

import "github.com/charmbracelet/lipgloss"

// Colors using AdaptiveColor for light/dark terminal support.
var (
	colorWhite  = lipgloss.AdaptiveColor{Light: "0", Dark: "15"}
	colorDim    = lipgloss.AdaptiveColor{Light: "242", Dark: "240"}
	colorGreen  = lipgloss.AdaptiveColor{Light: "28", Dark: "40"}
	colorRed    = lipgloss.AdaptiveColor{Light: "160", Dark: "196"}
	colorYellow = lipgloss.AdaptiveColor{Light: "136", Dark: "220"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "30", Dark: "45"}
)

// Layout styles.
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			Background(lipgloss.AdaptiveColor{Light: "235", Dark: "236"})

	focusedBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorWhite)

	unfocusedBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim)
)

// Header styles.
var (
	brandStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	queryStyle = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)

	phaseInputStyle     = lipgloss.NewStyle().Foreground(colorDim)
	phaseSearchingStyle = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	phaseResultsStyle   = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
)

// Agent list styles.
var (
	agentPendingStyle   = lipgloss.NewStyle().Foreground(colorDim)
	agentActiveStyle    = lipgloss.NewStyle().Foreground(colorCyan)
	agentCompleteStyle  = lipgloss.NewStyle().Foreground(colorGreen)
	agentErrorStyle     = lipgloss.NewStyle().Foreground(colorRed)
	agentCancelledStyle = lipgloss.NewStyle().Foreground(colorDim)

	stepStyle = lipgloss.NewStyle().Foreground(colorDim)

	selectedItemStyle = lipgloss.NewStyle().
				Background(lipgloss.AdaptiveColor{Light: "254", Dark: "237"})
)

// Count badge styles for the header.
var (
	countDoneStyle   = lipgloss.NewStyle().Foreground(colorGreen)
	countErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
	countActiveStyle = lipgloss.NewStyle().Foreground(colorYellow)
)

// Key hint styles for status bar.
var (
	keyStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	hintStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// Detail panel styles.
var (
	detailTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	detailMetaStyle  = lipgloss.NewStyle().Foreground(colorDim)
	detailErrStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	detailURLStyle   = lipgloss.NewStyle().Foreground(colorCyan).Underline(true)
)
