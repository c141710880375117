package ui

import "github.com/charmbracelet/lipgloss"

var (
	ColorPrimary   = lipgloss.Color("205") // Pink/magenta
	ColorSuccess   = lipgloss.Color("35")  // Green
	ColorWarning   = lipgloss.Color("214") // Gold/yellow
	ColorError     = lipgloss.Color("196") // Red
	ColorDim       = lipgloss.Color("241") // Gray
	ColorAccent    = lipgloss.Color("39")  // Blue
	ColorHighlight = lipgloss.Color("212") // Light pink
	ColorCalm      = lipgloss.Color("51")  // Cyan
)

const (
	SymbolPrompt = "❯"
	SymbolBullet = "●"
	SymbolArrow  = "▸"
	SymbolCheck  = "✓"
	SymbolCross  = "✗"
	SymbolSpin   = "◐"
)

var (
	PromptStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorDim)

	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorDim)

	PresetStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorDim).
			Padding(0, 1)

	PresetCursorStyle = PresetStyle.
				BorderForeground(ColorAccent)

	PresetActiveStyle = PresetStyle.
				Foreground(ColorHighlight).
				BorderForeground(ColorHighlight).
				Bold(true)

	ButtonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Background(ColorPrimary).
			Bold(true).
			Padding(0, 2)

	ButtonBusyStyle = ButtonStyle.
			Background(ColorDim)

	StatusStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	ToastStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorSuccess).
			Padding(0, 1)

	SheetStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(1, 2)
)

// MoodStyle colors the mood dot: pink when energized, cyan otherwise.
func MoodStyle(energized bool) lipgloss.Style {
	if energized {
		return lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(ColorCalm)
}
