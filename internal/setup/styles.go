package setup

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/yolodolo42/basetip/internal/ui"
)

var (
	borderColor = lipgloss.Color("62") // Purple

	// Box style for welcome/complete screens
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(1, 2)

	TitleStyle    = ui.TitleStyle
	SubtitleStyle = ui.DimStyle
	SuccessStyle  = ui.SuccessStyle
	DimStyle      = ui.DimStyle
	ErrorStyle    = ui.ErrorStyle
	HelpStyle     = ui.HelpStyle

	// Selected item in list
	SelectedStyle = lipgloss.NewStyle().
			Foreground(ui.ColorHighlight).
			Bold(true)

	// Normal item in list
	NormalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	CursorStyle = lipgloss.NewStyle().
			Foreground(ui.ColorPrimary)

	Checkmark = SuccessStyle.Render(ui.SymbolCheck)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(ui.ColorPrimary)
)
