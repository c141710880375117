package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// PresetRow is a horizontal row of quick-pick amounts. At most one preset
// is active; the cursor only marks keyboard position.
type PresetRow struct {
	items   []string
	unit    string
	cursor  int
	active  int // -1 when no preset is chosen
	focused bool
}

// NewPresetRow creates a row with nothing chosen.
func NewPresetRow(items []string, unit string) PresetRow {
	return PresetRow{
		items:  items,
		unit:   unit,
		active: -1,
	}
}

// Focus gives the row keyboard input
func (r *PresetRow) Focus() {
	r.focused = true
}

// Blur removes keyboard input from the row
func (r *PresetRow) Blur() {
	r.focused = false
}

// Active returns the chosen preset, or "" when none is chosen.
func (r *PresetRow) Active() string {
	if r.active >= 0 && r.active < len(r.items) {
		return r.items[r.active]
	}
	return ""
}

// Clear deactivates the chosen preset.
func (r *PresetRow) Clear() {
	r.active = -1
}

// Update handles row input. It reports true when a preset was chosen.
func (r *PresetRow) Update(msg tea.Msg) (chosen bool) {
	if !r.focused || len(r.items) == 0 {
		return false
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return false
	}

	switch key.String() {
	case "left", "h":
		if r.cursor > 0 {
			r.cursor--
		}
	case "right", "l":
		if r.cursor < len(r.items)-1 {
			r.cursor++
		}
	case " ", "enter":
		r.active = r.cursor
		return true
	default:
		// Number keys pick a preset directly.
		if s := key.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			i := int(s[0] - '1')
			if i < len(r.items) {
				r.cursor = i
				r.active = i
				return true
			}
		}
	}
	return false
}

// View renders the row
func (r *PresetRow) View() string {
	cells := make([]string, 0, len(r.items))
	for i, item := range r.items {
		label := item
		if r.unit != "" {
			label += " " + r.unit
		}

		style := PresetStyle
		switch {
		case i == r.active:
			style = PresetActiveStyle
		case r.focused && i == r.cursor:
			style = PresetCursorStyle
		}
		cells = append(cells, style.Render(label))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}
