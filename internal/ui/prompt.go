package ui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// AmountInput is the custom amount field. It accepts digits and one dot;
// format checks happen when the tip is sent.
type AmountInput struct {
	input   textinput.Model
	focused bool
}

// NewAmountInput creates an empty, unfocused field.
func NewAmountInput(unit string) AmountInput {
	ti := textinput.New()
	ti.Placeholder = "Custom amount"
	ti.Prompt = ""
	ti.CharLimit = 32
	ti.Width = 16
	if unit != "" {
		ti.Placeholder += " (" + unit + ")"
	}

	return AmountInput{input: ti}
}

// Focus sets focus on the field
func (a *AmountInput) Focus() tea.Cmd {
	a.focused = true
	return a.input.Focus()
}

// Blur removes focus from the field
func (a *AmountInput) Blur() {
	a.focused = false
	a.input.Blur()
}

// Value returns the current text
func (a *AmountInput) Value() string {
	return a.input.Value()
}

// Reset clears the field
func (a *AmountInput) Reset() {
	a.input.Reset()
}

// Update handles input events. It reports true when the text changed.
func (a *AmountInput) Update(msg tea.Msg) (changed bool, cmd tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyRunes {
		for _, r := range key.Runes {
			if !isAmountRune(r) {
				return false, nil
			}
		}
	}

	before := a.input.Value()
	a.input, cmd = a.input.Update(msg)
	return a.input.Value() != before, cmd
}

// View renders the field
func (a *AmountInput) View() string {
	style := DimStyle
	if a.focused {
		style = PromptStyle
	}
	return style.Render(SymbolPrompt) + " " + a.input.View()
}

func isAmountRune(r rune) bool {
	return (r >= '0' && r <= '9') || r == '.'
}
