package amount

import "strings"

// DefaultPresets are the quick-pick tip amounts, in whole tokens.
var DefaultPresets = []string{"1", "3", "5", "10"}

// Selection holds the user's current amount choice. A preset and custom
// text are mutually exclusive: choosing one clears the other.
type Selection struct {
	preset string
	custom string
}

// PresetSelection returns a selection with the given preset active.
func PresetSelection(preset string) Selection {
	return Selection{preset: preset}
}

// CustomSelection returns a selection holding free-form text.
func CustomSelection(text string) Selection {
	return Selection{custom: text}
}

// ChoosePreset activates a preset and clears any custom text.
func (s *Selection) ChoosePreset(preset string) {
	s.preset = preset
	s.custom = ""
}

// Type replaces the custom text and deactivates any preset.
func (s *Selection) Type(text string) {
	s.preset = ""
	s.custom = text
}

// Clear drops both the preset and the custom text.
func (s *Selection) Clear() {
	s.preset = ""
	s.custom = ""
}

// Preset returns the active preset, or "" when none is active.
func (s Selection) Preset() string {
	return s.preset
}

// Custom returns the raw custom text.
func (s Selection) Custom() string {
	return s.custom
}

// Resolve returns the chosen decimal string, or "" if nothing is chosen.
// It does not validate; see ToBaseUnits.
func (s Selection) Resolve() string {
	if s.preset != "" {
		return s.preset
	}
	return strings.TrimSpace(s.custom)
}
