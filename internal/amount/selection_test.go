package amount

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelection(t *testing.T) {
	t.Run("empty selection resolves to empty string", func(t *testing.T) {
		var s Selection
		assert.Equal(t, "", s.Resolve())
	})

	t.Run("preset wins and clears custom text", func(t *testing.T) {
		s := CustomSelection("7.5")
		s.ChoosePreset("5")
		assert.Equal(t, "5", s.Resolve())
		assert.Equal(t, "", s.Custom())
	})

	t.Run("typing deactivates the preset", func(t *testing.T) {
		s := PresetSelection("10")
		s.Type(" 2.25 ")
		assert.Equal(t, "", s.Preset())
		assert.Equal(t, "2.25", s.Resolve())
	})

	t.Run("resolve does not validate", func(t *testing.T) {
		s := CustomSelection("abc")
		assert.Equal(t, "abc", s.Resolve())
	})

	t.Run("clear drops everything", func(t *testing.T) {
		s := PresetSelection("1")
		s.Clear()
		assert.Equal(t, "", s.Resolve())
	})
}
