package expert

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTogglesDefaults(t *testing.T) {
	toggles := NewToggles()
	// Unknown experts are disabled, never an error.
	assert.False(t, toggles.Enabled("yolo"))

	toggles.Set("yolo", true)
	assert.True(t, toggles.Enabled("yolo"))

	toggles.Set("yolo", false)
	assert.False(t, toggles.Enabled("yolo"))
}

func TestTogglesFlip(t *testing.T) {
	toggles := NewToggles()

	_, ok := toggles.Flip("unknown")
	assert.False(t, ok)

	toggles.Set("blip", true)
	enabled, ok := toggles.Flip("blip")
	assert.True(t, ok)
	assert.False(t, enabled)

	enabled, ok = toggles.Flip("blip")
	assert.True(t, ok)
	assert.True(t, enabled)
}

func TestTogglesSnapshot(t *testing.T) {
	toggles := NewToggles()
	toggles.Set("yolo", true)
	toggles.Set("blip", false)

	snap := toggles.Snapshot()
	assert.Equal(t, map[string]bool{"yolo": true, "blip": false}, snap)

	// The snapshot is a copy.
	snap["yolo"] = false
	assert.True(t, toggles.Enabled("yolo"))
}
