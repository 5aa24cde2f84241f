package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyboardSourceForward(t *testing.T) {
	src := NewWASDSource(KeyState{"w": true})
	in := src.Poll()
	assert.Equal(t, 100.0, in.LeftPct)
	assert.Equal(t, 100.0, in.RightPct)
}

func TestKeyboardSourceTurnInPlace(t *testing.T) {
	src := NewWASDSource(KeyState{"a": true})
	in := src.Poll()
	assert.Equal(t, 100.0, in.LeftPct)
	assert.Equal(t, -100.0, in.RightPct)
}

func TestKeyboardSourceNoKeysIsNeutral(t *testing.T) {
	src := NewArrowSource(KeyState{})
	in := src.Poll()
	assert.Equal(t, 0.0, in.LeftPct)
	assert.Equal(t, 0.0, in.RightPct)
}

func TestGamepadDeadzoneSuppressesSmallAxis(t *testing.T) {
	src := &GamepadSource{Axes: GamepadAxes{A: 5}}
	in := src.Poll()
	assert.Equal(t, 0.0, in.LeftPct)
	assert.Equal(t, 0.0, in.RightPct)
}

func TestGamepadFullForwardRescalesAboveDeadzone(t *testing.T) {
	src := &GamepadSource{Axes: GamepadAxes{A: 100}}
	in := src.Poll()
	assert.InDelta(t, 100.0, in.LeftPct, 1e-9)
	assert.InDelta(t, 100.0, in.RightPct, 1e-9)
}

func TestGamepadTurnOnly(t *testing.T) {
	src := &GamepadSource{Axes: GamepadAxes{B: 50}}
	in := src.Poll()
	assert.Less(t, in.LeftPct, 0.0)
	assert.Greater(t, in.RightPct, 0.0)
}
