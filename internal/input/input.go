// Package input resolves keyboard, gamepad, and IPC signals into the same
// tank-drive RobotInput record the drivetrain consumes, so all three
// sources are interchangeable to the simulation core (spec.md §4.8 step 2,
// expanded by SPEC_FULL.md §4.10).
package input

import "math"

// RobotInput is the tank-drive command a Source resolves per frame.
type RobotInput struct {
	LeftPct  float64
	RightPct float64
}

// Source is anything that can be polled once per frame for a robot's next
// motor command.
type Source interface {
	Poll() RobotInput
}

// KeyState is a held-key snapshot the external windowing layer supplies;
// this package only maps keys to percentages, it does not read the OS
// keyboard itself.
type KeyState map[string]bool

// KeyboardSource maps WASD (robot 0) or arrow keys (robot 1) to tank
// percentages, spec.md §4.8 step 2's keyboard fallback.
type KeyboardSource struct {
	Keys KeyState
	Up, Down, TurnLeft, TurnRight string
	Pct  float64
}

// NewWASDSource builds the keyboard source for robot 0.
func NewWASDSource(keys KeyState) *KeyboardSource {
	return &KeyboardSource{Keys: keys, Up: "w", Down: "s", TurnLeft: "a", TurnRight: "d", Pct: 100}
}

// NewArrowSource builds the keyboard source for robot 1.
func NewArrowSource(keys KeyState) *KeyboardSource {
	return &KeyboardSource{Keys: keys, Up: "ArrowUp", Down: "ArrowDown", TurnLeft: "ArrowLeft", TurnRight: "ArrowRight", Pct: 100}
}

// Poll combines forward/back and turn keys into left/right tank
// percentages: forward+turn overlays rather than exclusively switching,
// so operators can drive a curve by holding both.
func (k *KeyboardSource) Poll() RobotInput {
	forward := 0.0
	if k.Keys[k.Up] {
		forward += k.Pct
	}
	if k.Keys[k.Down] {
		forward -= k.Pct
	}
	turn := 0.0
	if k.Keys[k.TurnRight] {
		turn += k.Pct
	}
	if k.Keys[k.TurnLeft] {
		turn -= k.Pct
	}
	left := clampPct(forward - turn)
	right := clampPct(forward + turn)
	return RobotInput{LeftPct: left, RightPct: right}
}

func clampPct(v float64) float64 {
	if v > 100 {
		return 100
	}
	if v < -100 {
		return -100
	}
	return v
}

// GamepadAxes mirrors the wire shape of spec.md §6's inbound gamepad
// message: signed -100..100 raw axis readings before deadzone rescale.
type GamepadAxes struct {
	A, B, C, D int
}

// deadzonePct is 10% of stick range, spec.md §6.
const deadzonePct = 10.0

// applyDeadzone rescales a -100..100 axis reading with the exact formula
// original_source/simulator/gamepad.py uses:
// sign(v) * (|v| - DEADZONE) / (1 - DEADZONE), operating here in percent
// rather than the -1..1 unit range the Python reference uses.
func applyDeadzone(v float64) float64 {
	if math.Abs(v) < deadzonePct {
		return 0
	}
	sign := 1.0
	if v < 0 {
		sign = -1.0
	}
	return sign * (math.Abs(v) - deadzonePct) / (100 - deadzonePct) * 100
}

// GamepadSource converts raw controller axes into tank percentages with
// the §6 sign convention: +A is forward on the left stick (inverted from
// raw hardware), +B is right. Axis A/B (left stick) drives the robot;
// axis C/D (right stick) steers an articulated submodel and does not
// affect tank percentages here.
type GamepadSource struct {
	Axes GamepadAxes
}

// Poll turns the left stick's forward/turn axes into tank percentages,
// the same computation an IPC-connected program performs on the raw
// gamepad JSON, so keyboard/gamepad/IPC robots are interchangeable.
func (g *GamepadSource) Poll() RobotInput {
	forward := applyDeadzone(float64(g.Axes.A))
	turn := applyDeadzone(float64(g.Axes.B))
	return RobotInput{
		LeftPct:  clampPct(forward - turn),
		RightPct: clampPct(forward + turn),
	}
}
