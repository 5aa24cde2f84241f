// Package ipc spawns and manages the external robot-program process for a
// programmed robot, bridging it over framed JSON lines on stdin/stdout.
// Grounded on the teacher's context.go registry-of-named-peers pattern
// (models.Context.vehicles), re-targeted from "TCP clients of a vehicle
// server" to "one spawned child per programmed robot."
package ipc

// GamepadAxes is the inbound {"axes": {...}} shape: signed -100..100
// percentages, A/D already sign-inverted from raw hardware per spec.md §6.
type GamepadAxes struct {
	A int `json:"A"`
	B int `json:"B"`
	C int `json:"C"`
	D int `json:"D"`
}

// GamepadButtons is the inbound {"buttons": {...}} shape.
type GamepadButtons struct {
	LUp   bool `json:"LUp"`
	LDown bool `json:"LDown"`
	RUp   bool `json:"RUp"`
	RDown bool `json:"RDown"`
	EUp   bool `json:"EUp"`
	EDown bool `json:"EDown"`
	FUp   bool `json:"FUp"`
	FDown bool `json:"FDown"`
}

// inboundEnvelope is what the simulator writes to the child: a tagged
// union over gamepad/tick/shutdown, spec.md §6.
type inboundEnvelope struct {
	Type    string          `json:"type"`
	Axes    *GamepadAxes    `json:"axes,omitempty"`
	Buttons *GamepadButtons `json:"buttons,omitempty"`
	Dt      float64         `json:"dt,omitempty"`
}

// MotorState is one entry of the outbound "state" message's motors map.
type MotorState struct {
	Speed    int     `json:"speed"`
	Spinning bool    `json:"spinning"`
	Position float64 `json:"position"`
}

// PneumaticState is one entry of the outbound "state" message's
// pneumatics map.
type PneumaticState struct {
	Extended bool `json:"extended"`
	Pump     bool `json:"pump"`
}

// outboundEnvelope is what the child writes back: a tagged union over
// ready/state/status/error/shutdown, spec.md §6. All fields are optional
// and interpreted according to Type.
type outboundEnvelope struct {
	Type       string                    `json:"type"`
	Project    string                    `json:"project,omitempty"`
	Motors     map[string]MotorState     `json:"motors,omitempty"`
	Pneumatics map[string]PneumaticState `json:"pneumatics,omitempty"`
	Message    string                    `json:"message,omitempty"`
}

// State is the most recent decoded "state" message, kept by the bridge
// between ticks.
type State struct {
	Motors     map[string]MotorState
	Pneumatics map[string]PneumaticState
}
