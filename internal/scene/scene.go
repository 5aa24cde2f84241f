// Package scene parses the indented key-value scene document enumerating
// robot placements, field cylinders, and physics constants, and resolves
// which placement is the "active robot" receiving keyboard/gamepad input.
package scene

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/edster9/vexiq-simulator/internal/geom"
)

// PhysicsParams are the global physics constants a scene can override.
type PhysicsParams struct {
	Friction          float64
	CylinderFriction  float64
	Gravity           float64
}

// DefaultPhysicsParams mirrors spec.md §4.4's defaults.
func DefaultPhysicsParams() PhysicsParams {
	return PhysicsParams{Friction: 0.8, CylinderFriction: 0.5, Gravity: 386.1}
}

// RobotPlacement is one robot's entry in the scene: its assembly and
// optional definition/program paths, and its initial world pose.
type RobotPlacement struct {
	AssemblyPath   string
	DefinitionPath string
	ProgramPath    string
	WorldPosition  geom.Vector3
	YawDeg         float64
}

// HasProgram reports whether this placement names an external robot
// program, making it eligible to become the active robot.
func (p RobotPlacement) HasProgram() bool { return p.ProgramPath != "" }

// Cylinder is a movable field prop: a vertical cylinder with color, mass,
// and velocity, placed in the XZ plane.
type Cylinder struct {
	X, Z     float64
	Radius   float64
	Height   float64
	Color    [3]float64
	Mass     float64
	Velocity geom.Vector3
}

// Scene is the parsed, immutable form of one scene document.
type Scene struct {
	Name      string
	Physics   PhysicsParams
	Robots    []RobotPlacement
	Cylinders []Cylinder
}

// ActiveRobotIndex returns the index of the first robot placement with a
// non-empty program path, or -1 if none declares a program.
func (s *Scene) ActiveRobotIndex() int {
	for i, r := range s.Robots {
		if r.HasProgram() {
			return i
		}
	}
	return -1
}

// SelectActiveRobot handles a keyboard 1-4 active-robot switch request:
// switching to a placement without a program is a no-op, reported to the
// caller via ok=false so the operator can be told the switch failed.
func (s *Scene) SelectActiveRobot(placementIndex int) (index int, ok bool) {
	if placementIndex < 0 || placementIndex >= len(s.Robots) {
		return 0, false
	}
	if !s.Robots[placementIndex].HasProgram() {
		return 0, false
	}
	return placementIndex, true
}

type yamlDoc struct {
	Name    string `yaml:"name"`
	Physics struct {
		Friction         *float64 `yaml:"friction"`
		CylinderFriction *float64 `yaml:"cylinder_friction"`
		Gravity          *float64 `yaml:"gravity"`
	} `yaml:"physics"`
	Robots []struct {
		MPD      string     `yaml:"mpd"`
		Position [3]float64 `yaml:"position"`
		Rotation float64    `yaml:"rotation"`
		IQPython string     `yaml:"iqpython"`
		Config   string     `yaml:"config"`
	} `yaml:"robots"`
	Cylinders []struct {
		Position [2]float64 `yaml:"position"`
		Radius   float64    `yaml:"radius"`
		Height   float64    `yaml:"height"`
		Color    [3]float64 `yaml:"color"`
	} `yaml:"cylinders"`
}

// Load parses a scene document. Defaults are applied for absent physics
// fields; a scene file that cannot be read or parsed is startup-fatal and
// returned as an error to the caller.
func Load(r io.Reader) (*Scene, error) {
	var raw yamlDoc
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}

	physics := DefaultPhysicsParams()
	if raw.Physics.Friction != nil {
		physics.Friction = *raw.Physics.Friction
	}
	if raw.Physics.CylinderFriction != nil {
		physics.CylinderFriction = *raw.Physics.CylinderFriction
	}
	if raw.Physics.Gravity != nil {
		physics.Gravity = *raw.Physics.Gravity
	}

	s := &Scene{Name: raw.Name, Physics: physics}
	for _, r := range raw.Robots {
		s.Robots = append(s.Robots, RobotPlacement{
			AssemblyPath:   r.MPD,
			DefinitionPath: r.Config,
			ProgramPath:    r.IQPython,
			WorldPosition:  geom.Vector3{r.Position[0], r.Position[1], r.Position[2]},
			YawDeg:         r.Rotation,
		})
	}
	for _, c := range raw.Cylinders {
		s.Cylinders = append(s.Cylinders, Cylinder{
			X: c.Position[0], Z: c.Position[1],
			Radius: c.Radius, Height: c.Height, Color: c.Color,
			Mass:     0.1,
			Velocity: geom.Vector3{0, 0, 0},
		})
	}
	return s, nil
}
