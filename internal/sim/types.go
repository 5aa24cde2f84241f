package sim

import (
	"github.com/edster9/vexiq-simulator/internal/collision"
	"github.com/edster9/vexiq-simulator/internal/drivetrain"
	"github.com/edster9/vexiq-simulator/internal/geom"
	"github.com/edster9/vexiq-simulator/internal/robotdef"
)

// Mesh is the opaque handle the rendering layer draws through; the core
// only ever reads bounds off it.
type Mesh interface {
	Bounds() (min, max geom.Vector3)
	IndexCount() int
}

// MeshLoader resolves a part id (mesh key) to a Mesh, the "load mesh by
// name" service spec.md §1 treats as an external collaborator.
type MeshLoader func(partID string) (Mesh, error)

// MeshCache interns meshes by part id for the process lifetime. A failed
// load is remembered as "absent" and never retried.
type MeshCache struct {
	load   MeshLoader
	loaded map[string]Mesh
	absent map[string]bool
}

// NewMeshCache wraps a loader with interning.
func NewMeshCache(loader MeshLoader) *MeshCache {
	return &MeshCache{load: loader, loaded: map[string]Mesh{}, absent: map[string]bool{}}
}

// Get returns the interned mesh for partID, or ok=false if the part is
// known-absent or failed to load just now (remembered for next time).
func (c *MeshCache) Get(partID string) (Mesh, bool) {
	if m, ok := c.loaded[partID]; ok {
		return m, true
	}
	if c.absent[partID] {
		return nil, false
	}
	m, err := c.load(partID)
	if err != nil || m == nil {
		c.absent[partID] = true
		return nil, false
	}
	c.loaded[partID] = m
	return m, true
}

// CollisionState mirrors internal/collision.State; kept as an alias so
// this package's public surface never needs to import collision just to
// name the four-valued tag.
type CollisionState = collision.State

// PartInstance is the runtime record for one flattened assembly part: its
// mesh handle, CAD transform, color, owning robot/wheel-assembly/submodel
// indices, local OBB, and collision visualization state.
type PartInstance struct {
	Mesh Mesh

	PositionCAD geom.Vector3
	RotationCAD geom.Matrix3
	ColorCode   int

	RobotIndex        int // -1 if not owned by a robot (field prop)
	WheelAssemblyIndex int // -1 if this part does not spin
	SubmodelIndex     int // -1 (assembly.NoSubmodel) if at the document root

	LocalOBB geom.OBB
	State    CollisionState
}

// WheelState is the per-wheel-assembly spin state derived each frame from
// the drivetrain's published wheel surface velocities.
type WheelState struct {
	SpinAngleRad       float64
	LinearWheelVelIn   float64
}

// RobotInstance is the runtime record for one scene robot placement: its
// drivetrain, wheel states, hierarchical OBBs, ground offset, and the
// slice of the orchestrator's global part vector it owns.
type RobotInstance struct {
	Definition *robotdef.Definition
	Drivetrain *drivetrain.State

	Wheels []WheelState

	Hierarchy     *collision.Hierarchy
	GroundOffsetY float64

	PartStart int
	PartCount int

	ProgramPath string
	HasProgram  bool
}

// RobotInput is the already-resolved tank-drive command a frame's input
// phase hands to a robot, independent of whether it came from keyboard,
// gamepad, or IPC.
type RobotInput struct {
	LeftPct  float64
	RightPct float64
}
