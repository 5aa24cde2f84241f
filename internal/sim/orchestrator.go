// Package sim ties the coordinate pipeline, drivetrain, and collision
// packages together into the per-frame orchestrator loop (spec.md §4.8):
// resolve input, step every drivetrain, resolve collisions, step cylinder
// physics, then publish transforms for rendering.
package sim

import (
	"io"
	"math"
	"os"

	"github.com/edster9/vexiq-simulator/internal/assembly"
	"github.com/edster9/vexiq-simulator/internal/collision"
	"github.com/edster9/vexiq-simulator/internal/drivetrain"
	"github.com/edster9/vexiq-simulator/internal/geom"
	"github.com/edster9/vexiq-simulator/internal/robotdef"
	"github.com/edster9/vexiq-simulator/internal/scene"
	"github.com/edster9/vexiq-simulator/internal/simlog"
)

// MMToIn converts the millimeter fields robot definitions carry
// (track_width, wheel_diameter, outer_diameter_mm) to the inches every
// dynamics and collision computation in this package uses.
const MMToIn = 1.0 / 25.4

// CylinderState is a movable field prop's mutable runtime record.
type CylinderState struct {
	X, Z     float64
	VelX, VelZ float64
	Radius   float64
	Height   float64
	Mass     float64
	Color    [3]float64
}

// Orchestrator owns every robot, part, and cylinder in a realized scene,
// plus the process-wide mesh cache. It is the frame loop's sole writer.
type Orchestrator struct {
	Scene     *scene.Scene
	Meshes    *MeshCache
	Robots    []RobotInstance
	Parts     []PartInstance
	Cylinders []CylinderState

	ActiveRobot int // index into Robots, or -1

	DebugDetection bool
	lastFrameHits  [][2]int
}

// fileOpener abstracts the filesystem so tests can stub it; production
// code always passes os.Open.
type fileOpener func(path string) (io.ReadCloser, error)

func osOpen(path string) (io.ReadCloser, error) { return os.Open(path) }

// NewOrchestrator realizes a parsed scene into a live Orchestrator: it
// loads every robot's assembly and robot-definition files, flattens parts,
// builds hierarchical local OBBs, and places field cylinders.
func NewOrchestrator(sc *scene.Scene, meshLoader MeshLoader) (*Orchestrator, error) {
	return newOrchestrator(sc, meshLoader, osOpen)
}

func newOrchestrator(sc *scene.Scene, meshLoader MeshLoader, open fileOpener) (*Orchestrator, error) {
	o := &Orchestrator{
		Scene:       sc,
		Meshes:      NewMeshCache(meshLoader),
		ActiveRobot: sc.ActiveRobotIndex(),
	}

	for i, placement := range sc.Robots {
		if err := o.realizeRobot(i, placement, open); err != nil {
			return nil, err
		}
	}

	for _, c := range sc.Cylinders {
		o.Cylinders = append(o.Cylinders, CylinderState{
			X: c.X, Z: c.Z,
			VelX: c.Velocity[0], VelZ: c.Velocity[2],
			Radius: c.Radius, Height: c.Height,
			Mass:  c.Mass,
			Color: c.Color,
		})
	}

	return o, nil
}

func (o *Orchestrator) realizeRobot(index int, placement scene.RobotPlacement, open fileOpener) error {
	doc, err := loadAssembly(placement.AssemblyPath, open)
	if err != nil {
		return err
	}
	def := loadRobotDef(placement.DefinitionPath, open)

	ri := RobotInstance{
		Definition:  def,
		ProgramPath: placement.ProgramPath,
		HasProgram:  placement.HasProgram(),
		PartStart:   len(o.Parts),
	}

	pivot := def.Pivot
	var boundsForGround []PartMeshBounds
	var localParts []collision.LocalPart

	for _, p := range doc.Parts {
		mesh, ok := o.Meshes.Get(p.PartID)
		if !ok {
			simlog.Warn("missing mesh for referent, skipping part", "part_id", p.PartID)
			continue
		}
		meshMin, meshMax := mesh.Bounds()

		subIdx := p.SubmodelIndex
		wheelIdx := wheelAssemblyIndexFor(def, p.PartID)

		localOBB := buildLocalPartOBB(meshMin, meshMax, p.Position, pivot, p.Rotation)

		o.Parts = append(o.Parts, PartInstance{
			Mesh:               mesh,
			PositionCAD:        p.Position,
			RotationCAD:        p.Rotation,
			ColorCode:          p.ColorCode,
			RobotIndex:         index,
			WheelAssemblyIndex: wheelIdx,
			SubmodelIndex:      subIdx,
			LocalOBB:           localOBB,
			State:              collision.StateNone,
		})
		boundsForGround = append(boundsForGround, PartMeshBounds{
			MinCAD: meshMin, MaxCAD: meshMax, PositionCAD: p.Position, RotationCAD: p.Rotation, SubmodelIndex: subIdx,
		})
		localParts = append(localParts, collision.LocalPart{OBB: localOBB, SubmodelIndex: subIdx})
	}

	ri.PartCount = len(o.Parts) - ri.PartStart
	ri.GroundOffsetY = GroundOffset(boundsForGround, pivot)
	ri.Hierarchy = collision.BuildHierarchy(localParts, len(doc.Submodels))

	cfg := drivetrain.DefaultConfig()
	if def.DrivetrainType == robotdef.DrivetrainTank {
		if def.TrackWidth > 0 {
			cfg.TrackWidthIn = def.TrackWidth * MMToIn
		}
		if def.WheelDiameter > 0 {
			cfg.WheelDiameterIn = def.WheelDiameter * MMToIn
		}
	}
	cfg.FrictionCoeff = o.scenePhysics().Friction
	ri.Drivetrain = drivetrain.New(cfg)
	ri.Drivetrain.SetPosition(placement.WorldPosition[0], placement.WorldPosition[2], degToRad(placement.YawDeg))
	ri.Wheels = make([]WheelState, len(def.WheelAssemblies))

	o.Robots = append(o.Robots, ri)
	return nil
}

func (o *Orchestrator) scenePhysics() scene.PhysicsParams {
	if o.Scene != nil {
		return o.Scene.Physics
	}
	return scene.DefaultPhysicsParams()
}

func wheelAssemblyIndexFor(def *robotdef.Definition, partID string) int {
	for i, w := range def.WheelAssemblies {
		for _, pn := range w.PartNumbers {
			if pn == partID {
				return i
			}
		}
	}
	return -1
}

// buildLocalPartOBB transforms a part's mesh AABB into the robot-local
// render frame: pivot-relative, CAD->world axis converted, LDU scaled.
// Reusing OBB.Transform for this (rather than hand-rolling the same
// center/rotation composition) keeps this one code path authoritative
// for both scene-load-time local OBBs and per-frame world OBBs.
func buildLocalPartOBB(meshMin, meshMax, partPosCAD, pivotCAD geom.Vector3, partRotCAD geom.Matrix3) geom.OBB {
	rotWorld := ConvertRotationCADToWorld(partRotCAD)
	posLocal := ConvertPositionCADToWorld(partPosCAD.Sub(pivotCAD))
	local := geom.OBBFromAABB(meshMin, meshMax)
	return local.Transform(posLocal, rotWorld)
}

func loadAssembly(path string, open fileOpener) (*assembly.Document, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return assembly.Load(f, path)
}

// loadRobotDef returns Default() if path is empty or the file cannot be
// loaded: per spec.md §4.3, an absent or malformed robot definition is
// startup-recoverable, never fatal.
func loadRobotDef(path string, open fileOpener) *robotdef.Definition {
	if path == "" {
		return robotdef.Default()
	}
	f, err := open(path)
	if err != nil {
		simlog.Warn("missing robot definition, using defaults", "path", path, "err", err)
		return robotdef.Default()
	}
	defer f.Close()
	def, err := robotdef.Load(f, path)
	if err != nil {
		simlog.Warn("malformed robot definition, using defaults", "path", path, "err", err)
		return robotdef.Default()
	}
	return def
}

func degToRad(d float64) float64 { return d * math.Pi / 180.0 }
