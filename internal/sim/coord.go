// Coordinate pipeline: reconciling CAD, mesh, and world/render frames.
// CAD is X-right, Y-down, Z-back, in LDU (0.4mm); world/render is
// X-right, Y-up, Z-front, in inches. The three frames are never mixed
// outside this file.
package sim

import "github.com/edster9/vexiq-simulator/internal/geom"

// LDUToInches converts CAD length units to world/render inches.
const LDUToInches = 0.02

// cadToWorldAxes is diag(1,-1,-1): flips Y and Z between CAD and
// world/render frames.
var cadToWorldAxes = geom.Matrix3FromRows(
	1, 0, 0,
	0, -1, 0,
	0, 0, -1,
)

// ConvertRotationCADToWorld applies C*R*C, the axis-conversion sandwich
// spec.md §4.5 step (c) names.
func ConvertRotationCADToWorld(r geom.Matrix3) geom.Matrix3 {
	return geom.ComposeRotation(geom.ComposeRotation(cadToWorldAxes, r), cadToWorldAxes)
}

// ConvertPositionCADToWorld scales by the LDU factor and flips Y and Z,
// spec.md §4.5 step (d).
func ConvertPositionCADToWorld(p geom.Vector3) geom.Vector3 {
	return geom.Vector3{
		p[0] * LDUToInches,
		-p[1] * LDUToInches,
		-p[2] * LDUToInches,
	}
}

// PartTransformInputs bundles the per-part, per-frame inputs the
// transform builder composes, in the exact order spec.md §4.5 mandates.
type PartTransformInputs struct {
	// CAD-frame part transform, as flattened by the assembly loader.
	PartPositionCAD geom.Vector3
	PartRotationCAD geom.Matrix3

	// Optional wheel spin, applied only to orientation, in the part's own
	// frame (position in that frame is unchanged).
	SpinAxisLocal geom.Vector3
	SpinAngleRad  float64
	HasSpin       bool

	// Chassis yaw about the pivot, in CAD space; rotates position and
	// orientation.
	PivotCAD    geom.Vector3
	ChassisYawCAD geom.Matrix3

	// Robot placement in world/render space, plus the per-robot ground
	// offset that lands the lowest mesh point at Y=0.
	RobotWorldPosition geom.Vector3
	GroundOffsetY      float64
}

// BuildPartTransform composes (a) wheel spin, (b) chassis yaw about the
// pivot in CAD space, (c) CAD->world axis conversion, (d) LDU scaling with
// Y/Z flip, (e) translation to the robot's world position plus ground
// offset, returning the world-space position and rotation handed to the
// renderer (as a column-major 4x4, via ToMatrix4).
func BuildPartTransform(in PartTransformInputs) (worldPos geom.Vector3, worldRot geom.Matrix3) {
	rotCAD := in.PartRotationCAD
	if in.HasSpin {
		spin := geom.AxisAngleRotation(in.SpinAxisLocal, in.SpinAngleRad)
		rotCAD = geom.ComposeRotation(rotCAD, spin)
	}

	// Chassis yaw about the pivot: position and orientation both rotate.
	relToPivot := in.PartPositionCAD.Sub(in.PivotCAD)
	rotatedRel := in.ChassisYawCAD.Mul3x1(relToPivot)
	posCAD := in.PivotCAD.Add(rotatedRel)
	rotCAD = geom.ComposeRotation(in.ChassisYawCAD, rotCAD)

	worldRot = ConvertRotationCADToWorld(rotCAD)
	worldPosLocal := ConvertPositionCADToWorld(posCAD)

	worldPos = geom.Vector3{
		in.RobotWorldPosition[0] + worldPosLocal[0],
		in.RobotWorldPosition[1] + worldPosLocal[1] + in.GroundOffsetY,
		in.RobotWorldPosition[2] + worldPosLocal[2],
	}
	return worldPos, worldRot
}

// ToMatrix4 assembles a column-major 4x4 from a world position/rotation,
// the literal layout (column-by-column) the rendering layer expects.
func ToMatrix4(pos geom.Vector3, rot geom.Matrix3) geom.Matrix4 {
	c0, c1, c2 := geom.Col3(rot, 0), geom.Col3(rot, 1), geom.Col3(rot, 2)
	return geom.Matrix4{
		c0[0], c0[1], c0[2], 0,
		c1[0], c1[1], c1[2], 0,
		c2[0], c2[1], c2[2], 0,
		pos[0], pos[1], pos[2], 1,
	}
}

// meshCorners returns the 8 corners of a local mesh AABB, in the part's own
// mesh frame — no placement rotation or translation applied yet.
func meshCorners(min, max geom.Vector3) [8]geom.Vector3 {
	signs := [8][3]float64{
		{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0},
		{0, 0, 1}, {1, 0, 1}, {0, 1, 1}, {1, 1, 1},
	}
	var out [8]geom.Vector3
	for i, s := range signs {
		out[i] = geom.Vector3{
			lerp(min[0], max[0], s[0]),
			lerp(min[1], max[1], s[1]),
			lerp(min[2], max[2], s[2]),
		}
	}
	return out
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

// GroundOffset computes, once per robot after all parts are loaded, the
// vertical shift that lands the lowest modeled point at Y=0: for every part,
// place its local mesh corners at the part's assembled CAD position
// (relative to the pivot) under the part's CAD rotation — the same
// rotate-then-translate composition buildLocalPartOBB uses for collision
// geometry — convert to world, take the minimum Y across every part, and
// negate. Because every position is taken relative to the pivot, the
// result is the pivot's height above the ground, so the pivot remains the
// world anchor without any further correction by the caller.
func GroundOffset(parts []PartMeshBounds, pivotCAD geom.Vector3) float64 {
	minY := 0.0
	first := true
	for _, p := range parts {
		rotWorld := ConvertRotationCADToWorld(p.RotationCAD)
		posWorld := ConvertPositionCADToWorld(p.PositionCAD.Sub(pivotCAD))
		for _, corner := range meshCorners(p.MinCAD, p.MaxCAD) {
			world := rotWorld.Mul3x1(corner).Add(posWorld)
			if first || world[1] < minY {
				minY = world[1]
				first = false
			}
		}
	}
	return -minY
}

// PartMeshBounds is the per-part input GroundOffset and hierarchical OBB
// construction both need: a part's local mesh AABB, its assembled CAD
// position, and its CAD rotation.
type PartMeshBounds struct {
	MinCAD, MaxCAD geom.Vector3
	PositionCAD    geom.Vector3
	RotationCAD    geom.Matrix3
	SubmodelIndex  int
}
