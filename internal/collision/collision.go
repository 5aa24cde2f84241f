// Package collision builds per-robot hierarchical OBBs and implements
// detection (for debug visualization) and response (always run) between
// robots, field walls, and movable cylinders.
package collision

import (
	"math"

	"github.com/edster9/vexiq-simulator/internal/geom"
)

// DeadZone is the minimum penetration below which response applies no
// correction, breaking the oscillatory feedback loop where a correction
// reintroduces an equal-and-opposite contact next step.
const DeadZone = 0.15

// SubstepIterations is how many times response runs per frame to converge
// in stacked/triple-contact cases.
const SubstepIterations = 4

// CylinderPushFactor is how much of a robot's velocity along the contact
// normal transfers into a cylinder it hits; deliberately one-way (robots
// are heavy, cylinders are light).
const CylinderPushFactor = 0.8

// CylinderFrictionDamping damps cylinder velocities every frame.
const CylinderFrictionDamping = 0.85

// CylinderVelocityDeadband snaps small cylinder velocities to zero.
const CylinderVelocityDeadband = 0.1

// State is the per-entity collision state used for debug visualization.
type State int

const (
	StateNone State = iota
	StateSubmodelTouch
	StatePartTouch
	StateExternalTouch
)

// LocalPart is one part's local-frame OBB plus the submodel it belongs to
// (-1, assembly.NoSubmodel, for root parts), input to Hierarchy
// construction.
type LocalPart struct {
	OBB           geom.OBB
	SubmodelIndex int
}

// Hierarchy is a robot's two-level local-frame OBB structure: loose,
// identity-rotation submodel AABBs enclosing tight, oriented part OBBs.
type Hierarchy struct {
	Parts         []geom.OBB
	PartSubmodel  []int
	Submodels     []geom.OBB
}

// BuildHierarchy computes the submodel-enclosing AABBs from a robot's
// local part OBBs: for each submodel, the AABB enclosing all its part
// OBBs' corners, stored as an identity-rotation OBB.
func BuildHierarchy(parts []LocalPart, submodelCount int) *Hierarchy {
	h := &Hierarchy{Submodels: make([]geom.OBB, submodelCount)}
	mins := make([]geom.Vector3, submodelCount)
	maxs := make([]geom.Vector3, submodelCount)
	touched := make([]bool, submodelCount)

	for _, p := range parts {
		h.Parts = append(h.Parts, p.OBB)
		h.PartSubmodel = append(h.PartSubmodel, p.SubmodelIndex)
		if p.SubmodelIndex < 0 || p.SubmodelIndex >= submodelCount {
			continue
		}
		box := geom.EnclosingAABB(p.OBB)
		if !touched[p.SubmodelIndex] {
			mins[p.SubmodelIndex] = box.Min
			maxs[p.SubmodelIndex] = box.Max
			touched[p.SubmodelIndex] = true
			continue
		}
		for i := 0; i < 3; i++ {
			if box.Min[i] < mins[p.SubmodelIndex][i] {
				mins[p.SubmodelIndex][i] = box.Min[i]
			}
			if box.Max[i] > maxs[p.SubmodelIndex][i] {
				maxs[p.SubmodelIndex][i] = box.Max[i]
			}
		}
	}
	for i := 0; i < submodelCount; i++ {
		if touched[i] {
			h.Submodels[i] = geom.OBBFromAABB(mins[i], maxs[i])
		}
	}
	return h
}

// WorldTransform maps a robot's local hierarchy into world space via the
// robot's XZ translation (plus ground offset on Y) and yaw-about-Y
// rotation, returning new slices — the local hierarchy itself is
// immutable scene-load output.
func (h *Hierarchy) WorldTransform(worldPos geom.Vector3, yaw float64) (parts, submodels []geom.OBB) {
	rot := geom.AxisAngleRotation(geom.Vector3{0, 1, 0}, yaw)
	parts = make([]geom.OBB, len(h.Parts))
	for i, p := range h.Parts {
		parts[i] = p.Transform(worldPos, rot)
	}
	submodels = make([]geom.OBB, len(h.Submodels))
	for i, s := range h.Submodels {
		submodels[i] = s.Transform(worldPos, rot)
	}
	return parts, submodels
}

// DetectRobotRobot runs the full two-level detection pass (debug only):
// submodel OBB∩OBB broad phase, then part OBB∩OBB narrow phase on hits.
// It returns the colliding (partA, partB) index pairs.
func DetectRobotRobot(hA, hB *Hierarchy, worldA, worldB struct{ Parts, Submodels []geom.OBB }) [][2]int {
	var hits [][2]int
	for si, subA := range worldA.Submodels {
		for sj, subB := range worldB.Submodels {
			if !geom.Intersects(subA, subB) {
				continue
			}
			for pi, partA := range worldA.Parts {
				if hA.PartSubmodel[pi] != si {
					continue
				}
				for pj, partB := range worldB.Parts {
					if hB.PartSubmodel[pj] != sj {
						continue
					}
					if geom.Intersects(partA, partB) {
						hits = append(hits, [2]int{pi, pj})
					}
				}
			}
		}
	}
	return hits
}

// PushResult is a displacement/velocity adjustment for one robot.
type PushResult struct {
	DeltaX, DeltaZ float64
	NormalX, NormalZ float64
	InContact      bool
}

// ResolveRobotRobot uses submodel-level AABB overlap only (spec's
// deliberate perf trade-off for dense contact), pushes along the axis of
// minimum penetration, split 50/50, subject to the dead-zone.
func ResolveRobotRobot(submodelsA, submodelsB []geom.OBB) (a, b PushResult) {
	var bestAxis = -1
	var bestDepth float64
	var bestBoxA, bestBoxB geom.AABB

	for _, subA := range submodelsA {
		boxA := geom.EnclosingAABB(subA)
		for _, subB := range submodelsB {
			boxB := geom.EnclosingAABB(subB)
			axis, depth, ok := geom.MinimumPenetrationAxis(boxA, boxB)
			if !ok {
				continue
			}
			if bestAxis == -1 || depth < bestDepth {
				bestAxis, bestDepth, bestBoxA, bestBoxB = axis, depth, boxA, boxB
			}
		}
	}
	if bestAxis == -1 || bestDepth < DeadZone {
		return a, b
	}

	sign := 1.0
	centerA := (bestBoxA.Min[bestAxis] + bestBoxA.Max[bestAxis]) / 2
	centerB := (bestBoxB.Min[bestAxis] + bestBoxB.Max[bestAxis]) / 2
	if centerA < centerB {
		sign = -1.0
	}
	half := (bestDepth - DeadZone) / 2.0

	var nx, nz float64
	switch bestAxis {
	case 0:
		nx = sign
	case 2:
		nz = sign
	}

	a = PushResult{NormalX: nx, NormalZ: nz, InContact: true}
	b = PushResult{NormalX: -nx, NormalZ: -nz, InContact: true}
	if bestAxis == 0 {
		a.DeltaX = sign * half
		b.DeltaX = -sign * half
	} else if bestAxis == 2 {
		a.DeltaZ = sign * half
		b.DeltaZ = -sign * half
	}
	return a, b
}

// ResolveWall drills into parts for the narrow phase and chooses the
// maximum single-part penetration on the wall's axis; the displacement is
// applied once (the excess over the dead-zone, leaving a residual overlap
// up to DeadZone rather than closing it to zero), and velocity normal to
// the wall should be zeroed by the caller.
func ResolveWall(parts []geom.OBB, wall geom.AABB, axis int, wallIsMax bool) (depth float64, inContact bool) {
	best := 0.0
	for _, p := range parts {
		box := geom.EnclosingAABB(p)
		d := geom.OverlapAxis(box, wall, axis)
		if d > best {
			best = d
		}
	}
	if best < DeadZone {
		return 0, false
	}
	slop := best - DeadZone
	if wallIsMax {
		return -slop, true
	}
	return slop, true
}

// ResolveCylinder transfers the robot's velocity along the contact normal
// into the cylinder (scaled), and returns the cylinder's positional push
// out of penetration along the same normal, scaled by the actual overlap
// depth between the circle and the box's XZ footprint rather than a fixed
// distance. This is one-way: the robot's own velocity/position is not
// modified here.
func ResolveCylinder(robotOBB geom.OBB, cylX, cylZ, cylRadius float64, robotVelX, robotVelZ float64) (pushX, pushZ, transferVelX, transferVelZ float64, inContact bool) {
	depth, nx, nz, ok := geom.CirclePenetration(robotOBB, cylX, cylZ, cylRadius)
	if !ok {
		return 0, 0, 0, 0, false
	}

	approach := robotVelX*nx + robotVelZ*nz
	if approach < 0 {
		approach = 0
	}

	return nx * depth, nz * depth, approach * nx * CylinderPushFactor, approach * nz * CylinderPushFactor, true
}

// ResolveCylinderCylinder handles pairwise circle-circle contact: if
// approaching, fully cancels relative approach velocity (inelastic along
// the normal); if overlapping beyond tolerance, separates by the excess,
// mass-weighted.
func ResolveCylinderCylinder(ax, az, aRadius, aMass float64, avx, avz float64, bx, bz, bRadius, bMass float64, bvx, bvz float64) (da [2]float64, db [2]float64, nva, nvb [2]float64) {
	dx, dz := bx-ax, bz-az
	dist := math.Hypot(dx, dz)
	overlap := (aRadius + bRadius) - dist
	nva, nvb = [2]float64{avx, avz}, [2]float64{bvx, bvz}
	if dist < 1e-9 {
		return da, db, nva, nvb
	}
	nx, nz := dx/dist, dz/dist

	relVel := (bvx-avx)*nx + (bvz-avz)*nz
	if relVel < 0 {
		totalMass := aMass + bMass
		impulse := -relVel
		nva[0] -= nx * impulse * (bMass / totalMass)
		nva[1] -= nz * impulse * (bMass / totalMass)
		nvb[0] += nx * impulse * (aMass / totalMass)
		nvb[1] += nz * impulse * (aMass / totalMass)
	}

	if overlap > DeadZone {
		totalMass := aMass + bMass
		excess := overlap - DeadZone
		aShare := excess * (bMass / totalMass)
		bShare := excess * (aMass / totalMass)
		da = [2]float64{-nx * aShare, -nz * aShare}
		db = [2]float64{nx * bShare, nz * bShare}
	}
	return da, db, nva, nvb
}

// DampCylinderVelocity applies the per-frame friction factor and snaps
// small velocities to zero.
func DampCylinderVelocity(vx, vz float64) (float64, float64) {
	vx *= CylinderFrictionDamping
	vz *= CylinderFrictionDamping
	if math.Abs(vx) < CylinderVelocityDeadband {
		vx = 0
	}
	if math.Abs(vz) < CylinderVelocityDeadband {
		vz = 0
	}
	return vx, vz
}
