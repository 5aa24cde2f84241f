package geom

import "math"

// OBB is an oriented bounding box: a center, per-axis half extents expressed
// in the box's own frame, and the local-to-world rotation. Half extents are
// invariant under transform — only center and rotation change.
type OBB struct {
	Center      Vector3
	HalfExtents Vector3
	Rotation    Matrix3
}

// AABB is an axis-aligned bounding box, used for field walls and for mesh
// bounds before a part's OBB has been oriented.
type AABB struct {
	Min Vector3
	Max Vector3
}

// NewOBB builds an OBB directly from its three fields.
func NewOBB(center, halfExtents Vector3, rotation Matrix3) OBB {
	return OBB{Center: center, HalfExtents: halfExtents, Rotation: rotation}
}

// OBBFromAABB builds an identity-rotation OBB enclosing the given bounds,
// the same construction scene realization uses for a part's local mesh
// box before any placement rotation is applied.
func OBBFromAABB(min, max Vector3) OBB {
	center := Vector3{
		(min[0] + max[0]) / 2,
		(min[1] + max[1]) / 2,
		(min[2] + max[2]) / 2,
	}
	half := Vector3{
		(max[0] - min[0]) / 2,
		(max[1] - min[1]) / 2,
		(max[2] - min[2]) / 2,
	}
	return OBB{Center: center, HalfExtents: half, Rotation: Identity3()}
}

// Transform maps a local OBB into world space given a world translation and
// rotation: center' = R_world*center + T_world, half extents unchanged,
// rotation' = R_world * R_local.
func (o OBB) Transform(worldPos Vector3, worldRot Matrix3) OBB {
	return OBB{
		Center:      worldRot.Mul3x1(o.Center).Add(worldPos),
		HalfExtents: o.HalfExtents,
		Rotation:    ComposeRotation(worldRot, o.Rotation),
	}
}

// Corners returns the 8 world-space corners of the box, used to build an
// enclosing AABB or to feed a debug-overlay wireframe.
func (o OBB) Corners() [8]Vector3 {
	ex, ey, ez := o.HalfExtents[0], o.HalfExtents[1], o.HalfExtents[2]
	signs := [8][3]float64{
		{-1, -1, -1}, {1, -1, -1}, {-1, 1, -1}, {1, 1, -1},
		{-1, -1, 1}, {1, -1, 1}, {-1, 1, 1}, {1, 1, 1},
	}
	var out [8]Vector3
	for i, s := range signs {
		local := Vector3{s[0] * ex, s[1] * ey, s[2] * ez}
		out[i] = o.Rotation.Mul3x1(local).Add(o.Center)
	}
	return out
}

// EnclosingAABB takes the min/max of the box's 8 rotated corners.
func EnclosingAABB(o OBB) AABB {
	corners := o.Corners()
	min, max := corners[0], corners[0]
	for _, c := range corners[1:] {
		for i := 0; i < 3; i++ {
			if c[i] < min[i] {
				min[i] = c[i]
			}
			if c[i] > max[i] {
				max[i] = c[i]
			}
		}
	}
	return AABB{Min: min, Max: max}
}

// AABBAsOBB promotes an axis-aligned box to an identity-rotation OBB so it
// can be fed through the OBB-vs-OBB SAT test, matching the teacher's
// obb_intersects_aabb pattern of delegating rather than special-casing.
func AABBAsOBB(a AABB) OBB {
	return OBBFromAABB(a.Min, a.Max)
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// Intersects runs the full 15-axis Separating Axis Theorem test: 3 face
// normals of A, 3 of B, and the 9 pairwise cross products. It returns false
// as soon as any candidate axis separates the boxes.
func Intersects(a, b OBB) bool {
	t := b.Center.Sub(a.Center)

	ae := [3]float64{a.HalfExtents[0], a.HalfExtents[1], a.HalfExtents[2]}
	be := [3]float64{b.HalfExtents[0], b.HalfExtents[1], b.HalfExtents[2]}

	var aAxis, bAxis [3]Vector3
	for i := 0; i < 3; i++ {
		aAxis[i] = Col3(a.Rotation, i)
		bAxis[i] = Col3(b.Rotation, i)
	}

	var r, absR [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = aAxis[i].Dot(bAxis[j])
			absR[i][j] = absf(r[i][j]) + Epsilon
		}
	}

	ta := [3]float64{t.Dot(aAxis[0]), t.Dot(aAxis[1]), t.Dot(aAxis[2])}

	// A's three face-normal axes.
	for i := 0; i < 3; i++ {
		ra := ae[i]
		rb := be[0]*absR[i][0] + be[1]*absR[i][1] + be[2]*absR[i][2]
		if absf(ta[i]) > ra+rb {
			return false
		}
	}

	// B's three face-normal axes.
	for i := 0; i < 3; i++ {
		ra := ae[0]*absR[0][i] + ae[1]*absR[1][i] + ae[2]*absR[2][i]
		rb := be[i]
		tb := t.Dot(bAxis[i])
		if absf(tb) > ra+rb {
			return false
		}
	}

	// Nine cross-product axes, A_i x B_j, hand-unrolled per axis pair.
	// A0 x B0
	if sep00, ra, rb := ta[2]*r[1][0]-ta[1]*r[2][0],
		ae[1]*absR[2][0]+ae[2]*absR[1][0],
		be[1]*absR[0][2]+be[2]*absR[0][1]; absf(sep00) > ra+rb {
		return false
	}
	// A0 x B1
	if sep01, ra, rb := ta[2]*r[1][1]-ta[1]*r[2][1],
		ae[1]*absR[2][1]+ae[2]*absR[1][1],
		be[0]*absR[0][2]+be[2]*absR[0][0]; absf(sep01) > ra+rb {
		return false
	}
	// A0 x B2
	if sep02, ra, rb := ta[2]*r[1][2]-ta[1]*r[2][2],
		ae[1]*absR[2][2]+ae[2]*absR[1][2],
		be[0]*absR[0][1]+be[1]*absR[0][0]; absf(sep02) > ra+rb {
		return false
	}
	// A1 x B0
	if sep10, ra, rb := ta[0]*r[2][0]-ta[2]*r[0][0],
		ae[0]*absR[2][0]+ae[2]*absR[0][0],
		be[1]*absR[1][2]+be[2]*absR[1][1]; absf(sep10) > ra+rb {
		return false
	}
	// A1 x B1
	if sep11, ra, rb := ta[0]*r[2][1]-ta[2]*r[0][1],
		ae[0]*absR[2][1]+ae[2]*absR[0][1],
		be[0]*absR[1][2]+be[2]*absR[1][0]; absf(sep11) > ra+rb {
		return false
	}
	// A1 x B2
	if sep12, ra, rb := ta[0]*r[2][2]-ta[2]*r[0][2],
		ae[0]*absR[2][2]+ae[2]*absR[0][2],
		be[0]*absR[1][1]+be[1]*absR[1][0]; absf(sep12) > ra+rb {
		return false
	}
	// A2 x B0
	if sep20, ra, rb := ta[1]*r[0][0]-ta[0]*r[1][0],
		ae[0]*absR[1][0]+ae[1]*absR[0][0],
		be[1]*absR[2][2]+be[2]*absR[2][1]; absf(sep20) > ra+rb {
		return false
	}
	// A2 x B1
	if sep21, ra, rb := ta[1]*r[0][1]-ta[0]*r[1][1],
		ae[0]*absR[1][1]+ae[1]*absR[0][1],
		be[0]*absR[2][2]+be[2]*absR[2][0]; absf(sep21) > ra+rb {
		return false
	}
	// A2 x B2
	if sep22, ra, rb := ta[1]*r[0][2]-ta[0]*r[1][2],
		ae[0]*absR[1][2]+ae[1]*absR[0][2],
		be[0]*absR[2][1]+be[1]*absR[2][0]; absf(sep22) > ra+rb {
		return false
	}

	return true
}

// IntersectsAABB promotes the AABB to an identity-rotation OBB and delegates.
func IntersectsAABB(a OBB, box AABB) bool {
	return Intersects(a, AABBAsOBB(box))
}

// closestPointOnOBB projects a circle's center into the OBB's local XZ
// frame, clamps to the half extents, and transforms the clamped point back
// to world space — the closest point on the box's XZ footprint to the
// circle's center.
func closestPointOnOBB(o OBB, cx, cz float64) (closestX, closestZ float64) {
	localX := Col3(o.Rotation, 0)
	localZ := Col3(o.Rotation, 2)

	dx, dz := cx-o.Center[0], cz-o.Center[2]
	projX := dx*localX[0] + dz*localX[2]
	projZ := dx*localZ[0] + dz*localZ[2]

	if projX > o.HalfExtents[0] {
		projX = o.HalfExtents[0]
	} else if projX < -o.HalfExtents[0] {
		projX = -o.HalfExtents[0]
	}
	if projZ > o.HalfExtents[2] {
		projZ = o.HalfExtents[2]
	} else if projZ < -o.HalfExtents[2] {
		projZ = -o.HalfExtents[2]
	}

	closestX = o.Center[0] + projX*localX[0] + projZ*localZ[0]
	closestZ = o.Center[2] + projX*localX[2] + projZ*localZ[2]
	return closestX, closestZ
}

// IntersectsCircle compares the circle's center to the closest point on the
// box's XZ footprint against the radius.
func IntersectsCircle(o OBB, cx, cz, radius float64) bool {
	closestX, closestZ := closestPointOnOBB(o, cx, cz)
	ddx, ddz := cx-closestX, cz-closestZ
	distSq := ddx*ddx + ddz*ddz
	return distSq <= radius*radius
}

// CirclePenetration returns how far a circle overlaps an OBB's XZ
// footprint (radius minus the distance to the closest box point) and the
// outward unit normal from the box toward the circle's center, the same
// real-depth measurement OverlapAxis/MinimumPenetrationAxis provide for
// box-box contacts. ok is false when the circle does not overlap at all.
func CirclePenetration(o OBB, cx, cz, radius float64) (depth, normalX, normalZ float64, ok bool) {
	closestX, closestZ := closestPointOnOBB(o, cx, cz)
	ddx, ddz := cx-closestX, cz-closestZ
	dist := math.Hypot(ddx, ddz)
	if dist >= radius {
		return 0, 0, 0, false
	}
	if dist < 1e-9 {
		return radius, 1, 0, true
	}
	return radius - dist, ddx / dist, ddz / dist, true
}

// OverlapAxis returns the penetration depth of the two boxes' enclosing
// AABBs along one world axis (0=X,1=Y,2=Z), used by collision response to
// find the axis of minimum penetration rather than the full SAT result
// (spec.md §4.7: boolean SAT for detection, enclosing-AABB overlap for
// response, trading accuracy for simplicity).
func OverlapAxis(a, b AABB, axis int) float64 {
	lo := a.Max[axis]
	if b.Max[axis] < lo {
		lo = b.Max[axis]
	}
	hi := a.Min[axis]
	if b.Min[axis] > hi {
		hi = b.Min[axis]
	}
	return lo - hi
}

// MinimumPenetrationAxis scans the three world axes and returns the index
// and (positive) penetration depth of the axis with the smallest positive
// overlap, the axis collision response pushes along.
func MinimumPenetrationAxis(a, b AABB) (axis int, depth float64, ok bool) {
	best := -1
	bestDepth := 0.0
	for i := 0; i < 3; i++ {
		d := OverlapAxis(a, b, i)
		if d <= 0 {
			return 0, 0, false
		}
		if best == -1 || d < bestDepth {
			best = i
			bestDepth = d
		}
	}
	return best, bestDepth, true
}
