package sim

import "github.com/edster9/vexiq-simulator/internal/geom"

// Field dimensions: the VEX IQ competition field is 8ft wide (X) by 6ft
// deep (Z), 1ft tiles, centered at the world origin.
const (
	FieldHalfWidthXIn  = 48.0 // 8ft / 2, in inches
	FieldHalfLengthZIn = 36.0 // 6ft / 2, in inches
	FieldWallHeightIn  = 12.0
)

// wall is one of the four perimeter walls: an AABB just outside the
// playing surface on the given world axis, plus which side ("max" edge
// vs "min" edge) it bounds.
type wall struct {
	Axis  int // 0 = X, 2 = Z
	IsMax bool
	AABB  geom.AABB
}

// FieldWalls returns the four perimeter wall AABBs, each a thin box just
// outside the field boundary on its axis.
func FieldWalls() [4]wall {
	const thickness = 4.0
	const tall = FieldWallHeightIn
	return [4]wall{
		{Axis: 0, IsMax: true, AABB: geom.AABB{
			Min: geom.Vector3{FieldHalfWidthXIn, 0, -FieldHalfLengthZIn},
			Max: geom.Vector3{FieldHalfWidthXIn + thickness, tall, FieldHalfLengthZIn},
		}},
		{Axis: 0, IsMax: false, AABB: geom.AABB{
			Min: geom.Vector3{-FieldHalfWidthXIn - thickness, 0, -FieldHalfLengthZIn},
			Max: geom.Vector3{-FieldHalfWidthXIn, tall, FieldHalfLengthZIn},
		}},
		{Axis: 2, IsMax: true, AABB: geom.AABB{
			Min: geom.Vector3{-FieldHalfWidthXIn, 0, FieldHalfLengthZIn},
			Max: geom.Vector3{FieldHalfWidthXIn, tall, FieldHalfLengthZIn + thickness},
		}},
		{Axis: 2, IsMax: false, AABB: geom.AABB{
			Min: geom.Vector3{-FieldHalfWidthXIn, 0, -FieldHalfLengthZIn - thickness},
			Max: geom.Vector3{FieldHalfWidthXIn, tall, -FieldHalfLengthZIn},
		}},
	}
}

// ClampCylinderToField clamps a cylinder's center to the field AABB (minus
// its radius), used by cylinder physics's zero-restitution wall clamp.
func ClampCylinderToField(x, z, radius float64) (cx, cz float64) {
	cx, cz = x, z
	if cx > FieldHalfWidthXIn-radius {
		cx = FieldHalfWidthXIn - radius
	}
	if cx < -FieldHalfWidthXIn+radius {
		cx = -FieldHalfWidthXIn + radius
	}
	if cz > FieldHalfLengthZIn-radius {
		cz = FieldHalfLengthZIn - radius
	}
	if cz < -FieldHalfLengthZIn+radius {
		cz = -FieldHalfLengthZIn + radius
	}
	return cx, cz
}
