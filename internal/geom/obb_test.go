package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntersectsIsSymmetric(t *testing.T) {
	cases := []struct {
		name string
		a, b OBB
	}{
		{
			name: "overlapping axis-aligned",
			a:    OBBFromAABB(Vector3{-1, -1, -1}, Vector3{1, 1, 1}),
			b:    OBBFromAABB(Vector3{0, 0, 0}, Vector3{2, 2, 2}),
		},
		{
			name: "separated",
			a:    OBBFromAABB(Vector3{-1, -1, -1}, Vector3{1, 1, 1}),
			b:    OBBFromAABB(Vector3{10, 10, 10}, Vector3{12, 12, 12}),
		},
		{
			name: "rotated overlap",
			a:    NewOBB(Vector3{0, 0, 0}, Vector3{1, 1, 1}, AxisAngleRotation(Vector3{0, 1, 0}, math.Pi/4)),
			b:    OBBFromAABB(Vector3{0.5, -1, 0.5}, Vector3{1.5, 1, 1.5}),
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, Intersects(c.a, c.b), Intersects(c.b, c.a))
		})
	}
}

func TestTransformComposition(t *testing.T) {
	// Transforming an OBB by (T1,R1) then (T2,R2) must equal a single
	// transform by (T2 + R2*T1, R2*R1).
	local := OBBFromAABB(Vector3{-1, -1, -1}, Vector3{1, 1, 1})

	t1 := Vector3{1, 0, 0}
	r1 := AxisAngleRotation(Vector3{0, 1, 0}, math.Pi/6)
	t2 := Vector3{0, 0, 2}
	r2 := AxisAngleRotation(Vector3{0, 1, 0}, math.Pi/3)

	stepwise := local.Transform(t1, r1).Transform(t2, r2)

	combinedT := r2.Mul3x1(t1).Add(t2)
	combinedR := ComposeRotation(r2, r1)
	single := local.Transform(combinedT, combinedR)

	assert.InDelta(t, single.Center[0], stepwise.Center[0], 1e-9)
	assert.InDelta(t, single.Center[1], stepwise.Center[1], 1e-9)
	assert.InDelta(t, single.Center[2], stepwise.Center[2], 1e-9)
}

func TestIntersectsAABBPromotion(t *testing.T) {
	box := AABB{Min: Vector3{-1, -1, -1}, Max: Vector3{1, 1, 1}}
	obb := OBBFromAABB(Vector3{0, 0, 0}, Vector3{2, 2, 2})
	assert.True(t, IntersectsAABB(obb, box))

	far := AABB{Min: Vector3{10, 10, 10}, Max: Vector3{12, 12, 12}}
	assert.False(t, IntersectsAABB(obb, far))
}

func TestIntersectsCircle(t *testing.T) {
	obb := OBBFromAABB(Vector3{-1, -1, -1}, Vector3{1, 1, 1})
	assert.True(t, IntersectsCircle(obb, 0, 0, 0.5))
	assert.False(t, IntersectsCircle(obb, 10, 10, 0.5))
}

func TestEnclosingAABBContainsCenter(t *testing.T) {
	obb := NewOBB(Vector3{1, 2, 3}, Vector3{1, 1, 1}, AxisAngleRotation(Vector3{0, 1, 0}, math.Pi/4))
	box := EnclosingAABB(obb)
	for i := 0; i < 3; i++ {
		assert.LessOrEqual(t, box.Min[i], obb.Center[i])
		assert.GreaterOrEqual(t, box.Max[i], obb.Center[i])
	}
}

func TestMinimumPenetrationAxis(t *testing.T) {
	a := AABB{Min: Vector3{0, 0, 0}, Max: Vector3{10, 10, 10}}
	b := AABB{Min: Vector3{9, 0, 0}, Max: Vector3{19, 10, 10}}
	axis, depth, ok := MinimumPenetrationAxis(a, b)
	assert.True(t, ok)
	assert.Equal(t, 0, axis)
	assert.InDelta(t, 1.0, depth, 1e-9)
}
