package collision

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edster9/vexiq-simulator/internal/geom"
)

func boxAt(cx float64, halfX float64) geom.OBB {
	return geom.OBBFromAABB(geom.Vector3{cx - halfX, -1, -1}, geom.Vector3{cx + halfX, 1, 1})
}

func TestDeadZoneSuppressesSmallPenetration(t *testing.T) {
	// Two unit-half-extent boxes along X, penetration 0.14in: centers 1.86
	// apart (half extents sum to 2.0, overlap = 2.0 - 1.86 = 0.14).
	a := []geom.OBB{boxAt(0, 1.0)}
	b := []geom.OBB{boxAt(1.86, 1.0)}

	pushA, pushB := ResolveRobotRobot(a, b)
	assert.False(t, pushA.InContact)
	assert.False(t, pushB.InContact)
}

func TestPenetrationAboveDeadZoneCorrects(t *testing.T) {
	a := []geom.OBB{boxAt(0, 1.0)}
	b := []geom.OBB{boxAt(1.84, 1.0)} // overlap = 0.16, slop over the dead-zone = 0.01

	pushA, pushB := ResolveRobotRobot(a, b)
	assert.True(t, pushA.InContact)
	assert.True(t, pushB.InContact)
	assert.InDelta(t, 0.005, -pushA.DeltaX, 1e-9)
	assert.InDelta(t, 0.005, pushB.DeltaX, 1e-9)
}

func TestResolveCylinderPushScalesWithPenetration(t *testing.T) {
	robot := boxAt(0, 1.0) // spans X -1..1, Z -1..1, so the box edge is at Z=1

	_, _, _, _, noContact := ResolveCylinder(robot, 0, 2.1, 1.0, 0, 5)
	assert.False(t, noContact)

	pushXDeep, pushZDeep, _, _, deepOK := ResolveCylinder(robot, 0, 1.5, 1.0, 0, 5)
	require.True(t, deepOK)
	pushXShallow, pushZShallow, _, _, shallowOK := ResolveCylinder(robot, 0, 1.95, 1.0, 0, 5)
	require.True(t, shallowOK)

	deepDepth := math.Hypot(pushXDeep, pushZDeep)
	shallowDepth := math.Hypot(pushXShallow, pushZShallow)
	assert.Greater(t, deepDepth, shallowDepth)
	assert.InDelta(t, 0.5, deepDepth, 1e-9)   // overlap = radius(1.0) - dist(0.5)
	assert.InDelta(t, 0.05, shallowDepth, 1e-9) // overlap = radius(1.0) - dist(0.95)
}

func TestBuildHierarchyEnclosesParts(t *testing.T) {
	parts := []LocalPart{
		{OBB: geom.OBBFromAABB(geom.Vector3{-1, -1, -1}, geom.Vector3{1, 1, 1}), SubmodelIndex: 0},
		{OBB: geom.OBBFromAABB(geom.Vector3{5, -1, -1}, geom.Vector3{7, 1, 1}), SubmodelIndex: 0},
		{OBB: geom.OBBFromAABB(geom.Vector3{0, 0, 0}, geom.Vector3{1, 1, 1}), SubmodelIndex: -1},
	}
	h := BuildHierarchy(parts, 1)
	assert.Len(t, h.Parts, 3)
	box := geom.EnclosingAABB(h.Submodels[0])
	assert.InDelta(t, -1.0, box.Min[0], 1e-9)
	assert.InDelta(t, 7.0, box.Max[0], 1e-9)
}
