package assembly

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `
0 FILE main.ldr
1 4 1 0 0 1 0 0 0 1 0 0 0 1 wheel.dat
1 16 0 0 0 1 0 0 0 1 0 0 0 1 arm.ldr
0 FILE arm.ldr
1 16 2 0 0 1 0 0 0 1 0 0 0 1 gripper.dat
`

func TestFlattenBasic(t *testing.T) {
	doc, err := Load(strings.NewReader(sampleDoc), "sample")
	require.NoError(t, err)
	require.Len(t, doc.Parts, 2)
	require.Len(t, doc.Submodels, 1)

	wheel := doc.Parts[0]
	assert.Equal(t, "wheel.dat", wheel.PartID)
	assert.Equal(t, 4, wheel.ColorCode)
	assert.Equal(t, NoSubmodel, wheel.SubmodelIndex)

	gripper := doc.Parts[1]
	assert.Equal(t, "gripper.dat", gripper.PartID)
	assert.Equal(t, 0, gripper.SubmodelIndex)
	// Color 16 at the arm placement (itself color 16) inherits the
	// document default, then propagates into the gripper part.
	assert.Equal(t, defaultColor, gripper.ColorCode)

	assert.Equal(t, "arm.ldr", doc.Submodels[0].Name)
	assert.Equal(t, 1, doc.Submodels[0].PartStart)
	assert.Equal(t, 1, doc.Submodels[0].PartCount)
}

func TestFlatteningIsAssociative(t *testing.T) {
	// S placed at (T,R) containing P at (t,r): flattened world transform
	// must equal (T + R*t, R*r).
	const doc = `
0 FILE main.ldr
1 4 5 0 10 0 0 1 0 1 0 -1 0 0 sub.ldr
0 FILE sub.ldr
1 4 1 2 3 1 0 0 0 1 0 0 0 1 part.dat
`
	parsed, err := Load(strings.NewReader(doc), "assoc")
	require.NoError(t, err)
	require.Len(t, parsed.Parts, 1)

	// R is the 90-degree-about-Y rotation encoded in the placement line:
	// row-major [0 0 1 / 0 1 0 / -1 0 0].
	part := parsed.Parts[0]
	// world_pos = T + R*t = (5,0,10) + R*(1,2,3)
	expectedX := 5 + (0*1 + 0*2 + 1*3)
	expectedY := 0 + (0*1 + 1*2 + 0*3)
	expectedZ := 10 + (-1*1 + 0*2 + 0*3)

	assert.InDelta(t, float64(expectedX), part.Position[0], 1e-5)
	assert.InDelta(t, float64(expectedY), part.Position[1], 1e-5)
	assert.InDelta(t, float64(expectedZ), part.Position[2], 1e-5)
}

func TestColorInheritanceFromNearestNonSixteenAncestor(t *testing.T) {
	const doc = `
0 FILE main.ldr
1 7 0 0 0 1 0 0 0 1 0 0 0 1 child.ldr
0 FILE child.ldr
1 16 0 0 0 1 0 0 0 1 0 0 0 1 grandchild.ldr
0 FILE grandchild.ldr
1 16 0 0 0 1 0 0 0 1 0 0 0 1 leaf.dat
`
	parsed, err := Load(strings.NewReader(doc), "color")
	require.NoError(t, err)
	require.Len(t, parsed.Parts, 1)
	assert.Equal(t, 7, parsed.Parts[0].ColorCode)
}

func TestEmptyDocumentIsHardError(t *testing.T) {
	_, err := Load(strings.NewReader("0 FILE main.ldr\n"), "empty")
	assert.Error(t, err)
}

func TestMissingReferentIsSkippedNotFatal(t *testing.T) {
	const doc = `
0 FILE main.ldr
1 4 0 0 0 1 0 0 0 1 0 0 0 1 missing.ldr
1 4 0 0 0 1 0 0 0 1 0 0 0 1 real.dat
`
	parsed, err := Load(strings.NewReader(doc), "missing")
	require.NoError(t, err)
	require.Len(t, parsed.Parts, 1)
	assert.Equal(t, "real.dat", parsed.Parts[0].PartID)
}
