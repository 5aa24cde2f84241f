package scene

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleScene = `
name: skills_match
physics:
  friction: 0.75
robots:
  - mpd: robots/clawbot.mpd
    position: [0, 0, 0]
    rotation: 0
    iqpython: programs/drive.iqpython
    config: robots/clawbot.robotdef
  - mpd: robots/clawbot.mpd
    position: [48, 0, 0]
    rotation: 180
cylinders:
  - position: [0, 60]
    radius: 2.0
    height: 6.0
    color: [1, 0, 0]
`

func TestLoadSceneAppliesDefaults(t *testing.T) {
	s, err := Load(strings.NewReader(sampleScene))
	require.NoError(t, err)

	assert.Equal(t, "skills_match", s.Name)
	assert.Equal(t, 0.75, s.Physics.Friction)
	assert.Equal(t, 0.5, s.Physics.CylinderFriction) // default preserved
	assert.Equal(t, 386.1, s.Physics.Gravity)

	require.Len(t, s.Robots, 2)
	require.Len(t, s.Cylinders, 1)
}

func TestActiveRobotIsFirstWithProgram(t *testing.T) {
	s, err := Load(strings.NewReader(sampleScene))
	require.NoError(t, err)
	assert.Equal(t, 0, s.ActiveRobotIndex())
}

func TestSelectActiveRobotNoOpWithoutProgram(t *testing.T) {
	s, err := Load(strings.NewReader(sampleScene))
	require.NoError(t, err)

	_, ok := s.SelectActiveRobot(1)
	assert.False(t, ok)

	idx, ok := s.SelectActiveRobot(0)
	assert.True(t, ok)
	assert.Equal(t, 0, idx)
}
