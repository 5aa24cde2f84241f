package robotdef

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edster9/vexiq-simulator/internal/geom"
)

const sampleDef = `
version: 1
source_file: robot.mpd
main_model: robot.ldr
summary:
  total_wheels: 4
  total_motors: 2
  total_sensors: 0
  has_brain: true
drivetrain:
  type: tank
  left_drive: left_wheels
  right_drive: right_wheels
  rotation_center: [0, 20, 0]
  rotation_axis: [0, 1, 0]
  track_width: 160
  wheel_diameter: 65
motors:
  - submodel: left_wheels
    port: 1
    count: 2
  - submodel: right_wheels
    port: 2
    count: 2
submodels:
  claw:
    position: [0, 10, 50]
    rotation_axis: [1, 0, 0]
    rotation_origin: [0, 10, 50]
    rotation_limits: [-30, 30]
wheel_assemblies:
  left_front:
    world_position: [-80, 0, 40]
    spin_axis: [1, 0, 0]
    outer_diameter_mm: 65
    parts:
      - part: wheel.dat
  right_front:
    world_position: [80, 0, 40]
    spin_axis: [1, 0, 0]
    outer_diameter_mm: 65
    parts:
      - part: wheel.dat
`

func TestLoadRobotDefinition(t *testing.T) {
	def, err := Load(strings.NewReader(sampleDef), "sample.robotdef")
	require.NoError(t, err)

	assert.Equal(t, DrivetrainTank, def.DrivetrainType)
	assert.Equal(t, 160.0, def.TrackWidth)
	assert.Len(t, def.Motors, 2)
	assert.Len(t, def.WheelAssemblies, 2)

	claw := def.GetSubmodel("claw")
	require.NotNil(t, claw)
	assert.True(t, claw.HasKinematics)

	var left, right *WheelAssembly
	for i := range def.WheelAssemblies {
		switch def.WheelAssemblies[i].ID {
		case "left_front":
			left = &def.WheelAssemblies[i]
		case "right_front":
			right = &def.WheelAssemblies[i]
		}
	}
	require.NotNil(t, left)
	require.NotNil(t, right)
	assert.Equal(t, SideLeft, left.Side)
	assert.Equal(t, SideRight, right.Side)
}

func TestDefaultDefinitionIsNonDriving(t *testing.T) {
	def := Default()
	assert.Equal(t, DrivetrainUnknown, def.DrivetrainType)
	assert.Equal(t, geom.Vector3{0, 1, 0}, def.RotationAxis)
}
