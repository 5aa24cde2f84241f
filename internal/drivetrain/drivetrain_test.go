package drivetrain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNeutralityWithZeroCommands(t *testing.T) {
	dt := New(DefaultConfig())
	for i := 0; i < 60; i++ {
		dt.Update(1.0 / 60.0)
	}
	assert.InDelta(t, 0.0, dt.PosX, 1e-9)
	assert.InDelta(t, 0.0, dt.PosZ, 1e-9)
	assert.InDelta(t, 0.0, dt.Yaw, 1e-9)
}

func TestMirroredCommandsProduceNoRotation(t *testing.T) {
	dt := New(DefaultConfig())
	dt.SetMotors(50, 50)
	for i := 0; i < 60; i++ {
		dt.Update(1.0 / 60.0)
	}
	assert.InDelta(t, 0.0, dt.AngularVel, 1e-6)
}

func TestOpposedCommandsProduceNoForwardVelocity(t *testing.T) {
	dt := New(DefaultConfig())
	dt.SetMotors(-50, 50)
	for i := 0; i < 60; i++ {
		dt.Update(1.0 / 60.0)
	}
	assert.InDelta(t, 0.0, dt.LinearVelocity, 1e-6)
	assert.Greater(t, dt.AngularVel, 0.0) // CCW for (-left, +right)
}

func TestScenarioS1StraightDrive(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TrackWidthIn = 10
	cfg.WheelDiameterIn = 4
	cfg.RobotMassLbs = 3
	cfg.FrictionCoeff = 0.8
	dt := New(cfg)
	dt.SetMotors(50, 50)

	steps := int(1.0 / (1.0 / 60.0))
	for i := 0; i < steps; i++ {
		dt.Update(1.0 / 60.0)
	}

	assert.Less(t, math.Abs(dt.PosX), 0.01)
	assert.Greater(t, dt.PosZ, 3.0)
	assert.InDelta(t, 0.0, dt.Yaw, 1e-3)
}

func TestScenarioS2InPlaceTurn(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TrackWidthIn = 10
	cfg.WheelDiameterIn = 4
	cfg.RobotMassLbs = 3
	cfg.FrictionCoeff = 0.8
	dt := New(cfg)
	dt.SetMotors(-50, 50)

	steps := int(1.0 / (1.0 / 60.0))
	for i := 0; i < steps; i++ {
		dt.Update(1.0 / 60.0)
	}

	assert.Less(t, math.Abs(dt.PosX), 0.5)
	assert.Less(t, math.Abs(dt.PosZ), 0.5)
	assert.Greater(t, dt.Yaw, 0.0)
}

func TestUpdateClampsOversizedDt(t *testing.T) {
	dt := New(DefaultConfig())
	dt.SetMotors(50, 50)
	// Update itself also clamps defensively to MaxStepSeconds.
	dt.Update(5.0)
	assert.False(t, math.IsNaN(dt.PosZ))
	assert.False(t, math.IsInf(dt.PosZ, 0))
}
