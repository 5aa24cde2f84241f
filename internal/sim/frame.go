package sim

import (
	"math"

	"github.com/edster9/vexiq-simulator/internal/collision"
	"github.com/edster9/vexiq-simulator/internal/geom"
	"github.com/edster9/vexiq-simulator/internal/robotdef"
)

// Step advances the whole simulation by one frame, in the exact order
// spec.md §4.8 mandates: drivetrain integration, iterated collision
// response, cylinder physics, then pose/wheel-spin publish. inputs must
// have one entry per robot, already resolved to tank percentages by the
// input layer (keyboard, gamepad, or IPC) — §4.8 step 2.
func (o *Orchestrator) Step(dt float64, inputs []RobotInput) {
	if dt > drivetrainMaxStep {
		dt = drivetrainMaxStep
	}

	// Step 3: advance every drivetrain.
	for i := range o.Robots {
		if i < len(inputs) {
			o.Robots[i].Drivetrain.SetMotors(inputs[i].LeftPct, inputs[i].RightPct)
		}
		o.Robots[i].InContact(false) // cleared each frame, re-set by response below
		o.Robots[i].Drivetrain.Update(dt)
	}

	// Step 4: iterated collision response.
	walls := FieldWalls()
	for iter := 0; iter < collision.SubstepIterations; iter++ {
		worldParts, worldSubmodels := o.worldHierarchies()

		for a := 0; a < len(o.Robots); a++ {
			for b := a + 1; b < len(o.Robots); b++ {
				pushA, pushB := collision.ResolveRobotRobot(worldSubmodels[a], worldSubmodels[b])
				o.applyRobotPush(a, pushA)
				o.applyRobotPush(b, pushB)
			}
		}

		for ri := range o.Robots {
			for _, w := range walls {
				depth, inContact := collision.ResolveWall(worldParts[ri], w.AABB, w.Axis, w.IsMax)
				if !inContact {
					continue
				}
				state := o.Robots[ri].Drivetrain
				nx, nz := wallNormal(w)
				if w.Axis == 0 {
					state.PosX += depth
					state.VelX = 0
				} else {
					state.PosZ += depth
					state.VelZ = 0
				}
				state.InContact = true
				state.ContactNormalX, state.ContactNormalZ = nx, nz
			}
		}

		o.resolveCylinderContacts(worldSubmodels)
	}

	// Step 5: cylinder-cylinder physics and field clamp.
	o.stepCylinders()

	// Step 6: publish wheel spin angles from the freshly integrated pose.
	o.integrateWheelSpins(dt)

	// Step 7 (debug only): detection pass for colored visualization.
	if o.DebugDetection {
		o.runDetectionPass()
	}
}

const drivetrainMaxStep = 0.1

// InContact is a tiny helper so Step can clear last frame's contact flag
// without reaching into drivetrain internals at each call site.
func (r *RobotInstance) InContact(v bool) {
	r.Drivetrain.InContact = v
	if !v {
		r.Drivetrain.ContactNormalX, r.Drivetrain.ContactNormalZ = 0, 0
	}
}

func wallNormal(w wall) (nx, nz float64) {
	sign := 1.0
	if w.IsMax {
		sign = -1.0
	} else {
		sign = 1.0
	}
	if w.Axis == 0 {
		return sign, 0
	}
	return 0, sign
}

// worldHierarchies transforms every robot's local hierarchy into world
// space for this substep iteration: part OBBs (for wall narrow-phase) and
// submodel OBBs (for robot-robot and cylinder broad/narrow phase).
func (o *Orchestrator) worldHierarchies() (parts [][]geom.OBB, submodels [][]geom.OBB) {
	parts = make([][]geom.OBB, len(o.Robots))
	submodels = make([][]geom.OBB, len(o.Robots))
	for i, r := range o.Robots {
		worldPos := geom.Vector3{r.Drivetrain.PosX, r.GroundOffsetY, r.Drivetrain.PosZ}
		p, s := r.Hierarchy.WorldTransform(worldPos, r.Drivetrain.Yaw)
		parts[i] = p
		submodels[i] = s
	}
	return parts, submodels
}

func (o *Orchestrator) applyRobotPush(index int, push collision.PushResult) {
	if !push.InContact {
		return
	}
	dt := o.Robots[index].Drivetrain
	dt.PosX += push.DeltaX
	dt.PosZ += push.DeltaZ
	dt.InContact = true
	dt.ContactNormalX, dt.ContactNormalZ = push.NormalX, push.NormalZ
}

// resolveCylinderContacts runs the robot-cylinder broad/narrow phase
// (submodel OBB vs circle) and applies the one-way momentum transfer:
// the cylinder is pushed and accelerated, the robot is untouched.
func (o *Orchestrator) resolveCylinderContacts(worldSubmodels [][]geom.OBB) {
	for ri := range o.Robots {
		for ci := range o.Cylinders {
			c := &o.Cylinders[ci]
			dtState := o.Robots[ri].Drivetrain
			for _, sub := range worldSubmodels[ri] {
				if !geom.IntersectsCircle(sub, c.X, c.Z, c.Radius) {
					continue
				}
				pushX, pushZ, tvx, tvz, ok := collision.ResolveCylinder(sub, c.X, c.Z, c.Radius, dtState.VelX, dtState.VelZ)
				if !ok {
					continue
				}
				c.X += pushX
				c.Z += pushZ
				c.VelX += tvx
				c.VelZ += tvz
				break
			}
		}
	}
}

// stepCylinders runs pairwise circle-circle resolution, per-frame
// friction damping, and a zero-restitution clamp to the field boundary.
func (o *Orchestrator) stepCylinders() {
	for i := 0; i < len(o.Cylinders); i++ {
		for j := i + 1; j < len(o.Cylinders); j++ {
			a, b := &o.Cylinders[i], &o.Cylinders[j]
			da, db, nva, nvb := collision.ResolveCylinderCylinder(
				a.X, a.Z, a.Radius, a.Mass, a.VelX, a.VelZ,
				b.X, b.Z, b.Radius, b.Mass, b.VelX, b.VelZ,
			)
			a.X += da[0]
			a.Z += da[1]
			b.X += db[0]
			b.Z += db[1]
			a.VelX, a.VelZ = nva[0], nva[1]
			b.VelX, b.VelZ = nvb[0], nvb[1]
		}
	}
	for i := range o.Cylinders {
		c := &o.Cylinders[i]
		c.VelX, c.VelZ = collision.DampCylinderVelocity(c.VelX, c.VelZ)
		c.X, c.Z = ClampCylinderToField(c.X, c.Z, c.Radius)
	}
}

// integrateWheelSpins advances each wheel assembly's spin angle from the
// drivetrain's freshly published wheel surface velocities.
func (o *Orchestrator) integrateWheelSpins(dt float64) {
	for ri := range o.Robots {
		r := &o.Robots[ri]
		for wi, w := range r.Definition.WheelAssemblies {
			if wi >= len(r.Wheels) {
				continue
			}
			radiusIn := w.OuterDiameterMM * MMToIn / 2.0
			if radiusIn <= 0 {
				continue
			}
			linVel := r.Drivetrain.RightWheelVel
			if w.Side == robotdef.SideLeft {
				linVel = r.Drivetrain.LeftWheelVel
			}
			r.Wheels[wi].LinearWheelVelIn = linVel
			r.Wheels[wi].SpinAngleRad += (linVel / radiusIn) * dt
			r.Wheels[wi].SpinAngleRad = math.Mod(r.Wheels[wi].SpinAngleRad, 2*math.Pi)
		}
	}
}

// runDetectionPass re-runs the full hierarchical detection (debug-only,
// spec.md §4.7) purely to mark colliding parts for rendering.
func (o *Orchestrator) runDetectionPass() {
	worldParts, worldSubmodels := o.worldHierarchies()
	for i := range o.Parts {
		o.Parts[i].State = collision.StateNone
	}
	for a := 0; a < len(o.Robots); a++ {
		for b := a + 1; b < len(o.Robots); b++ {
			hA, hB := o.Robots[a].Hierarchy, o.Robots[b].Hierarchy
			worldA := struct{ Parts, Submodels []geom.OBB }{worldParts[a], worldSubmodels[a]}
			worldB := struct{ Parts, Submodels []geom.OBB }{worldParts[b], worldSubmodels[b]}
			hits := collision.DetectRobotRobot(hA, hB, worldA, worldB)
			for _, hit := range hits {
				o.markPartTouch(a, hit[0])
				o.markPartTouch(b, hit[1])
			}
		}
	}
}

func (o *Orchestrator) markPartTouch(robotIndex, localPartIndex int) {
	r := o.Robots[robotIndex]
	globalIdx := r.PartStart + localPartIndex
	if globalIdx < 0 || globalIdx >= len(o.Parts) {
		return
	}
	o.Parts[globalIdx].State = collision.StatePartTouch
}
