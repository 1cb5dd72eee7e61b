package physics

import (
	"math"

	"github.com/simlab/jointsim/utils"
)

// StepSimulation advances the world by one time step: every joint motor is solved and integrated,
// then free bases fall under gravity and come to rest on static bodies.
func (c *Client) StepSimulation() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return ErrNotConnected
	}

	dt := c.timeStep
	ground, hasGround := c.groundHeight()
	for _, b := range c.bodies {
		for _, js := range b.joints {
			if js.def.Type.Movable() {
				js.integrate(dt)
			}
		}
		if b.static || b.fixedBase {
			continue
		}
		b.baseVel = b.baseVel.Add(c.gravity.Mul(dt))
		b.basePos = b.basePos.Add(b.baseVel.Mul(dt))
		if hasGround {
			if bottom := b.basePos.Z + b.bottomOffset(); bottom < ground {
				b.basePos.Z += ground - bottom
				if b.baseVel.Z < 0 {
					b.baseVel.Z = 0
				}
			}
		}
	}

	c.simTime += dt
	c.steps++
	return nil
}

// integrate applies the motor and joint damping with semi-implicit Euler, then enforces limits.
func (js *jointState) integrate(dt float64) {
	tau := js.driveTorque(dt)
	js.applied = tau
	tau -= js.def.Damping * js.qd

	js.qd += tau / js.inertia * dt
	if js.def.Velocity > 0 && js.motor.Mode != TorqueControl {
		js.qd = clampAbs(js.qd, js.def.Velocity*velocityLimitSlack)
	}
	js.q += js.qd * dt

	if js.def.Limited {
		clamped := utils.Clamp(js.q, js.def.Lower, js.def.Upper)
		if clamped != js.q {
			js.q = clamped
			js.qd = 0
		}
	}
}

// velocityLimitSlack loosens the URDF velocity limit. Engines commonly do not enforce it at all;
// a bound keeps a badly tuned motor from launching a joint.
const velocityLimitSlack = 10

// groundHeight returns the highest collision surface among static bodies.
func (c *Client) groundHeight() (float64, bool) {
	ground := math.Inf(-1)
	for _, b := range c.bodies {
		if !b.static {
			continue
		}
		for _, box := range b.model.RootLink().Collisions {
			ground = math.Max(ground, b.basePos.Z+box.Top())
		}
	}
	return ground, !math.IsInf(ground, -1)
}

// bottomOffset is the lowest point of the root link's collision boxes relative to the base.
func (b *body) bottomOffset() float64 {
	colls := b.model.RootLink().Collisions
	if len(colls) == 0 {
		return 0
	}
	bottom := math.Inf(1)
	for _, box := range colls {
		bottom = math.Min(bottom, box.Origin.Z-box.Size.Z/2)
	}
	return bottom
}
