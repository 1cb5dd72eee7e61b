package physics

import (
	"fmt"

	"github.com/pkg/errors"
)

// ControlMode selects how a joint motor drives its joint.
type ControlMode int

const (
	// VelocityControl drives the joint toward TargetVelocity.
	VelocityControl ControlMode = iota
	// PositionControl drives the joint toward TargetPosition.
	PositionControl
	// TorqueControl applies Force directly.
	TorqueControl
)

func (m ControlMode) String() string {
	switch m {
	case VelocityControl:
		return "velocity"
	case PositionControl:
		return "position"
	case TorqueControl:
		return "torque"
	}
	return fmt.Sprintf("ControlMode(%d)", int(m))
}

const (
	// DefaultPositionGain is used when MotorControl.PositionGain is zero.
	DefaultPositionGain = 0.1
	// DefaultVelocityGain is used when MotorControl.VelocityGain is zero.
	DefaultVelocityGain = 1.0
	// DefaultJointMotorForce caps the default holding motor of joints that declare no effort limit.
	DefaultJointMotorForce = 500.0
)

// MotorControl is a motor command for one joint. Force is the maximum force (N) or torque (N*m)
// for position and velocity control, and the applied value for torque control.
type MotorControl struct {
	Mode           ControlMode
	TargetPosition float64
	TargetVelocity float64
	Force          float64
	PositionGain   float64
	VelocityGain   float64
}

func (mc MotorControl) validate() error {
	switch mc.Mode {
	case VelocityControl, PositionControl, TorqueControl:
	default:
		return errors.Wrapf(ErrUnknownControlMode, "%d", int(mc.Mode))
	}
	if mc.Mode != TorqueControl && mc.Force < 0 {
		return errors.Errorf("maximum force must not be negative, got %v", mc.Force)
	}
	if mc.PositionGain < 0 || mc.VelocityGain < 0 {
		return errors.New("gains must not be negative")
	}
	return nil
}

func (mc MotorControl) withDefaults() MotorControl {
	if mc.PositionGain == 0 {
		mc.PositionGain = DefaultPositionGain
	}
	if mc.VelocityGain == 0 {
		mc.VelocityGain = DefaultVelocityGain
	}
	return mc
}

// SetJointMotorControl replaces the motor command of one joint. The command persists until it is
// replaced, and takes effect on the next StepSimulation.
func (c *Client) SetJointMotorControl(id BodyID, jointIndex int, ctl MotorControl) error {
	if err := ctl.validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	js, err := c.jointLocked(id, jointIndex)
	if err != nil {
		return err
	}
	if !js.def.Type.Movable() {
		return newJointNotActuatedError(id, jointIndex, js.def.Name)
	}
	js.motor = ctl.withDefaults()
	return nil
}

// driveTorque returns the motor torque for one step of length dt, before damping.
func (js *jointState) driveTorque(dt float64) float64 {
	m := js.motor
	var dv float64
	switch m.Mode {
	case TorqueControl:
		tau := m.Force
		if js.def.Effort > 0 {
			tau = clampAbs(tau, js.def.Effort)
		}
		return tau
	case PositionControl:
		dv = m.PositionGain*(m.TargetPosition-js.q)/dt + m.VelocityGain*(m.TargetVelocity-js.qd)
	case VelocityControl:
		dv = m.VelocityGain * (m.TargetVelocity - js.qd)
	}
	return clampAbs(js.inertia*dv/dt, m.Force)
}

func clampAbs(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}
