// Package demo runs the basic joint control demo: connect to the physics backend, load a ground
// plane and a fixed-base arm, list the arm's joints, then drive one joint along a sine wave in
// position control for a fixed number of steps before disconnecting.
package demo

import (
	"context"
	"io/fs"

	"github.com/golang/geo/r3"

	"github.com/simlab/jointsim/logging"
	"github.com/simlab/jointsim/physics"
)

// Session is the part of the physics backend the demo uses.
type Session interface {
	SetAdditionalSearchPath(dir string) error
	AddSearchFS(name string, fsys fs.FS) error
	SetGravity(gravity r3.Vector) error
	SetTimeStep(dt float64) error
	LoadURDF(ctx context.Context, name string, opts physics.LoadOptions) (physics.BodyID, error)
	GetNumJoints(id physics.BodyID) (int, error)
	GetJointInfo(id physics.BodyID, jointIndex int) (physics.JointInfo, error)
	GetJointState(id physics.BodyID, jointIndex int) (physics.JointState, error)
	SetJointMotorControl(id physics.BodyID, jointIndex int, ctl physics.MotorControl) error
	StepSimulation() error
	SimTime() (float64, int64)
	Disconnect() error
}

var _ Session = (*physics.Client)(nil)

// ConnectFunc opens a session in the given mode.
type ConnectFunc func(ctx context.Context, mode physics.Mode) (Session, error)

// PhysicsConnector returns a ConnectFunc backed by the in-process physics backend.
func PhysicsConnector(logger logging.Logger, opts ...physics.Option) ConnectFunc {
	return func(ctx context.Context, mode physics.Mode) (Session, error) {
		c, err := physics.Connect(ctx, mode, logger, opts...)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}
