package physics

import (
	"github.com/pkg/errors"
)

var (
	// ErrBackendUnavailable is returned by Connect when the requested mode cannot be served, e.g.
	// GUI mode without a terminal.
	ErrBackendUnavailable = errors.New("physics backend unavailable")
	// ErrNotConnected is returned by every Client method once the client is disconnected.
	ErrNotConnected = errors.New("not connected to physics backend")
	// ErrAssetNotFound is returned when no search path contains the requested asset.
	ErrAssetNotFound = errors.New("asset not found")
	// ErrInvalidBody is returned for a body id that was never returned by LoadURDF.
	ErrInvalidBody = errors.New("invalid body id")
	// ErrInvalidJointIndex is returned for a joint index outside [0, GetNumJoints).
	ErrInvalidJointIndex = errors.New("invalid joint index")
	// ErrJointNotActuated is returned when commanding a joint without a degree of freedom.
	ErrJointNotActuated = errors.New("joint has no actuated degree of freedom")
	// ErrUnknownControlMode is returned for a ControlMode outside the defined set.
	ErrUnknownControlMode = errors.New("unknown control mode")
)

func newAssetNotFoundError(name string, searched []string) error {
	return errors.Wrapf(ErrAssetNotFound, "%q (searched %v)", name, searched)
}

func newInvalidBodyError(id BodyID) error {
	return errors.Wrapf(ErrInvalidBody, "body %d", id)
}

func newInvalidJointIndexError(id BodyID, idx, numJoints int) error {
	return errors.Wrapf(ErrInvalidJointIndex, "joint %d of body %d (has %d joints)", idx, id, numJoints)
}

func newJointNotActuatedError(id BodyID, idx int, name string) error {
	return errors.Wrapf(ErrJointNotActuated, "joint %d (%s) of body %d", idx, name, id)
}
