package referenceframe

import (
	"fmt"

	"github.com/golang/geo/r3"
)

// JointType is the integer joint type code reported by joint introspection.
type JointType int

// The joint type codes. The numbering is stable and part of the printed introspection output.
const (
	Revolute JointType = iota
	Prismatic
	Spherical
	Planar
	Fixed
)

// URDF joint type attribute values.
const (
	RevoluteJoint   = "revolute"
	ContinuousJoint = "continuous"
	PrismaticJoint  = "prismatic"
	FixedJoint      = "fixed"
	FloatingJoint   = "floating"
	PlanarJoint     = "planar"
	SphericalJoint  = "spherical"
)

func (jt JointType) String() string {
	switch jt {
	case Revolute:
		return "revolute"
	case Prismatic:
		return "prismatic"
	case Spherical:
		return "spherical"
	case Planar:
		return "planar"
	case Fixed:
		return "fixed"
	}
	return fmt.Sprintf("JointType(%d)", int(jt))
}

// Movable reports whether the joint has a single actuated degree of freedom.
func (jt JointType) Movable() bool {
	return jt == Revolute || jt == Prismatic
}

// jointTypeFromURDF maps the URDF type attribute to a JointType.
func jointTypeFromURDF(urdfType string) (JointType, error) {
	switch urdfType {
	case RevoluteJoint, ContinuousJoint:
		return Revolute, nil
	case PrismaticJoint:
		return Prismatic, nil
	case FixedJoint:
		return Fixed, nil
	case PlanarJoint:
		return Planar, nil
	case SphericalJoint:
		return Spherical, nil
	default:
		return 0, NewUnsupportedJointTypeError(urdfType)
	}
}

// Joint is a joint of a Model connecting a parent link to a child link.
type Joint struct {
	Name     string
	Type     JointType
	URDFType string
	Parent   string
	Child    string

	// Origin and RPY place the child frame relative to the parent link, in meters and radians.
	Origin r3.Vector
	RPY    r3.Vector
	Axis   r3.Vector

	// Limited is false for continuous joints and joints declared without a <limit>. Lower and
	// Upper are in radians for revolute joints and meters for prismatic joints.
	Limited  bool
	Lower    float64
	Upper    float64
	Effort   float64
	Velocity float64

	Damping  float64
	Friction float64
}

// Link is a rigid body of a Model.
type Link struct {
	Name     string
	Inertial Inertial
	// Collisions holds axis-aligned boxes in the link frame. Spheres and cylinders are stored as
	// their bounding boxes.
	Collisions []Box
}

// Inertial is the mass description of a link.
type Inertial struct {
	Mass   float64
	Origin r3.Vector
	Ixx    float64
	Iyy    float64
	Izz    float64
}

// MomentAbout returns the moment of inertia about the given unit axis, using only the diagonal
// terms of the inertia tensor.
func (in Inertial) MomentAbout(axis r3.Vector) float64 {
	return in.Ixx*axis.X*axis.X + in.Iyy*axis.Y*axis.Y + in.Izz*axis.Z*axis.Z
}

// Box is an axis-aligned box geometry centered at Origin.
type Box struct {
	Origin r3.Vector
	Size   r3.Vector
}

// Top returns the z coordinate of the box's upper face in the link frame.
func (b Box) Top() float64 {
	return b.Origin.Z + b.Size.Z/2
}
