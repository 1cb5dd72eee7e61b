package physics

import (
	"context"
	"math"

	"github.com/golang/geo/r3"
	"github.com/samber/lo"

	"github.com/simlab/jointsim/referenceframe"
	"github.com/simlab/jointsim/utils"
)

const (
	minRotorInertia  = 1e-4
	minSliderInertia = 1e-3
)

// LoadOptions configures LoadURDF.
type LoadOptions struct {
	BasePosition r3.Vector
	// UseFixedBase anchors the root link in world space.
	UseFixedBase bool
}

// JointInfo describes one joint of a body.
type JointInfo struct {
	Index int
	Name  string
	Type  referenceframe.JointType
	// QIndex and UIndex locate the joint in the body's position and velocity state vectors, or
	// are -1 for joints without a degree of freedom.
	QIndex int
	UIndex int

	Damping  float64
	Friction float64
	// LowerLimit > UpperLimit means the joint is unlimited.
	LowerLimit  float64
	UpperLimit  float64
	MaxForce    float64
	MaxVelocity float64

	LinkName            string
	Axis                r3.Vector
	ParentFramePosition r3.Vector
	ParentFrameRPY      r3.Vector
	ParentIndex         int
}

// JointState is the dynamic state of one joint.
type JointState struct {
	Position      float64
	Velocity      float64
	AppliedTorque float64
}

// BodyInfo names a body.
type BodyInfo struct {
	BaseName string
	BodyName string
}

type body struct {
	id        BodyID
	asset     string
	model     *referenceframe.Model
	fixedBase bool
	// static bodies have a massless root link and never move
	static  bool
	basePos r3.Vector
	baseVel r3.Vector
	joints  []*jointState
}

type jointState struct {
	def     *referenceframe.Joint
	info    JointInfo
	inertia float64

	q, qd, applied float64
	motor          MotorControl
}

// LoadURDF loads a robot description by name, resolving it against the search paths, and returns
// the new body's id.
func (c *Client) LoadURDF(ctx context.Context, name string, opts LoadOptions) (BodyID, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return 0, ErrNotConnected
	}

	model, err := c.loadModel(name)
	if err != nil {
		return 0, err
	}

	b := &body{
		id:        BodyID(len(c.bodies)),
		asset:     name,
		model:     model,
		fixedBase: opts.UseFixedBase,
		static:    model.RootLink().Inertial.Mass == 0,
		basePos:   opts.BasePosition,
		joints:    newJointStates(model),
	}
	c.bodies = append(c.bodies, b)

	c.logger.Debugw("loaded body",
		"id", b.id,
		"asset", name,
		"model", model.Name(),
		"joints", model.NumJoints(),
		"dof", len(model.DoF()),
		"fixed_base", b.fixedBase,
		"static", b.static,
	)
	return b.id, nil
}

func newJointStates(model *referenceframe.Model) []*jointState {
	states := make([]*jointState, 0, model.NumJoints())
	qIndex, uIndex := 7, 6
	for idx, def := range model.Joints() {
		info := JointInfo{
			Index:               idx,
			Name:                def.Name,
			Type:                def.Type,
			QIndex:              -1,
			UIndex:              -1,
			Damping:             def.Damping,
			Friction:            def.Friction,
			LowerLimit:          0,
			UpperLimit:          -1,
			MaxForce:            def.Effort,
			MaxVelocity:         def.Velocity,
			LinkName:            def.Child,
			Axis:                def.Axis,
			ParentFramePosition: def.Origin,
			ParentFrameRPY:      def.RPY,
			ParentIndex:         model.ParentJointIndex(idx),
		}
		if def.Limited {
			info.LowerLimit, info.UpperLimit = def.Lower, def.Upper
		}
		if def.Type.Movable() {
			info.QIndex, info.UIndex = qIndex, uIndex
			qIndex++
			uIndex++
		} else {
			info.Axis = r3.Vector{}
		}

		force := def.Effort
		if force <= 0 {
			force = DefaultJointMotorForce
		}
		js := &jointState{
			def:     def,
			info:    info,
			inertia: effectiveInertia(model, idx),
			motor: MotorControl{
				Mode:  VelocityControl,
				Force: force,
			}.withDefaults(),
		}
		// a joint whose range excludes zero starts at the nearest limit rather than snapping
		// there on the first step
		if def.Limited && def.Type.Movable() {
			js.q = utils.Clamp(0, def.Lower, def.Upper)
		}
		states = append(states, js)
	}
	return states
}

// effectiveInertia is the inertia a joint's motor sees: the summed moments of every link it
// carries about its axis for a revolute joint, or their summed mass for a prismatic joint.
func effectiveInertia(model *referenceframe.Model, idx int) float64 {
	def := model.Joints()[idx]
	carried := subtreeLinks(model, idx)
	switch def.Type {
	case referenceframe.Revolute:
		inertia := lo.SumBy(carried, func(l *referenceframe.Link) float64 {
			offset := l.Inertial.Origin
			// parallel axis term for the centre of mass offset perpendicular to the axis
			perp := offset.Sub(def.Axis.Mul(offset.Dot(def.Axis)))
			return l.Inertial.MomentAbout(def.Axis) + l.Inertial.Mass*perp.Norm2()
		})
		return math.Max(inertia, minRotorInertia)
	case referenceframe.Prismatic:
		mass := lo.SumBy(carried, func(l *referenceframe.Link) float64 { return l.Inertial.Mass })
		return math.Max(mass, minSliderInertia)
	default:
		return 0
	}
}

// subtreeLinks returns the child link of joint idx and every link below it.
func subtreeLinks(model *referenceframe.Model, idx int) []*referenceframe.Link {
	joints := model.Joints()
	inSubtree := map[string]bool{joints[idx].Child: true}
	// joints are in depth-first order, so descendants follow idx and parents precede children
	for _, j := range joints[idx+1:] {
		if inSubtree[j.Parent] {
			inSubtree[j.Child] = true
		}
	}
	links := make([]*referenceframe.Link, 0, len(inSubtree))
	for name := range inSubtree {
		if link, ok := model.Link(name); ok {
			links = append(links, link)
		}
	}
	return links
}

func (c *Client) bodyLocked(id BodyID) (*body, error) {
	if !c.connected {
		return nil, ErrNotConnected
	}
	if id < 0 || int(id) >= len(c.bodies) {
		return nil, newInvalidBodyError(id)
	}
	return c.bodies[id], nil
}

func (c *Client) jointLocked(id BodyID, idx int) (*jointState, error) {
	b, err := c.bodyLocked(id)
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(b.joints) {
		return nil, newInvalidJointIndexError(id, idx, len(b.joints))
	}
	return b.joints[idx], nil
}

// NumBodies returns the number of loaded bodies.
func (c *Client) NumBodies() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return 0, ErrNotConnected
	}
	return len(c.bodies), nil
}

// GetBodyInfo returns the root link name and model name of a body.
func (c *Client) GetBodyInfo(id BodyID) (BodyInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, err := c.bodyLocked(id)
	if err != nil {
		return BodyInfo{}, err
	}
	return BodyInfo{BaseName: b.model.RootLink().Name, BodyName: b.model.Name()}, nil
}

// GetNumJoints returns the number of joints of a body, fixed joints included.
func (c *Client) GetNumJoints(id BodyID) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, err := c.bodyLocked(id)
	if err != nil {
		return 0, err
	}
	return len(b.joints), nil
}

// GetJointInfo returns the static description of a joint.
func (c *Client) GetJointInfo(id BodyID, jointIndex int) (JointInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	js, err := c.jointLocked(id, jointIndex)
	if err != nil {
		return JointInfo{}, err
	}
	return js.info, nil
}

// GetJointState returns the position, velocity and last applied motor torque of a joint.
func (c *Client) GetJointState(id BodyID, jointIndex int) (JointState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	js, err := c.jointLocked(id, jointIndex)
	if err != nil {
		return JointState{}, err
	}
	return JointState{Position: js.q, Velocity: js.qd, AppliedTorque: js.applied}, nil
}

// ResetJointState teleports a joint to a position and velocity, bypassing dynamics.
func (c *Client) ResetJointState(id BodyID, jointIndex int, position, velocity float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	js, err := c.jointLocked(id, jointIndex)
	if err != nil {
		return err
	}
	if !js.def.Type.Movable() {
		return newJointNotActuatedError(id, jointIndex, js.def.Name)
	}
	js.q, js.qd, js.applied = position, velocity, 0
	return nil
}

// GetBasePosition returns the world position of a body's root link.
func (c *Client) GetBasePosition(id BodyID) (r3.Vector, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, err := c.bodyLocked(id)
	if err != nil {
		return r3.Vector{}, err
	}
	return b.basePos, nil
}
