// Package referenceframe loads robot descriptions into kinematic models.
package referenceframe

import (
	"github.com/samber/lo"
)

// Model is a tree of links connected by joints. Joints are indexed in depth-first order from the
// root link, visiting child joints in the order they were declared.
type Model struct {
	name   string
	root   *Link
	links  map[string]*Link
	joints []*Joint
}

// NewModel assembles a Model from its links and joints, validating that they form a single tree.
func NewModel(name string, links []*Link, joints []*Joint) (*Model, error) {
	if len(links) == 0 {
		return nil, ErrNoModelInformation
	}

	byName := make(map[string]*Link, len(links))
	for _, link := range links {
		if _, ok := byName[link.Name]; ok {
			return nil, NewDuplicateNameError("link", link.Name)
		}
		byName[link.Name] = link
	}

	children := make(map[string][]*Joint, len(joints))
	hasParent := make(map[string]bool, len(joints))
	jointNames := make(map[string]bool, len(joints))
	for _, joint := range joints {
		if jointNames[joint.Name] {
			return nil, NewDuplicateNameError("joint", joint.Name)
		}
		jointNames[joint.Name] = true
		if _, ok := byName[joint.Parent]; !ok {
			return nil, NewLinkNotFoundError(joint.Name, joint.Parent)
		}
		if _, ok := byName[joint.Child]; !ok {
			return nil, NewLinkNotFoundError(joint.Name, joint.Child)
		}
		if hasParent[joint.Child] {
			return nil, NewDuplicateNameError("child link", joint.Child)
		}
		hasParent[joint.Child] = true
		children[joint.Parent] = append(children[joint.Parent], joint)
	}

	roots := lo.FilterMap(links, func(link *Link, _ int) (string, bool) {
		return link.Name, !hasParent[link.Name]
	})
	if len(roots) != 1 {
		return nil, NewRootLinkError(roots)
	}

	m := &Model{
		name:   name,
		root:   byName[roots[0]],
		links:  byName,
		joints: make([]*Joint, 0, len(joints)),
	}
	var walk func(link string)
	walk = func(link string) {
		for _, joint := range children[link] {
			m.joints = append(m.joints, joint)
			walk(joint.Child)
		}
	}
	walk(m.root.Name)

	// A cycle detached from the root leaves joints unvisited.
	if len(m.joints) != len(joints) {
		return nil, NewRootLinkError(roots)
	}
	return m, nil
}

// Name returns the name of the model.
func (m *Model) Name() string {
	return m.name
}

// RootLink returns the base link.
func (m *Model) RootLink() *Link {
	return m.root
}

// Link looks up a link by name.
func (m *Model) Link(name string) (*Link, bool) {
	link, ok := m.links[name]
	return link, ok
}

// NumJoints returns the number of joints, fixed joints included.
func (m *Model) NumJoints() int {
	return len(m.joints)
}

// Joints returns all joints in index order.
func (m *Model) Joints() []*Joint {
	return m.joints
}

// JointIndex returns the index of the named joint, or -1.
func (m *Model) JointIndex(name string) int {
	_, idx, ok := lo.FindIndexOf(m.joints, func(j *Joint) bool { return j.Name == name })
	if !ok {
		return -1
	}
	return idx
}

// ParentJointIndex returns the index of the joint whose child is the parent link of joint idx,
// or -1 when the joint is attached to the root link.
func (m *Model) ParentJointIndex(idx int) int {
	parent := m.joints[idx].Parent
	_, pIdx, ok := lo.FindIndexOf(m.joints, func(j *Joint) bool { return j.Child == parent })
	if !ok {
		return -1
	}
	return pIdx
}

// DoF returns the names of the joints with an actuated degree of freedom.
func (m *Model) DoF() []string {
	movable := lo.Filter(m.joints, func(j *Joint, _ int) bool { return j.Type.Movable() })
	return lo.Map(movable, func(j *Joint, _ int) string { return j.Name })
}

// Mass returns the summed mass of all links.
func (m *Model) Mass() float64 {
	return lo.SumBy(lo.Values(m.links), func(l *Link) float64 { return l.Inertial.Mass })
}
