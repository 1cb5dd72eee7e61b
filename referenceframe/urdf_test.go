package referenceframe

import (
	"fmt"
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/simlab/jointsim/assets"
)

func TestParsePanda(t *testing.T) {
	m, err := ParseURDFFS(assets.FS(), assets.PandaURDF, "")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.Name(), test.ShouldEqual, "panda")
	test.That(t, m.RootLink().Name, test.ShouldEqual, "panda_link0")
	test.That(t, m.NumJoints(), test.ShouldEqual, 12)
	test.That(t, m.DoF(), test.ShouldHaveLength, 9)

	expected := []struct {
		name string
		typ  JointType
	}{
		{"panda_joint1", Revolute},
		{"panda_joint2", Revolute},
		{"panda_joint3", Revolute},
		{"panda_joint4", Revolute},
		{"panda_joint5", Revolute},
		{"panda_joint6", Revolute},
		{"panda_joint7", Revolute},
		{"panda_joint8", Fixed},
		{"panda_hand_joint", Fixed},
		{"panda_finger_joint1", Prismatic},
		{"panda_finger_joint2", Prismatic},
		{"panda_grasptarget_hand", Fixed},
	}
	for i, joint := range m.Joints() {
		test.That(t, joint.Name, test.ShouldEqual, expected[i].name)
		test.That(t, joint.Type, test.ShouldEqual, expected[i].typ)
	}

	j1 := m.Joints()[0]
	test.That(t, j1.Limited, test.ShouldBeTrue)
	test.That(t, j1.Lower, test.ShouldAlmostEqual, -2.9671)
	test.That(t, j1.Upper, test.ShouldAlmostEqual, 2.9671)
	test.That(t, j1.Effort, test.ShouldEqual, 87.0)
	test.That(t, j1.Axis, test.ShouldResemble, r3.Vector{Z: 1})
	test.That(t, j1.Origin, test.ShouldResemble, r3.Vector{Z: 0.333})

	test.That(t, m.ParentJointIndex(0), test.ShouldEqual, -1)
	test.That(t, m.ParentJointIndex(1), test.ShouldEqual, 0)
	test.That(t, m.ParentJointIndex(m.JointIndex("panda_finger_joint2")), test.ShouldEqual, m.JointIndex("panda_hand_joint"))
	test.That(t, m.JointIndex("nope"), test.ShouldEqual, -1)

	link1, ok := m.Link("panda_link1")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, link1.Inertial.Mass, test.ShouldEqual, 2.74)
	test.That(t, link1.Collisions, test.ShouldHaveLength, 1)
	test.That(t, link1.Collisions[0].Size, test.ShouldResemble, r3.Vector{X: 0.14, Y: 0.14, Z: 0.22})
}

func TestParsePlane(t *testing.T) {
	m, err := ParseURDFFS(assets.FS(), assets.PlaneURDF, "ground")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.Name(), test.ShouldEqual, "ground")
	test.That(t, m.NumJoints(), test.ShouldEqual, 0)
	test.That(t, m.Mass(), test.ShouldEqual, 0.0)
	root := m.RootLink()
	test.That(t, root.Collisions, test.ShouldHaveLength, 1)
	test.That(t, root.Collisions[0].Top(), test.ShouldAlmostEqual, 0.0)
}

const twoLinks = `<robot name="r">
  <link name="a"/>
  <link name="b"/>
  <joint name="j" type="%s">
    <parent link="a"/>
    <child link="b"/>
    %s
  </joint>
</robot>`

func TestJointParsing(t *testing.T) {
	t.Run("continuous is an unlimited revolute", func(t *testing.T) {
		m, err := UnmarshalURDF([]byte(fmt.Sprintf(twoLinks, "continuous", `<limit effort="5" velocity="1"/>`)), "")
		test.That(t, err, test.ShouldBeNil)
		j := m.Joints()[0]
		test.That(t, j.Type, test.ShouldEqual, Revolute)
		test.That(t, j.Limited, test.ShouldBeFalse)
		test.That(t, math.IsInf(j.Upper, 1), test.ShouldBeTrue)
		test.That(t, j.Axis, test.ShouldResemble, r3.Vector{X: 1})
		test.That(t, j.Effort, test.ShouldEqual, 5.0)
	})

	t.Run("axis is normalized", func(t *testing.T) {
		m, err := UnmarshalURDF([]byte(fmt.Sprintf(twoLinks, "prismatic", `<axis xyz="0 0 2"/><limit lower="0" upper="1"/>`)), "")
		test.That(t, err, test.ShouldBeNil)
		test.That(t, m.Joints()[0].Axis, test.ShouldResemble, r3.Vector{Z: 1})
		test.That(t, m.Joints()[0].Type, test.ShouldEqual, Prismatic)
	})

	t.Run("floating is unsupported", func(t *testing.T) {
		_, err := UnmarshalURDF([]byte(fmt.Sprintf(twoLinks, "floating", "")), "")
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "unsupported joint type")
	})

	t.Run("zero axis", func(t *testing.T) {
		_, err := UnmarshalURDF([]byte(fmt.Sprintf(twoLinks, "revolute", `<axis xyz="0 0 0"/>`)), "")
		test.That(t, err, test.ShouldNotBeNil)
	})
}

func TestModelErrors(t *testing.T) {
	_, err := UnmarshalURDF(nil, "")
	test.That(t, err, test.ShouldEqual, ErrNoModelInformation)

	_, err = UnmarshalURDF([]byte("<robot"), "")
	test.That(t, err, test.ShouldNotBeNil)

	_, err = NewModel("m", []*Link{{Name: "a"}}, []*Joint{{Name: "j", Parent: "a", Child: "missing"}})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "unknown link")

	_, err = NewModel("m", []*Link{{Name: "a"}, {Name: "b"}}, nil)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "exactly one root")

	_, err = NewModel("m", []*Link{{Name: "a"}, {Name: "a"}}, nil)
	test.That(t, err, test.ShouldNotBeNil)

	// b and c form a loop that never reaches the root
	_, err = NewModel("m", []*Link{{Name: "a"}, {Name: "b"}, {Name: "c"}}, []*Joint{
		{Name: "bc", Parent: "b", Child: "c"},
		{Name: "cb", Parent: "c", Child: "b"},
	})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestJointTypeCodes(t *testing.T) {
	test.That(t, int(Revolute), test.ShouldEqual, 0)
	test.That(t, int(Prismatic), test.ShouldEqual, 1)
	test.That(t, int(Spherical), test.ShouldEqual, 2)
	test.That(t, int(Planar), test.ShouldEqual, 3)
	test.That(t, int(Fixed), test.ShouldEqual, 4)
	test.That(t, Fixed.String(), test.ShouldEqual, "fixed")
	test.That(t, Fixed.Movable(), test.ShouldBeFalse)
	test.That(t, Prismatic.Movable(), test.ShouldBeTrue)
}

func TestMomentAbout(t *testing.T) {
	in := Inertial{Ixx: 1, Iyy: 2, Izz: 3}
	test.That(t, in.MomentAbout(r3.Vector{Z: 1}), test.ShouldEqual, 3.0)
	test.That(t, in.MomentAbout(r3.Vector{Y: -1}), test.ShouldEqual, 2.0)
}
