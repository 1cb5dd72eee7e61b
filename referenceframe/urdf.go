package referenceframe

import (
	"encoding/xml"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// URDFConfig represents all supported fields in a Universal Robot Description Format (URDF) file.
type URDFConfig struct {
	XMLName xml.Name    `xml:"robot"`
	Name    string      `xml:"name,attr"`
	Links   []URDFLink  `xml:"link"`
	Joints  []URDFJoint `xml:"joint"`
}

// URDFLink is a struct which details the XML used in a URDF link element.
type URDFLink struct {
	XMLName   xml.Name        `xml:"link"`
	Name      string          `xml:"name,attr"`
	Inertial  *URDFInertial   `xml:"inertial,omitempty"`
	Collision []URDFCollision `xml:"collision"`
}

// URDFInertial is the mass and inertia tensor of a link.
type URDFInertial struct {
	Origin *URDFPose `xml:"origin,omitempty"`
	Mass   struct {
		Value float64 `xml:"value,attr"`
	} `xml:"mass"`
	Inertia struct {
		Ixx float64 `xml:"ixx,attr"`
		Iyy float64 `xml:"iyy,attr"`
		Izz float64 `xml:"izz,attr"`
	} `xml:"inertia"`
}

// URDFCollision is a collision element. Only the primitive shapes are kept.
type URDFCollision struct {
	Origin   *URDFPose `xml:"origin,omitempty"`
	Geometry struct {
		Box *struct {
			Size string `xml:"size,attr"`
		} `xml:"box,omitempty"`
		Sphere *struct {
			Radius float64 `xml:"radius,attr"`
		} `xml:"sphere,omitempty"`
		Cylinder *struct {
			Radius float64 `xml:"radius,attr"`
			Length float64 `xml:"length,attr"`
		} `xml:"cylinder,omitempty"`
	} `xml:"geometry"`
}

// URDFPose is an origin element.
type URDFPose struct {
	XYZ string `xml:"xyz,attr"`
	RPY string `xml:"rpy,attr"`
}

// URDFAxis is an axis element.
type URDFAxis struct {
	XYZ string `xml:"xyz,attr"`
}

// URDFLimit is a joint limit element.
type URDFLimit struct {
	Lower    float64 `xml:"lower,attr"` // translation limits are in meters, revolute limits are in radians
	Upper    float64 `xml:"upper,attr"`
	Effort   float64 `xml:"effort,attr"`
	Velocity float64 `xml:"velocity,attr"`
}

// URDFDynamics is a joint dynamics element.
type URDFDynamics struct {
	Damping  float64 `xml:"damping,attr"`
	Friction float64 `xml:"friction,attr"`
}

// URDFFrame names a link.
type URDFFrame struct {
	Link string `xml:"link,attr"`
}

// URDFJoint is a struct which details the XML used in a URDF joint element.
type URDFJoint struct {
	XMLName  xml.Name      `xml:"joint"`
	Name     string        `xml:"name,attr"`
	Type     string        `xml:"type,attr"`
	Parent   URDFFrame     `xml:"parent"`
	Child    URDFFrame     `xml:"child"`
	Origin   *URDFPose     `xml:"origin,omitempty"`
	Axis     *URDFAxis     `xml:"axis,omitempty"`
	Limit    *URDFLimit    `xml:"limit,omitempty"`
	Dynamics *URDFDynamics `xml:"dynamics,omitempty"`
}

// ParseURDFFile reads a URDF file from disk into a Model.
func ParseURDFFile(filename, modelName string) (*Model, error) {
	//nolint:gosec
	xmlData, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read URDF file")
	}
	return UnmarshalURDF(xmlData, modelName)
}

// ParseURDFFS is ParseURDFFile for a file within fsys.
func ParseURDFFS(fsys fs.FS, name, modelName string) (*Model, error) {
	xmlData, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read URDF file")
	}
	return UnmarshalURDF(xmlData, modelName)
}

// UnmarshalURDF converts URDF XML data into a Model. An empty modelName uses the robot name
// declared in the file.
func UnmarshalURDF(xmlData []byte, modelName string) (*Model, error) {
	// empty data probably means that the read URDF has no actionable information
	if len(xmlData) == 0 {
		return nil, ErrNoModelInformation
	}

	urdf := &URDFConfig{}
	if err := xml.Unmarshal(xmlData, urdf); err != nil {
		return nil, errors.Wrap(err, "failed to convert URDF data to equivalent URDFConfig struct")
	}
	if modelName == "" {
		modelName = urdf.Name
	}

	links := make([]*Link, 0, len(urdf.Links))
	for _, linkElem := range urdf.Links {
		link, err := linkElem.toLink()
		if err != nil {
			return nil, err
		}
		links = append(links, link)
	}

	joints := make([]*Joint, 0, len(urdf.Joints))
	for _, jointElem := range urdf.Joints {
		joint, err := jointElem.toJoint()
		if err != nil {
			return nil, err
		}
		joints = append(joints, joint)
	}

	return NewModel(modelName, links, joints)
}

func (l *URDFLink) toLink() (*Link, error) {
	link := &Link{Name: l.Name}
	if l.Inertial != nil {
		link.Inertial = Inertial{
			Mass: l.Inertial.Mass.Value,
			Ixx:  l.Inertial.Inertia.Ixx,
			Iyy:  l.Inertial.Inertia.Iyy,
			Izz:  l.Inertial.Inertia.Izz,
		}
		if l.Inertial.Origin != nil {
			link.Inertial.Origin = parseVector(l.Inertial.Origin.XYZ, r3.Vector{})
		}
	}
	for _, coll := range l.Collision {
		box, ok, err := coll.toBox()
		if err != nil {
			return nil, errors.Wrapf(err, "link %q", l.Name)
		}
		if ok {
			link.Collisions = append(link.Collisions, box)
		}
	}
	return link, nil
}

func (c *URDFCollision) toBox() (Box, bool, error) {
	var box Box
	if c.Origin != nil {
		box.Origin = parseVector(c.Origin.XYZ, r3.Vector{})
	}
	geom := c.Geometry
	switch {
	case geom.Box != nil:
		size := spaceDelimitedStringToFloatSlice(geom.Box.Size)
		if len(size) != 3 {
			return Box{}, false, errors.Errorf("box size %q needs three values", geom.Box.Size)
		}
		box.Size = r3.Vector{X: size[0], Y: size[1], Z: size[2]}
	case geom.Sphere != nil:
		d := 2 * geom.Sphere.Radius
		box.Size = r3.Vector{X: d, Y: d, Z: d}
	case geom.Cylinder != nil:
		d := 2 * geom.Cylinder.Radius
		box.Size = r3.Vector{X: d, Y: d, Z: geom.Cylinder.Length}
	default:
		// meshes and other shapes carry no collision volume here
		return Box{}, false, nil
	}
	return box, true, nil
}

func (j *URDFJoint) toJoint() (*Joint, error) {
	jointType, err := jointTypeFromURDF(j.Type)
	if err != nil {
		return nil, err
	}
	joint := &Joint{
		Name:     j.Name,
		Type:     jointType,
		URDFType: j.Type,
		Parent:   j.Parent.Link,
		Child:    j.Child.Link,
		// URDF defaults the axis to x.
		Axis:  r3.Vector{X: 1},
		Lower: math.Inf(-1),
		Upper: math.Inf(1),
	}
	if j.Origin != nil {
		joint.Origin = parseVector(j.Origin.XYZ, r3.Vector{})
		joint.RPY = parseVector(j.Origin.RPY, r3.Vector{})
	}
	if j.Axis != nil {
		joint.Axis = parseVector(j.Axis.XYZ, joint.Axis)
		if joint.Axis.Norm() == 0 {
			return nil, errors.Errorf("joint %q has a zero axis", j.Name)
		}
		joint.Axis = joint.Axis.Normalize()
	}
	if j.Dynamics != nil {
		joint.Damping = j.Dynamics.Damping
		joint.Friction = j.Dynamics.Friction
	}
	if j.Limit != nil {
		joint.Effort = j.Limit.Effort
		joint.Velocity = j.Limit.Velocity
		// continuous joints ignore lower/upper, and a reversed range means "no limit"
		if j.Type != ContinuousJoint && j.Limit.Lower <= j.Limit.Upper {
			joint.Limited = true
			joint.Lower, joint.Upper = j.Limit.Lower, j.Limit.Upper
		}
	}
	return joint, nil
}

// parseVector parses "x y z", returning def when the string is empty or malformed.
func parseVector(s string, def r3.Vector) r3.Vector {
	vals := spaceDelimitedStringToFloatSlice(s)
	if len(vals) != 3 {
		return def
	}
	for _, v := range vals {
		if math.IsNaN(v) {
			return def
		}
	}
	return r3.Vector{X: vals[0], Y: vals[1], Z: vals[2]}
}

func spaceDelimitedStringToFloatSlice(s string) []float64 {
	var converted []float64
	slice := strings.Fields(s)
	for _, value := range slice {
		value, err := strconv.ParseFloat(value, 64)
		if err != nil {
			value = math.NaN()
		}
		converted = append(converted, value)
	}
	return converted
}
