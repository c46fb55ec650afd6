// Package urdf provides functions which enable *.urdf files to be loaded as chains.
package urdf

import (
	"encoding/xml"
	"os"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/articulate/referenceframe"
	"go.viam.com/articulate/spatialmath"
	"go.viam.com/articulate/utils"
)

// Extension is the file extension associated with URDF files.
const Extension string = "urdf"

// World is the conventional name of the fixed link a URDF robot is attached to.
const World = "world"

// URDF joint types.
const (
	FixedJoint      = "fixed"
	RevoluteJoint   = "revolute"
	ContinuousJoint = "continuous"
)

// ModelConfig represents all supported fields in a Universal Robot Description Format (URDF) file.
type ModelConfig struct {
	XMLName xml.Name `xml:"robot"`
	Name    string   `xml:"name,attr"`
	Links   []link   `xml:"link"`
	Joints  []joint  `xml:"joint"`
}

type link struct {
	XMLName   xml.Name    `xml:"link"`
	Name      string      `xml:"name,attr"`
	Collision []collision `xml:"collision"`
}

type collision struct {
	Origin   *pose    `xml:"origin,omitempty"`
	Geometry geometry `xml:"geometry"`
}

type geometry struct {
	Box      *box      `xml:"box,omitempty"`
	Sphere   *sphere   `xml:"sphere,omitempty"`
	Cylinder *cylinder `xml:"cylinder,omitempty"`
}

type box struct {
	Size string `xml:"size,attr"`
}

type sphere struct {
	Radius float64 `xml:"radius,attr"`
}

type cylinder struct {
	Radius float64 `xml:"radius,attr"`
	Length float64 `xml:"length,attr"`
}

type joint struct {
	XMLName xml.Name `xml:"joint"`
	Name    string   `xml:"name,attr"`
	Type    string   `xml:"type,attr"`
	Parent  frame    `xml:"parent"`
	Child   frame    `xml:"child"`
	Origin  *pose    `xml:"origin,omitempty"`
	Axis    *axis    `xml:"axis,omitempty"`
}

type frame struct {
	Link string `xml:"link,attr"`
}

type pose struct {
	XYZ string `xml:"xyz,attr"`
	RPY string `xml:"rpy,attr"`
}

type axis struct {
	XYZ string `xml:"xyz,attr"`
}

// UnmarshalChainXML converts URDF XML data into an equivalent chain config. Links become bodies carrying
// their first collision geometry, revolute and continuous joints rotate about their axis, which must be
// one of the positive coordinate axes, and fixed joints have no axes. Every leaf link gets an end
// effector of the same name at the origin of the joint that carries it.
func UnmarshalChainXML(xmlData []byte, chainName string) (*referenceframe.ChainConfigJSON, error) {
	model := &ModelConfig{}
	if err := xml.Unmarshal(xmlData, model); err != nil {
		return nil, errors.Wrap(err, "failed to convert URDF data to equivalent URDFConfig struct")
	}
	if chainName == "" {
		chainName = model.Name
	}

	cfg := &referenceframe.ChainConfigJSON{Name: chainName}
	for _, linkElem := range model.Links {
		if linkElem.Name == World {
			continue
		}
		body, err := linkElem.toBody()
		if err != nil {
			return nil, err
		}
		cfg.Bodies = append(cfg.Bodies, body)
	}

	isChild := make(map[string]bool, len(model.Joints))
	hasChildren := make(map[string]bool, len(model.Joints))
	for _, jointElem := range model.Joints {
		isChild[jointElem.Child.Link] = true
		hasChildren[jointElem.Parent.Link] = true
	}

	// A robot attached to the world already has a root joint; otherwise the root link gets a fixed one.
	if !hasChildren[World] {
		for _, body := range cfg.Bodies {
			if !isChild[body.ID] {
				cfg.Joints = append(cfg.Joints, referenceframe.JointConfig{ID: body.ID + "_root", Child: body.ID})
				break
			}
		}
	}

	for _, jointElem := range model.Joints {
		j, err := jointElem.toJoint()
		if err != nil {
			return nil, err
		}
		if !hasChildren[jointElem.Child.Link] {
			j.EndEffector = &referenceframe.EndEffectorConfig{ID: jointElem.Child.Link}
		}
		cfg.Joints = append(cfg.Joints, j)
	}
	return cfg, nil
}

func (l *link) toBody() (referenceframe.BodyConfig, error) {
	body := referenceframe.BodyConfig{ID: l.Name}
	if len(l.Collision) == 0 {
		return body, nil
	}
	coll := l.Collision[0]
	if coll.Origin != nil {
		xyz, err := parseTriple(coll.Origin.XYZ)
		if err != nil {
			return body, errors.Wrapf(err, "link %q", l.Name)
		}
		body.Translation = *spatialmath.NewTranslationConfig(xyz)
	}

	var scale r3.Vector
	switch g := coll.Geometry; {
	case g.Box != nil:
		size, err := parseTriple(g.Box.Size)
		if err != nil {
			return body, errors.Wrapf(err, "link %q", l.Name)
		}
		body.Shape, scale = "box", size
	case g.Sphere != nil:
		d := 2 * g.Sphere.Radius
		body.Shape, scale = "sphere", r3.Vector{X: d, Y: d, Z: d}
	case g.Cylinder != nil:
		d := 2 * g.Cylinder.Radius
		body.Shape, scale = "cylinder", r3.Vector{X: d, Y: d, Z: g.Cylinder.Length}
	default:
		return body, nil
	}
	body.Scale = spatialmath.NewTranslationConfig(scale)
	return body, nil
}

func (j *joint) toJoint() (referenceframe.JointConfig, error) {
	cfg := referenceframe.JointConfig{ID: j.Name, Child: j.Child.Link}
	if j.Parent.Link != World {
		cfg.Parent = j.Parent.Link
	}

	switch j.Type {
	case FixedJoint:
	case RevoluteJoint, ContinuousJoint:
		axes, err := j.Axis.parse()
		if err != nil {
			return cfg, errors.Wrapf(err, "joint %q", j.Name)
		}
		cfg.Axes = axes
	default:
		return cfg, referenceframe.NewUnsupportedJointTypeError(j.Type)
	}

	if j.Origin != nil {
		xyz, err := parseTriple(j.Origin.XYZ)
		if err != nil {
			return cfg, errors.Wrapf(err, "joint %q", j.Name)
		}
		rpy, err := parseTriple(j.Origin.RPY)
		if err != nil {
			return cfg, errors.Wrapf(err, "joint %q", j.Name)
		}
		cfg.Translation = *spatialmath.NewTranslationConfig(xyz)
		if rpy != (r3.Vector{}) {
			// URDF roll, pitch and yaw are fixed-axis rotations about x, y then z
			cfg.Rotation = &spatialmath.RotationConfig{
				X: utils.RadToDeg(rpy.X),
				Y: utils.RadToDeg(rpy.Y),
				Z: utils.RadToDeg(rpy.Z),
			}
		}
	}
	return cfg, nil
}

// parse returns the single axis a rotational joint turns about; URDF defaults to x.
func (a *axis) parse() (string, error) {
	if a == nil {
		return spatialmath.XAxis.String(), nil
	}
	v, err := parseTriple(a.XYZ)
	if err != nil {
		return "", err
	}
	for _, ax := range spatialmath.Axes {
		if v == ax.Vector() {
			return ax.String(), nil
		}
	}
	return "", referenceframe.NewUnsupportedAxesError(a.XYZ)
}

// parseTriple reads a space delimited vector. An empty string is the zero vector.
func parseTriple(s string) (r3.Vector, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return r3.Vector{}, nil
	}
	if len(fields) != 3 {
		return r3.Vector{}, errors.Errorf("expected 3 values, got %q", s)
	}
	var out [3]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return r3.Vector{}, err
		}
		out[i] = v
	}
	return r3.Vector{X: out[0], Y: out[1], Z: out[2]}, nil
}

// ParseChainXMLFile will read a given file and parse the contained URDF XML data into an equivalent chain.
func ParseChainXMLFile(filename, chainName string) (*referenceframe.Chain, error) {
	//nolint:gosec
	xmlData, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read URDF file")
	}

	cfg, err := UnmarshalChainXML(xmlData, chainName)
	if err != nil {
		return nil, err
	}
	return cfg.ParseConfig(chainName)
}
