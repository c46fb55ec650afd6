package referenceframe

import (
	"encoding/json"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/articulate/spatialmath"
	"go.viam.com/articulate/utils"
)

// ChainConfigJSON represents all supported fields in a chain JSON file.
type ChainConfigJSON struct {
	Name   string        `json:"name"`
	Bodies []BodyConfig  `json:"bodies"`
	Joints []JointConfig `json:"joints"`
}

// BodyConfig describes a rigid body. Its local transform is T(translation)·S(scale); scale defaults to 1.
type BodyConfig struct {
	ID          string                         `json:"id"`
	Shape       string                         `json:"shape,omitempty"`
	Translation spatialmath.TranslationConfig  `json:"translation"`
	Scale       *spatialmath.TranslationConfig `json:"scale,omitempty"`
}

// JointConfig describes a joint. Its placement is T(translation)·R where R rotates about the fixed x, y
// then z axes by the given degrees. An empty parent marks the root joint.
type JointConfig struct {
	ID          string                        `json:"id"`
	Parent      string                        `json:"parent"`
	Child       string                        `json:"child"`
	Translation spatialmath.TranslationConfig `json:"translation"`
	Rotation    *spatialmath.RotationConfig   `json:"rotation,omitempty"`
	Axes        string                        `json:"axes"`
	EndEffector *EndEffectorConfig            `json:"end_effector,omitempty"`
}

// EndEffectorConfig describes an end effector fixed in the frame of its joint.
type EndEffectorConfig struct {
	ID     string                        `json:"id"`
	Offset spatialmath.TranslationConfig `json:"offset"`
}

// LocalTransform returns the shape transform described by the config.
func (cfg *BodyConfig) LocalTransform() mgl64.Mat4 {
	scale := r3.Vector{X: 1, Y: 1, Z: 1}
	if cfg.Scale != nil {
		scale = cfg.Scale.ParseConfig()
	}
	return spatialmath.NewTranslation(cfg.Translation.ParseConfig()).Mul4(spatialmath.NewScale(scale))
}

// Placement returns the fixed joint placement described by the config.
func (cfg *JointConfig) Placement() mgl64.Mat4 {
	m := spatialmath.NewTranslation(cfg.Translation.ParseConfig())
	if cfg.Rotation != nil {
		m = m.Mul4(spatialmath.NewRotationXYZ(
			utils.DegToRad(cfg.Rotation.X),
			utils.DegToRad(cfg.Rotation.Y),
			utils.DegToRad(cfg.Rotation.Z),
		))
	}
	return m
}

// UnmarshalChainJSON will parse the given JSON data into a chain. chainName sets the name of the chain,
// will use the name from the JSON if string is empty.
func UnmarshalChainJSON(jsonData []byte, chainName string) (*Chain, error) {
	// empty data probably means that the caller has no chain information
	if len(jsonData) == 0 {
		return nil, ErrNoChainInformation
	}

	cfg := &ChainConfigJSON{}
	if err := json.Unmarshal(jsonData, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal json file")
	}
	return cfg.ParseConfig(chainName)
}

// ParseChainJSONFile will read a given file and then parse the contained JSON data.
func ParseChainJSONFile(filename, chainName string) (*Chain, error) {
	//nolint:gosec
	jsonData, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read json file")
	}
	return UnmarshalChainJSON(jsonData, chainName)
}

// ParseConfig converts the config into a chain with the name chainName. Joints may be listed in any
// order; they are added parent first, keeping the listed order among joints that are ready together.
func (cfg *ChainConfigJSON) ParseConfig(chainName string) (*Chain, error) {
	if chainName == "" {
		chainName = cfg.Name
	}
	chain := NewChain(chainName)
	for i := range cfg.Bodies {
		b := &cfg.Bodies[i]
		if _, err := chain.AddBody(NewRigidBody(b.ID, ShapeRef(b.Shape), b.LocalTransform())); err != nil {
			return nil, err
		}
	}

	ordered, err := sortJoints(cfg.Joints)
	if err != nil {
		return nil, err
	}
	for _, jc := range ordered {
		axes, err := ParseAxisSet(jc.Axes)
		if err != nil {
			return nil, errors.Wrapf(err, "joint %q", jc.ID)
		}
		parent := NoBody
		if jc.Parent != "" {
			if parent, err = chain.BodyByName(jc.Parent); err != nil {
				return nil, err
			}
		}
		child, err := chain.BodyByName(jc.Child)
		if err != nil {
			return nil, err
		}
		id, err := chain.AddJoint(jc.ID, parent, child, jc.Placement(), axes)
		if err != nil {
			return nil, err
		}
		if jc.EndEffector != nil {
			if err := chain.AttachEndEffector(id, jc.EndEffector.ID, jc.EndEffector.Offset.ParseConfig()); err != nil {
				return nil, err
			}
		}
	}

	chain.config = cfg.clone()
	chain.config.Name = chainName
	return chain, nil
}

// clone returns a copy of the config that shares no slices or pointers with it.
func (cfg *ChainConfigJSON) clone() *ChainConfigJSON {
	if cfg == nil {
		return nil
	}
	out := &ChainConfigJSON{Name: cfg.Name}
	if cfg.Bodies != nil {
		out.Bodies = make([]BodyConfig, len(cfg.Bodies))
		for i, b := range cfg.Bodies {
			if b.Scale != nil {
				scale := *b.Scale
				b.Scale = &scale
			}
			out.Bodies[i] = b
		}
	}
	if cfg.Joints != nil {
		out.Joints = make([]JointConfig, len(cfg.Joints))
		for i, j := range cfg.Joints {
			if j.Rotation != nil {
				rotation := *j.Rotation
				j.Rotation = &rotation
			}
			if j.EndEffector != nil {
				effector := *j.EndEffector
				j.EndEffector = &effector
			}
			out.Joints[i] = j
		}
	}
	return out
}

// sortJoints orders joints so every joint follows the joint that brings its parent body. Joints that can
// never be placed are appended unchanged so that AddJoint reports why, unless every one of them hangs from
// a body some other joint brings, which can only be a loop.
func sortJoints(joints []JointConfig) ([]JointConfig, error) {
	brought := map[string]bool{}
	for _, j := range joints {
		brought[j.Child] = true
	}

	attached := map[string]bool{}
	ordered := make([]JointConfig, 0, len(joints))
	remaining := joints
	for len(remaining) > 0 {
		var next []JointConfig
		for _, j := range remaining {
			if j.Parent == "" || attached[j.Parent] {
				ordered = append(ordered, j)
				attached[j.Child] = true
			} else {
				next = append(next, j)
			}
		}
		if len(next) == len(remaining) {
			for _, j := range next {
				if !brought[j.Parent] {
					return append(ordered, next...), nil
				}
			}
			return nil, ErrCircularReference
		}
		remaining = next
	}
	return ordered, nil
}

// Config returns a config describing the chain. For a chain parsed from JSON that has not been extended
// since, it is the parsed config.
func (c *Chain) Config() *ChainConfigJSON {
	if c.config != nil {
		return c.config.clone()
	}

	cfg := &ChainConfigJSON{
		Name:   c.name,
		Bodies: make([]BodyConfig, 0, len(c.bodies)),
		Joints: make([]JointConfig, 0, len(c.joints)),
	}
	for _, b := range c.bodies {
		bc := BodyConfig{
			ID:          b.name,
			Shape:       string(b.shape),
			Translation: *spatialmath.NewTranslationConfig(spatialmath.Translation(b.local)),
		}
		if scale := (r3.Vector{X: b.local.At(0, 0), Y: b.local.At(1, 1), Z: b.local.At(2, 2)}); scale != (r3.Vector{X: 1, Y: 1, Z: 1}) {
			bc.Scale = spatialmath.NewTranslationConfig(scale)
		}
		cfg.Bodies = append(cfg.Bodies, bc)
	}
	for _, j := range c.joints {
		jc := JointConfig{
			ID:          j.name,
			Child:       c.bodies[j.child].name,
			Translation: *spatialmath.NewTranslationConfig(spatialmath.Translation(j.placement)),
			Rotation:    rotationConfig(j.placement),
			Axes:        j.axes.String(),
		}
		if j.parent != NoBody {
			jc.Parent = c.bodies[j.parent].name
		}
		if j.effector != nil {
			jc.EndEffector = &EndEffectorConfig{ID: j.effector.name, Offset: *spatialmath.NewTranslationConfig(j.effector.offset)}
		}
		cfg.Joints = append(cfg.Joints, jc)
	}
	return cfg
}

// rotationConfig recovers fixed-axis x, y, z degrees from the rotation part of m, nil for no rotation.
func rotationConfig(m mgl64.Mat4) *spatialmath.RotationConfig {
	if m.Mat3() == mgl64.Ident3() {
		return nil
	}
	// m = Rz(c) · Ry(b) · Rx(a)
	b := math.Asin(utils.Clamp(-m.At(2, 0), -1, 1))
	a := math.Atan2(m.At(2, 1), m.At(2, 2))
	c := math.Atan2(m.At(1, 0), m.At(0, 0))
	return &spatialmath.RotationConfig{X: utils.RadToDeg(a), Y: utils.RadToDeg(b), Z: utils.RadToDeg(c)}
}

// MarshalJSON serializes the chain config.
func (c *Chain) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Config())
}
