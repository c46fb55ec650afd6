package referenceframe

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Chain is a tree of rigid bodies connected by rotational joints. Bodies and joints live in slices owned
// by the chain and reference each other by handle. A Chain is not safe for concurrent use; use Clone to
// work on the same chain from several goroutines.
type Chain struct {
	name      string
	bodies    []*RigidBody
	joints    []*Joint
	children  [][]JointID
	owner     []JointID
	root      JointID
	theta     []float64
	effectors map[string]JointID

	bodyNames  map[string]BodyID
	jointNames map[string]JointID

	// filled in by PropagatePose
	parentWorlds []mgl64.Mat4
	worlds       []mgl64.Mat4

	config *ChainConfigJSON
}

// NewChain returns an empty chain.
func NewChain(name string) *Chain {
	return &Chain{
		name:       name,
		root:       NoJoint,
		theta:      []float64{},
		effectors:  map[string]JointID{},
		bodyNames:  map[string]BodyID{},
		jointNames: map[string]JointID{},
	}
}

// Name returns the name of the chain.
func (c *Chain) Name() string {
	return c.name
}

// AddBody adds a body to the chain. It is not part of the tree until a joint names it as its child.
func (c *Chain) AddBody(body *RigidBody) (BodyID, error) {
	if body == nil {
		return NoBody, errors.New("body is not allowed to be nil")
	}
	if _, ok := c.bodyNames[body.name]; ok {
		return NoBody, errors.Wrapf(ErrDuplicateName, "body %q", body.name)
	}
	id := BodyID(len(c.bodies))
	c.bodies = append(c.bodies, body)
	c.children = append(c.children, nil)
	c.owner = append(c.owner, NoJoint)
	c.bodyNames[body.name] = id
	c.config = nil
	return id, nil
}

// AddJoint connects child to parent through placement, rotating about axes. The first joint must be the
// root, with parent NoBody. Every later joint must hang from a body already in the tree and must bring a
// body that is not. The joint's angles are appended to theta at zero.
func (c *Chain) AddJoint(name string, parent, child BodyID, placement mgl64.Mat4, axes AxisSet) (JointID, error) {
	if _, ok := c.jointNames[name]; ok {
		return NoJoint, errors.Wrapf(ErrDuplicateName, "joint %q", name)
	}
	if !c.validBody(child) {
		return NoJoint, NewBodyNotFoundError(child)
	}
	if parent == NoBody {
		if c.root != NoJoint {
			return NoJoint, ErrRootAlreadySet
		}
	} else {
		if !c.validBody(parent) {
			return NoJoint, NewBodyNotFoundError(parent)
		}
		if c.root == NoJoint {
			return NoJoint, ErrMissingRoot
		}
		if c.owner[parent] == NoJoint {
			return NoJoint, NewDetachedParentError(name, c.bodies[parent].name)
		}
	}
	if owner := c.owner[child]; owner != NoJoint {
		return NoJoint, NewBodyAlreadyAttachedError(c.bodies[child].name, c.joints[owner].name)
	}

	id := JointID(len(c.joints))
	j := &Joint{
		name:         name,
		parent:       parent,
		child:        child,
		placement:    placement,
		articulation: mgl64.Ident4(),
		axes:         axes,
		thetaStart:   len(c.theta),
	}
	c.joints = append(c.joints, j)
	c.jointNames[name] = id
	c.owner[child] = id
	if parent == NoBody {
		c.root = id
	} else {
		c.children[parent] = append(c.children[parent], id)
	}
	c.theta = append(c.theta, make([]float64, axes.Count())...)
	c.config = nil
	c.articulate()
	return id, nil
}

// AttachEndEffector fixes a named end effector at offset in the frame of joint.
func (c *Chain) AttachEndEffector(joint JointID, name string, offset r3.Vector) error {
	j, err := c.Joint(joint)
	if err != nil {
		return err
	}
	if _, ok := c.effectors[name]; ok {
		return errors.Wrapf(ErrDuplicateName, "end effector %q", name)
	}
	if j.effector != nil {
		return errors.Wrapf(ErrEndEffectorAlreadyAttached, "joint %q has %q", j.name, j.effector.name)
	}
	j.effector = &EndEffector{name: name, joint: joint, offset: offset}
	c.effectors[name] = joint
	c.config = nil
	return nil
}

func (c *Chain) validBody(id BodyID) bool {
	return id >= 0 && int(id) < len(c.bodies)
}

// Body returns the body with the given handle.
func (c *Chain) Body(id BodyID) (*RigidBody, error) {
	if !c.validBody(id) {
		return nil, NewBodyNotFoundError(id)
	}
	return c.bodies[id], nil
}

// BodyByName returns the handle of the named body.
func (c *Chain) BodyByName(name string) (BodyID, error) {
	id, ok := c.bodyNames[name]
	if !ok {
		return NoBody, NewBodyNotFoundError(name)
	}
	return id, nil
}

// Joint returns the joint with the given handle.
func (c *Chain) Joint(id JointID) (*Joint, error) {
	if id < 0 || int(id) >= len(c.joints) {
		return nil, NewJointNotFoundError(id)
	}
	return c.joints[id], nil
}

// JointByName returns the handle of the named joint.
func (c *Chain) JointByName(name string) (JointID, error) {
	id, ok := c.jointNames[name]
	if !ok {
		return NoJoint, NewJointNotFoundError(name)
	}
	return id, nil
}

// Bodies returns the bodies in the order they were added.
func (c *Chain) Bodies() []*RigidBody {
	return append([]*RigidBody{}, c.bodies...)
}

// Joints returns the joints in declaration order.
func (c *Chain) Joints() []*Joint {
	return append([]*Joint{}, c.joints...)
}

// Root returns the root joint, NoJoint if there is none yet.
func (c *Chain) Root() JointID {
	return c.root
}

// EndEffector returns the named end effector.
func (c *Chain) EndEffector(name string) (*EndEffector, error) {
	id, ok := c.effectors[name]
	if !ok {
		return nil, NewUnknownEndEffectorError(name)
	}
	return c.joints[id].effector, nil
}

// EndEffectorNames returns the sorted names of every end effector of the chain.
func (c *Chain) EndEffectorNames() []string {
	names := lo.Keys(c.effectors)
	sort.Strings(names)
	return names
}

// Clone returns a deep copy of the chain.
func (c *Chain) Clone() *Chain {
	clone := &Chain{
		name:         c.name,
		bodies:       make([]*RigidBody, len(c.bodies)),
		joints:       make([]*Joint, len(c.joints)),
		children:     make([][]JointID, len(c.children)),
		owner:        append([]JointID{}, c.owner...),
		root:         c.root,
		theta:        append([]float64{}, c.theta...),
		effectors:    lo.Assign(c.effectors),
		bodyNames:    lo.Assign(c.bodyNames),
		jointNames:   lo.Assign(c.jointNames),
		parentWorlds: append([]mgl64.Mat4{}, c.parentWorlds...),
		worlds:       append([]mgl64.Mat4{}, c.worlds...),
		config:       c.config.clone(),
	}
	for i, b := range c.bodies {
		body := *b
		clone.bodies[i] = &body
	}
	for i, j := range c.joints {
		joint := *j
		if j.effector != nil {
			effector := *j.effector
			joint.effector = &effector
		}
		clone.joints[i] = &joint
	}
	for i, children := range c.children {
		clone.children[i] = append([]JointID(nil), children...)
	}
	return clone
}

// String renders the joints of the chain as a table.
func (c *Chain) String() string {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("chain %q, %d DoF", c.name, c.DoF()))
	t.AppendHeader(table.Row{"#", "Joint", "Parent", "Child", "Axes", "Theta", "End Effector"})
	for i, j := range c.joints {
		parent := ""
		if j.parent != NoBody {
			parent = c.bodies[j.parent].name
		}
		thetaRange := ""
		if j.DoF() > 0 {
			thetaRange = fmt.Sprintf("[%d:%d]", j.thetaStart, j.thetaStart+j.DoF())
		}
		effector := ""
		if j.effector != nil {
			effector = j.effector.name
		}
		t.AppendRow(table.Row{i, j.name, parent, c.bodies[j.child].name, j.axes.String(), thetaRange, effector})
	}
	t.SetStyle(table.StyleLight)
	return t.Render()
}
