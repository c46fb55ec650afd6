package referenceframe

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"

	"go.viam.com/articulate/spatialmath"
)

// DoF returns the total number of joint angles of the chain.
func (c *Chain) DoF() int {
	return len(c.theta)
}

// Theta returns a copy of the current joint angles.
func (c *Chain) Theta() []float64 {
	return append([]float64{}, c.theta...)
}

// Apply sets the joint angles of the chain and recomputes every joint articulation. Each joint consumes
// as many consecutive angles as it has axes, in declaration order. End effector positions are stale
// until the next PropagatePose.
func (c *Chain) Apply(theta []float64) error {
	if len(theta) != len(c.theta) {
		return NewDimensionMismatchError(len(theta), len(c.theta))
	}
	copy(c.theta, theta)
	c.articulate()
	return nil
}

func (c *Chain) articulate() {
	for _, j := range c.joints {
		j.articulate(c.theta)
		if j.effector != nil {
			j.effector.valid = false
		}
	}
}

type poseFrame struct {
	joint       JointID
	parentWorld mgl64.Mat4
}

// PropagatePose walks the tree from the root, computing the world transform of every joint as
// parentWorld · placement · articulation and the world position of every end effector. Child joints
// start from the world transform of their parent joint, never from the parent body's shape transform.
func (c *Chain) PropagatePose() {
	if c.root == NoJoint {
		return
	}
	if len(c.worlds) != len(c.joints) {
		c.worlds = make([]mgl64.Mat4, len(c.joints))
		c.parentWorlds = make([]mgl64.Mat4, len(c.joints))
	}

	stack := []poseFrame{{joint: c.root, parentWorld: mgl64.Ident4()}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		j := c.joints[f.joint]
		world := f.parentWorld.Mul4(j.placement).Mul4(j.articulation)
		c.parentWorlds[f.joint] = f.parentWorld
		c.worlds[f.joint] = world
		if j.effector != nil {
			j.effector.global = spatialmath.TransformPoint(world, j.effector.offset)
			j.effector.valid = true
		}

		// pushed in reverse so siblings are visited in declaration order
		children := c.children[j.child]
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, poseFrame{joint: children[i], parentWorld: world})
		}
	}
}

// EndEffectorPosition propagates the pose and returns the world position of the named end effector.
func (c *Chain) EndEffectorPosition(name string) (r3.Vector, error) {
	id, ok := c.effectors[name]
	if !ok {
		return r3.Vector{}, NewUnknownEndEffectorError(name)
	}
	c.PropagatePose()
	return c.joints[id].effector.global, nil
}

// JointPose is the world placement of one joint and the body it carries.
type JointPose struct {
	Joint string
	Body  string
	Shape ShapeRef
	// World is the joint frame in world coordinates.
	World mgl64.Mat4
	// BodyWorld is World · the body's local transform, the transform a renderer draws the shape with.
	BodyWorld mgl64.Mat4
}

// PoseSnapshot is an immutable copy of a propagated chain pose.
type PoseSnapshot struct {
	Joints    []JointPose
	Effectors map[string]r3.Vector
}

// Snapshot propagates the pose and copies it out, one JointPose per joint in declaration order.
func (c *Chain) Snapshot() PoseSnapshot {
	c.PropagatePose()
	snap := PoseSnapshot{
		Joints:    make([]JointPose, 0, len(c.joints)),
		Effectors: make(map[string]r3.Vector, len(c.effectors)),
	}
	for i, j := range c.joints {
		body := c.bodies[j.child]
		snap.Joints = append(snap.Joints, JointPose{
			Joint:     j.name,
			Body:      body.name,
			Shape:     body.shape,
			World:     c.worlds[i],
			BodyWorld: c.worlds[i].Mul4(body.local),
		})
		if j.effector != nil {
			snap.Effectors[j.effector.name] = j.effector.global
		}
	}
	return snap
}

// Flatten returns the column-major elements of every joint's world transform back to back.
func (s PoseSnapshot) Flatten() []float64 {
	out := make([]float64, 0, 16*len(s.Joints))
	for _, jp := range s.Joints {
		out = append(out, jp.World[:]...)
	}
	return out
}

// JointPose returns the pose of the named joint.
func (s PoseSnapshot) JointPose(name string) (JointPose, bool) {
	for _, jp := range s.Joints {
		if jp.Joint == name {
			return jp, true
		}
	}
	return JointPose{}, false
}
