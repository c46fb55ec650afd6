// Package referenceframe defines articulated kinematic chains: rigid bodies connected by rotational
// joints, forward kinematics over the resulting tree and the Jacobian relating joint angles to end
// effector positions.
package referenceframe

import (
	"github.com/go-gl/mathgl/mgl64"
)

// BodyID addresses a rigid body within the chain that owns it.
type BodyID int

// NoBody is the parent of the root joint.
const NoBody BodyID = -1

// ShapeRef names the renderer shape drawn for a body.
type ShapeRef string

// RigidBody is a named body with a fixed shape transform relative to the joint frame it hangs from.
// The local transform only affects how the body is drawn; it is never propagated to child joints.
type RigidBody struct {
	name  string
	shape ShapeRef
	local mgl64.Mat4
}

// NewRigidBody returns a body drawn with shape after applying local to the owning joint frame.
func NewRigidBody(name string, shape ShapeRef, local mgl64.Mat4) *RigidBody {
	return &RigidBody{name: name, shape: shape, local: local}
}

// Name returns the name of the body.
func (b *RigidBody) Name() string {
	return b.name
}

// Shape returns the renderer shape of the body.
func (b *RigidBody) Shape() ShapeRef {
	return b.shape
}

// LocalTransform returns the shape transform of the body.
func (b *RigidBody) LocalTransform() mgl64.Mat4 {
	return b.local
}
