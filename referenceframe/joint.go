package referenceframe

import (
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"

	"go.viam.com/articulate/spatialmath"
)

// JointID addresses a joint within the chain that owns it.
type JointID int

// NoJoint marks a body that is not the child of any joint.
const NoJoint JointID = -1

// AxisSet holds which of the fixed x, y and z axes a joint rotates about.
type AxisSet struct {
	X, Y, Z bool
}

// ParseAxisSet parses a string such as "xz" into an AxisSet. The empty string is a fixed joint.
func ParseAxisSet(axes string) (AxisSet, error) {
	var set AxisSet
	for _, c := range strings.ToLower(axes) {
		switch c {
		case 'x':
			set.X = true
		case 'y':
			set.Y = true
		case 'z':
			set.Z = true
		default:
			return AxisSet{}, NewUnsupportedAxesError(axes)
		}
	}
	return set, nil
}

// String returns the enabled axes in x, y, z order, e.g. "xz".
func (a AxisSet) String() string {
	var sb strings.Builder
	for _, axis := range a.Enabled() {
		sb.WriteString(axis.String())
	}
	return sb.String()
}

// Count returns the number of enabled axes.
func (a AxisSet) Count() int {
	return len(a.Enabled())
}

// Enabled returns the enabled axes, always in x, y, z order.
func (a AxisSet) Enabled() []spatialmath.Axis {
	axes := make([]spatialmath.Axis, 0, 3)
	if a.X {
		axes = append(axes, spatialmath.XAxis)
	}
	if a.Y {
		axes = append(axes, spatialmath.YAxis)
	}
	if a.Z {
		axes = append(axes, spatialmath.ZAxis)
	}
	return axes
}

// Joint connects a parent body to a child body through a fixed placement followed by a rotation.
type Joint struct {
	name         string
	parent       BodyID
	child        BodyID
	placement    mgl64.Mat4
	articulation mgl64.Mat4
	axes         AxisSet
	effector     *EndEffector
	thetaStart   int
}

// Name returns the name of the joint.
func (j *Joint) Name() string {
	return j.name
}

// Parent returns the parent body, NoBody for the root joint.
func (j *Joint) Parent() BodyID {
	return j.parent
}

// Child returns the child body.
func (j *Joint) Child() BodyID {
	return j.child
}

// Placement returns the fixed transform from the parent frame to the joint.
func (j *Joint) Placement() mgl64.Mat4 {
	return j.placement
}

// Articulation returns the current rotation of the joint.
func (j *Joint) Articulation() mgl64.Mat4 {
	return j.articulation
}

// Axes returns the rotation axes of the joint.
func (j *Joint) Axes() AxisSet {
	return j.axes
}

// DoF returns the number of angles the joint consumes from theta.
func (j *Joint) DoF() int {
	return j.axes.Count()
}

// EndEffector returns the end effector carried by the joint, or nil.
func (j *Joint) EndEffector() *EndEffector {
	return j.effector
}

// angles spreads the joint's slice of theta over the x, y and z axes, leaving disabled axes at zero.
func (j *Joint) angles(theta []float64) [3]float64 {
	var out [3]float64
	for k, axis := range j.axes.Enabled() {
		out[axis] = theta[j.thetaStart+k]
	}
	return out
}

// articulate recomputes the articulation as Rz·Ry·Rx so that x is applied first.
func (j *Joint) articulate(theta []float64) {
	m := mgl64.Ident4()
	angles := j.angles(theta)
	for _, axis := range j.axes.Enabled() {
		m = axis.Rotation(angles[axis]).Mul4(m)
	}
	j.articulation = m
}

// EndEffector is a named point fixed in the child body frame of the joint that carries it.
type EndEffector struct {
	name   string
	joint  JointID
	offset r3.Vector
	global r3.Vector
	valid  bool
}

// Name returns the name of the end effector.
func (e *EndEffector) Name() string {
	return e.name
}

// Joint returns the joint carrying the end effector.
func (e *EndEffector) Joint() JointID {
	return e.joint
}

// Offset returns the position of the end effector in its joint frame.
func (e *EndEffector) Offset() r3.Vector {
	return e.offset
}

// GlobalPosition returns the world position computed by the last pose propagation. The boolean is
// false if the pose has not been propagated since the chain was built or last articulated.
func (e *EndEffector) GlobalPosition() (r3.Vector, bool) {
	return e.global, e.valid
}
