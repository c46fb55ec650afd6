package referenceframe

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/articulate/spatialmath"
)

// DefaultJacobianEpsilon is the forward difference step used by Jacobian.
const DefaultJacobianEpsilon = 1e-3

// ErrNoDegreesOfFreedom is returned when a Jacobian is requested for a chain without joint angles.
var ErrNoDegreesOfFreedom = errors.New("chain has no degrees of freedom")

// Jacobian returns the 3×DoF matrix of partial derivatives of the named end effector's world position
// with respect to theta, estimated by forward differences with DefaultJacobianEpsilon.
func (c *Chain) Jacobian(effector string) (*mat.Dense, error) {
	return c.JacobianWithEpsilon(effector, DefaultJacobianEpsilon)
}

// JacobianWithEpsilon is Jacobian with a custom forward difference step. Theta is identical before and
// after the call.
func (c *Chain) JacobianWithEpsilon(effector string, epsilon float64) (*mat.Dense, error) {
	if epsilon <= 0 {
		return nil, errors.Errorf("jacobian epsilon must be positive, got %v", epsilon)
	}
	p0, err := c.EndEffectorPosition(effector)
	if err != nil {
		return nil, err
	}
	if c.DoF() == 0 {
		return nil, ErrNoDegreesOfFreedom
	}

	original := c.Theta()
	perturbed := make([]float64, len(original))
	jac := mat.NewDense(3, len(original), nil)
	for i := range original {
		copy(perturbed, original)
		perturbed[i] += epsilon
		if err := c.Apply(perturbed); err != nil {
			return nil, err
		}
		p, err := c.EndEffectorPosition(effector)
		if err != nil {
			return nil, err
		}
		d := p.Sub(p0).Mul(1 / epsilon)
		jac.Set(0, i, d.X)
		jac.Set(1, i, d.Y)
		jac.Set(2, i, d.Z)

		// restore the exact original angles rather than stepping back by epsilon
		if err := c.Apply(original); err != nil {
			return nil, err
		}
	}
	c.PropagatePose()
	return jac, nil
}

// AnalyticJacobian returns the same matrix as Jacobian computed in closed form. The column for an axis
// of joint j is ω × (p − o), where ω is the world direction of the axis, o the world origin of the joint
// and p the end effector position. Joints that do not move the end effector have zero columns.
func (c *Chain) AnalyticJacobian(effector string) (*mat.Dense, error) {
	p, err := c.EndEffectorPosition(effector)
	if err != nil {
		return nil, err
	}
	if c.DoF() == 0 {
		return nil, ErrNoDegreesOfFreedom
	}

	jac := mat.NewDense(3, c.DoF(), nil)
	for id := c.effectors[effector]; id != NoJoint; id = c.parentJoint(id) {
		j := c.joints[id]
		if j.DoF() == 0 {
			continue
		}
		base := c.parentWorlds[id].Mul4(j.placement)
		origin := spatialmath.Translation(base)
		angles := j.angles(c.theta)

		// world = base · Rz · Ry · Rx, so each axis turns in the frame left of its own rotation
		frames := [3]r3.Vector{
			spatialmath.XAxis: spatialmath.TransformDirection(
				base.Mul4(spatialmath.ZAxis.Rotation(angles[spatialmath.ZAxis])).Mul4(spatialmath.YAxis.Rotation(angles[spatialmath.YAxis])),
				r3.Vector{X: 1},
			),
			spatialmath.YAxis: spatialmath.TransformDirection(
				base.Mul4(spatialmath.ZAxis.Rotation(angles[spatialmath.ZAxis])),
				r3.Vector{Y: 1},
			),
			spatialmath.ZAxis: spatialmath.TransformDirection(base, r3.Vector{Z: 1}),
		}
		lever := p.Sub(origin)
		for k, axis := range j.axes.Enabled() {
			col := frames[axis].Normalize().Cross(lever)
			jac.Set(0, j.thetaStart+k, col.X)
			jac.Set(1, j.thetaStart+k, col.Y)
			jac.Set(2, j.thetaStart+k, col.Z)
		}
	}
	return jac, nil
}

// parentJoint returns the joint whose child body is the parent body of id.
func (c *Chain) parentJoint(id JointID) JointID {
	parent := c.joints[id].parent
	if parent == NoBody {
		return NoJoint
	}
	return c.owner[parent]
}
