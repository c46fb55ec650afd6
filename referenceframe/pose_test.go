package referenceframe

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/articulate/spatialmath"
)

func TestZeroAxisJointIsIdentity(t *testing.T) {
	chain, err := NewHumanoidArm()
	test.That(t, err, test.ShouldBeNil)
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		theta := make([]float64, chain.DoF())
		for k := range theta {
			theta[k] = (rng.Float64() - 0.5) * 4 * math.Pi
		}
		test.That(t, chain.Apply(theta), test.ShouldBeNil)
		for _, name := range []string{"root", "neck"} {
			id, err := chain.JointByName(name)
			test.That(t, err, test.ShouldBeNil)
			j, err := chain.Joint(id)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, j.Articulation(), test.ShouldResemble, mgl64.Ident4())
		}
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	chain, err := NewHumanoidArm()
	test.That(t, err, test.ShouldBeNil)
	theta := []float64{0.3, -1.2, 2.2, 0.01, -0.5, 1.7, -2.9}

	articulations := func() []mgl64.Mat4 {
		var out []mgl64.Mat4
		for _, j := range chain.Joints() {
			out = append(out, j.Articulation())
		}
		return out
	}
	test.That(t, chain.Apply(theta), test.ShouldBeNil)
	first := articulations()
	test.That(t, chain.Apply(theta), test.ShouldBeNil)
	test.That(t, articulations(), test.ShouldResemble, first)
	test.That(t, chain.Theta(), test.ShouldResemble, theta)

	// the chain keeps its own copy of theta
	theta[0] = 100
	test.That(t, chain.Theta()[0], test.ShouldEqual, 0.3)
	for _, j := range chain.Joints() {
		test.That(t, spatialmath.IsRotation(j.Articulation(), 1e-9), test.ShouldBeTrue)
	}
}

func TestApplyDimensionMismatch(t *testing.T) {
	chain, err := NewHumanoidArm()
	test.That(t, err, test.ShouldBeNil)
	err = chain.Apply([]float64{1, 2, 3})
	test.That(t, errors.Is(err, ErrDimensionMismatch), test.ShouldBeTrue)
	var dimErr *DimensionMismatchError
	test.That(t, errors.As(err, &dimErr), test.ShouldBeTrue)
	test.That(t, dimErr.Got, test.ShouldEqual, 3)
	test.That(t, dimErr.Want, test.ShouldEqual, 7)
	test.That(t, chain.Theta(), test.ShouldResemble, make([]float64, 7))
}

func TestShoulderOnlyChain(t *testing.T) {
	chain := newTestChain(t, AxisSet{X: true, Y: true, Z: true}, r3.Vector{X: 1})

	for _, tc := range []struct {
		name   string
		theta  []float64
		expect r3.Vector
	}{
		{"zero", []float64{0, 0, 0}, r3.Vector{X: 1}},
		{"x does not move a point on x", []float64{math.Pi / 2, 0, 0}, r3.Vector{X: 1}},
		{"y", []float64{0, math.Pi / 2, 0}, r3.Vector{Z: -1}},
		{"z", []float64{0, 0, math.Pi / 2}, r3.Vector{Y: 1}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			test.That(t, chain.Apply(tc.theta), test.ShouldBeNil)
			pos, err := chain.EndEffectorPosition("tip")
			test.That(t, err, test.ShouldBeNil)
			test.That(t, spatialmath.R3VectorAlmostEqual(pos, tc.expect, 1e-9), test.ShouldBeTrue)
		})
	}
}

func TestArticulationOrder(t *testing.T) {
	// x is applied first, then z: Rz·Rx·(0,1,0) = Rz·(0,0,1) = (0,0,1)
	chain := newTestChain(t, AxisSet{X: true, Z: true}, r3.Vector{Y: 1})
	test.That(t, chain.Apply([]float64{math.Pi / 2, math.Pi / 2}), test.ShouldBeNil)
	pos, err := chain.EndEffectorPosition("tip")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatialmath.R3VectorAlmostEqual(pos, r3.Vector{Z: 1}, 1e-9), test.ShouldBeTrue)
}

func TestEndEffectorValidity(t *testing.T) {
	chain, err := NewHumanoidArm()
	test.That(t, err, test.ShouldBeNil)
	ee, err := chain.EndEffector(HumanoidRightHand)
	test.That(t, err, test.ShouldBeNil)

	_, ok := ee.GlobalPosition()
	test.That(t, ok, test.ShouldBeFalse)

	chain.PropagatePose()
	pos, ok := ee.GlobalPosition()
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, spatialmath.R3VectorAlmostEqual(pos, r3.Vector{X: 5.8, Y: 7}, 1e-9), test.ShouldBeTrue)

	test.That(t, chain.Apply(chain.Theta()), test.ShouldBeNil)
	_, ok = ee.GlobalPosition()
	test.That(t, ok, test.ShouldBeFalse)

	_, err = chain.EndEffectorPosition("left_hand")
	test.That(t, err, test.ShouldBeError, NewUnknownEndEffectorError("left_hand"))
	test.That(t, errors.Is(err, ErrUnknownEndEffector), test.ShouldBeTrue)
}

func TestBodyShapeIsNotPropagated(t *testing.T) {
	chain, err := NewHumanoidArm()
	test.That(t, err, test.ShouldBeNil)
	snap := chain.Snapshot()
	test.That(t, len(snap.Joints), test.ShouldEqual, 5)

	// the torso is drawn scaled but the shoulder hangs from the unscaled torso frame
	root, ok := snap.JointPose("root")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, root.Body, test.ShouldEqual, "torso")
	test.That(t, root.Shape, test.ShouldEqual, ShapeRef("sphere"))
	test.That(t, spatialmath.Mat4AlmostEqual(root.World, mgl64.Translate3D(0, 5, 0), 1e-12), test.ShouldBeTrue)
	test.That(t,
		spatialmath.Mat4AlmostEqual(root.BodyWorld, mgl64.Translate3D(0, 5, 0).Mul4(mgl64.Scale3D(1, 2.5, 0.5)), 1e-12),
		test.ShouldBeTrue,
	)

	shoulder, ok := snap.JointPose("r_shoulder")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, spatialmath.Translation(shoulder.World), test.ShouldResemble, r3.Vector{X: 0.6, Y: 7})
	wrist, ok := snap.JointPose("r_wrist")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, spatialmath.Translation(wrist.World), test.ShouldResemble, r3.Vector{X: 5, Y: 7})

	_, ok = snap.JointPose("l_wrist")
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, snap.Effectors[HumanoidRightHand], test.ShouldResemble, r3.Vector{X: 5.8, Y: 7})
}

func TestSiblingIsolation(t *testing.T) {
	chain, err := NewHumanoidArm()
	test.That(t, err, test.ShouldBeNil)
	neck, ok := chain.Snapshot().JointPose("neck")
	test.That(t, ok, test.ShouldBeTrue)

	test.That(t, chain.SetJointAngles("r_shoulder", []float64{0.4, 1.1, -0.7}), test.ShouldBeNil)
	moved := chain.Snapshot()
	neckAfter, ok := moved.JointPose("neck")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, neckAfter.World, test.ShouldResemble, neck.World)
	test.That(t, spatialmath.Translation(neckAfter.World), test.ShouldResemble, r3.Vector{Y: 7.5})

	shoulder, ok := moved.JointPose("r_shoulder")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, spatialmath.Translation(shoulder.World), test.ShouldResemble, r3.Vector{X: 0.6, Y: 7})
	test.That(t, spatialmath.IsRotation(shoulder.World, 1e-9), test.ShouldBeFalse)
}

func TestSnapshotIsACopy(t *testing.T) {
	chain, err := NewHumanoidArm()
	test.That(t, err, test.ShouldBeNil)
	snap := chain.Snapshot()
	flat := snap.Flatten()
	test.That(t, len(flat), test.ShouldEqual, 16*5)
	// column-major: translation of the root frame lives in elements 12..14
	test.That(t, flat[12:15], test.ShouldResemble, []float64{0, 5, 0})

	test.That(t, chain.Apply([]float64{1, 1, 1, 1, 1, 1, 1}), test.ShouldBeNil)
	chain.PropagatePose()
	test.That(t, snap.Flatten(), test.ShouldResemble, flat)
	test.That(t, snap.Effectors[HumanoidRightHand], test.ShouldResemble, r3.Vector{X: 5.8, Y: 7})
}

func TestEmptyChainPropagation(t *testing.T) {
	chain := NewChain("empty")
	chain.PropagatePose()
	snap := chain.Snapshot()
	test.That(t, snap.Joints, test.ShouldBeEmpty)
	test.That(t, snap.Flatten(), test.ShouldBeEmpty)
	test.That(t, chain.Apply(nil), test.ShouldBeNil)
}
