package referenceframe

import (
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestHumanoidLayout(t *testing.T) {
	chain, err := NewHumanoidArm()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, chain.DoF(), test.ShouldEqual, 7)
	test.That(t, chain.Layout(), test.ShouldResemble, ThetaLayout{
		"root":       {Start: 0, End: 0},
		"neck":       {Start: 0, End: 0},
		"r_shoulder": {Start: 0, End: 3},
		"r_elbow":    {Start: 3, End: 5},
		"r_wrist":    {Start: 5, End: 7},
	})
}

func TestThetaFromJointAngles(t *testing.T) {
	chain, err := NewHumanoidArm()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, chain.Apply([]float64{1, 2, 3, 4, 5, 6, 7}), test.ShouldBeNil)

	theta, err := chain.ThetaFromJointAngles(map[string][]float64{
		"r_elbow": {0.1, 0.2},
		"neck":    {},
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, theta, test.ShouldResemble, []float64{1, 2, 3, 0.1, 0.2, 6, 7})
	test.That(t, chain.Theta(), test.ShouldResemble, []float64{1, 2, 3, 4, 5, 6, 7})

	_, err = chain.ThetaFromJointAngles(map[string][]float64{"l_elbow": {1}})
	test.That(t, err, test.ShouldBeError, NewJointNotFoundError("l_elbow"))

	_, err = chain.ThetaFromJointAngles(map[string][]float64{"r_wrist": {1, 2, 3}})
	test.That(t, errors.Is(err, ErrDimensionMismatch), test.ShouldBeTrue)

	test.That(t, chain.SetJointAngles("r_wrist", []float64{-1, -2}), test.ShouldBeNil)
	test.That(t, chain.Theta(), test.ShouldResemble, []float64{1, 2, 3, 4, 5, -1, -2})
	test.That(t, chain.JointAngles()["r_wrist"], test.ShouldResemble, []float64{-1, -2})
	test.That(t, chain.JointAngles()["root"], test.ShouldBeEmpty)
}
