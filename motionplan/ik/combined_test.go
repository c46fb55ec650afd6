package ik

import (
	"context"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/articulate/logging"
	frame "go.viam.com/articulate/referenceframe"
)

func TestCombinedIKinematics(t *testing.T) {
	logger := logging.NewTestLogger(t)
	ik, err := NewCombinedIK(logger, 4, NewDefaultOptions())
	test.That(t, err, test.ShouldBeNil)

	arm := newArm(t)
	target := reachableTarget(t)
	res, err := ik.Solve(context.Background(), arm, frame.HumanoidRightHand, target)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res.Converged, test.ShouldBeTrue)
	test.That(t, arm.Theta(), test.ShouldResemble, res.Theta)

	pos, err := arm.EndEffectorPosition(frame.HumanoidRightHand)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pos.Distance(target), test.ShouldBeLessThan, DefaultTolerance)

	// Test moving forward 0.5 in X direction from previous position
	res, err = ik.Solve(context.Background(), arm, frame.HumanoidRightHand, target.Add(r3.Vector{X: -0.5}))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res.Converged, test.ShouldBeTrue)
}

func TestCombinedIKUnreachable(t *testing.T) {
	ik, err := NewCombinedIK(logging.NewTestLogger(t), 0, NewDefaultOptions())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(ik.solvers), test.ShouldEqual, 1)

	arm := newArm(t)
	res, err := ik.Solve(context.Background(), arm, frame.HumanoidRightHand, r3.Vector{X: -50})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res.Converged, test.ShouldBeFalse)
	test.That(t, res.Iterations, test.ShouldEqual, DefaultMaxIterations)
}

func TestCombinedIKErrors(t *testing.T) {
	_, err := NewCombinedIK(logging.NewTestLogger(t), 2, Options{Tolerance: -1})
	test.That(t, err, test.ShouldNotBeNil)

	ik, err := NewCombinedIK(logging.NewTestLogger(t), 2, NewDefaultOptions())
	test.That(t, err, test.ShouldBeNil)
	_, err = ik.Solve(context.Background(), newArm(t), "left_hand", r3.Vector{})
	test.That(t, errors.Is(err, frame.ErrUnknownEndEffector), test.ShouldBeTrue)
}
