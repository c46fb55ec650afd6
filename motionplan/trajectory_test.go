package motionplan

import (
	"context"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/articulate/logging"
	"go.viam.com/articulate/motionplan/ik"
	"go.viam.com/articulate/referenceframe"
	"go.viam.com/articulate/spline"
)

func newArmAndCurve(t *testing.T) (*referenceframe.Chain, *spline.Hermite) {
	t.Helper()
	arm, err := referenceframe.NewHumanoidArm()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, arm.Apply([]float64{0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1}), test.ShouldBeNil)
	hand, err := arm.EndEffectorPosition(referenceframe.HumanoidRightHand)
	test.That(t, err, test.ShouldBeNil)

	// a short arc in front of the hand
	curve := spline.FitCatmullRom([]r3.Vector{
		hand,
		hand.Add(r3.Vector{X: -0.5, Y: 0.5, Z: 0.5}),
		hand.Add(r3.Vector{X: -1, Y: 0, Z: 1}),
	})
	return arm, curve
}

func TestFollowSpline(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	arm, curve := newArmAndCurve(t)
	solver, err := ik.NewDampedLeastSquares(logger, ik.NewDefaultOptions())
	test.That(t, err, test.ShouldBeNil)

	traj, err := FollowSpline(context.Background(), solver, arm, referenceframe.HumanoidRightHand, curve, 10, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(traj.Waypoints), test.ShouldEqual, 11)
	test.That(t, len(traj.Results), test.ShouldEqual, 11)
	test.That(t, len(traj.Poses), test.ShouldEqual, 11)
	test.That(t, traj.Waypoints[0], test.ShouldResemble, curve.Evaluate(0))
	test.That(t, traj.Waypoints[10], test.ShouldResemble, curve.Evaluate(1))

	for i, pose := range traj.Poses {
		hand := pose.Effectors[referenceframe.HumanoidRightHand]
		test.That(t, hand.Distance(traj.Waypoints[i]), test.ShouldBeLessThan, ik.DefaultTolerance)
	}
	// the chain ends where the last waypoint left it
	test.That(t, arm.Theta(), test.ShouldResemble, traj.Results[10].Theta)

	summary, err := traj.Summary()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, summary.Waypoints, test.ShouldEqual, 11)
	test.That(t, summary.Converged, test.ShouldEqual, 11)
	test.That(t, summary.MaxResidual, test.ShouldBeLessThan, ik.DefaultTolerance)
	test.That(t, summary.MeanResidual, test.ShouldBeLessThanOrEqualTo, summary.MaxResidual)
	test.That(t, logs.FilterMessage("waypoint reached").Len(), test.ShouldEqual, 11)
}

func TestFollowSplineErrors(t *testing.T) {
	logger := logging.NewTestLogger(t)
	arm, curve := newArmAndCurve(t)
	solver, err := ik.NewDampedLeastSquares(logger, ik.NewDefaultOptions())
	test.That(t, err, test.ShouldBeNil)

	degenerate := spline.NewHermite()
	degenerate.AddPoint(r3.Vector{}, r3.Vector{})
	_, err = FollowSpline(context.Background(), solver, arm, referenceframe.HumanoidRightHand, degenerate, 10, logger)
	test.That(t, err, test.ShouldEqual, spline.ErrDegenerateCurve)

	_, err = FollowSpline(context.Background(), solver, arm, referenceframe.HumanoidRightHand, curve, 0, logger)
	test.That(t, err, test.ShouldNotBeNil)

	traj, err := FollowSpline(context.Background(), solver, arm, "left_hand", curve, 4, logger)
	test.That(t, errors.Is(err, referenceframe.ErrUnknownEndEffector), test.ShouldBeTrue)
	test.That(t, traj.Results, test.ShouldBeEmpty)
}

func TestFollowSplineUnreachable(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	arm, _ := newArmAndCurve(t)
	opts := ik.NewDefaultOptions()
	opts.MaxIterations = 5
	solver, err := ik.NewDampedLeastSquares(logger, opts)
	test.That(t, err, test.ShouldBeNil)

	far := spline.NewHermite()
	far.AddPoint(r3.Vector{X: 50}, r3.Vector{})
	far.AddPoint(r3.Vector{X: 60}, r3.Vector{})
	traj, err := FollowSpline(context.Background(), solver, arm, referenceframe.HumanoidRightHand, far, 3, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(traj.Results), test.ShouldEqual, 4)

	summary, err := traj.Summary()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, summary.Converged, test.ShouldEqual, 0)
	test.That(t, summary.MeanIterations, test.ShouldEqual, 5)
	test.That(t, summary.MaxResidual, test.ShouldBeGreaterThan, 40)
	test.That(t, logs.FilterMessage("waypoint not reached").Len(), test.ShouldEqual, 4)
}

func TestSummarize(t *testing.T) {
	_, err := Summarize(nil)
	test.That(t, err, test.ShouldEqual, stats.ErrEmptyInput)

	summary, err := Summarize([]*ik.Result{
		{Residual: 0.001, Iterations: 3, Converged: true},
		{Residual: 0.003, Iterations: 5, Converged: true},
		{Residual: 2, Iterations: 100},
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, summary.Waypoints, test.ShouldEqual, 3)
	test.That(t, summary.Converged, test.ShouldEqual, 2)
	test.That(t, summary.MaxResidual, test.ShouldEqual, 2)
	test.That(t, summary.MeanResidual, test.ShouldAlmostEqual, 2.004/3)
	test.That(t, summary.MeanIterations, test.ShouldEqual, 36)
	test.That(t, summary.P95Residual, test.ShouldBeGreaterThan, 0.003)
}
