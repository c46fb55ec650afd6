// Package motionplan drives kinematic chains along trajectories by solving inverse kinematics at
// sampled waypoints.
package motionplan

import (
	"context"

	"github.com/golang/geo/r3"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/articulate/logging"
	"go.viam.com/articulate/motionplan/ik"
	"go.viam.com/articulate/referenceframe"
	"go.viam.com/articulate/spline"
)

// Trajectory is the sequence of solves that moved an end effector along a curve.
type Trajectory struct {
	Waypoints []r3.Vector
	Results   []*ik.Result
	Poses     []referenceframe.PoseSnapshot
}

// FollowSpline samples samples+1 waypoints along curve and solves for each in turn, every solve starting
// from the pose the previous one left the chain in. A waypoint that does not converge is recorded and
// the follower moves on.
func FollowSpline(
	ctx context.Context,
	solver ik.Solver,
	chain *referenceframe.Chain,
	effector string,
	curve *spline.Hermite,
	samples int,
	logger logging.Logger,
) (*Trajectory, error) {
	if err := curve.Validate(); err != nil {
		return nil, err
	}
	if samples < 1 {
		return nil, errors.Errorf("samples must be at least 1, got %d", samples)
	}

	waypoints := curve.Sample(samples)
	traj := &Trajectory{
		Waypoints: waypoints,
		Results:   make([]*ik.Result, 0, len(waypoints)),
		Poses:     make([]referenceframe.PoseSnapshot, 0, len(waypoints)),
	}
	for i, waypoint := range waypoints {
		res, err := solver.Solve(ctx, chain, effector, waypoint)
		if err != nil {
			return traj, errors.Wrapf(err, "waypoint %d", i)
		}
		traj.Results = append(traj.Results, res)
		traj.Poses = append(traj.Poses, chain.Snapshot())
		if !res.Converged {
			logger.Warnw("waypoint not reached", "waypoint", i, "residual", res.Residual)
		} else {
			logger.CDebugw(ctx, "waypoint reached", "waypoint", i, "iterations", res.Iterations)
		}
	}
	return traj, nil
}

// Summary aggregates the residuals of a trajectory.
type Summary struct {
	Waypoints      int     `json:"waypoints"`
	Converged      int     `json:"converged"`
	MeanResidual   float64 `json:"mean_residual"`
	MaxResidual    float64 `json:"max_residual"`
	P95Residual    float64 `json:"p95_residual"`
	MeanIterations float64 `json:"mean_iterations"`
}

// Summary returns residual statistics over every solved waypoint.
func (t *Trajectory) Summary() (Summary, error) {
	return Summarize(t.Results)
}

// Summarize returns residual statistics over a set of solve results.
func Summarize(results []*ik.Result) (Summary, error) {
	if len(results) == 0 {
		return Summary{}, stats.ErrEmptyInput
	}
	residuals := stats.Float64Data(lo.Map(results, func(r *ik.Result, _ int) float64 { return r.Residual }))
	iterations := stats.LoadRawData(lo.Map(results, func(r *ik.Result, _ int) int { return r.Iterations }))

	s := Summary{
		Waypoints: len(results),
		Converged: lo.CountBy(results, func(r *ik.Result) bool { return r.Converged }),
	}
	var err error
	if s.MeanResidual, err = residuals.Mean(); err != nil {
		return Summary{}, err
	}
	if s.MaxResidual, err = residuals.Max(); err != nil {
		return Summary{}, err
	}
	if s.P95Residual, err = residuals.Percentile(95); err != nil {
		return Summary{}, err
	}
	if s.MeanIterations, err = iterations.Mean(); err != nil {
		return Summary{}, err
	}
	return s, nil
}
