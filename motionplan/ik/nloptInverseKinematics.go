//go:build !no_cgo

package ik

import (
	"context"
	"fmt"
	"math"

	"github.com/go-nlopt/nlopt"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.viam.com/articulate/logging"
	"go.viam.com/articulate/referenceframe"
)

// Objective evaluations allowed per configured iteration.
const nloptEvalsPerIteration = 20

type optimizeReturn struct {
	solution []float64
	score    float64
	err      error
}

// NloptIK minimizes the squared distance from an end effector to its target with SLSQP, using the chain
// Jacobian for the gradient.
type NloptIK struct {
	logger logging.Logger
	opts   Options
}

// NewNloptIK creates an nlopt backed solver.
func NewNloptIK(logger logging.Logger, opts Options) (*NloptIK, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &NloptIK{logger: logger, opts: opts}, nil
}

// Solve runs the optimizer from the chain's current theta and leaves the chain at its answer.
func (ik *NloptIK) Solve(
	ctx context.Context,
	chain *referenceframe.Chain,
	effector string,
	target r3.Vector,
) (*Result, error) {
	if _, err := chain.EndEffectorPosition(effector); err != nil {
		return nil, err
	}
	if chain.DoF() == 0 {
		return nil, referenceframe.ErrNoDegreesOfFreedom
	}
	start := chain.Theta()

	opt, err := nlopt.NewNLopt(nlopt.LD_SLSQP, uint(chain.DoF()))
	if err != nil {
		return nil, errors.Wrap(err, "nlopt creation error")
	}
	defer opt.Destroy()

	evals := 0
	var evalErr error
	// x is our set of inputs
	// Gradient is, under the hood, a unsafe C structure that we are meant to mutate in place.
	nloptMinFunc := func(x, gradient []float64) float64 {
		evals++
		if err := chain.Apply(x); err != nil {
			evalErr = err
			return math.Inf(1)
		}
		p, err := chain.EndEffectorPosition(effector)
		if err != nil {
			evalErr = err
			return math.Inf(1)
		}
		diff := p.Sub(target)
		if len(gradient) > 0 {
			jac, err := ik.opts.jacobian(chain, effector)
			if err != nil {
				evalErr = err
				ik.logger.Errorw("error calculating jacobian in nlopt", "error", err)
				if stopErr := opt.ForceStop(); stopErr != nil {
					ik.logger.Errorw("forcestop error", "error", stopErr)
				}
				return math.Inf(1)
			}
			// ∇‖p − target‖² = 2 Jᵗ (p − target)
			for i := range gradient {
				gradient[i] = 2 * (jac.At(0, i)*diff.X + jac.At(1, i)*diff.Y + jac.At(2, i)*diff.Z)
			}
		}
		return diff.Norm2()
	}

	if err := multierr.Combine(
		opt.SetMinObjective(nloptMinFunc),
		opt.SetStopVal(ik.opts.Tolerance*ik.opts.Tolerance),
		opt.SetFtolAbs(1e-12),
		opt.SetXtolRel(1e-10),
		opt.SetMaxEval(ik.opts.MaxIterations*nloptEvalsPerIteration),
	); err != nil {
		return nil, err
	}

	solveChan := make(chan optimizeReturn, 1)
	utils.PanicCapturingGoWithCallback(func() {
		solution, score, err := opt.Optimize(start)
		solveChan <- optimizeReturn{solution, score, err}
	}, func(thePanic interface{}) {
		solveChan <- optimizeReturn{err: fmt.Errorf("nlopt panicked: %v", thePanic)}
	})

	var ret optimizeReturn
	var ctxErr error
	select {
	case <-ctx.Done():
		ctxErr = multierr.Combine(ctx.Err(), opt.ForceStop())
		ret = <-solveChan
	case ret = <-solveChan:
	}
	if ret.err != nil {
		// Non-positive nlopt results such as roundoff limits happen on hard targets; the answer is still usable.
		ik.logger.Debugw("nlopt stopped", "error", ret.err)
	}

	theta := ret.solution
	if len(theta) != len(start) || evalErr != nil {
		theta = start
	}
	if err := chain.Apply(theta); err != nil {
		return nil, err
	}
	residual, err := PositionResidual(chain, effector, target)
	if err != nil {
		return nil, err
	}
	res := &Result{
		Theta:      chain.Theta(),
		Residual:   residual,
		Iterations: evals,
		Converged:  residual < ik.opts.Tolerance,
	}
	ik.logger.Debugw("nlopt finished", "evaluations", evals, "residual", residual, "converged", res.Converged)
	return res, multierr.Combine(ctxErr, evalErr)
}
