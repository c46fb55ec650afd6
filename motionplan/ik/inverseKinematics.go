// Package ik contains inverse kinematics solvers that move an end effector of a kinematic chain to a
// target position.
package ik

import (
	"context"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/articulate/logging"
	"go.viam.com/articulate/referenceframe"
	"go.viam.com/articulate/utils"
)

var (
	// ErrNonPositiveDamping is returned when a damped step is requested with λ <= 0.
	ErrNonPositiveDamping = errors.New("damping must be positive")

	// ErrNumericalInstability is returned when a step cannot be computed or is not finite.
	ErrNumericalInstability = errors.New("numerical instability computing inverse kinematics step")
)

// Solver moves an end effector of a chain to a target position. A solver leaves the chain at the
// returned Result's theta.
type Solver interface {
	Solve(ctx context.Context, chain *referenceframe.Chain, effector string, target r3.Vector) (*Result, error)
}

// Result is the outcome of a solve. Not converging is a normal outcome and is not an error.
type Result struct {
	Theta      []float64 `json:"theta"`
	Residual   float64   `json:"residual"`
	Iterations int       `json:"iterations"`
	Converged  bool      `json:"converged"`
}

// DampedLeastSquares iteratively steps theta by (JᵗJ + λI)⁻¹ Jᵗ Δx toward the target.
type DampedLeastSquares struct {
	logger logging.Logger
	opts   Options
}

// NewDampedLeastSquares returns a damped least squares solver.
func NewDampedLeastSquares(logger logging.Logger, opts Options) (*DampedLeastSquares, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &DampedLeastSquares{logger: logger, opts: opts}, nil
}

// Options returns the options the solver runs with.
func (ik *DampedLeastSquares) Options() Options {
	return ik.opts
}

// Solve steps the chain toward target until the end effector is within tolerance or the iteration budget
// is spent. The chain is left at the best theta seen. On numerical instability the best result so far is
// returned together with ErrNumericalInstability.
func (ik *DampedLeastSquares) Solve(
	ctx context.Context,
	chain *referenceframe.Chain,
	effector string,
	target r3.Vector,
) (*Result, error) {
	p, err := chain.EndEffectorPosition(effector)
	if err != nil {
		return nil, err
	}
	if chain.DoF() == 0 {
		return nil, referenceframe.ErrNoDegreesOfFreedom
	}

	theta := chain.Theta()
	best := &Result{Theta: chain.Theta(), Residual: p.Distance(target)}
	finish := func(iterations int, err error) (*Result, error) {
		best.Iterations = iterations
		best.Converged = best.Residual < ik.opts.Tolerance
		if applyErr := chain.Apply(best.Theta); applyErr != nil {
			return nil, applyErr
		}
		chain.PropagatePose()
		ik.logger.CDebugw(ctx, "damped least squares finished",
			"effector", effector, "iterations", iterations, "residual", best.Residual, "converged", best.Converged)
		return best, err
	}

	iterations := 0
	for iterations < ik.opts.MaxIterations {
		if err := ctx.Err(); err != nil {
			return finish(iterations, err)
		}
		if p.Distance(target) < ik.opts.Tolerance {
			break
		}

		jac, err := ik.opts.jacobian(chain, effector)
		if err != nil {
			return finish(iterations, err)
		}
		step, err := DampedStep(jac, target.Sub(p), ik.opts.Damping)
		if err != nil {
			return finish(iterations, err)
		}
		floats.Add(theta, step)
		if err := chain.Apply(theta); err != nil {
			return finish(iterations, err)
		}
		iterations++

		if p, err = chain.EndEffectorPosition(effector); err != nil {
			return finish(iterations, err)
		}
		residual := p.Distance(target)
		if residual < best.Residual {
			copy(best.Theta, theta)
			best.Residual = residual
		}
		ik.logger.CDebugw(ctx, "damped least squares step", "iteration", iterations, "residual", residual)
	}
	return finish(iterations, nil)
}

// DampedStep solves (JᵗJ + λI) Δθ = Jᵗ dx for Δθ by Cholesky factorization. JᵗJ + λI is positive definite
// for any J when λ > 0.
func DampedStep(jac *mat.Dense, dx r3.Vector, lambda float64) ([]float64, error) {
	if !(lambda > 0) {
		return nil, errors.Wrapf(ErrNonPositiveDamping, "got %v", lambda)
	}
	rows, n := jac.Dims()
	if rows != 3 {
		return nil, errors.Errorf("jacobian must have 3 rows, got %d", rows)
	}

	var jtj mat.SymDense
	jtj.SymOuterK(1, jac.T())
	for i := 0; i < n; i++ {
		jtj.SetSym(i, i, jtj.At(i, i)+lambda)
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(&jtj); !ok {
		return nil, errors.Wrap(ErrNumericalInstability, "JᵗJ + λI is not positive definite")
	}
	if math.IsInf(chol.Cond(), 0) {
		return nil, errors.Wrap(ErrNumericalInstability, "JᵗJ + λI is singular")
	}

	var rhs, step mat.VecDense
	rhs.MulVec(jac.T(), mat.NewVecDense(3, []float64{dx.X, dx.Y, dx.Z}))
	if err := chol.SolveVecTo(&step, &rhs); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, errors.Wrap(ErrNumericalInstability, err.Error())
		}
	}

	out := make([]float64, n)
	copy(out, step.RawVector().Data)
	if !utils.IsFinite(out...) {
		return nil, errors.Wrap(ErrNumericalInstability, "step is not finite")
	}
	return out, nil
}

// SolveIK moves the named end effector toward target with a damped least squares solver using the given
// iteration budget and tolerance and default values for everything else. maxIterations must be at least
// 1 and tolerance must not be negative.
func SolveIK(
	ctx context.Context,
	chain *referenceframe.Chain,
	effector string,
	target r3.Vector,
	maxIterations int,
	tolerance float64,
) (*Result, error) {
	opts := NewDefaultOptions()
	opts.MaxIterations = maxIterations
	opts.Tolerance = tolerance
	solver, err := NewDampedLeastSquares(logging.NewBlankLogger("ik"), opts)
	if err != nil {
		return nil, err
	}
	return solver.Solve(ctx, chain, effector, target)
}
