package ik

import (
	"context"
	"math"
	"math/rand"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/articulate/logging"
	"go.viam.com/articulate/referenceframe"
	"go.viam.com/articulate/utils"
)

// CombinedIK defines the fields necessary to run a combined solver.
type CombinedIK struct {
	solvers []*DampedLeastSquares
	logger  logging.Logger
}

// NewCombinedIK creates a combined parallel IK solver with nSolvers damped least squares solvers. The
// first starts from the chain's current theta, the others from random seeds. When asked to solve, all
// solvers run in parallel on clones of the chain and the result closest to the target is returned.
func NewCombinedIK(logger logging.Logger, nSolvers int, opts Options) (*CombinedIK, error) {
	ik := &CombinedIK{logger: logger}
	if nSolvers < 1 {
		nSolvers = 1
	}
	logger.Debugf("NewCombinedIK solvers: %d", nSolvers)
	for i := 0; i < nSolvers; i++ {
		solver, err := NewDampedLeastSquares(logger.Sublogger("dls"), opts)
		if err != nil {
			return nil, err
		}
		ik.solvers = append(ik.solvers, solver)
	}
	return ik, nil
}

// Solve runs every child solver and leaves the chain at the best result. A child solver that hits a
// numerical instability still contributes its best theta.
func (ik *CombinedIK) Solve(
	ctx context.Context,
	chain *referenceframe.Chain,
	effector string,
	target r3.Vector,
) (*Result, error) {
	if _, err := chain.EndEffectorPosition(effector); err != nil {
		return nil, err
	}

	results := make([]*Result, len(ik.solvers))
	fs := make([]utils.SimpleFunc, 0, len(ik.solvers))
	for i, solver := range ik.solvers {
		i, solver := i, solver
		clone := chain.Clone()
		seed := clone.Theta()
		if i > 0 {
			//nolint:gosec
			randSeed := rand.New(rand.NewSource(int64(i)))
			for k := range seed {
				seed[k] = (randSeed.Float64()*2 - 1) * math.Pi
			}
		}
		fs = append(fs, func(ctx context.Context) error {
			if err := clone.Apply(seed); err != nil {
				return err
			}
			res, err := solver.Solve(ctx, clone, effector, target)
			if errors.Is(err, ErrNumericalInstability) {
				ik.logger.Debugw("solver hit numerical instability", "solver", i, "error", err)
				err = nil
			}
			results[i] = res
			return err
		})
	}

	_, err := utils.RunInParallel(ctx, fs)
	found := lo.Compact(results)
	if len(found) == 0 {
		return nil, err
	}
	best := lo.MinBy(found, func(a, b *Result) bool { return a.Residual < b.Residual })
	if applyErr := chain.Apply(best.Theta); applyErr != nil {
		return nil, applyErr
	}
	chain.PropagatePose()
	ik.logger.Debugw("combined solve finished", "solvers", len(ik.solvers), "residual", best.Residual, "converged", best.Converged)
	return best, err
}
