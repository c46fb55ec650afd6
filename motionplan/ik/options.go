package ik

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/articulate/referenceframe"
)

// default values for inverse kinematics.
const (
	// Number of damped steps taken before giving up.
	DefaultMaxIterations = 100

	// An end effector closer than this to the target is considered solved.
	DefaultTolerance = 0.01

	// Added to the diagonal of JᵗJ before solving for a step.
	DefaultDamping = 1e-4
)

// Options configures the inverse kinematics solvers. Every field is taken as given: start from
// NewDefaultOptions to leave a value at its default.
type Options struct {
	// Max number of damped steps per solve
	MaxIterations int `json:"max_iterations"`

	// Distance to the target below which a solve has converged
	Tolerance float64 `json:"tolerance"`

	// Damping factor λ of the least squares step
	Damping float64 `json:"damping"`

	// Forward difference step of the numerical Jacobian
	JacobianEpsilon float64 `json:"jacobian_epsilon"`

	// Use the closed form Jacobian instead of finite differences
	Analytic bool `json:"analytic,omitempty"`
}

// NewDefaultOptions returns the default solver options.
func NewDefaultOptions() Options {
	return Options{
		MaxIterations:   DefaultMaxIterations,
		Tolerance:       DefaultTolerance,
		Damping:         DefaultDamping,
		JacobianEpsilon: referenceframe.DefaultJacobianEpsilon,
	}
}

// Validate returns every problem with the options.
func (o Options) Validate() error {
	var err error
	if o.MaxIterations < 1 {
		err = multierr.Append(err, errors.Errorf("max_iterations must be at least 1, got %d", o.MaxIterations))
	}
	if !(o.Tolerance >= 0) {
		err = multierr.Append(err, errors.Errorf("tolerance must not be negative, got %v", o.Tolerance))
	}
	if !(o.Damping > 0) {
		err = multierr.Append(err, errors.Wrapf(ErrNonPositiveDamping, "got %v", o.Damping))
	}
	if !o.Analytic && !(o.JacobianEpsilon > 0) {
		err = multierr.Append(err, errors.Errorf("jacobian_epsilon must be positive, got %v", o.JacobianEpsilon))
	}
	return err
}

func (o Options) jacobian(chain *referenceframe.Chain, effector string) (*mat.Dense, error) {
	if o.Analytic {
		return chain.AnalyticJacobian(effector)
	}
	return chain.JacobianWithEpsilon(effector, o.JacobianEpsilon)
}
