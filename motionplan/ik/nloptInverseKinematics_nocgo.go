//go:build no_cgo

package ik

import (
	"context"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/articulate/logging"
	"go.viam.com/articulate/referenceframe"
)

// NloptIK mimics the type in the cgo compiled code.
type NloptIK struct{}

// NewNloptIK is not supported on no_cgo builds.
func NewNloptIK(logger logging.Logger, opts Options) (*NloptIK, error) {
	return nil, errors.New("nlopt is not supported on this build")
}

// Solve refuses to solve problems without cgo.
func (ik *NloptIK) Solve(
	ctx context.Context,
	chain *referenceframe.Chain,
	effector string,
	target r3.Vector,
) (*Result, error) {
	return nil, errors.New("cannot solve without cgo")
}
