package ik

import (
	"github.com/golang/geo/r3"

	"go.viam.com/articulate/referenceframe"
)

// SquaredNorm returns the squared euclidean distance between two points.
func SquaredNorm(a, b r3.Vector) float64 {
	return a.Sub(b).Norm2()
}

// PositionResidual returns the distance from the named end effector to target at the chain's current theta.
func PositionResidual(chain *referenceframe.Chain, effector string, target r3.Vector) (float64, error) {
	p, err := chain.EndEffectorPosition(effector)
	if err != nil {
		return 0, err
	}
	return p.Distance(target), nil
}
