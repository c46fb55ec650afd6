package spatialmath

import (
	"github.com/golang/geo/r3"
)

// TranslationConfig is a JSON friendly 3D vector used for translations, offsets and scales.
type TranslationConfig struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// NewTranslationConfig returns a config from an r3.Vector.
func NewTranslationConfig(v r3.Vector) *TranslationConfig {
	return &TranslationConfig{X: v.X, Y: v.Y, Z: v.Z}
}

// ParseConfig converts a TranslationConfig into an r3.Vector.
func (tc *TranslationConfig) ParseConfig() r3.Vector {
	if tc == nil {
		return r3.Vector{}
	}
	return r3.Vector{X: tc.X, Y: tc.Y, Z: tc.Z}
}

// RotationConfig holds fixed-axis rotation angles in degrees, composed x first then y then z.
type RotationConfig struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}
