package spline

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrIndexOutOfRange is matched by every IndexOutOfRangeError.
	ErrIndexOutOfRange = errors.New("control point index out of range")

	// ErrDegenerateCurve is returned by Validate for splines with fewer than two control points.
	ErrDegenerateCurve = errors.New("spline needs at least two control points")

	// ErrMalformedSpline is wrapped by every error reading the text form of a spline.
	ErrMalformedSpline = errors.New("malformed spline")
)

// IndexOutOfRangeError reports access to a control point that does not exist.
type IndexOutOfRangeError struct {
	Index int
	Size  int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("%s: index %d, size %d", ErrIndexOutOfRange, e.Index, e.Size)
}

// Is allows errors.Is to match ErrIndexOutOfRange.
func (e *IndexOutOfRangeError) Is(target error) bool {
	return target == ErrIndexOutOfRange
}

func malformed(line int, format string, args ...interface{}) error {
	return errors.Wrapf(ErrMalformedSpline, "line %d: %s", line, fmt.Sprintf(format, args...))
}
