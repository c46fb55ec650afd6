package referenceframe

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrDimensionMismatch is matched by every DimensionMismatchError.
	ErrDimensionMismatch = errors.New("theta length does not match degrees of freedom")

	// ErrUnknownEndEffector is matched by every UnknownEndEffectorError.
	ErrUnknownEndEffector = errors.New("unknown end effector")

	// ErrDuplicateName is returned when a body, joint or end effector name is already taken.
	ErrDuplicateName = errors.New("name already in use")

	// ErrRootAlreadySet is returned when a second joint without a parent body is added.
	ErrRootAlreadySet = errors.New("chain already has a root joint")

	// ErrMissingRoot is returned when a joint with a parent body is added before the root joint.
	ErrMissingRoot = errors.New("the first joint added to a chain must be the root")

	// ErrEndEffectorAlreadyAttached is returned when a joint already owns an end effector.
	ErrEndEffectorAlreadyAttached = errors.New("joint already has an end effector")

	// ErrCircularReference is returned when chain joints reference each other in a loop.
	ErrCircularReference = errors.New("infinite loop finding path from end effector to root")

	// ErrNoChainInformation is returned when there is no chain information to parse.
	ErrNoChainInformation = errors.New("no chain information")
)

// DimensionMismatchError reports a theta vector of the wrong length.
type DimensionMismatchError struct {
	Got  int
	Want int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("%s: got %d, want %d", ErrDimensionMismatch, e.Got, e.Want)
}

// Is allows errors.Is to match ErrDimensionMismatch.
func (e *DimensionMismatchError) Is(target error) bool {
	return target == ErrDimensionMismatch
}

// NewDimensionMismatchError returns an error for a theta of length got where want was expected.
func NewDimensionMismatchError(got, want int) error {
	return &DimensionMismatchError{Got: got, Want: want}
}

// UnknownEndEffectorError reports an end effector name the chain does not hold.
type UnknownEndEffectorError struct {
	Name string
}

func (e *UnknownEndEffectorError) Error() string {
	return fmt.Sprintf("%s %q", ErrUnknownEndEffector, e.Name)
}

// Is allows errors.Is to match ErrUnknownEndEffector.
func (e *UnknownEndEffectorError) Is(target error) bool {
	return target == ErrUnknownEndEffector
}

// NewUnknownEndEffectorError returns an error for the unknown end effector name.
func NewUnknownEndEffectorError(name string) error {
	return &UnknownEndEffectorError{Name: name}
}

// NewBodyNotFoundError returns an error for a body handle or name that is not in the chain.
func NewBodyNotFoundError(body interface{}) error {
	return errors.Errorf("body %v not found in chain", body)
}

// NewJointNotFoundError returns an error for a joint handle or name that is not in the chain.
func NewJointNotFoundError(joint interface{}) error {
	return errors.Errorf("joint %v not found in chain", joint)
}

// NewDetachedParentError returns an error for a joint whose parent body has not been attached to the tree yet.
func NewDetachedParentError(joint, body string) error {
	return errors.Errorf("joint %q has parent body %q which is not attached to the chain", joint, body)
}

// NewBodyAlreadyAttachedError returns an error for a body that already is the child of another joint.
func NewBodyAlreadyAttachedError(body, joint string) error {
	return errors.Errorf("body %q is already the child of joint %q", body, joint)
}

// NewUnsupportedAxesError returns an error for an axis string with characters other than x, y and z.
func NewUnsupportedAxesError(axes string) error {
	return errors.Errorf("unsupported rotation axes %q, expected some of \"xyz\"", axes)
}

// NewUnsupportedJointTypeError returns an error for a joint type that has no rotational equivalent.
func NewUnsupportedJointTypeError(jointType string) error {
	return errors.Errorf("unsupported joint type detected: %q", jointType)
}
