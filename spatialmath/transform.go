// Package spatialmath defines the homogeneous transform math used to pose an articulated chain.
// Transforms are column-major mgl64.Mat4 values; points and directions are r3.Vectors.
package spatialmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
)

// Axis names one of the three fixed coordinate axes a revolute joint may rotate about.
type Axis int

// The rotation axes, in the order articulations are composed.
const (
	XAxis Axis = iota
	YAxis
	ZAxis
)

// Axes lists every Axis in composition order.
var Axes = []Axis{XAxis, YAxis, ZAxis}

func (a Axis) String() string {
	switch a {
	case XAxis:
		return "x"
	case YAxis:
		return "y"
	case ZAxis:
		return "z"
	}
	return "unknown"
}

// Vector returns the unit vector of the axis.
func (a Axis) Vector() r3.Vector {
	switch a {
	case XAxis:
		return r3.Vector{X: 1}
	case YAxis:
		return r3.Vector{Y: 1}
	case ZAxis:
		return r3.Vector{Z: 1}
	}
	return r3.Vector{}
}

// Rotation returns the homogeneous rotation of theta radians about the axis.
func (a Axis) Rotation(theta float64) mgl64.Mat4 {
	switch a {
	case XAxis:
		return mgl64.HomogRotate3DX(theta)
	case YAxis:
		return mgl64.HomogRotate3DY(theta)
	case ZAxis:
		return mgl64.HomogRotate3DZ(theta)
	}
	return mgl64.Ident4()
}

// NewTranslation returns a transform translating by v.
func NewTranslation(v r3.Vector) mgl64.Mat4 {
	return mgl64.Translate3D(v.X, v.Y, v.Z)
}

// NewScale returns a transform scaling each axis by the matching component of v.
func NewScale(v r3.Vector) mgl64.Mat4 {
	return mgl64.Scale3D(v.X, v.Y, v.Z)
}

// NewRotationXYZ composes rotations about the fixed x, y and z axes, x applied first: Rz·Ry·Rx.
func NewRotationXYZ(x, y, z float64) mgl64.Mat4 {
	return ZAxis.Rotation(z).Mul4(YAxis.Rotation(y)).Mul4(XAxis.Rotation(x))
}

// TransformPoint applies m to the point p (w = 1).
func TransformPoint(m mgl64.Mat4, p r3.Vector) r3.Vector {
	return Vec3ToR3(mgl64.TransformCoordinate(R3ToVec3(p), m))
}

// TransformDirection applies the linear part of m to the direction d (w = 0).
func TransformDirection(m mgl64.Mat4, d r3.Vector) r3.Vector {
	return Vec3ToR3(mgl64.TransformNormal(R3ToVec3(d), m))
}

// Translation returns the translation column of m.
func Translation(m mgl64.Mat4) r3.Vector {
	return Vec3ToR3(m.Col(3).Vec3())
}

// R3ToVec3 converts an r3.Vector to an mgl64.Vec3.
func R3ToVec3(v r3.Vector) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

// Vec3ToR3 converts an mgl64.Vec3 to an r3.Vector.
func Vec3ToR3(v mgl64.Vec3) r3.Vector {
	return r3.Vector{X: v[0], Y: v[1], Z: v[2]}
}

// R3VectorAlmostEqual compares two r3.Vector objects and returns if the all elementwise differences are less than epsilon.
func R3VectorAlmostEqual(a, b r3.Vector, epsilon float64) bool {
	return math.Abs(a.X-b.X) < epsilon && math.Abs(a.Y-b.Y) < epsilon && math.Abs(a.Z-b.Z) < epsilon
}

// Mat4AlmostEqual returns true if every element of the two matrices differs by less than epsilon.
func Mat4AlmostEqual(a, b mgl64.Mat4, epsilon float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) >= epsilon {
			return false
		}
	}
	return true
}

// IsRotation returns true if m is a pure rotation: orthonormal upper 3x3 with determinant 1 and no
// translation or projective part.
func IsRotation(m mgl64.Mat4, epsilon float64) bool {
	rot := m.Mat3()
	if !Mat3AlmostEqual(rot.Mul3(rot.Transpose()), mgl64.Ident3(), epsilon) {
		return false
	}
	if math.Abs(rot.Det()-1) >= epsilon {
		return false
	}
	return Mat4AlmostEqual(mgl64.Mat4{
		0, 0, 0, m[3],
		0, 0, 0, m[7],
		0, 0, 0, m[11],
		m[12], m[13], m[14], m[15],
	}, mgl64.Mat4{15: 1}, epsilon)
}

// Mat3AlmostEqual returns true if every element of the two matrices differs by less than epsilon.
func Mat3AlmostEqual(a, b mgl64.Mat3, epsilon float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) >= epsilon {
			return false
		}
	}
	return true
}
