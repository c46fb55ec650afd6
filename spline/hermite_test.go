package spline

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"
)

func newTestSpline() *Hermite {
	h := NewHermite()
	h.AddPoint(r3.Vector{X: 0, Y: 0, Z: 0}, r3.Vector{X: 1, Y: 2, Z: 0})
	h.AddPoint(r3.Vector{X: 2, Y: 1, Z: -1}, r3.Vector{X: 0.5, Y: -1, Z: 3})
	h.AddPoint(r3.Vector{X: -1, Y: 4, Z: 2}, r3.Vector{X: -2, Y: 0, Z: 1})
	h.AddPoint(r3.Vector{X: 3, Y: 3, Z: 3}, r3.Vector{X: 0, Y: 0, Z: -1})
	return h
}

func TestEvaluateEndpoints(t *testing.T) {
	h := newTestSpline()
	test.That(t, h.Evaluate(0), test.ShouldResemble, r3.Vector{X: 0, Y: 0, Z: 0})
	test.That(t, h.Evaluate(1), test.ShouldResemble, r3.Vector{X: 3, Y: 3, Z: 3})

	// interior control points are hit at t = i/(n-1)
	test.That(t, h.Evaluate(1.0/3), test.ShouldResemble, r3.Vector{X: 2, Y: 1, Z: -1})

	// t is clamped
	test.That(t, h.Evaluate(-5), test.ShouldResemble, h.Evaluate(0))
	test.That(t, h.Evaluate(7), test.ShouldResemble, h.Evaluate(1))

	for n := 2; n < 6; n++ {
		h := NewHermite()
		for i := 0; i < n; i++ {
			h.AddPoint(r3.Vector{X: float64(i), Y: float64(i * i), Z: -float64(i)}, r3.Vector{X: 1, Y: -1, Z: 0.5})
		}
		test.That(t, h.Evaluate(0), test.ShouldResemble, r3.Vector{})
		last, err := h.Point(n - 1)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, h.Evaluate(1), test.ShouldResemble, last)
	}
}

func TestEvaluateTwoPointMidpoint(t *testing.T) {
	h := NewHermite()
	h.AddPoint(r3.Vector{}, r3.Vector{X: 1})
	h.AddPoint(r3.Vector{X: 1}, r3.Vector{X: 1})
	test.That(t, h.Evaluate(0.5), test.ShouldResemble, r3.Vector{X: 0.5})
	test.That(t, h.Velocity(0.5), test.ShouldResemble, r3.Vector{X: 1})
}

func TestDegenerateSpline(t *testing.T) {
	h := NewHermite()
	test.That(t, h.Validate(), test.ShouldEqual, ErrDegenerateCurve)
	for _, tt := range []float64{-1, 0, 0.25, 1, 2, math.Inf(1)} {
		test.That(t, h.Evaluate(tt), test.ShouldResemble, r3.Vector{})
	}

	h.AddPoint(r3.Vector{X: 4, Y: 5, Z: 6}, r3.Vector{X: 1})
	test.That(t, h.Validate(), test.ShouldEqual, ErrDegenerateCurve)
	for _, tt := range []float64{0, 0.5, 1} {
		test.That(t, h.Evaluate(tt), test.ShouldResemble, r3.Vector{})
		test.That(t, h.Velocity(tt), test.ShouldResemble, r3.Vector{})
	}
	test.That(t, h.ArcLength(), test.ShouldEqual, 0)
	test.That(t, h.Sample(3), test.ShouldResemble, []r3.Vector{{}, {}, {}, {}})

	h.AddPoint(r3.Vector{}, r3.Vector{})
	test.That(t, h.Validate(), test.ShouldBeNil)
}

func TestArcLengthStraightLine(t *testing.T) {
	for _, length := range []float64{0.5, 1, 10, 250} {
		h := NewHermite()
		dir := r3.Vector{X: 1, Y: 2, Z: -2}.Normalize()
		h.AddPoint(r3.Vector{X: 3, Y: -1, Z: 2}, dir.Mul(length))
		h.AddPoint(r3.Vector{X: 3, Y: -1, Z: 2}.Add(dir.Mul(length)), dir.Mul(length))
		test.That(t, math.Abs(h.ArcLength()-length)/length, test.ShouldBeLessThan, 1e-3)
	}

	// a slow start and stop does not change the length of a straight path
	h := NewHermite()
	h.AddPoint(r3.Vector{}, r3.Vector{})
	h.AddPoint(r3.Vector{Y: 4}, r3.Vector{})
	test.That(t, h.ArcLength(), test.ShouldAlmostEqual, 4, 1e-9)
	test.That(t, h.ArcLengthN(0), test.ShouldEqual, 0)
}

func TestArcLengthConverges(t *testing.T) {
	h := newTestSpline()
	coarse := h.ArcLengthN(100)
	fine := h.ArcLengthN(10000)
	test.That(t, coarse, test.ShouldBeLessThanOrEqualTo, fine)
	test.That(t, math.Abs(h.ArcLength()-fine)/fine, test.ShouldBeLessThan, 1e-3)
}

func TestVelocityMatchesFiniteDifference(t *testing.T) {
	h := newTestSpline()
	const eps = 1e-7
	for _, tt := range []float64{0.1, 0.4, 0.5, 0.77, 0.9} {
		fd := h.Evaluate(tt + eps).Sub(h.Evaluate(tt - eps)).Mul(1 / (2 * eps))
		v := h.Velocity(tt)
		test.That(t, v.Sub(fd).Norm(), test.ShouldBeLessThan, 1e-5)
	}
	// at a control point the velocity is the tangent scaled to global t
	test.That(t, h.Velocity(0), test.ShouldResemble, r3.Vector{X: 3, Y: 6, Z: 0})
}

func TestSample(t *testing.T) {
	h := newTestSpline()
	samples := h.Sample(6)
	test.That(t, len(samples), test.ShouldEqual, 7)
	test.That(t, samples[0], test.ShouldResemble, h.Evaluate(0))
	test.That(t, samples[6], test.ShouldResemble, h.Evaluate(1))
	test.That(t, samples[2], test.ShouldResemble, h.Evaluate(2.0/6))
	test.That(t, len(h.Sample(0)), test.ShouldEqual, 2)
}

func TestControlPointAccess(t *testing.T) {
	h := newTestSpline()
	test.That(t, h.Size(), test.ShouldEqual, 4)

	test.That(t, h.SetPoint(1, r3.Vector{X: 9}), test.ShouldBeNil)
	test.That(t, h.SetTangent(1, r3.Vector{Y: 9}), test.ShouldBeNil)
	p, err := h.Point(1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p, test.ShouldResemble, r3.Vector{X: 9})
	tan, err := h.Tangent(1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tan, test.ShouldResemble, r3.Vector{Y: 9})
	test.That(t, h.Evaluate(1.0/3), test.ShouldResemble, r3.Vector{X: 9})

	for _, i := range []int{-1, 4, 100} {
		err := h.SetPoint(i, r3.Vector{})
		test.That(t, errors.Is(err, ErrIndexOutOfRange), test.ShouldBeTrue)
		test.That(t, err, test.ShouldBeError, &IndexOutOfRangeError{Index: i, Size: 4})
		test.That(t, errors.Is(h.SetTangent(i, r3.Vector{}), ErrIndexOutOfRange), test.ShouldBeTrue)
		_, err = h.Point(i)
		test.That(t, errors.Is(err, ErrIndexOutOfRange), test.ShouldBeTrue)
		_, err = h.Tangent(i)
		test.That(t, errors.Is(err, ErrIndexOutOfRange), test.ShouldBeTrue)
	}
	test.That(t, h.Size(), test.ShouldEqual, 4)

	// copies do not alias the spline
	points := h.Points()
	points[0] = r3.Vector{X: 100}
	test.That(t, h.Evaluate(0), test.ShouldResemble, r3.Vector{})
	test.That(t, len(h.Tangents()), test.ShouldEqual, 4)
}

func TestNewHermiteFromPoints(t *testing.T) {
	points := []r3.Vector{{}, {X: 1}}
	h, err := NewHermiteFromPoints(points, []r3.Vector{{X: 1}, {X: 1}})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, h.Evaluate(0.5), test.ShouldResemble, r3.Vector{X: 0.5})

	_, err = NewHermiteFromPoints(points, []r3.Vector{{X: 1}})
	test.That(t, errors.Is(err, ErrIndexOutOfRange), test.ShouldBeTrue)
}

func TestFitCatmullRom(t *testing.T) {
	points := []r3.Vector{{}, {X: 1, Y: 1}, {X: 2}, {X: 4, Z: 1}}
	h := FitCatmullRom(points)
	test.That(t, h.Points(), test.ShouldResemble, points)
	test.That(t, h.Tangents(), test.ShouldResemble, []r3.Vector{
		{X: 1, Y: 1},
		{X: 1},
		{X: 1.5, Y: -0.5, Z: 0.5},
		{X: 2, Z: 1},
	})
	for i, p := range points {
		test.That(t, h.Evaluate(float64(i)/3).Sub(p).Norm(), test.ShouldBeLessThan, 1e-12)
	}

	single := FitCatmullRom([]r3.Vector{{X: 1}})
	test.That(t, single.Tangents(), test.ShouldResemble, []r3.Vector{{}})
	test.That(t, FitCatmullRom(nil).Size(), test.ShouldEqual, 0)
}
