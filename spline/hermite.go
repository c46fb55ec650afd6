// Package spline implements piecewise cubic Hermite splines through 3D control points, their arc length
// and a plain text form for storing them.
package spline

import (
	"math"

	"github.com/golang/geo/r3"

	"go.viam.com/articulate/utils"
)

// DefaultArcLengthSteps is the number of polyline segments ArcLength sums over.
const DefaultArcLengthSteps = 1000

// Hermite is a piecewise cubic Hermite spline. Control point i carries a position and the tangent the
// curve leaves it with. The whole curve is parametrized by t in [0, 1], each of the Size()-1 segments
// covering an equal share of t.
type Hermite struct {
	points   []r3.Vector
	tangents []r3.Vector
}

// NewHermite returns a spline without control points.
func NewHermite() *Hermite {
	return &Hermite{}
}

// NewHermiteFromPoints returns a spline through points with the given tangents.
func NewHermiteFromPoints(points, tangents []r3.Vector) (*Hermite, error) {
	if len(points) != len(tangents) {
		return nil, &IndexOutOfRangeError{Index: len(tangents), Size: len(points)}
	}
	h := NewHermite()
	for i := range points {
		h.AddPoint(points[i], tangents[i])
	}
	return h, nil
}

// FitCatmullRom returns a spline through points with Catmull-Rom tangents: half the chord between the
// neighbors of each interior point, and the one-sided difference at either end.
func FitCatmullRom(points []r3.Vector) *Hermite {
	h := NewHermite()
	n := len(points)
	for i, p := range points {
		var tangent r3.Vector
		switch {
		case n < 2:
		case i == 0:
			tangent = points[1].Sub(points[0])
		case i == n-1:
			tangent = points[n-1].Sub(points[n-2])
		default:
			tangent = points[i+1].Sub(points[i-1]).Mul(0.5)
		}
		h.AddPoint(p, tangent)
	}
	return h
}

// Size returns the number of control points.
func (h *Hermite) Size() int {
	return len(h.points)
}

// AddPoint appends a control point.
func (h *Hermite) AddPoint(position, tangent r3.Vector) {
	h.points = append(h.points, position)
	h.tangents = append(h.tangents, tangent)
}

func (h *Hermite) checkIndex(i int) error {
	if i < 0 || i >= len(h.points) {
		return &IndexOutOfRangeError{Index: i, Size: len(h.points)}
	}
	return nil
}

// SetPoint replaces the position of control point i.
func (h *Hermite) SetPoint(i int, position r3.Vector) error {
	if err := h.checkIndex(i); err != nil {
		return err
	}
	h.points[i] = position
	return nil
}

// SetTangent replaces the tangent of control point i.
func (h *Hermite) SetTangent(i int, tangent r3.Vector) error {
	if err := h.checkIndex(i); err != nil {
		return err
	}
	h.tangents[i] = tangent
	return nil
}

// Point returns the position of control point i.
func (h *Hermite) Point(i int) (r3.Vector, error) {
	if err := h.checkIndex(i); err != nil {
		return r3.Vector{}, err
	}
	return h.points[i], nil
}

// Tangent returns the tangent of control point i.
func (h *Hermite) Tangent(i int) (r3.Vector, error) {
	if err := h.checkIndex(i); err != nil {
		return r3.Vector{}, err
	}
	return h.tangents[i], nil
}

// Points returns a copy of the control point positions.
func (h *Hermite) Points() []r3.Vector {
	return append([]r3.Vector{}, h.points...)
}

// Tangents returns a copy of the control point tangents.
func (h *Hermite) Tangents() []r3.Vector {
	return append([]r3.Vector{}, h.tangents...)
}

// Validate returns ErrDegenerateCurve if the spline has fewer than two control points.
func (h *Hermite) Validate() error {
	if len(h.points) < 2 {
		return ErrDegenerateCurve
	}
	return nil
}

// segment maps global t to a segment index a and local parameter u in [0, 1].
func (h *Hermite) segment(t float64) (int, float64) {
	n := len(h.points)
	s := float64(n-1) * utils.Clamp(t, 0, 1)
	a := utils.ClampInt(int(math.Floor(s)), 0, n-2)
	return a, s - float64(a)
}

// Evaluate returns the position of the curve at t, clamped to [0, 1]. A spline with fewer than two
// control points is not a curve and evaluates to the origin everywhere.
func (h *Hermite) Evaluate(t float64) r3.Vector {
	if len(h.points) < 2 {
		return r3.Vector{}
	}
	a, u := h.segment(t)
	u2 := u * u
	u3 := u2 * u
	h00 := 2*u3 - 3*u2 + 1
	h10 := u3 - 2*u2 + u
	h01 := -2*u3 + 3*u2
	h11 := u3 - u2
	return h.blend(a, h00, h10, h01, h11)
}

// Velocity returns the derivative of the curve with respect to t.
func (h *Hermite) Velocity(t float64) r3.Vector {
	if len(h.points) < 2 {
		return r3.Vector{}
	}
	a, u := h.segment(t)
	u2 := u * u
	d00 := 6*u2 - 6*u
	d10 := 3*u2 - 4*u + 1
	d01 := -6*u2 + 6*u
	d11 := 3*u2 - 2*u
	return h.blend(a, d00, d10, d01, d11).Mul(float64(len(h.points) - 1))
}

func (h *Hermite) blend(a int, w00, w10, w01, w11 float64) r3.Vector {
	b := a + 1
	return h.points[a].Mul(w00).
		Add(h.tangents[a].Mul(w10)).
		Add(h.points[b].Mul(w01)).
		Add(h.tangents[b].Mul(w11))
}

// ArcLength approximates the length of the curve by a polyline of DefaultArcLengthSteps segments.
func (h *Hermite) ArcLength() float64 {
	return h.ArcLengthN(DefaultArcLengthSteps)
}

// ArcLengthN approximates the length of the curve by a polyline of steps segments.
func (h *Hermite) ArcLengthN(steps int) float64 {
	if steps < 1 {
		return 0
	}
	length := 0.
	prev := h.Evaluate(0)
	for i := 1; i <= steps; i++ {
		curr := h.Evaluate(float64(i) / float64(steps))
		length += curr.Sub(prev).Norm()
		prev = curr
	}
	return length
}

// Sample returns n+1 points of the curve at t = i/n, a polyline from the first to the last control point.
func (h *Hermite) Sample(n int) []r3.Vector {
	if n < 1 {
		n = 1
	}
	out := make([]r3.Vector, 0, n+1)
	for i := 0; i <= n; i++ {
		out = append(out, h.Evaluate(float64(i)/float64(n)))
	}
	return out
}
