package spline

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestSerialize(t *testing.T) {
	h := NewHermite()
	h.AddPoint(r3.Vector{X: 0, Y: 1.5, Z: -2}, r3.Vector{X: 1, Y: 0, Z: 0})
	h.AddPoint(r3.Vector{X: 1e-20, Y: 3, Z: 4}, r3.Vector{X: 0.1, Y: -0.2, Z: 123456789})
	test.That(t, h.Serialize(), test.ShouldEqual, "2\n0 1.5 -2 1 0 0\n1e-20 3 4 0.1 -0.2 1.23456789e+08\n")

	test.That(t, NewHermite().Serialize(), test.ShouldEqual, "0\n")

	var buf bytes.Buffer
	n, err := h.WriteTo(&buf)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, n, test.ShouldEqual, int64(buf.Len()))
	test.That(t, buf.String(), test.ShouldEqual, h.Serialize())
}

func TestParseRoundTrip(t *testing.T) {
	for _, h := range []*Hermite{
		NewHermite(),
		newTestSpline(),
		FitCatmullRom([]r3.Vector{
			{X: math.Pi, Y: math.E, Z: -math.Sqrt2},
			{X: 1.0 / 3, Y: 2.0 / 3, Z: 1e300},
			{X: -5e-324, Y: math.MaxFloat64, Z: 0.1},
		}),
	} {
		parsed, err := Parse(h.Serialize())
		test.That(t, err, test.ShouldBeNil)
		test.That(t, parsed.Points(), test.ShouldResemble, h.Points())
		test.That(t, parsed.Tangents(), test.ShouldResemble, h.Tangents())
		test.That(t, parsed.Serialize(), test.ShouldEqual, h.Serialize())
	}
}

func TestParseWhitespace(t *testing.T) {
	text := "\n  2 \n\n0\t0  0 1 0 0\r\n\n 1 0 0   1 0 0\n\n"
	h, err := Parse(text)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, h.Size(), test.ShouldEqual, 2)
	test.That(t, h.Evaluate(0.5), test.ShouldResemble, r3.Vector{X: 0.5})

	fromReader, err := Read(strings.NewReader(text))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, fromReader.Points(), test.ShouldResemble, h.Points())
}

func TestParseErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		text string
		msg  string
	}{
		{"empty", "", "missing control point count"},
		{"blank", "\n\n  \n", "missing control point count"},
		{"count not a number", "two\n", `invalid control point count "two"`},
		{"negative count", "-1\n", `invalid control point count "-1"`},
		{"count with extra fields", "2 3\n", "expected a control point count"},
		{"too few points", "2\n0 0 0 1 0 0\n", "expected 2 control points, got 1"},
		{"too many points", "1\n0 0 0 1 0 0\n1 0 0 1 0 0\n", "line 3: more than 1 control points"},
		{"short line", "1\n0 0 0 1 0\n", "line 2: expected 6 fields, got 5"},
		{"long line", "1\n0 0 0 1 0 0 0\n", "expected 6 fields, got 7"},
		{"bad float", "1\n0 0 zero 1 0 0\n", `invalid number "zero"`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.text)
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, errors.Is(err, ErrMalformedSpline), test.ShouldBeTrue)
			test.That(t, err.Error(), test.ShouldContainSubstring, tc.msg)
		})
	}
}
