package cli

import (
	"image/color"
	"os"
	"strconv"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"go.viam.com/articulate/spline"
)

func readSpline(c *cli.Context) (*spline.Hermite, error) {
	//nolint:gosec
	f, err := os.Open(c.Path(fileFlag))
	if err != nil {
		return nil, err
	}
	defer func() {
		//nolint:errcheck
		f.Close()
	}()
	return spline.Read(f)
}

// SplineEvalAction is the corresponding Action for 'spline eval'.
func SplineEvalAction(c *cli.Context) error {
	curve, err := readSpline(c)
	if err != nil {
		return err
	}
	if c.Args().Len() == 0 {
		return errors.New("at least one parameter t is required")
	}
	for _, arg := range c.Args().Slice() {
		t, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return errors.Wrapf(err, "invalid parameter %q", arg)
		}
		printf(c.App.Writer, "%v: %s", t, formatVector(curve.Evaluate(t)))
	}
	return nil
}

// SplineLengthAction is the corresponding Action for 'spline length'.
func SplineLengthAction(c *cli.Context) error {
	curve, err := readSpline(c)
	if err != nil {
		return err
	}
	printf(c.App.Writer, "%.6f", curve.ArcLength())
	return nil
}

// SplineSampleAction is the corresponding Action for 'spline sample'.
func SplineSampleAction(c *cli.Context) error {
	curve, err := readSpline(c)
	if err != nil {
		return err
	}
	if err := curve.Validate(); err != nil {
		return err
	}
	for _, p := range curve.Sample(c.Int(samplesFlag)) {
		printf(c.App.Writer, "%s", formatVector(p))
	}
	return nil
}

// projection returns the two coordinates of a point seen in the named plane.
func projection(view string) (func(r3.Vector) (float64, float64), error) {
	switch view {
	case "xy":
		return func(v r3.Vector) (float64, float64) { return v.X, v.Y }, nil
	case "xz":
		return func(v r3.Vector) (float64, float64) { return v.X, v.Z }, nil
	case "yz":
		return func(v r3.Vector) (float64, float64) { return v.Y, v.Z }, nil
	default:
		return nil, errors.Errorf("unknown view %q, expected xy, xz or yz", view)
	}
}

func projectAll(points []r3.Vector, project func(r3.Vector) (float64, float64)) plotter.XYs {
	xys := make(plotter.XYs, len(points))
	for i, p := range points {
		xys[i].X, xys[i].Y = project(p)
	}
	return xys
}

// SplinePlotAction is the corresponding Action for 'spline plot'.
func SplinePlotAction(c *cli.Context) error {
	curve, err := readSpline(c)
	if err != nil {
		return err
	}
	if err := curve.Validate(); err != nil {
		return err
	}
	view := c.String(viewFlag)
	project, err := projection(view)
	if err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = c.Path(fileFlag)
	p.X.Label.Text = view[:1]
	p.Y.Label.Text = view[1:]
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(projectAll(curve.Sample(c.Int(samplesFlag)), project))
	if err != nil {
		return err
	}
	line.Color = color.RGBA{B: 255, A: 255}

	controls, err := plotter.NewScatter(projectAll(curve.Points(), project))
	if err != nil {
		return err
	}
	controls.GlyphStyle.Color = color.RGBA{R: 255, A: 255}
	controls.GlyphStyle.Shape = draw.CircleGlyph{}

	p.Add(line, controls)
	p.Legend.Add("curve", line)
	p.Legend.Add("control points", controls)

	if err := p.Save(6*vg.Inch, 6*vg.Inch, c.Path(outFlag)); err != nil {
		return errors.Wrap(err, "failed to save plot")
	}
	printf(c.App.Writer, "wrote %s", c.Path(outFlag))
	return nil
}

// SplineFitAction is the corresponding Action for 'spline fit'.
func SplineFitAction(c *cli.Context) error {
	points, err := parseVectors(c.String(pointsFlag))
	if err != nil {
		return err
	}
	curve := spline.FitCatmullRom(points)
	if err := curve.Validate(); err != nil {
		return err
	}
	if !c.IsSet(outFlag) {
		_, err := curve.WriteTo(c.App.Writer)
		return err
	}
	//nolint:gosec
	f, err := os.Create(c.Path(outFlag))
	if err != nil {
		return err
	}
	if _, err := curve.WriteTo(f); err != nil {
		//nolint:errcheck
		f.Close()
		return err
	}
	return f.Close()
}
