package spline

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// Serialize returns the text form of the spline: the number of control points on the first line, then
// one line per control point holding "px py pz tx ty tz". Floats use the shortest representation that
// parses back to the same value.
func (h *Hermite) Serialize() string {
	var buf bytes.Buffer
	//nolint:errcheck
	h.WriteTo(&buf)
	return buf.String()
}

// WriteTo writes the text form of the spline to w.
func (h *Hermite) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var written int64
	write := func(s string) error {
		n, err := bw.WriteString(s)
		written += int64(n)
		return err
	}
	if err := write(strconv.Itoa(len(h.points)) + "\n"); err != nil {
		return written, err
	}
	for i := range h.points {
		p, t := h.points[i], h.tangents[i]
		fields := []string{
			formatFloat(p.X), formatFloat(p.Y), formatFloat(p.Z),
			formatFloat(t.X), formatFloat(t.Y), formatFloat(t.Z),
		}
		if err := write(strings.Join(fields, " ") + "\n"); err != nil {
			return written, err
		}
	}
	return written, bw.Flush()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Parse reads a spline from its text form. Blank lines are ignored and fields may be separated by any
// whitespace.
func Parse(text string) (*Hermite, error) {
	return Read(strings.NewReader(text))
}

// Read reads a spline in text form from r.
func Read(r io.Reader) (*Hermite, error) {
	scanner := bufio.NewScanner(r)
	h := NewHermite()
	count := -1
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if count < 0 {
			if len(fields) != 1 {
				return nil, malformed(line, "expected a control point count, got %d fields", len(fields))
			}
			n, err := strconv.Atoi(fields[0])
			if err != nil || n < 0 {
				return nil, malformed(line, "invalid control point count %q", fields[0])
			}
			count = n
			continue
		}
		if h.Size() == count {
			return nil, malformed(line, "more than %d control points", count)
		}
		if len(fields) != 6 {
			return nil, malformed(line, "expected 6 fields, got %d", len(fields))
		}
		var values [6]float64
		for i, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, malformed(line, "invalid number %q", field)
			}
			values[i] = v
		}
		h.AddPoint(
			r3.Vector{X: values[0], Y: values[1], Z: values[2]},
			r3.Vector{X: values[3], Y: values[4], Z: values[5]},
		)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read spline")
	}
	if count < 0 {
		return nil, malformed(line, "missing control point count")
	}
	if h.Size() != count {
		return nil, malformed(line, "expected %d control points, got %d", count, h.Size())
	}
	return h, nil
}
