package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/articulate/logging"
)

// printf prints a message with no prefix.
func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}

// warningf prints a message prefixed with "Warning: ".
func warningf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, "Warning: "+format+"\n", a...)
}

// newLogger returns a logger writing to the app's error writer, at debug level with --debug.
func newLogger(c *cli.Context) logging.Logger {
	logger := logging.NewBlankLogger("articulate")
	logger.AddAppender(logging.NewWriterAppender(c.App.ErrWriter))
	if !c.Bool(debugFlag) {
		logger.SetLevel(logging.INFO)
	}
	return logger
}

// parseFloats parses a comma separated list of numbers. An empty string is an empty list.
func parseFloats(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return []float64{}, nil
	}
	fields := strings.Split(s, ",")
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid number %q", f)
		}
		out = append(out, v)
	}
	return out, nil
}

// parseVector parses "x,y,z".
func parseVector(s string) (r3.Vector, error) {
	values, err := parseFloats(s)
	if err != nil {
		return r3.Vector{}, err
	}
	if len(values) != 3 {
		return r3.Vector{}, errors.Errorf("expected x,y,z, got %q", s)
	}
	return r3.Vector{X: values[0], Y: values[1], Z: values[2]}, nil
}

// parseVectors parses "x,y,z;x,y,z;...".
func parseVectors(s string) ([]r3.Vector, error) {
	var out []r3.Vector
	for i, part := range strings.Split(s, ";") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		v, err := parseVector(part)
		if err != nil {
			return nil, errors.Wrapf(err, "point %d", i)
		}
		out = append(out, v)
	}
	return out, nil
}

func formatVector(v r3.Vector) string {
	return fmt.Sprintf("%.4f, %.4f, %.4f", v.X, v.Y, v.Z)
}
