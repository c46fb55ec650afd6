// Package config defines the articulate configuration file: the chain to pose, the solver to pose it
// with and the target or trajectory to reach.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/articulate/logging"
	"go.viam.com/articulate/motionplan/ik"
	"go.viam.com/articulate/referenceframe"
	"go.viam.com/articulate/referenceframe/urdf"
	"go.viam.com/articulate/spatialmath"
	"go.viam.com/articulate/spline"
)

// DefaultSamples is the number of trajectory segments followed when none are configured.
const DefaultSamples = 50

// Config describes a single solve or trajectory run.
type Config struct {
	// Exactly one of Chain and ChainFile is set. ChainFile is relative to the config file.
	Chain     *referenceframe.ChainConfigJSON `json:"chain,omitempty"`
	ChainFile string                          `json:"chain_file,omitempty"`

	Solver ik.Options `json:"solver"`
	// Number of parallel solvers; more than one runs a combined solver
	Solvers  int    `json:"solvers,omitempty"`
	Effector string `json:"effector"`

	Target     *spatialmath.TranslationConfig `json:"target,omitempty"`
	Trajectory *TrajectoryConfig              `json:"trajectory,omitempty"`

	// The path the config was read from, if any.
	ConfigFilePath string `json:"-"`
}

// TrajectoryConfig names a serialized spline to follow and how finely to sample it.
type TrajectoryConfig struct {
	// Relative to the config file.
	Spline  string `json:"spline"`
	Samples int    `json:"samples,omitempty"`
}

// Validate returns every problem with the config.
func (c *Config) Validate() error {
	var err error
	switch {
	case c.Chain == nil && c.ChainFile == "":
		err = multierr.Append(err, errors.New("one of chain or chain_file is required"))
	case c.Chain != nil && c.ChainFile != "":
		err = multierr.Append(err, errors.New("only one of chain or chain_file may be set"))
	}
	if c.Effector == "" {
		err = multierr.Append(err, errors.New("effector is required"))
	}
	if c.Solvers < 0 {
		err = multierr.Append(err, errors.Errorf("solvers must not be negative, got %d", c.Solvers))
	}
	if c.Target == nil && c.Trajectory == nil {
		err = multierr.Append(err, errors.New("one of target or trajectory is required"))
	}
	if c.Trajectory != nil {
		if c.Trajectory.Spline == "" {
			err = multierr.Append(err, errors.New("trajectory.spline is required"))
		}
		if c.Trajectory.Samples < 0 {
			err = multierr.Append(err, errors.Errorf("trajectory.samples must not be negative, got %d", c.Trajectory.Samples))
		}
	}
	if solverErr := c.Solver.Validate(); solverErr != nil {
		err = multierr.Append(err, errors.Wrap(solverErr, "solver"))
	}
	return err
}

// resolve returns path relative to the directory of the config file.
func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) || c.ConfigFilePath == "" {
		return path
	}
	return filepath.Join(filepath.Dir(c.ConfigFilePath), path)
}

// BuildChain returns the configured chain and checks that it carries the configured end effector.
func (c *Config) BuildChain() (*referenceframe.Chain, error) {
	var chain *referenceframe.Chain
	var err error
	if c.ChainFile != "" {
		chain, err = LoadChainFile(c.resolve(c.ChainFile))
	} else if c.Chain != nil {
		chain, err = c.Chain.ParseConfig("")
	} else {
		return nil, referenceframe.ErrNoChainInformation
	}
	if err != nil {
		return nil, err
	}
	if _, err := chain.EndEffector(c.Effector); err != nil {
		return nil, err
	}
	return chain, nil
}

// LoadChainFile reads a chain from a JSON chain file or, by extension, a URDF file.
func LoadChainFile(path string) (*referenceframe.Chain, error) {
	if strings.EqualFold(strings.TrimPrefix(filepath.Ext(path), "."), urdf.Extension) {
		return urdf.ParseChainXMLFile(path, "")
	}
	return referenceframe.ParseChainJSONFile(path, "")
}

// TargetPosition returns the configured target.
func (c *Config) TargetPosition() (r3.Vector, bool) {
	if c.Target == nil {
		return r3.Vector{}, false
	}
	return c.Target.ParseConfig(), true
}

// LoadSpline reads the trajectory spline.
func (c *Config) LoadSpline() (*spline.Hermite, error) {
	if c.Trajectory == nil {
		return nil, errors.New("no trajectory configured")
	}
	//nolint:gosec
	f, err := os.Open(c.resolve(c.Trajectory.Spline))
	if err != nil {
		return nil, errors.Wrap(err, "failed to open spline file")
	}
	defer func() {
		//nolint:errcheck
		f.Close()
	}()
	return spline.Read(f)
}

// Samples returns the number of trajectory segments to follow.
func (c *Config) Samples() int {
	if c.Trajectory == nil || c.Trajectory.Samples == 0 {
		return DefaultSamples
	}
	return c.Trajectory.Samples
}

// NewSolver returns the configured solver.
func (c *Config) NewSolver(logger logging.Logger) (ik.Solver, error) {
	if c.Solvers > 1 {
		return ik.NewCombinedIK(logger, c.Solvers, c.Solver)
	}
	return ik.NewDampedLeastSquares(logger, c.Solver)
}
