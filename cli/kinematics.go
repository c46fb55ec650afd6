package cli

import (
	"encoding/json"
	"io"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/articulate/config"
	"go.viam.com/articulate/logging"
	"go.viam.com/articulate/motionplan"
	"go.viam.com/articulate/motionplan/ik"
	"go.viam.com/articulate/referenceframe"
	"go.viam.com/articulate/spatialmath"
)

// ForwardKinematicsAction is the corresponding Action for 'fk'.
func ForwardKinematicsAction(c *cli.Context) error {
	chain, err := config.LoadChainFile(c.Path(chainFlag))
	if err != nil {
		return err
	}
	theta := make([]float64, chain.DoF())
	if c.IsSet(thetaFlag) {
		if theta, err = parseFloats(c.String(thetaFlag)); err != nil {
			return err
		}
	}
	if err := chain.Apply(theta); err != nil {
		return err
	}
	printPose(c.App.Writer, chain)
	return nil
}

func printPose(w io.Writer, chain *referenceframe.Chain) {
	snap := chain.Snapshot()
	layout := chain.Layout()
	angles := chain.JointAngles()

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("%s pose", chain.Name())
	t.AppendHeader(table.Row{"Joint", "Angles", "Body", "Shape", "Position"})
	for _, jp := range snap.Joints {
		var jointAngles interface{} = "-"
		if layout[jp.Joint].Len() > 0 {
			jointAngles = angles[jp.Joint]
		}
		t.AppendRow(table.Row{
			jp.Joint, jointAngles, jp.Body, jp.Shape, formatVector(spatialmath.Translation(jp.World)),
		})
	}
	t.AppendSeparator()
	for _, name := range chain.EndEffectorNames() {
		t.AppendRow(table.Row{"", "", name, "end effector", formatVector(snap.Effectors[name])})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}

// SolveAction is the corresponding Action for 'solve'.
func SolveAction(c *cli.Context) error {
	cfg, err := solveConfig(c)
	if err != nil {
		return err
	}
	target, ok := cfg.TargetPosition()
	if !ok {
		return errors.New("a target is required, use --target or set target in the config")
	}
	logger := newLogger(c)
	chain, err := cfg.BuildChain()
	if err != nil {
		return err
	}
	solver, err := newSolver(c, cfg, logger)
	if err != nil {
		return err
	}

	res, err := solver.Solve(c.Context, chain, cfg.Effector, target)
	if err != nil {
		return err
	}
	if res.Converged {
		printf(c.App.Writer, "converged after %d iterations, residual %.6f", res.Iterations, res.Residual)
	} else {
		warningf(c.App.Writer, "did not converge after %d iterations, residual %.6f", res.Iterations, res.Residual)
	}
	printPose(c.App.Writer, chain)
	return nil
}

// solveConfig builds a config from --config, then overrides it with any flags given.
func solveConfig(c *cli.Context) (*config.Config, error) {
	cfg := &config.Config{Solver: ik.NewDefaultOptions()}
	if c.IsSet(configFlag) {
		if c.IsSet(chainFlag) {
			return nil, errors.Errorf("only one of --%s and --%s may be given", configFlag, chainFlag)
		}
		var err error
		if cfg, err = config.Read(c.Path(configFlag)); err != nil {
			return nil, err
		}
	} else {
		cfg.ChainFile = c.Path(chainFlag)
	}
	if c.IsSet(effectorFlag) {
		cfg.Effector = c.String(effectorFlag)
	}
	if c.IsSet(targetFlag) {
		target, err := parseVector(c.String(targetFlag))
		if err != nil {
			return nil, errors.Wrapf(err, "invalid --%s", targetFlag)
		}
		cfg.Target = spatialmath.NewTranslationConfig(target)
	}
	applySolverFlags(c, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applySolverFlags overrides the config with the solver flags that were given, zeros included.
func applySolverFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet(iterationsFlag) {
		cfg.Solver.MaxIterations = c.Int(iterationsFlag)
	}
	if c.IsSet(toleranceFlag) {
		cfg.Solver.Tolerance = c.Float64(toleranceFlag)
	}
	if c.IsSet(dampingFlag) {
		cfg.Solver.Damping = c.Float64(dampingFlag)
	}
	if c.IsSet(solversFlag) {
		cfg.Solvers = c.Int(solversFlag)
	}
	if c.IsSet(analyticFlag) {
		cfg.Solver.Analytic = c.Bool(analyticFlag)
	}
}

func newSolver(c *cli.Context, cfg *config.Config, logger logging.Logger) (ik.Solver, error) {
	if c.Bool(nloptFlag) {
		if cfg.Solvers > 1 {
			return nil, errors.Errorf("--%s runs a single solver", nloptFlag)
		}
		return ik.NewNloptIK(logger, cfg.Solver)
	}
	return cfg.NewSolver(logger)
}

// FollowAction is the corresponding Action for 'follow'.
func FollowAction(c *cli.Context) error {
	cfg, err := config.Read(c.Path(configFlag))
	if err != nil {
		return err
	}
	if cfg.Trajectory == nil {
		return errors.Errorf("config %q has no trajectory", c.Path(configFlag))
	}
	if c.IsSet(samplesFlag) {
		cfg.Trajectory.Samples = c.Int(samplesFlag)
	}
	applySolverFlags(c, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(c)
	chain, err := cfg.BuildChain()
	if err != nil {
		return err
	}
	curve, err := cfg.LoadSpline()
	if err != nil {
		return err
	}
	solver, err := newSolver(c, cfg, logger)
	if err != nil {
		return err
	}
	traj, err := motionplan.FollowSpline(c.Context, solver, chain, cfg.Effector, curve, cfg.Samples(), logger)
	if err != nil {
		return err
	}
	summary, err := traj.Summary()
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(c.App.Writer)
	t.AppendHeader(table.Row{"#", "Waypoint", "Residual", "Iterations", "Converged"})
	for i, res := range traj.Results {
		t.AppendRow(table.Row{i, formatVector(traj.Waypoints[i]), res.Residual, res.Iterations, res.Converged})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
	printSummary(c.App.Writer, summary)
	return nil
}

func printSummary(w io.Writer, summary motionplan.Summary) {
	printf(w, "converged %d/%d", summary.Converged, summary.Waypoints)
	printf(w, "residual mean %.6f max %.6f p95 %.6f", summary.MeanResidual, summary.MaxResidual, summary.P95Residual)
	printf(w, "iterations mean %.1f", summary.MeanIterations)
}

// SchemaAction is the corresponding Action for 'schema'.
func SchemaAction(c *cli.Context) error {
	data, err := json.MarshalIndent(config.Schema(), "", "  ")
	if err != nil {
		return err
	}
	printf(c.App.Writer, "%s", data)
	return nil
}

// BenchAction is the corresponding Action for 'bench'. Targets are end effector positions at uniformly
// random theta in [-π, π], so every target is reachable; each solve starts from zero theta.
func BenchAction(c *cli.Context) error {
	cfg := &config.Config{
		ChainFile: c.Path(chainFlag),
		Effector:  c.String(effectorFlag),
		Target:    &spatialmath.TranslationConfig{},
		Solver:    ik.NewDefaultOptions(),
	}
	applySolverFlags(c, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	n := c.Int(countFlag)
	if n < 1 {
		return errors.Errorf("--%s must be at least 1, got %d", countFlag, n)
	}

	logger := newLogger(c)
	chain, err := cfg.BuildChain()
	if err != nil {
		return err
	}
	solver, err := newSolver(c, cfg, logger)
	if err != nil {
		return err
	}

	//nolint:gosec
	rng := rand.New(rand.NewSource(c.Int64(seedFlag)))
	start := make([]float64, chain.DoF())
	results := make([]*ik.Result, 0, n)
	durations := make(stats.Float64Data, 0, n)
	for i := 0; i < n; i++ {
		posed := chain.Clone()
		theta := make([]float64, posed.DoF())
		for j := range theta {
			theta[j] = (rng.Float64()*2 - 1) * math.Pi
		}
		if err := posed.Apply(theta); err != nil {
			return err
		}
		target, err := posed.EndEffectorPosition(cfg.Effector)
		if err != nil {
			return err
		}
		if err := chain.Apply(start); err != nil {
			return err
		}

		begin := time.Now()
		res, err := solver.Solve(c.Context, chain, cfg.Effector, target)
		if err != nil {
			return errors.Wrapf(err, "target %d", i)
		}
		durations = append(durations, float64(time.Since(begin).Microseconds())/1000)
		results = append(results, res)
		logger.Debugw("bench target solved", "target", i, "residual", res.Residual, "converged", res.Converged)
	}

	summary, err := motionplan.Summarize(results)
	if err != nil {
		return err
	}
	printSummary(c.App.Writer, summary)
	sort.Float64s(durations)
	mean, err := durations.Mean()
	if err != nil {
		return err
	}
	median, err := durations.Median()
	if err != nil {
		return err
	}
	printf(c.App.Writer, "solve time mean %.3fms median %.3fms max %.3fms", mean, median, durations[len(durations)-1])
	return nil
}
