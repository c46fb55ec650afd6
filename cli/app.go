// Package cli contains the articulate command line tool.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
)

// CLI flags.
const (
	debugFlag = "debug"

	configFlag   = "config"
	chainFlag    = "chain"
	effectorFlag = "effector"
	targetFlag   = "target"
	thetaFlag    = "theta"

	iterationsFlag = "iterations"
	toleranceFlag  = "tolerance"
	dampingFlag    = "damping"
	solversFlag    = "solvers"
	analyticFlag   = "analytic"
	nloptFlag      = "nlopt"

	fileFlag    = "file"
	outFlag     = "out"
	pointsFlag  = "points"
	samplesFlag = "samples"
	viewFlag    = "view"

	countFlag = "n"
	seedFlag  = "seed"
)

func solverFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  iterationsFlag,
			Usage: "max damped steps per solve",
		},
		&cli.Float64Flag{
			Name:  toleranceFlag,
			Usage: "distance to the target below which a solve has converged",
		},
		&cli.Float64Flag{
			Name:  dampingFlag,
			Usage: "damping factor of the least squares step",
		},
		&cli.IntFlag{
			Name:  solversFlag,
			Usage: "number of randomly seeded solvers to run in parallel",
		},
		&cli.BoolFlag{
			Name:  analyticFlag,
			Usage: "use the closed form jacobian",
		},
		&cli.BoolFlag{
			Name:  nloptFlag,
			Usage: "minimize with nlopt SLSQP instead of damped least squares",
		},
	}
}

var app = &cli.App{
	Name:            "articulate",
	Usage:           "pose and solve articulated kinematic chains",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    debugFlag,
			Aliases: []string{"vvv"},
			Usage:   "enable debug logging",
		},
	},
	Commands: []*cli.Command{
		{
			Name:      "fk",
			Usage:     "print the pose of every joint of a chain",
			UsageText: "articulate fk --chain <file> [--theta a,b,c...]",
			Flags: []cli.Flag{
				&cli.PathFlag{
					Name:     chainFlag,
					Required: true,
					Usage:    "chain json or urdf `FILE`",
				},
				&cli.StringFlag{
					Name:  thetaFlag,
					Usage: "comma separated joint angles in radians, zero if unset",
				},
			},
			Action: ForwardKinematicsAction,
		},
		{
			Name:  "solve",
			Usage: "move an end effector to a target position",
			UsageText: "articulate solve --config <file>\n" +
				"articulate solve --chain <file> --effector <name> --target x,y,z [solver options]",
			Flags: append([]cli.Flag{
				&cli.PathFlag{
					Name:    configFlag,
					Aliases: []string{"c"},
					Usage:   "load configuration from `FILE`",
				},
				&cli.PathFlag{
					Name:  chainFlag,
					Usage: "chain json or urdf `FILE`",
				},
				&cli.StringFlag{
					Name:  effectorFlag,
					Usage: "end effector to move",
				},
				&cli.StringFlag{
					Name:  targetFlag,
					Usage: "target position as x,y,z",
				},
			}, solverFlags()...),
			Action: SolveAction,
		},
		{
			Name:      "follow",
			Usage:     "move an end effector along a spline",
			UsageText: "articulate follow --config <file> [solver options]",
			Flags: append([]cli.Flag{
				&cli.PathFlag{
					Name:     configFlag,
					Aliases:  []string{"c"},
					Required: true,
					Usage:    "load configuration from `FILE`",
				},
				&cli.IntFlag{
					Name:  samplesFlag,
					Usage: "number of spline segments to follow",
				},
			}, solverFlags()...),
			Action: FollowAction,
		},
		{
			Name:            "spline",
			Usage:           "work with hermite splines",
			HideHelpCommand: true,
			Subcommands: []*cli.Command{
				{
					Name:      "eval",
					Usage:     "evaluate a spline at the given parameters",
					UsageText: "articulate spline eval --file <file> t [t...]",
					Flags:     []cli.Flag{splineFileFlag()},
					Action:    SplineEvalAction,
				},
				{
					Name:   "length",
					Usage:  "print the arc length of a spline",
					Flags:  []cli.Flag{splineFileFlag()},
					Action: SplineLengthAction,
				},
				{
					Name:  "sample",
					Usage: "print evenly spaced points of a spline",
					Flags: []cli.Flag{
						splineFileFlag(),
						&cli.IntFlag{
							Name:  samplesFlag,
							Value: 10,
							Usage: "number of segments",
						},
					},
					Action: SplineSampleAction,
				},
				{
					Name:  "plot",
					Usage: "plot a spline and its control points to an image",
					Flags: []cli.Flag{
						splineFileFlag(),
						&cli.PathFlag{
							Name:     outFlag,
							Required: true,
							Usage:    "output image `FILE`; the extension picks the format",
						},
						&cli.StringFlag{
							Name:  viewFlag,
							Value: "xy",
							Usage: "projection plane: xy, xz or yz",
						},
						&cli.IntFlag{
							Name:  samplesFlag,
							Value: 100,
							Usage: "number of segments drawn",
						},
					},
					Action: SplinePlotAction,
				},
				{
					Name:      "fit",
					Usage:     "fit catmull-rom tangents through points and print the spline",
					UsageText: `articulate spline fit --points "x,y,z;x,y,z;..."`,
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:     pointsFlag,
							Required: true,
							Usage:    "semicolon separated control points",
						},
						&cli.PathFlag{
							Name:  outFlag,
							Usage: "write the spline to `FILE` instead of stdout",
						},
					},
					Action: SplineFitAction,
				},
			},
		},
		{
			Name:   "schema",
			Usage:  "print the json schema of the config file",
			Action: SchemaAction,
		},
		{
			Name:  "bench",
			Usage: "solve random reachable targets and report statistics",
			Flags: append([]cli.Flag{
				&cli.PathFlag{
					Name:     chainFlag,
					Required: true,
					Usage:    "chain json or urdf `FILE`",
				},
				&cli.StringFlag{
					Name:     effectorFlag,
					Required: true,
					Usage:    "end effector to move",
				},
				&cli.IntFlag{
					Name:  countFlag,
					Value: 100,
					Usage: "number of targets",
				},
				&cli.Int64Flag{
					Name:  seedFlag,
					Value: 1,
					Usage: "random seed for targets",
				},
			}, solverFlags()...),
			Action: BenchAction,
		},
	},
}

func splineFileFlag() cli.Flag {
	return &cli.PathFlag{
		Name:     fileFlag,
		Required: true,
		Usage:    "serialized spline `FILE`",
	}
}

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	app.Writer = out
	app.ErrWriter = errOut
	return app
}
