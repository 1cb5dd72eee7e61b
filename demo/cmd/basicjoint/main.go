// Package main runs the basic joint control demo.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"github.com/simlab/jointsim/config"
	"github.com/simlab/jointsim/demo"
	"github.com/simlab/jointsim/logging"
	"github.com/simlab/jointsim/physics"
)

const (
	// Flags.
	flagConfig          = "config"
	flagDirect          = "direct"
	flagSteps           = "steps"
	flagRate            = "rate"
	flagDataPath        = "data-path"
	flagPlot            = "plot"
	flagSummary         = "summary"
	flagDebug           = "debug"
	flagDriftCorrection = "drift-correction"
	flagLogFile         = "log-file"
	flagPrintSchema     = "print-schema"
)

func main() {
	// stdout carries the joint listing, so logs go to stderr
	logger := logging.NewStderrLogger("basicjoint", logging.INFO)

	if err := newApp(logger).Run(os.Args); err != nil {
		logger.Errorw("run failed", "error", err)
		utils.UncheckedError(logger.Sync())
		os.Exit(1)
	}
	utils.UncheckedError(logger.Sync())
}

func newApp(logger logging.Logger) *cli.App {
	return &cli.App{
		Name:  "basicjoint",
		Usage: "drive one joint of a simulated arm along a sine wave",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "load run configuration from `FILE`",
			},
			&cli.BoolFlag{
				Name:  flagDirect,
				Usage: "run headless instead of with the live display",
			},
			&cli.IntFlag{
				Name:  flagSteps,
				Usage: "number of simulation steps",
			},
			&cli.Float64Flag{
				Name:  flagRate,
				Usage: "wall-clock steps per second, 0 runs unthrottled",
			},
			&cli.StringFlag{
				Name:  flagDataPath,
				Usage: "search `DIR` for assets before the bundled ones",
			},
			&cli.StringFlag{
				Name:  flagPlot,
				Usage: "write a target vs achieved plot to `FILE` (png)",
			},
			&cli.BoolFlag{
				Name:  flagSummary,
				Usage: "print a tracking error summary after the run",
			},
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
			&cli.BoolFlag{
				Name:  flagDriftCorrection,
				Usage: "schedule each step against the start time instead of sleeping a fixed period",
			},
			&cli.StringFlag{
				Name:  flagLogFile,
				Usage: "also write logs to `FILE`, rotated by size",
			},
			&cli.BoolFlag{
				Name:  flagPrintSchema,
				Usage: "print the JSON schema of the config file and exit",
			},
		},
		Action: func(c *cli.Context) error {
			return runDemo(c, logger)
		},
	}
}

func runDemo(c *cli.Context, logger logging.Logger) (err error) {
	if c.Bool(flagPrintSchema) {
		schema, err := config.Schema()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(c.App.Writer, string(schema))
		return err
	}

	if path := c.String(flagLogFile); path != "" {
		appender := logging.NewFileAppender(path)
		logger.AddAppender(appender)
		defer func() {
			err = multierr.Combine(err, appender.Close())
		}()
	}

	cfg := config.Default()
	if path := c.String(flagConfig); path != "" {
		if cfg, err = config.Read(path); err != nil {
			return err
		}
	}
	applyFlags(c, cfg)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	logger.SetLevel(level)
	if level == logging.DEBUG {
		ctx = logging.WithDebug(ctx)
	}
	logger.Debugw("running with config", "config", cfg)

	connect := demo.PhysicsConnector(logger.Sublogger("physics"))
	_, err = demo.Run(ctx, connect, cfg, c.App.Writer, logger)
	return err
}

// applyFlags overrides the config with flags given on the command line.
func applyFlags(c *cli.Context, cfg *config.Config) {
	if c.Bool(flagDirect) {
		cfg.Mode = physics.Direct.String()
	}
	if c.IsSet(flagSteps) {
		cfg.Steps = c.Int(flagSteps)
	}
	if c.IsSet(flagRate) {
		cfg.RateHz = c.Float64(flagRate)
	}
	if c.IsSet(flagDataPath) {
		cfg.DataPath = c.String(flagDataPath)
	}
	if c.IsSet(flagPlot) {
		cfg.Plot = c.String(flagPlot)
	}
	if c.Bool(flagSummary) {
		cfg.Summary = true
	}
	if c.Bool(flagDebug) {
		cfg.LogLevel = strings.ToLower(logging.DEBUG.String())
	}
	if c.Bool(flagDriftCorrection) {
		cfg.DriftCorrection = true
	}
}
