package demo

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/simlab/jointsim/assets"
	"github.com/simlab/jointsim/config"
	"github.com/simlab/jointsim/control"
	"github.com/simlab/jointsim/logging"
	"github.com/simlab/jointsim/physics"
	"github.com/simlab/jointsim/trajectory"
)

// bundledSearchName names the embedded asset directory in asset-not-found errors.
const bundledSearchName = "bundled"

// progressInterval is how many steps pass between progress log lines.
const progressInterval = 1000

// World holds the bodies loaded by Setup.
type World struct {
	Plane    physics.BodyID
	HasPlane bool
	Robot    physics.BodyID
}

// Result describes a finished run.
type Result struct {
	// RunID identifies the run in logs.
	RunID string
	// Steps is the number of loop iterations completed.
	Steps   int
	SimTime float64
	Elapsed time.Duration
	// Overruns counts steps that finished after their drift-corrected deadline.
	Overruns int
	Joints   []physics.JointInfo
	// Trajectory is nil unless a plot or summary was requested.
	Trajectory *trajectory.Recorder
}

// Bootstrap connects in the configured mode and registers the asset search paths: the configured
// data path first, then the bundled assets. If registration fails the session is disconnected.
func Bootstrap(ctx context.Context, connect ConnectFunc, cfg *config.Config) (Session, error) {
	mode, err := cfg.PhysicsMode()
	if err != nil {
		return nil, err
	}
	sess, err := connect(ctx, mode)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot connect in %s mode", mode)
	}

	if cfg.DataPath != "" {
		err = sess.SetAdditionalSearchPath(cfg.DataPath)
	}
	if err == nil {
		err = sess.AddSearchFS(bundledSearchName, assets.FS())
	}
	if err != nil {
		return nil, multierr.Combine(err, sess.Disconnect())
	}
	return sess, nil
}

// Setup configures gravity and the time step and loads the plane and the robot.
func Setup(ctx context.Context, sess Session, cfg *config.Config) (World, error) {
	var world World
	if err := sess.SetGravity(cfg.GravityVector()); err != nil {
		return world, err
	}
	if cfg.TimeStep > 0 {
		if err := sess.SetTimeStep(cfg.TimeStep); err != nil {
			return world, err
		}
	}

	if cfg.Plane != "" {
		id, err := sess.LoadURDF(ctx, cfg.Plane, physics.LoadOptions{})
		if err != nil {
			return world, errors.Wrap(err, "cannot load plane")
		}
		world.Plane, world.HasPlane = id, true
	}

	id, err := sess.LoadURDF(ctx, cfg.Robot.URDF, physics.LoadOptions{
		BasePosition: cfg.Robot.Base(),
		UseFixedBase: cfg.Robot.FixedBase,
	})
	if err != nil {
		return world, errors.Wrap(err, "cannot load robot")
	}
	world.Robot = id
	return world, nil
}

// Introspect writes one line per joint of body to w and returns the joints' descriptions.
func Introspect(sess Session, body physics.BodyID, w io.Writer) ([]physics.JointInfo, error) {
	n, err := sess.GetNumJoints(body)
	if err != nil {
		return nil, err
	}
	joints := make([]physics.JointInfo, 0, n)
	for i := 0; i < n; i++ {
		info, err := sess.GetJointInfo(body, i)
		if err != nil {
			return nil, err
		}
		if _, err := fmt.Fprintf(w, "Joint %d: Name: %s, Type: %d\n", i, info.Name, int(info.Type)); err != nil {
			return nil, err
		}
		joints = append(joints, info)
	}
	return joints, nil
}

// Loop commands cfg.Joint of robot to the waveform target, steps the world and waits for the
// pacer, cfg.Steps times. The command never depends on the joint's state. When rec is non-nil
// the achieved position is read back after each step and recorded. Loop returns the number of
// completed iterations.
func Loop(
	ctx context.Context,
	sess Session,
	robot physics.BodyID,
	cfg *config.Config,
	pacer *control.Pacer,
	rec *trajectory.Recorder,
	logger logging.Logger,
) (int, error) {
	pacer.Start()
	for i := 0; i < cfg.Steps; i++ {
		if err := ctx.Err(); err != nil {
			return i, err
		}

		angle := cfg.Waveform.At(i)
		if err := sess.SetJointMotorControl(robot, cfg.Joint, physics.MotorControl{
			Mode:           physics.PositionControl,
			TargetPosition: angle,
			Force:          cfg.MaxForce,
		}); err != nil {
			return i, errors.Wrapf(err, "step %d", i)
		}
		if err := sess.StepSimulation(); err != nil {
			return i, errors.Wrapf(err, "step %d", i)
		}

		if rec != nil {
			state, err := sess.GetJointState(robot, cfg.Joint)
			if err != nil {
				return i, errors.Wrapf(err, "step %d", i)
			}
			simTime, _ := sess.SimTime()
			rec.Record(trajectory.Sample{Step: i, SimTime: simTime, Target: angle, Achieved: state.Position})
		}

		if (i+1)%progressInterval == 0 {
			simTime, _ := sess.SimTime()
			logger.CDebugw(ctx, "progress", "step", i+1, "of", cfg.Steps, "sim_time", simTime, "target", angle)
		}

		if err := pacer.Wait(ctx, i); err != nil {
			// the step itself completed
			return i + 1, err
		}
	}
	return cfg.Steps, nil
}

// Run executes the whole demo. Joint lines, and the summary table if requested, are written to
// out. Once connected the session is disconnected exactly once, whether the run succeeds, fails
// or is cancelled.
func Run(
	ctx context.Context,
	connect ConnectFunc,
	cfg *config.Config,
	out io.Writer,
	logger logging.Logger,
) (res *Result, err error) {
	return run(ctx, connect, cfg, out, clock.New(), logger)
}

func run(
	ctx context.Context,
	connect ConnectFunc,
	cfg *config.Config,
	out io.Writer,
	clk clock.Clock,
	logger logging.Logger,
) (res *Result, err error) {
	if err := cfg.Validate("config"); err != nil {
		return nil, err
	}

	sess, err := Bootstrap(ctx, connect, cfg)
	if err != nil {
		return nil, err
	}
	res = &Result{RunID: uuid.NewString()}
	logger.Infow("session started", "run_id", res.RunID, "mode", cfg.Mode, "data_path", cfg.DataPath)
	defer func() {
		err = multierr.Combine(err, errors.Wrap(sess.Disconnect(), "disconnect"))
		logger.Infow("session ended", "run_id", res.RunID, "error", err)
	}()

	world, err := Setup(ctx, sess, cfg)
	if err != nil {
		return res, err
	}
	logger.Infow("world ready", "plane", world.Plane, "has_plane", world.HasPlane, "robot", world.Robot)

	if res.Joints, err = Introspect(sess, world.Robot, out); err != nil {
		return res, err
	}
	if cfg.Joint >= len(res.Joints) {
		return res, errors.Wrapf(physics.ErrInvalidJointIndex, "joint %d of body %d (has %d joints)",
			cfg.Joint, world.Robot, len(res.Joints))
	}

	if cfg.Plot != "" || cfg.Summary {
		res.Trajectory = trajectory.NewRecorder(res.Joints[cfg.Joint].Name, cfg.Steps)
	}
	pacer := control.NewPacer(clk, control.PeriodFromRate(cfg.RateHz), cfg.DriftCorrection)

	lo, hi := cfg.Waveform.Bounds()
	logger.Infow("driving joint",
		"joint", cfg.Joint,
		"name", res.Joints[cfg.Joint].Name,
		"steps", cfg.Steps,
		"rate_hz", cfg.RateHz,
		"drift_correction", cfg.DriftCorrection,
		"target_min", lo,
		"target_max", hi,
	)

	start := clk.Now()
	res.Steps, err = Loop(ctx, sess, world.Robot, cfg, pacer, res.Trajectory, logger)
	res.Elapsed = clk.Since(start)
	res.Overruns = pacer.Overruns()
	res.SimTime, _ = sess.SimTime()
	logger.Infow("loop finished",
		"steps", res.Steps,
		"sim_time", res.SimTime,
		"elapsed", res.Elapsed,
		"overruns", res.Overruns,
	)
	if res.Overruns > 0 {
		logger.Warnw("loop fell behind its rate", "overruns", res.Overruns, "rate_hz", cfg.RateHz)
	}
	if err != nil {
		return res, err
	}

	if res.Trajectory != nil && res.Trajectory.Len() > 0 {
		if cfg.Summary {
			if err := res.Trajectory.WriteSummary(out); err != nil {
				return res, err
			}
		}
		if cfg.Plot != "" {
			if err := res.Trajectory.SavePlot(cfg.Plot); err != nil {
				return res, errors.Wrap(err, "cannot save plot")
			}
			logger.Infow("saved trajectory plot", "path", cfg.Plot)
		}
	}
	return res, nil
}
