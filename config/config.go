// Package config defines the run configuration of the joint demo.
package config

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/simlab/jointsim/assets"
	"github.com/simlab/jointsim/control"
	"github.com/simlab/jointsim/logging"
	"github.com/simlab/jointsim/physics"
	"github.com/simlab/jointsim/utils"
)

const (
	// DefaultSteps is the number of simulation steps a run takes.
	DefaultSteps = 10000
	// DefaultRateHz is the wall-clock rate the loop is paced to.
	DefaultRateHz = 240.0
	// DefaultMaxForce is the force cap given with every position command.
	DefaultMaxForce = 500.0
	// DefaultLogLevel is the level runs log at unless configured otherwise.
	DefaultLogLevel = "info"
)

// DefaultGravity is standard gravity along -z.
var DefaultGravity = [3]float64{0, 0, -9.81}

// Robot describes the body whose joint is driven.
type Robot struct {
	URDF         string     `json:"urdf"`
	BasePosition [3]float64 `json:"base_position"`
	FixedBase    bool       `json:"fixed_base"`
}

// Base returns the base position as a vector.
func (r Robot) Base() r3.Vector {
	return r3.Vector{X: r.BasePosition[0], Y: r.BasePosition[1], Z: r.BasePosition[2]}
}

// Config is a full run configuration.
type Config struct {
	// ConfigFilePath is where the config was read from, if anywhere.
	ConfigFilePath string `json:"-"`

	Mode string `json:"mode" jsonschema:"enum=gui,enum=direct"`
	// DataPath is an optional asset directory searched before the bundled assets.
	DataPath string     `json:"data_path,omitempty"`
	Gravity  [3]float64 `json:"gravity"`
	// Plane is the ground asset. An empty string loads no ground.
	Plane string `json:"plane"`
	Robot Robot  `json:"robot"`

	Joint    int              `json:"joint"`
	Waveform control.Waveform `json:"waveform"`
	MaxForce float64          `json:"max_force"`

	Steps int `json:"steps"`
	// TimeStep overrides the backend time step when positive.
	TimeStep        float64 `json:"time_step,omitempty"`
	RateHz  float64 `json:"rate_hz"`
	// DriftCorrection schedules each step against the loop start instead of sleeping a fixed
	// period after it.
	DriftCorrection bool `json:"drift_correction"`

	Plot     string `json:"plot,omitempty"`
	Summary  bool   `json:"summary"`
	LogLevel string `json:"log_level" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
}

// Default returns the configuration of the stock demo: a GUI session driving joint 0 of a
// fixed-base panda for 10000 steps at 240 Hz.
func Default() *Config {
	return &Config{
		Mode:    physics.GUI.String(),
		Gravity: DefaultGravity,
		Plane:   assets.PlaneURDF,
		Robot: Robot{
			URDF:      assets.PandaURDF,
			FixedBase: true,
		},
		Joint:    0,
		Waveform: control.DefaultWaveform,
		MaxForce: DefaultMaxForce,
		Steps:    DefaultSteps,
		RateHz:   DefaultRateHz,
		LogLevel: DefaultLogLevel,
	}
}

// PhysicsMode returns the parsed connection mode.
func (c *Config) PhysicsMode() (physics.Mode, error) {
	return physics.ModeFromString(c.Mode)
}

// Level returns the parsed log level.
func (c *Config) Level() (logging.Level, error) {
	return logging.LevelFromString(c.LogLevel)
}

// GravityVector returns the gravity as a vector.
func (c *Config) GravityVector() r3.Vector {
	return r3.Vector{X: c.Gravity[0], Y: c.Gravity[1], Z: c.Gravity[2]}
}

// Validate ensures all parts of the config are valid.
func (c *Config) Validate(path string) error {
	if _, err := c.PhysicsMode(); err != nil {
		return utils.NewConfigValidationError(path, err)
	}
	for _, v := range c.Gravity {
		if !finite(v) {
			return utils.NewConfigValidationError(path, errors.Errorf("gravity must be finite, got %v", c.Gravity))
		}
	}
	if err := c.Robot.Validate(path + ".robot"); err != nil {
		return err
	}
	if c.Joint < 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("joint index must be non-negative, got %d", c.Joint))
	}
	if err := c.Waveform.Validate(); err != nil {
		return utils.NewConfigValidationError(path, err)
	}
	if !finite(c.MaxForce) || c.MaxForce <= 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("max_force must be positive, got %v", c.MaxForce))
	}
	if c.Steps < 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("steps must be non-negative, got %d", c.Steps))
	}
	if !finite(c.TimeStep) || c.TimeStep < 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("time_step must be non-negative, got %v", c.TimeStep))
	}
	if !finite(c.RateHz) || c.RateHz < 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("rate_hz must be non-negative, got %v", c.RateHz))
	}
	if _, err := c.Level(); err != nil {
		return utils.NewConfigValidationError(path, err)
	}
	return nil
}

// Validate ensures all parts of the config are valid.
func (r *Robot) Validate(path string) error {
	if r.URDF == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "urdf")
	}
	for _, v := range r.BasePosition {
		if !finite(v) {
			return utils.NewConfigValidationError(path, errors.Errorf("base_position must be finite, got %v", r.BasePosition))
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
