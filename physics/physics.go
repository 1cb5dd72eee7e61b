// Package physics implements the in-process simulation backend: a world of URDF bodies with
// motor-driven joints, advanced one fixed time step at a time.
//
// The joint model is intentionally simple. Each actuated joint is an independent 1-DoF rotor or
// slider whose inertia is taken from the links it carries. Motors are solved as velocity
// constraints capped by a maximum force, in the manner of common rigid-body engines. Gravity acts
// on free bases only; joint torques from gravity are not modeled.
package physics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/utils"

	"github.com/simlab/jointsim/logging"
)

// Mode selects how the backend is presented.
type Mode int

const (
	// Direct runs headless.
	Direct Mode = iota
	// GUI runs with a live display of the world, refreshed in the background.
	GUI
)

func (m Mode) String() string {
	switch m {
	case Direct:
		return "direct"
	case GUI:
		return "gui"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ModeFromString parses the output of Mode.String, "gui" or "direct". Matching is exact so the
// config schema enum describes every accepted value.
func ModeFromString(s string) (Mode, error) {
	switch s {
	case GUI.String():
		return GUI, nil
	case Direct.String():
		return Direct, nil
	}
	return Direct, errors.Errorf("unknown connection mode %q", s)
}

const (
	// DefaultTimeStep is the simulated time advanced by one StepSimulation call.
	DefaultTimeStep = 1.0 / 240.0
	// DefaultRefreshInterval is how often the GUI display is redrawn.
	DefaultRefreshInterval = 50 * time.Millisecond
)

// BodyID identifies a body loaded into the world.
type BodyID int

// Client is a connection to the simulation backend. It is safe for concurrent use.
type Client struct {
	mu        sync.Mutex
	mode      Mode
	connected bool
	logger    logging.Logger

	searchPaths []searchPath
	gravity     r3.Vector
	timeStep    float64
	simTime     float64
	steps       int64
	bodies      []*body

	display Display
	refresh time.Duration
	worker  *utils.StoppableWorkers
}

// Option configures Connect.
type Option func(*Client)

// WithDisplay replaces the GUI display. It has no effect in Direct mode.
func WithDisplay(d Display) Option {
	return func(c *Client) {
		c.display = d
	}
}

// WithRefreshInterval sets how often the GUI display is redrawn.
func WithRefreshInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.refresh = d
		}
	}
}

// Connect opens a connection to a fresh, empty world. In GUI mode the display must start
// successfully or ErrBackendUnavailable is returned.
func Connect(ctx context.Context, mode Mode, logger logging.Logger, opts ...Option) (*Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if mode != Direct && mode != GUI {
		return nil, errors.Wrapf(ErrBackendUnavailable, "mode %v", mode)
	}

	c := &Client{
		mode:      mode,
		connected: true,
		logger:    logger,
		timeStep:  DefaultTimeStep,
		refresh:   DefaultRefreshInterval,
	}
	for _, opt := range opts {
		opt(c)
	}

	if mode == GUI {
		if c.display == nil {
			c.display = NewTerminalDisplay()
		}
		if err := c.display.Start(); err != nil {
			return nil, errors.Wrap(ErrBackendUnavailable, err.Error())
		}
		c.worker = utils.NewStoppableWorkerWithTicker(c.refresh, func(context.Context) {
			c.redraw()
		})
	}

	logger.Infow("connected to physics backend", "mode", mode)
	return c, nil
}

// Mode returns the mode the client was connected with.
func (c *Client) Mode() Mode {
	return c.mode
}

// IsConnected reports whether Disconnect has not yet been called.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Disconnect releases the world and stops the display. Calling it again returns ErrNotConnected.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return ErrNotConnected
	}
	c.connected = false
	steps, simTime := c.steps, c.simTime
	c.mu.Unlock()

	// the worker takes the lock to snapshot, so it must be stopped without holding it
	if c.worker != nil {
		c.worker.Stop()
	}
	var err error
	if c.display != nil && c.mode == GUI {
		err = c.display.Stop()
	}

	c.mu.Lock()
	c.bodies = nil
	c.searchPaths = nil
	c.mu.Unlock()

	c.logger.Infow("disconnected from physics backend", "steps", steps, "sim_time", simTime)
	return err
}

// SetGravity sets the gravitational acceleration in m/s^2.
func (c *Client) SetGravity(gravity r3.Vector) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return ErrNotConnected
	}
	c.gravity = gravity
	return nil
}

// Gravity returns the gravitational acceleration.
func (c *Client) Gravity() (r3.Vector, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return r3.Vector{}, ErrNotConnected
	}
	return c.gravity, nil
}

// SetTimeStep changes the simulated time advanced by each StepSimulation call.
func (c *Client) SetTimeStep(dt float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return ErrNotConnected
	}
	if dt <= 0 {
		return errors.Errorf("time step must be positive, got %v", dt)
	}
	c.timeStep = dt
	return nil
}

// SimTime returns the simulated seconds elapsed and the number of steps taken.
func (c *Client) SimTime() (float64, int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.simTime, c.steps
}

func (c *Client) redraw() {
	c.mu.Lock()
	// nothing moves before the first step
	if !c.connected || c.steps == 0 {
		c.mu.Unlock()
		return
	}
	snap := c.snapshot()
	c.mu.Unlock()

	c.display.Update(snap)
}
