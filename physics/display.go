package physics

import (
	"fmt"
	"os"
	"strconv"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/pterm/pterm"
	"golang.org/x/term"
)

// Display presents the world while connected in GUI mode. Update is called from a background
// worker with a consistent snapshot of the world.
type Display interface {
	Start() error
	Update(Snapshot)
	Stop() error
}

// Snapshot is a copy of the world state taken between steps.
type Snapshot struct {
	SimTime float64
	Steps   int64
	Gravity r3.Vector
	Bodies  []BodySnapshot
}

// BodySnapshot is the state of one body within a Snapshot. Only actuated joints are included.
type BodySnapshot struct {
	ID           BodyID
	Name         string
	BasePosition r3.Vector
	Joints       []JointSnapshot
}

// JointSnapshot is the state of one actuated joint within a Snapshot.
type JointSnapshot struct {
	Index  int
	Name   string
	Mode   ControlMode
	Target float64
	State  JointState
}

// snapshot copies the world. The caller must hold the lock.
func (c *Client) snapshot() Snapshot {
	snap := Snapshot{
		SimTime: c.simTime,
		Steps:   c.steps,
		Gravity: c.gravity,
		Bodies:  make([]BodySnapshot, 0, len(c.bodies)),
	}
	for _, b := range c.bodies {
		bs := BodySnapshot{ID: b.id, Name: b.model.Name(), BasePosition: b.basePos}
		for idx, js := range b.joints {
			if !js.def.Type.Movable() {
				continue
			}
			target := js.motor.TargetVelocity
			if js.motor.Mode == PositionControl {
				target = js.motor.TargetPosition
			} else if js.motor.Mode == TorqueControl {
				target = js.motor.Force
			}
			bs.Joints = append(bs.Joints, JointSnapshot{
				Index:  idx,
				Name:   js.def.Name,
				Mode:   js.motor.Mode,
				Target: target,
				State:  JointState{Position: js.q, Velocity: js.qd, AppliedTorque: js.applied},
			})
		}
		snap.Bodies = append(snap.Bodies, bs)
	}
	return snap
}

// RenderSnapshot renders a snapshot as a header line followed by one table per body with joints.
func RenderSnapshot(snap Snapshot) (string, error) {
	out := fmt.Sprintf("t=%.3fs  steps=%d  gravity=(%.2f, %.2f, %.2f)\n",
		snap.SimTime, snap.Steps, snap.Gravity.X, snap.Gravity.Y, snap.Gravity.Z)
	for _, b := range snap.Bodies {
		out += fmt.Sprintf("\nbody %d %s  base=(%.3f, %.3f, %.3f)\n",
			b.ID, b.Name, b.BasePosition.X, b.BasePosition.Y, b.BasePosition.Z)
		if len(b.Joints) == 0 {
			continue
		}
		data := pterm.TableData{{"joint", "name", "mode", "target", "position", "velocity", "torque"}}
		for _, j := range b.Joints {
			data = append(data, []string{
				strconv.Itoa(j.Index),
				j.Name,
				j.Mode.String(),
				formatFloat(j.Target),
				formatFloat(j.State.Position),
				formatFloat(j.State.Velocity),
				formatFloat(j.State.AppliedTorque),
			})
		}
		table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
		if err != nil {
			return "", err
		}
		out += table
	}
	return out, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// terminalDisplay redraws a pterm live area in place. The area is started on the first update so
// that output written between Start and the first step is not overdrawn.
type terminalDisplay struct {
	area *pterm.AreaPrinter
}

// NewTerminalDisplay returns the default GUI display. It requires stdout to be a terminal.
func NewTerminalDisplay() Display {
	return &terminalDisplay{}
}

func (d *terminalDisplay) Start() error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("gui mode requires stdout to be a terminal")
	}
	return nil
}

func (d *terminalDisplay) Update(snap Snapshot) {
	text, err := RenderSnapshot(snap)
	if err != nil {
		text = err.Error()
	}
	if d.area == nil {
		area, err := pterm.DefaultArea.Start()
		if err != nil {
			return
		}
		d.area = area
	}
	d.area.Update(text)
}

func (d *terminalDisplay) Stop() error {
	if d.area == nil {
		return nil
	}
	return d.area.Stop()
}
