package control

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
)

// PeriodFromRate converts a rate in Hz to a step period. A non-positive rate disables pacing.
func PeriodFromRate(rateHz float64) time.Duration {
	if rateHz <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / rateHz)
}

// Pacer throttles a loop to one iteration per period.
//
// In fixed mode every Wait sleeps a full period, so time spent between waits accumulates as
// drift. In drift-corrected mode step i wakes at start + (i+1)*period, and a loop that falls
// behind catches up without sleeping.
type Pacer struct {
	clk            clock.Clock
	period         time.Duration
	driftCorrected bool

	start   time.Time
	overrun int
}

// NewPacer returns a pacer using clk. A zero period makes Wait return immediately.
func NewPacer(clk clock.Clock, period time.Duration, driftCorrected bool) *Pacer {
	if clk == nil {
		clk = clock.New()
	}
	return &Pacer{clk: clk, period: period, driftCorrected: driftCorrected}
}

// Period returns the configured step period.
func (p *Pacer) Period() time.Duration {
	return p.period
}

// Start anchors drift-corrected deadlines to the current time. Wait calls Start if it has not
// been called.
func (p *Pacer) Start() {
	p.start = p.clk.Now()
	p.overrun = 0
}

// Overruns returns how many drift-corrected waits found their deadline already passed.
func (p *Pacer) Overruns() int {
	return p.overrun
}

// Wait blocks until step may be considered finished, or until ctx is done.
func (p *Pacer) Wait(ctx context.Context, step int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.period <= 0 {
		return nil
	}
	if p.start.IsZero() {
		p.Start()
	}

	d := p.period
	if p.driftCorrected {
		deadline := p.start.Add(time.Duration(step+1) * p.period)
		d = deadline.Sub(p.clk.Now())
		if d <= 0 {
			p.overrun++
			return nil
		}
	}

	timer := p.clk.Timer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
