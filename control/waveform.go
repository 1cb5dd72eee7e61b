// Package control contains the open-loop command generators used to drive a joint and the pacer
// that keeps a stepping loop close to wall-clock time.
package control

import (
	"math"

	"github.com/pkg/errors"
)

// Waveform is a sinusoid offset so that it oscillates around its amplitude:
//
//	At(i) = Amplitude * (1 + Depth*sin(i*Frequency))
//
// Frequency is in radians per step.
type Waveform struct {
	Amplitude float64 `json:"amplitude"`
	Depth     float64 `json:"depth"`
	Frequency float64 `json:"frequency"`
}

// DefaultWaveform swings a revolute joint between roughly 0.785 and 2.355 rad over about 628 steps.
var DefaultWaveform = Waveform{Amplitude: 1.57, Depth: 0.5, Frequency: 0.01}

// At returns the target for step i.
func (w Waveform) At(step int) float64 {
	return w.Amplitude * (1 + w.Depth*math.Sin(float64(step)*w.Frequency))
}

// Bounds returns the smallest and largest values At can produce.
func (w Waveform) Bounds() (float64, float64) {
	a := w.Amplitude * (1 - w.Depth)
	b := w.Amplitude * (1 + w.Depth)
	return math.Min(a, b), math.Max(a, b)
}

// PeriodSteps returns the period in steps, which is generally not an integer. A zero frequency
// never repeats.
func (w Waveform) PeriodSteps() float64 {
	if w.Frequency == 0 {
		return math.Inf(1)
	}
	return 2 * math.Pi / math.Abs(w.Frequency)
}

// Validate rejects waveforms that cannot produce finite targets.
func (w Waveform) Validate() error {
	for name, v := range map[string]float64{
		"amplitude": w.Amplitude,
		"depth":     w.Depth,
		"frequency": w.Frequency,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Errorf("waveform %s must be finite, got %v", name, v)
		}
	}
	return nil
}
