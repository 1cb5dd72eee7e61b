// Package trajectory records how closely a joint followed its commanded target and reports on it.
package trajectory

import (
	"math"
	"sync"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// ErrNoSamples is returned when a report is requested from an empty recorder.
var ErrNoSamples = errors.New("no trajectory samples recorded")

// Sample is one step's commanded and achieved joint position.
type Sample struct {
	Step     int
	SimTime  float64
	Target   float64
	Achieved float64
}

// TrackingError is the signed difference between the achieved and commanded positions.
func (s Sample) TrackingError() float64 {
	return s.Achieved - s.Target
}

// Recorder accumulates samples for a single joint. It is safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	joint   string
	samples []Sample
}

// NewRecorder returns a recorder for the named joint with room for capacity samples.
func NewRecorder(joint string, capacity int) *Recorder {
	if capacity < 0 {
		capacity = 0
	}
	return &Recorder{joint: joint, samples: make([]Sample, 0, capacity)}
}

// Joint returns the name of the recorded joint.
func (r *Recorder) Joint() string {
	return r.joint
}

// Record appends a sample.
func (r *Recorder) Record(s Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, s)
}

// Len returns the number of samples recorded.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.samples)
}

// Samples returns a copy of the recorded samples.
func (r *Recorder) Samples() []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Sample, len(r.samples))
	copy(out, r.samples)
	return out
}

// Summary describes a recorded trajectory. Errors are absolute tracking errors in joint units.
type Summary struct {
	Joint       string
	Samples     int
	Duration    float64
	TargetMin   float64
	TargetMax   float64
	AchievedMin float64
	AchievedMax float64
	MeanError   float64
	MaxError    float64
	RMSError    float64
	P95Error    float64
}

// Summary computes tracking statistics over every recorded sample.
func (r *Recorder) Summary() (Summary, error) {
	samples := r.Samples()
	if len(samples) == 0 {
		return Summary{}, ErrNoSamples
	}

	targets := make([]float64, len(samples))
	achieved := make([]float64, len(samples))
	absErrs := make([]float64, len(samples))
	for i, s := range samples {
		targets[i] = s.Target
		achieved[i] = s.Achieved
		absErrs[i] = math.Abs(s.TrackingError())
	}

	mean, err := stats.Mean(absErrs)
	if err != nil {
		return Summary{}, errors.Wrap(err, "mean tracking error")
	}
	maxErr, err := stats.Max(absErrs)
	if err != nil {
		return Summary{}, errors.Wrap(err, "max tracking error")
	}
	p95, err := stats.Percentile(absErrs, 95)
	if err != nil {
		return Summary{}, errors.Wrap(err, "95th percentile tracking error")
	}

	return Summary{
		Joint:       r.joint,
		Samples:     len(samples),
		Duration:    samples[len(samples)-1].SimTime - samples[0].SimTime,
		TargetMin:   floats.Min(targets),
		TargetMax:   floats.Max(targets),
		AchievedMin: floats.Min(achieved),
		AchievedMax: floats.Max(achieved),
		MeanError:   mean,
		MaxError:    maxErr,
		RMSError:    math.Sqrt(floats.Dot(absErrs, absErrs) / float64(len(absErrs))),
		P95Error:    p95,
	}, nil
}
