// Package sim provides simulated hardware bindings for scan sessions: a
// software axis with travel limits, deterministic and noisy readers, and a
// recording auxiliary switch.  It stands in for real DAQ and stage bindings
// on development benches and in tests.
package sim

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/qt3uw/goscan/scan"
)

// compile-time capability checks
var (
	_ scan.Axis           = (*Axis)(nil)
	_ scan.Stepper        = (*Axis)(nil)
	_ scan.PositionReader = (*Axis)(nil)
	_ scan.Reader         = (*LinearReader)(nil)
	_ scan.Reader         = (*PeakReader)(nil)
	_ scan.Auxiliary      = (*Switch)(nil)
	_ scan.Axis           = (*RetryAxis)(nil)
)

// Axis is a software positioner with travel limits.  Moves are instantaneous;
// settle behavior belongs to the session configuration, not the mock.
type Axis struct {
	mu       sync.Mutex
	pos      float64
	min, max float64
	moves    int
}

// NewAxis returns an axis allowed to travel within [min, max], parked at min.
func NewAxis(min, max float64) *Axis {
	return &Axis{pos: min, min: min, max: max}
}

// MoveTo moves the axis to an absolute position, rejecting targets outside
// the allowed travel
func (a *Axis) MoveTo(p float64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if p < a.min || p > a.max {
		return fmt.Errorf("requested position %g outside allowed range [%g, %g]", p, a.min, a.max)
	}
	a.pos = p
	a.moves++
	return nil
}

// Step moves the axis by delta from its current position
func (a *Axis) Step(delta float64) error {
	a.mu.Lock()
	target := a.pos + delta
	a.mu.Unlock()
	return a.MoveTo(target)
}

// ReadPosition returns the current position
func (a *Axis) ReadPosition() (float64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pos, nil
}

// Moves returns how many moves the axis has accepted
func (a *Axis) Moves() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.moves
}

// LinearReader returns Gain*position + Offset for every sample.  It is
// deterministic, which makes it the reader of choice for tests.
type LinearReader struct {
	Axis   *Axis
	Gain   float64
	Offset float64
}

// Sample returns the linear function of the current axis position
func (r *LinearReader) Sample(time.Duration) (float64, error) {
	p, err := r.Axis.ReadPosition()
	if err != nil {
		return 0, err
	}
	return r.Gain*p + r.Offset, nil
}

// PeakReader models a Lorentzian line on a flat background, in counts per
// second, with shot noise scaled to the integration time.  When Realtime is
// set, Sample blocks for the integration time the way a real counter does.
type PeakReader struct {
	Axis *Axis

	// Center and Width (HWHM) place the line along the swept value
	Center float64
	Width  float64

	// Amplitude and Background are count rates, counts/s
	Amplitude  float64
	Background float64

	// Realtime makes Sample block for the integration time
	Realtime bool

	mu  sync.Mutex
	rng *rand.Rand
}

// NewPeakReader returns a PeakReader with a deterministic noise seed.
func NewPeakReader(axis *Axis, center, width, amplitude, background float64) *PeakReader {
	return &PeakReader{
		Axis:       axis,
		Center:     center,
		Width:      width,
		Amplitude:  amplitude,
		Background: background,
		rng:        rand.New(rand.NewSource(1)),
	}
}

// Sample integrates the simulated count rate for the given duration and
// returns total counts with approximately Poissonian noise
func (r *PeakReader) Sample(integration time.Duration) (float64, error) {
	p, err := r.Axis.ReadPosition()
	if err != nil {
		return 0, err
	}
	if r.Realtime {
		time.Sleep(integration)
	}
	w2 := r.Width * r.Width
	d := p - r.Center
	rate := r.Background + r.Amplitude*w2/(d*d+w2)
	counts := rate * integration.Seconds()
	r.mu.Lock()
	// gaussian with sigma sqrt(N) approximates the shot noise well enough
	// for a mock at the count levels we simulate
	counts += math.Sqrt(math.Max(counts, 0)) * r.rng.NormFloat64()
	r.mu.Unlock()
	return math.Max(counts, 0), nil
}

// Switch is an auxiliary output that holds active for the requested duration
// and records every activation.
type Switch struct {
	// Realtime makes Activate block for the hold duration
	Realtime bool

	mu          sync.Mutex
	activations []time.Duration
}

// Activate holds the output active for d and releases it
func (s *Switch) Activate(d time.Duration) error {
	if s.Realtime {
		time.Sleep(d)
	}
	s.mu.Lock()
	s.activations = append(s.activations, d)
	s.mu.Unlock()
	return nil
}

// Activations returns a copy of the recorded hold durations
func (s *Switch) Activations() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]time.Duration, len(s.activations))
	copy(out, s.activations)
	return out
}
