package scan

import "time"

// Direction is the direction of travel of one leg of a sweep.
type Direction int

const (
	// Forward sweeps from Start toward End
	Forward Direction = iota

	// Backward sweeps from End toward Start
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Waypoint pairs a target position with the time to integrate there.
type Waypoint struct {
	Position    float64
	Integration time.Duration
}

// Waypoints generates the ordered sub-pixel waypoints for one leg of a sweep.
// The sequence is finite, strictly monotonic in position (ascending forward,
// descending backward), and restartable via Reset.  It performs no I/O.
//
// Pixel i sits at start + i*(end-start)/pixels; its sub-samples begin on that
// value and advance by (end-start)/(pixels*subpixels).  Anchoring the first
// sub-sample on the nominal pixel value (rather than centering the group)
// keeps every sample inside the swept range at the extrema.
type Waypoints struct {
	origin      float64
	step        float64
	n           int
	subpixels   int
	integration time.Duration
	i           int
}

// Waypoints builds the generator for one direction of travel.  The same
// settings regenerate the same sequence every time.
func (s Settings) Waypoints(d Direction) *Waypoints {
	px := s.legPixels(d)
	sub := s.Subpixels
	if sub < 1 {
		sub = 1
	}
	n := px * sub
	origin, span := s.Start, s.End-s.Start
	if d == Backward {
		origin, span = s.End, s.Start-s.End
	}
	return &Waypoints{
		origin:      origin,
		step:        span / float64(n),
		n:           n,
		subpixels:   sub,
		integration: s.legDuration(d) / time.Duration(n),
	}
}

// Len is the total number of waypoints in the sequence
func (w *Waypoints) Len() int { return w.n }

// Pixels is the number of reported pixels the sequence bins into
func (w *Waypoints) Pixels() int { return w.n / w.subpixels }

// Subpixels is the number of sub-samples per pixel
func (w *Waypoints) Subpixels() int { return w.subpixels }

// Next returns the next waypoint, or ok=false when the leg is exhausted
func (w *Waypoints) Next() (Waypoint, bool) {
	if w.i >= w.n {
		return Waypoint{}, false
	}
	wp := Waypoint{
		Position:    w.origin + float64(w.i)*w.step,
		Integration: w.integration,
	}
	w.i++
	return wp, true
}

// Reset rewinds the generator so the sequence can be replayed
func (w *Waypoints) Reset() { w.i = 0 }
