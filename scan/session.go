package scan

import (
	"log"
	"sync"
	"time"
)

// rowPlan is one row-boundary unit of work: an optional auxiliary action, an
// optional slow-axis move, and one sweep leg.
type rowPlan struct {
	dir     Direction
	slow    float64
	hasSlow bool
	repump  bool
	park    bool
}

// buildPlan expands settings into the full ordered list of rows a session
// will produce.  Pause and resume index into this list, which is what makes
// resuming without re-acquisition trivial.
func buildPlan(s Settings) []rowPlan {
	var plan []rowPlan
	if s.Rows > 0 {
		span := s.SlowEnd - s.SlowStart
		for i := 0; i < s.Rows; i++ {
			pos := s.SlowStart + float64(i)*span/float64(s.Rows)
			plan = append(plan, rowPlan{dir: Forward, slow: pos, hasSlow: true, repump: true})
			if s.Bidirectional {
				plan = append(plan, rowPlan{dir: Backward, slow: pos, hasSlow: true})
			}
		}
		return plan
	}
	for i := 0; i < s.Cycles; i++ {
		plan = append(plan, rowPlan{dir: Forward, repump: true})
		if s.Bidirectional {
			// the axis is parked back at the sweep start after the down leg
			// so the output value is continuous from cycle to cycle
			plan = append(plan, rowPlan{dir: Backward, park: true})
		}
	}
	return plan
}

// Session sequences sweep executions one row at a time, honoring pause, abort
// and reset requests at row boundaries only.  The execution loop runs on a
// worker goroutine; all control methods are safe to call from any goroutine
// and never block on hardware.
//
// Timestamps recorded in the buffer are relative to the moment the session
// left Idle and are not adjusted for time spent in Paused.  A pause therefore
// shows up as an unrecorded discontinuity in the timestamp series.
type Session struct {
	hw  Hardware
	buf *Buffer

	mu           sync.Mutex
	set          Settings
	state        State
	plan         []rowPlan
	next         int
	pendingPause bool
	pendingAbort bool
	started      time.Time
	err          error
	done         chan struct{}
}

// New validates the settings and returns an Idle session.  The hardware
// handles are owned exclusively by the session until it is discarded.
func New(set Settings, hw Hardware) (*Session, error) {
	set = set.normalized()
	if err := set.Validate(); err != nil {
		return nil, err
	}
	if hw.Axis == nil {
		return nil, &ConfigurationError{"axis", "an axis handle is required"}
	}
	if hw.Reader == nil {
		return nil, &ConfigurationError{"reader", "a reader handle is required"}
	}
	if set.Rows > 0 && hw.Slow == nil {
		return nil, &ConfigurationError{"slow axis", "a slow axis handle is required for a raster scan"}
	}
	s := &Session{hw: hw, set: set, buf: &Buffer{settings: set}, plan: buildPlan(set)}
	return s, nil
}

// Configure replaces the session settings.  Valid only while Idle; the buffer
// must be empty or reset first, since its contents describe the old settings.
func (s *Session) Configure(set Settings) error {
	set = set.normalized()
	if err := set.Validate(); err != nil {
		return err
	}
	if set.Rows > 0 && s.hw.Slow == nil {
		return &ConfigurationError{"slow axis", "a slow axis handle is required for a raster scan"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Idle {
		return &StateError{"configure", s.state}
	}
	s.set = set
	s.plan = buildPlan(set)
	s.next = 0
	s.buf.reset()
	s.buf.setSettings(set)
	return nil
}

// Start begins a scan from Idle, or resumes a paused one at the exact row that
// was pending when the pause was honored.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Idle && s.state != Paused {
		return &StateError{"start", s.state}
	}
	if s.state == Idle {
		s.started = time.Now()
		s.buf.markStarted(s.started)
		log.Printf("starting scan, %d rows planned", len(s.plan))
	} else {
		log.Printf("resuming scan at row %d", s.next)
	}
	s.state = Running
	s.pendingPause = false
	s.pendingAbort = false
	s.done = make(chan struct{})
	go s.run(s.done)
	return nil
}

// Resume continues a paused session.  It is Start with a stricter
// precondition, provided so callers can distinguish intent.
func (s *Session) Resume() error {
	s.mu.Lock()
	if s.state != Paused {
		defer s.mu.Unlock()
		return &StateError{"resume", s.state}
	}
	s.mu.Unlock()
	return s.Start()
}

// Pause requests a pause.  It takes effect at the next row boundary; the
// sweep in progress always runs to completion first, which guarantees every
// buffered row is complete.
func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Running {
		return &StateError{"pause", s.state}
	}
	s.pendingPause = true
	return nil
}

// Abort requests an abort.  Like Pause it is honored at the next row
// boundary.  Nothing already buffered is discarded.  Aborting a paused
// session takes effect immediately.
func (s *Session) Abort() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case Running:
		s.pendingAbort = true
		return nil
	case Paused:
		s.state = Aborted
		log.Printf("scan aborted while paused, %d rows retained", s.buf.Frames())
		return nil
	}
	return &StateError{"abort", s.state}
}

// Reset clears the buffer and returns the session to Idle with the same
// settings and handles.  Valid only from Idle, Completed, or Aborted.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case Idle, Completed, Aborted:
	default:
		return &StateError{"reset", s.state}
	}
	s.buf.reset()
	s.next = 0
	s.err = nil
	s.state = Idle
	s.pendingPause = false
	s.pendingAbort = false
	return nil
}

// State returns the current lifecycle state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the hardware error that aborted the scan, if any
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Settings returns the settings the session is configured with
func (s *Session) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set
}

// Frames is the number of completed rows in the buffer
func (s *Session) Frames() int { return s.buf.Frames() }

// Snapshot returns a self-consistent copy of the buffer, safe to call at any
// time including mid-scan
func (s *Session) Snapshot() Snapshot { return s.buf.Snapshot() }

// Wait blocks until the worker spawned by the most recent Start exits, i.e.
// until the session leaves Running.  It returns immediately if no worker is
// active.
func (s *Session) Wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (s *Session) elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.started)
}

// run is the worker loop.  Control requests are observed only here, at row
// boundaries, never mid-sweep.
func (s *Session) run(done chan struct{}) {
	defer close(done)
	for {
		s.mu.Lock()
		if s.pendingAbort {
			s.pendingAbort = false
			s.pendingPause = false
			s.state = Aborted
			n := s.next
			s.mu.Unlock()
			log.Printf("scan aborted before row %d", n)
			return
		}
		if s.pendingPause {
			s.pendingPause = false
			s.state = Paused
			n := s.next
			s.mu.Unlock()
			log.Printf("scan paused before row %d", n)
			return
		}
		if s.next >= len(s.plan) {
			s.state = Completed
			s.mu.Unlock()
			log.Println("scan complete")
			return
		}
		idx := s.next
		rp := s.plan[idx]
		set := s.set
		s.mu.Unlock()

		if err := s.runRow(idx, rp, set); err != nil {
			s.mu.Lock()
			s.err = err
			s.state = Aborted
			s.pendingPause = false
			s.pendingAbort = false
			s.mu.Unlock()
			log.Printf("scan aborted: %v", err)
			return
		}
		s.mu.Lock()
		s.next++
		s.mu.Unlock()
	}
}

// runRow performs the auxiliary action, slow-axis move, and sweep for one
// row, appending the completed row to the buffer.  On error nothing is
// appended.
func (s *Session) runRow(idx int, rp rowPlan, set Settings) error {
	if rp.repump && s.hw.Aux != nil {
		if d := set.repumpDuration(); d > 0 {
			if err := s.hw.Aux.Activate(d); err != nil {
				return &AuxError{Row: idx, Err: err}
			}
		}
	}
	if rp.hasSlow {
		if err := s.hw.Slow.MoveTo(rp.slow); err != nil {
			return &AxisError{Row: idx, Position: rp.slow, Err: err}
		}
		if d := set.rowSettleDuration(); d > 0 {
			time.Sleep(d)
		}
	}
	pixels, err := runSweep(s.hw.Axis, s.hw.Reader, set.Waypoints(rp.dir), set.settleDuration(), s.elapsed)
	if err != nil {
		switch e := err.(type) {
		case *AxisError:
			e.Row = idx
		case *ReaderError:
			e.Row = idx
		}
		return err
	}
	row := Row{Index: idx, Direction: rp.dir, Pixels: pixels}
	if rp.hasSlow {
		row.SlowPosition = rp.slow
	}
	s.buf.append(row)
	if rp.park {
		if err := s.hw.Axis.MoveTo(set.Start); err != nil {
			return &AxisError{Row: idx, Position: set.Start, Err: err}
		}
	}
	return nil
}
