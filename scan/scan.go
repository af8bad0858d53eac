// Package scan coordinates a positioning axis with an integrating reader to
// produce one- and two-dimensional scans.  A value (a frequency-proxy voltage,
// or a spatial position) is swept through a sequence of waypoints and at each
// waypoint a measurement is integrated and recorded, yielding a 1-D line
// profile or a 2-D image.
//
// The package owns the waypoint math, the sweep executor, the session state
// machine with pause/resume/abort semantics, and the row buffer.  It does not
// own any hardware; axes, readers, and auxiliary outputs are passed in as
// capability interfaces and are exclusively the session's to drive for the
// session's lifetime.
package scan

import "time"

// Axis is one controllable degree of freedom.
type Axis interface {
	// MoveTo moves the axis to an absolute position
	MoveTo(pos float64) error
}

// Stepper is an Axis which can also move a relative amount.
type Stepper interface {
	// Step moves the axis by delta from its current position
	Step(delta float64) error
}

// PositionReader is an Axis which can also report its position.
type PositionReader interface {
	// ReadPosition returns the current position of the axis
	ReadPosition() (float64, error)
}

// Reader is a measurement source which integrates for a caller-specified
// duration and returns a scalar.  Sample blocks for at least the integration
// time.
type Reader interface {
	Sample(integration time.Duration) (float64, error)
}

// Auxiliary holds a control output active for a fixed duration and then
// releases it, e.g. a repump laser switched through an AOM.  Activate blocks
// until the output has been released.
type Auxiliary interface {
	Activate(d time.Duration) error
}

// Hardware bundles the handles a session drives.  Axis and Reader are
// required.  Slow is the second axis of a raster scan and is required exactly
// when the settings describe one.  Aux is optional.
//
// The handles are borrowed: the session owns them exclusively while it exists,
// but the underlying device connections belong to whoever constructed them.
type Hardware struct {
	Axis   Axis
	Slow   Axis
	Reader Reader
	Aux    Auxiliary
}

// State is the lifecycle state of a Session.
type State int

// the session state machine is Idle -> Running -> {Paused, Completed, Aborted}
// with Paused -> Running on resume and Paused -> Aborted.  Completed and
// Aborted are terminal until an explicit Reset.
const (
	Idle State = iota
	Running
	Paused
	Completed
	Aborted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Running:
		return "Running"
	case Paused:
		return "Paused"
	case Completed:
		return "Completed"
	case Aborted:
		return "Aborted"
	}
	return "Unknown"
}
