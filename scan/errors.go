package scan

import "fmt"

// StateError indicates an operation was invoked in a session state that
// forbids it.  It is a programming-contract violation, not a hardware fault.
type StateError struct {
	// Op is the operation that was refused, e.g. "pause"
	Op string

	// State is the session state at the time of the call
	State State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s is not valid while the session is %s", e.Op, e.State)
}

// ConfigurationError indicates invalid scan settings.  It is raised at
// construction or configure time, before any hardware I/O occurs.
type ConfigurationError struct {
	// Field is the offending settings field
	Field string

	// Reason describes why the value was rejected
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid setting %s: %s", e.Field, e.Reason)
}

// AxisError wraps a move failure from an axis handle.  It is fatal to the row
// in progress; the partial row is discarded and the session aborts.
type AxisError struct {
	// Row is the row index at which the failure occurred
	Row int

	// Position is the target position of the failed move
	Position float64

	Err error
}

func (e *AxisError) Error() string {
	return fmt.Sprintf("axis move to %g failed at row %d: %v", e.Position, e.Row, e.Err)
}

func (e *AxisError) Unwrap() error { return e.Err }

// ReaderError wraps a sampling failure from a reader handle.  Same
// fatal-to-row policy as AxisError.
type ReaderError struct {
	Row      int
	Position float64
	Err      error
}

func (e *ReaderError) Error() string {
	return fmt.Sprintf("sample at position %g failed at row %d: %v", e.Position, e.Row, e.Err)
}

func (e *ReaderError) Unwrap() error { return e.Err }

// AuxError wraps a failure of the auxiliary action guarding a sweep.  It is
// fatal to the sweep it was guarding.
type AuxError struct {
	Row int
	Err error
}

func (e *AuxError) Error() string {
	return fmt.Sprintf("auxiliary action before row %d failed: %v", e.Row, e.Err)
}

func (e *AuxError) Unwrap() error { return e.Err }
