package scan

import (
	"time"

	"github.com/qt3uw/goscan/util"
)

// Settings is the numeric configuration for one scan.  It mirrors the fields
// a config file or GUI collaborator owns; the session treats it as an opaque
// bag of numbers and snapshots it into the buffer for export.  All times are
// in seconds.
//
// The zero values of PixelsBack and SweepTimeBack mean "same as forward"; the
// zero value of Cycles means one cycle.  Rows > 0 selects a 2-D raster, in
// which case SlowStart/SlowEnd position the slow axis and Cycles is ignored.
type Settings struct {
	// Start and End bound the swept value (volts, microns, ...)
	Start float64 `json:"start" yaml:"start"`
	End   float64 `json:"end" yaml:"end"`

	// Pixels is the number of reported samples per forward leg
	Pixels int `json:"pixels" yaml:"pixels"`

	// PixelsBack is the number of reported samples on the backward leg of a
	// bidirectional sweep.  Zero means Pixels.
	PixelsBack int `json:"pixelsBack,omitempty" yaml:"pixelsBack,omitempty"`

	// Subpixels is the number of sub-samples averaged into each pixel.  One
	// (or zero) means no sub-pixel sampling.
	Subpixels int `json:"subpixels" yaml:"subpixels"`

	// SweepTime is the nominal duration of a forward leg, seconds
	SweepTime float64 `json:"sweepTime" yaml:"sweepTime"`

	// SweepTimeBack is the nominal duration of a backward leg, seconds.
	// Zero means SweepTime.
	SweepTimeBack float64 `json:"sweepTimeBack,omitempty" yaml:"sweepTimeBack,omitempty"`

	// Bidirectional adds a backward leg after every forward leg
	Bidirectional bool `json:"bidirectional,omitempty" yaml:"bidirectional,omitempty"`

	// Cycles is the number of sweep cycles for a 1-D scan.  Zero means one.
	Cycles int `json:"cycles,omitempty" yaml:"cycles,omitempty"`

	// SettleTime is the delay between a move and the sample that depends on
	// it, seconds.  Zero is valid.
	SettleTime float64 `json:"settleTime,omitempty" yaml:"settleTime,omitempty"`

	// RepumpTime is the duration the auxiliary output is held active before
	// each forward leg, seconds.  Zero disables the auxiliary action.
	RepumpTime float64 `json:"repumpTime,omitempty" yaml:"repumpTime,omitempty"`

	// Rows is the number of slow-axis rows of a 2-D raster.  Zero selects
	// 1-D operation.
	Rows int `json:"rows,omitempty" yaml:"rows,omitempty"`

	// SlowStart and SlowEnd bound the slow axis of a raster
	SlowStart float64 `json:"slowStart,omitempty" yaml:"slowStart,omitempty"`
	SlowEnd   float64 `json:"slowEnd,omitempty" yaml:"slowEnd,omitempty"`

	// RowSettleTime is the delay after each slow-axis move, seconds
	RowSettleTime float64 `json:"rowSettleTime,omitempty" yaml:"rowSettleTime,omitempty"`
}

// normalized returns a copy with the "same as forward" and "one cycle"
// defaults filled in.
func (s Settings) normalized() Settings {
	if s.PixelsBack == 0 {
		s.PixelsBack = s.Pixels
	}
	if s.SweepTimeBack == 0 {
		s.SweepTimeBack = s.SweepTime
	}
	if s.Subpixels == 0 {
		s.Subpixels = 1
	}
	if s.Cycles == 0 {
		s.Cycles = 1
	}
	return s
}

// Validate checks the settings without touching hardware.  The returned error
// is a *ConfigurationError.
func (s Settings) Validate() error {
	s = s.normalized()
	if s.Start == s.End {
		return &ConfigurationError{"start/end", "sweep range must have nonzero width"}
	}
	if s.Pixels < 1 {
		return &ConfigurationError{"pixels", "must be at least 1"}
	}
	if s.Subpixels < 1 {
		return &ConfigurationError{"subpixels", "must be at least 1"}
	}
	if s.SweepTime <= 0 {
		return &ConfigurationError{"sweepTime", "must be greater than zero"}
	}
	if s.Bidirectional {
		if s.PixelsBack < 1 {
			return &ConfigurationError{"pixelsBack", "must be at least 1"}
		}
		if s.SweepTimeBack <= 0 {
			return &ConfigurationError{"sweepTimeBack", "must be greater than zero"}
		}
	}
	if s.Cycles < 1 {
		return &ConfigurationError{"cycles", "must be at least 1"}
	}
	if s.SettleTime < 0 {
		return &ConfigurationError{"settleTime", "must not be negative"}
	}
	if s.RepumpTime < 0 {
		return &ConfigurationError{"repumpTime", "must not be negative"}
	}
	if s.Rows < 0 {
		return &ConfigurationError{"rows", "must not be negative"}
	}
	if s.Rows > 0 {
		if s.SlowStart == s.SlowEnd {
			return &ConfigurationError{"slowStart/slowEnd", "raster range must have nonzero width"}
		}
		if s.RowSettleTime < 0 {
			return &ConfigurationError{"rowSettleTime", "must not be negative"}
		}
	}
	return nil
}

// legPixels is the reported pixel count for one direction of travel
func (s Settings) legPixels(d Direction) int {
	if d == Backward && s.PixelsBack > 0 {
		return s.PixelsBack
	}
	return s.Pixels
}

// legDuration is the nominal sweep duration for one direction of travel
func (s Settings) legDuration(d Direction) time.Duration {
	if d == Backward && s.SweepTimeBack > 0 {
		return util.SecsToDuration(s.SweepTimeBack)
	}
	return util.SecsToDuration(s.SweepTime)
}

func (s Settings) settleDuration() time.Duration {
	return util.SecsToDuration(s.SettleTime)
}

func (s Settings) rowSettleDuration() time.Duration {
	return util.SecsToDuration(s.RowSettleTime)
}

func (s Settings) repumpDuration() time.Duration {
	return util.SecsToDuration(s.RepumpTime)
}
