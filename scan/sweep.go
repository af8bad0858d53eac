package scan

import "time"

// runSweep drives the axis through one leg of waypoints, sampling the reader
// at each sub-waypoint and averaging sub-samples into pixel values.  Moves are
// strictly sequential: no sample is taken until its move has completed and the
// settle delay has passed.
//
// Any failure to move or sample is returned immediately and the partially
// built row is discarded; no partial-row data survives a hardware error.  The
// returned error has its Row field zeroed; the caller attaches the row index.
//
// Wall-clock time per pixel is the configured integration plus whatever
// per-move overhead the hardware binding contributes; that slack is accepted,
// not compensated.
func runSweep(a Axis, r Reader, wps *Waypoints, settle time.Duration, elapsed func() time.Duration) ([]Pixel, error) {
	row := make([]Pixel, 0, wps.Pixels())
	sub := wps.Subpixels()
	var acc float64
	nacc := 0
	wps.Reset()
	for {
		wp, ok := wps.Next()
		if !ok {
			break
		}
		if err := a.MoveTo(wp.Position); err != nil {
			return nil, &AxisError{Position: wp.Position, Err: err}
		}
		if settle > 0 {
			time.Sleep(settle)
		}
		v, err := r.Sample(wp.Integration)
		if err != nil {
			return nil, &ReaderError{Position: wp.Position, Err: err}
		}
		acc += v
		nacc++
		if nacc == sub {
			row = append(row, Pixel{Value: acc / float64(sub), Elapsed: elapsed()})
			acc, nacc = 0, 0
		}
	}
	return row, nil
}
