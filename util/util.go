// Package util contains misc internal utilities.
package util

import "time"

// Clamp restricts x to the range [low, high]
func Clamp(x, low, high float64) float64 {
	if x < low {
		return low
	}
	if x > high {
		return high
	}
	return x
}

// SecsToDuration converts a number of seconds to a time.Duration
func SecsToDuration(secs float64) time.Duration {
	return time.Duration(secs * 1e9)
}

// Arange returns evenly spaced values on the half-open interval [start, stop)
// separated by step.  It mimics np.arange for float64 and tolerates negative
// steps for descending ranges.
func Arange(start, stop, step float64) []float64 {
	n := int((stop - start) / step)
	out := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, start+float64(i)*step)
	}
	return out
}
