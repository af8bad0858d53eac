package scan

import (
	"math"
	"testing"
	"time"
)

func collect(w *Waypoints) []Waypoint {
	var out []Waypoint
	for {
		wp, ok := w.Next()
		if !ok {
			return out
		}
		out = append(out, wp)
	}
}

func TestWaypointCountAndMonotonicity(t *testing.T) {
	cases := []struct {
		name string
		set  Settings
		dir  Direction
	}{
		{"forward no subpixels", Settings{Start: 0, End: 10, Pixels: 5, Subpixels: 1, SweepTime: 1}, Forward},
		{"forward subpixels", Settings{Start: -2, End: 2, Pixels: 8, Subpixels: 4, SweepTime: 2}, Forward},
		{"backward", Settings{Start: 0, End: 1, Pixels: 4, PixelsBack: 2, Subpixels: 2, SweepTime: 1, SweepTimeBack: 0.5}, Backward},
		{"descending range", Settings{Start: 5, End: -5, Pixels: 10, Subpixels: 3, SweepTime: 1}, Forward},
	}
	for _, tc := range cases {
		set := tc.set.normalized()
		w := set.Waypoints(tc.dir)
		wps := collect(w)
		want := set.legPixels(tc.dir) * set.Subpixels
		if len(wps) != want {
			t.Errorf("%s: expected %d waypoints, got %d", tc.name, want, len(wps))
		}
		if w.Len() != want {
			t.Errorf("%s: Len reported %d, expected %d", tc.name, w.Len(), want)
		}
		ascending := set.End > set.Start
		if tc.dir == Backward {
			ascending = !ascending
		}
		for i := 1; i < len(wps); i++ {
			if ascending && wps[i].Position <= wps[i-1].Position {
				t.Errorf("%s: positions not strictly ascending at %d: %g then %g", tc.name, i, wps[i-1].Position, wps[i].Position)
			}
			if !ascending && wps[i].Position >= wps[i-1].Position {
				t.Errorf("%s: positions not strictly descending at %d: %g then %g", tc.name, i, wps[i-1].Position, wps[i].Position)
			}
		}
	}
}

func TestWaypointRestartable(t *testing.T) {
	set := Settings{Start: 0, End: 1, Pixels: 3, Subpixels: 2, SweepTime: 1}.normalized()
	w := set.Waypoints(Forward)
	first := collect(w)
	w.Reset()
	second := collect(w)
	if len(first) != len(second) {
		t.Fatalf("replayed sequence has different length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("waypoint %d differs after Reset: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestWaypointIntegrationTime(t *testing.T) {
	set := Settings{Start: 0, End: 10, Pixels: 5, Subpixels: 2, SweepTime: 1}.normalized()
	wps := collect(set.Waypoints(Forward))
	want := 100 * time.Millisecond // 1s / (5 px * 2 sub)
	for i, wp := range wps {
		if wp.Integration != want {
			t.Errorf("waypoint %d: integration %v, expected %v", i, wp.Integration, want)
		}
	}
}

func TestWaypointPositionsLineProfile(t *testing.T) {
	// pixel positions for a 0..10 sweep in 5 pixels are the arange values
	set := Settings{Start: 0, End: 10, Pixels: 5, Subpixels: 1, SweepTime: 1}.normalized()
	wps := collect(set.Waypoints(Forward))
	want := []float64{0, 2, 4, 6, 8}
	if len(wps) != len(want) {
		t.Fatalf("expected %d waypoints, got %d", len(want), len(wps))
	}
	for i := range want {
		if math.Abs(wps[i].Position-want[i]) > 1e-12 {
			t.Errorf("waypoint %d at %g, expected %g", i, wps[i].Position, want[i])
		}
	}
}

func TestWaypointSubpixelAnchoring(t *testing.T) {
	// the first sub-sample of each pixel sits on the nominal pixel value and
	// subsequent ones advance into the pixel's bandwidth
	set := Settings{Start: 0, End: 1, Pixels: 4, Subpixels: 2, SweepTime: 1}.normalized()
	wps := collect(set.Waypoints(Forward))
	want := []float64{0, 0.125, 0.25, 0.375, 0.5, 0.625, 0.75, 0.875}
	for i := range want {
		if math.Abs(wps[i].Position-want[i]) > 1e-12 {
			t.Errorf("waypoint %d at %g, expected %g", i, wps[i].Position, want[i])
		}
	}
}

func TestWaypointBackwardLeg(t *testing.T) {
	// asymmetric leg: 1 -> 0 in 2 pixels of 2 sub-samples each
	set := Settings{Start: 0, End: 1, Pixels: 4, PixelsBack: 2, Subpixels: 2, SweepTime: 1}.normalized()
	wps := collect(set.Waypoints(Backward))
	want := []float64{1, 0.75, 0.5, 0.25}
	if len(wps) != len(want) {
		t.Fatalf("expected %d waypoints, got %d", len(want), len(wps))
	}
	for i := range want {
		if math.Abs(wps[i].Position-want[i]) > 1e-12 {
			t.Errorf("waypoint %d at %g, expected %g", i, wps[i].Position, want[i])
		}
	}
}
