package scanctl

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"

	"github.com/qt3uw/goscan/scan"
	"github.com/qt3uw/goscan/sim"
)

func newServer(t *testing.T) (*scan.Session, *httptest.Server) {
	t.Helper()
	ax := sim.NewAxis(0, 100)
	rd := &sim.LinearReader{Axis: ax, Gain: 2}
	sess, err := scan.New(scan.Settings{
		Start: 0, End: 10, Pixels: 5, Subpixels: 1, SweepTime: 0.001,
	}, scan.Hardware{Axis: ax, Reader: rd})
	if err != nil {
		t.Fatal(err)
	}
	r := chi.NewRouter()
	NewHTTPSession(sess).RT().Bind(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return sess, srv
}

func post(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestControlVerbsDriveTheLifecycle(t *testing.T) {
	sess, srv := newServer(t)

	resp := post(t, srv.URL+"/start")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start returned %d", resp.StatusCode)
	}
	resp.Body.Close()
	sess.Wait()

	resp, err := http.Get(srv.URL + "/state")
	if err != nil {
		t.Fatal(err)
	}
	var state struct {
		Str string `json:"str"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if state.Str != "Completed" {
		t.Errorf("expected Completed, got %q", state.Str)
	}

	resp, err = http.Get(srv.URL + "/frames")
	if err != nil {
		t.Fatal(err)
	}
	var frames struct {
		Int int `json:"int"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&frames); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if frames.Int != 1 {
		t.Errorf("expected 1 frame, got %d", frames.Int)
	}
}

func TestBufferReturnsAcquiredRows(t *testing.T) {
	sess, srv := newServer(t)
	resp := post(t, srv.URL+"/start")
	resp.Body.Close()
	sess.Wait()

	resp, err := http.Get(srv.URL + "/buffer")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var snap scan.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatal(err)
	}
	if len(snap.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(snap.Rows))
	}
	want := []float64{0, 4, 8, 12, 16}
	for i, px := range snap.Rows[0].Pixels {
		if px.Value != want[i] {
			t.Errorf("pixel %d = %g, expected %g", i, px.Value, want[i])
		}
	}
}

func TestLifecycleMisuseIsAConflict(t *testing.T) {
	_, srv := newServer(t)
	resp := post(t, srv.URL+"/pause")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("pausing an idle session returned %d, expected %d", resp.StatusCode, http.StatusConflict)
	}
}

func TestConfigureValidatesAndReplacesSettings(t *testing.T) {
	sess, srv := newServer(t)

	bad, _ := json.Marshal(scan.Settings{Start: 0, End: 10, Pixels: 0, SweepTime: 1})
	resp, err := http.Post(srv.URL+"/configure", "application/json", bytes.NewReader(bad))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("zero pixels returned %d, expected %d", resp.StatusCode, http.StatusBadRequest)
	}

	good, _ := json.Marshal(scan.Settings{Start: 0, End: 10, Pixels: 20, SweepTime: 0.002})
	resp, err = http.Post(srv.URL+"/configure", "application/json", bytes.NewReader(good))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("configure returned %d", resp.StatusCode)
	}
	if got := sess.Settings().Pixels; got != 20 {
		t.Errorf("expected 20 pixels after configure, got %d", got)
	}
}

func TestErrReportsLastFault(t *testing.T) {
	ax := sim.NewAxis(0, 5)
	rd := &sim.LinearReader{Axis: ax, Gain: 1}
	// End beyond the axis travel so the sweep faults partway through
	sess, err := scan.New(scan.Settings{
		Start: 0, End: 10, Pixels: 5, Subpixels: 1, SweepTime: 0.001,
	}, scan.Hardware{Axis: ax, Reader: rd})
	if err != nil {
		t.Fatal(err)
	}
	r := chi.NewRouter()
	NewHTTPSession(sess).RT().Bind(r)
	srv := httptest.NewServer(r)
	defer srv.Close()

	resp := post(t, srv.URL+"/start")
	resp.Body.Close()
	sess.Wait()

	if sess.State() != scan.Aborted {
		t.Fatalf("expected Aborted, got %v", sess.State())
	}
	resp, err = http.Get(srv.URL + "/err")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var msg struct {
		Str string `json:"str"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil {
		t.Fatal(err)
	}
	if msg.Str == "" {
		t.Error("expected a fault message, got none")
	}
}
