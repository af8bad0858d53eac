package scansrv

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/qt3uw/goscan/scan"
)

const sampleYaml = `
Addr: :8000
Sessions:
  - Endpoint: scan/tisapph
    Axis:
      Min: 0
      Max: 100
    Reader:
      Type: peak
      Center: 50
      Width: 2
      Amplitude: 10000
      Background: 100
    Repump: true
    Settings:
      start: 40
      end: 60
      pixels: 50
      subpixels: 2
      sweepTime: 0.01
  - Endpoint: scan/confocal
    Axis:
      Min: 0
      Max: 10
    Slow:
      Min: 0
      Max: 10
    Reader:
      Type: linear
      Gain: 2
    Settings:
      start: 0
      end: 10
      pixels: 10
      sweepTime: 0.01
      rows: 10
      slowEnd: 10
`

func writeConfig(t *testing.T) string {
	t.Helper()
	fn := filepath.Join(t.TempDir(), "scansrv.yml")
	if err := os.WriteFile(fn, []byte(sampleYaml), 0666); err != nil {
		t.Fatal(err)
	}
	return fn
}

func TestLoadYaml(t *testing.T) {
	cfg, err := LoadYaml(writeConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":8000" {
		t.Errorf("bad addr %q", cfg.Addr)
	}
	if len(cfg.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(cfg.Sessions))
	}
	first := cfg.Sessions[0]
	if first.Endpoint != "scan/tisapph" || first.Reader.Type != "peak" || !first.Repump {
		t.Errorf("first session parsed wrong: %+v", first)
	}
	if first.Settings.Pixels != 50 || first.Settings.Subpixels != 2 {
		t.Errorf("settings parsed wrong: %+v", first.Settings)
	}
	second := cfg.Sessions[1]
	if second.Slow == nil || second.Slow.Max != 10 {
		t.Errorf("slow axis parsed wrong: %+v", second.Slow)
	}
}

func TestBuildMuxMountsSessions(t *testing.T) {
	cfg, err := LoadYaml(writeConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	mux, err := BuildMux(cfg)
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/scan/tisapph/state")
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
	if state.Str != "Idle" {
		t.Errorf("expected Idle, got %q", state.Str)
	}

	resp, err = http.Get(srv.URL + "/endpoints")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var graph map[string][]string
	if err := json.NewDecoder(resp.Body).Decode(&graph); err != nil {
		t.Fatal(err)
	}
	for _, stem := range []string{"/scan/tisapph", "/scan/confocal"} {
		if len(graph[stem]) == 0 {
			t.Errorf("expected %s in the endpoint graph, got %v", stem, graph)
		}
	}
}

func TestBuildSessionRejectsUnknownReader(t *testing.T) {
	_, err := BuildSession(SessionSetup{
		Endpoint: "scan/bad",
		Axis:     Minmax{Min: 0, Max: 1},
		Reader:   ReaderSetup{Type: "apd"},
		Settings: scan.Settings{Start: 0, End: 1, Pixels: 2, SweepTime: 1},
	})
	if err == nil {
		t.Error("expected an error for an unknown reader type")
	}
}

func TestBuildSessionRasterGetsSlowAxis(t *testing.T) {
	sess, err := BuildSession(SessionSetup{
		Endpoint: "scan/confocal",
		Axis:     Minmax{Min: 0, Max: 10},
		Slow:     &Minmax{Min: 0, Max: 10},
		Settings: scan.Settings{Start: 0, End: 10, Pixels: 5, SweepTime: 0.001, Rows: 2, SlowEnd: 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := sess.Start(); err != nil {
		t.Fatal(err)
	}
	sess.Wait()
	if sess.State() != scan.Completed {
		t.Fatalf("expected Completed, got %v (err %v)", sess.State(), sess.Err())
	}
	if sess.Frames() != 2 {
		t.Errorf("expected 2 frames, got %d", sess.Frames())
	}
}
