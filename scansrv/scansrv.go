// Package scansrv maps a yaml config onto a tree of scan sessions served
// over HTTP.  Each configured session gets simulated or retrying hardware
// built from its setup block and is mounted at its endpoint.
package scansrv

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"gopkg.in/yaml.v2"

	"github.com/qt3uw/goscan/generichttp"
	"github.com/qt3uw/goscan/generichttp/scanctl"
	"github.com/qt3uw/goscan/scan"
	"github.com/qt3uw/goscan/sim"
)

// Minmax holds the travel limits of an axis
type Minmax struct {
	Min float64 `yaml:"Min"`
	Max float64 `yaml:"Max"`
}

// ReaderSetup describes the detector attached to a session.
type ReaderSetup struct {
	// Type selects the reader model, "linear" or "peak"
	Type string `yaml:"Type"`

	// Gain and Offset parameterize a linear reader
	Gain   float64 `yaml:"Gain"`
	Offset float64 `yaml:"Offset"`

	// Center, Width, Amplitude, and Background parameterize a peak reader
	Center     float64 `yaml:"Center"`
	Width      float64 `yaml:"Width"`
	Amplitude  float64 `yaml:"Amplitude"`
	Background float64 `yaml:"Background"`

	// Realtime makes samples block for their integration time
	Realtime bool `yaml:"Realtime"`
}

// SessionSetup holds the initialization parameters for one scan session.
type SessionSetup struct {
	// Endpoint is the path the session routes will be served under,
	// ex. Endpoint="scan/tisapph" produces routes of /scan/tisapph/start, etc.
	Endpoint string `yaml:"Endpoint"`

	// Axis bounds the fast axis travel
	Axis Minmax `yaml:"Axis"`

	// Slow bounds the slow axis travel, omit for 1-D sessions
	Slow *Minmax `yaml:"Slow"`

	Reader ReaderSetup `yaml:"Reader"`

	// Repump attaches an auxiliary switch to the session
	Repump bool `yaml:"Repump"`

	// Retry wraps the fast axis in retry-on-failure
	Retry bool `yaml:"Retry"`

	// Settings is the initial sweep configuration
	Settings scan.Settings `yaml:"Settings"`
}

// Config holds the initialization parameters for the whole server.  It is to
// be populated by a yaml unmarshal call.
type Config struct {
	// Addr is the address to listen at
	Addr string `yaml:"Addr"`

	// Sessions is the list of scan sessions to set up
	Sessions []SessionSetup `yaml:"Sessions"`
}

// LoadYaml converts a (path to a) yaml file into a Config struct
func LoadYaml(path string) (Config, error) {
	cfg := Config{}
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	err = yaml.NewDecoder(f).Decode(&cfg)
	return cfg, err
}

// buildReader constructs the reader described by setup, sampling ax.
func buildReader(setup ReaderSetup, ax *sim.Axis) (scan.Reader, error) {
	switch strings.ToLower(setup.Type) {
	case "linear", "":
		gain := setup.Gain
		if gain == 0 {
			gain = 1
		}
		return &sim.LinearReader{Axis: ax, Gain: gain, Offset: setup.Offset}, nil
	case "peak", "lorentzian":
		rd := sim.NewPeakReader(ax, setup.Center, setup.Width, setup.Amplitude, setup.Background)
		rd.Realtime = setup.Realtime
		return rd, nil
	default:
		return nil, fmt.Errorf("reader type %q not understood", setup.Type)
	}
}

// BuildSession constructs the session described by setup.
func BuildSession(setup SessionSetup) (*scan.Session, error) {
	ax := sim.NewAxis(setup.Axis.Min, setup.Axis.Max)
	rd, err := buildReader(setup.Reader, ax)
	if err != nil {
		return nil, err
	}
	hw := scan.Hardware{Axis: ax, Reader: rd}
	if setup.Retry {
		hw.Axis = &sim.RetryAxis{Inner: ax}
	}
	if setup.Slow != nil {
		hw.Slow = sim.NewAxis(setup.Slow.Min, setup.Slow.Max)
	}
	if setup.Repump {
		hw.Aux = &sim.Switch{Realtime: setup.Reader.Realtime}
	}
	return scan.New(setup.Settings, hw)
}

// BuildMux constructs a session per config entry and mounts each at its
// endpoint.  The mux serves a special route, /endpoints, which returns a map
// of every mounted stem to its routes as JSON.
func BuildMux(c Config) (chi.Router, error) {
	root := chi.NewRouter()
	root.Use(middleware.Logger)
	supergraph := map[string][]string{}

	for _, setup := range c.Sessions {
		sess, err := BuildSession(setup)
		if err != nil {
			return nil, fmt.Errorf("session %s: %w", setup.Endpoint, err)
		}
		httper := scanctl.NewHTTPSession(sess)

		stem := generichttp.SubMuxSanitize(setup.Endpoint)
		supergraph[stem] = httper.RT().Endpoints()

		r := chi.NewRouter()
		httper.RT().Bind(r)
		root.Mount(stem, r)
	}
	root.Get("/endpoints", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		err := json.NewEncoder(w).Encode(supergraph)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
	return root, nil
}
