// Package scanctl exposes a scan session over HTTP.  Control verbs are POSTs
// with no body except configure, which takes the settings JSON.  Acquired data
// is read back as JSON snapshots of the session buffer.
package scanctl

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/qt3uw/goscan/generichttp"
	"github.com/qt3uw/goscan/scan"
)

// HTTPSession wraps a scan session in an HTTP interface.
type HTTPSession struct {
	Session *scan.Session

	RouteTable generichttp.RouteTable
}

// NewHTTPSession returns an HTTP wrapper around sess with the route table
// populated.
func NewHTTPSession(sess *scan.Session) HTTPSession {
	h := HTTPSession{Session: sess}
	rt := generichttp.RouteTable{
		generichttp.MethodPath{Method: http.MethodPost, Path: "/configure"}: h.Configure,
		generichttp.MethodPath{Method: http.MethodPost, Path: "/start"}:     h.verb(sess.Start),
		generichttp.MethodPath{Method: http.MethodPost, Path: "/pause"}:     h.verb(sess.Pause),
		generichttp.MethodPath{Method: http.MethodPost, Path: "/resume"}:    h.verb(sess.Resume),
		generichttp.MethodPath{Method: http.MethodPost, Path: "/abort"}:     h.verb(sess.Abort),
		generichttp.MethodPath{Method: http.MethodPost, Path: "/reset"}:     h.verb(sess.Reset),
		generichttp.MethodPath{Method: http.MethodGet, Path: "/state"}:      generichttp.GetString(h.state),
		generichttp.MethodPath{Method: http.MethodGet, Path: "/err"}:        generichttp.GetString(h.lastErr),
		generichttp.MethodPath{Method: http.MethodGet, Path: "/frames"}:     generichttp.GetInt(h.frames),
		generichttp.MethodPath{Method: http.MethodGet, Path: "/settings"}:   h.Settings,
		generichttp.MethodPath{Method: http.MethodGet, Path: "/buffer"}:     h.Buffer,
	}
	h.RouteTable = rt
	return h
}

// RT satisfies generichttp.HTTPer
func (h HTTPSession) RT() generichttp.RouteTable {
	return h.RouteTable
}

// httpStatus maps session errors onto status codes.  Lifecycle misuse is a
// conflict with the current state, bad settings are a bad request.
func httpStatus(err error) int {
	var se *scan.StateError
	if errors.As(err, &se) {
		return http.StatusConflict
	}
	var ce *scan.ConfigurationError
	if errors.As(err, &ce) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (h HTTPSession) verb(fcn func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fcn(); err != nil {
			http.Error(w, err.Error(), httpStatus(err))
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// Configure replaces the session settings from the request body
func (h HTTPSession) Configure(w http.ResponseWriter, r *http.Request) {
	var set scan.Settings
	err := json.NewDecoder(r.Body).Decode(&set)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Session.Configure(set); err != nil {
		http.Error(w, err.Error(), httpStatus(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

// state is the lifecycle state, served as json {'str': value}
func (h HTTPSession) state() (string, error) {
	return h.Session.State().String(), nil
}

// lastErr is the fault that ended the last run, or the empty string,
// served as json {'str': value}
func (h HTTPSession) lastErr() (string, error) {
	if err := h.Session.Err(); err != nil {
		return err.Error(), nil
	}
	return "", nil
}

// frames is the number of completed rows, served as json {'int': value}
func (h HTTPSession) frames() (int, error) {
	return h.Session.Frames(), nil
}

// Settings returns the active settings as JSON
func (h HTTPSession) Settings(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.Session.Settings()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Buffer returns a snapshot of the acquired rows as JSON
func (h HTTPSession) Buffer(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.Session.Snapshot()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
