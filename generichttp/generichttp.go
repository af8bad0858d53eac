// Package generichttp defines the JSON envelopes and route plumbing used to
// wrap devices and scan sessions in an extensible HTTP interface.
package generichttp

import (
	"encoding/json"
	"fmt"
	"go/types"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi"
)

// MethodPath is a route table key: an HTTP method paired with a path pattern.
type MethodPath struct {
	Method string
	Path   string
}

// RouteTable maps method+path pairs to their handlers.
type RouteTable map[MethodPath]http.HandlerFunc

// Bind attaches every route in the table to r.
func (rt RouteTable) Bind(r chi.Router) {
	for mp, handler := range rt {
		r.Method(mp.Method, mp.Path, handler)
	}
}

// Endpoints lists the routes in the table, sorted for stable display.
func (rt RouteTable) Endpoints() []string {
	eps := make([]string, 0, len(rt))
	for mp := range rt {
		eps = append(eps, mp.Method+" "+mp.Path)
	}
	sort.Strings(eps)
	return eps
}

// HTTPer is a type which can supply a route table for binding.
type HTTPer interface {
	RT() RouteTable
}

// SubMuxSanitize prepares a URL stem for mounting a submux,
// "scan/tisapph" => "/scan/tisapph"
func SubMuxSanitize(stem string) string {
	if !strings.HasPrefix(stem, "/") {
		stem = "/" + stem
	}
	return strings.TrimSuffix(stem, "/")
}

// FloatT is a struct holding a single float64, used for json exchanges
type FloatT struct {
	F64 float64 `json:"f64"`
}

// IntT is a struct holding a single int, used for json exchanges
type IntT struct {
	Int int `json:"int"`
}

// StrT is a struct holding a single string, used for json exchanges
type StrT struct {
	Str string `json:"str"`
}

// BoolT is a struct holding a single bool, used for json exchanges
type BoolT struct {
	Bool bool `json:"bool"`
}

// HumanPayload holds one value of a basic type and knows which field is live.
type HumanPayload struct {
	// T is the type of data actually contained in the payload
	T types.BasicKind

	Bool   bool
	Int    int
	Float  float64
	String string
}

// EncodeAndRespond writes the payload to w as its single-field json envelope.
func (hp HumanPayload) EncodeAndRespond(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	var err error
	switch hp.T {
	case types.Bool:
		err = json.NewEncoder(w).Encode(BoolT{Bool: hp.Bool})
	case types.Int:
		err = json.NewEncoder(w).Encode(IntT{Int: hp.Int})
	case types.Float64:
		err = json.NewEncoder(w).Encode(FloatT{F64: hp.Float})
	case types.String:
		err = json.NewEncoder(w).Encode(StrT{Str: hp.String})
	default:
		http.Error(w, fmt.Sprintf("payload kind %v not supported", hp.T), http.StatusInternalServerError)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// GetString calls a string-getting function and returns the response
// as json {'str': value}
func GetString(fcn func() (string, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := fcn()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		hp := HumanPayload{T: types.String, String: s}
		hp.EncodeAndRespond(w, r)
	}
}

// GetInt calls an int-getting function and returns the response
// as json {'int': value}
func GetInt(fcn func() (int, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		i, err := fcn()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		hp := HumanPayload{T: types.Int, Int: i}
		hp.EncodeAndRespond(w, r)
	}
}
