package scan

import (
	"sync"
	"time"
)

// Pixel is one recorded sample in a row.  Elapsed is wall time since the
// session started; it is not adjusted for time spent paused, so a pause
// introduces a discontinuity in the timestamp series.
type Pixel struct {
	Value   float64       `json:"value"`
	Elapsed time.Duration `json:"elapsed"`
}

// Row is one completed sweep leg.
type Row struct {
	// Index is the row's position in the session plan; rows are appended in
	// strictly increasing Index order
	Index int `json:"index"`

	// Direction is the direction of travel that produced the row
	Direction Direction `json:"direction"`

	// SlowPosition is the slow-axis position of a raster row
	SlowPosition float64 `json:"slowPosition,omitempty"`

	Pixels []Pixel `json:"pixels"`
}

// Snapshot is a self-consistent copy of a buffer: either the fully appended
// state at the time of the read or a strict prefix of it, never a partial row.
type Snapshot struct {
	Settings Settings  `json:"settings"`
	Started  time.Time `json:"started"`
	Rows     []Row     `json:"rows"`
}

// Buffer accumulates completed rows during a scan.  Exactly one writer (the
// session worker) appends; any number of readers may snapshot concurrently,
// e.g. for live display.
type Buffer struct {
	mu       sync.RWMutex
	settings Settings
	started  time.Time
	rows     []Row
}

func (b *Buffer) append(r Row) {
	b.mu.Lock()
	b.rows = append(b.rows, r)
	b.mu.Unlock()
}

func (b *Buffer) reset() {
	b.mu.Lock()
	b.rows = nil
	b.started = time.Time{}
	b.mu.Unlock()
}

func (b *Buffer) markStarted(t time.Time) {
	b.mu.Lock()
	b.started = t
	b.mu.Unlock()
}

func (b *Buffer) setSettings(s Settings) {
	b.mu.Lock()
	b.settings = s
	b.mu.Unlock()
}

// Frames is the number of completed rows, cheap enough to poll
func (b *Buffer) Frames() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.rows)
}

// Snapshot deep-copies the buffer contents
func (b *Buffer) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	rows := make([]Row, len(b.rows))
	for i, r := range b.rows {
		px := make([]Pixel, len(r.Pixels))
		copy(px, r.Pixels)
		r.Pixels = px
		rows[i] = r
	}
	return Snapshot{Settings: b.settings, Started: b.started, Rows: rows}
}
