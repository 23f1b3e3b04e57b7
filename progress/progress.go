// Package progress maps the self-reported progress of individual ffmpeg jobs
// onto one pipeline-wide percentage.
//
// Every phase owns a fixed slice of the 0-100 scale. A Window translates the
// elapsed time of one job into its slice, and a Tracker sits in front of the
// caller's Sink so that the visible value never goes backwards even though
// each job restarts its own clock.
package progress

import "sync"

// Phase budgets, in percent.
const (
	EncodeLow   = 0
	EncodeHigh  = 80
	JoinLow     = 80
	JoinHigh    = 98
	CleanupLow  = 98
	CleanupHigh = 100
)

// Sink receives progress updates.
type Sink interface {
	Update(percent int, message string)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(percent int, message string)

// Update calls f.
func (f SinkFunc) Update(percent int, message string) {
	f(percent, message)
}

// Discard is a Sink that drops every update.
var Discard Sink = SinkFunc(func(int, string) {})

// Tracker forwards updates to a Sink, clamped to 0-100 and never lower than
// the last forwarded value.
type Tracker struct {
	mu   sync.Mutex
	sink Sink
	last int
}

// NewTracker wraps sink. A nil sink discards updates.
func NewTracker(sink Sink) *Tracker {
	if sink == nil {
		sink = Discard
	}
	return &Tracker{sink: sink}
}

// Update forwards percent, raised to the last reported value if needed.
func (t *Tracker) Update(percent int, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if percent > 100 {
		percent = 100
	}
	if percent < t.last {
		percent = t.last
	}
	t.last = percent
	t.sink.Update(percent, message)
}

// Percent returns the last forwarded value.
func (t *Tracker) Percent() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

// Window maps elapsed seconds of one external job onto [Low, High].
type Window struct {
	Low     float64
	High    float64
	Total   float64 // seconds that correspond to reaching High
	Message string
	sink    Sink
}

// NewWindow creates a window reporting into sink.
func NewWindow(sink Sink, low, high, total float64, message string) *Window {
	if sink == nil {
		sink = Discard
	}
	return &Window{Low: low, High: high, Total: total, Message: message, sink: sink}
}

// Level returns the percentage for the given elapsed time, bounded to the window.
func (w *Window) Level(elapsed float64) float64 {
	if w.Total <= 0 {
		return w.Low
	}
	fraction := elapsed / w.Total
	if fraction < 0 {
		fraction = 0
	}
	if fraction >= 1 {
		return w.High
	}
	return w.Low + fraction*(w.High-w.Low)
}

// Report publishes the level for elapsed seconds.
func (w *Window) Report(elapsed float64) {
	w.sink.Update(int(w.Level(elapsed)), w.Message)
}

// Complete publishes the top of the window.
func (w *Window) Complete() {
	w.sink.Update(int(w.High), w.Message)
}
