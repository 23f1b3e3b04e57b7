// Package ffmpegtest provides a scripted ffmpeg.Transcoder for tests.
package ffmpegtest

import (
	"context"
	"os"
	"sync"

	"cutter/models"
)

// Fake records every invocation and, unless told to fail, writes a small file
// at the output path (the last argument) the way ffmpeg would.
type Fake struct {
	mu    sync.Mutex
	Calls [][]string

	// Progress lists elapsed values reported during each successful call.
	Progress []float64
	// FailOn maps a 1-based call number to the error it returns.
	FailOn map[int]error
	// Before runs at the start of every call, e.g. to cancel a context.
	Before func(call int, args []string)
	// SkipOutput suppresses writing the output file.
	SkipOutput bool
}

// Run implements ffmpeg.Transcoder.
func (f *Fake) Run(ctx context.Context, args []string, onProgress func(float64)) error {
	f.mu.Lock()
	f.Calls = append(f.Calls, append([]string(nil), args...))
	call := len(f.Calls)
	f.mu.Unlock()

	if f.Before != nil {
		f.Before(call, args)
	}
	if err := ctx.Err(); err != nil {
		return models.NewError(models.KindCancelled, "ffmpeg", err)
	}
	if err, ok := f.FailOn[call]; ok {
		return err
	}

	for _, elapsed := range f.Progress {
		if onProgress != nil {
			onProgress(elapsed)
		}
	}

	if !f.SkipOutput && len(args) > 0 {
		if err := os.WriteFile(args[len(args)-1], []byte("segment"), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// CallCount returns the number of invocations so far.
func (f *Fake) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Calls)
}

// Recorder is a progress sink that remembers every update.
type Recorder struct {
	mu       sync.Mutex
	Percents []int
	Messages []string
}

// Update implements progress.Sink.
func (r *Recorder) Update(percent int, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Percents = append(r.Percents, percent)
	r.Messages = append(r.Messages, message)
}

// Last returns the most recent percentage, or -1 when nothing was reported.
func (r *Recorder) Last() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Percents) == 0 {
		return -1
	}
	return r.Percents[len(r.Percents)-1]
}

// Monotonic reports whether the recorded percentages never decrease.
func (r *Recorder) Monotonic() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := 1; i < len(r.Percents); i++ {
		if r.Percents[i] < r.Percents[i-1] {
			return false
		}
	}
	return true
}
