// Package ffmpeg runs the ffmpeg executable and follows its progress output.
package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"cutter/models"

	"github.com/hashicorp/go-hclog"
)

// DefaultKillGrace is how long ffmpeg gets to exit after an interrupt before
// it is killed.
const DefaultKillGrace = 5 * time.Second

// Transcoder runs one ffmpeg invocation to completion.
//
// onProgress receives the position ffmpeg reports, in seconds of output, and
// may be nil. Implementations stop the process when ctx is done.
type Transcoder interface {
	Run(ctx context.Context, args []string, onProgress func(elapsedSeconds float64)) error
}

// ExitError reports a non-zero ffmpeg exit.
type ExitError struct {
	Code     int
	LastLine string // last line ffmpeg printed
}

func (e *ExitError) Error() string {
	if e.LastLine == "" {
		return fmt.Sprintf("ffmpeg exited with code %d", e.Code)
	}
	return fmt.Sprintf("ffmpeg exited with code %d: %s", e.Code, e.LastLine)
}

// Runner is the Transcoder backed by a local ffmpeg executable.
type Runner struct {
	Path      string        // ffmpeg executable, "ffmpeg" when empty
	Timeout   time.Duration // per invocation, 0 disables
	KillGrace time.Duration // between interrupt and kill
	Logger    hclog.Logger

	parser *ProgressParser
}

// NewRunner creates a Runner.
func NewRunner(path string, timeout, killGrace time.Duration, logger hclog.Logger) *Runner {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if killGrace <= 0 {
		killGrace = DefaultKillGrace
	}
	return &Runner{
		Path:      path,
		Timeout:   timeout,
		KillGrace: killGrace,
		Logger:    logger.Named("ffmpeg"),
		parser:    NewProgressParser(),
	}
}

// Run executes ffmpeg with -hide_banner -y prepended to args.
//
// Errors are *models.Error of kind KindCancelled when ctx is cancelled,
// KindTimeout when the per-invocation timeout fires, and *ExitError for a
// plain non-zero exit.
func (r *Runner) Run(ctx context.Context, args []string, onProgress func(elapsedSeconds float64)) error {
	executable := r.Path
	if executable == "" {
		executable = "ffmpeg"
	}
	logger := r.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	parser := r.parser
	if parser == nil {
		parser = NewProgressParser()
	}

	runCtx := ctx
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	fullArgs := append([]string{"-hide_banner", "-y"}, args...)
	logger.Debug("running", "args", strings.Join(fullArgs, " "))

	cmd := exec.CommandContext(runCtx, executable, fullArgs...)
	// Ask ffmpeg to finish the container first; the kill follows after WaitDelay.
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = r.KillGrace

	reader, writer := io.Pipe()
	cmd.Stdout = writer
	cmd.Stderr = writer

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	type streamResult struct {
		lastLine string
		err      error
	}
	done := make(chan streamResult, 1)
	go func() {
		progress := models.NewEncodingProgress(0)
		lastLine, err := parser.StreamProgress(reader, progress, func(p *models.EncodingProgress) {
			logger.Trace("progress", "summary", p.FormatSummary())
			if onProgress != nil {
				onProgress(p.Elapsed)
			}
		})
		// keep draining so ffmpeg never blocks on a full pipe
		_, _ = io.Copy(io.Discard, reader)
		done <- streamResult{lastLine: lastLine, err: err}
	}()

	waitErr := cmd.Wait()
	writer.Close()
	result := <-done

	if waitErr == nil {
		if result.err != nil {
			logger.Warn("could not read ffmpeg output", "error", result.err)
		}
		return nil
	}

	switch {
	case ctx.Err() != nil:
		logger.Info("ffmpeg cancelled", "last_line", result.lastLine)
		return models.NewError(models.KindCancelled, "ffmpeg", ctx.Err())
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		logger.Warn("ffmpeg timed out", "timeout", r.Timeout, "last_line", result.lastLine)
		return models.NewError(models.KindTimeout, "ffmpeg",
			fmt.Errorf("no result within %s: %w", r.Timeout, runCtx.Err()))
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		logger.Debug("ffmpeg failed", "code", exitErr.ExitCode(), "last_line", result.lastLine)
		return &ExitError{Code: exitErr.ExitCode(), LastLine: result.lastLine}
	}
	return fmt.Errorf("ffmpeg: %w", waitErr)
}
