// Package concatenator joins encoded segments into the final cut file.
package concatenator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"cutter/ffmpeg"
	"cutter/models"
	"cutter/progress"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

// JoinRequest describes the join phase.
type JoinRequest struct {
	Segments      []models.SegmentResult
	OutputDir     string
	BaseName      string
	Extension     string  // including the dot
	TotalDuration float64 // seconds of output, for progress
	Progress      progress.Sink
}

// Concatenator handles merging encoded segments into a final output file
type Concatenator struct {
	transcoder ffmpeg.Transcoder
	logger     hclog.Logger
}

// NewConcatenator creates a new concatenator
func NewConcatenator(transcoder ffmpeg.Transcoder, logger hclog.Logger) *Concatenator {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Concatenator{
		transcoder: transcoder,
		logger:     logger.Named("concatenator"),
	}
}

// JoinedPath returns <dir>/<base>.cut<ext>.
func JoinedPath(dir, base, ext string) string {
	return filepath.Join(dir, base+".cut"+ext)
}

// Join produces the final file and returns its path.
//
// A single segment is renamed into place. Several segments are merged with
// ffmpeg's concat demuxer without re-encoding. Segments are never deleted
// here; on failure they stay on disk for the caller to clean up.
func (c *Concatenator) Join(ctx context.Context, req JoinRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", models.NewError(models.KindCancelled, "join", err)
	}

	segments, err := c.validateSegments(req.Segments)
	if err != nil {
		return "", models.NewError(models.KindJoinFailed, "join", fmt.Errorf("validation failed: %w", err))
	}

	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return "", models.NewError(models.KindJoinFailed, "join", fmt.Errorf("failed to create target directory: %w", err))
	}

	outputPath := JoinedPath(req.OutputDir, req.BaseName, req.Extension)
	sink := req.Progress
	if sink == nil {
		sink = progress.Discard
	}
	const message = "Joining segments ..."

	if len(segments) == 1 {
		c.logger.Info("single segment, renaming", "from", segments[0].OutputPath, "to", outputPath)
		if err := moveFile(segments[0].OutputPath, outputPath); err != nil {
			return "", models.NewError(models.KindJoinFailed, "join", fmt.Errorf("failed to move segment: %w", err))
		}
		sink.Update(progress.JoinHigh, message)
		return outputPath, nil
	}

	listPath, err := c.createConcatFile(req.OutputDir, segments)
	if err != nil {
		return "", models.NewError(models.KindJoinFailed, "join", fmt.Errorf("failed to create concat file: %w", err))
	}
	defer os.Remove(listPath)

	builder := NewJoinBuilder(listPath, outputPath)
	c.logger.Info("joining segments", "segments", len(segments), "output", outputPath)
	c.logger.Debug("join command", "command", builder.preview())

	window := progress.NewWindow(sink, progress.JoinLow, progress.JoinHigh, req.TotalDuration, message)
	window.Report(0)

	if err := c.transcoder.Run(ctx, builder.BuildArgs(), window.Report); err != nil {
		if rmErr := os.Remove(outputPath); rmErr != nil && !os.IsNotExist(rmErr) {
			c.logger.Warn("could not remove partial output", "path", outputPath, "error", rmErr)
		}
		return "", models.ProcessError(models.KindJoinFailed, "join", err)
	}

	// Verify output file was created
	if _, err := os.Stat(outputPath); err != nil {
		return "", models.NewError(models.KindJoinFailed, "join", fmt.Errorf("output file not created: %w", err))
	}

	window.Complete()
	return outputPath, nil
}

// rename is swapped in tests to simulate a cross-device move.
var rename = os.Rename

// moveFile renames from to to, copying across filesystems when the
// segment and target directories live on different mounts.
func moveFile(from, to string) error {
	err := rename(from, to)
	if err == nil || !errors.Is(err, syscall.EXDEV) {
		return err
	}

	src, err := os.Open(from)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(to, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(to)
		return fmt.Errorf("failed to copy %s: %w", from, err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(to)
		return err
	}
	return os.Remove(from)
}

// validateSegments orders segments by sequence and requires a complete,
// existing set.
func (c *Concatenator) validateSegments(segments []models.SegmentResult) ([]models.SegmentResult, error) {
	if len(segments) == 0 {
		return nil, fmt.Errorf("no segments provided")
	}

	sorted := append([]models.SegmentResult(nil), segments...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Sequence < sorted[j].Sequence
	})

	var missing []string
	for _, s := range sorted {
		if _, err := os.Stat(s.OutputPath); err != nil {
			missing = append(missing, s.OutputPath)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing segment files: %s", strings.Join(missing, ", "))
	}

	if err := checkForGaps(sorted); err != nil {
		return nil, err
	}
	return sorted, nil
}

// checkForGaps detects missing sequence numbers
func checkForGaps(sorted []models.SegmentResult) error {
	gaps := []int{}
	for i := 0; i < len(sorted)-1; i++ {
		current := sorted[i].Sequence
		next := sorted[i+1].Sequence
		if next == current {
			return fmt.Errorf("duplicate segment %d", current)
		}
		for seq := current + 1; seq < next; seq++ {
			gaps = append(gaps, seq)
		}
	}

	if len(gaps) > 0 {
		return fmt.Errorf("missing segments: %v", gaps)
	}
	return nil
}

// createConcatFile writes the list file for ffmpeg's concat demuxer next to
// the segments.
// Format: file '/path/to/show.001.ts'
//
//	file '/path/to/show.002.ts'
func (c *Concatenator) createConcatFile(dir string, segments []models.SegmentResult) (string, error) {
	listPath := filepath.Join(dir, fmt.Sprintf(".concat-%s.txt", uuid.NewString()))
	file, err := os.Create(listPath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	for _, s := range segments {
		absPath, err := filepath.Abs(s.OutputPath)
		if err != nil {
			os.Remove(listPath)
			return "", fmt.Errorf("failed to get absolute path for %s: %w", s.OutputPath, err)
		}

		// Escape single quotes in path (replace ' with '\'')
		escapedPath := strings.ReplaceAll(absPath, "'", "'\\''")

		if _, err := fmt.Fprintf(file, "file '%s'\n", escapedPath); err != nil {
			os.Remove(listPath)
			return "", fmt.Errorf("failed to write to concat file: %w", err)
		}
	}

	return listPath, nil
}
