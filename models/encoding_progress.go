package models

import (
	"fmt"
	"time"
)

// EncodingProgress represents real-time encoding metrics from ffmpeg
type EncodingProgress struct {
	// Current position in the file
	Frame       int64   // Current frame number
	FPS         float64 // Frames per second being processed
	Quality     float64 // Quantizer of the video encoder (-1 when copying)
	CurrentTime string  // Current timestamp (HH:MM:SS.MS)
	Elapsed     float64 // CurrentTime in seconds

	// Performance metrics
	Bitrate string  // Current bitrate (e.g., "128.0kbits/s")
	Speed   float64 // Encoding speed multiplier (e.g., 2.34 means 2.34x realtime)

	// Size information
	Size string // Current output file size (e.g., "1024kB")

	// Progress calculation
	TotalDuration float64 // Total duration in seconds (for percentage calculation)
	Progress      float64 // Percentage complete (0-100)

	StartTime time.Time // When encoding started
	UpdatedAt time.Time // Last update timestamp
}

// NewEncodingProgress creates a new progress tracker
func NewEncodingProgress(totalDuration float64) *EncodingProgress {
	now := time.Now()
	return &EncodingProgress{
		TotalDuration: totalDuration,
		StartTime:     now,
		UpdatedAt:     now,
	}
}

// CalculateProgress updates the progress percentage based on current time
func (ep *EncodingProgress) CalculateProgress(currentSeconds float64) {
	ep.Elapsed = currentSeconds
	if ep.TotalDuration > 0 {
		ep.Progress = (currentSeconds / ep.TotalDuration) * 100
		if ep.Progress > 100 {
			ep.Progress = 100
		}
	}
	ep.UpdatedAt = time.Now()
}

// EstimatedTimeRemaining extrapolates the time since StartTime over the
// remaining share of Progress.
func (ep *EncodingProgress) EstimatedTimeRemaining() time.Duration {
	if ep.Progress <= 0 || ep.Progress >= 100 {
		return 0
	}

	elapsed := time.Since(ep.StartTime)
	totalEstimated := time.Duration(float64(elapsed) / (ep.Progress / 100))
	remaining := totalEstimated - elapsed

	if remaining < 0 {
		return 0
	}
	return remaining
}

// FormatSummary returns a human-readable summary of the progress
func (ep *EncodingProgress) FormatSummary() string {
	eta := ep.EstimatedTimeRemaining()
	return fmt.Sprintf(
		"Time: %s | Progress: %.1f%% | Speed: %.2fx | Bitrate: %s | Size: %s | ETA: %s",
		ep.CurrentTime,
		ep.Progress,
		ep.Speed,
		ep.Bitrate,
		ep.Size,
		FormatDuration(eta),
	)
}

// FormatDuration converts a duration to a human-readable string
func FormatDuration(d time.Duration) string {
	if d == 0 {
		return "calculating..."
	}

	seconds := int(d.Seconds())
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}

	minutes := seconds / 60
	seconds = seconds % 60

	if minutes < 60 {
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	}

	hours := minutes / 60
	minutes = minutes % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}
