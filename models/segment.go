package models

import (
	"fmt"
	"strings"
)

// EncodeJob describes one ffmpeg invocation producing one segment.
//
// Range is nil when the whole source is processed as one implicit range.
type EncodeJob struct {
	Sequence   int             `json:"sequence"` // 1-based
	InputPath  string          `json:"input_path"`
	Range      *CutRange       `json:"range,omitempty"`
	Streams    StreamSelection `json:"streams"`
	OutputPath string          `json:"output_path"`
}

// Validate checks that the job can be turned into an ffmpeg command.
func (j *EncodeJob) Validate() error {
	if strings.TrimSpace(j.InputPath) == "" {
		return fmt.Errorf("input_path cannot be empty")
	}
	if strings.TrimSpace(j.OutputPath) == "" {
		return fmt.Errorf("output_path cannot be empty")
	}
	if j.Sequence < 1 {
		return fmt.Errorf("sequence must be 1-based")
	}
	if len(j.Streams) == 0 {
		return fmt.Errorf("at least one stream must be mapped")
	}
	if j.Range != nil {
		if err := j.Range.Validate(); err != nil {
			return fmt.Errorf("invalid range: %w", err)
		}
	}
	return nil
}

// SegmentResult is the outcome of one successful encode job.
type SegmentResult struct {
	Sequence   int     `json:"sequence"`
	OutputPath string  `json:"output_path"`
	Duration   float64 `json:"duration"`
}

// NewSegmentResult creates a SegmentResult with validation.
//
// Returns an error if outputPath is empty or whitespace-only, or if the
// duration is negative.
func NewSegmentResult(sequence int, outputPath string, duration float64) (*SegmentResult, error) {
	if strings.TrimSpace(outputPath) == "" {
		return nil, fmt.Errorf("invalid segment result: output_path cannot be empty")
	}
	if duration < 0 {
		return nil, fmt.Errorf("invalid segment result: duration cannot be negative")
	}
	return &SegmentResult{Sequence: sequence, OutputPath: outputPath, Duration: duration}, nil
}

// SegmentPaths extracts output paths in order.
func SegmentPaths(results []SegmentResult) []string {
	paths := make([]string, len(results))
	for i, r := range results {
		paths[i] = r.OutputPath
	}
	return paths
}
