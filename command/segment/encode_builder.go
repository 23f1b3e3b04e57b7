// Package segment builds the ffmpeg command that encodes one retained range
// of the source into a segment file.
package segment

import (
	"fmt"
	"path/filepath"
	"strconv"

	"cutter/command"
	"cutter/internal/timeutil"
	"cutter/models"
)

// EncodeBuilder builds the ffmpeg arguments for one EncodeJob.
type EncodeBuilder struct {
	job       *models.EncodeJob
	codecArgs []string
}

// NewEncodeBuilder creates a builder for job using the codec arguments
// resolved by the video policy.
func NewEncodeBuilder(job *models.EncodeJob, codecArgs []string) *EncodeBuilder {
	return &EncodeBuilder{job: job, codecArgs: codecArgs}
}

// BuildArgs constructs the arguments in the order
// -i in [-ss S -to E] <codec args> -map 0:i ... out.
//
// Seeking after -i decodes up to the start, which keeps the cut on the
// requested timestamp instead of the preceding keyframe.
func (b *EncodeBuilder) BuildArgs() []string {
	args := []string{"-i", b.job.InputPath}

	if b.job.Range != nil {
		args = append(args,
			"-ss", timeutil.FormatSeconds(b.job.Range.Start),
			"-to", timeutil.FormatSeconds(b.job.Range.End),
		)
	}

	args = append(args, b.codecArgs...)

	for _, index := range b.job.Streams {
		args = append(args, "-map", "0:"+strconv.Itoa(index))
	}

	return append(args, b.job.OutputPath)
}

// DryRun returns the command string without executing.
func (b *EncodeBuilder) DryRun() (string, error) {
	if err := b.job.Validate(); err != nil {
		return "", fmt.Errorf("invalid encode job: %w", err)
	}
	return command.Preview(b.BuildArgs()), nil
}

// GetTaskType returns the task type identifier
func (b *EncodeBuilder) GetTaskType() command.TaskType {
	return command.TaskTypeEncode
}

// GetInputPath returns the input file path
func (b *EncodeBuilder) GetInputPath() string {
	return b.job.InputPath
}

// GetOutputPath returns the output file path
func (b *EncodeBuilder) GetOutputPath() string {
	return b.job.OutputPath
}

// SegmentPath returns the path of segment sequence (1-based):
// <dir>/<base>.<NNN><ext>.
func SegmentPath(dir, base string, sequence int, ext string) string {
	return filepath.Join(dir, fmt.Sprintf("%s.%03d%s", base, sequence, ext))
}
