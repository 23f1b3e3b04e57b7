// Package segmenter encodes the retained ranges of a recording into numbered
// segment files, one ffmpeg invocation per range.
package segmenter

import (
	"context"
	"fmt"
	"strings"

	"cutter/command"
	"cutter/command/segment"
	"cutter/command/video"
	"cutter/cutlist"
	"cutter/ffmpeg"
	"cutter/internal/timeutil"
	"cutter/models"
	"cutter/progress"

	"github.com/hashicorp/go-hclog"
)

// EncodeRequest describes one encode phase.
type EncodeRequest struct {
	InputPath string
	// Ranges to keep, ascending and non-overlapping. Empty means the whole
	// source is processed as one job without seeking.
	Ranges           []models.CutRange
	Streams          models.StreamSelection
	SourceDuration   float64 // seconds, used when Ranges is empty
	SourceVideoCodec string
	OutputDir        string
	BaseName         string
	Extension        string // including the dot
	Progress         progress.Sink
}

// EncodeResult lists the segments written so far.
type EncodeResult struct {
	Segments      []models.SegmentResult
	TotalDuration float64
}

// Encoder runs the encode phase.
type Encoder struct {
	transcoder ffmpeg.Transcoder
	policy     video.Policy
	logger     hclog.Logger
}

// NewEncoder creates an Encoder.
func NewEncoder(transcoder ffmpeg.Transcoder, policy video.Policy, logger hclog.Logger) *Encoder {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Encoder{
		transcoder: transcoder,
		policy:     policy,
		logger:     logger.Named("segmenter"),
	}
}

// Jobs expands a request into its encode jobs, in output order.
func (e *Encoder) Jobs(req EncodeRequest) ([]models.EncodeJob, error) {
	if strings.TrimSpace(req.InputPath) == "" {
		return nil, models.NewError(models.KindInvalidInput, "plan segments", fmt.Errorf("input path cannot be empty"))
	}
	if len(req.Streams) == 0 {
		return nil, models.NewError(models.KindNoStreamsSelected, "plan segments", fmt.Errorf("no streams to map"))
	}
	if err := cutlist.ValidateRanges(req.Ranges); err != nil {
		return nil, models.NewError(models.KindInvalidInput, "plan segments", err)
	}

	if len(req.Ranges) == 0 {
		return []models.EncodeJob{{
			Sequence:   1,
			InputPath:  req.InputPath,
			Streams:    req.Streams,
			OutputPath: segment.SegmentPath(req.OutputDir, req.BaseName, 1, req.Extension),
		}}, nil
	}

	jobs := make([]models.EncodeJob, len(req.Ranges))
	for i := range req.Ranges {
		r := req.Ranges[i]
		jobs[i] = models.EncodeJob{
			Sequence:   i + 1,
			InputPath:  req.InputPath,
			Range:      &r,
			Streams:    req.Streams,
			OutputPath: segment.SegmentPath(req.OutputDir, req.BaseName, i+1, req.Extension),
		}
	}
	return jobs, nil
}

// Commands returns the argument builders for every job of req.
func (e *Encoder) Commands(req EncodeRequest) ([]command.Command, error) {
	jobs, err := e.Jobs(req)
	if err != nil {
		return nil, err
	}
	codecArgs := e.policy.CodecArgs(req.SourceVideoCodec)
	builders := make([]command.Command, len(jobs))
	for i := range jobs {
		builders[i] = segment.NewEncodeBuilder(&jobs[i], codecArgs)
	}
	return builders, nil
}

// Encode runs one ffmpeg invocation per job, strictly in order.
//
// Progress is reported into [progress.EncodeLow, progress.EncodeHigh] in
// proportion to each job's share of the total duration. On failure the
// segments completed so far are returned together with the error so that the
// caller can remove them.
func (e *Encoder) Encode(ctx context.Context, req EncodeRequest) (*EncodeResult, error) {
	jobs, err := e.Jobs(req)
	if err != nil {
		return nil, err
	}

	durations := make([]float64, len(jobs))
	total := 0.0
	for i, job := range jobs {
		if job.Range != nil {
			durations[i] = job.Range.Duration()
		} else {
			durations[i] = req.SourceDuration
		}
		total += durations[i]
	}

	reencode := e.policy.Reencode(req.SourceVideoCodec)
	codecArgs := e.policy.CodecArgs(req.SourceVideoCodec)
	e.logger.Info("encoding", "input", req.InputPath, "segments", len(jobs),
		"duration", timeutil.FormatClock(total), "reencode", reencode)

	result := &EncodeResult{Segments: make([]models.SegmentResult, 0, len(jobs))}
	processed := 0.0
	span := float64(progress.EncodeHigh - progress.EncodeLow)

	for i := range jobs {
		job := &jobs[i]
		if err := ctx.Err(); err != nil {
			return result, models.NewError(models.KindCancelled, fmt.Sprintf("encode segment %d", job.Sequence), err)
		}

		low, high := float64(progress.EncodeLow), float64(progress.EncodeHigh)
		if total > 0 {
			low = progress.EncodeLow + span*processed/total
			high = progress.EncodeLow + span*(processed+durations[i])/total
		}
		window := progress.NewWindow(req.Progress, low, high, durations[i],
			fmt.Sprintf("Encoding segment %d of %d ...", job.Sequence, len(jobs)))
		window.Report(0)

		builder := segment.NewEncodeBuilder(job, codecArgs)
		preview, err := builder.DryRun()
		if err != nil {
			return result, models.NewError(models.KindInvalidInput, fmt.Sprintf("encode segment %d", job.Sequence), err)
		}
		e.logger.Debug("segment command", "segment", job.Sequence, "task", builder.GetTaskType(), "command", preview)

		if err := e.transcoder.Run(ctx, builder.BuildArgs(), window.Report); err != nil {
			e.logger.Error("segment failed", "segment", job.Sequence, "error", err)
			return result, models.ProcessError(models.KindEncodeFailed, fmt.Sprintf("encode segment %d", job.Sequence), err)
		}
		window.Complete()

		segmentResult, err := models.NewSegmentResult(job.Sequence, job.OutputPath, durations[i])
		if err != nil {
			return result, models.NewError(models.KindEncodeFailed, fmt.Sprintf("encode segment %d", job.Sequence), err)
		}
		result.Segments = append(result.Segments, *segmentResult)
		processed += durations[i]
		result.TotalDuration = processed

		e.logger.Info("segment done", "segment", job.Sequence, "output", job.OutputPath)
	}

	return result, nil
}
