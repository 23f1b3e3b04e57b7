// Package ffprobe provides utilities for extracting metadata from media files
// using the ffprobe command-line tool.
package ffprobe

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"

	"cutter/cutlist"
	"cutter/models"

	"github.com/hashicorp/go-hclog"
)

// Chapter represents a chapter marker in a media file.
type Chapter struct {
	ID        int64             `json:"id"`
	TimeBase  string            `json:"time_base"`
	Start     int64             `json:"start"`
	StartTime string            `json:"start_time"`
	End       int64             `json:"end"`
	EndTime   string            `json:"end_time"`
	Tags      map[string]string `json:"tags,omitempty"`
}

// Stream represents a media stream (audio, video, subtitle, etc.)
type Stream struct {
	Index              int               `json:"index"`
	CodecName          string            `json:"codec_name"`
	CodecType          string            `json:"codec_type"`
	CodecLongName      string            `json:"codec_long_name"`
	Width              int               `json:"width,omitempty"`
	Height             int               `json:"height,omitempty"`
	DisplayAspectRatio string            `json:"display_aspect_ratio,omitempty"`
	SampleRate         string            `json:"sample_rate,omitempty"`
	Channels           int               `json:"channels,omitempty"`
	ChannelLayout      string            `json:"channel_layout,omitempty"`
	Duration           string            `json:"duration,omitempty"`
	Disposition        map[string]int    `json:"disposition,omitempty"`
	Tags               map[string]string `json:"tags,omitempty"`
}

// Format represents the container format information.
type Format struct {
	Filename       string `json:"filename"`
	FormatName     string `json:"format_name"`
	FormatLongName string `json:"format_long_name"`
	Duration       string `json:"duration"`
	Size           string `json:"size"`
	BitRate        string `json:"bit_rate"`
}

// ProbeResult holds the complete metadata extracted from a media file.
//
// This includes format information, stream details, and chapter markers
// if present in the source file.
type ProbeResult struct {
	Chapters []Chapter `json:"chapters"`
	Streams  []Stream  `json:"streams"`
	Format   Format    `json:"format"`
}

// GetDuration returns the duration of the media file in seconds.
//
// Returns an error if the duration cannot be parsed.
func (pr *ProbeResult) GetDuration() (float64, error) {
	if pr.Format.Duration == "" {
		return 0, fmt.Errorf("duration not available in format metadata")
	}

	duration, err := strconv.ParseFloat(pr.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration '%s': %w", pr.Format.Duration, err)
	}

	return duration, nil
}

// HasChapters returns true if the media file contains chapter markers.
func (pr *ProbeResult) HasChapters() bool {
	return len(pr.Chapters) > 0
}

// GetChapterCount returns the number of chapters in the media file.
func (pr *ProbeResult) GetChapterCount() int {
	return len(pr.Chapters)
}

// GetChapters returns the chapters in a format compatible with cutlist.MediaInfo.
func (pr *ProbeResult) GetChapters() []cutlist.ChapterInfo {
	chapters := make([]cutlist.ChapterInfo, len(pr.Chapters))
	for i, ch := range pr.Chapters {
		chapters[i] = cutlist.ChapterInfo{
			StartTime: ch.StartTime,
			EndTime:   ch.EndTime,
		}
	}
	return chapters
}

// GetVideoStreams returns all video streams from the media file.
func (pr *ProbeResult) GetVideoStreams() []Stream {
	return pr.streamsOfType("video")
}

// GetAudioStreams returns all audio streams from the media file.
func (pr *ProbeResult) GetAudioStreams() []Stream {
	return pr.streamsOfType("audio")
}

// GetSubtitleStreams returns all subtitle streams from the media file.
func (pr *ProbeResult) GetSubtitleStreams() []Stream {
	return pr.streamsOfType("subtitle")
}

func (pr *ProbeResult) streamsOfType(codecType string) []Stream {
	var streams []Stream
	for _, stream := range pr.Streams {
		if stream.CodecType == codecType {
			streams = append(streams, stream)
		}
	}
	return streams
}

// VideoCodec returns the codec name of the first video stream, or "" if the
// file has no video.
func (pr *ProbeResult) VideoCodec() string {
	if video := pr.GetVideoStreams(); len(video) > 0 {
		return video[0].CodecName
	}
	return ""
}

// Descriptors converts the raw streams into typed stream descriptors,
// preserving ffprobe's stream order.
func (pr *ProbeResult) Descriptors() []models.StreamDescriptor {
	descriptors := make([]models.StreamDescriptor, 0, len(pr.Streams))
	for _, s := range pr.Streams {
		d := models.StreamDescriptor{
			Index:         s.Index,
			CodecType:     models.ParseCodecType(s.CodecType),
			CodecName:     s.CodecName,
			CodecLongName: s.CodecLongName,
			Language:      s.Tags["language"],
			Width:         s.Width,
			Height:        s.Height,
			AspectRatio:   s.DisplayAspectRatio,
			Channels:      s.Channels,
			ChannelLayout: s.ChannelLayout,
		}
		if len(s.Disposition) > 0 {
			d.Disposition = make(models.Disposition, len(s.Disposition))
			for flag, value := range s.Disposition {
				if value == 1 {
					d.Disposition[flag] = true
				}
			}
		}
		descriptors = append(descriptors, d)
	}
	return descriptors
}

// ParseReport decodes the JSON document printed by ffprobe.
func ParseReport(data []byte) (*ProbeResult, error) {
	var result ProbeResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe JSON output: %w", err)
	}
	return &result, nil
}

// Prober runs ffprobe.
type Prober struct {
	Path   string // ffprobe executable, "ffprobe" when empty
	Logger hclog.Logger
}

// NewProber creates a Prober for the given executable.
func NewProber(path string, logger hclog.Logger) *Prober {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Prober{Path: path, Logger: logger.Named("ffprobe")}
}

// Probe analyzes a media file and extracts its metadata using ffprobe.
//
// The function executes ffprobe with JSON output format and parses the result
// to extract duration, chapters, streams, and format information. Every
// failure is reported as a models.KindInspectionFailed error so that callers
// never mistake a broken probe for a file without streams.
//
// Example:
//
//	result, err := ffprobe.NewProber("ffprobe", logger).Probe(ctx, "/path/to/video.ts")
//	if err != nil {
//	    return err
//	}
//	duration, _ := result.GetDuration()
func (p *Prober) Probe(ctx context.Context, sourcePath string) (*ProbeResult, error) {
	if sourcePath == "" {
		return nil, models.NewError(models.KindInspectionFailed, "probe", fmt.Errorf("source path cannot be empty"))
	}

	executable := p.Path
	if executable == "" {
		executable = "ffprobe"
	}

	// -v quiet: suppress verbose output
	// -print_format json: output in JSON format
	// -show_chapters: include chapter information
	// -show_streams: include stream information
	// -show_format: include format information
	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_chapters",
		"-show_streams",
		"-show_format",
		sourcePath,
	}

	if p.Logger != nil {
		p.Logger.Debug("probing media", "path", sourcePath)
	}

	cmd := exec.CommandContext(ctx, executable, args...)
	output, err := cmd.Output()
	if err != nil {
		detail := ""
		if exitErr, ok := err.(*exec.ExitError); ok {
			detail = string(exitErr.Stderr)
		}
		return nil, models.NewError(models.KindInspectionFailed, "probe",
			fmt.Errorf("ffprobe failed: %w (output: %s)", err, detail))
	}

	result, err := ParseReport(output)
	if err != nil {
		return nil, models.NewError(models.KindInspectionFailed, "probe", err)
	}

	return result, nil
}
