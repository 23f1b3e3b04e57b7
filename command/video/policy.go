// Package video decides whether the video stream is copied or re-encoded and
// produces the matching ffmpeg codec arguments.
package video

import (
	"fmt"
	"strings"
)

// Mode selects how the video stream is treated.
type Mode string

const (
	ModeCopy     Mode = "copy"     // always pass through
	ModeAuto     Mode = "auto"     // re-encode only when the source codec is not the target
	ModeReencode Mode = "reencode" // always re-encode
)

// Presets lists the x264 presets, fastest first.
var Presets = []string{
	"ultrafast", "superfast", "veryfast", "faster", "fast",
	"medium", "slow", "slower", "veryslow", "placebo",
}

// Tunes lists the x264 tunings.
var Tunes = []string{
	"film", "animation", "grain", "stillimage", "psnr",
	"ssim", "fastdecode", "zerolatency",
}

// Policy is the codec policy applied to every segment of a run.
type Policy struct {
	Mode        Mode
	TargetCodec string // codec name as ffprobe reports it, e.g. "h264"
	Encoder     string // ffmpeg encoder used when re-encoding, e.g. "libx264"
	Preset      string
	Tune        string
}

// DefaultPolicy returns the auto policy targeting h264 with libx264.
func DefaultPolicy() Policy {
	return Policy{
		Mode:        ModeAuto,
		TargetCodec: "h264",
		Encoder:     "libx264",
		Preset:      "medium",
		Tune:        "film",
	}
}

// SetMode sets the mode
func (p Policy) SetMode(mode Mode) Policy {
	p.Mode = mode
	return p
}

// SetPreset sets the x264 preset (ultrafast ... placebo)
func (p Policy) SetPreset(preset string) Policy {
	p.Preset = preset
	return p
}

// SetTune sets the x264 tuning
func (p Policy) SetTune(tune string) Policy {
	p.Tune = tune
	return p
}

// Reencode reports whether a source whose first video stream uses
// sourceCodec must be re-encoded.
func (p Policy) Reencode(sourceCodec string) bool {
	switch p.Mode {
	case ModeReencode:
		return true
	case ModeAuto:
		return !strings.EqualFold(sourceCodec, p.target())
	default:
		return false
	}
}

// CodecArgs returns the codec arguments for a source with the given video
// codec. Audio and every other stream are always copied.
func (p Policy) CodecArgs(sourceCodec string) []string {
	args := []string{"-c", "copy", "-c:a", "copy"}

	if !p.Reencode(sourceCodec) {
		return append(args, "-c:v", "copy")
	}

	args = append(args,
		"-fflags", "+igndts", // broadcast streams carry broken DTS after a cut
		"-vf", "yadif", // broadcast sources are interlaced
		"-c:v", p.encoder(),
	)
	if p.Preset != "" {
		args = append(args, "-preset", p.Preset)
	}
	if p.Tune != "" {
		args = append(args, "-tune", p.Tune)
	}
	return args
}

// Validate checks the mode and, for x264, the preset and tune names.
func (p Policy) Validate() error {
	switch p.Mode {
	case ModeCopy, ModeAuto, ModeReencode:
	default:
		return fmt.Errorf("invalid video mode '%s' (valid: copy, auto, reencode)", p.Mode)
	}

	if p.encoder() != "libx264" {
		return nil
	}
	if p.Preset != "" && !contains(Presets, p.Preset) {
		return fmt.Errorf("invalid preset '%s' (valid: %s)", p.Preset, strings.Join(Presets, ", "))
	}
	if p.Tune != "" && !contains(Tunes, p.Tune) {
		return fmt.Errorf("invalid tune '%s' (valid: %s)", p.Tune, strings.Join(Tunes, ", "))
	}
	return nil
}

func (p Policy) target() string {
	if p.TargetCodec == "" {
		return "h264"
	}
	return p.TargetCodec
}

func (p Policy) encoder() string {
	if p.Encoder == "" {
		return "libx264"
	}
	return p.Encoder
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
