package models

import "sort"

// CodecType classifies a media stream.
type CodecType string

const (
	CodecTypeVideo    CodecType = "video"
	CodecTypeAudio    CodecType = "audio"
	CodecTypeSubtitle CodecType = "subtitle"
	CodecTypeOther    CodecType = "other"
)

// ParseCodecType maps an ffprobe codec_type to a CodecType.
// Anything that is not video, audio or subtitle (data, attachment) is "other".
func ParseCodecType(s string) CodecType {
	switch CodecType(s) {
	case CodecTypeVideo, CodecTypeAudio, CodecTypeSubtitle:
		return CodecType(s)
	default:
		return CodecTypeOther
	}
}

// Disposition flag names as reported by ffprobe.
const (
	DispositionDefault         = "default"
	DispositionVisualImpaired  = "visual_impaired"
	DispositionHearingImpaired = "hearing_impaired"
	DispositionForced          = "forced"
)

// Disposition is the set of flags raised on a stream.
type Disposition map[string]bool

// Has reports whether the named flag is raised.
func (d Disposition) Has(flag string) bool {
	return d[flag]
}

// Flags returns the raised flags in sorted order.
func (d Disposition) Flags() []string {
	out := make([]string, 0, len(d))
	for flag, on := range d {
		if on {
			out = append(out, flag)
		}
	}
	sort.Strings(out)
	return out
}

// StreamDescriptor describes one stream of the source file.
type StreamDescriptor struct {
	Index         int         `json:"index"`
	CodecType     CodecType   `json:"codec_type"`
	CodecName     string      `json:"codec_name"`
	CodecLongName string      `json:"codec_long_name,omitempty"`
	Disposition   Disposition `json:"disposition,omitempty"`
	Language      string      `json:"language,omitempty"`

	// Video only
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	AspectRatio string `json:"display_aspect_ratio,omitempty"`

	// Audio only
	Channels      int    `json:"channels,omitempty"`
	ChannelLayout string `json:"channel_layout,omitempty"`
}

// StreamSelection is the ordered, duplicate-free list of stream indices
// carried into the output.
type StreamSelection []int

// Contains reports whether index is part of the selection.
func (s StreamSelection) Contains(index int) bool {
	for _, i := range s {
		if i == index {
			return true
		}
	}
	return false
}
