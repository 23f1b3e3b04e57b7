// Package selector decides which source streams are carried into the output.
package selector

import (
	"fmt"
	"path/filepath"
	"strings"

	"cutter/models"
)

// TeletextCodec is the codec name ffprobe reports for DVB teletext.
const TeletextCodec = "dvb_teletext"

// Strategy picks streams from the inspected source.
type Strategy interface {
	pick(streams []models.StreamDescriptor) []int
}

// Explicit carries exactly the streams the user chose, in source stream
// order. Indices that do not exist in the source are ignored.
type Explicit struct {
	Indices []int
}

func (e Explicit) pick(streams []models.StreamDescriptor) []int {
	chosen := make(map[int]struct{}, len(e.Indices))
	for _, index := range e.Indices {
		chosen[index] = struct{}{}
	}

	picked := make([]int, 0, len(e.Indices))
	for _, s := range streams {
		if _, ok := chosen[s.Index]; ok {
			picked = append(picked, s.Index)
		}
	}
	return picked
}

// Policy controls which accessibility and teletext streams the automatic
// strategy keeps.
type Policy struct {
	AllowVisualImpaired  bool // audio description tracks
	AllowHearingImpaired bool // subtitles for the hearing impaired
	AllowTeletext        bool
}

// Automatic carries every video stream, audio streams unless they are
// visual-impaired tracks, and subtitles unless they are teletext or
// hearing-impaired. Data and attachment streams are never carried.
type Automatic struct {
	Policy Policy
}

func (a Automatic) pick(streams []models.StreamDescriptor) []int {
	picked := make([]int, 0, len(streams))
	for _, s := range streams {
		if a.keep(s) {
			picked = append(picked, s.Index)
		}
	}
	return picked
}

func (a Automatic) keep(s models.StreamDescriptor) bool {
	switch s.CodecType {
	case models.CodecTypeVideo:
		return true
	case models.CodecTypeAudio:
		return a.Policy.AllowVisualImpaired || !s.Disposition.Has(models.DispositionVisualImpaired)
	case models.CodecTypeSubtitle:
		if s.CodecName == TeletextCodec && !a.Policy.AllowTeletext {
			return false
		}
		return a.Policy.AllowHearingImpaired || !s.Disposition.Has(models.DispositionHearingImpaired)
	default:
		return false
	}
}

// ContainerConstraint lists codecs the output container cannot hold.
// The zero value rejects nothing.
type ContainerConstraint struct {
	Container      string
	RejectedCodecs map[string]struct{}
}

// ForContainer returns the constraint for an output extension such as ".mkv".
func ForContainer(ext string) ContainerConstraint {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	c := ContainerConstraint{Container: ext}
	switch ext {
	case ".mkv":
		// Matroska has no mapping for DVB teletext
		c.RejectedCodecs = map[string]struct{}{TeletextCodec: {}}
	}
	return c
}

// ForPath returns the constraint for the extension of path.
func ForPath(path string) ContainerConstraint {
	return ForContainer(filepath.Ext(path))
}

// Accepts reports whether the container can carry the stream.
func (c ContainerConstraint) Accepts(s models.StreamDescriptor) bool {
	_, rejected := c.RejectedCodecs[s.CodecName]
	return !rejected
}

// Select applies strategy and then the container constraint. The result
// keeps the strategy's order and holds no duplicates.
//
// An empty result is returned as a models.KindNoStreamsSelected error so that
// callers stop before anything is written.
func Select(streams []models.StreamDescriptor, strategy Strategy, constraint ContainerConstraint) (models.StreamSelection, error) {
	if strategy == nil {
		return nil, models.NewError(models.KindInvalidInput, "select streams", fmt.Errorf("strategy cannot be nil"))
	}

	byIndex := make(map[int]models.StreamDescriptor, len(streams))
	for _, s := range streams {
		byIndex[s.Index] = s
	}

	seen := make(map[int]struct{})
	selection := models.StreamSelection{}
	for _, index := range strategy.pick(streams) {
		if _, dup := seen[index]; dup {
			continue
		}
		seen[index] = struct{}{}
		if !constraint.Accepts(byIndex[index]) {
			continue
		}
		selection = append(selection, index)
	}

	if len(selection) == 0 {
		return nil, models.NewError(models.KindNoStreamsSelected, "select streams",
			fmt.Errorf("none of %d streams selected", len(streams)))
	}
	return selection, nil
}

// Describe renders a one-line label for a stream, e.g.
// "#1 audio mp2 [deu] stereo (visual_impaired)".
func Describe(s models.StreamDescriptor) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d %s %s", s.Index, s.CodecType, s.CodecName)

	if s.Language != "" {
		fmt.Fprintf(&b, " [%s]", s.Language)
	}

	switch s.CodecType {
	case models.CodecTypeVideo:
		if s.Width > 0 && s.Height > 0 {
			fmt.Fprintf(&b, " %dx%d", s.Width, s.Height)
		}
		if s.AspectRatio != "" {
			fmt.Fprintf(&b, " %s", s.AspectRatio)
		}
	case models.CodecTypeAudio:
		if s.ChannelLayout != "" {
			fmt.Fprintf(&b, " %s", s.ChannelLayout)
		} else if s.Channels > 0 {
			fmt.Fprintf(&b, " %dch", s.Channels)
		}
	}

	flags := s.Disposition.Flags()
	interesting := flags[:0]
	for _, f := range flags {
		if f != models.DispositionDefault {
			interesting = append(interesting, f)
		}
	}
	if len(interesting) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(interesting, ", "))
	}

	return b.String()
}
