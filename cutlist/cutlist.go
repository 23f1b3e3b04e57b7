// Package cutlist turns bookmarks and a selection of kept regions into the
// ordered list of time ranges to encode.
package cutlist

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"cutter/models"
)

// Compute converts an ordered bookmark sequence plus a set of selected region
// indices into the minimal ordered list of contiguous ranges.
//
// Region i spans from the end of region i-1 (or 0) to bookmarks[i] (or the
// total time of the last bookmark when i == len(bookmarks)). Runs of
// consecutive selected regions are merged into one range. The scan is
// monotonic in time, so the result is sorted and non-overlapping.
//
// An empty bookmark list or an empty selection yields no ranges; the caller
// decides what that means.
func Compute(bookmarks []models.Bookmark, selection models.MarkerSelection) []models.CutRange {
	ranges := []models.CutRange{}
	if len(bookmarks) == 0 || selection.Len() == 0 {
		return ranges
	}

	var start, prevEnd float64
	pending := false

	for i := 0; i <= len(bookmarks); i++ {
		selected := selection.Has(i)
		if selected && !pending {
			start = prevEnd
			pending = true
		} else if !selected && pending {
			ranges = appendRange(ranges, start, prevEnd)
			pending = false
		}
		prevEnd = regionEnd(bookmarks, i)
	}

	if pending {
		ranges = appendRange(ranges, start, prevEnd)
	}

	return ranges
}

// appendRange drops degenerate ranges produced by bookmarks sharing a timestamp.
func appendRange(ranges []models.CutRange, start, end float64) []models.CutRange {
	if end <= start {
		return ranges
	}
	return append(ranges, models.CutRange{Start: start, End: end})
}

func regionEnd(bookmarks []models.Bookmark, i int) float64 {
	if i < len(bookmarks) {
		return bookmarks[i].TimeInSeconds
	}
	return bookmarks[len(bookmarks)-1].TotalTimeInSeconds
}

// Regions lists the N+1 regions defined by N bookmarks.
func Regions(bookmarks []models.Bookmark) []models.Region {
	if len(bookmarks) == 0 {
		return nil
	}

	regions := make([]models.Region, 0, len(bookmarks)+1)
	prevEnd := 0.0
	for i := 0; i <= len(bookmarks); i++ {
		end := regionEnd(bookmarks, i)
		regions = append(regions, models.Region{Index: i, Start: prevEnd, End: end})
		prevEnd = end
	}
	return regions
}

// TotalDuration sums the lengths of ranges.
func TotalDuration(ranges []models.CutRange) float64 {
	total := 0.0
	for _, r := range ranges {
		total += r.Duration()
	}
	return total
}

// FromChapters derives bookmarks from container chapters.
//
// Every chapter start strictly inside (0, duration) becomes a bookmark whose
// total time is the media duration. Chapters are sorted by start time first
// and duplicate starts collapse.
func FromChapters(mediaInfo MediaInfo) ([]models.Bookmark, error) {
	if mediaInfo == nil {
		return nil, fmt.Errorf("media info cannot be nil")
	}

	duration, err := mediaInfo.GetDuration()
	if err != nil {
		return nil, fmt.Errorf("failed to get duration: %w", err)
	}
	if duration <= 0 {
		return nil, fmt.Errorf("invalid duration: %.2f seconds", duration)
	}

	if !mediaInfo.HasChapters() {
		return []models.Bookmark{}, nil
	}

	chapters := mediaInfo.GetChapters()
	starts := make([]float64, 0, len(chapters))
	for i, chapter := range chapters {
		start, err := strconv.ParseFloat(strings.TrimSpace(chapter.StartTime), 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse start_time for chapter %d: %w", i+1, err)
		}
		starts = append(starts, start)
	}
	sort.Float64s(starts)

	bookmarks := make([]models.Bookmark, 0, len(starts))
	last := 0.0
	for _, start := range starts {
		if start <= last || start >= duration {
			continue
		}
		bookmarks = append(bookmarks, models.Bookmark{
			TimeInSeconds:      start,
			TotalTimeInSeconds: duration,
		})
		last = start
	}

	return bookmarks, nil
}

// ValidateRanges validates a sequence of ranges for correctness.
func ValidateRanges(ranges []models.CutRange) error {
	for i, r := range ranges {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("range %d is invalid: %w", i+1, err)
		}
	}

	// Check ordering and overlaps
	for i := 0; i < len(ranges)-1; i++ {
		currentEnd := ranges[i].End
		nextStart := ranges[i+1].Start

		if currentEnd > nextStart {
			return fmt.Errorf("ranges %d and %d overlap: range %d ends at %.2f, range %d starts at %.2f",
				i+1, i+2, i+1, currentEnd, i+2, nextStart)
		}
	}

	return nil
}
