// Package models provides core data structures for the cutter.
package models

import (
	"fmt"
	"sort"
)

// Bookmark is one chapter mark on a recording's timeline.
//
// Bookmarks are produced in ascending TimeInSeconds order. Together with the
// implicit origin (0) and the TotalTimeInSeconds of the last bookmark, N
// bookmarks define N+1 regions.
//
// ID and Thumbnail are only set when the bookmark comes from the video
// database; they identify what to delete once the cut is final.
type Bookmark struct {
	ID                 int64   `json:"id,omitempty"`
	TimeInSeconds      float64 `json:"time_in_seconds"`
	TotalTimeInSeconds float64 `json:"total_time_in_seconds"`
	Thumbnail          string  `json:"thumbnail,omitempty"`
}

// Region is the timeline interval between two consecutive bookmarks, or
// between the origin/terminus and the nearest bookmark.
type Region struct {
	Index int     `json:"index"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns the region length in seconds.
func (r Region) Duration() float64 {
	return r.End - r.Start
}

// CutRange is a contiguous interval kept in the output.
//
// Note: Start and End use float64 to preserve fractional seconds, which
// matters for chapter markers coming from containers.
type CutRange struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns the range length in seconds.
func (c CutRange) Duration() float64 {
	return c.End - c.Start
}

// Validate checks if the CutRange has valid data.
//
// Returns an error if:
//   - Start is negative
//   - Start >= End (empty or inverted range)
func (c CutRange) Validate() error {
	if c.Start < 0 {
		return fmt.Errorf("start must not be negative")
	}

	if c.Start >= c.End {
		return fmt.Errorf("start must be less than end")
	}

	return nil
}

// String renders the range the way ffmpeg logs would show it.
func (c CutRange) String() string {
	return fmt.Sprintf("[%.2f, %.2f]", c.Start, c.End)
}

// MarkerSelection is the set of region indices chosen to be kept.
type MarkerSelection map[int]struct{}

// NewMarkerSelection builds a selection from region indices. Duplicates collapse.
func NewMarkerSelection(indices ...int) MarkerSelection {
	s := make(MarkerSelection, len(indices))
	for _, i := range indices {
		s[i] = struct{}{}
	}
	return s
}

// Has reports whether region i is selected.
func (s MarkerSelection) Has(i int) bool {
	_, ok := s[i]
	return ok
}

// Len returns the number of selected regions.
func (s MarkerSelection) Len() int {
	return len(s)
}

// Indices returns the selected region indices in ascending order.
func (s MarkerSelection) Indices() []int {
	out := make([]int, 0, len(s))
	for i := range s {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
