package cutlist

// MediaInfo represents the minimal media file metadata needed to derive
// bookmarks from container chapters.
//
// This interface decouples the calculator from specific probing
// implementations, making it testable without ffprobe.
type MediaInfo interface {
	// GetDuration returns the media file duration in seconds.
	// Returns an error if duration is not available or invalid.
	GetDuration() (float64, error)

	// HasChapters returns true if the media file contains chapter markers.
	HasChapters() bool

	// GetChapters returns the list of chapter markers in the media file.
	// Returns an empty slice if no chapters are available.
	GetChapters() []ChapterInfo
}

// ChapterInfo represents a chapter marker in a media file.
//
// The time strings are expected to be in decimal format
// (e.g., "30.500" for 30.5 seconds), as ffprobe prints them.
type ChapterInfo struct {
	// StartTime is the chapter start time in seconds (as string for parsing)
	StartTime string

	// EndTime is the chapter end time in seconds (as string for parsing)
	EndTime string
}
