package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies pipeline failures for reporting.
type ErrorKind string

const (
	KindSourceUnavailable      ErrorKind = "source_unavailable"       // source missing or unreadable
	KindInspectionFailed       ErrorKind = "inspection_failed"        // ffprobe failed
	KindNoStreamsSelected      ErrorKind = "no_streams_selected"      // selection is empty, nothing to do
	KindNothingSelected        ErrorKind = "nothing_selected"         // bookmarks exist but no region is kept
	KindEncodeFailed           ErrorKind = "encode_failed"            // ffmpeg failed on a segment
	KindJoinFailed             ErrorKind = "join_failed"              // ffmpeg failed joining segments
	KindBackupFailed           ErrorKind = "backup_failed"            // original could not be renamed
	KindBookmarkDeletionFailed ErrorKind = "bookmark_deletion_failed" // artifact exists, bookmarks remain
	KindCleanupFailed          ErrorKind = "cleanup_failed"           // artifact exists, leftover files remain
	KindTimeout                ErrorKind = "timeout"                  // external process exceeded its deadline
	KindCancelled              ErrorKind = "cancelled"                // caller cancelled
	KindInvalidInput           ErrorKind = "invalid_input"            // request does not make sense
)

// Error is a classified failure.
type Error struct {
	Kind ErrorKind
	Op   string // operation that failed, e.g. "encode segment 2"
	Err  error
}

// NewError wraps err with a kind and an operation name.
func NewError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the outermost *Error in err's chain, or "" if none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// ProcessError wraps the failure of an external process. Timeout and
// cancellation keep their kind; anything else is filed under fallback.
func ProcessError(fallback ErrorKind, op string, err error) *Error {
	switch kind := KindOf(err); kind {
	case KindTimeout, KindCancelled:
		return NewError(kind, op, err)
	default:
		return NewError(fallback, op, err)
	}
}
