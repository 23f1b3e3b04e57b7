package pipeline

import (
	"errors"

	"cutter/ffmpeg"
	"cutter/models"
)

// Level is the severity of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Message is the user-facing summary of a run's outcome.
type Message struct {
	Short  string
	Detail string
	Level  Level
}

// Outcome returns the message for a finished run: success, success with
// bookmarks left in place, or failure.
func Outcome(result *Result, err error) Message {
	if err != nil {
		return Notification(err)
	}
	if result != nil && result.Cleanup.BookmarkErr != nil {
		return Notification(result.Cleanup.BookmarkErr)
	}
	detail := "Cut finished"
	if result != nil && result.Output != "" {
		detail = "Cut written to " + result.Output
	}
	return Message{Short: "Done", Detail: detail, Level: LevelInfo}
}

// Notification maps an error to one message by its kind. The detail carries
// the error text without any stack.
func Notification(err error) Message {
	detail := err.Error()
	var exit *ffmpeg.ExitError
	if errors.As(err, &exit) && exit.LastLine != "" {
		detail = exit.LastLine
	}

	switch models.KindOf(err) {
	case models.KindSourceUnavailable:
		return Message{"Recording not found", detail, LevelError}
	case models.KindInspectionFailed:
		return Message{"Cannot read recording", detail, LevelError}
	case models.KindNoStreamsSelected:
		return Message{"No streams selected", "Nothing to cut, no files were written", LevelInfo}
	case models.KindNothingSelected:
		return Message{"No region selected", "Nothing to cut, no files were written", LevelInfo}
	case models.KindEncodeFailed:
		return Message{"Encoding failed", detail, LevelError}
	case models.KindJoinFailed:
		return Message{"Joining failed", detail, LevelError}
	case models.KindBackupFailed:
		return Message{"Backup failed", "Cut file kept, original untouched: " + detail, LevelError}
	case models.KindBookmarkDeletionFailed:
		return Message{"Bookmarks not deleted", "Cut file written, bookmarks remain: " + detail, LevelWarning}
	case models.KindCleanupFailed:
		return Message{"Cleanup incomplete", "Cut file written, leftover files and bookmarks remain: " + detail, LevelWarning}
	case models.KindTimeout:
		return Message{"ffmpeg timed out", detail, LevelError}
	case models.KindCancelled:
		return Message{"Cancelled", "Cut cancelled, the original is untouched", LevelWarning}
	case models.KindInvalidInput:
		return Message{"Invalid request", detail, LevelError}
	default:
		return Message{"Cut failed", detail, LevelError}
	}
}
