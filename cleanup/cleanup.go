// Package cleanup finishes a run once the cut file exists: it backs up or
// deletes the original, removes the segment files and finally deletes the
// bookmarks the cut was made from.
package cleanup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cutter/models"
	"cutter/progress"

	"github.com/hashicorp/go-hclog"
)

// BookmarkDeleter removes bookmarks from the store they were read from.
type BookmarkDeleter interface {
	DeleteBookmarks(ctx context.Context, bookmarks []models.Bookmark) error
}

// Request describes the cleanup phase.
type Request struct {
	OriginalPath   string
	Segments       []string
	DeleteOriginal bool
	BackupOriginal bool // rename to <base>.bak<ext> instead of deleting
	Bookmarks      []models.Bookmark
	Deleter        BookmarkDeleter // nil skips bookmark deletion
	Progress       progress.Sink
}

// Report summarizes what cleanup did.
type Report struct {
	BackupPath string   // set when the original was renamed
	Removed    []string // files removed, in order
	// BookmarkErr is set when the cut succeeded but the bookmarks could
	// not be deleted. It is not a failure of the run.
	BookmarkErr error
}

// Sequencer runs the cleanup steps in their fixed order.
type Sequencer struct {
	logger hclog.Logger
}

// NewSequencer creates a Sequencer.
func NewSequencer(logger hclog.Logger) *Sequencer {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Sequencer{logger: logger.Named("cleanup")}
}

// BackupPath returns <dir>/<base>.bak<ext> for path.
func BackupPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".bak" + ext
}

// remove is swapped in tests to simulate a file that cannot be deleted.
var remove = os.Remove

// Finalize must only be called after the joined file exists.
//
// Order: (1) back up the original, or queue it for removal; (2) remove the
// queued files, skipping those already gone; (3) delete the bookmarks. A
// failing backup stops everything before any file or bookmark is touched.
func (s *Sequencer) Finalize(ctx context.Context, req Request) (Report, error) {
	var report Report
	sink := req.Progress
	if sink == nil {
		sink = progress.Discard
	}
	const message = "Cleaning up ..."
	sink.Update(progress.CleanupLow, message)

	if err := ctx.Err(); err != nil {
		return report, models.NewError(models.KindCancelled, "cleanup", err)
	}

	removals := make([]string, 0, len(req.Segments)+1)
	if req.DeleteOriginal {
		if req.BackupOriginal {
			backup := BackupPath(req.OriginalPath)
			if err := os.Rename(req.OriginalPath, backup); err != nil {
				return report, models.NewError(models.KindBackupFailed, "backup original",
					fmt.Errorf("failed to rename %s: %w", req.OriginalPath, err))
			}
			report.BackupPath = backup
			s.logger.Info("original backed up", "path", backup)
		} else {
			removals = append(removals, req.OriginalPath)
		}
	}
	removals = append(removals, req.Segments...)

	for _, path := range removals {
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			s.logger.Debug("skipping", "path", path)
			continue
		}
		if err := remove(path); err != nil {
			return report, models.NewError(models.KindCleanupFailed, "remove leftovers",
				fmt.Errorf("failed to remove %s: %w", path, err))
		}
		report.Removed = append(report.Removed, path)
		s.logger.Debug("removed", "path", path)
	}

	if req.Deleter != nil && len(req.Bookmarks) > 0 {
		if err := req.Deleter.DeleteBookmarks(ctx, req.Bookmarks); err != nil {
			s.logger.Warn("bookmarks left in place", "count", len(req.Bookmarks), "error", err)
			report.BookmarkErr = models.NewError(models.KindBookmarkDeletionFailed, "delete bookmarks", err)
		} else {
			s.logger.Info("bookmarks deleted", "count", len(req.Bookmarks))
		}
	}

	sink.Update(progress.CleanupHigh, message)
	return report, nil
}
