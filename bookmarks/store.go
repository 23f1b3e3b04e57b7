// Package bookmarks reads and deletes the bookmarks Kodi keeps in its
// MyVideos SQLite database.
package bookmarks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"cutter/models"

	"github.com/hashicorp/go-hclog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ThumbnailPrefix is Kodi's virtual location of the thumbnail cache.
const ThumbnailPrefix = "special://thumbnails/"

// bookmarkRow maps Kodi's bookmark table.
type bookmarkRow struct {
	IDBookmark         int64   `gorm:"column:idBookmark;primaryKey"`
	IDFile             int64   `gorm:"column:idFile;index"`
	TimeInSeconds      float64 `gorm:"column:timeInSeconds"`
	TotalTimeInSeconds float64 `gorm:"column:totalTimeInSeconds"`
	ThumbNailImage     string  `gorm:"column:thumbNailImage"`
	Player             string  `gorm:"column:player"`
	PlayerState        string  `gorm:"column:playerState"`
	Type               int     `gorm:"column:type"`
}

// TableName returns the table name for GORM
func (bookmarkRow) TableName() string {
	return "bookmark"
}

// fileRow maps Kodi's files table.
type fileRow struct {
	IDFile      int64  `gorm:"column:idFile;primaryKey"`
	IDPath      int64  `gorm:"column:idPath"`
	StrFilename string `gorm:"column:strFilename"`
}

// TableName returns the table name for GORM
func (fileRow) TableName() string {
	return "files"
}

// pathRow maps Kodi's path table.
type pathRow struct {
	IDPath  int64  `gorm:"column:idPath;primaryKey"`
	StrPath string `gorm:"column:strPath"`
}

// TableName returns the table name for GORM
func (pathRow) TableName() string {
	return "path"
}

// Store is the bookmark store backed by a Kodi video database.
type Store struct {
	db           *gorm.DB
	thumbnailDir string
	logger       hclog.Logger
}

// Open connects to the SQLite database at path.
//
// thumbnailDir is the local directory behind special://thumbnails/; when
// empty, thumbnails referenced that way are left alone.
func Open(path, thumbnailDir string, log hclog.Logger) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("video database not found: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open video database %s: %w", path, err)
	}
	return NewStore(db, thumbnailDir, log), nil
}

// NewStore wraps an open database.
func NewStore(db *gorm.DB, thumbnailDir string, log hclog.Logger) *Store {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Store{db: db, thumbnailDir: thumbnailDir, logger: log.Named("bookmarks")}
}

// Close releases the database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ListBookmarks returns the bookmarks of the file Kodi knows as fileURL
// (directory plus file name, exactly as stored), ordered by time.
//
// Only bookmarks with a thumbnail are returned; Kodi stores its resume
// point in the same table without one.
func (s *Store) ListBookmarks(ctx context.Context, fileURL string) ([]models.Bookmark, error) {
	var rows []bookmarkRow
	err := s.db.WithContext(ctx).
		Table("bookmark AS b").
		Select("b.idBookmark AS idBookmark, b.timeInSeconds AS timeInSeconds, " +
			"b.totalTimeInSeconds AS totalTimeInSeconds, b.thumbNailImage AS thumbNailImage").
		Joins("INNER JOIN files f ON f.idFile = b.idFile").
		Joins("INNER JOIN path p ON p.idPath = f.idPath").
		Where("p.strPath || f.strFilename = ?", fileURL).
		Where("b.thumbNailImage <> ''").
		Order("b.timeInSeconds").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to select bookmarks for %s: %w", fileURL, err)
	}

	bookmarks := make([]models.Bookmark, len(rows))
	for i, row := range rows {
		bookmarks[i] = models.Bookmark{
			ID:                 row.IDBookmark,
			TimeInSeconds:      row.TimeInSeconds,
			TotalTimeInSeconds: row.TotalTimeInSeconds,
			Thumbnail:          row.ThumbNailImage,
		}
	}
	s.logger.Debug("bookmarks loaded", "file", fileURL, "count", len(bookmarks))
	return bookmarks, nil
}

// DeleteBookmarks removes the given bookmarks in one transaction and then
// their thumbnails. Either all rows go or none do.
func (s *Store) DeleteBookmarks(ctx context.Context, bookmarks []models.Bookmark) error {
	if len(bookmarks) == 0 {
		return nil
	}

	seen := make(map[int64]struct{}, len(bookmarks))
	ids := make([]int64, 0, len(bookmarks))
	for _, b := range bookmarks {
		if _, dup := seen[b.ID]; dup {
			continue
		}
		seen[b.ID] = struct{}{}
		ids = append(ids, b.ID)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("idBookmark IN ?", ids).Delete(&bookmarkRow{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != int64(len(ids)) {
			return fmt.Errorf("expected to delete %d bookmarks, deleted %d", len(ids), result.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete bookmarks: %w", err)
	}

	for _, b := range bookmarks {
		path := s.thumbnailPath(b.Thumbnail)
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("could not remove thumbnail", "path", path, "error", err)
		}
	}
	return nil
}

// thumbnailPath resolves a stored thumbnail reference to a local file.
func (s *Store) thumbnailPath(ref string) string {
	switch {
	case ref == "":
		return ""
	case strings.HasPrefix(ref, ThumbnailPrefix):
		if s.thumbnailDir == "" {
			return ""
		}
		return filepath.Join(s.thumbnailDir, filepath.FromSlash(strings.TrimPrefix(ref, ThumbnailPrefix)))
	case filepath.IsAbs(ref):
		return ref
	default:
		return ""
	}
}

var databaseName = regexp.MustCompile(`^MyVideos(\d+)\.db$`)

// FindDatabase returns the MyVideos database with the highest schema
// version in dir.
func FindDatabase(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read database directory: %w", err)
	}

	best, bestVersion := "", -1
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := databaseName.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		version, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if version > bestVersion {
			best, bestVersion = entry.Name(), version
		}
	}

	if best == "" {
		return "", fmt.Errorf("no MyVideos database in %s", dir)
	}
	return filepath.Join(dir, best), nil
}
