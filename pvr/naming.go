package pvr

import (
	"path/filepath"
	"strings"
	"time"
)

// NameOptions control how a recording is renamed after the cut.
type NameOptions struct {
	Subtitle  bool // append " - <subtitle>" when it differs from the title
	Timestamp bool // append " (YYYY-MM-DD HH-MM)"
	Directory bool // place the file in the recording's directory
	// Location for the timestamp; nil means the local zone.
	Location *time.Location
}

// BaseName returns the file name without extension, made legal for any
// file system.
func (r Recording) BaseName(opts NameOptions) string {
	name := r.Title
	if opts.Subtitle && r.Subtitle != "" && r.Subtitle != r.Title {
		name += " - " + r.Subtitle
	}
	if opts.Timestamp {
		loc := opts.Location
		if loc == nil {
			loc = time.Local
		}
		name += " (" + r.StartTime().In(loc).Format("2006-01-02 15-04") + ")"
	}
	return LegalFilename(name)
}

// FileName returns BaseName plus ext.
func (r Recording) FileName(opts NameOptions, ext string) string {
	return r.BaseName(opts) + ext
}

// TargetDir returns the directory the renamed file goes to.
func (r Recording) TargetDir(opts NameOptions, dir string) string {
	if opts.Directory && strings.TrimSpace(r.Directory) != "" {
		return filepath.Join(dir, LegalFilename(r.Directory))
	}
	return dir
}

var illegal = strings.NewReplacer(
	"/", "_", `\`, "_", ":", "_", "*", "_", "?", "_",
	`"`, "_", "<", "_", ">", "_", "|", "_",
)

// LegalFilename replaces characters that are not allowed in file names on
// Windows shares or POSIX systems.
func LegalFilename(name string) string {
	name = illegal.Replace(name)
	name = strings.TrimSpace(name)
	return strings.TrimRight(name, ". ")
}
