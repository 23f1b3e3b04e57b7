package pvr

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// RecordingRef is what Kodi encodes in a PVR recording URL.
type RecordingRef struct {
	Title       string
	ChannelName string
	Start       time.Time // UTC
	Subtitle    string
}

var (
	pvrURLPattern = regexp.MustCompile(`(?s)^pvr://recordings/tv/active/(.*/)*(.+), TV \((.+)\), ` +
		`(19[0-9][0-9]|20[0-9][0-9])([0-9][0-9])([0-9][0-9])_([0-9][0-9])([0-9][0-9])([0-9][0-9]), (.+)\.pvr$`)
	anyPVRPattern = regexp.MustCompile(`^pvr://recordings/.+\.pvr$`)
)

// IsRecordingURL reports whether u points at a Kodi PVR recording.
func IsRecordingURL(u string) bool {
	return anyPVRPattern.MatchString(u)
}

// ParseRecordingURL extracts title, channel and start from a URL such as
// pvr://recordings/tv/active/Title, TV (Channel), 20240102_203000, Subtitle.pvr.
func ParseRecordingURL(pvrURL string) (RecordingRef, error) {
	unescaped, err := url.PathUnescape(pvrURL)
	if err != nil {
		return RecordingRef{}, fmt.Errorf("invalid PVR URL %q: %w", pvrURL, err)
	}

	m := pvrURLPattern.FindStringSubmatch(unescaped)
	if m == nil {
		return RecordingRef{}, fmt.Errorf("not a PVR recording URL: %q", pvrURL)
	}

	parts := make([]int, 6)
	for i := range parts {
		parts[i], _ = strconv.Atoi(m[4+i])
	}
	start := time.Date(parts[0], time.Month(parts[1]), parts[2], parts[3], parts[4], parts[5], 0, time.UTC)
	// time.Date normalizes, so 20241301 would silently become January 2025
	if start.Month() != time.Month(parts[1]) || start.Day() != parts[2] ||
		start.Hour() != parts[3] || start.Minute() != parts[4] || start.Second() != parts[5] {
		return RecordingRef{}, fmt.Errorf("invalid timestamp in PVR URL %q", pvrURL)
	}

	return RecordingRef{
		Title:       m[2],
		ChannelName: m[3],
		Start:       start,
		Subtitle:    m[10],
	}, nil
}

// TranslatePath maps a path on the tvheadend host into a shared directory
// mounted locally. The last component of sharedDir is searched for in the
// remote path and everything from there on is appended to sharedDir:
//
//	TranslatePath("/srv/dvr/recordings/show/a.ts", "/mnt/nas/recordings")
//	// "/mnt/nas/recordings/show/a.ts"
func TranslatePath(remote, sharedDir string) (string, error) {
	shared := strings.Split(filepath.ToSlash(sharedDir), "/")
	var components []string
	for _, c := range shared {
		if c != "" {
			components = append(components, c)
		}
	}
	if len(components) < 2 {
		return "", fmt.Errorf("shared directory %q needs at least two components", sharedDir)
	}
	anchor := components[len(components)-1]

	remoteParts := strings.Split(remote, "/")
	for i, part := range remoteParts {
		if part != anchor {
			continue
		}
		rest := filepath.Join(remoteParts[i+1:]...)
		if rest == "." || rest == "" {
			return "", fmt.Errorf("remote path %q ends at the shared directory", remote)
		}
		return filepath.Join(filepath.Clean(sharedDir), rest), nil
	}
	return "", fmt.Errorf("remote path %q does not contain %q", remote, anchor)
}
