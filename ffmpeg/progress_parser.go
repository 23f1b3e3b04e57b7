package ffmpeg

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"cutter/internal/timeutil"
	"cutter/models"
)

// ProgressParser parses ffmpeg stats lines for encoding metrics.
type ProgressParser struct {
	// statsRegex matches the full status line ffmpeg prints with -stats
	statsRegex *regexp.Regexp
	// timeRegex is the fallback for status lines with unusual fields (size=N/A, Lsize=)
	timeRegex *regexp.Regexp
}

// NewProgressParser creates a new parser for ffmpeg progress output
func NewProgressParser() *ProgressParser {
	return &ProgressParser{
		statsRegex: regexp.MustCompile(
			`frame=\s*(\d+)\s+fps=\s*([0-9\.]+)\s+q=([0-9\.-]+) [A-Z]?size=\s*([0-9]+[A-Za-z]+) time=([0-9:\.]+) bitrate=([^ ]+) speed=\s*([0-9\.]+)x`),
		timeRegex: regexp.MustCompile(`(?:^|\s)time=\s*([0-9]+:[0-9]+:[0-9\.]+)`),
	}
}

// ParseLine parses a single line of ffmpeg output and updates the progress.
// It returns false for lines that carry no position, leaving progress untouched.
func (pp *ProgressParser) ParseLine(line string, progress *models.EncodingProgress) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	if m := pp.statsRegex.FindStringSubmatch(line); m != nil {
		seconds, err := timeutil.ParseClock(m[5])
		if err != nil {
			return false
		}
		progress.Frame, _ = strconv.ParseInt(m[1], 10, 64)
		progress.FPS, _ = strconv.ParseFloat(m[2], 64)
		progress.Quality, _ = strconv.ParseFloat(m[3], 64)
		progress.Size = m[4]
		progress.CurrentTime = m[5]
		progress.Bitrate = m[6]
		progress.Speed, _ = strconv.ParseFloat(m[7], 64)
		progress.CalculateProgress(seconds)
		return true
	}

	if m := pp.timeRegex.FindStringSubmatch(line); m != nil {
		seconds, err := timeutil.ParseClock(m[1])
		if err != nil {
			return false
		}
		progress.CurrentTime = m[1]
		progress.CalculateProgress(seconds)
		return true
	}

	return false
}

// StreamProgress reads ffmpeg output until EOF, invoking callback for every
// status line. It returns the last non-empty line seen, which is usually the
// most useful diagnostic when ffmpeg fails.
func (pp *ProgressParser) StreamProgress(reader io.Reader, progress *models.EncodingProgress, callback func(*models.EncodingProgress)) (string, error) {
	scanner := bufio.NewScanner(reader)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	// ffmpeg rewrites its status line in place with \r
	scanner.Split(ScanLines)

	var lastLine string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lastLine = line
		if pp.ParseLine(line, progress) && callback != nil {
			callback(progress)
		}
	}

	if err := scanner.Err(); err != nil {
		return lastLine, fmt.Errorf("error reading ffmpeg output: %w", err)
	}
	return lastLine, nil
}

// ScanLines is a bufio.SplitFunc that treats both \r and \n as terminators.
func ScanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
