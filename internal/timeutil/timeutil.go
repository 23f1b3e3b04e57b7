// Package timeutil provides time formatting utilities for FFmpeg commands.
package timeutil

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatSeconds converts seconds to HH:MM:SS.MS format for FFmpeg.
//
// This format is used for FFmpeg time parameters like -ss (seek start)
// and -to (seek end). The value is rounded to hundredths first so that a
// carry never produces "60" in the seconds field.
//
// Example:
//
//	FormatSeconds(0)      // "00:00:00.00"
//	FormatSeconds(90)     // "00:01:30.00"
//	FormatSeconds(3661)   // "01:01:01.00"
//	FormatSeconds(30.53)  // "00:00:30.53"
//	FormatSeconds(59.999) // "00:01:00.00"
func FormatSeconds(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	hundredths := int64(math.Round(seconds * 100))
	hours := hundredths / 360000
	minutes := (hundredths % 360000) / 6000
	secs := float64(hundredths%6000) / 100
	return fmt.Sprintf("%02d:%02d:%05.2f", hours, minutes, secs)
}

// FormatClock renders whole seconds as HH:MM:SS, the way region boundaries
// are shown to the user.
func FormatClock(seconds float64) string {
	total := int64(seconds)
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// ParseClock converts an FFmpeg time field (HH:MM:SS[.fraction]) to seconds.
//
// Returns an error if the value does not have exactly three colon-separated
// numeric parts.
func ParseClock(value string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid clock value %q", value)
	}

	hours, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid hours in %q: %w", value, err)
	}
	minutes, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid minutes in %q: %w", value, err)
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid seconds in %q: %w", value, err)
	}

	return hours*3600 + minutes*60 + seconds, nil
}
