package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// MergeFromFlags parses command-line arguments (without the program name)
// and overrides config values that were explicitly set
func (c *Config) MergeFromFlags(args []string) error {
	// Define flags
	fs := flag.NewFlagSet("cutter", flag.ContinueOnError)
	fs.Usage = printUsage

	// Required fields
	input := fs.String("input", "", "Recording file path or pvr:// URL (required)")
	outputDir := fs.String("output-dir", "", "Directory for the cut file (default: next to the input)")

	// Config file override (handled by LoadConfig before this function is called)
	_ = fs.String("config", "", "Path to config file (default: search standard locations)")

	// External tools
	ffmpegPath := fs.String("ffmpeg", "", "ffmpeg executable (default: from config)")
	ffprobePath := fs.String("ffprobe", "", "ffprobe executable (default: from config)")
	container := fs.String("container", "", "Output container: .ts, .mkv, .mp4 (default: keep input's)")

	// Selection
	markers := fs.String("markers", "", "Comma-separated region indices to keep, e.g. 1,3")
	streams := fs.String("streams", "", "Comma-separated stream indices to keep (implies explicit mode)")
	streamMode := fs.String("stream-mode", "", "Stream selection: auto, explicit (default: from config)")
	allowVI := fs.Bool("allow-visual-impaired", false, "Keep audio description tracks")
	allowHI := fs.Bool("allow-hearing-impaired", false, "Keep subtitles for the hearing impaired")
	allowTeletext := fs.Bool("allow-teletext", false, "Keep dvb_teletext subtitles")

	// Video policy shortcuts
	copyVideo := fs.Bool("copy", false, "Never re-encode video")
	reencode := fs.Bool("reencode", false, "Always re-encode video")
	videoMode := fs.String("video-mode", "", "Video mode: copy, auto, reencode (default: from config)")
	videoPreset := fs.String("video-preset", "", "libx264 preset (default: from config)")
	videoTune := fs.String("video-tune", "", "libx264 tune (default: from config)")

	// Process control
	jobTimeout := fs.Duration("job-timeout", -1, "Limit per ffmpeg run, e.g. 2h (0 = none)")
	killGrace := fs.Duration("kill-grace", -1, "Wait after interrupt before killing ffmpeg")

	// Bookmarks
	bookmarkSource := fs.String("bookmark-source", "", "Bookmark source: kodi, chapters, none (default: from config)")
	databaseDir := fs.String("database-dir", "", "Directory holding MyVideos*.db")
	thumbnailDir := fs.String("thumbnail-dir", "", "Kodi thumbnail directory")

	// PVR
	pvrURL := fs.String("pvr-url", "", "tvheadend base URL")
	pvrUser := fs.String("pvr-user", "", "tvheadend user name")
	pvrPassword := fs.String("pvr-password", "", "tvheadend password")
	sharedDir := fs.String("shared-dir", "", "Local mount of the tvheadend recording directory")
	pvrTimeframe := fs.Duration("pvr-timeframe", -1, "Allowed start time difference when matching recordings")
	rename := fs.Bool("rename", false, "Name the output after the PVR recording")
	renameSubtitle := fs.Bool("rename-subtitle", false, "Append the episode subtitle to the name")
	renameTimestamp := fs.Bool("rename-timestamp", false, "Append the recording start time to the name")
	renameDirectory := fs.Bool("rename-directory", false, "Place the output in a directory named after the title")

	// Behavioral flags
	deleteOriginal := fs.Bool("delete-original", false, "Remove the input once the cut exists")
	backup := fs.Bool("backup", false, "Keep the input as <name>.bak<ext> when deleting")
	noBackup := fs.Bool("no-backup", false, "Remove the input for good when deleting")
	verbose := fs.Bool("verbose", false, "Enable verbose logging")
	logFormat := fs.String("log-format", "", "Log format: text, json (default: from config)")
	dryRun := fs.Bool("dry-run", false, "Print the ffmpeg commands without running them")

	// Listings
	listRegions := fs.Bool("list-regions", false, "List the bookmark regions and exit")
	listStreams := fs.Bool("list-streams", false, "List the input streams and exit")

	// Parse flags
	if err := fs.Parse(args); err != nil {
		return err
	}

	// Override with flag values (only if explicitly set)
	if *input != "" {
		c.Input = *input
	}
	if *outputDir != "" {
		c.OutputDir = *outputDir
	}
	if *ffmpegPath != "" {
		c.FFmpegPath = *ffmpegPath
	}
	if *ffprobePath != "" {
		c.FFprobePath = *ffprobePath
	}
	if *container != "" {
		c.Container = normalizeContainer(*container)
	}

	// Selection
	if *markers != "" {
		list, err := parseIndexList(*markers)
		if err != nil {
			return fmt.Errorf("invalid -markers: %w", err)
		}
		c.Markers = list
	}
	if *streamMode != "" {
		c.StreamMode = *streamMode
	}
	if *streams != "" {
		list, err := parseIndexList(*streams)
		if err != nil {
			return fmt.Errorf("invalid -streams: %w", err)
		}
		c.Streams = list
		c.StreamMode = "explicit"
	}
	if *allowVI {
		c.Allow.VisualImpaired = true
	}
	if *allowHI {
		c.Allow.HearingImpaired = true
	}
	if *allowTeletext {
		c.Allow.Teletext = true
	}

	// Handle video mode shortcuts
	if *copyVideo {
		c.Video.Mode = "copy"
	} else if *reencode {
		c.Video.Mode = "reencode"
	} else if *videoMode != "" {
		c.Video.Mode = *videoMode
	}
	if *videoPreset != "" {
		c.Video.Preset = *videoPreset
	}
	if *videoTune != "" {
		c.Video.Tune = *videoTune
	}

	// Process control (-1 means not set)
	if *jobTimeout >= 0 {
		c.JobTimeout = *jobTimeout
	}
	if *killGrace >= 0 {
		c.KillGrace = *killGrace
	}

	// Bookmarks
	if *bookmarkSource != "" {
		c.BookmarkSource = *bookmarkSource
	}
	if *databaseDir != "" {
		c.DatabaseDir = *databaseDir
	}
	if *thumbnailDir != "" {
		c.ThumbnailDir = *thumbnailDir
	}

	// PVR
	if *pvrURL != "" {
		c.PVR.URL = *pvrURL
	}
	if *pvrUser != "" {
		c.PVR.Username = *pvrUser
	}
	if *pvrPassword != "" {
		c.PVR.Password = *pvrPassword
	}
	if *sharedDir != "" {
		c.PVR.SharedDir = *sharedDir
	}
	if *pvrTimeframe >= 0 {
		c.PVR.Timeframe = *pvrTimeframe
	}
	if *rename {
		c.Rename.Enabled = true
	}
	if *renameSubtitle {
		c.Rename.Subtitle = true
	}
	if *renameTimestamp {
		c.Rename.Timestamp = true
	}
	if *renameDirectory {
		c.Rename.Directory = true
	}

	// Behavioral flags
	if *deleteOriginal {
		c.DeleteOriginal = true
	}
	if *backup {
		c.Backup = true
	}
	if *noBackup {
		c.Backup = false
	}
	if *verbose {
		c.Verbose = true
	}
	if *logFormat != "" {
		c.LogFormat = *logFormat
	}
	if *dryRun {
		c.DryRun = true
	}
	c.ListRegions = *listRegions
	c.ListStreams = *listStreams

	return nil
}

// parseIndexList parses "1, 3,4" into [1 3 4]
func parseIndexList(s string) ([]int, error) {
	var list []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("'%s' is not an index", part)
		}
		if n < 0 {
			return nil, fmt.Errorf("index %d is negative", n)
		}
		list = append(list, n)
	}
	return list, nil
}

func normalizeContainer(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// printUsage prints help text
func printUsage() {
	fmt.Fprintf(os.Stderr, `cutter - Lossless cutting of recordings along Kodi bookmarks

USAGE:
  cutter -input FILE|PVR-URL -markers LIST [OPTIONS]

REQUIRED FLAGS:
  -input string
        Recording file path or pvr://recordings/... URL (required)

CONFIGURATION:
  -config string
        Path to config file (default: search ./cutter.yaml, ~/.cutter/config.yaml, /etc/cutter/config.yaml)

SELECTION:
  -markers string
        Comma-separated region indices to keep, e.g. 1,3 (see -list-regions)
  -streams string
        Comma-separated stream indices to keep, implies explicit mode (see -list-streams)
  -stream-mode string
        Stream selection: auto, explicit (default: auto)
  --allow-visual-impaired
        Keep audio description tracks in auto mode
  --allow-hearing-impaired
        Keep subtitles for the hearing impaired in auto mode
  --allow-teletext
        Keep dvb_teletext subtitles in auto mode (never for .mkv)

VIDEO SETTINGS:
  --copy
        Never re-encode video
  --reencode
        Always re-encode video with libx264
  -video-mode string
        Video mode: copy, auto, reencode (default: auto, re-encode unless h264)
  -video-preset string
        libx264 preset: ultrafast ... placebo (default: medium)
  -video-tune string
        libx264 tune: film, animation, grain, ... (default: film)

OUTPUT:
  -output-dir string
        Directory for the cut file (default: next to the input)
  -container string
        Output container: .ts, .mkv, .mp4 (default: keep the input's)
  --delete-original
        Remove the input once the cut file exists
  --backup / --no-backup
        Keep the removed input as <name>.bak<ext> (default: true)

BOOKMARKS:
  -bookmark-source string
        Bookmark source: kodi, chapters, none (default: kodi)
  -database-dir string
        Directory holding MyVideos*.db (default: ~/.kodi/userdata/Database)
  -thumbnail-dir string
        Kodi thumbnail directory (default: ~/.kodi/userdata/Thumbnails)

PVR:
  -pvr-url string
        tvheadend base URL, e.g. http://tvh:9981
  -pvr-user string / -pvr-password string
        tvheadend credentials
  -shared-dir string
        Local mount of the tvheadend recording directory
  -pvr-timeframe duration
        Allowed start time difference when matching (default: 5m0s)
  --rename, --rename-subtitle, --rename-timestamp, --rename-directory
        Name the output after the recording

PROCESS CONTROL:
  -ffmpeg string / -ffprobe string
        Executables (default: from PATH)
  -job-timeout duration
        Limit per ffmpeg run (default: 0, no limit)
  -kill-grace duration
        Wait after interrupt before killing ffmpeg (default: 5s)

BEHAVIORAL FLAGS:
  --verbose
        Enable verbose logging
  -log-format string
        Log format: text, json (default: text)
  --dry-run
        Print the ffmpeg commands without running them
  --list-regions
        List the bookmark regions and exit
  --list-streams
        List the input streams and exit

EXAMPLES:
  # Show the regions between the bookmarks
  cutter -input show.ts --list-regions

  # Keep regions 1 and 3
  cutter -input show.ts -markers 1,3

  # Keep only video and the first audio track in a Matroska file
  cutter -input show.ts -markers 1 -streams 0,1 -container .mkv

  # Cut a recording played from tvheadend and name it after the show
  cutter -input 'pvr://recordings/tv/active/recordings/Show, TV (Das Erste HD), 20240102_203000, Pilot.pvr' \
         -pvr-url http://tvh:9981 -shared-dir /mnt/recordings -markers 1 --rename

CONFIGURATION FILES:
  Config files are searched in order:
    1. ./cutter.yaml
    2. ~/.cutter/config.yaml
    3. /etc/cutter/config.yaml

  Priority: CLI flags > Config file > Defaults

`)
}

// PrintConfig prints the effective configuration
func (c *Config) PrintConfig() {
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Println("                 Effective Configuration                  ")
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Printf("Input:          %s\n", c.Input)
	if c.OutputDir != "" {
		fmt.Printf("Output Dir:     %s\n", c.OutputDir)
	}
	if c.Container != "" {
		fmt.Printf("Container:      %s\n", c.Container)
	}
	fmt.Printf("Markers:        %v\n", c.Markers)

	fmt.Println("\nStreams:")
	fmt.Printf("  Mode:         %s\n", c.StreamMode)
	if c.StreamMode == "explicit" {
		fmt.Printf("  Indices:      %v\n", c.Streams)
	} else {
		fmt.Printf("  Allow VI:     %v\n", c.Allow.VisualImpaired)
		fmt.Printf("  Allow HI:     %v\n", c.Allow.HearingImpaired)
		fmt.Printf("  Teletext:     %v\n", c.Allow.Teletext)
	}

	fmt.Println("\nVideo Settings:")
	fmt.Printf("  Mode:         %s\n", c.Video.Mode)
	fmt.Printf("  Preset:       %s\n", c.Video.Preset)
	fmt.Printf("  Tune:         %s\n", c.Video.Tune)

	fmt.Println("\nBookmarks:")
	fmt.Printf("  Source:       %s\n", c.BookmarkSource)
	if c.BookmarkSource == "kodi" {
		fmt.Printf("  Database Dir: %s\n", c.DatabaseDir)
	}

	if c.PVR.URL != "" {
		fmt.Println("\nPVR:")
		fmt.Printf("  URL:          %s\n", c.PVR.URL)
		fmt.Printf("  Shared Dir:   %s\n", c.PVR.SharedDir)
		fmt.Printf("  Timeframe:    %s\n", c.PVR.Timeframe)
		fmt.Printf("  Rename:       %v\n", c.Rename.Enabled)
	}

	fmt.Println("\nBehavioral Flags:")
	fmt.Printf("  Delete Input:  %v\n", c.DeleteOriginal)
	fmt.Printf("  Backup:        %v\n", c.Backup)
	fmt.Printf("  Job Timeout:   %s\n", c.JobTimeout)
	fmt.Printf("  Verbose:       %v\n", c.Verbose)
	fmt.Println("═══════════════════════════════════════════════════════════")
}
