package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds all cutter configuration options
type Config struct {
	// Required fields
	Input     string `yaml:"input" validate:"required"`
	OutputDir string `yaml:"output_dir"` // empty = next to the input file

	// External tools
	FFmpegPath  string `yaml:"ffmpeg_path" validate:"required"`
	FFprobePath string `yaml:"ffprobe_path" validate:"required"`

	// Output container, e.g. ".ts", ".mkv" (empty = keep the input's)
	Container string `yaml:"container" validate:"omitempty,oneof=.ts .mkv .mp4"`

	// Stream selection
	StreamMode string      `yaml:"stream_mode" validate:"oneof=auto explicit"`
	Streams    []int       `yaml:"streams" validate:"dive,min=0"`
	Allow      AllowConfig `yaml:"allow"`

	// Regions to keep (0-based region indices)
	Markers []int `yaml:"markers" validate:"dive,min=0"`

	// Video codec policy
	Video VideoConfig `yaml:"video"`

	// Process control
	JobTimeout time.Duration `yaml:"job_timeout" validate:"min=0"` // 0 = no limit
	KillGrace  time.Duration `yaml:"kill_grace" validate:"min=0"`

	// Bookmark source
	BookmarkSource string `yaml:"bookmark_source" validate:"oneof=kodi chapters none"`
	DatabaseDir    string `yaml:"database_dir"`
	ThumbnailDir   string `yaml:"thumbnail_dir"`

	// PVR lookup
	PVR PVRConfig `yaml:"pvr"`

	// Output naming for PVR recordings
	Rename RenameConfig `yaml:"rename"`

	// Behavioral flags
	DeleteOriginal bool   `yaml:"delete_original"` // Remove the source once the cut exists
	Backup         bool   `yaml:"backup"`          // Keep the source as <name>.bak<ext> instead
	Verbose        bool   `yaml:"verbose"`         // Show detailed logs
	LogFormat      string `yaml:"log_format" validate:"oneof=text json"`
	DryRun         bool   `yaml:"dry_run"` // Print the plan without running ffmpeg

	// One-shot listings, command line only
	ListRegions bool `yaml:"-"`
	ListStreams bool `yaml:"-"`
}

// AllowConfig relaxes the automatic stream filter
type AllowConfig struct {
	VisualImpaired  bool `yaml:"visual_impaired"`  // Keep audio description tracks
	HearingImpaired bool `yaml:"hearing_impaired"` // Keep subtitles for the hearing impaired
	Teletext        bool `yaml:"teletext"`         // Keep dvb_teletext subtitles
}

// VideoConfig holds video codec policy settings
type VideoConfig struct {
	Mode   string `yaml:"mode"`   // copy, auto or reencode
	Preset string `yaml:"preset"` // libx264 preset, e.g. "medium"
	Tune   string `yaml:"tune"`   // libx264 tune, e.g. "film"
}

// PVRConfig holds tvheadend connection settings
type PVRConfig struct {
	URL       string        `yaml:"url" validate:"omitempty,url"`
	Username  string        `yaml:"username"`
	Password  string        `yaml:"password"`
	SharedDir string        `yaml:"shared_dir"` // Local mount of the recording directory
	Timeframe time.Duration `yaml:"timeframe" validate:"min=0"`
}

// RenameConfig controls the output name of PVR recordings
type RenameConfig struct {
	Enabled   bool `yaml:"enabled"`
	Subtitle  bool `yaml:"subtitle"`  // Append the episode subtitle
	Timestamp bool `yaml:"timestamp"` // Append the recording start time
	Directory bool `yaml:"directory"` // Place the result in a directory named after the title
}

// DefaultConfig returns configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		// Required - must be provided by user
		Input:     "",
		OutputDir: "",

		// Found on PATH
		FFmpegPath:  "ffmpeg",
		FFprobePath: "ffprobe",

		Container: "",

		// Automatic stream selection without impaired or teletext tracks
		StreamMode: "auto",
		Allow:      AllowConfig{},

		// Video: copy unless the source is not h264
		Video: VideoConfig{
			Mode:   "auto",
			Preset: "medium",
			Tune:   "film",
		},

		JobTimeout: 0,
		KillGrace:  5 * time.Second,

		// Kodi's default profile
		BookmarkSource: "kodi",
		DatabaseDir:    filepath.Join(os.Getenv("HOME"), ".kodi", "userdata", "Database"),
		ThumbnailDir:   filepath.Join(os.Getenv("HOME"), ".kodi", "userdata", "Thumbnails"),

		PVR: PVRConfig{
			Timeframe: 300 * time.Second,
		},

		// Behavioral defaults
		DeleteOriginal: false, // Keep the source
		Backup:         true,  // Rename rather than remove when deleting
		Verbose:        false, // Quiet mode
		LogFormat:      "text",
		DryRun:         false, // Actually cut
	}
}

// Copy creates a deep copy of the config
func (c *Config) Copy() *Config {
	copy := *c
	copy.Streams = append([]int(nil), c.Streams...)
	copy.Markers = append([]int(nil), c.Markers...)
	return &copy
}
