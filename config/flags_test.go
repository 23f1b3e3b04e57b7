package config

import (
	"reflect"
	"testing"
	"time"
)

func TestMergeFromFlags_RequiredFlags(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.MergeFromFlags([]string{"-input", "show.ts", "-markers", "1,3"}); err != nil {
		t.Fatalf("Expected no error with required flags, got: %v", err)
	}

	if cfg.Input != "show.ts" {
		t.Errorf("Expected input 'show.ts', got '%s'", cfg.Input)
	}
	if !reflect.DeepEqual(cfg.Markers, []int{1, 3}) {
		t.Errorf("Expected markers [1 3], got %v", cfg.Markers)
	}
}

func TestMergeFromFlags_MissingInput(t *testing.T) {
	// MergeFromFlags doesn't validate, but input should remain empty
	cfg := DefaultConfig()
	if err := cfg.MergeFromFlags([]string{"-markers", "0"}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Validation should fail
	if err := cfg.Validate(); err == nil {
		t.Fatal("Expected validation error for missing input, got nil")
	}
}

func TestMergeFromFlags_AllFlags(t *testing.T) {
	args := []string{
		"-input", "flag_input.ts",
		"-output-dir", "/tmp/cut",
		"-ffmpeg", "/opt/ffmpeg",
		"-ffprobe", "/opt/ffprobe",
		"-container", "MKV",
		"-markers", "0, 2,4",
		"-streams", "0,1,3",
		"--allow-visual-impaired",
		"--allow-hearing-impaired",
		"--allow-teletext",
		"-video-mode", "reencode",
		"-video-preset", "slow",
		"-video-tune", "grain",
		"-job-timeout", "2h",
		"-kill-grace", "10s",
		"-bookmark-source", "chapters",
		"-database-dir", "/kodi/Database",
		"-thumbnail-dir", "/kodi/Thumbnails",
		"-pvr-url", "http://tvh:9981",
		"-pvr-user", "kodi",
		"-pvr-password", "secret",
		"-shared-dir", "/mnt/recordings",
		"-pvr-timeframe", "2m",
		"--rename",
		"--rename-subtitle",
		"--rename-timestamp",
		"--rename-directory",
		"--delete-original",
		"--no-backup",
		"--verbose",
		"-log-format", "json",
		"--dry-run",
		"--list-regions",
		"--list-streams",
	}

	cfg := DefaultConfig()
	if err := cfg.MergeFromFlags(args); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Verify all values
	if cfg.Input != "flag_input.ts" {
		t.Errorf("Expected input 'flag_input.ts', got '%s'", cfg.Input)
	}
	if cfg.OutputDir != "/tmp/cut" {
		t.Errorf("Expected output dir '/tmp/cut', got '%s'", cfg.OutputDir)
	}
	if cfg.FFmpegPath != "/opt/ffmpeg" || cfg.FFprobePath != "/opt/ffprobe" {
		t.Errorf("Unexpected tool paths: %s, %s", cfg.FFmpegPath, cfg.FFprobePath)
	}
	if cfg.Container != ".mkv" {
		t.Errorf("Expected container '.mkv', got '%s'", cfg.Container)
	}
	if !reflect.DeepEqual(cfg.Markers, []int{0, 2, 4}) {
		t.Errorf("Expected markers [0 2 4], got %v", cfg.Markers)
	}
	if !reflect.DeepEqual(cfg.Streams, []int{0, 1, 3}) {
		t.Errorf("Expected streams [0 1 3], got %v", cfg.Streams)
	}
	if cfg.StreamMode != "explicit" {
		t.Errorf("Expected stream mode 'explicit', got '%s'", cfg.StreamMode)
	}
	if !cfg.Allow.VisualImpaired || !cfg.Allow.HearingImpaired || !cfg.Allow.Teletext {
		t.Errorf("Expected all allow flags set, got %+v", cfg.Allow)
	}
	if cfg.Video.Mode != "reencode" || cfg.Video.Preset != "slow" || cfg.Video.Tune != "grain" {
		t.Errorf("Unexpected video config: %+v", cfg.Video)
	}
	if cfg.JobTimeout != 2*time.Hour {
		t.Errorf("Expected job timeout 2h, got %s", cfg.JobTimeout)
	}
	if cfg.KillGrace != 10*time.Second {
		t.Errorf("Expected kill grace 10s, got %s", cfg.KillGrace)
	}
	if cfg.BookmarkSource != "chapters" {
		t.Errorf("Expected bookmark source 'chapters', got '%s'", cfg.BookmarkSource)
	}
	if cfg.DatabaseDir != "/kodi/Database" || cfg.ThumbnailDir != "/kodi/Thumbnails" {
		t.Errorf("Unexpected kodi dirs: %s, %s", cfg.DatabaseDir, cfg.ThumbnailDir)
	}
	want := PVRConfig{
		URL:       "http://tvh:9981",
		Username:  "kodi",
		Password:  "secret",
		SharedDir: "/mnt/recordings",
		Timeframe: 2 * time.Minute,
	}
	if cfg.PVR != want {
		t.Errorf("Expected pvr %+v, got %+v", want, cfg.PVR)
	}
	if cfg.Rename != (RenameConfig{Enabled: true, Subtitle: true, Timestamp: true, Directory: true}) {
		t.Errorf("Expected all rename flags set, got %+v", cfg.Rename)
	}
	if !cfg.DeleteOriginal {
		t.Error("Expected delete original true")
	}
	if cfg.Backup {
		t.Error("Expected backup false")
	}
	if !cfg.Verbose {
		t.Error("Expected verbose true")
	}
	if cfg.LogFormat != "json" {
		t.Errorf("Expected log format 'json', got '%s'", cfg.LogFormat)
	}
	if !cfg.DryRun {
		t.Error("Expected dry run true")
	}
	if !cfg.ListRegions || !cfg.ListStreams {
		t.Error("Expected both listings requested")
	}
}

func TestMergeFromFlags_VideoShortcuts(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"copy", []string{"--copy"}, "copy"},
		{"reencode", []string{"--reencode"}, "reencode"},
		{"mode flag", []string{"-video-mode", "copy"}, "copy"},
		{"shortcut wins over mode", []string{"--reencode", "-video-mode", "copy"}, "reencode"},
		{"unset keeps default", []string{"-input", "x.ts"}, "auto"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			if err := cfg.MergeFromFlags(tt.args); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if cfg.Video.Mode != tt.expected {
				t.Errorf("Expected video mode '%s', got '%s'", tt.expected, cfg.Video.Mode)
			}
		})
	}
}

func TestMergeFromFlags_PreservesConfig(t *testing.T) {
	// Values not given on the command line keep what the file set
	cfg := DefaultConfig()
	cfg.JobTimeout = time.Hour
	cfg.Markers = []int{2}
	cfg.Backup = false

	if err := cfg.MergeFromFlags([]string{"-input", "show.ts"}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.JobTimeout != time.Hour {
		t.Errorf("Expected job timeout 1h preserved, got %s", cfg.JobTimeout)
	}
	if !reflect.DeepEqual(cfg.Markers, []int{2}) {
		t.Errorf("Expected markers [2] preserved, got %v", cfg.Markers)
	}
	if cfg.Backup {
		t.Error("Expected backup false preserved")
	}
}

func TestMergeFromFlags_ZeroTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.JobTimeout = time.Hour

	if err := cfg.MergeFromFlags([]string{"-job-timeout", "0"}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.JobTimeout != 0 {
		t.Errorf("Expected job timeout cleared, got %s", cfg.JobTimeout)
	}
}

func TestMergeFromFlags_InvalidIndexList(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"marker word", []string{"-markers", "1,two"}},
		{"negative marker", []string{"-markers", "-1"}},
		{"stream word", []string{"-streams", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			if err := cfg.MergeFromFlags(tt.args); err == nil {
				t.Errorf("Expected error for %v", tt.args)
			}
		})
	}
}

func TestMergeFromFlags_UnknownFlag(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.MergeFromFlags([]string{"-workers", "4"}); err == nil {
		t.Error("Expected error for unknown flag")
	}
}

func TestParseIndexList(t *testing.T) {
	tests := []struct {
		input    string
		expected []int
	}{
		{"1", []int{1}},
		{"1,3", []int{1, 3}},
		{" 0 , 2 ,", []int{0, 2}},
		{"", nil},
	}

	for _, tt := range tests {
		got, err := parseIndexList(tt.input)
		if err != nil {
			t.Errorf("parseIndexList(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("parseIndexList(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}
