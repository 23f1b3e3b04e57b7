package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoadConfigFile(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test.yaml")

	yamlContent := `
input: "show.ts"
output_dir: "/srv/cut"
container: ".mkv"
stream_mode: explicit
streams: [0, 1, 4]
markers: [1, 3]
allow:
  teletext: true
video:
  mode: reencode
  preset: fast
job_timeout: 90m
kill_grace: 2s
bookmark_source: chapters
pvr:
  url: http://tvh:9981
  shared_dir: /mnt/recordings
  timeframe: 10m
rename:
  enabled: true
  timestamp: true
delete_original: true
backup: false
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadConfigFile(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Verify loaded values
	if cfg.Input != "show.ts" {
		t.Errorf("Expected input 'show.ts', got '%s'", cfg.Input)
	}
	if cfg.OutputDir != "/srv/cut" {
		t.Errorf("Expected output dir '/srv/cut', got '%s'", cfg.OutputDir)
	}
	if cfg.Container != ".mkv" {
		t.Errorf("Expected container '.mkv', got '%s'", cfg.Container)
	}
	if cfg.StreamMode != "explicit" {
		t.Errorf("Expected stream mode 'explicit', got '%s'", cfg.StreamMode)
	}
	if !reflect.DeepEqual(cfg.Streams, []int{0, 1, 4}) {
		t.Errorf("Expected streams [0 1 4], got %v", cfg.Streams)
	}
	if !reflect.DeepEqual(cfg.Markers, []int{1, 3}) {
		t.Errorf("Expected markers [1 3], got %v", cfg.Markers)
	}
	if !cfg.Allow.Teletext || cfg.Allow.VisualImpaired {
		t.Errorf("Unexpected allow config: %+v", cfg.Allow)
	}
	if cfg.Video.Mode != "reencode" || cfg.Video.Preset != "fast" {
		t.Errorf("Unexpected video config: %+v", cfg.Video)
	}
	if cfg.Video.Tune != "film" {
		t.Errorf("Expected default tune 'film' kept, got '%s'", cfg.Video.Tune)
	}
	if cfg.JobTimeout != 90*time.Minute {
		t.Errorf("Expected job timeout 90m, got %s", cfg.JobTimeout)
	}
	if cfg.KillGrace != 2*time.Second {
		t.Errorf("Expected kill grace 2s, got %s", cfg.KillGrace)
	}
	if cfg.BookmarkSource != "chapters" {
		t.Errorf("Expected bookmark source 'chapters', got '%s'", cfg.BookmarkSource)
	}
	if cfg.PVR.URL != "http://tvh:9981" || cfg.PVR.SharedDir != "/mnt/recordings" || cfg.PVR.Timeframe != 10*time.Minute {
		t.Errorf("Unexpected pvr config: %+v", cfg.PVR)
	}
	if !cfg.Rename.Enabled || !cfg.Rename.Timestamp || cfg.Rename.Subtitle {
		t.Errorf("Unexpected rename config: %+v", cfg.Rename)
	}
	if !cfg.DeleteOriginal {
		t.Error("Expected delete original true")
	}
	if cfg.Backup {
		t.Error("Expected backup false, got true")
	}
	if cfg.FFmpegPath != "ffmpeg" {
		t.Errorf("Expected default ffmpeg path kept, got '%s'", cfg.FFmpegPath)
	}
}

func TestLoadConfigFile_NotFound(t *testing.T) {
	_, err := LoadConfigFile("/nonexistent/config.yaml")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestLoadConfigFile_Empty(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(configPath, nil, 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadConfigFile(configPath)
	if err != nil {
		t.Fatalf("Expected defaults for empty file, got error: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("Expected defaults, got %+v", cfg)
	}
}

func TestLoadConfigFile_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
input: show.ts
invalid yaml syntax here ][{
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	_, err := LoadConfigFile(configPath)
	if err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestLoadConfigFile_UnknownKey(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "old.yaml")
	if err := os.WriteFile(configPath, []byte("chunk_duration: 10\n"), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	if _, err := LoadConfigFile(configPath); err == nil {
		t.Error("Expected error for unknown key")
	}
}

func TestSaveConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "test.yaml")

	cfg := DefaultConfig()
	cfg.Input = "show.ts"
	cfg.Markers = []int{0, 2}
	cfg.JobTimeout = 45 * time.Minute
	cfg.ListRegions = true

	if err := SaveConfigFile(cfg, configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	// Verify file was created
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("Config file was not created")
	}

	// Load it back and verify
	loaded, err := LoadConfigFile(configPath)
	if err != nil {
		t.Fatalf("Failed to load saved config: %v", err)
	}

	if loaded.Input != cfg.Input {
		t.Errorf("Input mismatch: expected '%s', got '%s'", cfg.Input, loaded.Input)
	}
	if !reflect.DeepEqual(loaded.Markers, cfg.Markers) {
		t.Errorf("Markers mismatch: expected %v, got %v", cfg.Markers, loaded.Markers)
	}
	if loaded.JobTimeout != cfg.JobTimeout {
		t.Errorf("Job timeout mismatch: expected %s, got %s", cfg.JobTimeout, loaded.JobTimeout)
	}
	if loaded.ListRegions {
		t.Error("Listings must not be persisted")
	}
}

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdirForTest(t, dir)
	t.Setenv("HOME", dir)

	if err := os.WriteFile(filepath.Join(dir, "cutter.yml"), []byte("verbose: true\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if got := FindConfigFile(); got != "./cutter.yml" {
		t.Errorf("Expected './cutter.yml', got '%s'", got)
	}
}
