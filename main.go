package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cutter/bookmarks"
	"cutter/config"
	"cutter/ffmpeg"
	"cutter/ffprobe"
	"cutter/internal/logging"
	"cutter/internal/timeutil"
	"cutter/models"
	"cutter/pipeline"
	"cutter/progress"
	"cutter/pvr"
	"cutter/selector"

	"github.com/hashicorp/go-hclog"
)

func main() {
	// Step 1: Load configuration (CLI flags > config file > defaults)
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Configuration error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New("cutter", cfg.Verbose, cfg.LogFormat == "json")

	// Step 2: Cancel on Ctrl+C and SIGTERM. The running ffmpeg is
	// interrupted; segments finished so far stay on disk and are listed.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, cfg, logger))
}

func run(ctx context.Context, cfg *config.Config, logger hclog.Logger) int {
	deps, closeDeps, err := buildDeps(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Setup error: %v\n", err)
		return 1
	}
	defer closeDeps()

	cutter, err := pipeline.New(cfg, deps)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Setup error: %v\n", err)
		return 1
	}

	switch {
	case cfg.ListRegions || cfg.ListStreams:
		return list(ctx, cfg, cutter)
	case cfg.DryRun:
		return dryRun(ctx, cfg, cutter)
	}

	fmt.Println("╔════════════════════════════════════════════════════════════════╗")
	fmt.Println("║                     CUTTER - PIPELINE START                    ║")
	fmt.Println("╚════════════════════════════════════════════════════════════════╝")
	fmt.Printf("Input:    %s\n", cfg.Input)
	fmt.Printf("Markers:  %v\n", cfg.Markers)
	fmt.Printf("Video:    %s\n", cfg.Video.Mode)
	fmt.Println()

	result, err := cutter.Run(ctx, pipeline.NewRequest(cfg, progressPrinter(os.Stdout)))
	fmt.Println()

	msg := pipeline.Outcome(result, err)
	if err != nil {
		if result != nil && len(result.Segments) > 0 {
			fmt.Println("  Segments kept on disk:")
			for _, s := range result.Segments {
				fmt.Printf("    %s\n", s.OutputPath)
			}
		}
		if models.IsKind(err, models.KindCancelled) {
			fmt.Printf("\n⚠️  %s: %s\n", msg.Short, msg.Detail)
			return 130 // Standard exit code for SIGINT
		}
		printMessage(msg)
		if msg.Level == pipeline.LevelInfo {
			return 0
		}
		return 1
	}

	printSummary(result)
	if msg.Level != pipeline.LevelInfo {
		printMessage(msg)
	}
	return 0
}

// buildDeps wires the external tools and the optional bookmark and PVR
// backends. A missing video database is not an error: the file is then cut
// as a whole.
func buildDeps(cfg *config.Config, logger hclog.Logger) (pipeline.Deps, func(), error) {
	deps := pipeline.Deps{
		Prober:     ffprobe.NewProber(cfg.FFprobePath, logger),
		Transcoder: ffmpeg.NewRunner(cfg.FFmpegPath, cfg.JobTimeout, cfg.KillGrace, logger),
		Logger:     logger,
	}
	closeDeps := func() {}

	if cfg.BookmarkSource == "kodi" {
		dbPath, err := bookmarks.FindDatabase(cfg.DatabaseDir)
		if err != nil {
			logger.Warn("video database not found, bookmarks unavailable", "dir", cfg.DatabaseDir, "error", err)
		} else {
			store, err := bookmarks.Open(dbPath, cfg.ThumbnailDir, logger)
			if err != nil {
				return pipeline.Deps{}, nil, err
			}
			deps.Bookmarks = store
			closeDeps = func() {
				if err := store.Close(); err != nil {
					logger.Warn("closing video database", "error", err)
				}
			}
		}
	}

	if cfg.PVR.URL != "" {
		deps.Recordings = pvr.NewClient(cfg.PVR.URL, cfg.PVR.Username, cfg.PVR.Password)
	}

	return deps, closeDeps, nil
}

func list(ctx context.Context, cfg *config.Config, cutter *pipeline.Cutter) int {
	in, err := cutter.Inspect(ctx, cfg.Input)
	if err != nil {
		printMessage(pipeline.Notification(err))
		return 1
	}

	fmt.Printf("Source:    %s\n", in.Source.Path)
	fmt.Printf("Duration:  %s\n", timeutil.FormatClock(in.Duration))
	fmt.Printf("Streams:   %d video, %d audio, %d subtitle\n", len(in.Probe.GetVideoStreams()),
		len(in.Probe.GetAudioStreams()), len(in.Probe.GetSubtitleStreams()))
	if n := in.Probe.GetChapterCount(); n > 0 {
		fmt.Printf("Chapters:  %d\n", n)
	}
	fmt.Println()

	if cfg.ListStreams {
		fmt.Println("Streams:")
		for _, s := range in.Streams {
			fmt.Printf("  %s\n", selector.Describe(s))
		}
		fmt.Println()
	}

	if cfg.ListRegions {
		if len(in.Regions) == 0 {
			fmt.Println("No bookmarks, the file is cut as a whole.")
			return 0
		}
		fmt.Println("Regions:")
		for _, r := range in.Regions {
			fmt.Printf("  %2d  %s - %s  (%s)\n", r.Index,
				timeutil.FormatClock(r.Start), timeutil.FormatClock(r.End), timeutil.FormatClock(r.Duration()))
		}
	}
	return 0
}

func dryRun(ctx context.Context, cfg *config.Config, cutter *pipeline.Cutter) int {
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Println("                      DRY RUN MODE")
	fmt.Println("═══════════════════════════════════════════════════════════")
	cfg.PrintConfig()

	plan, err := cutter.Plan(ctx, pipeline.NewRequest(cfg, nil))
	if err != nil {
		printMessage(pipeline.Notification(err))
		if models.IsKind(err, models.KindNothingSelected) || models.IsKind(err, models.KindNoStreamsSelected) {
			return 0
		}
		return 1
	}

	fmt.Printf("\nStreams:  %v\n", plan.Selection)
	for _, r := range plan.Ranges {
		fmt.Printf("Keep:     %s - %s\n", timeutil.FormatClock(r.Start), timeutil.FormatClock(r.End))
	}
	fmt.Println("\nCommands:")
	for _, cmd := range plan.Commands {
		fmt.Printf("  %s\n", cmd)
	}
	fmt.Printf("\nOutput:   %s\n", plan.JoinedPath())
	fmt.Println("\n✓ Plan is valid. No files will be written.")
	return 0
}

// progressPrinter renders updates ffmpeg-style on a single line.
func progressPrinter(w io.Writer) progress.Sink {
	overall := models.NewEncodingProgress(100)
	return progress.SinkFunc(func(percent int, message string) {
		overall.CalculateProgress(float64(percent))
		eta := "-"
		if percent < 100 {
			eta = models.FormatDuration(overall.EstimatedTimeRemaining().Round(time.Second))
		}
		fmt.Fprintf(w, "\r  %3d%%  %-40s eta=%s   ", percent, message, eta)
		if f, ok := w.(*os.File); ok {
			f.Sync()
		}
	})
}

func printMessage(msg pipeline.Message) {
	icon := "❌"
	switch msg.Level {
	case pipeline.LevelInfo:
		icon = "ℹ️ "
	case pipeline.LevelWarning:
		icon = "⚠️ "
	}
	out := os.Stdout
	if msg.Level == pipeline.LevelError {
		out = os.Stderr
	}
	fmt.Fprintf(out, "%s %s: %s\n", icon, msg.Short, msg.Detail)
}

func printSummary(result *pipeline.Result) {
	outputSize := int64(0)
	if info, err := os.Stat(result.Output); err == nil {
		outputSize = info.Size()
	}
	kept := 0.0
	for _, s := range result.Segments {
		kept += s.Duration
	}

	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Println("                     ✅ SUCCESS!")
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Printf("  Output:      %s\n", result.Output)
	fmt.Printf("  Size:        %.2f MB\n", float64(outputSize)/(1024*1024))
	fmt.Printf("  Kept:        %s of %s\n", timeutil.FormatClock(kept), timeutil.FormatClock(result.Plan.Duration))
	fmt.Printf("  Segments:    %d\n", len(result.Segments))
	fmt.Printf("  Total time:  %.2fs\n", result.Elapsed.Seconds())
	if result.Cleanup.BackupPath != "" {
		fmt.Printf("  Backup:      %s\n", result.Cleanup.BackupPath)
	}
	if n := len(result.Plan.Bookmarks); n > 0 && result.Plan.BookmarksDeletable && result.Cleanup.BookmarkErr == nil {
		fmt.Printf("  Bookmarks:   %d removed\n", n)
	}
	fmt.Println("═══════════════════════════════════════════════════════════")
}
