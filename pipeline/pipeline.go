// Package pipeline runs one cut from start to finish: inspect the source,
// pick streams and ranges, encode the segments, join them and clean up.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cutter/cleanup"
	"cutter/concatenator"
	"cutter/config"
	"cutter/cutlist"
	"cutter/ffmpeg"
	"cutter/ffprobe"
	"cutter/models"
	"cutter/progress"
	"cutter/pvr"
	"cutter/segmenter"
	"cutter/selector"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

// Prober inspects a media file.
type Prober interface {
	Probe(ctx context.Context, path string) (*ffprobe.ProbeResult, error)
}

// BookmarkStore reads and deletes the bookmarks of a file.
type BookmarkStore interface {
	ListBookmarks(ctx context.Context, fileURL string) ([]models.Bookmark, error)
	cleanup.BookmarkDeleter
}

// RecordingFinder resolves a PVR URL to candidate recordings.
type RecordingFinder interface {
	Lookup(ctx context.Context, pvrURL string, timeframe time.Duration) ([]pvr.Recording, error)
}

// Deps are the collaborators of a Cutter.
type Deps struct {
	Prober     Prober
	Transcoder ffmpeg.Transcoder
	Bookmarks  BookmarkStore   // nil when no video database is available
	Recordings RecordingFinder // nil without a PVR backend
	Logger     hclog.Logger
}

// Request is one cut.
type Request struct {
	Source   string // local path or pvr:// URL
	Markers  models.MarkerSelection
	Strategy selector.Strategy
	Progress progress.Sink
}

// NewRequest builds the request described by cfg.
func NewRequest(cfg *config.Config, sink progress.Sink) Request {
	var strategy selector.Strategy
	if cfg.StreamMode == "explicit" {
		strategy = selector.Explicit{Indices: cfg.Streams}
	} else {
		strategy = selector.Automatic{Policy: selector.Policy{
			AllowVisualImpaired:  cfg.Allow.VisualImpaired,
			AllowHearingImpaired: cfg.Allow.HearingImpaired,
			AllowTeletext:        cfg.Allow.Teletext,
		}}
	}
	return Request{
		Source:   cfg.Input,
		Markers:  models.NewMarkerSelection(cfg.Markers...),
		Strategy: strategy,
		Progress: sink,
	}
}

// Result describes a finished cut.
type Result struct {
	Plan     *Plan
	Output   string
	Segments []models.SegmentResult
	Cleanup  cleanup.Report
	Elapsed  time.Duration
}

// Cutter runs cuts with a fixed configuration.
type Cutter struct {
	cfg     *config.Config
	deps    Deps
	encoder *segmenter.Encoder
	joiner  *concatenator.Concatenator
	cleaner *cleanup.Sequencer
	logger  hclog.Logger
}

// New creates a Cutter. Prober and Transcoder are required.
func New(cfg *config.Config, deps Deps) (*Cutter, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if deps.Prober == nil {
		return nil, fmt.Errorf("prober cannot be nil")
	}
	if deps.Transcoder == nil {
		return nil, fmt.Errorf("transcoder cannot be nil")
	}
	logger := deps.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Cutter{
		cfg:     cfg,
		deps:    deps,
		encoder: segmenter.NewEncoder(deps.Transcoder, cfg.Video.Policy(), logger),
		joiner:  concatenator.NewConcatenator(deps.Transcoder, logger),
		cleaner: cleanup.NewSequencer(logger),
		logger:  logger.Named("pipeline"),
	}, nil
}

// Run performs the whole cut. Nothing outside the target directory is
// touched before the joined file exists. When encoding or joining fails the
// segments written so far stay on disk and are listed in the result.
func (c *Cutter) Run(ctx context.Context, req Request) (*Result, error) {
	started := time.Now()
	tracker := progress.NewTracker(req.Progress)
	logger := c.logger.With("run", uuid.NewString())

	plan, err := c.Plan(ctx, req)
	if err != nil {
		return nil, err
	}
	result := &Result{Plan: plan}

	logger.Info("cutting", "source", plan.Source.Path, "ranges", len(plan.Ranges),
		"streams", len(plan.Selection), "output", plan.JoinedPath())

	if err := os.MkdirAll(plan.SegmentDir, 0o755); err != nil {
		return result, models.NewError(models.KindEncodeFailed, "create segment directory", err)
	}

	encoded, err := c.encoder.Encode(ctx, plan.encodeRequest(tracker))
	if encoded != nil {
		result.Segments = encoded.Segments
	}
	if err != nil {
		logger.Error("encode failed", "segments_left", len(result.Segments), "error", err)
		return result, err
	}

	output, err := c.joiner.Join(ctx, concatenator.JoinRequest{
		Segments:      encoded.Segments,
		OutputDir:     plan.OutputDir,
		BaseName:      plan.BaseName,
		Extension:     plan.Extension,
		TotalDuration: encoded.TotalDuration,
		Progress:      tracker,
	})
	if err != nil {
		logger.Error("join failed", "segments_left", len(result.Segments), "error", err)
		return result, err
	}
	result.Output = output

	cleanupReq := cleanup.Request{
		OriginalPath:   plan.Source.Path,
		Segments:       models.SegmentPaths(encoded.Segments),
		DeleteOriginal: c.cfg.DeleteOriginal,
		BackupOriginal: c.cfg.Backup,
		Progress:       tracker,
	}
	if plan.BookmarksDeletable {
		cleanupReq.Bookmarks = plan.Bookmarks
		cleanupReq.Deleter = c.deps.Bookmarks
	}
	report, err := c.cleaner.Finalize(ctx, cleanupReq)
	result.Cleanup = report
	if err != nil {
		logger.Error("cleanup failed", "output", output, "error", err)
		return result, err
	}

	result.Elapsed = time.Since(started)
	logger.Info("cut finished", "output", output, "elapsed", result.Elapsed.Round(time.Millisecond))
	return result, nil
}

// Source is the local file behind a request.
type Source struct {
	Path      string         // local file
	URL       string         // the name Kodi stores bookmarks under
	Recording *pvr.Recording // set for PVR sources
}

// Inspection is what is known about a source before anything is selected.
type Inspection struct {
	Source     Source
	Probe      *ffprobe.ProbeResult
	Duration   float64
	VideoCodec string
	Streams    []models.StreamDescriptor
	Bookmarks  []models.Bookmark
	Regions    []models.Region
	// BookmarksDeletable is set when Bookmarks came from the video database.
	BookmarksDeletable bool
}

// Inspect resolves and probes source and loads its bookmarks.
func (c *Cutter) Inspect(ctx context.Context, source string) (*Inspection, error) {
	src, err := c.resolve(ctx, source)
	if err != nil {
		return nil, err
	}

	probe, err := c.deps.Prober.Probe(ctx, src.Path)
	if err != nil {
		return nil, err
	}
	duration, err := probe.GetDuration()
	if err != nil {
		return nil, models.NewError(models.KindInspectionFailed, "probe", err)
	}

	in := &Inspection{
		Source:     src,
		Probe:      probe,
		Duration:   duration,
		VideoCodec: probe.VideoCodec(),
		Streams:    probe.Descriptors(),
	}

	if err := c.loadBookmarks(ctx, in); err != nil {
		return nil, err
	}
	in.Regions = cutlist.Regions(in.Bookmarks)

	c.logger.Debug("inspected", "path", src.Path, "duration", duration,
		"streams", len(in.Streams), "bookmarks", len(in.Bookmarks))
	return in, nil
}

func (c *Cutter) loadBookmarks(ctx context.Context, in *Inspection) error {
	switch c.cfg.BookmarkSource {
	case "kodi":
		if c.deps.Bookmarks == nil {
			c.logger.Debug("no video database, cutting without bookmarks")
			return nil
		}
		bookmarks, err := c.deps.Bookmarks.ListBookmarks(ctx, in.Source.URL)
		if err != nil {
			return models.NewError(models.KindInspectionFailed, "load bookmarks", err)
		}
		in.Bookmarks = bookmarks
		in.BookmarksDeletable = true
	case "chapters":
		bookmarks, err := cutlist.FromChapters(in.Probe)
		if err != nil {
			return models.NewError(models.KindInspectionFailed, "read chapters", err)
		}
		in.Bookmarks = bookmarks
	}
	return nil
}

// Plan is a fully decided cut that has not run yet.
type Plan struct {
	*Inspection
	Selection models.StreamSelection
	Ranges    []models.CutRange // empty means the whole file
	// Segments are written as <SegmentDir>/<SegmentBase>.NNN<Extension>.
	SegmentDir  string
	SegmentBase string
	// The joined file is <OutputDir>/<BaseName>.cut<Extension>.
	OutputDir string
	BaseName  string
	Extension string
	Commands  []string // encode commands, for display
}

// JoinedPath returns the path of the final file.
func (p *Plan) JoinedPath() string {
	return concatenator.JoinedPath(p.OutputDir, p.BaseName, p.Extension)
}

func (p *Plan) encodeRequest(sink progress.Sink) segmenter.EncodeRequest {
	return segmenter.EncodeRequest{
		InputPath:        p.Source.Path,
		Ranges:           p.Ranges,
		Streams:          p.Selection,
		SourceDuration:   p.Duration,
		SourceVideoCodec: p.VideoCodec,
		OutputDir:        p.SegmentDir,
		BaseName:         p.SegmentBase,
		Extension:        p.Extension,
		Progress:         sink,
	}
}

// Plan decides streams, ranges and file names without running ffmpeg.
//
// A source without bookmarks is processed as a whole. A source with
// bookmarks but no kept region is reported as models.KindNothingSelected.
func (c *Cutter) Plan(ctx context.Context, req Request) (*Plan, error) {
	in, err := c.Inspect(ctx, req.Source)
	if err != nil {
		return nil, err
	}

	ext := c.cfg.Container
	if ext == "" {
		ext = filepath.Ext(in.Source.Path)
	}

	strategy := req.Strategy
	if strategy == nil {
		strategy = selector.Automatic{}
	}
	selection, err := selector.Select(in.Streams, strategy, selector.ForContainer(ext))
	if err != nil {
		return nil, err
	}

	plan := &Plan{Inspection: in, Selection: selection, Extension: ext}

	if len(in.Bookmarks) > 0 {
		plan.Ranges = cutlist.Compute(in.Bookmarks, req.Markers)
		if len(plan.Ranges) == 0 {
			return nil, models.NewError(models.KindNothingSelected, "compute ranges",
				fmt.Errorf("%d regions, none selected", len(in.Regions)))
		}
	}

	c.name(plan)

	commands, err := c.encoder.Commands(plan.encodeRequest(nil))
	if err != nil {
		return nil, err
	}
	for _, cmd := range commands {
		preview, err := cmd.DryRun()
		if err != nil {
			return nil, models.NewError(models.KindInvalidInput, "plan segments", err)
		}
		plan.Commands = append(plan.Commands, preview)
	}

	return plan, nil
}

// name fills in the segment and output locations.
func (c *Cutter) name(plan *Plan) {
	path := plan.Source.Path
	dir := c.cfg.OutputDir
	if dir == "" {
		dir = filepath.Dir(path)
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	plan.SegmentDir, plan.SegmentBase = dir, base
	plan.OutputDir, plan.BaseName = dir, base

	rec := plan.Source.Recording
	if rec == nil || !c.cfg.Rename.Enabled {
		return
	}
	opts := pvr.NameOptions{
		Subtitle:  c.cfg.Rename.Subtitle,
		Timestamp: c.cfg.Rename.Timestamp,
		Directory: c.cfg.Rename.Directory,
	}
	if renamed := rec.BaseName(opts); renamed != "" {
		plan.BaseName = renamed
	}
	plan.OutputDir = rec.TargetDir(opts, dir)
}
