package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"cutter/models"
	"cutter/pvr"
)

// resolve maps a request source to a readable local file.
func (c *Cutter) resolve(ctx context.Context, source string) (Source, error) {
	if source == "" {
		return Source{}, models.NewError(models.KindInvalidInput, "resolve source", fmt.Errorf("source cannot be empty"))
	}

	src := Source{Path: source, URL: source}
	if pvr.IsRecordingURL(source) {
		rec, err := c.lookupRecording(ctx, source)
		if err != nil {
			return Source{}, err
		}
		src.Recording = rec
		src.Path = rec.Filename
		if c.cfg.PVR.SharedDir != "" {
			local, err := pvr.TranslatePath(rec.Filename, c.cfg.PVR.SharedDir)
			if err != nil {
				return Source{}, models.NewError(models.KindSourceUnavailable, "resolve source", err)
			}
			src.Path = local
		}
	} else if abs, err := filepath.Abs(source); err == nil {
		src.Path = abs
		src.URL = abs
	}

	info, err := os.Stat(src.Path)
	if err != nil {
		return Source{}, models.NewError(models.KindSourceUnavailable, "resolve source", err)
	}
	if !info.Mode().IsRegular() {
		return Source{}, models.NewError(models.KindSourceUnavailable, "resolve source",
			fmt.Errorf("%s is not a regular file", src.Path))
	}
	return src, nil
}

// lookupRecording finds the tvheadend recording behind a PVR URL. Several
// candidates can match; the one starting closest to the URL's time wins.
func (c *Cutter) lookupRecording(ctx context.Context, pvrURL string) (*pvr.Recording, error) {
	if c.deps.Recordings == nil {
		return nil, models.NewError(models.KindSourceUnavailable, "lookup recording",
			fmt.Errorf("no PVR backend configured for %s", pvrURL))
	}
	ref, err := pvr.ParseRecordingURL(pvrURL)
	if err != nil {
		return nil, models.NewError(models.KindInvalidInput, "lookup recording", err)
	}

	candidates, err := c.deps.Recordings.Lookup(ctx, pvrURL, c.cfg.PVR.Timeframe)
	if err != nil {
		return nil, models.NewError(models.KindSourceUnavailable, "lookup recording", err)
	}
	if len(candidates) == 0 {
		return nil, models.NewError(models.KindSourceUnavailable, "lookup recording",
			fmt.Errorf("no recording of %q on %s near %s", ref.Title, ref.ChannelName, ref.Start.Format("2006-01-02 15:04")))
	}

	best := 0
	for i := range candidates {
		if distance(candidates[i].StartReal, ref.Start.Unix()) < distance(candidates[best].StartReal, ref.Start.Unix()) {
			best = i
		}
	}
	if len(candidates) > 1 {
		c.logger.Warn("several recordings match, using the closest", "count", len(candidates),
			"title", candidates[best].Title, "file", candidates[best].Filename)
	}
	rec := candidates[best]
	return &rec, nil
}

func distance(a, b int64) int64 {
	if a > b {
		return a - b
	}
	return b - a
}
