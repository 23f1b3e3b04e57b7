package segmenter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cutter/command/video"
	"cutter/internal/ffmpegtest"
	"cutter/models"
	"cutter/progress"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRequest(t *testing.T, ranges []models.CutRange) EncodeRequest {
	t.Helper()
	return EncodeRequest{
		InputPath:        "/rec/show.ts",
		Ranges:           ranges,
		Streams:          models.StreamSelection{0, 1},
		SourceDuration:   3600,
		SourceVideoCodec: "h264",
		OutputDir:        t.TempDir(),
		BaseName:         "show",
		Extension:        ".ts",
	}
}

func TestEncode_OneJobPerRange(t *testing.T) {
	fake := &ffmpegtest.Fake{Progress: []float64{5, 10}}
	recorder := &ffmpegtest.Recorder{}
	req := newRequest(t, []models.CutRange{{Start: 0, End: 20}, {Start: 60, End: 80}, {Start: 100, End: 140}})
	req.Progress = recorder

	result, err := NewEncoder(fake, video.DefaultPolicy(), nil).Encode(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, fake.Calls, 3)
	require.Len(t, result.Segments, 3)
	assert.InDelta(t, 80.0, result.TotalDuration, 1e-9)

	for i, seg := range result.Segments {
		assert.Equal(t, i+1, seg.Sequence)
		assert.FileExists(t, seg.OutputPath)
	}
	assert.Equal(t, filepath.Join(req.OutputDir, "show.002.ts"), result.Segments[1].OutputPath)
	assert.Equal(t, 40.0, result.Segments[2].Duration)

	second := strings.Join(fake.Calls[1], " ")
	assert.Contains(t, second, "-ss 00:01:00.00 -to 00:01:20.00")
	assert.Contains(t, second, "-c:v copy")
	assert.Contains(t, second, "-map 0:0 -map 0:1")

	assert.True(t, recorder.Monotonic(), "progress went backwards: %v", recorder.Percents)
	assert.Equal(t, progress.EncodeHigh, recorder.Last())
	// first job owns a quarter of the window, second job starts there
	assert.Contains(t, recorder.Percents, 20)
	assert.Contains(t, recorder.Percents, 40)
}

func TestEncode_WholeFileWithoutRanges(t *testing.T) {
	fake := &ffmpegtest.Fake{}
	req := newRequest(t, nil)

	result, err := NewEncoder(fake, video.DefaultPolicy(), nil).Encode(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, fake.Calls, 1)
	assert.NotContains(t, fake.Calls[0], "-ss")
	assert.NotContains(t, fake.Calls[0], "-to")
	require.Len(t, result.Segments, 1)
	assert.Equal(t, 3600.0, result.Segments[0].Duration)
	assert.Equal(t, 3600.0, result.TotalDuration)
}

func TestEncode_ReencodePolicy(t *testing.T) {
	fake := &ffmpegtest.Fake{}
	req := newRequest(t, []models.CutRange{{Start: 0, End: 10}})
	req.SourceVideoCodec = "mpeg2video"

	_, err := NewEncoder(fake, video.DefaultPolicy().SetPreset("fast"), nil).Encode(context.Background(), req)
	require.NoError(t, err)

	args := strings.Join(fake.Calls[0], " ")
	assert.Contains(t, args, "-fflags +igndts -vf yadif -c:v libx264 -preset fast -tune film")
}

func TestEncode_FailureStopsAndReturnsPartial(t *testing.T) {
	fake := &ffmpegtest.Fake{FailOn: map[int]error{2: errors.New("ffmpeg exited with code 1")}}
	req := newRequest(t, []models.CutRange{{Start: 0, End: 20}, {Start: 60, End: 80}, {Start: 100, End: 140}})

	result, err := NewEncoder(fake, video.DefaultPolicy(), nil).Encode(context.Background(), req)
	require.Error(t, err)

	assert.True(t, models.IsKind(err, models.KindEncodeFailed))
	assert.Contains(t, err.Error(), "encode segment 2")
	assert.Equal(t, 2, fake.CallCount(), "no job may start after a failure")
	require.NotNil(t, result)
	require.Len(t, result.Segments, 1)
	assert.FileExists(t, result.Segments[0].OutputPath)
}

func TestEncode_TimeoutKeepsKind(t *testing.T) {
	timeout := models.NewError(models.KindTimeout, "ffmpeg", context.DeadlineExceeded)
	fake := &ffmpegtest.Fake{FailOn: map[int]error{1: timeout}}

	_, err := NewEncoder(fake, video.DefaultPolicy(), nil).Encode(context.Background(), newRequest(t, nil))
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindTimeout))
}

func TestEncode_CancelledBetweenJobs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fake := &ffmpegtest.Fake{}
	// cancel once the first job has completed its share
	req := newRequest(t, []models.CutRange{{Start: 0, End: 20}, {Start: 60, End: 80}})
	req.Progress = progress.SinkFunc(func(percent int, _ string) {
		if percent >= 40 {
			cancel()
		}
	})

	result, err := NewEncoder(fake, video.DefaultPolicy(), nil).Encode(ctx, req)
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindCancelled))
	assert.Equal(t, 1, fake.CallCount())
	assert.Len(t, result.Segments, 1)
}

func TestEncode_AlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fake := &ffmpegtest.Fake{}

	result, err := NewEncoder(fake, video.DefaultPolicy(), nil).Encode(ctx, newRequest(t, nil))
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindCancelled))
	assert.Zero(t, fake.CallCount())
	assert.Empty(t, result.Segments)
}

func TestEncode_InvalidRequests(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*EncodeRequest)
		kind   models.ErrorKind
	}{
		{"no input", func(r *EncodeRequest) { r.InputPath = "" }, models.KindInvalidInput},
		{"no streams", func(r *EncodeRequest) { r.Streams = nil }, models.KindNoStreamsSelected},
		{"overlapping ranges", func(r *EncodeRequest) {
			r.Ranges = []models.CutRange{{Start: 0, End: 30}, {Start: 20, End: 40}}
		}, models.KindInvalidInput},
		{"inverted range", func(r *EncodeRequest) {
			r.Ranges = []models.CutRange{{Start: 30, End: 10}}
		}, models.KindInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &ffmpegtest.Fake{}
			req := newRequest(t, nil)
			tt.mutate(&req)

			result, err := NewEncoder(fake, video.DefaultPolicy(), nil).Encode(context.Background(), req)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, models.IsKind(err, tt.kind), "got %v", err)
			assert.Zero(t, fake.CallCount())

			entries, _ := os.ReadDir(req.OutputDir)
			assert.Empty(t, entries)
		})
	}
}

func TestCommands(t *testing.T) {
	req := newRequest(t, []models.CutRange{{Start: 0, End: 20}, {Start: 60, End: 80}})

	builders, err := NewEncoder(&ffmpegtest.Fake{}, video.DefaultPolicy(), nil).Commands(req)
	require.NoError(t, err)
	require.Len(t, builders, 2)

	preview, err := builders[1].DryRun()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(preview, "ffmpeg -i /rec/show.ts -ss 00:01:00.00 -to 00:01:20.00"), preview)
	assert.Equal(t, filepath.Join(req.OutputDir, "show.002.ts"), builders[1].GetOutputPath())
}
