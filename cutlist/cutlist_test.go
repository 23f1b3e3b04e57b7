package cutlist

import (
	"fmt"
	"math/rand"
	"testing"

	"cutter/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockMediaInfo implements MediaInfo for testing
type mockMediaInfo struct {
	duration    float64
	durationErr error
	chapters    []ChapterInfo
}

func (m *mockMediaInfo) GetDuration() (float64, error) {
	return m.duration, m.durationErr
}

func (m *mockMediaInfo) HasChapters() bool {
	return len(m.chapters) > 0
}

func (m *mockMediaInfo) GetChapters() []ChapterInfo {
	return m.chapters
}

func bookmarksAt(total float64, times ...float64) []models.Bookmark {
	out := make([]models.Bookmark, len(times))
	for i, tm := range times {
		out[i] = models.Bookmark{ID: int64(i + 1), TimeInSeconds: tm, TotalTimeInSeconds: total}
	}
	return out
}

func TestCompute_Scenarios(t *testing.T) {
	tests := []struct {
		name      string
		bookmarks []models.Bookmark
		selection models.MarkerSelection
		expected  []models.CutRange
	}{
		{
			name:      "keep region before first bookmark",
			bookmarks: bookmarksAt(600, 120),
			selection: models.NewMarkerSelection(0),
			expected:  []models.CutRange{{Start: 0, End: 120}},
		},
		{
			name:      "keep first and last, drop middle",
			bookmarks: bookmarksAt(600, 100, 300),
			selection: models.NewMarkerSelection(0, 2),
			expected:  []models.CutRange{{Start: 0, End: 100}, {Start: 300, End: 600}},
		},
		{
			name:      "adjacent regions merge",
			bookmarks: bookmarksAt(600, 100, 300),
			selection: models.NewMarkerSelection(0, 1),
			expected:  []models.CutRange{{Start: 0, End: 300}},
		},
		{
			name:      "all regions selected",
			bookmarks: bookmarksAt(600, 100, 300),
			selection: models.NewMarkerSelection(0, 1, 2),
			expected:  []models.CutRange{{Start: 0, End: 600}},
		},
		{
			name:      "only the tail",
			bookmarks: bookmarksAt(600, 100, 300),
			selection: models.NewMarkerSelection(2),
			expected:  []models.CutRange{{Start: 300, End: 600}},
		},
		{
			name:      "only the middle",
			bookmarks: bookmarksAt(600, 100, 300),
			selection: models.NewMarkerSelection(1),
			expected:  []models.CutRange{{Start: 100, End: 300}},
		},
		{
			name:      "no region selected",
			bookmarks: bookmarksAt(600, 100, 300),
			selection: models.NewMarkerSelection(),
			expected:  []models.CutRange{},
		},
		{
			name:      "no bookmarks",
			bookmarks: nil,
			selection: models.NewMarkerSelection(0),
			expected:  []models.CutRange{},
		},
		{
			name:      "out of range indices ignored",
			bookmarks: bookmarksAt(600, 100),
			selection: models.NewMarkerSelection(5, -1, 1),
			expected:  []models.CutRange{{Start: 100, End: 600}},
		},
		{
			name:      "zero length region dropped",
			bookmarks: bookmarksAt(600, 100, 100, 300),
			selection: models.NewMarkerSelection(1),
			expected:  []models.CutRange{},
		},
		{
			name:      "fractional times",
			bookmarks: bookmarksAt(90.75, 30.5, 60.25),
			selection: models.NewMarkerSelection(1, 2),
			expected:  []models.CutRange{{Start: 30.5, End: 90.75}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Compute(tt.bookmarks, tt.selection))
		})
	}
}

func TestCompute_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for iteration := 0; iteration < 500; iteration++ {
		n := rng.Intn(8)
		total := 1000.0
		times := make([]float64, n)
		cursor := 0.0
		for i := range times {
			cursor += 1 + float64(rng.Intn(100))
			times[i] = cursor
		}
		if cursor >= total {
			total = cursor + 1
		}
		bookmarks := bookmarksAt(total, times...)

		selection := models.NewMarkerSelection()
		for i := 0; i <= n; i++ {
			if rng.Intn(2) == 0 {
				selection[i] = struct{}{}
			}
		}

		name := fmt.Sprintf("iteration %d", iteration)
		ranges := Compute(bookmarks, selection)

		require.NoError(t, ValidateRanges(ranges), name)
		for i := 1; i < len(ranges); i++ {
			assert.Less(t, ranges[i-1].Start, ranges[i].Start, name)
			assert.LessOrEqual(t, ranges[i-1].End, ranges[i].Start, name)
		}

		selectedDuration := 0.0
		for _, region := range Regions(bookmarks) {
			if selection.Has(region.Index) {
				selectedDuration += region.Duration()
			}
		}
		assert.InDelta(t, selectedDuration, TotalDuration(ranges), 1e-9, name)

		if n > 0 && selection.Len() == n+1 {
			assert.Equal(t, []models.CutRange{{Start: 0, End: total}}, ranges, name)
		}
		if selection.Len() == 0 {
			assert.Empty(t, ranges, name)
		}
	}
}

func TestRegions(t *testing.T) {
	regions := Regions(bookmarksAt(600, 100, 300))

	assert.Equal(t, []models.Region{
		{Index: 0, Start: 0, End: 100},
		{Index: 1, Start: 100, End: 300},
		{Index: 2, Start: 300, End: 600},
	}, regions)

	assert.Nil(t, Regions(nil))
}

func TestFromChapters(t *testing.T) {
	tests := []struct {
		name        string
		info        MediaInfo
		expected    []models.Bookmark
		expectError bool
	}{
		{
			name: "chapters become boundaries",
			info: &mockMediaInfo{duration: 300, chapters: []ChapterInfo{
				{StartTime: "0.000000", EndTime: "100.000000"},
				{StartTime: "100.000000", EndTime: "250.500000"},
				{StartTime: "250.500000", EndTime: "300.000000"},
			}},
			expected: []models.Bookmark{
				{TimeInSeconds: 100, TotalTimeInSeconds: 300},
				{TimeInSeconds: 250.5, TotalTimeInSeconds: 300},
			},
		},
		{
			name: "unsorted and duplicate starts",
			info: &mockMediaInfo{duration: 300, chapters: []ChapterInfo{
				{StartTime: "200", EndTime: "300"},
				{StartTime: "50", EndTime: "200"},
				{StartTime: "50", EndTime: "200"},
				{StartTime: "300", EndTime: "300"},
			}},
			expected: []models.Bookmark{
				{TimeInSeconds: 50, TotalTimeInSeconds: 300},
				{TimeInSeconds: 200, TotalTimeInSeconds: 300},
			},
		},
		{
			name:     "no chapters",
			info:     &mockMediaInfo{duration: 300},
			expected: []models.Bookmark{},
		},
		{
			name:        "bad chapter time",
			info:        &mockMediaInfo{duration: 300, chapters: []ChapterInfo{{StartTime: "abc", EndTime: "1"}}},
			expectError: true,
		},
		{
			name:        "missing duration",
			info:        &mockMediaInfo{durationErr: fmt.Errorf("duration not available")},
			expectError: true,
		},
		{
			name:        "zero duration",
			info:        &mockMediaInfo{duration: 0},
			expectError: true,
		},
		{
			name:        "nil media info",
			info:        nil,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bookmarks, err := FromChapters(tt.info)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, bookmarks)
		})
	}
}

func TestValidateRanges(t *testing.T) {
	tests := []struct {
		name        string
		ranges      []models.CutRange
		expectError bool
	}{
		{name: "empty", ranges: nil},
		{name: "touching", ranges: []models.CutRange{{Start: 0, End: 10}, {Start: 10, End: 20}}},
		{name: "gap", ranges: []models.CutRange{{Start: 0, End: 10}, {Start: 30, End: 40}}},
		{name: "overlap", ranges: []models.CutRange{{Start: 0, End: 15}, {Start: 10, End: 20}}, expectError: true},
		{name: "unordered", ranges: []models.CutRange{{Start: 30, End: 40}, {Start: 0, End: 10}}, expectError: true},
		{name: "empty range", ranges: []models.CutRange{{Start: 5, End: 5}}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRanges(tt.ranges)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
