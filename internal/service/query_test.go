package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workout-planner/internal/store"
)

func ids(videos []store.Video) []string {
	out := make([]string, len(videos))
	for i, v := range videos {
		out[i] = v.ID
	}
	return out
}

func TestLibrary(t *testing.T) {
	s := setupTestStore(t)
	addVideos(t, s, sampleCatalog()...)
	q := NewQueryService(s)

	tests := []struct {
		name   string
		filter LibraryFilter
		want   []string
	}{
		{"no filters", LibraryFilter{}, []string{"v1", "v2", "v3", "v4", "v5", "v6"}},
		{"All is no filter", LibraryFilter{Type: FilterAll, BodyPart: FilterAll, Duration: FilterAll, Channel: FilterAll}, []string{"v1", "v2", "v3", "v4", "v5", "v6"}},
		{"search title case-insensitive", LibraryFilter{Search: "BURN"}, []string{"v2", "v5"}},
		{"search channel", LibraryFilter{Search: "girvan"}, []string{"v3", "v5"}},
		{"type", LibraryFilter{Type: store.TypeStrength}, []string{"v3", "v5"}},
		{"body part", LibraryFilter{BodyPart: "Legs"}, []string{"v5", "v6"}},
		{"channel exact", LibraryFilter{Channel: "Caroline Girvan"}, []string{"v3", "v5"}},
		{"under 15", LibraryFilter{Duration: DurationUnder15}, []string{"v1"}},
		{"15 to 30 inclusive", LibraryFilter{Duration: Duration15To30}, []string{"v2", "v3"}},
		{"30 to 45 excludes 30", LibraryFilter{Duration: Duration30To45}, []string{"v4", "v5"}},
		{"over 45", LibraryFilter{Duration: DurationOver45}, []string{"v6"}},
		{"combined", LibraryFilter{Search: "burn", Type: store.TypeStrength}, []string{"v5"}},
		{"nothing", LibraryFilter{Search: "swim"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := q.Library(context.Background(), tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestLibraryRejectsUnknownDuration(t *testing.T) {
	q := NewQueryService(setupTestStore(t))
	_, err := q.Library(context.Background(), LibraryFilter{Duration: "forever"})
	assert.Error(t, err)
}

func TestLibraryFilterActive(t *testing.T) {
	assert.False(t, LibraryFilter{}.Active())
	assert.False(t, LibraryFilter{Type: FilterAll}.Active())
	assert.True(t, LibraryFilter{Search: "x"}.Active())
	assert.True(t, LibraryFilter{Duration: DurationOver45}.Active())
}

type fakeSearcher struct {
	ids []string
	err error
}

func (f fakeSearcher) Search(context.Context, string, int) ([]string, error) {
	return f.ids, f.err
}

func TestLibraryWithSearcher(t *testing.T) {
	s := setupTestStore(t)
	addVideos(t, s, sampleCatalog()...)

	t.Run("rank order and other filters", func(t *testing.T) {
		q := NewQueryService(s, WithSearcher(fakeSearcher{ids: []string{"v5", "gone", "v1", "v3"}}))
		got, err := q.Library(context.Background(), LibraryFilter{Search: "anything", Type: store.TypeStrength})
		require.NoError(t, err)
		assert.Equal(t, []string{"v5", "v3"}, ids(got))
	})

	t.Run("empty search skips the index", func(t *testing.T) {
		q := NewQueryService(s, WithSearcher(fakeSearcher{err: errors.New("unused")}))
		got, err := q.Library(context.Background(), LibraryFilter{})
		require.NoError(t, err)
		assert.Len(t, got, 6)
	})

	t.Run("search errors are returned", func(t *testing.T) {
		q := NewQueryService(s, WithSearcher(fakeSearcher{err: errors.New("boom")}))
		_, err := q.Library(context.Background(), LibraryFilter{Search: "x"})
		assert.Error(t, err)
	})
}

func TestPaginate(t *testing.T) {
	videos := make([]store.Video, 30)

	p := Paginate(videos, 1, 12)
	assert.Len(t, p.Videos, 12)
	assert.Equal(t, 30, p.Total)
	assert.True(t, p.HasMore)

	p = Paginate(videos, 3, 12)
	assert.Len(t, p.Videos, 30)
	assert.False(t, p.HasMore)

	p = Paginate(videos, 0, 0)
	assert.Len(t, p.Videos, DefaultPageSize)
}

func TestChannels(t *testing.T) {
	s := setupTestStore(t)
	addVideos(t, s, sampleCatalog()...)
	q := NewQueryService(s)

	assert.Equal(t, []string{"Blogilates", "Caroline Girvan", "Fitness Blender", "Global Cycling", "Yoga With Adriene"}, q.Channels())
}

func TestWeek(t *testing.T) {
	s := setupTestStore(t)
	addVideos(t, s, sampleCatalog()[:2]...)
	require.NoError(t, s.BatchScheduleWorkouts([]store.ScheduleRequest{
		{Date: "2024-01-15", VideoID: "v1"},
		{Date: "2024-01-17", VideoID: "v1"},
		{Date: "2024-01-17", VideoID: "v2"},
		{Date: "2024-01-18", VideoID: "missing"},
		{Date: "2024-01-22", VideoID: "v2"},
	}))

	q := NewQueryService(s, WithClock(func() time.Time { return testNow }))
	week := q.Week(testNow)
	require.Len(t, week, 7)
	assert.Equal(t, "2024-01-15", week[0].Date)
	assert.Equal(t, "2024-01-21", week[6].Date)

	assert.Len(t, week[0].Entries, 1)
	assert.Len(t, week[2].Entries, 2)
	assert.Equal(t, 25, week[2].Minutes())
	assert.Empty(t, week[3].Entries, "orphans are skipped")

	today := q.Today()
	assert.Equal(t, "2024-01-17", today.Date)
	assert.Len(t, today.Entries, 2)

	assert.Len(t, q.Day("2024-01-22").Entries, 1)
}
