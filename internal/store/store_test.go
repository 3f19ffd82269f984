package store

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workout-planner/internal/storage"
)

var testNow = time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)

func setupTestStore(t *testing.T) (*Store, *storage.Memory) {
	t.Helper()

	mem := storage.NewMemory()
	s := New(mem, Options{Now: func() time.Time { return testNow }})
	require.NoError(t, s.Rehydrate(context.Background()))
	return s, mem
}

func testVideo(id string, duration int) Video {
	return Video{
		ID:           id,
		YoutubeID:    "dQw4w9WgXcQ",
		Title:        "Workout " + id,
		Duration:     duration,
		ChannelName:  "Channel",
		Types:        []string{TypeYoga},
		Equipment:    []string{EquipmentNone},
		BodyPart:     []string{BodyFull},
		ThumbnailURL: "https://img.youtube.com/vi/dQw4w9WgXcQ/mqdefault.jpg",
		CreatedAt:    "2024-01-01T00:00:00Z",
	}
}

// failingBackend rejects every write
type failingBackend struct{}

func (failingBackend) GetItem(context.Context, string) (string, bool, error) { return "", false, nil }
func (failingBackend) SetItem(context.Context, string, string) error {
	return errors.New("disk full")
}

func TestMutationsBeforeHydration(t *testing.T) {
	s := New(storage.NewMemory(), Options{})

	assert.False(t, s.Hydrated())
	err := s.AddVideo(testVideo("v1", 10))
	require.ErrorIs(t, err, ErrNotHydrated)
	assert.Empty(t, s.Videos())

	select {
	case <-s.Ready():
		t.Fatal("Ready closed before hydration")
	default:
	}
}

func TestRehydrateSignalsReady(t *testing.T) {
	s := New(storage.NewMemory(), Options{})

	called := 0
	s.OnHydrated(func() { called++ })

	done := make(chan error, 1)
	go func() { done <- s.Rehydrate(context.Background()) }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.WaitReady(ctx))
	require.NoError(t, <-done)

	assert.True(t, s.Hydrated())
	assert.Equal(t, 1, called)

	// Registering after hydration runs immediately
	s.OnHydrated(func() { called++ })
	assert.Equal(t, 2, called)

	// Fresh store starts from defaults
	assert.Equal(t, DefaultSettings(), s.Settings())
	assert.Empty(t, s.Videos())
	assert.Empty(t, s.Schedule())
}

func TestReadyWaitsForHydrationCallbacks(t *testing.T) {
	s := New(storage.NewMemory(), Options{})

	var built atomic.Bool
	s.OnHydrated(func() {
		time.Sleep(20 * time.Millisecond)
		built.Store(true)
	})
	go s.Rehydrate(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.WaitReady(ctx))
	assert.True(t, built.Load(), "callback had not finished when Ready closed")
}

func TestWaitReadyHonorsContext(t *testing.T) {
	s := New(storage.NewMemory(), Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.WaitReady(ctx), context.Canceled)
}

func TestAddVideo(t *testing.T) {
	s, _ := setupTestStore(t)

	t.Run("appends in insertion order", func(t *testing.T) {
		require.NoError(t, s.AddVideo(testVideo("v1", 10)))
		require.NoError(t, s.AddVideo(testVideo("v2", 20)))
		videos := s.Videos()
		require.Len(t, videos, 2)
		assert.Equal(t, "v1", videos[0].ID)
		assert.Equal(t, "v2", videos[1].ID)
	})

	t.Run("duplicate id is ignored", func(t *testing.T) {
		dup := testVideo("v1", 99)
		dup.Title = "Impostor"
		require.NoError(t, s.AddVideo(dup))
		videos := s.Videos()
		require.Len(t, videos, 2)
		assert.Equal(t, "Workout v1", videos[0].Title)
	})

	t.Run("missing id and createdAt are assigned", func(t *testing.T) {
		v := testVideo("", 5)
		v.CreatedAt = ""
		require.NoError(t, s.AddVideo(v))
		videos := s.Videos()
		require.Len(t, videos, 3)
		assert.NotEmpty(t, videos[2].ID)
		assert.Equal(t, testNow.Format(time.RFC3339Nano), videos[2].CreatedAt)
	})

	t.Run("caller slices are not aliased", func(t *testing.T) {
		v := testVideo("v4", 5)
		require.NoError(t, s.AddVideo(v))
		v.Types[0] = "Mutated"
		got, ok := s.Video("v4")
		require.True(t, ok)
		assert.Equal(t, []string{TypeYoga}, got.Types)
	})
}

func TestNewVideo(t *testing.T) {
	v := NewVideo(VideoDetails{YoutubeID: "abcdefghijk", Title: "Flow", Duration: 30}, testNow)
	assert.NotEmpty(t, v.ID)
	assert.Equal(t, testNow.Format(time.RFC3339Nano), v.CreatedAt)
	assert.Equal(t, []string{}, v.Types)

	other := NewVideo(VideoDetails{}, testNow)
	assert.NotEqual(t, v.ID, other.ID)
}

func TestRemoveVideoCascades(t *testing.T) {
	s, _ := setupTestStore(t)
	require.NoError(t, s.AddVideo(testVideo("v1", 10)))
	require.NoError(t, s.AddVideo(testVideo("v2", 20)))
	require.NoError(t, s.BatchScheduleWorkouts([]ScheduleRequest{
		{Date: "2024-01-01", VideoID: "v1"},
		{Date: "2024-01-02", VideoID: "v2"},
		{Date: "2024-01-03", VideoID: "v1"},
	}))

	require.NoError(t, s.RemoveVideo("v1"))

	_, ok := s.Video("v1")
	assert.False(t, ok)
	schedule := s.Schedule()
	require.Len(t, schedule, 1)
	assert.Equal(t, "v2", schedule[0].VideoID)

	// Unknown id changes nothing
	require.NoError(t, s.RemoveVideo("nope"))
	assert.Len(t, s.Videos(), 1)
	assert.Len(t, s.Schedule(), 1)
}

func TestUpdateVideo(t *testing.T) {
	s, _ := setupTestStore(t)
	require.NoError(t, s.AddVideo(testVideo("v1", 10)))
	require.NoError(t, s.AddVideo(testVideo("v2", 20)))
	require.NoError(t, s.ScheduleWorkout("2024-01-01", "v1"))
	before := s.Schedule()

	updated := testVideo("v1", 45)
	updated.Title = "Longer flow"
	updated.CreatedAt = "1999-01-01T00:00:00Z"
	require.NoError(t, s.UpdateVideo(updated))

	got, ok := s.Video("v1")
	require.True(t, ok)
	assert.Equal(t, "Longer flow", got.Title)
	assert.Equal(t, 45, got.Duration)
	assert.Equal(t, "2024-01-01T00:00:00Z", got.CreatedAt, "createdAt is immutable")

	other, _ := s.Video("v2")
	assert.Equal(t, testVideo("v2", 20), other)
	assert.Equal(t, before, s.Schedule())

	// Unknown id is a no-op
	require.NoError(t, s.UpdateVideo(testVideo("ghost", 1)))
	assert.Len(t, s.Videos(), 2)
}

func TestScheduleWorkout(t *testing.T) {
	s, _ := setupTestStore(t)

	// The video does not need to exist
	require.NoError(t, s.ScheduleWorkout("2024-02-01", "missing"))

	schedule := s.Schedule()
	require.Len(t, schedule, 1)
	assert.Equal(t, "2024-02-01", schedule[0].Date)
	assert.Equal(t, "missing", schedule[0].VideoID)
	assert.False(t, schedule[0].IsCompleted)
	assert.NotEmpty(t, schedule[0].ID)

	assert.Empty(t, s.ResolvedSchedule())
	assert.Len(t, s.Orphans(), 1)
}

func TestBatchScheduleWorkouts(t *testing.T) {
	s, _ := setupTestStore(t)

	require.NoError(t, s.BatchScheduleWorkouts([]ScheduleRequest{
		{Date: "2024-01-01", VideoID: "v1"},
		{Date: "2024-01-02", VideoID: "v2"},
	}))

	schedule := s.Schedule()
	require.Len(t, schedule, 2)
	assert.Equal(t, "2024-01-01", schedule[0].Date)
	assert.Equal(t, "v1", schedule[0].VideoID)
	assert.Equal(t, "2024-01-02", schedule[1].Date)
	assert.Equal(t, "v2", schedule[1].VideoID)
	for _, e := range schedule {
		assert.False(t, e.IsCompleted)
	}
	assert.NotEqual(t, schedule[0].ID, schedule[1].ID)

	// An empty batch writes nothing
	require.NoError(t, s.BatchScheduleWorkouts(nil))
	assert.Len(t, s.Schedule(), 2)
}

func TestToggleComplete(t *testing.T) {
	s, _ := setupTestStore(t)
	require.NoError(t, s.ScheduleWorkout("2024-01-01", "v1"))
	id := s.Schedule()[0].ID

	require.NoError(t, s.ToggleComplete(id))
	assert.True(t, s.Schedule()[0].IsCompleted)
	require.NoError(t, s.ToggleComplete(id))
	assert.False(t, s.Schedule()[0].IsCompleted)

	before := s.Schedule()
	require.NoError(t, s.ToggleComplete("does-not-exist"))
	assert.Equal(t, before, s.Schedule())
}

func TestRemoveFromSchedule(t *testing.T) {
	s, _ := setupTestStore(t)
	require.NoError(t, s.BatchScheduleWorkouts([]ScheduleRequest{
		{Date: "2024-01-01", VideoID: "v1"},
		{Date: "2024-01-02", VideoID: "v1"},
	}))
	first := s.Schedule()[0]

	require.NoError(t, s.RemoveFromSchedule(first.ID))
	schedule := s.Schedule()
	require.Len(t, schedule, 1)
	assert.Equal(t, "2024-01-02", schedule[0].Date)

	require.NoError(t, s.RemoveFromSchedule("unknown"))
	assert.Len(t, s.Schedule(), 1)
}

func TestUpdateSettings(t *testing.T) {
	s, mem := setupTestStore(t)

	name := "Sam"
	require.NoError(t, s.UpdateSettings(SettingsPatch{Name: &name}))
	got := s.Settings()
	assert.Equal(t, "Sam", got.Name)
	assert.Equal(t, 20, got.MonthlyGoal, "unspecified fields keep their value")
	assert.Equal(t, DefaultTheme, got.Theme)

	goal, theme := 12, "mint"
	require.NoError(t, s.UpdateSettings(SettingsPatch{MonthlyGoal: &goal, Theme: &theme}))
	got = s.Settings()
	assert.Equal(t, 12, got.MonthlyGoal)
	assert.Equal(t, "mint", got.Theme)
	assert.Equal(t, "Sam", got.Name)

	t.Run("invalid values are ignored", func(t *testing.T) {
		writes := mem.Writes()
		badGoal, badTheme := 0, "neon"
		require.NoError(t, s.UpdateSettings(SettingsPatch{MonthlyGoal: &badGoal, Theme: &badTheme}))
		got := s.Settings()
		assert.Equal(t, 12, got.MonthlyGoal)
		assert.Equal(t, "mint", got.Theme)
		assert.Equal(t, writes, mem.Writes(), "no-op is not persisted")
	})
}

func TestImportData(t *testing.T) {
	s, _ := setupTestStore(t)
	require.NoError(t, s.AddVideo(testVideo("v1", 10)))
	require.NoError(t, s.AddVideo(testVideo("v2", 20)))
	require.NoError(t, s.AddVideo(testVideo("v3", 30)))
	require.NoError(t, s.ScheduleWorkout("2024-01-01", "v1"))

	t.Run("replaces everything and can shrink the catalog", func(t *testing.T) {
		settings := Settings{Name: "Imported", MonthlyGoal: 8, Theme: "sky"}
		require.NoError(t, s.ImportData(ImportState{
			Videos:   []Video{testVideo("x1", 15)},
			Schedule: []ScheduleEntry{{ID: "s1", Date: "2024-03-01", VideoID: "x1"}},
			Settings: &settings,
		}))

		st := s.State()
		require.Len(t, st.Videos, 1)
		assert.Equal(t, "x1", st.Videos[0].ID)
		require.Len(t, st.Schedule, 1)
		assert.Equal(t, "s1", st.Schedule[0].ID)
		assert.Equal(t, settings, st.Settings)
	})

	t.Run("missing keys fall back to defaults", func(t *testing.T) {
		require.NoError(t, s.ImportData(ImportState{}))
		st := s.State()
		assert.Empty(t, st.Videos)
		assert.Empty(t, st.Schedule)
		assert.Equal(t, DefaultSettings(), st.Settings)
	})

	t.Run("orphans are kept but hidden", func(t *testing.T) {
		require.NoError(t, s.ImportData(ImportState{
			Videos: []Video{testVideo("x1", 15)},
			Schedule: []ScheduleEntry{
				{ID: "s1", Date: "2024-03-01", VideoID: "x1"},
				{ID: "s2", Date: "2024-03-02", VideoID: "gone"},
			},
		}))
		assert.Len(t, s.Schedule(), 2)
		resolved := s.ResolvedSchedule()
		require.Len(t, resolved, 1)
		assert.Equal(t, "x1", resolved[0].Video.ID)

		n, err := s.PruneOrphans()
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Len(t, s.Schedule(), 1)
		assert.Empty(t, s.Orphans())
	})
}

func TestMutationsArePersisted(t *testing.T) {
	s, mem := setupTestStore(t)
	require.NoError(t, s.AddVideo(testVideo("v1", 10)))
	require.NoError(t, s.ScheduleWorkout("2024-01-01", "v1"))
	id := s.Schedule()[0].ID
	require.NoError(t, s.ToggleComplete(id))

	raw, ok, err := mem.GetItem(context.Background(), StorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, raw, `"version":3`)

	reloaded := New(mem, Options{})
	require.NoError(t, reloaded.Rehydrate(context.Background()))
	assert.Equal(t, s.State(), reloaded.State())
}

func TestPersistFailureLeavesStateUnchanged(t *testing.T) {
	s := New(failingBackend{}, Options{})
	require.NoError(t, s.Rehydrate(context.Background()))

	err := s.AddVideo(testVideo("v1", 10))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Empty(t, s.Videos())
}

func TestSubscribe(t *testing.T) {
	s, _ := setupTestStore(t)

	var seen []int
	unsubscribe := s.Subscribe(func(st State) { seen = append(seen, len(st.Videos)) })

	require.NoError(t, s.AddVideo(testVideo("v1", 10)))
	require.NoError(t, s.AddVideo(testVideo("v2", 10)))
	// No-op mutations do not notify
	require.NoError(t, s.ToggleComplete("missing"))
	assert.Equal(t, []int{1, 2}, seen)

	unsubscribe()
	require.NoError(t, s.AddVideo(testVideo("v3", 10)))
	assert.Equal(t, []int{1, 2}, seen)
}

func TestSubscribeDeliversInOrder(t *testing.T) {
	s, _ := setupTestStore(t)

	var seen []int
	s.Subscribe(func(st State) { seen = append(seen, len(st.Videos)) })

	const n = 50
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.AddVideo(testVideo(fmt.Sprintf("v%d", i), 10)))
		}()
	}
	wg.Wait()

	require.NotEmpty(t, seen)
	for i := 1; i < len(seen); i++ {
		assert.Greater(t, seen[i], seen[i-1], "snapshot %d arrived after a newer one", i)
	}
	assert.Equal(t, n, seen[len(seen)-1])
}

// Random operation sequences never produce duplicate ids or leave entries
// pointing at a removed video.
func TestCatalogInvariants(t *testing.T) {
	s, _ := setupTestStore(t)
	rng := rand.New(rand.NewPCG(1, 2))

	for i := 0; i < 500; i++ {
		id := fmt.Sprintf("v%d", rng.IntN(20))
		switch rng.IntN(4) {
		case 0:
			require.NoError(t, s.AddVideo(testVideo(id, rng.IntN(60))))
		case 1:
			require.NoError(t, s.RemoveVideo(id))
			for _, e := range s.Schedule() {
				require.NotEqual(t, id, e.VideoID, "entry survived removal of its video")
			}
		case 2:
			require.NoError(t, s.UpdateVideo(testVideo(id, rng.IntN(60))))
		case 3:
			if _, ok := s.Video(id); ok {
				require.NoError(t, s.ScheduleWorkout("2024-01-01", id))
			}
		}

		seen := make(map[string]bool)
		for _, v := range s.Videos() {
			require.False(t, seen[v.ID], "duplicate id %s", v.ID)
			seen[v.ID] = true
		}
	}
	assert.Empty(t, s.Orphans())
}
