package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNotHydrated is returned by mutations issued before Rehydrate completes
var ErrNotHydrated = errors.New("store not hydrated")

// Backend is the durable key/value storage the state blob is written to
type Backend interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
}

// Options configures a Store
type Options struct {
	// Logger receives hydration and persistence events. Defaults to a no-op logger.
	Logger *zap.Logger
	// NewID generates schedule entry ids. Defaults to random UUIDs.
	NewID func() string
	// Now is the clock used for creation and export timestamps.
	Now func() time.Time
}

// Store is the single source of truth for the catalog, schedule and settings.
// All mutations go through its methods and are persisted before they return.
type Store struct {
	backend Backend
	logger  *zap.Logger
	newID   func() string
	now     func() time.Time

	mu       sync.Mutex
	state    State
	hydrated bool
	ready    chan struct{}
	seq      uint64

	// deliverMu serializes listener calls; delivered is the seq of the
	// newest snapshot handed out.
	deliverMu sync.Mutex
	delivered uint64

	listenerMu   sync.Mutex
	listeners    map[int]func(State)
	nextListener int
	onHydrated   []func()
}

// New creates a store over backend. Call Rehydrate before using it.
func New(backend Backend, o Options) *Store {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return &Store{
		backend:   backend,
		logger:    o.Logger,
		newID:     o.NewID,
		now:       o.Now,
		state:     defaultState(),
		ready:     make(chan struct{}),
		listeners: make(map[int]func(State)),
	}
}

func defaultState() State {
	return State{
		Videos:   []Video{},
		Schedule: []ScheduleEntry{},
		Settings: DefaultSettings(),
	}
}

// --- Mutations ---

// AddVideo appends v to the catalog.
// A missing id or createdAt is assigned; a duplicate id is ignored.
func (s *Store) AddVideo(v Video) error {
	v = v.clone()
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.CreatedAt == "" {
		v.CreatedAt = s.now().UTC().Format(time.RFC3339Nano)
	}
	v.Duration = max(v.Duration, 0)
	return s.mutate("add video", func(st *State) bool {
		if indexOfVideo(st.Videos, v.ID) >= 0 {
			s.logger.Warn("ignoring duplicate video id", zap.String("id", v.ID))
			return false
		}
		st.Videos = append(st.Videos, v)
		return true
	})
}

// RemoveVideo deletes a video and every schedule entry that references it
func (s *Store) RemoveVideo(id string) error {
	return s.mutate("remove video", func(st *State) bool {
		i := indexOfVideo(st.Videos, id)
		kept := st.Schedule[:0]
		removed := 0
		for _, e := range st.Schedule {
			if e.VideoID == id {
				removed++
				continue
			}
			kept = append(kept, e)
		}
		st.Schedule = kept
		if i >= 0 {
			st.Videos = append(st.Videos[:i], st.Videos[i+1:]...)
		}
		return i >= 0 || removed > 0
	})
}

// UpdateVideo replaces the catalog entry with the same id.
// The stored creation timestamp is kept; unknown ids are ignored.
func (s *Store) UpdateVideo(v Video) error {
	v = v.clone()
	v.Duration = max(v.Duration, 0)
	return s.mutate("update video", func(st *State) bool {
		i := indexOfVideo(st.Videos, v.ID)
		if i < 0 {
			return false
		}
		v.CreatedAt = st.Videos[i].CreatedAt
		st.Videos[i] = v
		return true
	})
}

// ScheduleWorkout places a video on a date.
// The video id is not checked; readers skip entries whose video is gone.
func (s *Store) ScheduleWorkout(date, videoID string) error {
	return s.BatchScheduleWorkouts([]ScheduleRequest{{Date: date, VideoID: videoID}})
}

// BatchScheduleWorkouts appends one entry per request, in order
func (s *Store) BatchScheduleWorkouts(reqs []ScheduleRequest) error {
	if len(reqs) == 0 {
		return nil
	}
	entries := make([]ScheduleEntry, len(reqs))
	for i, r := range reqs {
		entries[i] = ScheduleEntry{
			ID:      s.newID(),
			Date:    r.Date,
			VideoID: r.VideoID,
		}
	}
	return s.mutate("schedule workouts", func(st *State) bool {
		st.Schedule = append(st.Schedule, entries...)
		return true
	})
}

// ToggleComplete flips the completion flag of a schedule entry
func (s *Store) ToggleComplete(id string) error {
	return s.mutate("toggle complete", func(st *State) bool {
		for i := range st.Schedule {
			if st.Schedule[i].ID == id {
				st.Schedule[i].IsCompleted = !st.Schedule[i].IsCompleted
				return true
			}
		}
		return false
	})
}

// RemoveFromSchedule deletes a schedule entry
func (s *Store) RemoveFromSchedule(id string) error {
	return s.mutate("remove from schedule", func(st *State) bool {
		for i := range st.Schedule {
			if st.Schedule[i].ID == id {
				st.Schedule = append(st.Schedule[:i], st.Schedule[i+1:]...)
				return true
			}
		}
		return false
	})
}

// UpdateSettings merges the set fields of p into the settings.
// An unknown theme or a non-positive goal is ignored.
func (s *Store) UpdateSettings(p SettingsPatch) error {
	return s.mutate("update settings", func(st *State) bool {
		next := st.Settings
		if p.Name != nil {
			next.Name = *p.Name
		}
		if p.MonthlyGoal != nil {
			if *p.MonthlyGoal > 0 {
				next.MonthlyGoal = *p.MonthlyGoal
			} else {
				s.logger.Warn("ignoring non-positive monthly goal", zap.Int("goal", *p.MonthlyGoal))
			}
		}
		if p.Theme != nil {
			if ValidTheme(*p.Theme) {
				next.Theme = *p.Theme
			} else {
				s.logger.Warn("ignoring unknown theme", zap.String("theme", *p.Theme))
			}
		}
		if p.LastExportedAt != nil {
			next.LastExportedAt = *p.LastExportedAt
		}
		if next == st.Settings {
			return false
		}
		st.Settings = next
		return true
	})
}

// ImportData replaces the whole state. Previous contents are discarded.
// Schedule entries are kept even when their video is missing.
func (s *Store) ImportData(in ImportState) error {
	next := defaultState()
	for _, v := range in.Videos {
		next.Videos = append(next.Videos, v.clone())
	}
	next.Schedule = append(next.Schedule, in.Schedule...)
	if in.Settings != nil {
		next.Settings = normalizeSettings(*in.Settings)
	}
	return s.mutate("import data", func(st *State) bool {
		*st = next
		return true
	})
}

// PruneOrphans deletes schedule entries whose video no longer exists.
// It returns the number of entries removed.
func (s *Store) PruneOrphans() (int, error) {
	removed := 0
	err := s.mutate("prune orphans", func(st *State) bool {
		kept := st.Schedule[:0]
		for _, e := range st.Schedule {
			if indexOfVideo(st.Videos, e.VideoID) < 0 {
				removed++
				continue
			}
			kept = append(kept, e)
		}
		st.Schedule = kept
		return removed > 0
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// mutate applies fn to a copy of the state, persists the result and
// installs it. fn returns false when nothing changed.
func (s *Store) mutate(op string, fn func(st *State) bool) error {
	s.mu.Lock()
	if !s.hydrated {
		s.mu.Unlock()
		return fmt.Errorf("%s: %w", op, ErrNotHydrated)
	}

	next := s.state.clone()
	if !fn(&next) {
		s.mu.Unlock()
		return nil
	}

	if err := s.persist(next); err != nil {
		s.mu.Unlock()
		s.logger.Error("persisting state", zap.String("op", op), zap.Error(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	s.state = next
	s.seq++
	seq := s.seq
	snapshot := next.clone()
	s.mu.Unlock()

	s.notify(seq, snapshot)
	return nil
}

// persist writes st under StorageKey. Callers hold s.mu.
func (s *Store) persist(st State) error {
	blob, err := encodeEnvelope(st)
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	if err := s.backend.SetItem(context.Background(), StorageKey, blob); err != nil {
		return fmt.Errorf("writing state: %w", err)
	}
	return nil
}

// --- Reads ---

// State returns a copy of the full state
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Videos returns the catalog in insertion order
func (s *Store) Videos() []Video {
	return s.State().Videos
}

// Schedule returns every schedule entry, including orphans
func (s *Store) Schedule() []ScheduleEntry {
	return s.State().Schedule
}

// Settings returns the current settings
func (s *Store) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Settings
}

// Video looks up a catalog entry by id
func (s *Store) Video(id string) (Video, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOfVideo(s.state.Videos, id)
	if i < 0 {
		return Video{}, false
	}
	return s.state.Videos[i].clone(), true
}

// ResolvedSchedule joins schedule entries with their videos, skipping orphans
func (s *Store) ResolvedSchedule() []ResolvedEntry {
	return Resolve(s.State())
}

// Orphans returns the schedule entries whose video is missing
func (s *Store) Orphans() []ScheduleEntry {
	st := s.State()
	var out []ScheduleEntry
	for _, e := range st.Schedule {
		if _, ok := st.LookupVideo(e.VideoID); !ok {
			out = append(out, e)
		}
	}
	return out
}

// Resolve joins st's schedule with its catalog, skipping orphans
func Resolve(st State) []ResolvedEntry {
	byID := make(map[string]Video, len(st.Videos))
	for _, v := range st.Videos {
		byID[v.ID] = v
	}
	out := make([]ResolvedEntry, 0, len(st.Schedule))
	for _, e := range st.Schedule {
		v, ok := byID[e.VideoID]
		if !ok {
			continue
		}
		out = append(out, ResolvedEntry{Entry: e, Video: v})
	}
	return out
}

// LookupVideo finds a video by id in st
func (st State) LookupVideo(id string) (Video, bool) {
	i := indexOfVideo(st.Videos, id)
	if i < 0 {
		return Video{}, false
	}
	return st.Videos[i], true
}

func indexOfVideo(videos []Video, id string) int {
	for i := range videos {
		if videos[i].ID == id {
			return i
		}
	}
	return -1
}

// --- Subscriptions ---

// Subscribe registers fn to receive the new state after every mutation.
// Listeners are called one at a time and never see an older state after a
// newer one; a snapshot superseded before delivery is skipped. fn must not
// mutate the store. The returned function removes the subscription.
func (s *Store) Subscribe(fn func(State)) func() {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	return func() {
		s.listenerMu.Lock()
		defer s.listenerMu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) notify(seq uint64, st State) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	if seq <= s.delivered {
		return
	}
	s.delivered = seq

	s.listenerMu.Lock()
	fns := make([]func(State), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenerMu.Unlock()

	for _, fn := range fns {
		fn(st.clone())
	}
}
