package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"workout-planner/internal/store"
)

// Searcher ranks catalog ids for a free-text term
type Searcher interface {
	Search(ctx context.Context, term string, size int) ([]string, error)
}

// QueryService provides read-only views over the store
type QueryService struct {
	store    *store.Store
	searcher Searcher
	now      func() time.Time

	reminderDays int
}

// QueryOption configures a QueryService
type QueryOption func(*QueryService)

// WithSearcher ranks library searches with s instead of substring matching
func WithSearcher(s Searcher) QueryOption {
	return func(q *QueryService) { q.searcher = s }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) QueryOption {
	return func(q *QueryService) { q.now = now }
}

// WithReminderDays sets how old an export may get before a backup is recommended
func WithReminderDays(days int) QueryOption {
	return func(q *QueryService) {
		if days > 0 {
			q.reminderDays = days
		}
	}
}

// NewQueryService creates a new query service
func NewQueryService(s *store.Store, opts ...QueryOption) *QueryService {
	q := &QueryService{
		store:        s,
		now:          time.Now,
		reminderDays: DefaultBackupReminderDays,
	}
	for _, o := range opts {
		o(q)
	}
	return q
}

// LibraryFilter narrows the catalog. Empty or "All" fields do not constrain.
type LibraryFilter struct {
	Search   string
	Type     string
	BodyPart string
	Duration string // one of DurationBuckets
	Channel  string
}

// Active reports whether any filter is set
func (f LibraryFilter) Active() bool {
	return f.Search != "" || !isAll(f.Type) || !isAll(f.BodyPart) || !isAll(f.Duration) || !isAll(f.Channel)
}

func isAll(v string) bool {
	return v == "" || v == FilterAll
}

// Validate rejects unknown duration buckets
func (f LibraryFilter) Validate() error {
	if !isAll(f.Duration) && !slices.Contains(DurationBuckets, f.Duration) {
		return fmt.Errorf("unknown duration filter %q (want one of %s)", f.Duration, strings.Join(DurationBuckets, ", "))
	}
	return nil
}

// matches applies every filter but Search
func (f LibraryFilter) matches(v store.Video) bool {
	if !isAll(f.Type) && !slices.Contains(v.Types, f.Type) {
		return false
	}
	if !isAll(f.BodyPart) && !slices.Contains(v.BodyPart, f.BodyPart) {
		return false
	}
	if !isAll(f.Channel) && v.ChannelName != f.Channel {
		return false
	}
	return inDurationBucket(v.Duration, f.Duration)
}

func inDurationBucket(minutes int, bucket string) bool {
	switch bucket {
	case DurationUnder15:
		return minutes < 15
	case Duration15To30:
		return minutes >= 15 && minutes <= 30
	case Duration30To45:
		return minutes > 30 && minutes <= 45
	case DurationOver45:
		return minutes > 45
	default:
		return true
	}
}

// Library returns the catalog videos passing f. Without a searcher, Search is a
// case-insensitive substring match on title or channel in catalog order;
// with one, hits come back in rank order.
func (q *QueryService) Library(ctx context.Context, f LibraryFilter) ([]store.Video, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	videos := q.store.Videos()

	term := strings.TrimSpace(f.Search)
	if term != "" && q.searcher != nil {
		ids, err := q.searcher.Search(ctx, term, MaxSearchResults)
		if err != nil {
			return nil, fmt.Errorf("searching library: %w", err)
		}
		byID := make(map[string]store.Video, len(videos))
		for _, v := range videos {
			byID[v.ID] = v
		}
		out := []store.Video{}
		for _, id := range ids {
			if v, ok := byID[id]; ok && f.matches(v) {
				out = append(out, v)
			}
		}
		return out, nil
	}

	needle := strings.ToLower(f.Search)
	out := []store.Video{}
	for _, v := range videos {
		if needle != "" &&
			!strings.Contains(strings.ToLower(v.Title), needle) &&
			!strings.Contains(strings.ToLower(v.ChannelName), needle) {
			continue
		}
		if f.matches(v) {
			out = append(out, v)
		}
	}
	return out, nil
}

// Page is one window of a result list
type Page struct {
	Videos  []store.Video
	Total   int
	HasMore bool
}

// Paginate returns the first n*size videos, growing the window like an infinite scroll
func Paginate(videos []store.Video, pages, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	visible := min(max(pages, 1)*size, len(videos))
	return Page{
		Videos:  videos[:visible],
		Total:   len(videos),
		HasMore: visible < len(videos),
	}
}

// Channels returns the distinct channel names in the catalog, sorted
func (q *QueryService) Channels() []string {
	var channels []string
	for _, v := range q.store.Videos() {
		if !slices.Contains(channels, v.ChannelName) {
			channels = append(channels, v.ChannelName)
		}
	}
	slices.Sort(channels)
	return channels
}
