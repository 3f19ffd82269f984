package youtube

import (
	"context"
	"sync"
	"time"
)

// YouTube Data API quota:
// - 10,000 units per day, reset at midnight
// - videos.list costs 1 unit

const (
	DefaultDailyQuota  = 10000
	DefaultMinInterval = 100 * time.Millisecond
	videosListCost     = 1
)

// Quota paces requests against the daily unit budget
type Quota struct {
	mu sync.Mutex

	dailyLimit int
	dailyUsage int
	resetsAt   time.Time

	// Minimum interval between requests
	minInterval time.Duration
	lastRequest time.Time

	now func() time.Time
}

// NewQuota creates a limiter allowing dailyLimit units per day
func NewQuota(dailyLimit int, minInterval time.Duration) *Quota {
	q := &Quota{
		dailyLimit:  dailyLimit,
		minInterval: minInterval,
		now:         time.Now,
	}
	q.resetsAt = nextMidnight(q.now())
	return q
}

func nextMidnight(t time.Time) time.Time {
	return t.Truncate(24 * time.Hour).Add(24 * time.Hour)
}

// Wait blocks until cost units can be spent without exceeding the quota
func (q *Quota) Wait(ctx context.Context, cost int) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	if now.After(q.resetsAt) {
		q.dailyUsage = 0
		q.resetsAt = nextMidnight(now)
	}

	// Out of units until the window resets
	if q.dailyUsage+cost > q.dailyLimit {
		if err := q.sleep(ctx, q.resetsAt.Sub(now)); err != nil {
			return err
		}
		q.dailyUsage = 0
		q.resetsAt = nextMidnight(q.now())
	}

	if elapsed := q.now().Sub(q.lastRequest); elapsed < q.minInterval {
		if err := q.sleep(ctx, q.minInterval-elapsed); err != nil {
			return err
		}
	}

	q.dailyUsage += cost
	q.lastRequest = q.now()
	return nil
}

// sleep releases the lock for d or until ctx is done. Callers hold q.mu.
func (q *Quota) sleep(ctx context.Context, d time.Duration) error {
	q.mu.Unlock()
	defer q.mu.Lock()

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Remaining returns the units left in the current window
func (q *Quota) Remaining() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.now().After(q.resetsAt) {
		return q.dailyLimit
	}
	return q.dailyLimit - q.dailyUsage
}
