package service

import (
	"context"

	"go.uber.org/zap"

	"workout-planner/internal/store"
)

// Rebuilder is a search index that can be rebuilt from the catalog
type Rebuilder interface {
	Rebuild(ctx context.Context, videos []store.Video) error
}

// KeepIndexed rebuilds idx once the store is hydrated and after every change.
// The returned function stops further rebuilds.
func KeepIndexed(s *store.Store, idx Rebuilder, logger *zap.Logger) func() {
	if logger == nil {
		logger = zap.NewNop()
	}
	rebuild := func(videos []store.Video) {
		if err := idx.Rebuild(context.Background(), videos); err != nil {
			logger.Error("rebuilding search index", zap.Error(err))
			return
		}
		logger.Debug("search index rebuilt", zap.Int("videos", len(videos)))
	}

	unsubscribe := s.Subscribe(func(st store.State) { rebuild(st.Videos) })
	s.OnHydrated(func() { rebuild(s.Videos()) })
	return unsubscribe
}
