package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// corruptSuffix names the key an undecodable blob is copied to before it is replaced
const corruptSuffix = ".corrupt"

// Rehydrate loads the persisted state, migrating it to CurrentVersion, and
// marks the store ready. Readers never see the pre-migration state.
// A missing blob hydrates to defaults; an undecodable one is set aside and
// replaced with defaults. Only a storage read failure is returned.
func (s *Store) Rehydrate(ctx context.Context) error {
	raw, ok, err := s.backend.GetItem(ctx, StorageKey)
	if err != nil {
		return fmt.Errorf("reading state: %w", err)
	}

	st := defaultState()
	if ok {
		st = s.load(ctx, raw)
	} else {
		s.logger.Info("no persisted state, starting fresh")
	}

	s.mu.Lock()
	if s.hydrated {
		s.mu.Unlock()
		return nil
	}
	s.state = st
	s.hydrated = true
	s.mu.Unlock()

	// Ready closes only after the hydration callbacks have run, so anything
	// they build from the state is in place for readers waiting on it.
	// They hold the delivery lock so a concurrent mutation's
	// notification cannot interleave with them.
	s.listenerMu.Lock()
	callbacks := s.onHydrated
	s.onHydrated = nil
	s.listenerMu.Unlock()
	s.deliverMu.Lock()
	for _, fn := range callbacks {
		fn()
	}
	s.deliverMu.Unlock()
	close(s.ready)
	return nil
}

// load decodes and migrates a stored blob. It never fails.
func (s *Store) load(ctx context.Context, raw string) State {
	ps, version, dropped, err := decodeEnvelope(raw)
	if err != nil {
		s.logger.Error("persisted state is unreadable, using defaults", zap.Error(err))
		if err := s.backend.SetItem(ctx, StorageKey+corruptSuffix, raw); err != nil {
			s.logger.Error("saving unreadable state", zap.Error(err))
		}
		return defaultState()
	}

	if dropped > 0 {
		s.logger.Warn("skipped unreadable persisted records", zap.Int("records", dropped))
	}

	switch {
	case version < CurrentVersion:
		var applied []string
		ps, applied = migrate(ps, version)
		s.logger.Info("migrated persisted state",
			zap.Int("from", version),
			zap.Int("to", CurrentVersion),
			zap.Strings("steps", applied),
		)
	case version > CurrentVersion:
		s.logger.Warn("persisted state is newer than this build",
			zap.Int("version", version),
			zap.Int("current", CurrentVersion),
		)
	}

	st := ps.toState()
	s.logger.Debug("hydrated state",
		zap.Int("videos", len(st.Videos)),
		zap.Int("schedule", len(st.Schedule)),
	)
	return st
}

// Hydrated reports whether Rehydrate has completed
func (s *Store) Hydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrated
}

// Ready returns a channel that is closed once the store is hydrated
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// OnHydrated runs fn once hydration completes, immediately if it already has
func (s *Store) OnHydrated(fn func()) {
	s.listenerMu.Lock()
	if !s.Hydrated() {
		s.onHydrated = append(s.onHydrated, fn)
		s.listenerMu.Unlock()
		return
	}
	s.listenerMu.Unlock()
	fn()
}

// WaitReady blocks until the store is hydrated or ctx is done
func (s *Store) WaitReady(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
