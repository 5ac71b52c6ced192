package usecase

import (
	"context"
	"sync"

	"abc-audio/internal/domain"
	"abc-audio/internal/logging"
)

// preferenceSaver persists preferences off the engine loop. Only the latest
// pending value is written; older ones are dropped.
type preferenceSaver struct {
	repo domain.PreferencesRepository

	mu      sync.Mutex
	pending *domain.Preferences
	wake    chan struct{}
}

func newPreferenceSaver(repo domain.PreferencesRepository) *preferenceSaver {
	return &preferenceSaver{
		repo: repo,
		wake: make(chan struct{}, 1),
	}
}

// Save queues prefs and returns immediately.
func (s *preferenceSaver) Save(prefs domain.Preferences) {
	s.mu.Lock()
	s.pending = &prefs
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *preferenceSaver) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			s.flush()
			return
		case <-s.wake:
			s.flush()
		}
	}
}

func (s *preferenceSaver) flush() {
	s.mu.Lock()
	prefs := s.pending
	s.pending = nil
	s.mu.Unlock()

	if prefs == nil || s.repo == nil {
		return
	}
	if err := s.repo.Save(*prefs); err != nil {
		logging.Warnf("save preferences: %v", err)
	}
}
