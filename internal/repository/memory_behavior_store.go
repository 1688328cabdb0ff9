package repository

import (
	"context"
	"sync"
	"time"

	"TradeGate/internal/domain/models"
	domainrepo "TradeGate/internal/domain/repository"
)

// MemoryBehaviorStore keeps behavior state in process memory. Used in tests
// and as the fallback backend when Redis is disabled.
type MemoryBehaviorStore struct {
	mu     sync.RWMutex
	states map[string]*models.BehaviorState
}

func NewMemoryBehaviorStore() *MemoryBehaviorStore {
	return &MemoryBehaviorStore{states: make(map[string]*models.BehaviorState)}
}

func key(userID, day string) string { return userID + "|" + day }

func (s *MemoryBehaviorStore) Get(_ context.Context, userID, day string) (*models.BehaviorState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.states[key(userID, day)]; ok {
		cp := *st
		return &cp, nil
	}
	return &models.BehaviorState{UserID: userID, Day: day}, nil
}

func (s *MemoryBehaviorStore) Put(_ context.Context, state *models.BehaviorState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *state
	s.states[key(state.UserID, state.Day)] = &cp
	return nil
}

func (s *MemoryBehaviorStore) Range(_ context.Context, userID string, from, to time.Time) ([]*models.BehaviorState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.BehaviorState
	for d := from.UTC().Truncate(24 * time.Hour); !d.After(to.UTC()); d = d.AddDate(0, 0, 1) {
		if st, ok := s.states[key(userID, models.DayKey(d))]; ok {
			cp := *st
			out = append(out, &cp)
		}
	}
	return out, nil
}

var _ domainrepo.BehaviorStore = (*MemoryBehaviorStore)(nil)
