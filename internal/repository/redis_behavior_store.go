package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"TradeGate/internal/domain/models"
	domainrepo "TradeGate/internal/domain/repository"
	"TradeGate/pkg/cache"
)

// behaviorTTL keeps daily counters around long enough for weekly reports
// assembled from Redis plus a margin; reports older than that read zeros.
const behaviorTTL = 8 * 24 * time.Hour

// RedisBehaviorStore persists BehaviorState as JSON per (user, day).
type RedisBehaviorStore struct {
	cache cache.Service
}

func NewRedisBehaviorStore(c cache.Service) *RedisBehaviorStore {
	return &RedisBehaviorStore{cache: c}
}

func behaviorKey(userID, day string) string {
	return fmt.Sprintf("behavior:%s:%s", userID, day)
}

func (s *RedisBehaviorStore) Get(ctx context.Context, userID, day string) (*models.BehaviorState, error) {
	var state models.BehaviorState
	err := s.cache.Get(ctx, behaviorKey(userID, day), &state)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return &models.BehaviorState{UserID: userID, Day: day}, nil
		}
		return nil, fmt.Errorf("behavior get: %w", err)
	}
	return &state, nil
}

func (s *RedisBehaviorStore) Put(ctx context.Context, state *models.BehaviorState) error {
	if err := s.cache.Set(ctx, behaviorKey(state.UserID, state.Day), state, behaviorTTL); err != nil {
		return fmt.Errorf("behavior put: %w", err)
	}
	return nil
}

func (s *RedisBehaviorStore) Range(ctx context.Context, userID string, from, to time.Time) ([]*models.BehaviorState, error) {
	keys := make([]string, 0, 8)
	for d := from.UTC().Truncate(24 * time.Hour); !d.After(to.UTC()); d = d.AddDate(0, 0, 1) {
		keys = append(keys, behaviorKey(userID, models.DayKey(d)))
	}
	if len(keys) == 0 {
		return nil, nil
	}

	found, err := cache.MGetTyped[models.BehaviorState](ctx, s.cache, keys...)
	if err != nil {
		return nil, fmt.Errorf("behavior range: %w", err)
	}

	out := make([]*models.BehaviorState, 0, len(found))
	for _, key := range keys {
		if st, ok := found[key]; ok {
			cp := st
			out = append(out, &cp)
		}
	}
	return out, nil
}

var _ domainrepo.BehaviorStore = (*RedisBehaviorStore)(nil)
