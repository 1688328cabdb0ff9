package behavior

import (
	"context"
	"fmt"
	"sync"
	"time"

	"TradeGate/internal/domain/models"
	"TradeGate/internal/domain/repository"
)

const (
	defaultMaxTradesPerDay = 5
	defaultCooldownMinutes = 60
	cooldownLossStreak     = 2
)

// Config enumerates the discipline thresholds; zero values fall back to
// the defaults above.
type Config struct {
	MaxTradesPerDay int
	CooldownMinutes int
}

func (c *Config) applyDefaults() {
	if c.MaxTradesPerDay <= 0 {
		c.MaxTradesPerDay = defaultMaxTradesPerDay
	}
	if c.CooldownMinutes <= 0 {
		c.CooldownMinutes = defaultCooldownMinutes
	}
}

// Guard enforces per-user daily trading guardrails: a trade cap, and a
// cooldown after two consecutive losses. State lives in the BehaviorStore;
// the guard serializes same-user access with a per-key mutex so that
// TradesCount == Wins + Losses always holds.
type Guard struct {
	store repository.BehaviorStore
	cfg   Config

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewGuard(store repository.BehaviorStore, cfg Config) *Guard {
	cfg.applyDefaults()
	return &Guard{
		store: store,
		cfg:   cfg,
		locks: make(map[string]*sync.Mutex),
	}
}

func (g *Guard) lockFor(userID, day string) *sync.Mutex {
	key := userID + "|" + day
	g.mu.Lock()
	defer g.mu.Unlock()
	l, ok := g.locks[key]
	if !ok {
		l = &sync.Mutex{}
		g.locks[key] = l
	}
	return l
}

// Check reports whether the user may open a new trade at now. A day with no
// prior activity is always allowed.
func (g *Guard) Check(ctx context.Context, userID string, now time.Time) (models.BehaviorCheck, error) {
	day := models.DayKey(now)
	l := g.lockFor(userID, day)
	l.Lock()
	defer l.Unlock()

	state, err := g.store.Get(ctx, userID, day)
	if err != nil {
		return models.BehaviorCheck{}, fmt.Errorf("behavior check: %w", err)
	}

	if state.CooldownUntil != nil && now.Before(*state.CooldownUntil) {
		return models.BehaviorCheck{
			Allowed: false,
			Reasons: []string{
				fmt.Sprintf("Cooldown active until %s.", state.CooldownUntil.UTC().Format("2006-01-02T15:04:05Z")),
			},
			SuggestedActions: []string{"Wait out the cooldown. Review last two trades."},
			CooldownUntil:    state.CooldownUntil,
		}, nil
	}

	if state.TradesCount >= g.cfg.MaxTradesPerDay {
		return models.BehaviorCheck{
			Allowed: false,
			Reasons: []string{
				fmt.Sprintf("Max trades/day reached (%d/%d).", state.TradesCount, g.cfg.MaxTradesPerDay),
			},
			SuggestedActions: []string{"Stop trading for today. Review performance."},
		}, nil
	}

	return models.BehaviorCheck{Allowed: true, Reasons: []string{}, SuggestedActions: []string{}}, nil
}

// RecordClose folds a closed trade into the user's daily counters. A win
// resets the loss streak; the second consecutive loss arms the cooldown.
func (g *Guard) RecordClose(ctx context.Context, userID string, pnl float64, now time.Time) (*models.BehaviorState, error) {
	day := models.DayKey(now)
	l := g.lockFor(userID, day)
	l.Lock()
	defer l.Unlock()

	state, err := g.store.Get(ctx, userID, day)
	if err != nil {
		return nil, fmt.Errorf("behavior record close: %w", err)
	}

	state.TradesCount++
	state.RealizedPnL += pnl
	if pnl > 0 {
		state.Wins++
		state.ConsecutiveLosses = 0
	} else {
		state.Losses++
		state.ConsecutiveLosses++
	}

	if state.ConsecutiveLosses >= cooldownLossStreak {
		until := now.Add(time.Duration(g.cfg.CooldownMinutes) * time.Minute)
		state.CooldownUntil = &until
	}

	if err := g.store.Put(ctx, state); err != nil {
		return nil, fmt.Errorf("behavior record close: %w", err)
	}
	return state, nil
}
