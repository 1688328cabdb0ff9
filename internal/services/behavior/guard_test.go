package behavior

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"TradeGate/internal/repository"
)

var testNow = time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)

func newTestGuard(cfg Config) *Guard {
	return NewGuard(repository.NewMemoryBehaviorStore(), cfg)
}

func TestCheckFreshDayAllowed(t *testing.T) {
	g := newTestGuard(Config{})
	got, err := g.Check(context.Background(), "u1", testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Allowed {
		t.Fatalf("fresh day must be allowed: %+v", got)
	}
}

func TestCooldownAfterTwoConsecutiveLosses(t *testing.T) {
	g := newTestGuard(Config{CooldownMinutes: 45})
	ctx := context.Background()

	if _, err := g.RecordClose(ctx, "u1", -10, testNow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	check, err := g.Check(ctx, "u1", testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !check.Allowed {
		t.Fatalf("one loss must not trigger cooldown")
	}

	state, err := g.RecordClose(ctx, "u1", -5, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.ConsecutiveLosses != 2 {
		t.Fatalf("consecutive losses = %d, want 2", state.ConsecutiveLosses)
	}
	if state.CooldownUntil == nil {
		t.Fatalf("expected cooldown to be armed")
	}
	want := testNow.Add(45 * time.Minute)
	if !state.CooldownUntil.Equal(want) {
		t.Fatalf("cooldown until %v, want %v", state.CooldownUntil, want)
	}

	check, err = g.Check(ctx, "u1", testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if check.Allowed {
		t.Fatalf("expected not-allowed during cooldown")
	}
	if check.CooldownUntil == nil {
		t.Fatalf("expected cooldown timestamp in check result")
	}
	if len(check.Reasons) == 0 || !strings.Contains(check.Reasons[0], "Cooldown active until") {
		t.Fatalf("unexpected reasons: %v", check.Reasons)
	}

	// The cooldown expires naturally.
	check, err = g.Check(ctx, "u1", testNow.Add(46*time.Minute))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !check.Allowed {
		t.Fatalf("expected allowed after cooldown expiry: %+v", check)
	}
}

func TestWinResetsLossStreak(t *testing.T) {
	g := newTestGuard(Config{})
	ctx := context.Background()

	if _, err := g.RecordClose(ctx, "u1", -10, testNow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	state, err := g.RecordClose(ctx, "u1", 25, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.ConsecutiveLosses != 0 {
		t.Fatalf("win must reset streak, got %d", state.ConsecutiveLosses)
	}
	if state.Wins != 1 || state.Losses != 1 || state.TradesCount != 2 {
		t.Fatalf("unexpected counters: %+v", state)
	}
}

func TestZeroPnLCountsAsLoss(t *testing.T) {
	g := newTestGuard(Config{})
	state, err := g.RecordClose(context.Background(), "u1", 0, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.Losses != 1 || state.ConsecutiveLosses != 1 {
		t.Fatalf("zero pnl must count as loss: %+v", state)
	}
}

func TestMaxTradesPerDay(t *testing.T) {
	g := newTestGuard(Config{MaxTradesPerDay: 2})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := g.RecordClose(ctx, "u1", 10, testNow); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	check, err := g.Check(ctx, "u1", testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if check.Allowed {
		t.Fatalf("expected cap to block")
	}
	if len(check.Reasons) == 0 || !strings.Contains(check.Reasons[0], "Max trades/day reached (2/2)") {
		t.Fatalf("unexpected reasons: %v", check.Reasons)
	}
}

func TestNewDayResetsCounters(t *testing.T) {
	g := newTestGuard(Config{MaxTradesPerDay: 1})
	ctx := context.Background()

	if _, err := g.RecordClose(ctx, "u1", 10, testNow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	blocked, err := g.Check(ctx, "u1", testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if blocked.Allowed {
		t.Fatalf("expected cap to block same day")
	}

	nextDay := testNow.AddDate(0, 0, 1)
	fresh, err := g.Check(ctx, "u1", nextDay)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !fresh.Allowed {
		t.Fatalf("next calendar day must start clean")
	}
}

func TestConcurrentRecordCloseKeepsInvariant(t *testing.T) {
	g := newTestGuard(Config{MaxTradesPerDay: 1000})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pnl := 1.0
			if i%2 == 0 {
				pnl = -1.0
			}
			if _, err := g.RecordClose(ctx, "u1", pnl, testNow); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	state, err := g.store.Get(ctx, "u1", "2025-03-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.TradesCount != 50 {
		t.Fatalf("trades = %d, want 50", state.TradesCount)
	}
	if state.Wins+state.Losses != state.TradesCount {
		t.Fatalf("invariant broken: %d + %d != %d", state.Wins, state.Losses, state.TradesCount)
	}
}
