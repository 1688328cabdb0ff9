package usecase

import (
	"context"
	"testing"
	"time"

	"TradeGate/internal/domain/models"
	"TradeGate/internal/repository"
)

func TestDailyReport(t *testing.T) {
	store := repository.NewMemoryBehaviorStore()
	uc := NewReportsUseCase(store)
	ctx := context.Background()

	now := time.Date(2025, 3, 10, 16, 0, 0, 0, time.UTC)
	until := now.Add(45 * time.Minute)
	err := store.Put(ctx, &models.BehaviorState{
		UserID:            "u1",
		Day:               models.DayKey(now),
		TradesCount:       3,
		Wins:              1,
		Losses:            2,
		RealizedPnL:       -12.5,
		ConsecutiveLosses: 2,
		CooldownUntil:     &until,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r, err := uc.Daily(ctx, "u1", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Day != "2025-03-10" {
		t.Fatalf("day = %q, want 2025-03-10", r.Day)
	}
	if r.Trades != 3 || r.Wins != 1 || r.Losses != 2 {
		t.Fatalf("counters wrong: %+v", r)
	}
	if r.RealizedPnL != -12.5 {
		t.Fatalf("pnl = %v, want -12.5", r.RealizedPnL)
	}
	if r.CooldownUntil != until.Format(time.RFC3339) {
		t.Fatalf("cooldown = %q, want %q", r.CooldownUntil, until.Format(time.RFC3339))
	}
}

func TestDailyReportEmptyDay(t *testing.T) {
	uc := NewReportsUseCase(repository.NewMemoryBehaviorStore())

	r, err := uc.Daily(context.Background(), "u1", time.Now().UTC())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Trades != 0 || r.Wins != 0 || r.Losses != 0 || r.RealizedPnL != 0 {
		t.Fatalf("expected zeroed report, got %+v", r)
	}
	if r.CooldownUntil != "" {
		t.Fatalf("expected empty cooldown, got %q", r.CooldownUntil)
	}
}

func TestWeeklyReportAggregates(t *testing.T) {
	store := repository.NewMemoryBehaviorStore()
	uc := NewReportsUseCase(store)
	ctx := context.Background()

	now := time.Date(2025, 3, 10, 16, 0, 0, 0, time.UTC)
	seed := []struct {
		daysAgo int
		state   models.BehaviorState
	}{
		{0, models.BehaviorState{TradesCount: 2, Wins: 2, RealizedPnL: 30}},
		{3, models.BehaviorState{TradesCount: 3, Wins: 1, Losses: 2, RealizedPnL: -20, ConsecutiveLosses: 2}},
		{6, models.BehaviorState{TradesCount: 1, Losses: 1, RealizedPnL: -5, ConsecutiveLosses: 1}},
		// Outside the trailing seven days, must not count.
		{8, models.BehaviorState{TradesCount: 9, Losses: 9, ConsecutiveLosses: 9}},
	}
	for _, s := range seed {
		st := s.state
		st.UserID = "u1"
		st.Day = models.DayKey(now.AddDate(0, 0, -s.daysAgo))
		if err := store.Put(ctx, &st); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	r, err := uc.Weekly(ctx, "u1", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.StartDay != "2025-03-04" || r.EndDay != "2025-03-10" {
		t.Fatalf("window = %s..%s, want 2025-03-04..2025-03-10", r.StartDay, r.EndDay)
	}
	if r.Trades != 6 || r.Wins != 3 || r.Losses != 3 {
		t.Fatalf("counters wrong: %+v", r)
	}
	if r.RealizedPnL != 5 {
		t.Fatalf("pnl = %v, want 5", r.RealizedPnL)
	}
	if r.MaxConsecutiveLosses != 2 {
		t.Fatalf("max streak = %d, want 2", r.MaxConsecutiveLosses)
	}
}
