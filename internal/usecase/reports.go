package usecase

import (
	"context"
	"fmt"
	"time"

	"TradeGate/internal/domain/models"
	domrepo "TradeGate/internal/domain/repository"
)

// ReportsUseCase assembles behavior reports from the daily counters.
type ReportsUseCase struct {
	store domrepo.BehaviorStore
}

func NewReportsUseCase(store domrepo.BehaviorStore) *ReportsUseCase {
	return &ReportsUseCase{store: store}
}

// Daily returns the counters for the UTC day containing now.
func (uc *ReportsUseCase) Daily(ctx context.Context, userID string, now time.Time) (*models.DailyReport, error) {
	day := models.DayKey(now)
	state, err := uc.store.Get(ctx, userID, day)
	if err != nil {
		return nil, fmt.Errorf("daily report: %w", err)
	}

	r := &models.DailyReport{
		Day:               day,
		Trades:            state.TradesCount,
		Wins:              state.Wins,
		Losses:            state.Losses,
		RealizedPnL:       state.RealizedPnL,
		ConsecutiveLosses: state.ConsecutiveLosses,
	}
	if state.CooldownUntil != nil {
		r.CooldownUntil = state.CooldownUntil.UTC().Format(time.RFC3339)
	}
	return r, nil
}

// Weekly aggregates the trailing seven UTC days ending at now.
func (uc *ReportsUseCase) Weekly(ctx context.Context, userID string, now time.Time) (*models.WeeklyReport, error) {
	end := now.UTC()
	start := end.AddDate(0, 0, -6)

	states, err := uc.store.Range(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("weekly report: %w", err)
	}

	r := &models.WeeklyReport{
		StartDay: models.DayKey(start),
		EndDay:   models.DayKey(end),
	}
	for _, st := range states {
		r.Trades += st.TradesCount
		r.Wins += st.Wins
		r.Losses += st.Losses
		r.RealizedPnL += st.RealizedPnL
		if st.ConsecutiveLosses > r.MaxConsecutiveLosses {
			r.MaxConsecutiveLosses = st.ConsecutiveLosses
		}
	}
	return r, nil
}
