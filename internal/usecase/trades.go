package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"TradeGate/internal/domain/models"
	domrepo "TradeGate/internal/domain/repository"
	"TradeGate/internal/services/behavior"
)

// ErrLiveModeNotAllowed is returned when a trade open requests LIVE mode.
var ErrLiveModeNotAllowed = errors.New("live mode not allowed, paper only")

// ErrTradeAlreadyClosed is returned when closing a trade twice.
var ErrTradeAlreadyClosed = errors.New("trade already closed")

// TradesUseCase manages the paper-trade journal. Closing a trade also feeds
// the behavior guard so losses and the daily cap accumulate.
type TradesUseCase struct {
	store domrepo.TradeStore
	guard *behavior.Guard
}

func NewTradesUseCase(store domrepo.TradeStore, guard *behavior.Guard) *TradesUseCase {
	return &TradesUseCase{store: store, guard: guard}
}

// Open journals a new paper trade. LIVE mode is rejected.
func (uc *TradesUseCase) Open(ctx context.Context, userID string, req models.TradeOpenRequest) (*models.PaperTrade, error) {
	mode := req.Mode
	if mode == "" {
		mode = models.ModePaper
	}
	if mode != models.ModePaper {
		return nil, ErrLiveModeNotAllowed
	}

	t := &models.PaperTrade{
		ID:              uuid.New().String(),
		UserID:          userID,
		Symbol:          req.Symbol,
		Strategy:        req.Strategy,
		Mode:            mode,
		Status:          models.StatusOpen,
		OpenedAt:        time.Now().UTC(),
		EntryPrice:      req.EntryPrice,
		Qty:             req.Qty,
		RiskPct:         req.RiskPct,
		StopDistancePct: req.StopDistancePct,
		Notes:           req.Notes,
	}
	if err := uc.store.Insert(ctx, t); err != nil {
		return nil, fmt.Errorf("open trade: %w", err)
	}
	return t, nil
}

// CloseResult pairs the closed trade with the updated daily counters.
type CloseResult struct {
	Trade    *models.PaperTrade    `json:"trade"`
	Behavior *models.BehaviorState `json:"behavior"`
}

// Close settles an open trade and records the outcome with the behavior
// guard. PnL defaults to (exit - entry) * qty when the request omits it.
func (uc *TradesUseCase) Close(ctx context.Context, userID string, req models.TradeCloseRequest) (*CloseResult, error) {
	t, err := uc.store.FindByID(ctx, userID, req.TradeID)
	if err != nil {
		return nil, fmt.Errorf("close trade: %w", err)
	}
	if t.Status == models.StatusClosed {
		return nil, ErrTradeAlreadyClosed
	}

	now := time.Now().UTC()
	pnl := req.PnL
	if pnl == 0 {
		pnl = (req.ExitPrice - t.EntryPrice) * t.Qty
	}
	rr := req.RR
	if rr == 0 && t.StopDistancePct > 0 && t.EntryPrice > 0 && t.Qty > 0 {
		riskUSD := t.EntryPrice * (t.StopDistancePct / 100) * t.Qty
		if riskUSD > 0 {
			rr = pnl / riskUSD
		}
	}

	t.Status = models.StatusClosed
	t.ClosedAt = now
	t.ExitPrice = req.ExitPrice
	t.PnL = pnl
	t.RR = rr
	t.RuleViolation = req.RuleViolation
	if req.Notes != "" {
		t.Notes = req.Notes
	}

	if err := uc.store.MarkClosed(ctx, t); err != nil {
		return nil, fmt.Errorf("close trade: %w", err)
	}

	state, err := uc.guard.RecordClose(ctx, userID, pnl, now)
	if err != nil {
		return nil, fmt.Errorf("close trade: %w", err)
	}
	return &CloseResult{Trade: t, Behavior: state}, nil
}

// List returns the user's trades opened within the trailing day window,
// newest first.
func (uc *TradesUseCase) List(ctx context.Context, userID string, days int) ([]*models.PaperTrade, error) {
	if days <= 0 {
		days = 7
	}
	since := time.Now().UTC().AddDate(0, 0, -days)
	trades, err := uc.store.ListSince(ctx, userID, since, 500)
	if err != nil {
		return nil, fmt.Errorf("list trades: %w", err)
	}
	return trades, nil
}
