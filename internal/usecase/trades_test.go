package usecase

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"TradeGate/internal/domain/models"
	domrepo "TradeGate/internal/domain/repository"
	"TradeGate/internal/repository"
	"TradeGate/internal/services/behavior"
)

type memTradeStore struct {
	mu     sync.Mutex
	trades map[string]*models.PaperTrade
}

func newMemTradeStore() *memTradeStore {
	return &memTradeStore{trades: make(map[string]*models.PaperTrade)}
}

func (s *memTradeStore) Insert(_ context.Context, t *models.PaperTrade) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.trades[t.ID] = &cp
	return nil
}

func (s *memTradeStore) FindByID(_ context.Context, userID, tradeID string) (*models.PaperTrade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.trades[tradeID]
	if !ok || t.UserID != userID {
		return nil, domrepo.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *memTradeStore) MarkClosed(_ context.Context, t *models.PaperTrade) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.trades[t.ID] = &cp
	return nil
}

func (s *memTradeStore) ListSince(_ context.Context, userID string, since time.Time, limit int) ([]*models.PaperTrade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.PaperTrade
	for _, t := range s.trades {
		if t.UserID == userID && !t.OpenedAt.Before(since) {
			cp := *t
			out = append(out, &cp)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

var _ domrepo.TradeStore = (*memTradeStore)(nil)

func newTestTrades() (*TradesUseCase, *memTradeStore, *behavior.Guard) {
	store := newMemTradeStore()
	guard := behavior.NewGuard(repository.NewMemoryBehaviorStore(), behavior.Config{})
	return NewTradesUseCase(store, guard), store, guard
}

func openRequest() models.TradeOpenRequest {
	return models.TradeOpenRequest{
		Symbol:          "BTCUSDT",
		Strategy:        "momentum",
		EntryPrice:      100,
		Qty:             2,
		RiskPct:         1.0,
		StopDistancePct: 1.0,
	}
}

func TestOpenDefaultsToPaper(t *testing.T) {
	uc, store, _ := newTestTrades()

	trade, err := uc.Open(context.Background(), "u1", openRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trade.ID == "" {
		t.Fatal("expected generated trade id")
	}
	if trade.Mode != models.ModePaper || trade.Status != models.StatusOpen {
		t.Fatalf("mode/status = %s/%s, want PAPER/OPEN", trade.Mode, trade.Status)
	}
	if trade.OpenedAt.IsZero() {
		t.Fatal("expected opened_at to be set")
	}
	if _, err := store.FindByID(context.Background(), "u1", trade.ID); err != nil {
		t.Fatalf("trade not persisted: %v", err)
	}
}

func TestOpenRejectsLiveMode(t *testing.T) {
	uc, _, _ := newTestTrades()

	req := openRequest()
	req.Mode = models.ModeLive
	if _, err := uc.Open(context.Background(), "u1", req); !errors.Is(err, ErrLiveModeNotAllowed) {
		t.Fatalf("expected ErrLiveModeNotAllowed, got %v", err)
	}
}

func TestCloseComputesPnLAndRR(t *testing.T) {
	uc, _, _ := newTestTrades()
	ctx := context.Background()

	trade, err := uc.Open(ctx, "u1", openRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// entry 100, qty 2, stop 1% -> risk $2; exit 101 -> pnl $2 -> rr 1.0
	res, err := uc.Close(ctx, "u1", models.TradeCloseRequest{TradeID: trade.ID, ExitPrice: 101})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Trade.Status != models.StatusClosed {
		t.Fatalf("status = %s, want CLOSED", res.Trade.Status)
	}
	if math.Abs(res.Trade.PnL-2.0) > 1e-9 {
		t.Fatalf("pnl = %v, want 2.0", res.Trade.PnL)
	}
	if math.Abs(res.Trade.RR-1.0) > 1e-9 {
		t.Fatalf("rr = %v, want 1.0", res.Trade.RR)
	}
	if res.Behavior.TradesCount != 1 || res.Behavior.Wins != 1 {
		t.Fatalf("behavior not updated: %+v", res.Behavior)
	}
}

func TestCloseHonorsExplicitPnL(t *testing.T) {
	uc, _, _ := newTestTrades()
	ctx := context.Background()

	trade, err := uc.Open(ctx, "u1", openRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res, err := uc.Close(ctx, "u1", models.TradeCloseRequest{TradeID: trade.ID, ExitPrice: 101, PnL: -5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Trade.PnL != -5 {
		t.Fatalf("pnl = %v, want -5", res.Trade.PnL)
	}
	if res.Behavior.Losses != 1 || res.Behavior.ConsecutiveLosses != 1 {
		t.Fatalf("behavior not updated for loss: %+v", res.Behavior)
	}
}

func TestCloseTwiceFails(t *testing.T) {
	uc, _, _ := newTestTrades()
	ctx := context.Background()

	trade, err := uc.Open(ctx, "u1", openRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := uc.Close(ctx, "u1", models.TradeCloseRequest{TradeID: trade.ID, ExitPrice: 101}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := uc.Close(ctx, "u1", models.TradeCloseRequest{TradeID: trade.ID, ExitPrice: 102}); !errors.Is(err, ErrTradeAlreadyClosed) {
		t.Fatalf("expected ErrTradeAlreadyClosed, got %v", err)
	}
}

func TestCloseUnknownTrade(t *testing.T) {
	uc, _, _ := newTestTrades()

	_, err := uc.Close(context.Background(), "u1", models.TradeCloseRequest{TradeID: "nope", ExitPrice: 101})
	if !errors.Is(err, domrepo.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCloseOtherUsersTrade(t *testing.T) {
	uc, _, _ := newTestTrades()
	ctx := context.Background()

	trade, err := uc.Open(ctx, "u1", openRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := uc.Close(ctx, "u2", models.TradeCloseRequest{TradeID: trade.ID, ExitPrice: 101}); !errors.Is(err, domrepo.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign trade, got %v", err)
	}
}

func TestListFiltersByWindow(t *testing.T) {
	uc, store, _ := newTestTrades()
	ctx := context.Background()

	if _, err := uc.Open(ctx, "u1", openRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	old := &models.PaperTrade{
		ID:       "old",
		UserID:   "u1",
		Symbol:   "BTCUSDT",
		Status:   models.StatusClosed,
		OpenedAt: time.Now().UTC().AddDate(0, 0, -10),
	}
	if err := store.Insert(ctx, old); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	trades, err := uc.List(ctx, "u1", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trades) != 1 {
		t.Fatalf("listed %d trades, want 1", len(trades))
	}
	if trades[0].ID == "old" {
		t.Fatal("stale trade leaked into the window")
	}
}
