package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"TradeGate/internal/domain/models"
	domrepo "TradeGate/internal/domain/repository"
)

type fakeStorage struct {
	mu      sync.Mutex
	stored  []*models.Candle
	failErr error
}

func (s *fakeStorage) Init(ctx context.Context) error { return nil }

func (s *fakeStorage) Store(_ context.Context, c *models.Candle) error {
	if s.failErr != nil {
		return s.failErr
	}
	s.mu.Lock()
	s.stored = append(s.stored, c)
	s.mu.Unlock()
	return nil
}

func (s *fakeStorage) StoreBatch(ctx context.Context, candles []*models.Candle) error {
	for _, c := range candles {
		if err := s.Store(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (s *fakeStorage) Query(ctx context.Context, symbol string, from, to time.Time, tf models.Timeframe, limit int) ([]*models.Candle, error) {
	return nil, nil
}

func (s *fakeStorage) Health(ctx context.Context) error { return nil }
func (s *fakeStorage) Close() error                     { return nil }

var _ domrepo.Storage = (*fakeStorage)(nil)

func TestKafkaCandlesHandlerStoresCandle(t *testing.T) {
	store := &fakeStorage{}
	h := NewKafkaCandlesHandler("candles", store, newFakeMetrics())

	msg := []byte(`{"symbol":"BTCUSDT","tf":"1m","t":1741615200,"o":100,"h":101,"l":99,"c":100.5,"v":12.5}`)
	if err := h.Handle(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.stored) != 1 {
		t.Fatalf("stored %d candles, want 1", len(store.stored))
	}
	c := store.stored[0]
	if c.Symbol != "BTCUSDT" || c.Timeframe != models.TF1m {
		t.Fatalf("candle identity wrong: %+v", c)
	}
	if !c.Bucket.Equal(time.Unix(1741615200, 0).UTC()) {
		t.Fatalf("bucket = %v, want unix 1741615200", c.Bucket)
	}
	if c.Open != 100 || c.High != 101 || c.Low != 99 || c.Close != 100.5 || c.Volume != 12.5 {
		t.Fatalf("ohlcv wrong: %+v", c)
	}
}

func TestKafkaCandlesHandlerNormalizesMilliseconds(t *testing.T) {
	store := &fakeStorage{}
	h := NewKafkaCandlesHandler("candles", store, newFakeMetrics())

	msg := []byte(`{"symbol":"BTCUSDT","tf":"5m","t":1741615200000,"o":1,"h":1,"l":1,"c":1,"v":1}`)
	if err := h.Handle(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := store.stored[0].Bucket; !got.Equal(time.Unix(1741615200, 0).UTC()) {
		t.Fatalf("bucket = %v, millisecond timestamp not normalized", got)
	}
}

func TestKafkaCandlesHandlerBadPayload(t *testing.T) {
	store := &fakeStorage{}
	m := newFakeMetrics()
	h := NewKafkaCandlesHandler("candles", store, m)

	if err := h.Handle(context.Background(), []byte("{not json")); err == nil {
		t.Fatal("expected unmarshal error")
	}
	if m.errors["consumer_unmarshal"] != 1 {
		t.Fatalf("expected unmarshal error metric, got %v", m.errors)
	}
	if len(store.stored) != 0 {
		t.Fatal("bad payload must not reach storage")
	}
}

func TestKafkaCandlesHandlerStoreFailure(t *testing.T) {
	store := &fakeStorage{failErr: fmt.Errorf("ch down")}
	m := newFakeMetrics()
	h := NewKafkaCandlesHandler("candles", store, m)

	msg := []byte(`{"symbol":"BTCUSDT","tf":"1m","t":1741615200,"o":1,"h":1,"l":1,"c":1,"v":1}`)
	if err := h.Handle(context.Background(), msg); err == nil {
		t.Fatal("expected storage error to propagate")
	}
	if m.errors["consumer_store"] != 1 {
		t.Fatalf("expected store error metric, got %v", m.errors)
	}
}
