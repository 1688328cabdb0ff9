package middleware

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"TradeGate/internal/domain/models"
)

type recordingProc struct {
	mu      sync.Mutex
	candles []*models.Candle
	failErr error
}

func (p *recordingProc) Process(_ context.Context, c *models.Candle) error {
	if p.failErr != nil {
		return p.failErr
	}
	p.mu.Lock()
	p.candles = append(p.candles, c)
	p.mu.Unlock()
	return nil
}

func (p *recordingProc) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.candles)
}

type noopMetrics struct {
	mu     sync.Mutex
	errors map[string]int
}

func newNoopMetrics() *noopMetrics { return &noopMetrics{errors: map[string]int{}} }

func (m *noopMetrics) RecordMessageSent(backend, symbol string)     {}
func (m *noopMetrics) RecordLastPrice(symbol string, price float64) {}
func (m *noopMetrics) RecordLatency(op string, seconds float64)     {}
func (m *noopMetrics) RecordDecision(decision, symbol string)       {}
func (m *noopMetrics) RecordError(kind string) {
	m.mu.Lock()
	m.errors[kind]++
	m.mu.Unlock()
}

func validTestCandle() *models.Candle {
	return &models.Candle{
		Bucket:    time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC),
		Symbol:    "BTCUSDT",
		Timeframe: models.TF1m,
		Open:      100,
		High:      101,
		Low:       99,
		Close:     100.5,
		Volume:    12,
	}
}

func TestPipelineValidation(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*models.Candle) *models.Candle
	}{
		{"nil candle", func(c *models.Candle) *models.Candle { return nil }},
		{"empty symbol", func(c *models.Candle) *models.Candle { c.Symbol = ""; return c }},
		{"bad timeframe", func(c *models.Candle) *models.Candle { c.Timeframe = "4h"; return c }},
		{"zero bucket", func(c *models.Candle) *models.Candle { c.Bucket = time.Time{}; return c }},
		{"negative price", func(c *models.Candle) *models.Candle { c.Low = -1; return c }},
		{"high below low", func(c *models.Candle) *models.Candle { c.High = 98; return c }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proc := &recordingProc{}
			p := NewRealtimePipeline(proc, newNoopMetrics())
			if err := p.Process(context.Background(), tt.mod(validTestCandle())); err == nil {
				t.Fatal("expected validation error")
			}
			if proc.count() != 0 {
				t.Fatal("invalid candle reached downstream")
			}
		})
	}
}

func TestPipelineForwardsValidCandle(t *testing.T) {
	proc := &recordingProc{}
	p := NewRealtimePipeline(proc, newNoopMetrics())

	if err := p.Process(context.Background(), validTestCandle()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proc.count() != 1 {
		t.Fatalf("downstream got %d candles, want 1", proc.count())
	}
}

func TestPipelineThrottlesPerStream(t *testing.T) {
	proc := &recordingProc{}
	m := newNoopMetrics()
	p := NewRealtimePipeline(proc, m, WithMaxRPS(1))
	ctx := context.Background()

	// First candle passes; an immediate second one on the same stream is
	// dropped without an error.
	if err := p.Process(ctx, validTestCandle()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.Process(ctx, validTestCandle()); err != nil {
		t.Fatalf("throttled candle must not error: %v", err)
	}
	if proc.count() != 1 {
		t.Fatalf("downstream got %d candles, want 1", proc.count())
	}
	if m.errors["pipeline_throttle"] != 1 {
		t.Fatalf("expected throttle metric, got %v", m.errors)
	}

	// A different stream has its own budget.
	other := validTestCandle()
	other.Timeframe = models.TF5m
	if err := p.Process(ctx, other); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proc.count() != 2 {
		t.Fatalf("downstream got %d candles, want 2", proc.count())
	}
}

func TestPipelineBuffersOnDownstreamError(t *testing.T) {
	proc := &recordingProc{failErr: fmt.Errorf("backend down")}
	m := newNoopMetrics()
	p := NewRealtimePipeline(proc, m, WithBufferSize(4))

	if err := p.Process(context.Background(), validTestCandle()); err == nil {
		t.Fatal("expected downstream error to propagate")
	}
	if len(p.bufCh) != 1 {
		t.Fatalf("buffered %d candles, want 1", len(p.bufCh))
	}
	if m.errors["pipeline_process"] != 1 {
		t.Fatalf("expected process error metric, got %v", m.errors)
	}
}

func TestPipelineTransform(t *testing.T) {
	proc := &recordingProc{}
	p := NewRealtimePipeline(proc, newNoopMetrics(), WithTransform(func(c *models.Candle) *models.Candle {
		c.Symbol = "ETHUSDT"
		return c
	}))

	if err := p.Process(context.Background(), validTestCandle()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proc.count() != 1 || proc.candles[0].Symbol != "ETHUSDT" {
		t.Fatal("transform not applied before downstream")
	}
}

func TestPipelineFlushDrainsBuffer(t *testing.T) {
	proc := &recordingProc{failErr: fmt.Errorf("backend down")}
	p := NewRealtimePipeline(proc, newNoopMetrics(), WithBufferSize(4))
	ctx := context.Background()

	if err := p.Process(ctx, validTestCandle()); err == nil {
		t.Fatal("expected downstream error")
	}

	// Downstream recovers; the flush goroutine should replay the buffer.
	proc.failErr = nil
	p.Start(ctx)
	defer p.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for proc.count() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("buffered candle never flushed")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
