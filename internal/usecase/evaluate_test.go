package usecase

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"TradeGate/internal/domain/models"
	"TradeGate/internal/repository"
	"TradeGate/internal/services/behavior"
	"TradeGate/internal/services/regime"
	"TradeGate/internal/services/risk"
	"TradeGate/internal/services/session"
)

// 14:00 UTC is the US session, multiplier 1.0, so risk numbers stay
// untouched unless a test opts into another session.
var evalNow = time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)

func newTestEvaluator(guardCfg behavior.Config) (*Evaluator, *behavior.Guard) {
	guard := behavior.NewGuard(repository.NewMemoryBehaviorStore(), guardCfg)
	ev := NewEvaluator(
		regime.NewClassifier(regime.Config{}),
		regime.NewAggregator(regime.Config{}),
		risk.NewSizer(risk.Config{}),
		risk.NewFitScorer(),
		session.NewClassifier(),
		guard,
	)
	return ev, guard
}

func trendingCandles(n int, growth float64) []models.Candle {
	out := make([]models.Candle, n)
	price := 100.0
	for i := range out {
		out[i] = models.Candle{Close: price}
		price *= growth
	}
	return out
}

func flatCandles(n int) []models.Candle {
	out := make([]models.Candle, n)
	for i := range out {
		out[i] = models.Candle{Close: 100.0}
	}
	return out
}

func spikyCandles(n int) []models.Candle {
	out := make([]models.Candle, 0, n)
	price := 100.0
	calm := n - 40
	for i := 0; i < calm; i++ {
		price += 0.01
		out = append(out, models.Candle{Close: price})
	}
	for i := 0; i < 40; i++ {
		if i%2 == 0 {
			price *= 1.05
		} else {
			price *= 0.95
		}
		out = append(out, models.Candle{Close: price})
	}
	return out
}

func baseParams() EvaluateParams {
	return EvaluateParams{
		UserID:          "u1",
		Symbol:          "BTCUSDT",
		Strategy:        "momentum",
		AccountEquity:   10000,
		IntendedRiskPct: 1.0,
		StopDistancePct: 1.0,
		Now:             evalNow,
	}
}

func hasSubstring(list []string, sub string) bool {
	for _, s := range list {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func TestEvaluateInvalidInput(t *testing.T) {
	ev, _ := newTestEvaluator(behavior.Config{})
	series := map[models.Timeframe][]models.Candle{models.TF1m: flatCandles(200)}

	for _, mod := range []func(*EvaluateParams){
		func(p *EvaluateParams) { p.AccountEquity = 0 },
		func(p *EvaluateParams) { p.IntendedRiskPct = -1 },
		func(p *EvaluateParams) { p.StopDistancePct = 0 },
	} {
		p := baseParams()
		mod(&p)
		_, err := ev.Evaluate(context.Background(), p, series)
		if !errors.Is(err, models.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	}
}

func TestEvaluateEmptySeries(t *testing.T) {
	ev, _ := newTestEvaluator(behavior.Config{})

	_, err := ev.Evaluate(context.Background(), baseParams(), nil)
	if !errors.Is(err, models.ErrEmptySeries) {
		t.Fatalf("expected ErrEmptySeries for missing map, got %v", err)
	}

	_, err = ev.Evaluate(context.Background(), baseParams(), map[models.Timeframe][]models.Candle{
		models.TF1m: {},
	})
	if !errors.Is(err, models.ErrEmptySeries) {
		t.Fatalf("expected ErrEmptySeries for empty timeframe, got %v", err)
	}
}

func TestEvaluateAllowOnCleanTrend(t *testing.T) {
	ev, _ := newTestEvaluator(behavior.Config{})
	series := map[models.Timeframe][]models.Candle{
		models.TF1m:  trendingCandles(200, 1.001),
		models.TF5m:  trendingCandles(200, 1.001),
		models.TF15m: trendingCandles(200, 1.001),
	}

	got, err := ev.Evaluate(context.Background(), baseParams(), series)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Decision != models.DecisionAllow {
		t.Fatalf("decision = %s, want ALLOW (%+v)", got.Decision, got)
	}
	if math.Abs(got.QualityScore-0.90) > 1e-9 {
		t.Fatalf("quality = %v, want 0.90", got.QualityScore)
	}
	if !strings.HasPrefix(got.MarketRegime, "trend (conf ") {
		t.Fatalf("unexpected regime label %q", got.MarketRegime)
	}
	if got.Session != "US" {
		t.Fatalf("session = %q, want US", got.Session)
	}
	if !hasSubstring(got.SuggestedActions, "Proceed only if your setup matches your plan") {
		t.Fatalf("expected default suggestion, got %v", got.SuggestedActions)
	}
	if got.RiskPct != 1.0 {
		t.Fatalf("risk = %v, want 1.0", got.RiskPct)
	}
	if math.Abs(got.PositionSizeUSD-10000) > 1e-6 {
		t.Fatalf("size = %v, want 10000", got.PositionSizeUSD)
	}
}

func TestEvaluateQualityAndConfidenceBounds(t *testing.T) {
	ev, _ := newTestEvaluator(behavior.Config{})
	series := map[models.Timeframe][]models.Candle{
		models.TF1m: spikyCandles(200),
		models.TF5m: flatCandles(50),
	}
	got, err := ev.Evaluate(context.Background(), baseParams(), series)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.QualityScore < 0 || got.QualityScore > 1 {
		t.Fatalf("quality out of range: %v", got.QualityScore)
	}
	if got.RiskPct < 0 || got.PositionSizeUSD < 0 {
		t.Fatalf("negative risk outputs: %+v", got)
	}
}

func TestEvaluateBehaviorBlock(t *testing.T) {
	ev, guard := newTestEvaluator(behavior.Config{MaxTradesPerDay: 1})
	ctx := context.Background()
	if _, err := guard.RecordClose(ctx, "u1", 10, evalNow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	series := map[models.Timeframe][]models.Candle{
		models.TF1m: trendingCandles(200, 1.001),
	}
	got, err := ev.Evaluate(ctx, baseParams(), series)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Decision != models.DecisionBlock {
		t.Fatalf("decision = %s, want BLOCK", got.Decision)
	}
	if got.QualityScore != 0 {
		t.Fatalf("quality = %v, want 0", got.QualityScore)
	}
	if !hasSubstring(got.Reasons, "Max trades/day reached") {
		t.Fatalf("expected behavior reason, got %v", got.Reasons)
	}
	if !hasSubstring(got.SuggestedActions, "Switch to paper review mode.") {
		t.Fatalf("expected review-mode suggestion, got %v", got.SuggestedActions)
	}
	// Risk context is still computed for the UI.
	if got.PositionSizeUSD <= 0 {
		t.Fatalf("expected sized position even when blocked, got %v", got.PositionSizeUSD)
	}
}

func TestEvaluateWarnOnMediocreQuality(t *testing.T) {
	ev, _ := newTestEvaluator(behavior.Config{})
	// Two high-volatility timeframes force a High consensus; a breakout
	// strategy in a range market lands at quality 0.50.
	series := map[models.Timeframe][]models.Candle{
		models.TF1m:  spikyCandles(200),
		models.TF5m:  spikyCandles(200),
		models.TF15m: flatCandles(200),
	}
	p := baseParams()
	p.Strategy = "breakout"

	got, err := ev.Evaluate(context.Background(), p, series)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.VolatilityState != models.VolatilityHigh {
		t.Fatalf("expected high volatility consensus, got %s", got.VolatilityState)
	}
	if got.Decision != models.DecisionWarn {
		t.Fatalf("decision = %s, want WARN (quality %v)", got.Decision, got.QualityScore)
	}
	if math.Abs(got.QualityScore-0.50) > 1e-9 {
		t.Fatalf("quality = %v, want 0.50", got.QualityScore)
	}
	if !hasSubstring(got.SuggestedActions, "Lower position size") {
		t.Fatalf("expected warn suggestion, got %v", got.SuggestedActions)
	}
	if !hasSubstring(got.SuggestedActions, "Use wider stops") {
		t.Fatalf("expected high-vol suggestion, got %v", got.SuggestedActions)
	}
	// High volatility also caps risk at 0.5%.
	if got.RiskPct != 0.5 {
		t.Fatalf("risk = %v, want 0.5", got.RiskPct)
	}
}

func TestEvaluateLowConfidenceAddsReason(t *testing.T) {
	ev, _ := newTestEvaluator(behavior.Config{})
	// One barely-trending and one high-vol range timeframe disagree on
	// both axes, dropping confidence under the 0.45 floor.
	series := map[models.Timeframe][]models.Candle{
		models.TF1m: trendingCandles(200, 1.0003),
		models.TF5m: spikyCandles(200),
	}

	got, err := ev.Evaluate(context.Background(), baseParams(), series)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hasSubstring(got.Reasons, "Low regime confidence") {
		t.Fatalf("expected low-confidence reason, got %v", got.Reasons)
	}
	if got.Decision != models.DecisionAllow {
		t.Fatalf("decision = %s, want ALLOW (quality %v)", got.Decision, got.QualityScore)
	}
	if !hasSubstring(got.SuggestedActions, "Proceed only with extra confirmation") {
		t.Fatalf("expected extra-confirmation suggestion, got %v", got.SuggestedActions)
	}
}

func TestEvaluateSessionMultiplierAfterSizing(t *testing.T) {
	ev, _ := newTestEvaluator(behavior.Config{})
	series := map[models.Timeframe][]models.Candle{
		models.TF1m: trendingCandles(200, 1.001),
	}
	p := baseParams()
	p.IntendedRiskPct = 2.0
	p.Now = time.Date(2025, 3, 10, 3, 0, 0, 0, time.UTC) // ASIA, multiplier 0.7

	got, err := ev.Evaluate(context.Background(), p, series)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Session != "ASIA" {
		t.Fatalf("session = %q, want ASIA", got.Session)
	}
	// Capped to 1.0 then scaled by 0.7; the dollar size keeps the
	// unscaled 1.0% figure.
	if math.Abs(got.RiskPct-0.7) > 1e-9 {
		t.Fatalf("risk = %v, want 0.7", got.RiskPct)
	}
	if math.Abs(got.PositionSizeUSD-10000) > 1e-6 {
		t.Fatalf("size = %v, want 10000", got.PositionSizeUSD)
	}
	if !hasSubstring(got.Reasons, "Risk capped") {
		t.Fatalf("expected capped reason, got %v", got.Reasons)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	ev, _ := newTestEvaluator(behavior.Config{})
	series := map[models.Timeframe][]models.Candle{
		models.TF1m: trendingCandles(200, 1.001),
		models.TF5m: spikyCandles(200),
	}
	a, err := ev.Evaluate(context.Background(), baseParams(), series)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := ev.Evaluate(context.Background(), baseParams(), series)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Decision != b.Decision || a.QualityScore != b.QualityScore || a.MarketRegime != b.MarketRegime {
		t.Fatalf("evaluation not deterministic: %+v vs %+v", a, b)
	}
}
