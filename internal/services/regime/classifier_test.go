package regime

import (
	"errors"
	"math"
	"testing"

	"TradeGate/internal/domain/models"
)

func candlesFromCloses(closes []float64) []models.Candle {
	out := make([]models.Candle, len(closes))
	for i, c := range closes {
		out[i] = models.Candle{Close: c}
	}
	return out
}

func TestClassifyEmptySeries(t *testing.T) {
	c := NewClassifier(Config{})
	_, err := c.Classify(nil)
	if !errors.Is(err, models.ErrEmptySeries) {
		t.Fatalf("expected ErrEmptySeries, got %v", err)
	}
}

func TestClassifyFlatSeriesIsRangeLow(t *testing.T) {
	closes := make([]float64, 200)
	for i := range closes {
		closes[i] = 100.0
	}
	c := NewClassifier(Config{})
	got, err := c.Classify(candlesFromCloses(closes))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Regime != models.RegimeRange {
		t.Fatalf("expected range regime, got %s", got.Regime)
	}
	if got.Volatility != models.VolatilityLow {
		t.Fatalf("expected low volatility, got %s", got.Volatility)
	}
	if got.Vol != 0 {
		t.Fatalf("expected zero vol on flat series, got %v", got.Vol)
	}
}

func TestClassifyTrendingSeries(t *testing.T) {
	// 0.1% growth per bar gives a log slope of ~0.001, well above the
	// default 0.00025 threshold.
	closes := make([]float64, 200)
	price := 100.0
	for i := range closes {
		closes[i] = price
		price *= 1.001
	}
	c := NewClassifier(Config{})
	got, err := c.Classify(candlesFromCloses(closes))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Regime != models.RegimeTrend {
		t.Fatalf("expected trend regime, slope=%v", got.Slope)
	}
	if math.Abs(got.Slope-math.Log(1.001)) > 1e-6 {
		t.Fatalf("slope = %v, want ~%v", got.Slope, math.Log(1.001))
	}
}

func TestClassifyShortSeriesDegrades(t *testing.T) {
	c := NewClassifier(Config{})
	got, err := c.Classify(candlesFromCloses([]float64{100}))
	if err != nil {
		t.Fatalf("single candle must not fail: %v", err)
	}
	if got.Regime != models.RegimeRange || got.Volatility != models.VolatilityLow {
		t.Fatalf("expected range/low fallback, got %s/%s", got.Regime, got.Volatility)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	closes := make([]float64, 150)
	price := 100.0
	for i := range closes {
		// fixed pseudo-pattern, no randomness
		price += math.Sin(float64(i) * 0.7)
		closes[i] = price
	}
	c := NewClassifier(Config{})
	a, err := c.Classify(candlesFromCloses(closes))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := c.Classify(candlesFromCloses(closes))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != b {
		t.Fatalf("classification not deterministic: %+v vs %+v", a, b)
	}
}

func TestClassifyVolatilitySpike(t *testing.T) {
	// Calm series followed by violent swings; current vol should clear the
	// 0.80 quantile of the rolling history.
	closes := make([]float64, 0, 200)
	price := 100.0
	for i := 0; i < 160; i++ {
		price += 0.01
		closes = append(closes, price)
	}
	for i := 0; i < 40; i++ {
		if i%2 == 0 {
			price *= 1.05
		} else {
			price *= 0.95
		}
		closes = append(closes, price)
	}
	c := NewClassifier(Config{})
	got, err := c.Classify(candlesFromCloses(closes))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Volatility != models.VolatilityHigh {
		t.Fatalf("expected high volatility, got %s (vol=%v)", got.Volatility, got.Vol)
	}
}
