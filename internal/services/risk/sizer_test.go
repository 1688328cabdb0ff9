package risk

import (
	"errors"
	"math"
	"strings"
	"testing"

	"TradeGate/internal/domain/models"
)

func TestComputeCapsIntendedRisk(t *testing.T) {
	s := NewSizer(Config{})
	got, err := s.Compute(10000, 2.0, 1.0, models.VolatilityLow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.FinalRiskPct != 1.0 {
		t.Fatalf("risk = %v, want 1.0", got.FinalRiskPct)
	}
	if math.Abs(got.PositionSizeUSD-10000) > 1e-9 {
		t.Fatalf("size = %v, want 10000", got.PositionSizeUSD)
	}
	found := false
	for _, r := range got.Reasons {
		if strings.Contains(r, "Risk capped") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a risk-capped reason, got %v", got.Reasons)
	}
}

func TestComputeHighVolatilityCap(t *testing.T) {
	s := NewSizer(Config{})
	got, err := s.Compute(10000, 1.0, 1.0, models.VolatilityHigh)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.FinalRiskPct != 0.5 {
		t.Fatalf("risk = %v, want 0.5", got.FinalRiskPct)
	}
	found := false
	for _, r := range got.Reasons {
		if strings.Contains(r, "High volatility detected") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a high-vol reason, got %v", got.Reasons)
	}
}

func TestComputeStopFloor(t *testing.T) {
	s := NewSizer(Config{})
	nearZero, err := s.Compute(10000, 1.0, 0.0001, models.VolatilityLow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	atFloor, err := s.Compute(10000, 1.0, 0.05, models.VolatilityLow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if nearZero.PositionSizeUSD != atFloor.PositionSizeUSD {
		t.Fatalf("near-zero stop must be floored: %v != %v", nearZero.PositionSizeUSD, atFloor.PositionSizeUSD)
	}
}

func TestComputeMonotoneInStopDistance(t *testing.T) {
	s := NewSizer(Config{})
	prev := math.Inf(1)
	for _, stop := range []float64{0.1, 0.5, 1.0, 2.0, 5.0} {
		got, err := s.Compute(10000, 1.0, stop, models.VolatilityLow)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.PositionSizeUSD > prev {
			t.Fatalf("size grew with wider stop: %v > %v", got.PositionSizeUSD, prev)
		}
		prev = got.PositionSizeUSD
	}
}

func TestComputeRejectsInvalidInput(t *testing.T) {
	s := NewSizer(Config{})
	cases := [][3]float64{
		{0, 1, 1},
		{10000, 0, 1},
		{10000, 1, 0},
		{-1, 1, 1},
	}
	for _, c := range cases {
		_, err := s.Compute(c[0], c[1], c[2], models.VolatilityLow)
		if !errors.Is(err, models.ErrInvalidInput) {
			t.Fatalf("inputs %v: expected ErrInvalidInput, got %v", c, err)
		}
	}
}

func TestFitScore(t *testing.T) {
	f := NewFitScorer()
	tests := []struct {
		name     string
		regime   models.RegimeLabel
		vol      models.VolatilityLabel
		strategy string
		want     float64
		reasons  int
	}{
		{"breakout in range, low vol", models.RegimeRange, models.VolatilityLow, "breakout", 0.55, 2},
		{"breakout in trend, high vol", models.RegimeTrend, models.VolatilityHigh, "Breakout-v2", 0.85, 1},
		{"pullback in range, low vol", models.RegimeRange, models.VolatilityLow, "pullback", 0.90, 1},
		{"momentum in trend, high vol", models.RegimeTrend, models.VolatilityHigh, "momentum", 0.85, 1},
	}
	for _, tt := range tests {
		score, reasons := f.Score(tt.regime, tt.vol, tt.strategy)
		if math.Abs(score-tt.want) > 1e-9 {
			t.Fatalf("%s: score = %v, want %v", tt.name, score, tt.want)
		}
		if len(reasons) != tt.reasons {
			t.Fatalf("%s: %d reasons, want %d: %v", tt.name, len(reasons), tt.reasons, reasons)
		}
	}
}

func TestFitScoreWorstCase(t *testing.T) {
	f := NewFitScorer()
	score, reasons := f.Score(models.RegimeRange, models.VolatilityHigh, "breakout")
	if score != 0.5 {
		t.Fatalf("score = %v, want 0.5", score)
	}
	if len(reasons) != 2 {
		t.Fatalf("expected 2 reasons, got %v", reasons)
	}
}
