package features

import (
	"math"
	"testing"

	"TradeGate/internal/domain/models"
)

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestLogClosesHandlesZero(t *testing.T) {
	candles := []models.Candle{{Close: 0}, {Close: 100}}
	got := LogCloses(candles)
	if len(got) != 2 {
		t.Fatalf("expected 2 values, got %d", len(got))
	}
	if math.IsInf(got[0], 0) || math.IsNaN(got[0]) {
		t.Fatalf("log of zero close not defended: %v", got[0])
	}
	if !almostEqual(got[1], math.Log(100), 1e-9) {
		t.Fatalf("unexpected log close %v", got[1])
	}
}

func TestDiffs(t *testing.T) {
	got := Diffs([]float64{1, 3, 6, 10})
	want := []float64{2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("expected %d diffs, got %d", len(want), len(got))
	}
	for i := range want {
		if !almostEqual(got[i], want[i], 1e-12) {
			t.Fatalf("diff[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if Diffs([]float64{1}) != nil {
		t.Fatalf("expected nil for single element")
	}
}

func TestOLSSlope(t *testing.T) {
	tests := []struct {
		name string
		ys   []float64
		want float64
	}{
		{"linear", []float64{0, 1, 2, 3, 4}, 1.0},
		{"flat", []float64{5, 5, 5, 5}, 0.0},
		{"descending", []float64{10, 8, 6, 4}, -2.0},
		{"empty", nil, 0.0},
	}
	for _, tt := range tests {
		got := OLSSlope(tt.ys)
		if !almostEqual(got, tt.want, 1e-6) {
			t.Fatalf("%s: slope = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestStdDevPopulation(t *testing.T) {
	// population std of {2,4,4,4,5,5,7,9} is exactly 2
	got := StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if !almostEqual(got, 2.0, 1e-12) {
		t.Fatalf("std = %v, want 2", got)
	}
	if StdDev([]float64{1}) != 0 {
		t.Fatalf("expected 0 for single sample")
	}
}

func TestSampleStdDev(t *testing.T) {
	got := SampleStdDev([]float64{1, 2, 3, 4, 5})
	want := math.Sqrt(2.5)
	if !almostEqual(got, want, 1e-12) {
		t.Fatalf("sample std = %v, want %v", got, want)
	}
}

func TestRollingStd(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5}
	got := RollingStd(xs, 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 windows, got %d", len(got))
	}
	want := SampleStdDev([]float64{1, 2, 3})
	for i, v := range got {
		if !almostEqual(v, want, 1e-12) {
			t.Fatalf("window %d std = %v, want %v", i, v, want)
		}
	}
	if RollingStd(xs, 6) != nil {
		t.Fatalf("expected nil when series shorter than window")
	}
}

func TestQuantileLinearInterpolation(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5}
	tests := []struct {
		p    float64
		want float64
	}{
		{0.0, 1},
		{0.5, 3},
		{0.8, 4.2},
		{1.0, 5},
	}
	for _, tt := range tests {
		got := Quantile(xs, tt.p)
		if !almostEqual(got, tt.want, 1e-12) {
			t.Fatalf("quantile(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestClamp01(t *testing.T) {
	if Clamp01(-0.5) != 0 || Clamp01(1.5) != 1 || Clamp01(0.3) != 0.3 {
		t.Fatalf("clamp misbehaves")
	}
}
