package session

import (
	"testing"
	"time"
)

func TestClassifyHourBands(t *testing.T) {
	tests := []struct {
		hour       int
		name       string
		multiplier float64
	}{
		{0, "ASIA", 0.7},
		{6, "ASIA", 0.7},
		{7, "EU", 0.9},
		{12, "EU", 0.9},
		{13, "US", 1.0},
		{20, "US", 1.0},
		{21, "WEEKEND", 0.5},
		{23, "WEEKEND", 0.5},
	}
	c := NewClassifier()
	for _, tt := range tests {
		now := time.Date(2025, 3, 10, tt.hour, 30, 0, 0, time.UTC)
		got := c.Classify(now)
		if got.Name != tt.name {
			t.Fatalf("hour %d: session = %s, want %s", tt.hour, got.Name, tt.name)
		}
		if got.RiskMultiplier != tt.multiplier {
			t.Fatalf("hour %d: multiplier = %v, want %v", tt.hour, got.RiskMultiplier, tt.multiplier)
		}
		if got.Note == "" {
			t.Fatalf("hour %d: missing advisory note", tt.hour)
		}
	}
}

func TestClassifyConvertsToUTC(t *testing.T) {
	// 23:00 in UTC+9 is 14:00 UTC, the US session.
	loc := time.FixedZone("UTC+9", 9*60*60)
	got := NewClassifier().Classify(time.Date(2025, 3, 10, 23, 0, 0, 0, loc))
	if got.Name != "US" {
		t.Fatalf("expected US session, got %s", got.Name)
	}
}
