package binance

import (
	"testing"
	"time"

	"TradeGate/internal/domain/models"
)

func TestParseKlines(t *testing.T) {
	raw := []byte(`[
		[1700000000000, "35000.10", "35100.00", "34950.50", "35050.00", "12.5", 1700000059999, "0", 100, "0", "0", "0"],
		[1700000060000, "35050.00", "35200.00", "35000.00", "35150.25", "8.25", 1700000119999, "0", 80, "0", "0", "0"]
	]`)
	got, err := parseKlines(raw, "BTCUSDT", models.TF1m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 candles, got %d", len(got))
	}
	first := got[0]
	if first.Symbol != "BTCUSDT" || first.Timeframe != models.TF1m {
		t.Fatalf("unexpected identity: %+v", first)
	}
	if !first.Bucket.Equal(time.UnixMilli(1700000000000).UTC()) {
		t.Fatalf("unexpected bucket %v", first.Bucket)
	}
	if first.Open != 35000.10 || first.Close != 35050.00 || first.Volume != 12.5 {
		t.Fatalf("unexpected ohlcv: %+v", first)
	}
	if got[1].Close != 35150.25 {
		t.Fatalf("unexpected second close: %v", got[1].Close)
	}
}

func TestParseKlinesMalformed(t *testing.T) {
	if _, err := parseKlines([]byte(`{"not":"an array"}`), "BTCUSDT", models.TF1m); err == nil {
		t.Fatalf("expected error for non-array payload")
	}
	if _, err := parseKlines([]byte(`[[1700000000000, "x", "1", "1", "1", "1"]]`), "BTCUSDT", models.TF1m); err == nil {
		t.Fatalf("expected error for non-numeric price")
	}
}

func TestKlineToCandle(t *testing.T) {
	k := wsKline{
		OpenTime: 1700000000000,
		Symbol:   "ETHUSDT",
		Interval: "5m",
		Open:     "2000.5",
		Close:    "2010.0",
		High:     "2015.0",
		Low:      "1999.0",
		Volume:   "42.0",
		Closed:   true,
	}
	c, err := k.toCandle()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Symbol != "ETHUSDT" || c.Timeframe != models.TF5m {
		t.Fatalf("unexpected identity: %+v", c)
	}
	if c.Open != 2000.5 || c.High != 2015.0 || c.Low != 1999.0 || c.Close != 2010.0 || c.Volume != 42.0 {
		t.Fatalf("unexpected ohlcv: %+v", c)
	}
}
