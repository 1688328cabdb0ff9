package models

import "time"

// Candle represents an OHLCV record for one closed bucket of a timeframe.
type Candle struct {
	Bucket    time.Time
	Symbol    string
	Timeframe Timeframe
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}
