package models

// RegimeLabel is the qualitative market state derived from price-slope magnitude.
type RegimeLabel string

const (
	RegimeTrend RegimeLabel = "trend"
	RegimeRange RegimeLabel = "range"
)

// VolatilityLabel classifies recent return dispersion against its own rolling history.
type VolatilityLabel string

const (
	VolatilityHigh VolatilityLabel = "high"
	VolatilityLow  VolatilityLabel = "low"
)

// RegimeResult is the classification of a single candle series.
type RegimeResult struct {
	Regime     RegimeLabel
	Volatility VolatilityLabel
	Slope      float64 // OLS slope of log-close over the window
	Vol        float64 // stddev of log returns over the window
}

// MultiTFRegime combines per-timeframe classifications into one consensus view.
type MultiTFRegime struct {
	FinalRegime     RegimeLabel
	FinalVolatility VolatilityLabel
	Confidence      float64 // 0..1
	PerTimeframe    map[Timeframe]RegimeResult
}
