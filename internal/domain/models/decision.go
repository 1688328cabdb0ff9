package models

import "time"

// Decision is the graded trade permission.
type Decision string

const (
	DecisionAllow Decision = "ALLOW"
	DecisionWarn  Decision = "WARN"
	DecisionBlock Decision = "BLOCK"
)

// SessionProfile describes the time-of-day liquidity session.
type SessionProfile struct {
	Name           string  `json:"name"`
	Liquidity      string  `json:"liquidity"`
	RiskMultiplier float64 `json:"risk_multiplier"`
	Note           string  `json:"note"`
}

// RiskResult is the output of risk-based position sizing.
type RiskResult struct {
	FinalRiskPct    float64  `json:"final_risk_pct"`
	PositionSizeUSD float64  `json:"position_size_usd"`
	Reasons         []string `json:"reasons"`
}

// DecisionResult is the terminal artifact of one trade evaluation.
type DecisionResult struct {
	Decision         Decision        `json:"decision"`
	QualityScore     float64         `json:"quality_score"`
	RiskPct          float64         `json:"risk_pct"`
	PositionSizeUSD  float64         `json:"position_size_usd"`
	Reasons          []string        `json:"reasons"`
	SuggestedActions []string        `json:"suggested_actions"`
	MarketRegime     string          `json:"market_regime"`
	VolatilityState  VolatilityLabel `json:"volatility_state"`
	Session          string          `json:"session,omitempty"`
}

// DecisionRecord is the audit form of a DecisionResult, enriched with
// request identity for archival.
type DecisionRecord struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Symbol    string         `json:"symbol"`
	Strategy  string         `json:"strategy"`
	Timestamp time.Time      `json:"timestamp"`
	Result    DecisionResult `json:"result"`
}
