package models

import "time"

// BehaviorState tracks one user's trading discipline counters for one UTC
// calendar day. Invariant: TradesCount == Wins + Losses.
type BehaviorState struct {
	UserID            string     `json:"user_id"`
	Day               string     `json:"day"` // YYYY-MM-DD, UTC
	TradesCount       int        `json:"trades_count"`
	Wins              int        `json:"wins"`
	Losses            int        `json:"losses"`
	RealizedPnL       float64    `json:"realized_pnl"`
	ConsecutiveLosses int        `json:"consecutive_losses"`
	CooldownUntil     *time.Time `json:"cooldown_until,omitempty"`
}

// DayKey formats a UTC instant as the calendar-day key used for BehaviorState.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// BehaviorCheck is the verdict of the behavior guardrails for a new trade.
type BehaviorCheck struct {
	Allowed          bool       `json:"allowed"`
	Reasons          []string   `json:"reasons"`
	SuggestedActions []string   `json:"suggested_actions"`
	CooldownUntil    *time.Time `json:"cooldown_until,omitempty"`
}
