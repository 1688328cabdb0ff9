package models

import "time"

// Trade modes. LIVE is reserved; only PAPER is accepted.
const (
	ModePaper = "PAPER"
	ModeLive  = "LIVE"
)

// Trade statuses.
const (
	StatusOpen   = "OPEN"
	StatusClosed = "CLOSED"
)

// PaperTrade is a journaled paper trade.
type PaperTrade struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Symbol          string    `json:"symbol"`
	Strategy        string    `json:"strategy"`
	Mode            string    `json:"mode"`
	Status          string    `json:"status"`
	OpenedAt        time.Time `json:"opened_at"`
	ClosedAt        time.Time `json:"closed_at,omitzero"`
	EntryPrice      float64   `json:"entry_price"`
	ExitPrice       float64   `json:"exit_price"`
	Qty             float64   `json:"qty"`
	RiskPct         float64   `json:"risk_pct"`
	StopDistancePct float64   `json:"stop_distance_pct"`
	PnL             float64   `json:"pnl"`
	RR              float64   `json:"rr"`
	RuleViolation   bool      `json:"rule_violation"`
	Notes           string    `json:"notes,omitempty"`
}

// User is a registered account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// DailyReport summarizes one day's behavior counters.
type DailyReport struct {
	Day               string  `json:"day"`
	Trades            int     `json:"trades"`
	Wins              int     `json:"wins"`
	Losses            int     `json:"losses"`
	RealizedPnL       float64 `json:"realized_pnl"`
	ConsecutiveLosses int     `json:"consecutive_losses"`
	CooldownUntil     string  `json:"cooldown_until,omitempty"`
}

// WeeklyReport aggregates the trailing seven daily reports.
type WeeklyReport struct {
	StartDay             string  `json:"start_day"`
	EndDay               string  `json:"end_day"`
	Trades               int     `json:"trades"`
	Wins                 int     `json:"wins"`
	Losses               int     `json:"losses"`
	RealizedPnL          float64 `json:"realized_pnl"`
	MaxConsecutiveLosses int     `json:"max_consecutive_losses"`
}
