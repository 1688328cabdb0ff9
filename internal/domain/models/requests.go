package models

// Requests for the gate HTTP endpoints. Defined in domain for consistency and reuse.

type CheckTradeRequest struct {
	Symbol          string  `json:"symbol" validate:"required"`
	Strategy        string  `json:"strategy" validate:"required"`
	AccountEquity   float64 `json:"account_equity" validate:"required,gt=0"`
	IntendedRiskPct float64 `json:"intended_risk_pct" validate:"required,gt=0"`
	StopDistancePct float64 `json:"stop_distance_pct" validate:"required,gt=0"`
	Candles         int     `json:"candles" default:"300" validate:"gte=2,lte=1000"`
}

type RegimeQueryRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	N      int    `query:"n" json:"n" default:"300" validate:"gte=2,lte=1000"`
	TF     string `query:"tf" json:"tf" default:"1m" validate:"oneof=1m 5m 15m"`
}

type CandlesQueryRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	From   string `query:"from" json:"from"` // RFC3339 or unix seconds; empty means 24h ago
	To     string `query:"to" json:"to"`     // RFC3339 or unix seconds; empty means now
	TF     string `query:"tf" json:"tf" default:"1m" validate:"oneof=1m 5m 15m"`
	Limit  int    `query:"limit" json:"limit" default:"1000" validate:"gte=1,lte=50000"`
}

type TradeOpenRequest struct {
	Symbol          string  `json:"symbol" validate:"required"`
	Strategy        string  `json:"strategy" validate:"required"`
	EntryPrice      float64 `json:"entry_price" validate:"required,gt=0"`
	Qty             float64 `json:"qty" validate:"required,gt=0"`
	RiskPct         float64 `json:"risk_pct" validate:"gte=0"`
	StopDistancePct float64 `json:"stop_distance_pct" validate:"gte=0"`
	Mode            string  `json:"mode" default:"PAPER" validate:"oneof=PAPER LIVE"`
	Notes           string  `json:"notes" validate:"max=512"`
}

type TradeCloseRequest struct {
	TradeID       string  `json:"trade_id" validate:"required"`
	ExitPrice     float64 `json:"exit_price" validate:"required,gt=0"`
	PnL           float64 `json:"pnl"`
	RR            float64 `json:"rr"`
	RuleViolation bool    `json:"rule_violation"`
	Notes         string  `json:"notes" validate:"max=512"`
}

type TradesListRequest struct {
	Days int `query:"days" json:"days" default:"7" validate:"gte=1,lte=90"`
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
