package risk

import (
	"fmt"

	"TradeGate/internal/domain/models"
)

const (
	defaultMaxRiskPct    = 1.0
	defaultHighVolCapPct = 0.5
	defaultMinStopPct    = 0.05
)

// Config enumerates every sizing threshold; zero values fall back to the
// beginner-safe defaults.
type Config struct {
	MaxRiskPerTradePct float64
	HighVolRiskCapPct  float64
	MinStopDistancePct float64
}

func (c *Config) applyDefaults() {
	if c.MaxRiskPerTradePct <= 0 {
		c.MaxRiskPerTradePct = defaultMaxRiskPct
	}
	if c.HighVolRiskCapPct <= 0 {
		c.HighVolRiskCapPct = defaultHighVolCapPct
	}
	if c.MinStopDistancePct <= 0 {
		c.MinStopDistancePct = defaultMinStopPct
	}
}

// Sizer caps intended risk and converts it into a notional position size.
type Sizer struct {
	cfg Config
}

func NewSizer(cfg Config) *Sizer {
	cfg.applyDefaults()
	return &Sizer{cfg: cfg}
}

// Compute sizes a trade so a stop hit loses riskPct of equity. Inputs must
// be positive; the result is always non-negative. The session multiplier is
// deliberately NOT applied here, the orchestrator applies it to the final
// percentage after sizing.
func (s *Sizer) Compute(accountEquity, intendedRiskPct, stopDistancePct float64, vol models.VolatilityLabel) (models.RiskResult, error) {
	if accountEquity <= 0 || intendedRiskPct <= 0 || stopDistancePct <= 0 {
		return models.RiskResult{}, fmt.Errorf("risk compute: %w", models.ErrInvalidInput)
	}

	reasons := []string{}

	riskPct := intendedRiskPct
	if riskPct > s.cfg.MaxRiskPerTradePct {
		riskPct = s.cfg.MaxRiskPerTradePct
		reasons = append(reasons, fmt.Sprintf("Risk capped to %.2f%% (beginner-safe limit).", s.cfg.MaxRiskPerTradePct))
	}

	if vol == models.VolatilityHigh {
		if riskPct > s.cfg.HighVolRiskCapPct {
			riskPct = s.cfg.HighVolRiskCapPct
		}
		reasons = append(reasons, fmt.Sprintf("High volatility detected → risk reduced to %.2f%%.", s.cfg.HighVolRiskCapPct))
	}

	// Floor the stop so a near-zero distance cannot blow up the size.
	if stopDistancePct < s.cfg.MinStopDistancePct {
		stopDistancePct = s.cfg.MinStopDistancePct
	}

	positionSize := accountEquity * (riskPct / 100.0) / (stopDistancePct / 100.0)

	return models.RiskResult{
		FinalRiskPct:    riskPct,
		PositionSizeUSD: positionSize,
		Reasons:         reasons,
	}, nil
}
