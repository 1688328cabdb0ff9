package regime

import (
	"fmt"
	"math"

	"TradeGate/internal/domain/models"
	"TradeGate/internal/services/features"
)

// Aggregator combines per-timeframe classifications into one consensus
// regime with a confidence signal.
type Aggregator struct {
	slopeScale float64
}

func NewAggregator(cfg Config) *Aggregator {
	cfg.applyDefaults()
	return &Aggregator{slopeScale: cfg.SlopeScale}
}

// Combine votes across timeframes. Regime ties resolve to Range as the
// stricter default; volatility is High only when at least two timeframes
// report High.
func (a *Aggregator) Combine(perTF map[models.Timeframe]models.RegimeResult) (models.MultiTFRegime, error) {
	if len(perTF) == 0 {
		return models.MultiTFRegime{}, fmt.Errorf("combine: %w", models.ErrEmptySeries)
	}

	total := len(perTF)
	trendVotes := 0
	highVotes := 0
	slopeSum := 0.0
	for _, r := range perTF {
		if r.Regime == models.RegimeTrend {
			trendVotes++
		}
		if r.Volatility == models.VolatilityHigh {
			highVotes++
		}
		slopeSum += math.Abs(r.Slope)
	}
	rangeVotes := total - trendVotes

	finalRegime := models.RegimeRange
	if trendVotes > rangeVotes {
		finalRegime = models.RegimeTrend
	}

	finalVol := models.VolatilityLow
	if highVotes >= 2 {
		finalVol = models.VolatilityHigh
	}

	agreeRegime := float64(max(trendVotes, rangeVotes)) / float64(total)
	volAgree := highVotes
	if finalVol == models.VolatilityLow {
		volAgree = total - highVotes
	}
	agreeVol := float64(volAgree) / float64(total)
	slopeBonus := features.Clamp01(slopeSum / float64(total) / a.slopeScale)

	confidence := features.Clamp01(0.55*agreeRegime + 0.25*agreeVol + 0.20*slopeBonus)

	return models.MultiTFRegime{
		FinalRegime:     finalRegime,
		FinalVolatility: finalVol,
		Confidence:      confidence,
		PerTimeframe:    perTF,
	}, nil
}
