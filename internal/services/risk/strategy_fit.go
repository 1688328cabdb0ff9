package risk

import (
	"strings"

	"TradeGate/internal/domain/models"
)

// FitScorer rates how well a named strategy suits the consensus regime.
// Pure function; High and Low volatility are mutually exclusive so at most
// one volatility deduction applies.
type FitScorer struct{}

func NewFitScorer() *FitScorer { return &FitScorer{} }

// Score starts at 1.0, deducts per mismatch, and floors at 0. It returns
// the score and one reason per deduction applied.
func (f *FitScorer) Score(regime models.RegimeLabel, vol models.VolatilityLabel, strategy string) (float64, []string) {
	score := 1.0
	reasons := []string{}

	if strings.Contains(strings.ToLower(strategy), "breakout") && regime == models.RegimeRange {
		score -= 0.35
		reasons = append(reasons, "Breakout strategy underperforms in range markets.")
	}

	switch vol {
	case models.VolatilityHigh:
		score -= 0.15
		reasons = append(reasons, "High volatility increases false signals.")
	case models.VolatilityLow:
		score -= 0.10
		reasons = append(reasons, "Low volatility reduces momentum follow-through.")
	}

	if score < 0 {
		score = 0
	}
	return score, reasons
}
