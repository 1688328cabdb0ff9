package session

import (
	"time"

	"TradeGate/internal/domain/models"
)

// profiles maps each UTC hour band to its liquidity session. Crypto trades
// around the clock, so the bands describe dominant market hours rather than
// exchange opening times.
var profiles = []struct {
	fromHour, toHour int
	profile          models.SessionProfile
}{
	{0, 7, models.SessionProfile{
		Name:           "ASIA",
		Liquidity:      "low",
		RiskMultiplier: 0.7,
		Note:           "Lower volatility, prone to fake moves.",
	}},
	{7, 13, models.SessionProfile{
		Name:           "EU",
		Liquidity:      "medium",
		RiskMultiplier: 0.9,
		Note:           "Trend formation and structure building.",
	}},
	{13, 21, models.SessionProfile{
		Name:           "US",
		Liquidity:      "high",
		RiskMultiplier: 1.0,
		Note:           "Highest liquidity and strongest moves.",
	}},
	{21, 24, models.SessionProfile{
		Name:           "WEEKEND",
		Liquidity:      "very low",
		RiskMultiplier: 0.5,
		Note:           "Avoid trading unless exceptional setup.",
	}},
}

// Classifier resolves the liquidity session for an instant. Stateless.
type Classifier struct{}

func NewClassifier() *Classifier { return &Classifier{} }

// Classify returns the session profile for the UTC hour of now.
func (c *Classifier) Classify(now time.Time) models.SessionProfile {
	hour := now.UTC().Hour()
	for _, p := range profiles {
		if hour >= p.fromHour && hour < p.toHour {
			return p.profile
		}
	}
	// unreachable, hour is always in [0,24)
	return profiles[len(profiles)-1].profile
}
