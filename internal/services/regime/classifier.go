package regime

import (
	"fmt"
	"math"

	"TradeGate/internal/domain/models"
	"TradeGate/internal/services/features"
)

const (
	defaultWindow      = 120
	rollingVolWindow   = 30
	minReturnsForState = 60
	minRollingSamples  = 10
	defaultSlopeThresh = 0.00025
	defaultVolQuantile = 0.80
	defaultSlopeScale  = 0.002
	volNoiseFloor      = 1e-12
)

// Config holds every classifier threshold explicitly; the zero value is
// filled with defaults by NewClassifier.
type Config struct {
	TrendSlopeThreshold float64
	HighVolPercentile   float64
	Window              int
	SlopeScale          float64
}

func (c *Config) applyDefaults() {
	if c.TrendSlopeThreshold <= 0 {
		c.TrendSlopeThreshold = defaultSlopeThresh
	}
	if c.HighVolPercentile <= 0 {
		c.HighVolPercentile = defaultVolQuantile
	}
	if c.Window <= 0 {
		c.Window = defaultWindow
	}
	if c.SlopeScale <= 0 {
		c.SlopeScale = defaultSlopeScale
	}
}

// Classifier derives a trend/range regime and a high/low volatility state
// from a single candle series. Classification is deterministic and performs
// no I/O.
type Classifier struct {
	cfg Config
}

func NewClassifier(cfg Config) *Classifier {
	cfg.applyDefaults()
	return &Classifier{cfg: cfg}
}

// Classify labels one series. A series with zero candles is a contract
// violation; anything shorter than the window degrades to a conservative
// Range/Low result instead of failing.
func (c *Classifier) Classify(candles []models.Candle) (models.RegimeResult, error) {
	if len(candles) == 0 {
		return models.RegimeResult{}, fmt.Errorf("classify: %w", models.ErrEmptySeries)
	}

	logp := features.LogCloses(candles)
	window := c.cfg.Window
	if len(logp) < window {
		window = len(logp)
	}
	slope := features.OLSSlope(logp[len(logp)-window:])

	rets := features.Diffs(logp)
	var vol float64
	if len(rets) >= window {
		vol = features.StdDev(rets[len(rets)-window:])
	} else {
		vol = features.StdDev(rets)
	}

	// Volatility state compares current vol against this series' own
	// rolling-std history; without enough history it stays Low. Dispersion
	// at float-noise level counts as zero so flat and purely exponential
	// series never flag High.
	state := models.VolatilityLow
	if len(rets) > minReturnsForState {
		vols := features.RollingStd(rets, rollingVolWindow)
		if len(vols) >= minRollingSamples {
			thr := features.Quantile(vols, c.cfg.HighVolPercentile)
			if vol > volNoiseFloor && vol >= thr {
				state = models.VolatilityHigh
			}
		}
	}

	label := models.RegimeRange
	if math.Abs(slope) >= c.cfg.TrendSlopeThreshold {
		label = models.RegimeTrend
	}

	return models.RegimeResult{
		Regime:     label,
		Volatility: state,
		Slope:      slope,
		Vol:        vol,
	}, nil
}
