package usecase

import (
	"context"
	"fmt"
	"time"

	"TradeGate/internal/domain/models"
	"TradeGate/internal/services/behavior"
	"TradeGate/internal/services/regime"
	"TradeGate/internal/services/risk"
	"TradeGate/internal/services/session"
)

// Decision ladder thresholds. Confidence below the floor marks an unclear
// market; the quality floors separate Block, Warn, and Allow.
const (
	lowConfidenceFloor = 0.45
	blockQualityFloor  = 0.35
	warnQualityFloor   = 0.55
)

// Evaluator runs the trade-permission ladder: behavior guardrails first,
// then regime consensus, risk sizing, and strategy fit. All classification
// steps are pure; the only stateful call is the behavior check.
type Evaluator struct {
	classifier *regime.Classifier
	aggregator *regime.Aggregator
	sizer      *risk.Sizer
	fit        *risk.FitScorer
	sessions   *session.Classifier
	guard      *behavior.Guard
}

func NewEvaluator(
	classifier *regime.Classifier,
	aggregator *regime.Aggregator,
	sizer *risk.Sizer,
	fit *risk.FitScorer,
	sessions *session.Classifier,
	guard *behavior.Guard,
) *Evaluator {
	return &Evaluator{
		classifier: classifier,
		aggregator: aggregator,
		sizer:      sizer,
		fit:        fit,
		sessions:   sessions,
		guard:      guard,
	}
}

// EvaluateParams is one trade-permission request.
type EvaluateParams struct {
	UserID          string
	Symbol          string
	Strategy        string
	AccountEquity   float64
	IntendedRiskPct float64
	StopDistancePct float64
	Now             time.Time
}

// Evaluate grades a proposed trade as ALLOW, WARN, or BLOCK. candlesByTF
// holds one chronological series per timeframe; every series must be
// non-empty. The returned result is self-contained and never nil on a nil
// error.
func (e *Evaluator) Evaluate(ctx context.Context, p EvaluateParams, candlesByTF map[models.Timeframe][]models.Candle) (*models.DecisionResult, error) {
	if p.AccountEquity <= 0 || p.IntendedRiskPct <= 0 || p.StopDistancePct <= 0 {
		return nil, fmt.Errorf("evaluate: %w", models.ErrInvalidInput)
	}
	if len(candlesByTF) == 0 {
		return nil, fmt.Errorf("evaluate: %w", models.ErrEmptySeries)
	}

	beh, err := e.guard.Check(ctx, p.UserID, p.Now)
	if err != nil {
		return nil, err
	}

	perTF := make(map[models.Timeframe]models.RegimeResult, len(candlesByTF))
	for tf, candles := range candlesByTF {
		r, err := e.classifier.Classify(candles)
		if err != nil {
			return nil, fmt.Errorf("timeframe %s: %w", tf, err)
		}
		perTF[tf] = r
	}
	multi, err := e.aggregator.Combine(perTF)
	if err != nil {
		return nil, err
	}

	riskRes, err := e.sizer.Compute(p.AccountEquity, p.IntendedRiskPct, p.StopDistancePct, multi.FinalVolatility)
	if err != nil {
		return nil, err
	}

	// The session multiplier scales the final percentage after sizing, so
	// the reported dollar size stays tied to the unscaled risk. Inherited
	// behavior, kept on purpose.
	sess := e.sessions.Classify(p.Now)
	riskRes.FinalRiskPct *= sess.RiskMultiplier

	regimeLabel := fmt.Sprintf("%s (conf %.2f)", multi.FinalRegime, multi.Confidence)

	result := func(d models.Decision, quality float64, reasons, suggested []string) *models.DecisionResult {
		return &models.DecisionResult{
			Decision:         d,
			QualityScore:     quality,
			RiskPct:          riskRes.FinalRiskPct,
			PositionSizeUSD:  riskRes.PositionSizeUSD,
			Reasons:          reasons,
			SuggestedActions: suggested,
			MarketRegime:     regimeLabel,
			VolatilityState:  multi.FinalVolatility,
			Session:          sess.Name,
		}
	}

	// Hard behavior block. Risk is still reported for UI context.
	if !beh.Allowed {
		return result(models.DecisionBlock, 0,
			append(beh.Reasons, riskRes.Reasons...),
			append(beh.SuggestedActions, "Switch to paper review mode."),
		), nil
	}

	quality, fitReasons := e.fit.Score(multi.FinalRegime, multi.FinalVolatility, p.Strategy)
	reasons := append(fitReasons, riskRes.Reasons...)
	suggested := []string{}

	if multi.Confidence < lowConfidenceFloor {
		reasons = append(reasons, fmt.Sprintf("Low regime confidence (%.2f) → conditions unclear.", multi.Confidence))
		if quality < warnQualityFloor {
			return result(models.DecisionBlock, quality, reasons, []string{
				"Wait for clearer market structure.",
				"Switch timeframe to 15m for confirmation.",
			}), nil
		}
		suggested = append(suggested, "Proceed only with extra confirmation; consider reducing size.")
	}

	if quality < blockQualityFloor {
		return result(models.DecisionBlock, quality,
			append(reasons, "Trade quality score too low."),
			[]string{
				"Wait for a clearer setup.",
				"Consider changing strategy for the current regime.",
			}), nil
	}

	decision := models.DecisionAllow
	if quality < warnQualityFloor {
		decision = models.DecisionWarn
		suggested = append(suggested, "Lower position size or wait for confirmation.")
	}

	if multi.FinalVolatility == models.VolatilityHigh {
		suggested = append(suggested, "Use wider stops or smaller size; expect faster swings.")
	}

	if len(suggested) == 0 {
		suggested = []string{"Proceed only if your setup matches your plan and stop is respected."}
	}

	return result(decision, quality, reasons, suggested), nil
}
