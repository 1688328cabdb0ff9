package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"TradeGate/internal/domain/models"
	domrepo "TradeGate/internal/domain/repository"
	"TradeGate/internal/services/regime"
	"TradeGate/internal/services/session"
	applogger "TradeGate/pkg/logger"
	"TradeGate/pkg/queue"
)

// GateUseCase is the trade-permission entry point. It pulls recent candles
// for every supported timeframe, runs the evaluation ladder, and archives
// the decision asynchronously.
type GateUseCase struct {
	store      domrepo.FeatureStore
	eval       *Evaluator
	classifier *regime.Classifier
	sessions   *session.Classifier
	metrics    domrepo.Metrics
	archiveQ   queue.QueueService
	l          *applogger.Logger
	timeout    time.Duration
}

func NewGateUseCase(
	store domrepo.FeatureStore,
	eval *Evaluator,
	classifier *regime.Classifier,
	sessions *session.Classifier,
	metrics domrepo.Metrics,
	archiveQ queue.QueueService,
) *GateUseCase {
	return &GateUseCase{
		store:      store,
		eval:       eval,
		classifier: classifier,
		sessions:   sessions,
		metrics:    metrics,
		archiveQ:   archiveQ,
		timeout:    10 * time.Second,
	}
}

// SetLogger injects a structured logger.
func (uc *GateUseCase) SetLogger(l *applogger.Logger) { uc.l = l }

// CheckTrade evaluates a proposed trade for the authenticated user.
func (uc *GateUseCase) CheckTrade(ctx context.Context, userID string, req models.CheckTradeRequest) (*models.DecisionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	n := req.Candles
	if n <= 0 {
		n = 300
	}

	candlesByTF, err := uc.fetchAll(ctx, req.Symbol, n)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	res, err := uc.eval.Evaluate(ctx, EvaluateParams{
		UserID:          userID,
		Symbol:          req.Symbol,
		Strategy:        req.Strategy,
		AccountEquity:   req.AccountEquity,
		IntendedRiskPct: req.IntendedRiskPct,
		StopDistancePct: req.StopDistancePct,
		Now:             now,
	}, candlesByTF)
	if err != nil {
		return nil, err
	}

	uc.metrics.RecordDecision(string(res.Decision), req.Symbol)
	uc.archive(ctx, &models.DecisionRecord{
		ID:        uuid.New().String(),
		UserID:    userID,
		Symbol:    req.Symbol,
		Strategy:  req.Strategy,
		Timestamp: now,
		Result:    *res,
	})

	return res, nil
}

// fetchAll loads the latest n candles for every supported timeframe
// concurrently. One failed timeframe fails the whole request; the gate
// needs all three views to vote.
func (uc *GateUseCase) fetchAll(ctx context.Context, symbol string, n int) (map[models.Timeframe][]models.Candle, error) {
	type item struct {
		tf      models.Timeframe
		candles []models.Candle
		err     error
	}

	tfs := models.AllTimeframes()
	ch := make(chan item, len(tfs))
	var wg sync.WaitGroup
	for _, tf := range tfs {
		wg.Add(1)
		go func(tf models.Timeframe) {
			defer wg.Done()
			cs, err := uc.store.GetLatestNCandles(ctx, symbol, n, tf)
			ch <- item{tf, cs, err}
		}(tf)
	}
	go func() { wg.Wait(); close(ch) }()

	out := make(map[models.Timeframe][]models.Candle, len(tfs))
	for it := range ch {
		if it.err != nil {
			return nil, fmt.Errorf("candles %s %s: %w", symbol, it.tf, it.err)
		}
		if len(it.candles) == 0 {
			return nil, fmt.Errorf("candles %s %s: %w", symbol, it.tf, models.ErrEmptySeries)
		}
		out[it.tf] = it.candles
	}
	return out, nil
}

// archive enqueues the decision record. Archival is best-effort; a queue
// failure is logged and never fails the request.
func (uc *GateUseCase) archive(ctx context.Context, rec *models.DecisionRecord) {
	if uc.archiveQ == nil {
		return
	}
	if err := uc.archiveQ.PublishMessage(ctx, DecisionArchiveJobType, rec); err != nil {
		uc.metrics.RecordError("decision_archive_enqueue")
		if uc.l != nil {
			uc.l.Error("decision archive enqueue failed",
				applogger.String("decision_id", rec.ID),
				applogger.String("symbol", rec.Symbol),
				applogger.Error(err),
			)
		}
	}
}

// RegimeQueryResult is the response of the regime endpoint.
type RegimeQueryResult struct {
	Symbol     string  `json:"symbol"`
	Timeframe  string  `json:"tf"`
	Candles    int     `json:"candles"`
	Regime     string  `json:"regime"`
	Volatility string  `json:"volatility"`
	Slope      float64 `json:"slope"`
	Vol        float64 `json:"vol"`
}

// QueryRegime classifies the latest candles of a single timeframe.
func (uc *GateUseCase) QueryRegime(ctx context.Context, req models.RegimeQueryRequest) (*RegimeQueryResult, error) {
	tf, err := models.ParseTimeframe(req.TF)
	if err != nil {
		return nil, err
	}
	n := req.N
	if n <= 0 {
		n = 300
	}

	cs, err := uc.store.GetLatestNCandles(ctx, req.Symbol, n, tf)
	if err != nil {
		return nil, fmt.Errorf("candles %s %s: %w", req.Symbol, tf, err)
	}
	r, err := uc.classifier.Classify(cs)
	if err != nil {
		return nil, err
	}

	return &RegimeQueryResult{
		Symbol:     req.Symbol,
		Timeframe:  string(tf),
		Candles:    len(cs),
		Regime:     string(r.Regime),
		Volatility: string(r.Volatility),
		Slope:      r.Slope,
		Vol:        r.Vol,
	}, nil
}

// CurrentSession returns the liquidity session profile for the given time.
func (uc *GateUseCase) CurrentSession(now time.Time) models.SessionProfile {
	return uc.sessions.Classify(now)
}
