package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"TradeGate/internal/domain/models"
	domrepo "TradeGate/internal/domain/repository"
)

// CHDecisionArchive persists evaluated decisions into ClickHouse for audit
// and reporting. Append-only; decisions are immutable once issued.
type CHDecisionArchive struct {
	db       *sql.DB
	database string
}

func NewCHDecisionArchive(db *sql.DB, database string) *CHDecisionArchive {
	return &CHDecisionArchive{db: db, database: database}
}

func (a *CHDecisionArchive) Archive(ctx context.Context, rec *models.DecisionRecord) error {
	if rec == nil {
		return fmt.Errorf("decision record is nil")
	}
	q := fmt.Sprintf(`INSERT INTO %s.decisions
        (id, user_id, symbol, strategy, ts, decision, quality_score, risk_pct, position_size_usd, market_regime, volatility_state, session, reasons, suggested_actions)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, a.database)
	_, err := a.db.ExecContext(ctx, q,
		rec.ID,
		rec.UserID,
		rec.Symbol,
		rec.Strategy,
		rec.Timestamp,
		string(rec.Result.Decision),
		rec.Result.QualityScore,
		rec.Result.RiskPct,
		rec.Result.PositionSizeUSD,
		rec.Result.MarketRegime,
		string(rec.Result.VolatilityState),
		rec.Result.Session,
		strings.Join(rec.Result.Reasons, "\n"),
		strings.Join(rec.Result.SuggestedActions, "\n"),
	)
	if err != nil {
		return fmt.Errorf("archive decision: %w", err)
	}
	return nil
}

var _ domrepo.DecisionArchive = (*CHDecisionArchive)(nil)
