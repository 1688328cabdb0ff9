package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"TradeGate/internal/domain/models"
	domrepo "TradeGate/internal/domain/repository"
)

// CHTradeStore keeps the paper-trade journal in ClickHouse. The table is a
// ReplacingMergeTree versioned by updated_at: closing a trade inserts a new
// row for the same (user_id, id) and reads collapse with FINAL.
type CHTradeStore struct {
	db       *sql.DB
	database string
}

func NewCHTradeStore(db *sql.DB, database string) *CHTradeStore {
	return &CHTradeStore{db: db, database: database}
}

func (s *CHTradeStore) table() string { return s.database + ".paper_trades" }

func (s *CHTradeStore) insertRow(ctx context.Context, t *models.PaperTrade, updatedAt time.Time) error {
	q := fmt.Sprintf(`INSERT INTO %s
        (id, user_id, symbol, strategy, mode, status, opened_at, closed_at, entry_price, exit_price, qty, risk_pct, stop_distance_pct, pnl, rr, rule_violation, notes, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.table())

	closedAt := time.Unix(0, 0).UTC()
	if !t.ClosedAt.IsZero() {
		closedAt = t.ClosedAt
	}
	violation := uint8(0)
	if t.RuleViolation {
		violation = 1
	}
	_, err := s.db.ExecContext(ctx, q,
		t.ID,
		t.UserID,
		t.Symbol,
		t.Strategy,
		t.Mode,
		t.Status,
		t.OpenedAt,
		closedAt,
		t.EntryPrice,
		t.ExitPrice,
		t.Qty,
		t.RiskPct,
		t.StopDistancePct,
		t.PnL,
		t.RR,
		violation,
		t.Notes,
		updatedAt,
	)
	return err
}

func (s *CHTradeStore) Insert(ctx context.Context, t *models.PaperTrade) error {
	if err := s.insertRow(ctx, t, t.OpenedAt); err != nil {
		return fmt.Errorf("insert trade: %w", err)
	}
	return nil
}

func (s *CHTradeStore) MarkClosed(ctx context.Context, t *models.PaperTrade) error {
	if err := s.insertRow(ctx, t, t.ClosedAt); err != nil {
		return fmt.Errorf("close trade: %w", err)
	}
	return nil
}

const tradeColumns = "id, user_id, symbol, strategy, mode, status, opened_at, closed_at, entry_price, exit_price, qty, risk_pct, stop_distance_pct, pnl, rr, rule_violation, notes"

func scanTrade(rows *sql.Rows) (*models.PaperTrade, error) {
	var t models.PaperTrade
	var closedAt time.Time
	var violation uint8
	if err := rows.Scan(
		&t.ID, &t.UserID, &t.Symbol, &t.Strategy, &t.Mode, &t.Status,
		&t.OpenedAt, &closedAt, &t.EntryPrice, &t.ExitPrice, &t.Qty,
		&t.RiskPct, &t.StopDistancePct, &t.PnL, &t.RR, &violation, &t.Notes,
	); err != nil {
		return nil, err
	}
	if closedAt.Unix() > 0 {
		t.ClosedAt = closedAt.UTC()
	}
	t.RuleViolation = violation == 1
	return &t, nil
}

func (s *CHTradeStore) FindByID(ctx context.Context, userID, tradeID string) (*models.PaperTrade, error) {
	q := fmt.Sprintf("SELECT %s FROM %s FINAL WHERE user_id = ? AND id = ? LIMIT 1", tradeColumns, s.table())
	rows, err := s.db.QueryContext(ctx, q, userID, tradeID)
	if err != nil {
		return nil, fmt.Errorf("find trade: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("find trade: %w", err)
		}
		return nil, domrepo.ErrNotFound
	}
	t, err := scanTrade(rows)
	if err != nil {
		return nil, fmt.Errorf("scan trade: %w", err)
	}
	return t, rows.Err()
}

func (s *CHTradeStore) ListSince(ctx context.Context, userID string, since time.Time, limit int) ([]*models.PaperTrade, error) {
	q := fmt.Sprintf("SELECT %s FROM %s FINAL WHERE user_id = ? AND opened_at >= ? ORDER BY opened_at DESC LIMIT ?", tradeColumns, s.table())
	rows, err := s.db.QueryContext(ctx, q, userID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("list trades: %w", err)
	}
	defer rows.Close()

	var out []*models.PaperTrade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

var _ domrepo.TradeStore = (*CHTradeStore)(nil)
