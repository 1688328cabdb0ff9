package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"TradeGate/internal/domain/models"
	domrepo "TradeGate/internal/domain/repository"
)

// CHLogDigestStore persists error-log digests into ClickHouse so noisy
// failure windows can be inspected after the fact.
type CHLogDigestStore struct {
	db       *sql.DB
	database string
}

func NewCHLogDigestStore(db *sql.DB, database string) *CHLogDigestStore {
	return &CHLogDigestStore{db: db, database: database}
}

func (s *CHLogDigestStore) StoreDigest(ctx context.Context, entries []models.LogDigestEntry) error {
	if len(entries) == 0 {
		return nil
	}

	q := fmt.Sprintf(`INSERT INTO %s.error_digests
        (level, message, caller, fields, count, first_seen, last_seen)
        VALUES (?, ?, ?, ?, ?, ?, ?)`, s.database)

	for _, e := range entries {
		fields := ""
		if len(e.Fields) > 0 {
			b, err := json.Marshal(e.Fields)
			if err == nil {
				fields = string(b)
			}
		}
		if _, err := s.db.ExecContext(ctx, q,
			e.Level,
			e.Message,
			e.Caller,
			fields,
			uint64(e.Count),
			e.FirstSeen,
			e.LastSeen,
		); err != nil {
			return fmt.Errorf("store log digest: %w", err)
		}
	}
	return nil
}

var _ domrepo.LogDigestStore = (*CHLogDigestStore)(nil)
