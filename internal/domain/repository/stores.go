package repository

import (
	"context"
	"errors"
	"time"

	"TradeGate/internal/domain/models"
)

// ErrNotFound is returned by stores when the requested record does not exist.
var ErrNotFound = errors.New("repository: not found")

// BehaviorStore persists per-(user, day) behavior counters. Implementations
// create a zero-valued state on first read of an unknown (user, day) pair.
type BehaviorStore interface {
	Get(ctx context.Context, userID, day string) (*models.BehaviorState, error)
	Put(ctx context.Context, state *models.BehaviorState) error
	// Range returns the states for the inclusive day range, oldest first.
	// Days with no record are skipped.
	Range(ctx context.Context, userID string, from, to time.Time) ([]*models.BehaviorState, error)
}

// TradeStore persists the paper-trade journal.
type TradeStore interface {
	Insert(ctx context.Context, t *models.PaperTrade) error
	FindByID(ctx context.Context, userID, tradeID string) (*models.PaperTrade, error)
	MarkClosed(ctx context.Context, t *models.PaperTrade) error
	ListSince(ctx context.Context, userID string, since time.Time, limit int) ([]*models.PaperTrade, error)
}

// DecisionArchive persists evaluated decisions for audit and reporting.
type DecisionArchive interface {
	Archive(ctx context.Context, rec *models.DecisionRecord) error
}

// LogDigestStore persists aggregated error-log digests.
type LogDigestStore interface {
	StoreDigest(ctx context.Context, entries []models.LogDigestEntry) error
}

// UserStore persists registered accounts.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
}
