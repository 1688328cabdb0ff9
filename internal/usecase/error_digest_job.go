package usecase

import (
	"context"
	"fmt"

	"TradeGate/internal/domain/models"
	domrepo "TradeGate/internal/domain/repository"
	"TradeGate/pkg/queue"
)

// ErrorDigestJobType is the queue message type for error-log digests.
const ErrorDigestJobType = "error_digest"

// ErrorDigestJob drains flushed log digests into the digest store.
type ErrorDigestJob struct {
	store domrepo.LogDigestStore
}

func NewErrorDigestJob(store domrepo.LogDigestStore) *ErrorDigestJob {
	return &ErrorDigestJob{store: store}
}

func (j *ErrorDigestJob) Name() string { return "error-digest" }
func (j *ErrorDigestJob) Type() string { return ErrorDigestJobType }

func (j *ErrorDigestJob) Handle(ctx context.Context, payload interface{}) error {
	entries, err := queue.ParsePayload[[]models.LogDigestEntry](payload)
	if err != nil {
		return fmt.Errorf("error digest payload: %w", err)
	}
	if entries == nil || len(*entries) == 0 {
		return nil
	}
	return j.store.StoreDigest(ctx, *entries)
}

var _ queue.Job = (*ErrorDigestJob)(nil)
