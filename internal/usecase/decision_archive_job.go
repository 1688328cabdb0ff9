package usecase

import (
	"context"
	"fmt"

	"TradeGate/internal/domain/models"
	domrepo "TradeGate/internal/domain/repository"
	"TradeGate/pkg/queue"
)

// DecisionArchiveJobType is the queue message type for decision archival.
const DecisionArchiveJobType = "decision_archive"

// DecisionArchiveJob drains the archive queue into the decision store.
type DecisionArchiveJob struct {
	archive domrepo.DecisionArchive
}

func NewDecisionArchiveJob(archive domrepo.DecisionArchive) *DecisionArchiveJob {
	return &DecisionArchiveJob{archive: archive}
}

func (j *DecisionArchiveJob) Name() string { return "decision-archive" }
func (j *DecisionArchiveJob) Type() string { return DecisionArchiveJobType }

func (j *DecisionArchiveJob) Handle(ctx context.Context, payload interface{}) error {
	rec, err := queue.ParsePayload[models.DecisionRecord](payload)
	if err != nil {
		return fmt.Errorf("decision archive payload: %w", err)
	}
	if rec.ID == "" || rec.UserID == "" {
		return fmt.Errorf("decision archive payload: missing identity")
	}
	return j.archive.Archive(ctx, rec)
}

var _ queue.Job = (*DecisionArchiveJob)(nil)
