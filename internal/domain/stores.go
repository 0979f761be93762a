package domain

import (
	"context"

	"github.com/google/uuid"
)

type CorrectionStore interface {
	Create(ctx context.Context, r *CorrectionRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*CorrectionRecord, error)
	ListRecent(ctx context.Context, limit int) ([]CorrectionRecord, error)
	CountByRule(ctx context.Context) (map[RuleID]int, error)
}
