package service

import (
	"context"
	"errors"
	"time"

	"github.com/Harshitk-cp/medvalidate/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrAuditDisabled = errors.New("correction audit is disabled")

// AuditService resolves predictions and persists every decision. Without a
// store it still resolves; only the audit trail is skipped.
type AuditService struct {
	validator *Validator
	store     domain.CorrectionStore
	logger    *zap.Logger
	now       func() time.Time
}

func NewAuditService(v *Validator, store domain.CorrectionStore, logger *zap.Logger) *AuditService {
	return &AuditService{
		validator: v,
		store:     store,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *AuditService) Enabled() bool {
	return s.store != nil
}

// Resolve runs the validator and records the outcome. A failed write is
// logged and does not affect the returned result.
func (s *AuditService) Resolve(ctx context.Context, p domain.Prediction, requestID string) domain.CorrectionResult {
	res := s.validator.Resolve(ctx, p)
	if s.store == nil {
		return res
	}

	rec := &domain.CorrectionRecord{
		RequestID:          requestID,
		PredictedDiagnosis: sanitizeDiagnosis(p.Diagnosis),
		FinalDiagnosis:     res.Diagnosis,
		FinalSeverity:      res.Severity,
		Symptoms:           NewQuery(p.Symptoms, "").Symptoms,
		Rule:               res.Rule,
		WasCorrected:       res.WasCorrected,
		Reason:             res.CorrectionReason,
		Confidence:         res.ValidationReport.Confidence,
		MatchType:          res.ValidationReport.MatchType,
		CreatedAt:          s.now(),
	}
	if err := s.store.Create(ctx, rec); err != nil {
		s.logger.Warn("failed to persist correction",
			zap.String("request_id", requestID),
			zap.String("rule", string(res.Rule)),
			zap.Error(err),
		)
	}
	return res
}

func (s *AuditService) Recent(ctx context.Context, limit int) ([]domain.CorrectionRecord, error) {
	if s.store == nil {
		return []domain.CorrectionRecord{}, nil
	}
	return s.store.ListRecent(ctx, limit)
}

func (s *AuditService) Get(ctx context.Context, id uuid.UUID) (*domain.CorrectionRecord, error) {
	if s.store == nil {
		return nil, ErrAuditDisabled
	}
	return s.store.GetByID(ctx, id)
}

// RuleCounts returns how often each rule decided a persisted outcome. Rules
// that never fired are reported with zero.
func (s *AuditService) RuleCounts(ctx context.Context) (map[domain.RuleID]int, error) {
	counts := make(map[domain.RuleID]int)
	for _, r := range domain.AllRules() {
		counts[r] = 0
	}
	if s.store == nil {
		return counts, nil
	}
	stored, err := s.store.CountByRule(ctx)
	if err != nil {
		return nil, err
	}
	for r, n := range stored {
		counts[r] = n
	}
	return counts, nil
}
