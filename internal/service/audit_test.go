package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Harshitk-cp/medvalidate/internal/domain"
	"github.com/Harshitk-cp/medvalidate/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockCorrectionStore struct {
	mu        sync.Mutex
	records   []domain.CorrectionRecord
	createErr error
}

func newMockCorrectionStore() *mockCorrectionStore {
	return &mockCorrectionStore{}
}

func (m *mockCorrectionStore) Create(ctx context.Context, r *domain.CorrectionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	r.ID = uuid.New()
	m.records = append(m.records, *r)
	return nil
}

func (m *mockCorrectionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.CorrectionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.records {
		if m.records[i].ID == id {
			r := m.records[i]
			return &r, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockCorrectionStore) ListRecent(ctx context.Context, limit int) ([]domain.CorrectionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.CorrectionRecord{}
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}

func (m *mockCorrectionStore) CountByRule(ctx context.Context) (map[domain.RuleID]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[domain.RuleID]int)
	for _, r := range m.records {
		counts[r.Rule]++
	}
	return counts, nil
}

func TestAuditService_PersistsDecision(t *testing.T) {
	st := newMockCorrectionStore()
	svc := NewAuditService(fluAndColdValidator(), st, zap.NewNop())
	ctx := context.Background()

	res := svc.Resolve(ctx, domain.Prediction{
		Diagnosis: "Common Cold",
		Severity:  "moderate",
		Symptoms:  []string{"Fever", "cough", "body aches"},
	}, "req-1")
	require.True(t, res.WasCorrected)

	recent, err := svc.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	rec := recent[0]
	assert.Equal(t, "req-1", rec.RequestID)
	assert.Equal(t, "Common Cold", rec.PredictedDiagnosis)
	assert.Equal(t, "Influenza", rec.FinalDiagnosis)
	assert.Equal(t, domain.RuleAggregatorFallback, rec.Rule)
	assert.Equal(t, []string{"fever", "cough", "body aches"}, rec.Symptoms)
	assert.Equal(t, res.ValidationReport.Confidence, rec.Confidence)
	assert.False(t, rec.CreatedAt.IsZero())

	got, err := svc.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)

	_, err = svc.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)

	counts, err := svc.RuleCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[domain.RuleAggregatorFallback])
	assert.Equal(t, 0, counts[domain.RuleLifeThreatening])
	assert.Len(t, counts, len(domain.AllRules()))
}

func TestAuditService_StoreFailureDoesNotFailResolve(t *testing.T) {
	st := newMockCorrectionStore()
	st.createErr = errors.New("connection refused")
	v := fluAndColdValidator()
	svc := NewAuditService(v, st, zap.NewNop())

	res := svc.Resolve(context.Background(), domain.Prediction{Diagnosis: "Influenza", Symptoms: []string{"fever", "cough", "body aches"}}, "")
	assert.Equal(t, "Influenza", res.Diagnosis)
	assert.Equal(t, 1, v.Report(0).Summary.TotalPredictions)
}

func TestAuditService_Disabled(t *testing.T) {
	svc := NewAuditService(fluAndColdValidator(), nil, zap.NewNop())
	ctx := context.Background()
	assert.False(t, svc.Enabled())

	svc.Resolve(ctx, domain.Prediction{Diagnosis: "Influenza"}, "req")

	recent, err := svc.Recent(ctx, 5)
	require.NoError(t, err)
	assert.NotNil(t, recent)
	assert.Empty(t, recent)

	_, err = svc.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrAuditDisabled)

	counts, err := svc.RuleCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, counts[domain.RuleNone])
}
