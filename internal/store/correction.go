package store

import (
	"context"
	"errors"

	"github.com/Harshitk-cp/medvalidate/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")

// DefaultListLimit applies when ListRecent is called without a positive limit.
const DefaultListLimit = 50

const correctionSchema = `
CREATE TABLE IF NOT EXISTS correction_audit (
	id                  UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	request_id          TEXT NOT NULL DEFAULT '',
	predicted_diagnosis TEXT NOT NULL,
	final_diagnosis     TEXT NOT NULL,
	final_severity      TEXT NOT NULL,
	symptoms            TEXT[] NOT NULL DEFAULT '{}',
	rule                TEXT NOT NULL,
	was_corrected       BOOLEAN NOT NULL,
	reason              TEXT NOT NULL DEFAULT '',
	confidence          DOUBLE PRECISION NOT NULL,
	match_type          TEXT NOT NULL,
	created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS correction_audit_created_at_idx ON correction_audit (created_at DESC);`

type CorrectionStore struct {
	db *pgxpool.Pool
}

func NewCorrectionStore(db *pgxpool.Pool) *CorrectionStore {
	return &CorrectionStore{db: db}
}

// EnsureSchema creates the audit table when it does not exist yet.
func (s *CorrectionStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, correctionSchema)
	return err
}

func (s *CorrectionStore) Create(ctx context.Context, r *domain.CorrectionRecord) error {
	symptoms := r.Symptoms
	if symptoms == nil {
		symptoms = []string{}
	}
	return s.db.QueryRow(ctx,
		`INSERT INTO correction_audit (request_id, predicted_diagnosis, final_diagnosis, final_severity, symptoms, rule, was_corrected, reason, confidence, match_type)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at`,
		r.RequestID, r.PredictedDiagnosis, r.FinalDiagnosis, r.FinalSeverity, symptoms, string(r.Rule), r.WasCorrected, r.Reason, r.Confidence, string(r.MatchType),
	).Scan(&r.ID, &r.CreatedAt)
}

func (s *CorrectionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.CorrectionRecord, error) {
	row := s.db.QueryRow(ctx,
		`SELECT id, request_id, predicted_diagnosis, final_diagnosis, final_severity, symptoms, rule, was_corrected, reason, confidence, match_type, created_at
		 FROM correction_audit WHERE id = $1`,
		id,
	)
	r, err := scanCorrection(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

func (s *CorrectionStore) ListRecent(ctx context.Context, limit int) ([]domain.CorrectionRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.Query(ctx,
		`SELECT id, request_id, predicted_diagnosis, final_diagnosis, final_severity, symptoms, rule, was_corrected, reason, confidence, match_type, created_at
		 FROM correction_audit
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []domain.CorrectionRecord{}
	for rows.Next() {
		r, err := scanCorrection(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *CorrectionStore) CountByRule(ctx context.Context) (map[domain.RuleID]int, error) {
	rows, err := s.db.Query(ctx,
		`SELECT rule, COUNT(*) FROM correction_audit GROUP BY rule`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.RuleID]int)
	for rows.Next() {
		var rule string
		var n int
		if err := rows.Scan(&rule, &n); err != nil {
			return nil, err
		}
		counts[domain.RuleID(rule)] = n
	}
	return counts, rows.Err()
}

func scanCorrection(row pgx.Row) (domain.CorrectionRecord, error) {
	var r domain.CorrectionRecord
	var rule, matchType string
	err := row.Scan(&r.ID, &r.RequestID, &r.PredictedDiagnosis, &r.FinalDiagnosis, &r.FinalSeverity, &r.Symptoms, &rule, &r.WasCorrected, &r.Reason, &r.Confidence, &matchType, &r.CreatedAt)
	r.Rule = domain.RuleID(rule)
	r.MatchType = domain.MatchType(matchType)
	return r, err
}
