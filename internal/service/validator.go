package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Harshitk-cp/medvalidate/internal/corpus"
	"github.com/Harshitk-cp/medvalidate/internal/domain"
	"github.com/Harshitk-cp/medvalidate/internal/vocab"
	"go.uber.org/zap"
)

// Validator checks classifier predictions against corpus evidence and the
// safety rules. The index is shared read-only; session statistics are the
// only mutable state and are guarded by mu.
type Validator struct {
	index      *corpus.Index
	scorer     *EvidenceScorer
	aggregator *Aggregator
	gate       *SafetyGate
	opinions   *OpinionGuard
	observer   Observer
	datasets   map[domain.DatasetKind]int
	logger     *zap.Logger

	mu    sync.Mutex
	stats sessionStats
}

type sessionStats struct {
	total       int
	correct     int
	incorrect   int
	corrections []domain.CorrectionLogEntry
	confidences []float64
}

func NewValidator(index *corpus.Index, logger *zap.Logger) *Validator {
	if index == nil {
		index = corpus.Build(nil)
	}
	return &Validator{
		index:      index,
		scorer:     NewEvidenceScorer(index),
		aggregator: NewAggregator(),
		gate:       NewSafetyGate(logger),
		observer:   nopObserver{},
		datasets:   map[domain.DatasetKind]int{domain.DatasetTraining: index.Len()},
		logger:     logger,
	}
}

// SetOpinionClient enables the secondary-opinion rule. A nil client
// disables it.
func (v *Validator) SetOpinionClient(client domain.OpinionClient, timeout time.Duration) {
	if client == nil {
		v.opinions = nil
		return
	}
	v.opinions = NewOpinionGuard(client, timeout, v.logger)
	v.opinions.SetObserver(v.observer)
}

func (v *Validator) SetObserver(o Observer) {
	v.observer = o
	if v.opinions != nil {
		v.opinions.SetObserver(o)
	}
}

// SetDatasetCounts records the size of the validation and test corpora for
// reporting. The training count always reflects the index.
func (v *Validator) SetDatasetCounts(counts map[domain.DatasetKind]int) {
	v.datasets = map[domain.DatasetKind]int{domain.DatasetTraining: v.index.Len()}
	for k, n := range counts {
		if k != domain.DatasetTraining {
			v.datasets[k] = n
		}
	}
}

func (v *Validator) Index() *corpus.Index { return v.index }

// Validate scores a prediction and records it in the session statistics. A
// prediction counts as incorrect when the aggregator proposes a correction.
func (v *Validator) Validate(p domain.Prediction) domain.ValidationVerdict {
	diagnosis := sanitizeDiagnosis(p.Diagnosis)
	q := NewQuery(p.Symptoms, querySeverity(p))
	verdict := v.verdict(q, diagnosis)

	var entry *domain.CorrectionLogEntry
	if suggestion, ok := verdict.Suggestion(); verdict.CorrectionNeeded && ok {
		entry = &domain.CorrectionLogEntry{
			Original:  diagnosis,
			Corrected: suggestion,
			Symptoms:  q.Symptoms,
			Severity:  string(q.Severity),
		}
	}
	v.record(verdict.CorrectionNeeded, entry, verdict.Confidence)
	return verdict
}

// Resolve runs scorers, aggregator and safety gate in that order and returns
// the final decision. It never fails; a missing corpus or an unavailable
// secondary opinion degrade to weaker evidence.
func (v *Validator) Resolve(ctx context.Context, p domain.Prediction) domain.CorrectionResult {
	diagnosis := sanitizeDiagnosis(p.Diagnosis)
	q := NewQuery(p.Symptoms, querySeverity(p))
	verdict := v.verdict(q, diagnosis)

	in := GateInput{
		Diagnosis:        diagnosis,
		Severity:         resultSeverity(p),
		ReportedSeverity: q.Severity,
		Symptoms:         vocab.NewSet(p.Symptoms),
		Duration:         strings.TrimSpace(p.Duration),
		Verdict:          verdict,
	}
	if v.opinions != nil {
		req := domain.OpinionRequest{
			Diagnosis: diagnosis,
			Symptoms:  q.Symptoms,
			Duration:  in.Duration,
			Severity:  string(q.Severity),
		}
		in.Opinion = func(ctx context.Context) domain.SecondaryOpinion {
			return v.opinions.Ask(ctx, req)
		}
	}
	decision := v.gate.Decide(ctx, in)

	var entry *domain.CorrectionLogEntry
	if decision.Corrected {
		entry = &domain.CorrectionLogEntry{
			Original:  diagnosis,
			Corrected: decision.Diagnosis,
			Symptoms:  q.Symptoms,
			Severity:  string(q.Severity),
		}
	}
	v.record(decision.Corrected, entry, verdict.Confidence)
	v.observer.ObserveDecision(decision.Rule, decision.Corrected)

	return domain.CorrectionResult{
		Diagnosis:        decision.Diagnosis,
		Severity:         string(decision.Severity),
		WasCorrected:     decision.Corrected,
		CorrectionReason: decision.Reason,
		Rule:             decision.Rule,
		ValidationReport: verdict,
	}
}

func (v *Validator) verdict(q Query, diagnosis string) domain.ValidationVerdict {
	ev := v.scorer.Collect(q, diagnosis)
	verdict := v.aggregator.Aggregate(ev, diagnosis, q)
	v.logger.Debug("aggregated verdict",
		zap.String("diagnosis", diagnosis),
		zap.String("match_type", string(verdict.MatchType)),
		zap.Float64("confidence", verdict.Confidence),
		zap.Strings("expected", verdict.ExpectedDiagnoses),
	)
	v.observer.ObserveValidation(verdict.MatchType, verdict.Confidence)
	return verdict
}

// record applies one call to the session statistics. The increments and
// appends happen under a single lock so concurrent callers never interleave.
func (v *Validator) record(incorrect bool, entry *domain.CorrectionLogEntry, confidence float64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.stats.total++
	if incorrect {
		v.stats.incorrect++
	} else {
		v.stats.correct++
	}
	if entry != nil {
		v.stats.corrections = append(v.stats.corrections, *entry)
	}
	v.stats.confidences = append(v.stats.confidences, confidence)
}

func sanitizeDiagnosis(d string) string {
	d = strings.TrimSpace(d)
	if d == "" {
		return domain.UnknownDiagnosis
	}
	return d
}

// querySeverity is the patient-reported severity, falling back to the
// classifier's when the patient gave none.
func querySeverity(p domain.Prediction) string {
	if strings.TrimSpace(p.ReportedSeverity) != "" {
		return p.ReportedSeverity
	}
	return p.Severity
}

// resultSeverity is the classifier's severity, else the reported one, else
// mild.
func resultSeverity(p domain.Prediction) domain.Severity {
	if s := domain.ParseSeverity(p.Severity); s != "" {
		return s
	}
	if s := domain.ParseSeverity(p.ReportedSeverity); s != "" {
		return s
	}
	return domain.SeverityMild
}
