package service

import (
	"math"
	"sort"

	"github.com/Harshitk-cp/medvalidate/internal/corpus"
	"github.com/Harshitk-cp/medvalidate/internal/domain"
	"github.com/Harshitk-cp/medvalidate/internal/vocab"
)

const (
	// ExactMatchThreshold is the minimum weighted Jaccard overlap for a
	// training record to count as an exact match.
	ExactMatchThreshold = 0.6
	// SeverityMismatchPenalty scales an exact match whose severity differs.
	SeverityMismatchPenalty = 0.8
	// NeutralSeverityConsistency is returned for diagnoses the corpus has
	// never seen.
	NeutralSeverityConsistency = 0.5

	ExactMatchLimit   = 3
	PairMatchLimit    = 3
	SymptomMatchLimit = 5
)

// Query is a normalized, deduplicated symptom list plus the reported
// severity.
type Query struct {
	Symptoms []string
	Severity domain.Severity
}

func NewQuery(symptoms []string, severity string) Query {
	seen := make(map[string]struct{}, len(symptoms))
	q := Query{Severity: domain.ParseSeverity(severity)}
	for _, s := range vocab.NormalizeAll(symptoms) {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		q.Symptoms = append(q.Symptoms, s)
	}
	return q
}

// EvidenceScorer runs the four evidence functions against a corpus index.
// It holds no mutable state.
type EvidenceScorer struct {
	index *corpus.Index
}

func NewEvidenceScorer(index *corpus.Index) *EvidenceScorer {
	return &EvidenceScorer{index: index}
}

// Evidence bundles the scorer outputs for one query and candidate.
type Evidence struct {
	Exact               []domain.EvidenceMatch
	Pairs               []domain.EvidenceMatch
	Symptoms            []domain.EvidenceMatch
	SeverityConsistency float64
}

func (s *EvidenceScorer) Collect(q Query, candidate string) Evidence {
	return Evidence{
		Exact:               s.ExactMatches(q),
		Pairs:               s.PairMatches(q),
		Symptoms:            s.SymptomMatches(q),
		SeverityConsistency: s.SeverityConsistency(candidate, q.Severity),
	}
}

// ExactMatches scores every training record sharing a symptom with the query
// by Jaccard overlap, penalized when severities differ. A diagnosis may
// appear more than once, one entry per matching record.
func (s *EvidenceScorer) ExactMatches(q Query) []domain.EvidenceMatch {
	if len(q.Symptoms) == 0 {
		return nil
	}
	query := make(map[string]struct{}, len(q.Symptoms))
	for _, sym := range q.Symptoms {
		query[sym] = struct{}{}
	}

	var matches []domain.EvidenceMatch
	for _, pos := range s.index.CandidateRecords(q.Symptoms) {
		rec, set := s.index.Record(pos)
		if len(set) == 0 {
			continue
		}
		shared := 0
		for _, sym := range set {
			if _, ok := query[sym]; ok {
				shared++
			}
		}
		union := len(query) + len(set) - shared
		weight := float64(shared) / float64(union)
		if rec.Severity != q.Severity {
			weight *= SeverityMismatchPenalty
		}
		if weight >= ExactMatchThreshold {
			matches = append(matches, domain.EvidenceMatch{Diagnosis: rec.Diagnosis, Weight: weight})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Weight > matches[j].Weight
	})
	if len(matches) > ExactMatchLimit {
		matches = matches[:ExactMatchLimit]
	}
	return matches
}

// PairMatches counts, per diagnosis, the query symptom pairs seen together in
// that diagnosis, normalized by the number of query symptoms. With four or
// more symptoms the pair count can exceed the symptom count, so weights are
// capped at 1.
func (s *EvidenceScorer) PairMatches(q Query) []domain.EvidenceMatch {
	n := len(q.Symptoms)
	if n < 2 {
		return nil
	}
	counts := make(map[string]float64)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			for _, d := range s.index.DiagnosesForPair(corpus.NewPair(q.Symptoms[i], q.Symptoms[j])) {
				counts[d]++
			}
		}
	}
	return rankMatches(counts, float64(n), PairMatchLimit)
}

// SymptomMatches counts, per diagnosis, the query symptoms it was ever
// observed with, normalized by the number of query symptoms.
func (s *EvidenceScorer) SymptomMatches(q Query) []domain.EvidenceMatch {
	n := len(q.Symptoms)
	if n == 0 {
		return nil
	}
	counts := make(map[string]float64)
	for _, sym := range q.Symptoms {
		for _, d := range s.index.DiagnosesForSymptom(sym) {
			counts[d]++
		}
	}
	return rankMatches(counts, float64(n), SymptomMatchLimit)
}

// SeverityConsistency is the share of the diagnosis's training records that
// carry the given severity. Unknown diagnoses score neutral.
func (s *EvidenceScorer) SeverityConsistency(diagnosis string, severity domain.Severity) float64 {
	observed, ok := s.index.Severities(diagnosis)
	if !ok || len(observed) == 0 {
		return NeutralSeverityConsistency
	}
	matching := 0
	for _, sev := range observed {
		if sev == severity {
			matching++
		}
	}
	return float64(matching) / float64(len(observed))
}

// rankMatches divides every count by norm and returns the top entries, ties
// broken by name so output is deterministic.
func rankMatches(counts map[string]float64, norm float64, limit int) []domain.EvidenceMatch {
	if len(counts) == 0 {
		return nil
	}
	out := make([]domain.EvidenceMatch, 0, len(counts))
	for d, c := range counts {
		out = append(out, domain.EvidenceMatch{Diagnosis: d, Weight: math.Min(1, c/norm)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].Diagnosis < out[j].Diagnosis
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
