package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Harshitk-cp/medvalidate/internal/domain"
)

const (
	DefaultPatternThreshold    = 0.7
	DefaultWeakThreshold       = 0.5
	DefaultCorrectionThreshold = 0.6
	// DefaultEvidenceWeight and DefaultSeverityWeight blend the top symptom
	// score with severity consistency into the overall confidence.
	DefaultEvidenceWeight = 0.7
	DefaultSeverityWeight = 0.3
)

// Aggregator merges scorer output into a single verdict.
type Aggregator struct {
	PatternThreshold    float64
	WeakThreshold       float64
	CorrectionThreshold float64
	EvidenceWeight      float64
	SeverityWeight      float64
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		PatternThreshold:    DefaultPatternThreshold,
		WeakThreshold:       DefaultWeakThreshold,
		CorrectionThreshold: DefaultCorrectionThreshold,
		EvidenceWeight:      DefaultEvidenceWeight,
		SeverityWeight:      DefaultSeverityWeight,
	}
}

type rankedDiagnosis struct {
	diagnosis string
	score     float64
}

// merge concatenates the ranked lists and averages the scores each diagnosis
// received. Ties keep first-seen order.
func merge(lists ...[]domain.EvidenceMatch) []rankedDiagnosis {
	var order []string
	scores := make(map[string][]float64)
	for _, list := range lists {
		for _, m := range list {
			d := strings.TrimSpace(m.Diagnosis)
			if _, ok := scores[d]; !ok {
				order = append(order, d)
			}
			scores[d] = append(scores[d], m.Weight)
		}
	}

	ranked := make([]rankedDiagnosis, 0, len(order))
	for _, d := range order {
		var sum float64
		for _, s := range scores[d] {
			sum += s
		}
		ranked = append(ranked, rankedDiagnosis{diagnosis: d, score: sum / float64(len(scores[d]))})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	return ranked
}

func (a *Aggregator) Aggregate(ev Evidence, predicted string, q Query) domain.ValidationVerdict {
	ranked := merge(ev.Exact, ev.Pairs, ev.Symptoms)

	var (
		top     string
		topConf float64
	)
	expected := make([]string, 0, len(ranked))
	for _, r := range ranked {
		expected = append(expected, r.diagnosis)
	}
	if len(ranked) > 0 {
		top, topConf = ranked[0].diagnosis, ranked[0].score
	}

	predicted = strings.TrimSpace(predicted)
	isCorrect := top != "" && strings.EqualFold(predicted, top)

	var match domain.MatchType
	switch {
	case isCorrect:
		match = domain.MatchExact
	case top != "" && topConf >= a.PatternThreshold:
		match = domain.MatchPattern
	case top != "" && topConf >= a.WeakThreshold:
		match = domain.MatchWeak
	default:
		match = domain.MatchNone
	}

	v := domain.ValidationVerdict{
		IsCorrect:           isCorrect,
		Confidence:          a.EvidenceWeight*topConf + a.SeverityWeight*ev.SeverityConsistency,
		MatchType:           match,
		ExpectedDiagnoses:   expected,
		CorrectionNeeded:    !isCorrect && top != "" && topConf >= a.CorrectionThreshold,
		SymptomMatchQuality: topConf,
		SeverityConsistency: ev.SeverityConsistency,
	}
	if v.CorrectionNeeded {
		suggested := top
		v.SuggestedDiagnosis = &suggested
	}
	v.Reasoning = reasoning(v, predicted, top, q)
	return v
}

func reasoning(v domain.ValidationVerdict, predicted, expected string, q Query) string {
	symptoms := strings.Join(q.Symptoms, ", ")
	if symptoms == "" {
		symptoms = "no reported symptoms"
	}
	severity := string(q.Severity)
	if severity == "" {
		severity = "unspecified"
	}

	switch {
	case v.IsCorrect:
		return fmt.Sprintf("Prediction matches training patterns: %s with %s severity is consistent with %s.",
			symptoms, severity, predicted)
	case v.MatchType == domain.MatchPattern:
		return fmt.Sprintf("Pattern mismatch: %s with %s severity typically indicates %s (confidence %.1f%%), not %s.",
			symptoms, severity, expected, v.SymptomMatchQuality*100, predicted)
	case v.MatchType == domain.MatchWeak:
		return fmt.Sprintf("Weak pattern match: %s is possible, but the symptom pattern more commonly indicates %s. Consider reviewing.",
			predicted, expected)
	case expected == "":
		return fmt.Sprintf("No match: no training pattern covers %s, so %s cannot be confirmed. This requires verification.",
			symptoms, predicted)
	default:
		return fmt.Sprintf("No match: symptoms do not fit typical patterns for %s. Training data suggests %s may be more likely. This requires verification.",
			predicted, expected)
	}
}
