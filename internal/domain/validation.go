package domain

import (
	"time"

	"github.com/google/uuid"
)

// UnknownDiagnosis replaces an empty predicted diagnosis so that reports
// always have something to display.
const UnknownDiagnosis = "Unknown"

// EmergencyDiagnosis is the sentinel emitted by the life-threatening pattern
// override.
const EmergencyDiagnosis = "MENINGITIS_EMERGENCY"

type MatchType string

const (
	MatchExact   MatchType = "exact"
	MatchPattern MatchType = "pattern"
	MatchWeak    MatchType = "weak"
	MatchNone    MatchType = "none"
)

func ValidMatchType(t string) bool {
	switch MatchType(t) {
	case MatchExact, MatchPattern, MatchWeak, MatchNone:
		return true
	}
	return false
}

// EvidenceMatch is a single scorer hit.
type EvidenceMatch struct {
	Diagnosis string  `json:"diagnosis"`
	Weight    float64 `json:"weight"`
}

// ValidationVerdict is the aggregated statistical opinion about a predicted
// diagnosis. Values are never mutated after construction.
type ValidationVerdict struct {
	IsCorrect           bool      `json:"is_correct"`
	Confidence          float64   `json:"confidence"`
	MatchType           MatchType `json:"match_type"`
	ExpectedDiagnoses   []string  `json:"expected_diagnoses"`
	CorrectionNeeded    bool      `json:"correction_needed"`
	SuggestedDiagnosis  *string   `json:"suggested_diagnosis"`
	Reasoning           string    `json:"reasoning"`
	SymptomMatchQuality float64   `json:"symptom_match_quality"`
	SeverityConsistency float64   `json:"severity_consistency"`
}

// TopExpected returns the best-ranked expected diagnosis, or "" when the
// evidence produced no candidates.
func (v ValidationVerdict) TopExpected() string {
	if len(v.ExpectedDiagnoses) == 0 {
		return ""
	}
	return v.ExpectedDiagnoses[0]
}

// Suggestion returns the suggested diagnosis and whether one exists.
func (v ValidationVerdict) Suggestion() (string, bool) {
	if v.SuggestedDiagnosis == nil || *v.SuggestedDiagnosis == "" {
		return "", false
	}
	return *v.SuggestedDiagnosis, true
}

// RuleID names the safety-gate rule that decided a correction.
type RuleID string

const (
	RuleLifeThreatening    RuleID = "life_threatening_pattern"
	RulePrerequisite       RuleID = "prerequisite_violation"
	RuleSeverityFloor      RuleID = "severity_floor"
	RuleCategoryExclusion  RuleID = "category_exclusion"
	RuleLowConfidence      RuleID = "low_confidence_fallback"
	RuleSecondaryOpinion   RuleID = "secondary_opinion"
	RuleAggregatorFallback RuleID = "aggregator_correction"
	RuleNone               RuleID = "none"
)

// AllRules lists the gate rules in precedence order.
func AllRules() []RuleID {
	return []RuleID{
		RuleLifeThreatening,
		RulePrerequisite,
		RuleSeverityFloor,
		RuleCategoryExclusion,
		RuleLowConfidence,
		RuleSecondaryOpinion,
		RuleAggregatorFallback,
		RuleNone,
	}
}

// Prediction is the classifier output plus the patient-reported facts that
// the validator checks it against.
type Prediction struct {
	Diagnosis        string   `json:"diagnosis"`
	Severity         string   `json:"severity"`
	Symptoms         []string `json:"symptoms"`
	Duration         string   `json:"duration"`
	ReportedSeverity string   `json:"reported_severity"`
}

// CorrectionResult is the externally visible outcome of one resolve call.
type CorrectionResult struct {
	Diagnosis        string            `json:"disease"`
	Severity         string            `json:"severity"`
	WasCorrected     bool              `json:"was_corrected"`
	CorrectionReason string            `json:"correction_reason"`
	Rule             RuleID            `json:"rule"`
	ValidationReport ValidationVerdict `json:"validation_report"`
}

// CorrectionLogEntry is one element of the session corrections log.
type CorrectionLogEntry struct {
	Original  string   `json:"original"`
	Corrected string   `json:"corrected"`
	Symptoms  []string `json:"symptoms"`
	Severity  string   `json:"severity"`
}

// CorrectionRecord is a persisted audit row for a resolved prediction.
type CorrectionRecord struct {
	ID                 uuid.UUID `json:"id"`
	RequestID          string    `json:"request_id,omitempty"`
	PredictedDiagnosis string    `json:"predicted_diagnosis"`
	FinalDiagnosis     string    `json:"final_diagnosis"`
	FinalSeverity      string    `json:"final_severity"`
	Symptoms           []string  `json:"symptoms"`
	Rule               RuleID    `json:"rule"`
	WasCorrected       bool      `json:"was_corrected"`
	Reason             string    `json:"reason"`
	Confidence         float64   `json:"confidence"`
	MatchType          MatchType `json:"match_type"`
	CreatedAt          time.Time `json:"created_at"`
}
