package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Harshitk-cp/medvalidate/internal/domain"
	"github.com/Harshitk-cp/medvalidate/internal/vocab"
	"go.uber.org/zap"
)

// DefaultLowConfidenceThreshold is the confidence below which a weak
// aggregator verdict yields to the aggregator's own suggestion.
const DefaultLowConfidenceThreshold = 0.5

const (
	diagnosisInfluenza        = "Influenza"
	diagnosisViralFever       = "Viral Fever"
	diagnosisCommonCold       = "Common Cold"
	diagnosisPharyngitis      = "Pharyngitis"
	diagnosisAllergicRhinitis = "Allergic Rhinitis"
	diagnosisGastroenteritis  = "Gastroenteritis"
	diagnosisMigraine         = "Migraine"
	diagnosisAnxiety          = "Anxiety"
)

// GateInput is everything the safety rules may inspect. Rules never query the
// corpus index.
type GateInput struct {
	Diagnosis        string
	Severity         domain.Severity
	ReportedSeverity domain.Severity
	Symptoms         vocab.Set
	Duration         string
	Verdict          domain.ValidationVerdict
	// Opinion is called at most once, and only when no earlier rule fired.
	Opinion func(ctx context.Context) domain.SecondaryOpinion
}

// Decision is the gate's ruling for one prediction.
type Decision struct {
	Diagnosis string
	Severity  domain.Severity
	Corrected bool
	Rule      domain.RuleID
	Reason    string
}

type gateRule struct {
	id    domain.RuleID
	apply func(ctx context.Context, in GateInput) (Decision, bool)
}

// SafetyGate applies the hard rules in fixed precedence order. The first
// rule that fires decides.
type SafetyGate struct {
	LowConfidenceThreshold float64
	logger                 *zap.Logger
}

func NewSafetyGate(logger *zap.Logger) *SafetyGate {
	return &SafetyGate{
		LowConfidenceThreshold: DefaultLowConfidenceThreshold,
		logger:                 logger,
	}
}

func (g *SafetyGate) rules() []gateRule {
	return []gateRule{
		{domain.RuleLifeThreatening, g.lifeThreatening},
		{domain.RulePrerequisite, g.prerequisiteViolation},
		{domain.RuleSeverityFloor, g.severityFloor},
		{domain.RuleCategoryExclusion, g.categoryExclusion},
		{domain.RuleLowConfidence, g.lowConfidence},
		{domain.RuleSecondaryOpinion, g.secondaryOpinion},
		{domain.RuleAggregatorFallback, g.aggregatorCorrection},
	}
}

func (g *SafetyGate) Decide(ctx context.Context, in GateInput) Decision {
	for _, r := range g.rules() {
		d, ok := r.apply(ctx, in)
		if !ok {
			continue
		}
		d.Rule = r.id
		g.logger.Info("safety rule fired",
			zap.String("rule", string(r.id)),
			zap.String("original", in.Diagnosis),
			zap.String("final", d.Diagnosis),
			zap.String("severity", string(d.Severity)),
			zap.String("reason", d.Reason),
		)
		return d
	}
	return Decision{
		Diagnosis: in.Diagnosis,
		Severity:  in.Severity,
		Rule:      domain.RuleNone,
		Reason:    "Prediction validated successfully against training data",
	}
}

func corrected(in GateInput, diagnosis, reason string) Decision {
	return Decision{Diagnosis: diagnosis, Severity: in.Severity, Corrected: true, Reason: reason}
}

// HasMeningitisPattern reports the fever, severe headache and neck stiffness
// or light sensitivity triad. A plain headache counts as severe when the
// reported severity is severe.
func HasMeningitisPattern(s vocab.Set, reported domain.Severity) bool {
	severeHeadache := s.Has(vocab.SevereHeadache) ||
		(s.Has(vocab.Headache) && reported == domain.SeveritySevere)
	return s.Has(vocab.Fever) && severeHeadache && s.HasAny(vocab.NeckStiffness, vocab.LightSensitivity)
}

func (g *SafetyGate) lifeThreatening(_ context.Context, in GateInput) (Decision, bool) {
	if !HasMeningitisPattern(in.Symptoms, in.ReportedSeverity) {
		return Decision{}, false
	}
	return Decision{
		Diagnosis: domain.EmergencyDiagnosis,
		Severity:  domain.SeverityCritical,
		Corrected: true,
		Reason: "CRITICAL: meningitis pattern detected (fever + severe headache + neck stiffness or light sensitivity). " +
			"This is a medical emergency.",
	}, true
}

// prerequisite is a symptom requirement a diagnosis cannot exist without.
type prerequisite struct {
	// violation returns a description of the unmet requirement, or "".
	violation func(in GateInput) string
	fallback  func(in GateInput) string
}

var prerequisites = map[string]prerequisite{
	"appendicitis": {
		violation: func(in GateInput) string {
			if in.Symptoms.HasAny(vocab.AbdominalPain, vocab.Pain) {
				return ""
			}
			return "requires abdominal pain"
		},
		fallback: func(in GateInput) string {
			if in.Symptoms.FirstIs(vocab.Fever) {
				if in.Symptoms.Len() > 1 {
					return diagnosisInfluenza
				}
				return diagnosisViralFever
			}
			return priorityFallback(in.Symptoms, "appendicitis", diagnosisInfluenza)
		},
	},
	"dengue": {
		violation: dengueViolation,
		fallback:  func(GateInput) string { return diagnosisViralFever },
	},
	"viral fever": {
		violation: func(in GateInput) string {
			if in.Symptoms.Has(vocab.Fever) {
				return ""
			}
			return "requires fever"
		},
		fallback: func(in GateInput) string {
			return priorityFallback(in.Symptoms, "viral fever", diagnosisAllergicRhinitis)
		},
	},
}

func dengueViolation(in GateInput) string {
	s := in.Symptoms
	duration := strings.ToLower(in.Duration)
	switch {
	case s.Len() < 2:
		return "requires fever with severe body aches, but fewer than two symptoms were reported"
	case s.Has(vocab.Headache) && !s.HasAny(vocab.BodyAches, vocab.JointPain, vocab.Pain):
		return "requires severe body aches, but only headache was reported"
	case strings.Contains(duration, "hour") || strings.Contains(duration, "less than"):
		return fmt.Sprintf("requires symptoms for 12+ hours, but duration is %q", in.Duration)
	case in.ReportedSeverity == domain.SeverityMild && s.HasWord("slight", "little", "bit"):
		return "requires severe pain, but the patient described slight pain with mild severity"
	}
	return ""
}

// checkPrerequisite returns the unmet requirement of diagnosis, if any.
func checkPrerequisite(diagnosis string, in GateInput) (prerequisite, string) {
	p, ok := prerequisites[strings.ToLower(strings.TrimSpace(diagnosis))]
	if !ok {
		return prerequisite{}, ""
	}
	return p, p.violation(in)
}

func (g *SafetyGate) prerequisiteViolation(_ context.Context, in GateInput) (Decision, bool) {
	p, violation := checkPrerequisite(in.Diagnosis, in)
	if violation == "" {
		return Decision{}, false
	}
	fallback := p.fallback(in)
	return corrected(in, fallback, fmt.Sprintf(
		"Prerequisite violation: %s %s; reported symptoms are [%s]. Corrected to %s.",
		in.Diagnosis, violation, strings.Join(in.Symptoms.Tokens(), ", "), fallback,
	)), true
}

// symptomPriority picks a replacement diagnosis from the remaining symptoms.
// Earlier entries win.
var symptomPriority = []struct {
	symptoms  []string
	diagnosis string
}{
	{[]string{vocab.Fever}, diagnosisViralFever},
	{[]string{vocab.Cough, vocab.Phlegm}, diagnosisCommonCold},
	{[]string{vocab.SoreThroat}, diagnosisPharyngitis},
	{[]string{vocab.RunnyNose, vocab.Sneezing, vocab.Congestion}, diagnosisAllergicRhinitis},
	{[]string{vocab.Diarrhea, vocab.Vomiting, vocab.Nausea}, diagnosisGastroenteritis},
	{[]string{vocab.Headache}, diagnosisMigraine},
}

func priorityFallback(s vocab.Set, exclude, def string) string {
	for _, p := range symptomPriority {
		if s.HasAny(p.symptoms...) && !strings.EqualFold(p.diagnosis, exclude) {
			return p.diagnosis
		}
	}
	return def
}

type severityFloor struct {
	minimum     domain.Severity
	requirement string
	applies     func(s vocab.Set) bool
}

var severityFloors = map[string]severityFloor{
	"pneumonia": {
		minimum:     domain.SeverityModerate,
		requirement: "cough with fever or phlegm",
		applies: func(s vocab.Set) bool {
			return s.Has(vocab.Cough) && s.HasAny(vocab.Fever, vocab.Phlegm)
		},
	},
}

func (g *SafetyGate) severityFloor(_ context.Context, in GateInput) (Decision, bool) {
	f, ok := severityFloors[strings.ToLower(in.Diagnosis)]
	if !ok || !f.applies(in.Symptoms) || in.Severity.Rank() >= f.minimum.Rank() {
		return Decision{}, false
	}
	return Decision{
		Diagnosis: in.Diagnosis,
		Severity:  f.minimum,
		Corrected: true,
		Reason: fmt.Sprintf("Severity floor: %s with %s is never %s. Severity raised to %s.",
			in.Diagnosis, f.requirement, in.Severity, f.minimum),
	}, true
}

var diagnosisCategories = map[string]vocab.Category{
	"anxiety":        vocab.CategoryPsychiatric,
	"anxiety attack": vocab.CategoryPsychiatric,
	"panic attack":   vocab.CategoryPsychiatric,
	"panic disorder": vocab.CategoryPsychiatric,
}

var categoryOrder = []vocab.Category{
	vocab.CategoryRespiratory,
	vocab.CategoryGastrointestinal,
	vocab.CategoryPsychiatric,
}

func categoryFallback(c vocab.Category, s vocab.Set) string {
	switch c {
	case vocab.CategoryRespiratory:
		if !s.Has(vocab.Cough) && s.Has(vocab.SoreThroat) {
			return diagnosisPharyngitis
		}
		return diagnosisCommonCold
	case vocab.CategoryGastrointestinal:
		return diagnosisGastroenteritis
	default:
		return diagnosisAnxiety
	}
}

func (g *SafetyGate) categoryExclusion(_ context.Context, in GateInput) (Decision, bool) {
	own, ok := diagnosisCategories[strings.ToLower(in.Diagnosis)]
	if !ok || in.Symptoms.HasCategory(own) {
		return Decision{}, false
	}
	for _, c := range categoryOrder {
		if c == own || !in.Symptoms.HasCategory(c) {
			continue
		}
		fallback := categoryFallback(c, in.Symptoms)
		return corrected(in, fallback, fmt.Sprintf(
			"Category exclusion: %s requires %s symptoms, but [%s] are %s only. Corrected to %s.",
			in.Diagnosis, own, strings.Join(in.Symptoms.Tokens(), ", "), c, fallback,
		)), true
	}
	return Decision{}, false
}

func (g *SafetyGate) lowConfidence(_ context.Context, in GateInput) (Decision, bool) {
	v := in.Verdict
	suggestion, ok := v.Suggestion()
	if !ok || v.MatchType != domain.MatchWeak || v.Confidence >= g.LowConfidenceThreshold {
		return Decision{}, false
	}
	return corrected(in, suggestion, fmt.Sprintf(
		"Low confidence: %s has only %.0f%% confidence with a weak pattern match; training data indicates %s.",
		in.Diagnosis, v.Confidence*100, suggestion,
	)), true
}

func (g *SafetyGate) secondaryOpinion(ctx context.Context, in GateInput) (Decision, bool) {
	if in.Opinion == nil {
		return Decision{}, false
	}
	op := in.Opinion(ctx)
	alt, ok := op.Disagrees()
	if !ok || strings.EqualFold(alt, in.Diagnosis) {
		return Decision{}, false
	}
	reason := op.Reason
	if reason == "" {
		reason = "symptoms suggest otherwise"
	}
	return corrected(in, alt, fmt.Sprintf(
		"Secondary opinion (%s confidence) rejected %s: %s. Corrected to %s.",
		op.Confidence, in.Diagnosis, reason, alt,
	)), true
}

func (g *SafetyGate) aggregatorCorrection(_ context.Context, in GateInput) (Decision, bool) {
	suggestion, ok := in.Verdict.Suggestion()
	if !in.Verdict.CorrectionNeeded || !ok {
		return Decision{}, false
	}
	if _, violation := checkPrerequisite(suggestion, in); violation != "" {
		g.logger.Debug("aggregator suggestion rejected",
			zap.String("suggestion", suggestion),
			zap.String("violation", violation),
		)
		return Decision{}, false
	}
	return corrected(in, suggestion, fmt.Sprintf(
		"Pattern correction: %s did not match training symptom patterns (top match %.0f%%); training data suggests %s.",
		in.Diagnosis, in.Verdict.SymptomMatchQuality*100, suggestion,
	)), true
}
