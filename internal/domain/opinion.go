package domain

import "context"

type OpinionConfidence string

const (
	OpinionHigh    OpinionConfidence = "high"
	OpinionMedium  OpinionConfidence = "medium"
	OpinionLow     OpinionConfidence = "low"
	OpinionUnknown OpinionConfidence = "unknown"
)

func ValidOpinionConfidence(c string) bool {
	switch OpinionConfidence(c) {
	case OpinionHigh, OpinionMedium, OpinionLow, OpinionUnknown:
		return true
	}
	return false
}

// OpinionRequest carries what the secondary reviewer is asked to judge.
type OpinionRequest struct {
	Diagnosis string   `json:"diagnosis"`
	Symptoms  []string `json:"symptoms"`
	Duration  string   `json:"duration"`
	Severity  string   `json:"severity"`
}

// SecondaryOpinion is the reviewer's answer. A nil Match means no opinion.
type SecondaryOpinion struct {
	Match      *bool             `json:"match"`
	Suggested  *string           `json:"suggested"`
	Confidence OpinionConfidence `json:"confidence"`
	Reason     string            `json:"reason"`
}

// NoOpinion is the neutral answer used for failures and timeouts.
func NoOpinion() SecondaryOpinion {
	return SecondaryOpinion{Confidence: OpinionUnknown}
}

// Disagrees reports whether the opinion explicitly rejects the candidate and
// names an alternative.
func (o SecondaryOpinion) Disagrees() (string, bool) {
	if o.Match == nil || *o.Match {
		return "", false
	}
	if o.Suggested == nil || *o.Suggested == "" {
		return "", false
	}
	return *o.Suggested, true
}

// OpinionClient is an external reviewer, usually an LLM.
type OpinionClient interface {
	SecondOpinion(ctx context.Context, req OpinionRequest) (*SecondaryOpinion, error)
}
