package service

import "github.com/Harshitk-cp/medvalidate/internal/domain"

// Observer receives validation events, typically to export them as metrics.
type Observer interface {
	ObserveValidation(match domain.MatchType, confidence float64)
	ObserveDecision(rule domain.RuleID, corrected bool)
	ObserveOpinion(outcome string)
}

type nopObserver struct{}

func (nopObserver) ObserveValidation(domain.MatchType, float64) {}
func (nopObserver) ObserveDecision(domain.RuleID, bool)         {}
func (nopObserver) ObserveOpinion(string)                       {}
