package domain

import (
	"strconv"
	"strings"
)

type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
	// SeverityCritical is reserved for the emergency override and never
	// appears in a training corpus.
	SeverityCritical Severity = "critical"
)

func ValidSeverity(s string) bool {
	switch Severity(s) {
	case SeverityMild, SeverityModerate, SeveritySevere:
		return true
	}
	return false
}

// ParseSeverity normalizes a free-form severity. Numeric pain scores are
// bucketed 1-3 mild, 4-6 moderate, 7-10 severe. Anything else is returned
// lowercased and trimmed so that unseen values still compare exactly.
func ParseSeverity(s string) Severity {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		switch {
		case n >= 7:
			return SeveritySevere
		case n >= 4:
			return SeverityModerate
		case n >= 1:
			return SeverityMild
		}
	}
	return Severity(s)
}

// Rank orders severities for floor comparisons. Unknown values rank lowest.
func (s Severity) Rank() int {
	switch s {
	case SeverityMild:
		return 1
	case SeverityModerate:
		return 2
	case SeveritySevere:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

func (s Severity) String() string { return string(s) }
