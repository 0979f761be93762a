package llm

import (
	"fmt"
	"strings"

	"github.com/Harshitk-cp/medvalidate/internal/domain"
)

const opinionSystemPrompt = "You are a medical diagnosis validator. Check if diagnoses match reported symptoms."

const opinionPrompt = `A patient reported these symptoms:
- Symptoms: %s
- Duration: %s
- Severity: %s

The ML model predicted: %s

Question: Does this diagnosis match the reported symptoms?
Reply in this format:
MATCH: YES/NO
CONFIDENCE: high/medium/low
IF NO, SUGGEST: [alternative diagnosis]
REASON: [brief explanation]
`

func buildOpinionPrompt(req domain.OpinionRequest) string {
	symptoms := "unknown"
	if len(req.Symptoms) > 0 {
		symptoms = strings.Join(req.Symptoms, ", ")
	}
	duration := req.Duration
	if duration == "" {
		duration = "unknown"
	}
	severity := req.Severity
	if severity == "" {
		severity = "unknown"
	}
	return fmt.Sprintf(opinionPrompt, symptoms, duration, severity, req.Diagnosis)
}
