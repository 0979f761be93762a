package llm

import (
	"strings"
	"testing"

	"github.com/Harshitk-cp/medvalidate/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOpinion_Disagreement(t *testing.T) {
	op := ParseOpinion("MATCH: NO\nCONFIDENCE: High\nIF NO, SUGGEST: [Allergic Rhinitis]\nREASON: No fever and seasonal sneezing.")

	require.NotNil(t, op.Match)
	assert.False(t, *op.Match)
	require.NotNil(t, op.Suggested)
	assert.Equal(t, "Allergic Rhinitis", *op.Suggested)
	assert.Equal(t, domain.OpinionHigh, op.Confidence)
	assert.Equal(t, "No fever and seasonal sneezing.", op.Reason)

	suggested, ok := op.Disagrees()
	assert.True(t, ok)
	assert.Equal(t, "Allergic Rhinitis", suggested)
}

func TestParseOpinion_Agreement(t *testing.T) {
	op := ParseOpinion("match: yes\nconfidence: medium\nIF NO, SUGGEST: N/A\nreason: classic presentation")

	require.NotNil(t, op.Match)
	assert.True(t, *op.Match)
	assert.Nil(t, op.Suggested)
	assert.Equal(t, domain.OpinionMedium, op.Confidence)
	_, ok := op.Disagrees()
	assert.False(t, ok)
}

func TestParseOpinion_Unbracketed(t *testing.T) {
	op := ParseOpinion("```\nMATCH: NO\nSUGGEST: Gastroenteritis\n```")

	require.NotNil(t, op.Suggested)
	assert.Equal(t, "Gastroenteritis", *op.Suggested)
	assert.Equal(t, domain.OpinionUnknown, op.Confidence)
}

func TestParseOpinion_NoOpinion(t *testing.T) {
	for _, reply := range []string{"", "   ", "I cannot judge this case."} {
		op := ParseOpinion(reply)
		assert.Nil(t, op.Match, "reply %q", reply)
		assert.Nil(t, op.Suggested)
		assert.Equal(t, domain.OpinionUnknown, op.Confidence)
	}
}

func TestParseOpinion_UndecidedMatchIsNotDisagreement(t *testing.T) {
	for _, match := range []string{"UNKNOWN", "unsure", "YES/NO", "not sure", "n/a", ""} {
		t.Run(match, func(t *testing.T) {
			op := ParseOpinion("MATCH: " + match + "\nCONFIDENCE: unknown\nIF NO, SUGGEST: [Dengue]\nREASON: cannot tell")

			assert.Nil(t, op.Match)
			_, ok := op.Disagrees()
			assert.False(t, ok)
		})
	}
}

func TestParseOpinion_MatchVariants(t *testing.T) {
	tests := []struct {
		match string
		want  bool
	}{
		{"Yes.", true},
		{"**YES**", true},
		{"yes, consistent", true},
		{"No", false},
		{"NO - allergy fits better", false},
	}
	for _, tt := range tests {
		op := ParseOpinion("MATCH: " + tt.match)
		require.NotNil(t, op.Match, "match %q", tt.match)
		assert.Equal(t, tt.want, *op.Match, "match %q", tt.match)
	}
}

func TestParseOpinion_InvalidConfidence(t *testing.T) {
	op := ParseOpinion("MATCH: YES\nCONFIDENCE: very sure")
	assert.Equal(t, domain.OpinionUnknown, op.Confidence)
}

func TestParseOpinion_ReasonTruncated(t *testing.T) {
	op := ParseOpinion("MATCH: NO\nREASON: " + strings.Repeat("é", 500))
	assert.Equal(t, MaxReasonLength, len([]rune(op.Reason)))
}

func TestBuildOpinionPrompt(t *testing.T) {
	prompt := buildOpinionPrompt(domain.OpinionRequest{
		Diagnosis: "Influenza",
		Symptoms:  []string{"fever", "cough"},
		Severity:  "moderate",
	})
	assert.Contains(t, prompt, "- Symptoms: fever, cough")
	assert.Contains(t, prompt, "- Duration: unknown")
	assert.Contains(t, prompt, "The ML model predicted: Influenza")
	assert.Contains(t, prompt, "MATCH: YES/NO")

	assert.Contains(t, buildOpinionPrompt(domain.OpinionRequest{Diagnosis: "X"}), "- Symptoms: unknown")
}
