package llm

import (
	"slices"
	"strings"
	"unicode"

	"github.com/Harshitk-cp/medvalidate/internal/domain"
)

// MaxReasonLength caps the reviewer's explanation, in characters.
const MaxReasonLength = 200

// ParseOpinion reads a MATCH/CONFIDENCE/SUGGEST/REASON reply. Keys are
// matched case-insensitively and missing keys leave the neutral value, so an
// empty or free-form reply yields no opinion.
func ParseOpinion(reply string) *domain.SecondaryOpinion {
	op := domain.NoOpinion()
	reply = stripFences(reply)
	if reply == "" {
		return &op
	}

	if v, ok := replyField(reply, "match:"); ok {
		op.Match = parseMatch(v)
	}
	if v, ok := replyField(reply, "suggest:"); ok {
		if s := cleanSuggestion(v); s != "" {
			op.Suggested = &s
		}
	}
	if v, ok := replyField(reply, "confidence:"); ok {
		c := strings.ToLower(strings.TrimSpace(v))
		if domain.ValidOpinionConfidence(c) {
			op.Confidence = domain.OpinionConfidence(c)
		}
	}
	if i := strings.Index(strings.ToLower(reply), "reason:"); i >= 0 {
		op.Reason = truncate(strings.TrimSpace(reply[i+len("reason:"):]), MaxReasonLength)
	}
	return &op
}

// parseMatch accepts a MATCH value that opens with yes or no and does not
// also contain the other answer. Anything else, including an echoed
// "YES/NO", is no answer.
func parseMatch(v string) *bool {
	words := strings.FieldsFunc(strings.ToLower(v), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	hasYes, hasNo := slices.Contains(words, "yes"), slices.Contains(words, "no")
	if hasYes == hasNo || (words[0] != "yes" && words[0] != "no") {
		return nil
	}
	answer := words[0] == "yes"
	return &answer
}

// replyField returns the rest of the line following the first occurrence of
// key.
func replyField(reply, key string) (string, bool) {
	i := strings.Index(strings.ToLower(reply), key)
	if i < 0 {
		return "", false
	}
	rest := reply[i+len(key):]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[:nl]
	}
	return strings.TrimSpace(rest), true
}

func cleanSuggestion(v string) string {
	if open := strings.IndexByte(v, '['); open >= 0 {
		v = v[open+1:]
		if end := strings.IndexByte(v, ']'); end >= 0 {
			v = v[:end]
		}
	}
	v = strings.Trim(strings.TrimSpace(v), ".*")
	switch strings.ToLower(v) {
	case "", "none", "n/a", "na", "-":
		return ""
	}
	return v
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```text")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
