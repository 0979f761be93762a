package vocab

import "strings"

type Category string

const (
	CategoryRespiratory      Category = "respiratory"
	CategoryPsychiatric      Category = "psychiatric"
	CategoryGastrointestinal Category = "gastrointestinal"
)

var categories = map[string]Category{
	Cough:         CategoryRespiratory,
	RunnyNose:     CategoryRespiratory,
	SoreThroat:    CategoryRespiratory,
	Cold:          CategoryRespiratory,
	Sneezing:      CategoryRespiratory,
	Congestion:    CategoryRespiratory,
	Phlegm:        CategoryRespiratory,
	Anxiety:       CategoryPsychiatric,
	Panic:         CategoryPsychiatric,
	Nervousness:   CategoryPsychiatric,
	Restlessness:  CategoryPsychiatric,
	Worry:         CategoryPsychiatric,
	Stress:        CategoryPsychiatric,
	Diarrhea:      CategoryGastrointestinal,
	Vomiting:      CategoryGastrointestinal,
	Nausea:        CategoryGastrointestinal,
	AbdominalPain: CategoryGastrointestinal,
}

// Set is an immutable symptom set built from patient-reported tokens. It
// contains every normalized token plus the canonical names each one implies.
type Set struct {
	tokens []string
	names  map[string]struct{}
	words  map[string]struct{}
}

func NewSet(symptoms []string) Set {
	s := Set{
		names: make(map[string]struct{}),
		words: make(map[string]struct{}),
	}
	seen := make(map[string]bool, len(symptoms))
	for _, raw := range symptoms {
		token := Normalize(raw)
		if token == "" || seen[token] {
			continue
		}
		seen[token] = true
		s.tokens = append(s.tokens, token)
		for _, name := range Canonical(token) {
			s.names[name] = struct{}{}
		}
		for _, w := range strings.Fields(token) {
			s.words[w] = struct{}{}
		}
	}
	return s
}

// Len is the number of distinct reported tokens, not counting implied names.
func (s Set) Len() int { return len(s.tokens) }

// Tokens returns the distinct normalized tokens in report order.
func (s Set) Tokens() []string {
	out := make([]string, len(s.tokens))
	copy(out, s.tokens)
	return out
}

func (s Set) Has(name string) bool {
	_, ok := s.names[name]
	return ok
}

func (s Set) HasAny(names ...string) bool {
	for _, n := range names {
		if s.Has(n) {
			return true
		}
	}
	return false
}

// HasWord reports whether any reported token contains one of the given whole
// words ("slight body pain" has the word "slight").
func (s Set) HasWord(words ...string) bool {
	for _, w := range words {
		if _, ok := s.words[w]; ok {
			return true
		}
	}
	return false
}

// FirstIs reports whether the first reported token is, or implies, name.
// Patients usually lead with their chief complaint.
func (s Set) FirstIs(name string) bool {
	if len(s.tokens) == 0 {
		return false
	}
	for _, n := range Canonical(s.tokens[0]) {
		if n == name {
			return true
		}
	}
	return false
}

func (s Set) HasCategory(c Category) bool {
	for name := range s.names {
		if categories[name] == c {
			return true
		}
	}
	return false
}

// CategoryOf returns the category of a canonical symptom, or "".
func CategoryOf(name string) Category {
	return categories[Normalize(name)]
}
