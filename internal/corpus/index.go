package corpus

import (
	"slices"
	"sort"

	"github.com/Harshitk-cp/medvalidate/internal/domain"
)

// Pair is an unordered symptom pair stored in sorted order.
type Pair [2]string

func NewPair(a, b string) Pair {
	if b < a {
		a, b = b, a
	}
	return Pair{a, b}
}

// Index is the read-only lookup structure built from a training corpus. It is
// never mutated after Build returns and is safe for concurrent readers.
// Accessors return copies.
type Index struct {
	records     []domain.TrainingRecord
	recordSets  [][]string
	diagnoses   []string
	diagnosisOf map[string]struct{}

	symptomToDiagnoses    map[string][]string
	diagnosisToSymptoms   map[string][]string
	diagnosisToSeverities map[string][]domain.Severity
	pairToDiagnoses       map[Pair][]string

	// symptomToRecords lets the exact scorer visit only records that share
	// at least one symptom with the query.
	symptomToRecords map[string][]int
}

// Build indexes records. Records are normalized first so callers may pass
// raw values; records without a label are dropped.
func Build(records []domain.TrainingRecord) *Index {
	symptomSets := make(map[string]map[string]struct{})
	diagnosisSets := make(map[string]map[string]struct{})
	pairSets := make(map[Pair]map[string]struct{})

	idx := &Index{
		diagnosisOf:           make(map[string]struct{}),
		diagnosisToSeverities: make(map[string][]domain.Severity),
		symptomToRecords:      make(map[string][]int),
	}

	for _, raw := range records {
		rec, err := Normalize(raw)
		if err != nil {
			continue
		}
		set := dedupe(rec.Symptoms)
		pos := len(idx.records)
		idx.records = append(idx.records, rec)
		idx.recordSets = append(idx.recordSets, set)

		d := rec.Diagnosis
		idx.diagnosisOf[d] = struct{}{}
		idx.diagnosisToSeverities[d] = append(idx.diagnosisToSeverities[d], rec.Severity)

		for _, s := range set {
			addTo(symptomSets, s, d)
			addTo(diagnosisSets, d, s)
			idx.symptomToRecords[s] = append(idx.symptomToRecords[s], pos)
		}
		for i := 0; i < len(set); i++ {
			for j := i + 1; j < len(set); j++ {
				addTo(pairSets, NewPair(set[i], set[j]), d)
			}
		}
	}

	idx.diagnoses = sortedKeys(idx.diagnosisOf)
	idx.symptomToDiagnoses = freeze(symptomSets)
	idx.diagnosisToSymptoms = freeze(diagnosisSets)
	idx.pairToDiagnoses = freeze(pairSets)
	return idx
}

// Len is the number of indexed records.
func (idx *Index) Len() int { return len(idx.records) }

// Diagnoses returns every known diagnosis, sorted.
func (idx *Index) Diagnoses() []string { return slices.Clone(idx.diagnoses) }

func (idx *Index) HasDiagnosis(d string) bool {
	_, ok := idx.diagnosisOf[d]
	return ok
}

func (idx *Index) DiagnosesForSymptom(symptom string) []string {
	return slices.Clone(idx.symptomToDiagnoses[symptom])
}

func (idx *Index) DiagnosesForPair(p Pair) []string {
	return slices.Clone(idx.pairToDiagnoses[p])
}

func (idx *Index) SymptomsOf(diagnosis string) []string {
	return slices.Clone(idx.diagnosisToSymptoms[diagnosis])
}

// Severities returns every severity observed for diagnosis, duplicates
// included, in corpus order.
func (idx *Index) Severities(diagnosis string) ([]domain.Severity, bool) {
	s, ok := idx.diagnosisToSeverities[diagnosis]
	return slices.Clone(s), ok
}

// Record returns the record at position i together with its deduplicated
// symptom set.
func (idx *Index) Record(i int) (domain.TrainingRecord, []string) {
	return cloneRecord(idx.records[i]), slices.Clone(idx.recordSets[i])
}

// Records returns the indexed records in corpus order.
func (idx *Index) Records() []domain.TrainingRecord {
	out := make([]domain.TrainingRecord, len(idx.records))
	for i, r := range idx.records {
		out[i] = cloneRecord(r)
	}
	return out
}

func cloneRecord(r domain.TrainingRecord) domain.TrainingRecord {
	r.Symptoms = slices.Clone(r.Symptoms)
	r.RedFlags = slices.Clone(r.RedFlags)
	return r
}

// CandidateRecords returns, in ascending corpus order, the positions of the
// records sharing at least one symptom with the query.
func (idx *Index) CandidateRecords(symptoms []string) []int {
	seen := make(map[int]struct{})
	var out []int
	for _, s := range symptoms {
		for _, pos := range idx.symptomToRecords[s] {
			if _, ok := seen[pos]; ok {
				continue
			}
			seen[pos] = struct{}{}
			out = append(out, pos)
		}
	}
	sort.Ints(out)
	return out
}

func dedupe(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func addTo[K comparable](m map[K]map[string]struct{}, k K, v string) {
	set, ok := m[k]
	if !ok {
		set = make(map[string]struct{})
		m[k] = set
	}
	set[v] = struct{}{}
}

func freeze[K comparable](m map[K]map[string]struct{}) map[K][]string {
	out := make(map[K][]string, len(m))
	for k, set := range m {
		out[k] = sortedKeys(set)
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
