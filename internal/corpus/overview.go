package corpus

import (
	"math"
	"sort"

	"github.com/Harshitk-cp/medvalidate/internal/domain"
)

const (
	DefaultTopDiagnoses = 10
	DefaultTopSymptoms  = 15
)

type DiagnosisCount struct {
	Diagnosis  string  `json:"disease"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type SymptomCount struct {
	Symptom    string  `json:"symptom"`
	Frequency  int     `json:"frequency"`
	Percentage float64 `json:"percentage"`
}

// Overview describes the shape of the loaded corpora. Distribution figures
// cover the training set only.
type Overview struct {
	TrainingRecords    int                                `json:"total_training_records"`
	ValidationRecords  int                                `json:"total_validation_records"`
	TestRecords        int                                `json:"total_test_records"`
	TotalRecords       int                                `json:"total_records"`
	UniqueDiagnoses    int                                `json:"unique_diseases"`
	UniqueSymptoms     int                                `json:"unique_symptoms"`
	AvgSymptomsPerCase float64                            `json:"average_symptoms_per_case"`
	RedFlagCases       int                                `json:"red_flag_cases"`
	BalanceScore       float64                            `json:"balance_score"`
	TopDiagnoses       []DiagnosisCount                   `json:"top_diseases"`
	TopSymptoms        []SymptomCount                     `json:"top_symptoms"`
	SeverityTotals     map[domain.Severity]int            `json:"severity_totals"`
	SeverityByDisease  map[string]map[domain.Severity]int `json:"severity_by_disease"`
	Diagnoses          []string                           `json:"diseases"`
}

func Summarize(ds Datasets) Overview {
	training := make([]domain.TrainingRecord, 0, len(ds.Training))
	for _, r := range ds.Training {
		if rec, err := Normalize(r); err == nil {
			training = append(training, rec)
		}
	}

	ov := Overview{
		TrainingRecords:   len(training),
		ValidationRecords: len(ds.Validation),
		TestRecords:       len(ds.Test),
		SeverityTotals:    make(map[domain.Severity]int),
		SeverityByDisease: make(map[string]map[domain.Severity]int),
	}
	ov.TotalRecords = ov.TrainingRecords + ov.ValidationRecords + ov.TestRecords

	diseaseCounts := make(map[string]int)
	symptomFreq := make(map[string]int)
	totalSymptoms := 0
	for _, r := range training {
		diseaseCounts[r.Diagnosis]++
		byDisease, ok := ov.SeverityByDisease[r.Diagnosis]
		if !ok {
			byDisease = map[domain.Severity]int{
				domain.SeverityMild:     0,
				domain.SeverityModerate: 0,
				domain.SeveritySevere:   0,
			}
			ov.SeverityByDisease[r.Diagnosis] = byDisease
		}
		byDisease[r.Severity]++
		ov.SeverityTotals[r.Severity]++

		for _, s := range r.Symptoms {
			symptomFreq[s]++
		}
		totalSymptoms += len(r.Symptoms)
		if len(r.RedFlags) > 0 {
			ov.RedFlagCases++
		}
	}

	ov.UniqueDiagnoses = len(diseaseCounts)
	ov.UniqueSymptoms = len(symptomFreq)
	if len(training) > 0 {
		ov.AvgSymptomsPerCase = round2(float64(totalSymptoms) / float64(len(training)))
	}
	ov.BalanceScore = BalanceScore(diseaseCounts)

	for _, kv := range topN(diseaseCounts, DefaultTopDiagnoses) {
		ov.TopDiagnoses = append(ov.TopDiagnoses, DiagnosisCount{
			Diagnosis:  kv.key,
			Count:      kv.count,
			Percentage: percent(kv.count, len(training)),
		})
	}
	for _, kv := range topN(symptomFreq, DefaultTopSymptoms) {
		ov.TopSymptoms = append(ov.TopSymptoms, SymptomCount{
			Symptom:    kv.key,
			Frequency:  kv.count,
			Percentage: percent(kv.count, len(training)),
		})
	}

	for d := range diseaseCounts {
		ov.Diagnoses = append(ov.Diagnoses, d)
	}
	sort.Strings(ov.Diagnoses)
	return ov
}

// BalanceScore maps the coefficient of variation of per-class counts onto
// 0-100, where 100 is a perfectly balanced corpus.
func BalanceScore(counts map[string]int) float64 {
	if len(counts) == 0 {
		return 0
	}
	var sum float64
	for _, c := range counts {
		sum += float64(c)
	}
	avg := sum / float64(len(counts))
	var variance float64
	for _, c := range counts {
		variance += (float64(c) - avg) * (float64(c) - avg)
	}
	variance /= float64(len(counts))
	cv := 0.0
	if avg > 0 {
		cv = math.Sqrt(variance) / avg
	}
	return round2(math.Max(0, 100-cv*50))
}

type keyCount struct {
	key   string
	count int
}

func topN(m map[string]int, n int) []keyCount {
	out := make([]keyCount, 0, len(m))
	for k, c := range m {
		out = append(out, keyCount{k, c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].key < out[j].key
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(n) / float64(total) * 100)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
