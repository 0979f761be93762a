package service

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/Harshitk-cp/medvalidate/internal/domain"
	"github.com/jedib0t/go-pretty/v6/table"
)

const (
	DefaultRecentCorrections = 5
	HistogramBins            = 10
)

type Summary struct {
	TotalPredictions     int     `json:"total_predictions_validated"`
	CorrectPredictions   int     `json:"correct_predictions"`
	IncorrectPredictions int     `json:"incorrect_predictions"`
	AccuracyPercentage   float64 `json:"accuracy_percentage"`
	AverageConfidence    float64 `json:"average_confidence"`
	CorrectionsMade      int     `json:"corrections_made"`
}

type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

type DatasetsInfo struct {
	TrainingExamples   int      `json:"training_examples"`
	ValidationExamples int      `json:"validation_examples"`
	TestExamples       int      `json:"test_examples"`
	UniqueDiseases     int      `json:"total_unique_diseases"`
	Diseases           []string `json:"diseases"`
}

// Report is a point-in-time copy of the session statistics.
type Report struct {
	Summary     Summary                     `json:"summary"`
	Corrections []domain.CorrectionLogEntry `json:"corrections"`
	Histogram   []HistogramBin              `json:"confidence_histogram"`
	Datasets    DatasetsInfo                `json:"datasets_info"`
}

// Report snapshots the session statistics. Corrections holds the most recent
// entries, oldest first; recent <= 0 selects DefaultRecentCorrections.
func (v *Validator) Report(recent int) Report {
	if recent <= 0 {
		recent = DefaultRecentCorrections
	}

	v.mu.Lock()
	total, correct, incorrect := v.stats.total, v.stats.correct, v.stats.incorrect
	made := len(v.stats.corrections)
	start := max(0, made-recent)
	corrections := make([]domain.CorrectionLogEntry, made-start)
	copy(corrections, v.stats.corrections[start:])
	confidences := make([]float64, len(v.stats.confidences))
	copy(confidences, v.stats.confidences)
	v.mu.Unlock()

	diseases := v.index.Diagnoses()
	r := Report{
		Summary: Summary{
			TotalPredictions:     total,
			CorrectPredictions:   correct,
			IncorrectPredictions: incorrect,
			CorrectionsMade:      made,
		},
		Corrections: corrections,
		Histogram:   Histogram(confidences),
		Datasets: DatasetsInfo{
			TrainingExamples:   v.datasets[domain.DatasetTraining],
			ValidationExamples: v.datasets[domain.DatasetValidation],
			TestExamples:       v.datasets[domain.DatasetTest],
			UniqueDiseases:     len(diseases),
			Diseases:           diseases,
		},
	}
	if total > 0 {
		r.Summary.AccuracyPercentage = float64(correct) / float64(total) * 100
	}
	if len(confidences) > 0 {
		var sum float64
		for _, c := range confidences {
			sum += c
		}
		r.Summary.AverageConfidence = sum / float64(len(confidences))
	}
	return r
}

// Histogram buckets scores into HistogramBins equal-width bins over [0, 1].
// Values outside the range are clamped into the first or last bin.
func Histogram(scores []float64) []HistogramBin {
	bins := make([]HistogramBin, HistogramBins)
	width := 1.0 / HistogramBins
	for i := range bins {
		bins[i].Lower = math.Round(float64(i)*width*100) / 100
		bins[i].Upper = math.Round(float64(i+1)*width*100) / 100
	}
	for _, s := range scores {
		i := int(math.Floor(s * HistogramBins))
		i = min(max(i, 0), HistogramBins-1)
		bins[i].Count++
	}
	return bins
}

// WriteText renders the report for terminals and logs.
func (r Report) WriteText(w io.Writer) error {
	stats := table.NewWriter()
	stats.SetStyle(table.StyleLight)
	stats.SetTitle("Validation statistics")
	stats.AppendRows([]table.Row{
		{"Total predictions validated", r.Summary.TotalPredictions},
		{"Correct predictions", r.Summary.CorrectPredictions},
		{"Incorrect predictions", r.Summary.IncorrectPredictions},
		{"Accuracy rate", fmt.Sprintf("%.2f%%", r.Summary.AccuracyPercentage)},
		{"Average confidence", fmt.Sprintf("%.2f", r.Summary.AverageConfidence)},
		{"Corrections made", r.Summary.CorrectionsMade},
	})

	datasets := table.NewWriter()
	datasets.SetStyle(table.StyleLight)
	datasets.SetTitle("Datasets")
	datasets.AppendRows([]table.Row{
		{"Training examples", r.Datasets.TrainingExamples},
		{"Validation examples", r.Datasets.ValidationExamples},
		{"Test examples", r.Datasets.TestExamples},
		{"Unique diseases", r.Datasets.UniqueDiseases},
	})

	hist := table.NewWriter()
	hist.SetStyle(table.StyleLight)
	hist.SetTitle("Confidence histogram")
	hist.AppendHeader(table.Row{"Range", "Count"})
	for _, b := range r.Histogram {
		hist.AppendRow(table.Row{fmt.Sprintf("%.1f-%.1f", b.Lower, b.Upper), b.Count})
	}

	parts := []string{stats.Render(), datasets.Render(), hist.Render()}

	if len(r.Corrections) > 0 {
		corr := table.NewWriter()
		corr.SetStyle(table.StyleLight)
		corr.SetTitle("Recent corrections")
		corr.AppendHeader(table.Row{"#", "Original", "Corrected", "Symptoms", "Severity"})
		for i, c := range r.Corrections {
			corr.AppendRow(table.Row{i + 1, c.Original, c.Corrected, strings.Join(c.Symptoms, ", "), c.Severity})
		}
		parts = append(parts, corr.Render())
	}

	_, err := io.WriteString(w, strings.Join(parts, "\n\n")+"\n")
	return err
}
