package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Harshitk-cp/medvalidate/internal/domain"
	"github.com/jedib0t/go-pretty/v6/table"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(title string) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	if title != "" {
		t.SetTitle(title)
	}
	return t
}

func render(w io.Writer, t table.Writer) error {
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func printVerdict(w io.Writer, v domain.ValidationVerdict) error {
	t := newTable("Validation")
	t.AppendRows([]table.Row{
		{"Match type", v.MatchType},
		{"Correct", v.IsCorrect},
		{"Confidence", fmt.Sprintf("%.2f", v.Confidence)},
		{"Symptom match", fmt.Sprintf("%.2f", v.SymptomMatchQuality)},
		{"Severity consistency", fmt.Sprintf("%.2f", v.SeverityConsistency)},
		{"Expected", strings.Join(v.ExpectedDiagnoses, ", ")},
		{"Reasoning", v.Reasoning},
	})
	return render(w, t)
}

func printResult(w io.Writer, p domain.Prediction, res domain.CorrectionResult) error {
	t := newTable("Decision")
	t.AppendRows([]table.Row{
		{"Predicted", p.Diagnosis},
		{"Final", res.Diagnosis},
		{"Severity", res.Severity},
		{"Corrected", res.WasCorrected},
		{"Rule", res.Rule},
		{"Reason", res.CorrectionReason},
	})
	if err := render(w, t); err != nil {
		return err
	}
	return printVerdict(w, res.ValidationReport)
}
