package main

import (
	"fmt"
	"io"

	"github.com/Harshitk-cp/medvalidate/internal/corpus"
	"github.com/Harshitk-cp/medvalidate/internal/domain"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newCorpusCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "corpus",
		Short: "Describe the loaded corpora",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			ov := corpus.Summarize(s.datasets)
			if opts.json {
				return printJSON(cmd.OutOrStdout(), ov)
			}
			return printOverview(cmd.OutOrStdout(), ov)
		},
	}
}

func printOverview(w io.Writer, ov corpus.Overview) error {
	totals := newTable("Corpus")
	totals.AppendRows([]table.Row{
		{"Training records", ov.TrainingRecords},
		{"Validation records", ov.ValidationRecords},
		{"Test records", ov.TestRecords},
		{"Total records", ov.TotalRecords},
		{"Unique diseases", ov.UniqueDiagnoses},
		{"Unique symptoms", ov.UniqueSymptoms},
		{"Average symptoms per case", fmt.Sprintf("%.2f", ov.AvgSymptomsPerCase)},
		{"Cases with red flags", ov.RedFlagCases},
		{"Balance score", fmt.Sprintf("%.2f/100", ov.BalanceScore)},
	})
	if err := render(w, totals); err != nil {
		return err
	}

	diseases := newTable("Top diseases")
	diseases.AppendHeader(table.Row{"Disease", "Records", "%", "Mild", "Moderate", "Severe"})
	for _, d := range ov.TopDiagnoses {
		sev := ov.SeverityByDisease[d.Diagnosis]
		diseases.AppendRow(table.Row{
			d.Diagnosis, d.Count, fmt.Sprintf("%.1f", d.Percentage),
			sev[domain.SeverityMild], sev[domain.SeverityModerate], sev[domain.SeveritySevere],
		})
	}
	if err := render(w, diseases); err != nil {
		return err
	}

	symptoms := newTable("Top symptoms")
	symptoms.AppendHeader(table.Row{"Symptom", "Frequency", "%"})
	for _, s := range ov.TopSymptoms {
		symptoms.AppendRow(table.Row{s.Symptom, s.Frequency, fmt.Sprintf("%.1f", s.Percentage)})
	}
	return render(w, symptoms)
}
