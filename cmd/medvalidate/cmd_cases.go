package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Harshitk-cp/medvalidate/internal/domain"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// CaseFile is a YAML list of predictions with the decision each one should
// produce.
type CaseFile struct {
	Cases []Case `yaml:"cases"`
}

type Case struct {
	Name             string       `yaml:"name"`
	Diagnosis        string       `yaml:"diagnosis"`
	Severity         string       `yaml:"severity"`
	Symptoms         []string     `yaml:"symptoms"`
	Duration         string       `yaml:"duration"`
	ReportedSeverity string       `yaml:"reported_severity"`
	Expect           CaseExpected `yaml:"expect"`
}

// CaseExpected fields are optional; empty fields are not checked.
type CaseExpected struct {
	Diagnosis string `yaml:"diagnosis"`
	Severity  string `yaml:"severity"`
	Rule      string `yaml:"rule"`
	Corrected *bool  `yaml:"corrected"`
}

type CaseOutcome struct {
	Name     string                  `json:"name"`
	Passed   bool                    `json:"passed"`
	Failures []string                `json:"failures,omitempty"`
	Result   domain.CorrectionResult `json:"result"`
}

func (c Case) prediction() domain.Prediction {
	return domain.Prediction{
		Diagnosis:        c.Diagnosis,
		Severity:         c.Severity,
		Symptoms:         c.Symptoms,
		Duration:         c.Duration,
		ReportedSeverity: c.ReportedSeverity,
	}
}

func (e CaseExpected) check(res domain.CorrectionResult) []string {
	var failures []string
	if e.Diagnosis != "" && !strings.EqualFold(e.Diagnosis, res.Diagnosis) {
		failures = append(failures, fmt.Sprintf("diagnosis: want %q, got %q", e.Diagnosis, res.Diagnosis))
	}
	if e.Severity != "" && !strings.EqualFold(e.Severity, res.Severity) {
		failures = append(failures, fmt.Sprintf("severity: want %q, got %q", e.Severity, res.Severity))
	}
	if e.Rule != "" && e.Rule != string(res.Rule) {
		failures = append(failures, fmt.Sprintf("rule: want %q, got %q", e.Rule, res.Rule))
	}
	if e.Corrected != nil && *e.Corrected != res.WasCorrected {
		failures = append(failures, fmt.Sprintf("corrected: want %t, got %t", *e.Corrected, res.WasCorrected))
	}
	return failures
}

func loadCases(path string) (CaseFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CaseFile{}, fmt.Errorf("read cases: %w", err)
	}
	var cf CaseFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return CaseFile{}, fmt.Errorf("parse cases %s: %w", path, err)
	}
	for i := range cf.Cases {
		if cf.Cases[i].Name == "" {
			cf.Cases[i].Name = fmt.Sprintf("case %d", i+1)
		}
		if r := cf.Cases[i].Expect.Rule; r != "" && !validRule(r) {
			return CaseFile{}, fmt.Errorf("%s: unknown rule %q", cf.Cases[i].Name, r)
		}
	}
	return cf, nil
}

func validRule(r string) bool {
	for _, id := range domain.AllRules() {
		if string(id) == r {
			return true
		}
	}
	return false
}

func newCasesCmd(opts *globalOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "cases",
		Short: "Run a YAML file of predictions and check the expected decisions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cf, err := loadCases(file)
			if err != nil {
				return err
			}
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}

			outcomes := make([]CaseOutcome, 0, len(cf.Cases))
			failed := 0
			for _, c := range cf.Cases {
				res := s.validator.Resolve(cmd.Context(), c.prediction())
				o := CaseOutcome{Name: c.Name, Result: res, Failures: c.Expect.check(res)}
				o.Passed = len(o.Failures) == 0
				if !o.Passed {
					failed++
				}
				outcomes = append(outcomes, o)
			}

			if opts.json {
				err = printJSON(cmd.OutOrStdout(), outcomes)
			} else {
				err = printCases(cmd.OutOrStdout(), outcomes)
			}
			if err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d cases failed", failed, len(outcomes))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML case file (required)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func printCases(w io.Writer, outcomes []CaseOutcome) error {
	t := newTable("Cases")
	t.AppendHeader(table.Row{"Case", "Final", "Severity", "Rule", "Status"})
	for _, o := range outcomes {
		status := "PASS"
		if !o.Passed {
			status = "FAIL: " + strings.Join(o.Failures, "; ")
		}
		t.AppendRow(table.Row{o.Name, o.Result.Diagnosis, o.Result.Severity, o.Result.Rule, status})
	}
	return render(w, t)
}
