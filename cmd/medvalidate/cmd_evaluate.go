package main

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync/atomic"

	"github.com/Harshitk-cp/medvalidate/internal/domain"
	"github.com/Harshitk-cp/medvalidate/internal/service"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// Evaluation summarizes a held-out run where every record's own label is
// submitted as the prediction.
type Evaluation struct {
	Dataset   domain.DatasetKind `json:"dataset"`
	Records   int                `json:"records"`
	Agreed    int                `json:"agreed"`
	Agreement float64            `json:"agreement_percentage"`
	ByMatch   map[string]int     `json:"by_match_type"`
	Report    service.Report     `json:"report"`
}

func newEvaluateCmd(opts *globalOptions) *cobra.Command {
	var (
		dataset  string
		parallel int
		recent   int
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score a held-out corpus against the training corpus",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}

			var records []domain.TrainingRecord
			switch domain.DatasetKind(dataset) {
			case domain.DatasetValidation:
				records = s.datasets.Validation
			case domain.DatasetTest:
				records = s.datasets.Test
			default:
				return fmt.Errorf("unknown dataset %q (valid: validation, test)", dataset)
			}
			if len(records) == 0 {
				return fmt.Errorf("%s corpus is empty", dataset)
			}

			ev, err := evaluate(cmd.Context(), s.validator, records, parallel)
			if err != nil {
				return err
			}
			ev.Dataset = domain.DatasetKind(dataset)
			ev.Report = s.validator.Report(recent)

			if opts.json {
				return printJSON(cmd.OutOrStdout(), ev)
			}
			return printEvaluation(cmd.OutOrStdout(), ev)
		},
	}

	f := cmd.Flags()
	f.StringVar(&dataset, "dataset", string(domain.DatasetValidation), "held-out corpus to evaluate (validation, test)")
	f.IntVarP(&parallel, "parallel", "p", runtime.NumCPU(), "concurrent validations")
	f.IntVar(&recent, "recent", service.DefaultRecentCorrections, "corrections to list in the report")
	return cmd
}

// evaluate validates every record concurrently, at most parallel at a time.
// Results are written by index so the tally does not depend on scheduling.
func evaluate(ctx context.Context, v *service.Validator, records []domain.TrainingRecord, parallel int) (Evaluation, error) {
	verdicts := make([]domain.ValidationVerdict, len(records))
	var done atomic.Int64

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(max(parallel, 1))
	for i, rec := range records {
		i, rec := i, rec
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			verdicts[i] = v.Validate(domain.Prediction{
				Diagnosis: rec.Diagnosis,
				Severity:  string(rec.Severity),
				Symptoms:  rec.Symptoms,
				Duration:  rec.Duration,
			})
			done.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Evaluation{}, fmt.Errorf("evaluation stopped after %d of %d records: %w", done.Load(), len(records), err)
	}

	ev := Evaluation{Records: len(records), ByMatch: make(map[string]int)}
	for _, verdict := range verdicts {
		if verdict.IsCorrect {
			ev.Agreed++
		}
		ev.ByMatch[string(verdict.MatchType)]++
	}
	ev.Agreement = float64(ev.Agreed) / float64(ev.Records) * 100
	return ev, nil
}

func printEvaluation(w io.Writer, ev Evaluation) error {
	t := newTable(fmt.Sprintf("Evaluation (%s)", ev.Dataset))
	t.AppendRows([]table.Row{
		{"Records", ev.Records},
		{"Label agreed with corpus", ev.Agreed},
		{"Agreement rate", fmt.Sprintf("%.2f%%", ev.Agreement)},
	})
	for _, m := range []domain.MatchType{domain.MatchExact, domain.MatchPattern, domain.MatchWeak, domain.MatchNone} {
		t.AppendRow(table.Row{"Match " + string(m), ev.ByMatch[string(m)]})
	}
	if err := render(w, t); err != nil {
		return err
	}
	return ev.Report.WriteText(w)
}
