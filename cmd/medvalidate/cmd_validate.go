package main

import (
	"github.com/Harshitk-cp/medvalidate/internal/domain"
	"github.com/spf13/cobra"
)

func newValidateCmd(opts *globalOptions) *cobra.Command {
	var (
		p         domain.Prediction
		scoreOnly bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate one prediction and print the decision",
		Example: `  medvalidate validate --diagnosis "Common Cold" --symptoms "fever,cough,body aches" --severity moderate
  medvalidate validate --diagnosis Appendicitis --symptoms fever --score-only --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if scoreOnly {
				verdict := s.validator.Validate(p)
				if opts.json {
					return printJSON(out, verdict)
				}
				return printVerdict(out, verdict)
			}

			res := s.validator.Resolve(cmd.Context(), p)
			if opts.json {
				return printJSON(out, res)
			}
			return printResult(out, p, res)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&p.Diagnosis, "diagnosis", "d", "", "predicted diagnosis")
	f.StringVar(&p.Severity, "severity", "", "predicted severity (mild, moderate, severe or 1-10)")
	f.StringSliceVarP(&p.Symptoms, "symptoms", "s", nil, "comma-separated reported symptoms")
	f.StringVar(&p.Duration, "duration", "", "reported duration")
	f.StringVar(&p.ReportedSeverity, "reported-severity", "", "patient-reported severity")
	f.BoolVar(&scoreOnly, "score-only", false, "only run the evidence scorers and aggregator")
	_ = cmd.MarkFlagRequired("symptoms")
	return cmd
}
