package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Harshitk-cp/medvalidate/internal/domain"
	"github.com/Harshitk-cp/medvalidate/internal/service"
	"github.com/spf13/cobra"
)

func newReportCmd(opts *globalOptions) *cobra.Command {
	var (
		file      string
		recent    int
		scoreOnly bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Resolve a JSONL file of predictions and print the session report",
		Long: "Each line of the input is a prediction object:\n" +
			`  {"diagnosis":"Influenza","severity":"moderate","symptoms":["fever","cough"]}` + "\n" +
			"Use -f - to read from stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("open predictions: %w", err)
				}
				defer func() { _ = f.Close() }()
				in = f
			}

			predictions, err := readPredictions(in)
			if err != nil {
				return err
			}
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}

			for _, p := range predictions {
				if scoreOnly {
					s.validator.Validate(p)
				} else {
					s.validator.Resolve(cmd.Context(), p)
				}
			}

			report := s.validator.Report(recent)
			if opts.json {
				return printJSON(cmd.OutOrStdout(), report)
			}
			return report.WriteText(cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&file, "file", "f", "-", "JSONL predictions file, - for stdin")
	f.IntVar(&recent, "recent", service.DefaultRecentCorrections, "corrections to list")
	f.BoolVar(&scoreOnly, "score-only", false, "count aggregator corrections instead of safety-gate decisions")
	return cmd
}

func readPredictions(r io.Reader) ([]domain.Prediction, error) {
	var out []domain.Prediction
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var p domain.Prediction
		if err := json.Unmarshal([]byte(text), &p); err != nil {
			return nil, fmt.Errorf("predictions line %d: %w", line, err)
		}
		out = append(out, p)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read predictions: %w", err)
	}
	return out, nil
}
