// medvalidate checks classifier predictions against a labeled symptom corpus
// from the command line.
//
// Usage:
//
//	medvalidate validate --diagnosis "Common Cold" --symptoms fever,cough --severity mild
//	medvalidate evaluate --dataset validation --parallel 8
//	medvalidate corpus
//	medvalidate cases -f cases.yaml
//	medvalidate report -f predictions.jsonl
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/Harshitk-cp/medvalidate/internal/config"
	"github.com/Harshitk-cp/medvalidate/internal/corpus"
	"github.com/Harshitk-cp/medvalidate/internal/llm"
	"github.com/Harshitk-cp/medvalidate/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time via -ldflags.
var version = "dev"

type globalOptions struct {
	trainPath string
	valPath   string
	testPath  string
	provider  string
	verbose   bool
	json      bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "medvalidate",
		Short: "Validate and correct diagnosis predictions against a training corpus",
		Long: "medvalidate scores a classifier's predicted diagnosis against a labeled\n" +
			"symptom corpus, applies the hard safety rules and reports corrections.",
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		Version: version,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.trainPath, "train", config.TrainingDataPath(), "training corpus (JSONL)")
	pf.StringVar(&opts.valPath, "val", config.ValidationDataPath(), "validation corpus (JSONL)")
	pf.StringVar(&opts.testPath, "test", config.TestDataPath(), "test corpus (JSONL)")
	pf.StringVar(&opts.provider, "llm", config.LLMProvider(), "secondary-opinion provider (openai, anthropic, gemini, cerebras, openrouter, mock, none)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "log corpus loading and rule decisions to stderr")
	pf.BoolVar(&opts.json, "json", false, "print JSON instead of tables")

	root.AddCommand(
		newValidateCmd(opts),
		newEvaluateCmd(opts),
		newCorpusCmd(opts),
		newCasesCmd(opts),
		newReportCmd(opts),
	)
	return root
}

func main() {
	_ = config.Load()
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (o *globalOptions) logger(stderr io.Writer) *zap.Logger {
	if !o.verbose {
		return zap.NewNop()
	}
	enc := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(stderr), zap.DebugLevel)
	return zap.New(core)
}

// session is everything a subcommand needs after the corpora are loaded.
type session struct {
	datasets  corpus.Datasets
	validator *service.Validator
	logger    *zap.Logger
}

func (o *globalOptions) open(cmd *cobra.Command) (*session, error) {
	logger := o.logger(cmd.ErrOrStderr())

	ds, err := corpus.LoadDatasets(corpus.Paths{
		Training:   o.trainPath,
		Validation: o.valPath,
		Test:       o.testPath,
	}, logger)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}

	v := service.NewValidator(corpus.Build(ds.Training), logger)
	v.SetDatasetCounts(ds.Counts())

	client, err := llm.NewClient(o.provider, config.APIKeyFor(o.provider))
	if err != nil {
		return nil, err
	}
	if client != nil {
		v.SetOpinionClient(client, config.SecondOpinionTimeout())
	}

	return &session{datasets: ds, validator: v, logger: logger}, nil
}
