package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Harshitk-cp/medvalidate/internal/domain"
	"github.com/Harshitk-cp/medvalidate/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type corpusFiles struct {
	train, val, test string
}

func writeCorpora(t *testing.T) corpusFiles {
	t.Helper()
	dir := t.TempDir()

	var train strings.Builder
	for n := 0; n < 20; n++ {
		train.WriteString(`{"label":"Influenza","symptoms":["fever","cough","body aches"],"severity":"moderate"}` + "\n")
		train.WriteString(`{"label":"Common Cold","symptoms":["cough","runny nose"],"severity":"mild"}` + "\n")
	}
	val := `{"label":"Influenza","symptoms":["fever","cough","body aches"],"severity":"moderate"}
{"label":"Common Cold","symptoms":["cough","runny nose"],"severity":"mild"}
{"label":"Migraine","symptoms":["headache","nausea"],"severity":"severe"}
`
	files := corpusFiles{
		train: filepath.Join(dir, "train.jsonl"),
		val:   filepath.Join(dir, "val.jsonl"),
		test:  filepath.Join(dir, "missing.jsonl"),
	}
	require.NoError(t, os.WriteFile(files.train, []byte(train.String()), 0o600))
	require.NoError(t, os.WriteFile(files.val, []byte(val), 0o600))
	return files
}

func run(t *testing.T, files corpusFiles, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--train", files.train, "--val", files.val, "--test", files.test, "--llm", "none"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestValidateCmd_JSON(t *testing.T) {
	files := writeCorpora(t)
	out, err := run(t, files, "validate", "--json", "-d", "Common Cold", "--severity", "moderate", "-s", "fever,cough,body aches")
	require.NoError(t, err)

	var res domain.CorrectionResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "Influenza", res.Diagnosis)
	assert.True(t, res.WasCorrected)
	assert.Equal(t, domain.RuleAggregatorFallback, res.Rule)
}

func TestValidateCmd_Table(t *testing.T) {
	files := writeCorpora(t)
	out, err := run(t, files, "validate", "-d", "Common Cold", "-s", "fever,severe headache,light sensitivity")
	require.NoError(t, err)
	assert.Contains(t, out, domain.EmergencyDiagnosis)
	assert.Contains(t, out, string(domain.RuleLifeThreatening))
}

func TestValidateCmd_ScoreOnly(t *testing.T) {
	files := writeCorpora(t)
	out, err := run(t, files, "validate", "--json", "--score-only", "-d", "Influenza", "-s", "fever,cough,body aches", "--severity", "moderate")
	require.NoError(t, err)

	var verdict domain.ValidationVerdict
	require.NoError(t, json.Unmarshal([]byte(out), &verdict))
	assert.True(t, verdict.IsCorrect)
	assert.Equal(t, domain.MatchExact, verdict.MatchType)
}

func TestValidateCmd_RequiresSymptoms(t *testing.T) {
	files := writeCorpora(t)
	_, err := run(t, files, "validate", "-d", "Influenza")
	assert.Error(t, err)
}

func TestEvaluateCmd(t *testing.T) {
	files := writeCorpora(t)
	out, err := run(t, files, "evaluate", "--json", "--parallel", "2")
	require.NoError(t, err)

	var ev Evaluation
	require.NoError(t, json.Unmarshal([]byte(out), &ev))
	assert.Equal(t, domain.DatasetValidation, ev.Dataset)
	assert.Equal(t, 3, ev.Records)
	assert.Equal(t, 2, ev.Agreed)
	assert.InDelta(t, 66.67, ev.Agreement, 0.01)
	assert.Equal(t, 3, ev.Report.Summary.TotalPredictions)
	assert.Equal(t, 3, ev.Report.Datasets.ValidationExamples)
	assert.Equal(t, 0, ev.Report.Datasets.TestExamples)
}

func TestEvaluateCmd_EmptyDataset(t *testing.T) {
	files := writeCorpora(t)
	_, err := run(t, files, "evaluate", "--dataset", "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")

	_, err = run(t, files, "evaluate", "--dataset", "training")
	assert.Error(t, err)
}

func TestCorpusCmd(t *testing.T) {
	files := writeCorpora(t)
	out, err := run(t, files, "corpus")
	require.NoError(t, err)
	assert.Contains(t, out, "Top diseases")
	assert.Contains(t, out, "Influenza")
	assert.Contains(t, out, "runny nose")
}

func TestCorpusCmd_UnreadableDatasetWarns(t *testing.T) {
	files := writeCorpora(t)
	files.val = t.TempDir()

	out, err := run(t, files, "corpus")
	require.NoError(t, err)
	assert.Contains(t, out, "warning: load validation dataset")
	assert.Contains(t, out, "Influenza")
}

const casesYAML = `cases:
  - name: flu presenting as cold
    diagnosis: Common Cold
    severity: moderate
    symptoms: [fever, cough, body aches]
    expect:
      diagnosis: Influenza
      rule: aggregator_correction
      corrected: true
  - name: appendicitis without abdominal pain
    diagnosis: Appendicitis
    symptoms: [fever]
    expect:
      rule: prerequisite_violation
  - name: clean cold
    diagnosis: Common Cold
    severity: mild
    symptoms: [cough, runny nose]
    expect:
      diagnosis: Common Cold
      corrected: false
`

func TestCasesCmd(t *testing.T) {
	files := writeCorpora(t)
	path := filepath.Join(t.TempDir(), "cases.yaml")
	require.NoError(t, os.WriteFile(path, []byte(casesYAML), 0o600))

	out, err := run(t, files, "cases", "-f", path)
	require.NoError(t, err, out)
	assert.Equal(t, 3, strings.Count(out, "PASS"))
}

func TestCasesCmd_ReportsFailures(t *testing.T) {
	files := writeCorpora(t)
	path := filepath.Join(t.TempDir(), "cases.yaml")
	yamlText := strings.Replace(casesYAML, "diagnosis: Influenza", "diagnosis: Pneumonia", 1)
	require.NoError(t, os.WriteFile(path, []byte(yamlText), 0o600))

	out, err := run(t, files, "cases", "-f", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3 cases failed")
	assert.Contains(t, out, `want "Pneumonia"`)
}

func TestLoadCases_UnknownRule(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cases.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cases:\n  - diagnosis: X\n    expect:\n      rule: rule_9\n"), 0o600))

	_, err := loadCases(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "case 1")
}

func TestReportCmd(t *testing.T) {
	files := writeCorpora(t)
	path := filepath.Join(t.TempDir(), "predictions.jsonl")
	var lines strings.Builder
	for i := 0; i < 7; i++ {
		fmt.Fprintf(&lines, `{"diagnosis":"Cold %d","severity":"moderate","symptoms":["fever","cough","body aches"]}`+"\n", i)
	}
	lines.WriteString(`{"diagnosis":"Influenza","severity":"moderate","symptoms":["fever","cough","body aches"]}` + "\n")
	require.NoError(t, os.WriteFile(path, []byte(lines.String()), 0o600))

	out, err := run(t, files, "report", "--json", "-f", path, "--recent", "3")
	require.NoError(t, err)

	var report service.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 8, report.Summary.TotalPredictions)
	assert.Equal(t, 7, report.Summary.CorrectionsMade)
	assert.InDelta(t, 12.5, report.Summary.AccuracyPercentage, 0.001)
	require.Len(t, report.Corrections, 3)
	assert.Equal(t, "Cold 6", report.Corrections[2].Original)

	out, err = run(t, files, "report", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Recent corrections")
}

func TestReadPredictions_BadLine(t *testing.T) {
	_, err := readPredictions(strings.NewReader("{\"diagnosis\":\"A\"}\n\n{oops\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
}
