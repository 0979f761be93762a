// Package corpus loads labeled symptom records and builds the read-only
// lookup index the evidence scorers run against.
package corpus

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Harshitk-cp/medvalidate/internal/domain"
	"github.com/Harshitk-cp/medvalidate/internal/vocab"
	"go.uber.org/zap"
)

const maxLineBytes = 1 << 20

var ErrMissingLabel = errors.New("record has no label")

// Paths names the corpus file of each dataset. Empty paths are skipped.
type Paths struct {
	Training   string
	Validation string
	Test       string
}

// Datasets holds the records of every loaded dataset. Only Training feeds
// the index.
type Datasets struct {
	Training   []domain.TrainingRecord
	Validation []domain.TrainingRecord
	Test       []domain.TrainingRecord
}

// Counts returns the number of records per dataset.
func (d Datasets) Counts() map[domain.DatasetKind]int {
	return map[domain.DatasetKind]int{
		domain.DatasetTraining:   len(d.Training),
		domain.DatasetValidation: len(d.Validation),
		domain.DatasetTest:       len(d.Test),
	}
}

// LoadDatasets loads every configured dataset. A file that cannot be read
// is logged and contributes the records read before the failure; the
// returned error joins every such failure. The Datasets value is always
// usable, so callers can log the error and continue.
func LoadDatasets(paths Paths, logger *zap.Logger) (Datasets, error) {
	var (
		ds   Datasets
		errs []error
	)
	load := func(kind domain.DatasetKind, path string) []domain.TrainingRecord {
		if path == "" {
			return nil
		}
		records, err := LoadFile(path, logger.With(zap.String("dataset", string(kind))))
		if err != nil {
			errs = append(errs, fmt.Errorf("load %s dataset: %w", kind, err))
		}
		return records
	}
	ds.Training = load(domain.DatasetTraining, paths.Training)
	ds.Validation = load(domain.DatasetValidation, paths.Validation)
	ds.Test = load(domain.DatasetTest, paths.Test)
	return ds, errors.Join(errs...)
}

// LoadFile reads a JSONL corpus. A missing file yields no records and no
// error.
func LoadFile(path string, logger *zap.Logger) ([]domain.TrainingRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("corpus file not found", zap.String("path", path))
			return nil, nil
		}
		logger.Warn("failed to open corpus file", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	defer f.Close()

	records, skipped, err := Read(f, logger)
	if err != nil {
		logger.Warn("corpus read aborted", zap.String("path", path), zap.Error(err))
		return records, err
	}
	logger.Info("corpus loaded",
		zap.String("path", path),
		zap.Int("records", len(records)),
		zap.Int("skipped", skipped),
	)
	return records, nil
}

// Read parses one record per line. Blank lines are ignored; malformed lines
// and lines longer than maxLineBytes are logged and skipped. Only a failing
// reader stops the scan, and the records read so far are still returned.
func Read(r io.Reader, logger *zap.Logger) ([]domain.TrainingRecord, int, error) {
	br := bufio.NewReaderSize(r, 64*1024)

	var (
		records []domain.TrainingRecord
		skipped int
		lineNo  int
	)
	for {
		raw, tooLong, err := readLine(br)
		if err == nil || len(raw) > 0 || tooLong {
			lineNo++
		}
		switch line := strings.TrimSpace(string(raw)); {
		case tooLong:
			skipped++
			logger.Warn("skipping oversized corpus line", zap.Int("line", lineNo), zap.Int("limit", maxLineBytes))
		case line == "":
		default:
			rec, perr := parseRecord([]byte(line))
			if perr != nil {
				skipped++
				logger.Warn("skipping malformed corpus line", zap.Int("line", lineNo), zap.Error(perr))
				break
			}
			records = append(records, rec)
		}

		if errors.Is(err, io.EOF) {
			return records, skipped, nil
		}
		if err != nil {
			return records, skipped, err
		}
	}
}

// readLine returns the next line without its content once it grows past
// maxLineBytes; the rest of such a line is consumed and discarded.
func readLine(br *bufio.Reader) ([]byte, bool, error) {
	var (
		line    []byte
		tooLong bool
	)
	for {
		chunk, err := br.ReadSlice('\n')
		if !tooLong {
			if len(line)+len(chunk) > maxLineBytes+1 {
				tooLong = true
				line = nil
			} else {
				line = append(line, chunk...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		return line, tooLong, err
	}
}

func parseRecord(line []byte) (domain.TrainingRecord, error) {
	var raw struct {
		Label    string   `json:"label"`
		Symptoms []string `json:"symptoms"`
		Severity string   `json:"severity"`
		Duration string   `json:"duration"`
		RedFlags []string `json:"red_flags"`
	}
	if err := json.Unmarshal(line, &raw); err != nil {
		return domain.TrainingRecord{}, err
	}
	return Normalize(domain.TrainingRecord{
		Diagnosis: raw.Label,
		Symptoms:  raw.Symptoms,
		Severity:  domain.Severity(raw.Severity),
		Duration:  raw.Duration,
		RedFlags:  raw.RedFlags,
	})
}

// Normalize trims the label, lowercases symptoms and severity, and rejects
// records without a label.
func Normalize(rec domain.TrainingRecord) (domain.TrainingRecord, error) {
	rec.Diagnosis = strings.TrimSpace(rec.Diagnosis)
	if rec.Diagnosis == "" {
		return domain.TrainingRecord{}, ErrMissingLabel
	}
	rec.Symptoms = vocab.NormalizeAll(rec.Symptoms)
	rec.Severity = domain.ParseSeverity(string(rec.Severity))
	rec.Duration = strings.TrimSpace(rec.Duration)
	return rec, nil
}
