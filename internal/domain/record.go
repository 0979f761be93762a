package domain

// TrainingRecord is one labeled case from a corpus file. Symptoms are stored
// normalized (lowercase, trimmed) in the order they appeared.
type TrainingRecord struct {
	Diagnosis string   `json:"label" yaml:"label"`
	Symptoms  []string `json:"symptoms" yaml:"symptoms"`
	Severity  Severity `json:"severity" yaml:"severity"`
	Duration  string   `json:"duration" yaml:"duration"`
	RedFlags  []string `json:"red_flags,omitempty" yaml:"red_flags,omitempty"`
}

type DatasetKind string

const (
	DatasetTraining   DatasetKind = "training"
	DatasetValidation DatasetKind = "validation"
	DatasetTest       DatasetKind = "test"
)
