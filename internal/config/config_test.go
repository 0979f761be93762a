package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	for _, k := range []string{"SERVER_PORT", "LLM_PROVIDER", "SECOND_OPINION_TIMEOUT", "REPORT_RECENT_CORRECTIONS", "RATE_LIMIT_RPS", "TRAINING_DATA_PATH", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}

	assert.Equal(t, ":8080", ServerAddr())
	assert.Equal(t, "none", LLMProvider())
	assert.Equal(t, "", LLMAPIKey())
	assert.Equal(t, 8*time.Second, SecondOpinionTimeout())
	assert.Equal(t, 5, ReportRecentCorrections())
	assert.Equal(t, 100.0, RateLimitRPS())
	assert.Equal(t, defaultTrainingDataPath, TrainingDataPath())
	assert.Equal(t, "info", LogLevel())
}

func TestOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LLM_PROVIDER", "anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("SECOND_OPINION_TIMEOUT", "2s")
	t.Setenv("REPORT_RECENT_CORRECTIONS", "12")

	assert.Equal(t, ":9090", ServerAddr())
	assert.Equal(t, "sk-ant", LLMAPIKey())
	assert.Equal(t, 2*time.Second, SecondOpinionTimeout())
	assert.Equal(t, 12, ReportRecentCorrections())

	t.Setenv("SECOND_OPINION_TIMEOUT", "soon")
	assert.Equal(t, 8*time.Second, SecondOpinionTimeout())
}

func TestLoad_ReadsEnvFileAndSecret(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("TRAINING_DATA_PATH=/corpus/train.jsonl\n"), 0o600))
	require.NoError(t, os.WriteFile(envFile+".secret", []byte("API_KEY=from-secret\n"), 0o600))

	t.Setenv("MEDVALIDATE_ENV", envFile)
	t.Setenv("TRAINING_DATA_PATH", "")
	t.Setenv("API_KEY", "")
	require.NoError(t, os.Unsetenv("TRAINING_DATA_PATH"))
	require.NoError(t, os.Unsetenv("API_KEY"))

	require.NoError(t, Load())
	assert.Equal(t, "/corpus/train.jsonl", TrainingDataPath())
	assert.Equal(t, "from-secret", APIKey())
}
