package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultTrainingDataPath   = "data/training_data.jsonl"
	defaultValidationDataPath = "data/validation_data.jsonl"
	defaultTestDataPath       = "data/test_data.jsonl"
)

// Load reads the .env file specified by MEDVALIDATE_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("MEDVALIDATE_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Missing files are fine; the environment may already be populated.
	_ = godotenv.Load(envFile)
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

// DatabaseURL is optional. When empty the correction audit trail is not
// persisted.
func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

func TrainingDataPath() string {
	return envOr("TRAINING_DATA_PATH", defaultTrainingDataPath)
}

func ValidationDataPath() string {
	return envOr("VALIDATION_DATA_PATH", defaultValidationDataPath)
}

func TestDataPath() string {
	return envOr("TEST_DATA_PATH", defaultTestDataPath)
}

func OpenAIAPIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

func AnthropicAPIKey() string {
	return os.Getenv("ANTHROPIC_API_KEY")
}

func GeminiAPIKey() string {
	return os.Getenv("GEMINI_API_KEY")
}

func CerebrasAPIKey() string {
	return os.Getenv("CEREBRAS_API_KEY")
}

func OpenRouterAPIKey() string {
	return os.Getenv("OPENROUTER_API_KEY")
}

// LLMProvider returns the secondary-opinion provider.
// Defaults to "none", which disables the secondary opinion.
// Valid values: openai, anthropic, gemini, cerebras, openrouter, mock, none
func LLMProvider() string {
	return envOr("LLM_PROVIDER", "none")
}

// LLMAPIKey returns the API key for the configured LLM provider.
func LLMAPIKey() string {
	return APIKeyFor(LLMProvider())
}

// APIKeyFor returns the API key for the named provider, or "" for providers
// that need none.
func APIKeyFor(provider string) string {
	switch provider {
	case "openai":
		return OpenAIAPIKey()
	case "anthropic":
		return AnthropicAPIKey()
	case "gemini":
		return GeminiAPIKey()
	case "cerebras":
		return CerebrasAPIKey()
	case "openrouter":
		return OpenRouterAPIKey()
	default:
		return ""
	}
}

// SecondOpinionTimeout bounds each secondary-opinion call.
// Defaults to 8s if not set or invalid.
func SecondOpinionTimeout() time.Duration {
	d, err := time.ParseDuration(os.Getenv("SECOND_OPINION_TIMEOUT"))
	if err != nil || d <= 0 {
		return 8 * time.Second
	}
	return d
}

// ReportRecentCorrections is how many corrections the report lists.
// Defaults to 5 if not set.
func ReportRecentCorrections() int {
	n, err := strconv.Atoi(os.Getenv("REPORT_RECENT_CORRECTIONS"))
	if err != nil || n <= 0 {
		return 5
	}
	return n
}

// APIKey protects the /v1 routes when set.
func APIKey() string {
	return os.Getenv("API_KEY")
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	return envOr("LOG_LEVEL", "info")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
