// Package config defines configuration parsing and helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"dev"`

	// Provider credentials. Only the keys for the selected providers are
	// required; Load does not check presence, the registry does.
	DeepSeekAPIKey string `env:"DEEPSEEK_API_KEY"`
	ClaudeAPIKey   string `env:"CLAUDE_API_KEY"`
	GeminiAPIKey   string `env:"GEMINI_API_KEY"`
	OpenAIAPIKey   string `env:"OPENAI_API_KEY"`
	GLMAPIKey      string `env:"GLM_API_KEY"`

	DeepSeekBaseURL string `env:"DEEPSEEK_BASE_URL" envDefault:"https://api.deepseek.com/v1"`
	ClaudeBaseURL   string `env:"CLAUDE_BASE_URL" envDefault:"https://api.anthropic.com"`
	GeminiBaseURL   string `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta"`
	OpenAIBaseURL   string `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	GLMBaseURL      string `env:"GLM_BASE_URL" envDefault:"https://open.bigmodel.cn/api/paas/v4"`

	DeepSeekModel string `env:"DEEPSEEK_MODEL" envDefault:"deepseek-chat"`
	ClaudeModel   string `env:"CLAUDE_MODEL" envDefault:"claude-3-5-sonnet-latest"`
	GeminiModel   string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
	OpenAIModel   string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	GLMModel      string `env:"GLM_MODEL" envDefault:"glm-4-flash"`

	// ExtractorProvider runs the cheap screening/extraction calls;
	// AnalyzerProvider runs the heavier market and match calls and serves
	// as the cross-provider fallback for extraction.
	ExtractorProvider string `env:"EXTRACTOR_PROVIDER" envDefault:"deepseek" validate:"oneof=deepseek claude gemini openai glm"`
	AnalyzerProvider  string `env:"ANALYZER_PROVIDER" envDefault:"deepseek" validate:"oneof=deepseek claude gemini openai glm"`

	AITemperature        float64       `env:"AI_TEMPERATURE" envDefault:"0.2" validate:"gte=0,lte=2"`
	AIMaxTokens          int           `env:"AI_MAX_TOKENS" envDefault:"2000" validate:"gt=0"`
	AICallTimeout        time.Duration `env:"AI_CALL_TIMEOUT" envDefault:"30s"`
	AIReasoningTimeout   time.Duration `env:"AI_REASONING_TIMEOUT" envDefault:"120s"`
	// AIMinInterval throttles each provider client so that worker
	// concurrency does not trip upstream 429s.
	AIMinInterval time.Duration `env:"AI_MIN_INTERVAL" envDefault:"200ms"`

	// AI Backoff Configuration
	AIBackoffMaxElapsedTime  time.Duration `env:"AI_BACKOFF_MAX_ELAPSED_TIME" envDefault:"60s"`
	AIBackoffInitialInterval time.Duration `env:"AI_BACKOFF_INITIAL_INTERVAL" envDefault:"2s"`
	AIBackoffMaxInterval     time.Duration `env:"AI_BACKOFF_MAX_INTERVAL" envDefault:"20s"`
	AIBackoffMultiplier      float64       `env:"AI_BACKOFF_MULTIPLIER" envDefault:"1.5"`

	// Pipeline flags
	ScreeningMode bool    `env:"SCREENING_MODE" envDefault:"true"`
	StageWorkers  int     `env:"STAGE_WORKERS" envDefault:"4" validate:"gte=1,lte=32"`
	ProgressEvery int     `env:"PROGRESS_EVERY" envDefault:"10" validate:"gte=1"`
	MinScore      float64 `env:"MIN_SCORE" envDefault:"0" validate:"gte=0,lte=10"`

	// ScreeningCuesFile optionally overrides the embedded cue-phrase lists
	// used by the lexical screening heuristic.
	ScreeningCuesFile string `env:"SCREENING_CUES_FILE"`

	OTLPEndpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	OTELServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"ai-job-analyzer"`
}

// Load parses environment variables into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("op=config.Load: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("op=config.Load: %w", err)
	}
	return cfg, nil
}

// IsDev reports whether the app is running in development mode.
func (c Config) IsDev() bool { return strings.ToLower(c.AppEnv) == "dev" }

// IsProd reports whether the app is running in production mode.
func (c Config) IsProd() bool { return strings.ToLower(c.AppEnv) == "prod" }

// IsTest reports whether the app is running in test mode.
func (c Config) IsTest() bool { return strings.ToLower(c.AppEnv) == "test" }

// GetAIBackoffConfig returns backoff configuration appropriate for the current environment.
// In test environments, uses much shorter timeouts for faster test execution.
func (c Config) GetAIBackoffConfig() (maxElapsedTime, initialInterval, maxInterval time.Duration, multiplier float64) {
	if c.IsTest() {
		return 2 * time.Second, 50 * time.Millisecond, 500 * time.Millisecond, 2.0
	}
	return c.AIBackoffMaxElapsedTime, c.AIBackoffInitialInterval, c.AIBackoffMaxInterval, c.AIBackoffMultiplier
}
