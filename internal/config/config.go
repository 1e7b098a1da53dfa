// Package config loads configuration from environment variables and an
// optional .env file.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Scorer backend names.
const (
	ScorerKeyword = "keyword"
	ScorerClaude  = "claude"
	ScorerOllama  = "ollama"
)

type Config struct {
	Port     string `env:"PORT" envDefault:"8090"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Auth
	DocrankAPIKey string `env:"DOCRANK_API_KEY"`

	// Relevance scoring
	Scorer           string `env:"SCORER" envDefault:"keyword"`
	AnthropicAPIKey  string `env:"ANTHROPIC_API_KEY"`
	AnthropicModel   string `env:"ANTHROPIC_MODEL" envDefault:"claude-sonnet-4-5-20250929"`
	OllamaURL        string `env:"OLLAMA_URL" envDefault:"http://localhost:11434"`
	OllamaModel      string `env:"OLLAMA_MODEL" envDefault:"llama3.2"`
	ScorerMaxRetries int    `env:"SCORER_MAX_RETRIES" envDefault:"3"`

	MaxConcurrentScore int `env:"MAX_CONCURRENT_SCORE" envDefault:"4"`

	// Worker pool
	WorkerCount  int `env:"WORKER_COUNT" envDefault:"2"`
	MaxQueueSize int `env:"MAX_QUEUE_SIZE" envDefault:"100"`

	// Upload limits
	MaxUploadBytes int64 `env:"MAX_UPLOAD_BYTES" envDefault:"52428800"`

	// Job state
	JobTTL time.Duration `env:"JOB_TTL" envDefault:"1h"`

	// Report shaping
	TopK           int    `env:"TOP_K" envDefault:"5"`
	ParagraphSplit string `env:"PARAGRAPH_SPLIT" envDefault:"normalized"`

	// PDF
	PDFFallbackPdftotext bool `env:"PDF_FALLBACK_PDFTOTEXT" envDefault:"true"`

	// Optional report publishing
	PathstoreURL    string `env:"PATHSTORE_URL"`
	PathstoreAPIKey string `env:"PATHSTORE_API_KEY"`
}

// Load reads .env (if present) and then the environment. Non-positive
// sizes fall back to their defaults.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.Scorer = strings.ToLower(strings.TrimSpace(cfg.Scorer))
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxConcurrentScore <= 0 {
		cfg.MaxConcurrentScore = 1
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.ScorerMaxRetries < 0 {
		cfg.ScorerMaxRetries = 0
	}
	return cfg, nil
}

// Validate checks settings shared by the CLI and the server.
func (c Config) Validate() error {
	switch c.Scorer {
	case ScorerKeyword:
	case ScorerClaude:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for the claude scorer")
		}
	case ScorerOllama:
		if c.OllamaURL == "" {
			return fmt.Errorf("OLLAMA_URL is required for the ollama scorer")
		}
	default:
		return fmt.Errorf("unknown SCORER %q (want keyword, claude or ollama)", c.Scorer)
	}

	switch strings.ToLower(c.ParagraphSplit) {
	case "", "normalized", "raw":
	default:
		return fmt.Errorf("unknown PARAGRAPH_SPLIT %q (want normalized or raw)", c.ParagraphSplit)
	}
	if c.TopK < 0 {
		return fmt.Errorf("TOP_K must not be negative")
	}
	if c.PathstoreURL != "" && c.PathstoreAPIKey == "" {
		return fmt.Errorf("PATHSTORE_API_KEY is required when PATHSTORE_URL is set")
	}
	return nil
}

// ValidateServer adds the checks the HTTP service needs.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.DocrankAPIKey == "" {
		return fmt.Errorf("DOCRANK_API_KEY is required")
	}
	return nil
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
