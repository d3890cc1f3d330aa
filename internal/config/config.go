package config

import (
	"os"
	"strconv"
	"time"

	"datapulse/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	LLM       LLMConfig
	Analysis  AnalysisConfig
	Profiling ProfilingConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL string
}

// LLMConfig holds narrative generation settings
type LLMConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// AnalysisConfig holds the pipeline tuning knobs. Zero values are replaced
// with defaults by the pipeline options constructor.
type AnalysisConfig struct {
	ConcentrationThreshold      float64
	ConcentrationMinDistinct    int
	ConcentrationMinRows        int
	AnomalyScoreCutoff          float64
	AnomalyMinRows              int
	CategoricalCardinalityRatio float64
	NumericBins                 int
	OverallTimeout              time.Duration
}

// ProfilingConfig holds the ops/debug listener settings
type ProfilingConfig struct {
	Enabled bool
	Port    string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envOr("PORT", "8080"),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		LLM: LLMConfig{
			APIKey:      os.Getenv("OPENAI_API_KEY"),
			BaseURL:     os.Getenv("OPENAI_BASE_URL"),
			Model:       envOr("OPENAI_MODEL", "gpt-4o-mini"),
			MaxTokens:   envInt("OPENAI_MAX_TOKENS", 1024),
			Temperature: envFloat("OPENAI_TEMPERATURE", 0.7),
			Timeout:     envDuration("OPENAI_TIMEOUT", 30*time.Second),
		},
		Analysis: AnalysisConfig{
			ConcentrationThreshold:      envFloat("CONCENTRATION_THRESHOLD", 0.8),
			ConcentrationMinDistinct:    envInt("CONCENTRATION_MIN_DISTINCT", 2),
			ConcentrationMinRows:        envInt("CONCENTRATION_MIN_ROWS", 10),
			AnomalyScoreCutoff:          envFloat("ANOMALY_SCORE_CUTOFF", 0.7),
			AnomalyMinRows:              envInt("ANOMALY_MIN_ROWS", 20),
			CategoricalCardinalityRatio: envFloat("CATEGORICAL_CARDINALITY_RATIO", 0.5),
			NumericBins:                 envInt("NUMERIC_BINS", 10),
			OverallTimeout:              envDuration("ANALYSIS_TIMEOUT", 2*time.Minute),
		},
		Profiling: ProfilingConfig{
			Enabled: os.Getenv("PROFILING_ENABLED") == "true",
			Port:    envOr("PROFILING_PORT", "6060"),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Analysis.ConcentrationThreshold <= 0 || cfg.Analysis.ConcentrationThreshold > 1 {
		return errors.ConfigInvalid("CONCENTRATION_THRESHOLD must be in (0, 1]")
	}
	if cfg.Analysis.AnomalyScoreCutoff <= 0 || cfg.Analysis.AnomalyScoreCutoff > 1 {
		return errors.ConfigInvalid("ANOMALY_SCORE_CUTOFF must be in (0, 1]")
	}
	if cfg.Analysis.AnomalyMinRows < 2 {
		return errors.ConfigInvalid("ANOMALY_MIN_ROWS must be at least 2")
	}
	if cfg.Analysis.OverallTimeout <= 0 {
		return errors.ConfigInvalid("ANALYSIS_TIMEOUT must be positive")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
