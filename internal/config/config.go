package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
	Export   ExportConfig   `yaml:"export" envconfig:"EXPORT"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS" default:"100"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST" default:"50"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"stdout"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
}

// PipelineConfig contains derivation pipeline configuration. The churn
// multipliers are heuristics rather than tuned constants, so they are
// exposed here instead of being hard-coded in the engine.
type PipelineConfig struct {
	DataDir string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`

	ChurnCautionMultiplier float64 `yaml:"churn_caution_multiplier" envconfig:"CHURN_CAUTION_MULTIPLIER" default:"1"`
	ChurnAtRiskMultiplier  float64 `yaml:"churn_at_risk_multiplier" envconfig:"CHURN_AT_RISK_MULTIPLIER" default:"2"`
	ChurnChurnedMultiplier float64 `yaml:"churn_churned_multiplier" envconfig:"CHURN_CHURNED_MULTIPLIER" default:"3"`
	// FallbackIntervalDays is used as the mean purchase interval when no
	// customer in the dataset has a second order.
	FallbackIntervalDays float64 `yaml:"fallback_interval_days" envconfig:"FALLBACK_INTERVAL_DAYS" default:"30"`
}

// ExportConfig contains CSV export configuration.
type ExportConfig struct {
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" default:"exports"`
}

// Load loads configuration from a .env file (if present), environment
// variables, and an optional YAML config file. Environment variables win
// over the file.
func Load() (*Config, error) {
	// Optional .env for local development; absence is not an error.
	_ = godotenv.Load()

	var cfg Config
	if path := configFilePath(); path != "" {
		loaded, err := loadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = *loaded
	}

	if err := envconfig.Process("ORDERLENS", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate checks invariants the defaults cannot guarantee once YAML or
// environment overrides are applied.
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Pipeline.DataDir == "" {
		return fmt.Errorf("pipeline data directory must be set")
	}

	if c.Pipeline.ChurnCautionMultiplier <= 0 ||
		c.Pipeline.ChurnAtRiskMultiplier <= c.Pipeline.ChurnCautionMultiplier ||
		c.Pipeline.ChurnChurnedMultiplier <= c.Pipeline.ChurnAtRiskMultiplier {
		return fmt.Errorf("churn multipliers must be positive and strictly increasing: %v/%v/%v",
			c.Pipeline.ChurnCautionMultiplier,
			c.Pipeline.ChurnAtRiskMultiplier,
			c.Pipeline.ChurnChurnedMultiplier)
	}

	if c.Pipeline.FallbackIntervalDays <= 0 {
		return fmt.Errorf("fallback interval days must be positive: %v", c.Pipeline.FallbackIntervalDays)
	}

	return nil
}

// configFilePath returns the first existing config file from the common
// locations, or "" when configuration comes from the environment only.
func configFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RateLimitRPS:    100,
			RateLimitBurst:  50,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "stdout",
			FilePath: "logs/app.log",
		},
		Pipeline: PipelineConfig{
			DataDir:                "data",
			ChurnCautionMultiplier: 1,
			ChurnAtRiskMultiplier:  2,
			ChurnChurnedMultiplier: 3,
			FallbackIntervalDays:   30,
		},
		Export: ExportConfig{
			OutputDir: "exports",
		},
	}
}
