package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration. Precedence is
// defaults, then the YAML file, then LOTCLI_* environment variables.
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Training TrainingConfig `yaml:"training" envconfig:"TRAINING"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL"`
	Format string `yaml:"format" envconfig:"FORMAT"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR"`
	ModelsDir  string `yaml:"models_dir" envconfig:"MODELS_DIR"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR"`
}

// TrainingConfig contains ensemble training hyperparameters
type TrainingConfig struct {
	Seed            int64   `yaml:"seed" envconfig:"SEED"`
	Estimators      int     `yaml:"estimators" envconfig:"ESTIMATORS"`
	MaxDepth        int     `yaml:"max_depth" envconfig:"MAX_DEPTH"`
	LearningRate    float64 `yaml:"learning_rate" envconfig:"LEARNING_RATE"`
	HoldoutFraction float64 `yaml:"holdout_fraction" envconfig:"HOLDOUT_FRACTION"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Paths: PathsConfig{
			DataDir:    "data",
			ModelsDir:  "models",
			ReportsDir: "reports",
		},
		Training: TrainingConfig{
			Seed:            42,
			Estimators:      100,
			MaxDepth:        5,
			LearningRate:    0.1,
			HoldoutFraction: 0.2,
		},
	}
}

// Load builds the configuration: defaults, overlaid by the YAML file when it
// exists, overlaid by LOTCLI_* environment variables.
func Load() (*Config, error) {
	cfg := Default()

	configFile := getConfigFilePath()
	if _, err := os.Stat(configFile); err == nil {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", configFile, err)
		}
	}

	if err := envconfig.Process("LOTCLI", &cfg); err != nil {
		return nil, fmt.Errorf("loading config from env: %w", err)
	}

	if err := cfg.resolvePaths(); err != nil {
		return nil, fmt.Errorf("resolving paths: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// getConfigFilePath returns the config file location, overridable via
// LOTCLI_CONFIG_FILE.
func getConfigFilePath() string {
	if path := os.Getenv("LOTCLI_CONFIG_FILE"); path != "" {
		return path
	}
	return "config.yaml"
}

// resolvePaths makes all configured directories absolute.
func (c *Config) resolvePaths() error {
	for _, dir := range []*string{&c.Paths.DataDir, &c.Paths.ModelsDir, &c.Paths.ReportsDir} {
		abs, err := filepath.Abs(*dir)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", *dir, err)
		}
		*dir = abs
	}
	return nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}
	if c.Training.Estimators < 1 {
		return fmt.Errorf("training estimators must be positive, got %d", c.Training.Estimators)
	}
	if c.Training.MaxDepth < 1 {
		return fmt.Errorf("training max depth must be positive, got %d", c.Training.MaxDepth)
	}
	if c.Training.LearningRate <= 0 || c.Training.LearningRate > 1 {
		return fmt.Errorf("training learning rate must be in (0, 1], got %v", c.Training.LearningRate)
	}
	if c.Training.HoldoutFraction < 0 || c.Training.HoldoutFraction >= 1 {
		return fmt.Errorf("training holdout fraction must be in [0, 1), got %v", c.Training.HoldoutFraction)
	}
	return nil
}
