package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/natefinch/atomic"

	"github.com/CTAG07/dispress/pkg/dissociate"
)

// envPrefix is prepended to every environment override, e.g.
// DISPRESS_INGEST_GROUP_SIZE.
const envPrefix = "DISPRESS_"

// AppConfig holds process-level settings.
type AppConfig struct {
	LogLevel     string `json:"log_level" env:"LOG_LEVEL"`
	LogFile      string `json:"log_file" env:"LOG_FILE"`
	DatabasePath string `json:"database_path" env:"DATABASE_PATH"`
}

// IngestConfig holds the settings used to cut input into fragments.
type IngestConfig struct {
	GroupSize         int    `json:"group_size" env:"GROUP_SIZE"`
	JoinSeparator     string `json:"join_separator" env:"JOIN_SEPARATOR"`
	SentenceDelimiter string `json:"sentence_delimiter" env:"SENTENCE_DELIMITER"`
	TrailingSentinel  bool   `json:"trailing_sentinel" env:"TRAILING_SENTINEL"`
}

// GenerateConfig holds the settings used when producing sentences. An empty
// Separator means the ingest join separator, so generated sentences stay
// comparable with the recorded input.
type GenerateConfig struct {
	Direction   string `json:"direction" env:"DIRECTION"`
	Separator   string `json:"separator" env:"SEPARATOR"`
	MaxSteps    int    `json:"max_steps" env:"MAX_STEPS"`
	PaceMs      int    `json:"pace_ms" env:"PACE_MS"`
	MaxAttempts int    `json:"max_attempts" env:"MAX_ATTEMPTS"`
}

// Config is the top-level configuration struct that aggregates all other configs.
type Config struct {
	App      AppConfig      `json:"app_config" envPrefix:"APP_"`
	Ingest   IngestConfig   `json:"ingest_config" envPrefix:"INGEST_"`
	Generate GenerateConfig `json:"generate_config" envPrefix:"GENERATE_"`
}

// DefaultConfig creates a configuration that behaves like the classic
// Dissociated Press: single words, forward only, one sentence per second.
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			LogLevel:     "info",
			LogFile:      "",
			DatabasePath: "./data/dispress.db",
		},
		Ingest: IngestConfig{
			GroupSize:         1,
			JoinSeparator:     " ",
			SentenceDelimiter: ". ",
			TrailingSentinel:  true,
		},
		Generate: GenerateConfig{
			Direction:   "forward",
			Separator:   "",
			MaxSteps:    255,
			PaceMs:      1000,
			MaxAttempts: 1000,
		},
	}
}

// LoadConfig reads the configuration from a JSON file at the given path.
// If the file doesn't exist, it creates one with default values. Environment
// variables starting with DISPRESS_ are applied on top.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	file, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err = json.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case os.IsNotExist(err):
		var data []byte
		data, err = json.MarshalIndent(config, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal default config: %w", err)
		}
		if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
			// The defaults are still usable without a file on disk.
			fmt.Fprintf(os.Stderr, "warning: failed to write default config file: %v\n", err)
		}
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err = env.ParseWithOptions(config, env.Options{Prefix: envPrefix}); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err = config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the values the library would otherwise reject mid-run.
func (c *Config) Validate() error {
	var errs []error
	if c.Ingest.GroupSize < 1 {
		errs = append(errs, fmt.Errorf("ingest_config.group_size: %w", dissociate.ErrInvalidGroupSize))
	}
	if c.Ingest.JoinSeparator == "" {
		errs = append(errs, fmt.Errorf("ingest_config.join_separator: %w", dissociate.ErrEmptySeparator))
	}
	if _, err := dissociate.ParseDirection(c.Generate.Direction); err != nil {
		errs = append(errs, fmt.Errorf("generate_config.direction: %w", err))
	}
	if c.Generate.MaxSteps < 0 {
		errs = append(errs, fmt.Errorf("generate_config.max_steps: %w", dissociate.ErrInvalidMaxSteps))
	}
	if c.Generate.PaceMs < 0 {
		errs = append(errs, errors.New("generate_config.pace_ms must not be negative"))
	}
	if c.Generate.MaxAttempts < 1 {
		errs = append(errs, errors.New("generate_config.max_attempts must be at least 1"))
	}
	return errors.Join(errs...)
}

// IngestOptions converts the ingest section into library options.
func (c *Config) IngestOptions() []dissociate.IngestOption {
	return []dissociate.IngestOption{
		dissociate.WithGroupSize(c.Ingest.GroupSize),
		dissociate.WithJoinSeparator(c.Ingest.JoinSeparator),
		dissociate.WithTrailingSentinel(c.Ingest.TrailingSentinel),
	}
}

// GenerateOptions converts the generate section into library options.
// Validate must have accepted the config.
func (c *Config) GenerateOptions() []dissociate.GenerateOption {
	direction, _ := dissociate.ParseDirection(c.Generate.Direction)
	return []dissociate.GenerateOption{
		dissociate.WithDirection(direction),
		dissociate.WithSeparator(c.OutputSeparator()),
		dissociate.WithMaxSteps(c.Generate.MaxSteps),
	}
}

// OutputSeparator is the separator placed between generated fragments.
func (c *Config) OutputSeparator() string {
	if c.Generate.Separator == "" {
		return c.Ingest.JoinSeparator
	}
	return c.Generate.Separator
}

// Pace is the delay between two printed sentences.
func (c *Config) Pace() time.Duration {
	return time.Duration(c.Generate.PaceMs) * time.Millisecond
}
