// Package config loads CLI settings from the environment and an optional .env
// file.
package config

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	ArtifactDir string `env:"SENTIMENT_ARTIFACT_DIR" default:"models"`
	TrainData   string `env:"SENTIMENT_TRAIN_DATA" default:"train.csv"`
	TestData    string `env:"SENTIMENT_TEST_DATA" default:"test.csv"`
	LexiconPath string `env:"SENTIMENT_LEXICON"`

	Seed        int64   `env:"SENTIMENT_SEED" default:"42"`
	MaxFeatures int     `env:"SENTIMENT_MAX_FEATURES" default:"10000"`
	Folds       int     `env:"SENTIMENT_FOLDS" default:"3"`
	TestSplit   float64 `env:"SENTIMENT_TEST_SPLIT" default:"0.2"`
	Parallelism int     `env:"SENTIMENT_PARALLELISM" default:"0"`

	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the training settings. Flags may change a loaded Config, so
// commands call it again after parsing them.
func (cfg *Config) Validate() error {
	if cfg.ArtifactDir == "" {
		return errors.New("SENTIMENT_ARTIFACT_DIR is required")
	}
	if cfg.MaxFeatures <= 0 {
		return fmt.Errorf("SENTIMENT_MAX_FEATURES must be positive, got %d", cfg.MaxFeatures)
	}
	if cfg.Folds < 2 {
		return fmt.Errorf("SENTIMENT_FOLDS must be at least 2, got %d", cfg.Folds)
	}
	if cfg.TestSplit <= 0 || cfg.TestSplit >= 1 {
		return fmt.Errorf("SENTIMENT_TEST_SPLIT must be between 0 and 1, got %g", cfg.TestSplit)
	}
	if cfg.Parallelism < 0 {
		return fmt.Errorf("SENTIMENT_PARALLELISM must not be negative, got %d", cfg.Parallelism)
	}
	return nil
}
