package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "models", cfg.ArtifactDir)
	assert.Equal(t, "train.csv", cfg.TrainData)
	assert.Equal(t, "test.csv", cfg.TestData)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, 10000, cfg.MaxFeatures)
	assert.Equal(t, 3, cfg.Folds)
	assert.Equal(t, 0.2, cfg.TestSplit)
	assert.Equal(t, 0, cfg.Parallelism)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoad_CustomValues(t *testing.T) {
	t.Setenv("SENTIMENT_ARTIFACT_DIR", "/var/lib/sentiment")
	t.Setenv("SENTIMENT_SEED", "7")
	t.Setenv("SENTIMENT_MAX_FEATURES", "500")
	t.Setenv("SENTIMENT_TEST_SPLIT", "0.25")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/sentiment", cfg.ArtifactDir)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, 500, cfg.MaxFeatures)
	assert.Equal(t, 0.25, cfg.TestSplit)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"zero max features", "SENTIMENT_MAX_FEATURES", "0", "SENTIMENT_MAX_FEATURES must be positive, got 0"},
		{"one fold", "SENTIMENT_FOLDS", "1", "SENTIMENT_FOLDS must be at least 2, got 1"},
		{"split too large", "SENTIMENT_TEST_SPLIT", "1.5", "SENTIMENT_TEST_SPLIT must be between 0 and 1, got 1.5"},
		{"negative parallelism", "SENTIMENT_PARALLELISM", "-2", "SENTIMENT_PARALLELISM must not be negative, got -2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestLoad_MalformedNumber(t *testing.T) {
	t.Setenv("SENTIMENT_SEED", "forty-two")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load environment variables")
}
