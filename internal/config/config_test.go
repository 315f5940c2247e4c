package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, int64(42), cfg.Training.Seed)
	assert.Equal(t, 100, cfg.Training.Estimators)
	assert.Equal(t, 5, cfg.Training.MaxDepth)
	assert.InDelta(t, 0.1, cfg.Training.LearningRate, 1e-9)
	assert.InDelta(t, 0.2, cfg.Training.HoldoutFraction, 1e-9)
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	t.Setenv("LOTCLI_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.True(t, filepath.IsAbs(cfg.Paths.ModelsDir))
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
training:
  seed: 7
  estimators: 50
paths:
  models_dir: custom-models
`), 0o644))
	t.Setenv("LOTCLI_CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, int64(7), cfg.Training.Seed)
	assert.Equal(t, 50, cfg.Training.Estimators)
	// Unset fields keep defaults.
	assert.Equal(t, 5, cfg.Training.MaxDepth)
	assert.Equal(t, "custom-models", filepath.Base(cfg.Paths.ModelsDir))
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o644))
	t.Setenv("LOTCLI_CONFIG_FILE", path)
	t.Setenv("LOTCLI_SERVER_PORT", "7070")
	t.Setenv("LOTCLI_TRAINING_ESTIMATORS", "25")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 25, cfg.Training.Estimators)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad port", "server:\n  port: 0\n"},
		{"bad log level", "logging:\n  level: verbose\n"},
		{"bad learning rate", "training:\n  learning_rate: 2.0\n"},
		{"bad holdout", "training:\n  holdout_fraction: 1.0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))
			t.Setenv("LOTCLI_CONFIG_FILE", path)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
