package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/siren/internal/config"
)

func TestLoadEnv_FindsParentDotEnv(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".env", "SIREN_EPOCHS=42\nSIREN_OPTIMIZER=sgd\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o750))
	t.Chdir(nested)

	env, err := config.LoadEnv()
	require.NoError(t, err)
	epochs, ok := env.Lookup(config.EnvEpochs)
	require.True(t, ok)
	assert.Equal(t, "42", epochs)

	resolved, err := filepath.EvalSymlinks(filepath.Join(root, ".env"))
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(env.Path())
	require.NoError(t, err)
	assert.Equal(t, resolved, got)

	cfg := config.DefaultTrain()
	require.NoError(t, cfg.ApplyEnv(env))
	assert.Equal(t, 42, cfg.Epochs)
	assert.Equal(t, "sgd", cfg.Optimizer)
}

func TestLoadEnv_NoFile(t *testing.T) {
	t.Chdir(t.TempDir())

	env, err := config.LoadEnv()
	require.NoError(t, err)
	assert.Empty(t, env.Path())

	_, ok := env.Lookup("SIREN_DOES_NOT_EXIST")
	assert.False(t, ok)
}

func TestApplyEnv_ProcessEnvWins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "SIREN_LR=0.5\n")
	t.Chdir(dir)
	t.Setenv(config.EnvLR, "0.25")
	t.Setenv(config.EnvBatchSize, "64")
	t.Setenv(config.EnvSeed, "-7")
	t.Setenv(config.EnvMomentum, "0.9")
	t.Setenv(config.EnvLogEvery, "0")

	env, err := config.LoadEnv()
	require.NoError(t, err)

	cfg := config.DefaultTrain()
	require.NoError(t, cfg.ApplyEnv(env))
	assert.InDelta(t, 0.25, cfg.LR, 1e-9)
	assert.Equal(t, 64, cfg.BatchSize)
	assert.Equal(t, int64(-7), cfg.Seed)
	assert.InDelta(t, 0.9, cfg.Momentum, 1e-6)
	assert.Equal(t, 0, cfg.LogEvery)
	assert.Equal(t, 1500, cfg.Epochs)
}

func TestApplyEnv_BadValue(t *testing.T) {
	t.Setenv(config.EnvEpochs, "ten")

	cfg := config.DefaultTrain()
	err := cfg.ApplyEnv(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.EnvEpochs)
}
