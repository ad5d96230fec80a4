package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables read by ApplyEnv.
const (
	EnvLR        = "SIREN_LR"
	EnvEpochs    = "SIREN_EPOCHS"
	EnvBatchSize = "SIREN_BATCH_SIZE"
	EnvLogEvery  = "SIREN_LOG_EVERY"
	EnvSeed      = "SIREN_SEED"
	EnvOptimizer = "SIREN_OPTIMIZER"
	EnvMomentum  = "SIREN_MOMENTUM"
)

// dotEnvSearchDepth is how many directories LoadEnv walks up from the working directory.
const dotEnvSearchDepth = 5

// Env resolves variables from the process environment, falling back to a .env file.
type Env struct {
	path string
	vars map[string]string
}

// LoadEnv looks for a .env file in the working directory and up to four parents.
// A missing file is not an error.
func LoadEnv() (*Env, error) {
	env := &Env{vars: map[string]string{}}

	dir, err := os.Getwd()
	if err != nil {
		return env, err
	}

	for range dotEnvSearchDepth {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			vars, err := godotenv.Read(envPath)
			if err != nil {
				return env, fmt.Errorf("failed to read %s: %w", envPath, err)
			}
			env.path, env.vars = envPath, vars
			return env, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return env, nil
}

// Path returns the .env file in use, or "" if none was found.
func (e *Env) Path() string {
	if e == nil {
		return ""
	}
	return e.path
}

// Lookup returns the value of key. The process environment wins over the .env file.
func (e *Env) Lookup(key string) (string, bool) {
	if v, ok := os.LookupEnv(key); ok {
		return v, true
	}
	if e == nil {
		return "", false
	}
	v, ok := e.vars[key]
	return v, ok
}

// ApplyEnv overrides fields of t from SIREN_* variables.
func (t *Train) ApplyEnv(env *Env) error {
	if v, ok := env.Lookup(EnvLR); ok {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvLR, err)
		}
		t.LR = float32(f)
	}
	if v, ok := env.Lookup(EnvMomentum); ok {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMomentum, err)
		}
		t.Momentum = float32(f)
	}
	for _, o := range []struct {
		key string
		dst *int
	}{
		{EnvEpochs, &t.Epochs},
		{EnvBatchSize, &t.BatchSize},
		{EnvLogEvery, &t.LogEvery},
	} {
		if v, ok := env.Lookup(o.key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", o.key, err)
			}
			*o.dst = n
		}
	}
	if v, ok := env.Lookup(EnvSeed); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSeed, err)
		}
		t.Seed = n
	}
	if v, ok := env.Lookup(EnvOptimizer); ok {
		t.Optimizer = v
	}
	return nil
}
