package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

func lookupMap(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := load(lookupMap(nil), zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 6053, cfg.Port)
	assert.Equal(t, []string{"okay_nabu"}, cfg.WakeWords)
}

func TestFileThenEnvironment(t *testing.T) {
	path := writeFile(t, "satellite.yaml", `
name: Kitchen
port: 7000
wake_words: [hey_jarvis]
duck_multiplier: 0.2
repeat_timer_sound: false
`)

	cfg, err := load(lookupMap(map[string]string{
		"SATELLITE_CONFIG":     path,
		"SATELLITE_PORT":       "6054",
		"SATELLITE_STOP_WORDS": "stop, , halt",
		"SATELLITE_MUTED":      "true",
		"SATELLITE_WAKE_SOUND": "",
		"DIAG_JWT_SECRET":      "s3cret",
	}), zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.Equal(t, "Kitchen", cfg.Name)
	assert.Equal(t, 6054, cfg.Port)
	assert.Equal(t, []string{"hey_jarvis"}, cfg.WakeWords)
	assert.Equal(t, []string{"stop", "halt"}, cfg.StopWords)
	assert.True(t, cfg.Muted)
	assert.InDelta(t, 0.2, cfg.DuckMultiplier, 1e-6)
	assert.False(t, cfg.RepeatTimerSound)
	assert.Equal(t, Default().WakeSound, cfg.WakeSound, "empty values keep the default")
	assert.Equal(t, "s3cret", cfg.DiagJWTSecret)

	settings := cfg.Settings()
	assert.Equal(t, "Kitchen", settings.Name)
	assert.True(t, settings.Muted)
	assert.Equal(t, cfg.TimerSound, settings.TimerFinishedSound)
	assert.Empty(t, settings.MACAddress)
}

func TestInvalidValues(t *testing.T) {
	tests := map[string]map[string]string{
		"port not a number": {"SATELLITE_PORT": "abc"},
		"port out of range": {"SATELLITE_PORT": "70000"},
		"bad bool":          {"SATELLITE_MUTED": "sometimes"},
		"duck above one":    {"SATELLITE_DUCK_MULTIPLIER": "1.5"},
		"log level":         {"LOG_LEVEL": "loud"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := load(lookupMap(env), zaptest.NewLogger(t))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestMissingConfigFile(t *testing.T) {
	_, err := load(lookupMap(map[string]string{
		"SATELLITE_CONFIG": filepath.Join(t.TempDir(), "missing.yaml"),
	}), zaptest.NewLogger(t))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadDotEnv(t *testing.T) {
	envFile := writeFile(t, ".env", "SATELLITE_NAME=Living Room\nSATELLITE_PORT=6100\n")
	t.Setenv("SATELLITE_PORT", "6200")

	cfg, err := Load(zaptest.NewLogger(t), envFile, filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)

	assert.Equal(t, "Living Room", cfg.Name)
	assert.Equal(t, 6200, cfg.Port, "the environment wins over .env")
}

func TestNewLogger(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "debug"
	logger, err := cfg.NewLogger()
	require.NoError(t, err)
	assert.NotNil(t, logger)

	cfg.LogLevel = "warn"
	logger, err = cfg.NewLogger()
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}
