// Package config loads the satellite configuration. Values come from, in
// increasing priority: built-in defaults, an optional YAML file named by
// SATELLITE_CONFIG, a .env file and the process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/satriahrh/arunika/satellite/domain/entities"
)

// ErrInvalid is returned when a loaded value is out of range.
var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Name             string   `yaml:"name"`
	Port             int      `yaml:"port"`
	WakeWords        []string `yaml:"wake_words"`
	StopWords        []string `yaml:"stop_words"`
	WakeWordDir      string   `yaml:"wake_word_dir"`
	StopWordDir      string   `yaml:"stop_word_dir"`
	Muted            bool     `yaml:"muted"`
	DuckMultiplier   float32  `yaml:"duck_multiplier"`
	WakeSound        string   `yaml:"wake_sound"`
	EnableWakeSound  bool     `yaml:"enable_wake_sound"`
	TimerSound       string   `yaml:"timer_sound"`
	RepeatTimerSound bool     `yaml:"repeat_timer_sound"`
	StateFile        string   `yaml:"state_file"`
	MicCommand       string   `yaml:"mic_command"`
	PlayerCommand    string   `yaml:"player_command"`
	DebugWAVDir      string   `yaml:"debug_wav_dir"`

	DiagAddr      string `yaml:"diag_addr"`
	DiagJWTSecret string `yaml:"diag_jwt_secret"`
	LogLevel      string `yaml:"log_level"`
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	s := entities.DefaultSettings()
	return Config{
		Name:             s.Name,
		Port:             6053,
		WakeWords:        s.WakeWords,
		StopWords:        s.StopWords,
		WakeWordDir:      "wakewords",
		StopWordDir:      "stopwords",
		DuckMultiplier:   s.DuckMultiplier,
		WakeSound:        "sounds/wake_word_triggered.flac",
		EnableWakeSound:  s.EnableWakeSound,
		TimerSound:       "sounds/timer_finished.flac",
		RepeatTimerSound: s.RepeatTimerSound,
		StateFile:        "satellite.yaml",
		PlayerCommand:    "ffplay -nodisp -autoexit -loglevel quiet -volume {volume} {url}",
		DiagAddr:         ":8080",
		LogLevel:         "info",
	}
}

// Load reads the configuration from the process environment. envFiles
// default to ".env"; missing files are skipped.
func Load(logger *zap.Logger, envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}

	dotenv := make(map[string]string)
	for _, file := range envFiles {
		values, err := godotenv.Read(file)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Config{}, fmt.Errorf("read %s: %w", file, err)
		}
		for k, v := range values {
			if _, ok := dotenv[k]; !ok {
				dotenv[k] = v
			}
		}
	}

	return load(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}, logger)
}

func load(lookup func(string) (string, bool), logger *zap.Logger) (Config, error) {
	logger = logger.With(zap.String("component", "config"))
	cfg := Default()

	if path, ok := lookup("SATELLITE_CONFIG"); ok && path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
		logger.Info("Loaded config file", zap.String("path", path))
	}

	env := envReader{lookup: lookup, logger: logger}
	env.setString("SATELLITE_NAME", &cfg.Name)
	env.setInt("SATELLITE_PORT", &cfg.Port)
	env.setList("SATELLITE_WAKE_WORDS", &cfg.WakeWords)
	env.setList("SATELLITE_STOP_WORDS", &cfg.StopWords)
	env.setString("SATELLITE_WAKE_WORD_DIR", &cfg.WakeWordDir)
	env.setString("SATELLITE_STOP_WORD_DIR", &cfg.StopWordDir)
	env.setBool("SATELLITE_MUTED", &cfg.Muted)
	env.setFloat("SATELLITE_DUCK_MULTIPLIER", &cfg.DuckMultiplier)
	env.setString("SATELLITE_WAKE_SOUND", &cfg.WakeSound)
	env.setBool("SATELLITE_ENABLE_WAKE_SOUND", &cfg.EnableWakeSound)
	env.setString("SATELLITE_TIMER_SOUND", &cfg.TimerSound)
	env.setBool("SATELLITE_REPEAT_TIMER_SOUND", &cfg.RepeatTimerSound)
	env.setString("SATELLITE_STATE_FILE", &cfg.StateFile)
	env.setString("SATELLITE_MIC_COMMAND", &cfg.MicCommand)
	env.setString("SATELLITE_PLAYER_COMMAND", &cfg.PlayerCommand)
	env.setString("SATELLITE_DEBUG_WAV_DIR", &cfg.DebugWAVDir)
	env.setString("DIAG_ADDR", &cfg.DiagAddr)
	env.setString("DIAG_JWT_SECRET", &cfg.DiagJWTSecret)
	env.setString("LOG_LEVEL", &cfg.LogLevel)
	if env.err != nil {
		return Config{}, env.err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d", ErrInvalid, c.Port)
	}
	if c.DuckMultiplier < 0 || c.DuckMultiplier > 1 {
		return fmt.Errorf("%w: duck multiplier %v not in [0, 1]", ErrInvalid, c.DuckMultiplier)
	}
	if c.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalid)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log level %q", ErrInvalid, c.LogLevel)
	}
	return nil
}

// Settings returns the initial satellite settings described by c. They are
// used until a persisted settings file exists.
func (c Config) Settings() entities.Settings {
	s := entities.DefaultSettings()
	s.Name = c.Name
	s.WakeWords = append([]string(nil), c.WakeWords...)
	s.StopWords = append([]string(nil), c.StopWords...)
	s.Muted = c.Muted
	s.DuckMultiplier = c.DuckMultiplier
	s.EnableWakeSound = c.EnableWakeSound
	s.WakeSound = c.WakeSound
	s.TimerFinishedSound = c.TimerSound
	s.RepeatTimerSound = c.RepeatTimerSound
	return s
}

// NewLogger builds the process logger: a development logger for debug,
// otherwise a production logger at the configured level.
func (c Config) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	if level == zapcore.DebugLevel {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}

// envReader applies environment overrides and keeps the first parse error.
type envReader struct {
	lookup func(string) (string, bool)
	logger *zap.Logger
	err    error
}

func (e *envReader) value(key string) (string, bool) {
	v, ok := e.lookup(key)
	if !ok || v == "" {
		return "", false
	}
	if strings.Contains(strings.ToLower(key), "secret") {
		e.logger.Debug("Using environment variable", zap.String("key", key), zap.Bool("sensitive", true))
	} else {
		e.logger.Debug("Using environment variable", zap.String("key", key), zap.String("value", v))
	}
	return v, true
}

func (e *envReader) fail(key, v string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("%w: %s=%q: %v", ErrInvalid, key, v, err)
	}
}

func (e *envReader) setString(key string, dst *string) {
	if v, ok := e.value(key); ok {
		*dst = v
	}
}

func (e *envReader) setInt(key string, dst *int) {
	v, ok := e.value(key)
	if !ok {
		return
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, v, err)
		return
	}
	*dst = i
}

func (e *envReader) setBool(key string, dst *bool) {
	v, ok := e.value(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, v, err)
		return
	}
	*dst = b
}

func (e *envReader) setFloat(key string, dst *float32) {
	v, ok := e.value(key)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		e.fail(key, v, err)
		return
	}
	*dst = float32(f)
}

// setList reads a comma separated list. Blank items are dropped.
func (e *envReader) setList(key string, dst *[]string) {
	v, ok := e.value(key)
	if !ok {
		return
	}
	var items []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	*dst = items
}
