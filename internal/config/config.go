package config

import (
	"errors"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	CorpusDir      string `env:"CORPUS_DIR"`
	DictionaryPath string `env:"DICTIONARY_PATH"`
	SpeakerPolicy  string `env:"SPEAKER_POLICY"`
	Workers        int    `env:"WORKERS" envDefault:"0"` // 0 = one worker per CPU

	OutputDir       string `env:"OUTPUT_DIR"`
	BackupOutputDir string `env:"BACKUP_OUTPUT_DIR"`
	SnapshotPath    string `env:"SNAPSHOT_PATH"`

	Watch         bool          `env:"WATCH" envDefault:"false"`
	WatchDebounce time.Duration `env:"WATCH_DEBOUNCE" envDefault:"500ms"`

	HTTPAddr    string        `env:"HTTP_ADDR" envDefault:":8080"`
	ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"5s"`
	// WriteTimeout 0 disables the write deadline so SSE streams stay open.
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"0"`
	IdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`

	AuthToken string `env:"AUTH_TOKEN"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
}

// Overrides holds CLI flag values that take priority over env vars.
type Overrides struct {
	EnvFile        string
	CorpusDir      string
	DictionaryPath string
	SpeakerPolicy  string
	Workers        int
	OutputDir      string
	SnapshotPath   string
	HTTPAddr       string
	LogLevel       string
	Watch          bool
}

// Load reads configuration from .env file, environment variables, and CLI overrides.
// Priority: CLI flags > environment variables > .env file > struct defaults.
func Load(overrides Overrides) (*Config, error) {
	// Load .env file (silent if missing)
	envFile := overrides.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		_ = godotenv.Load(envFile)
	}

	// Parse environment variables into config struct
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Apply CLI overrides (non-empty values win)
	if overrides.CorpusDir != "" {
		cfg.CorpusDir = overrides.CorpusDir
	}
	if overrides.DictionaryPath != "" {
		cfg.DictionaryPath = overrides.DictionaryPath
	}
	if overrides.SpeakerPolicy != "" {
		cfg.SpeakerPolicy = overrides.SpeakerPolicy
	}
	if overrides.Workers != 0 {
		cfg.Workers = overrides.Workers
	}
	if overrides.OutputDir != "" {
		cfg.OutputDir = overrides.OutputDir
	}
	if overrides.SnapshotPath != "" {
		cfg.SnapshotPath = overrides.SnapshotPath
	}
	if overrides.HTTPAddr != "" {
		cfg.HTTPAddr = overrides.HTTPAddr
	}
	if overrides.LogLevel != "" {
		cfg.LogLevel = overrides.LogLevel
	}
	if overrides.Watch {
		cfg.Watch = true
	}

	// The corpus root can come from env or flag, but something must set it.
	if cfg.CorpusDir == "" {
		return nil, errors.New("corpus directory not set (CORPUS_DIR or -corpus)")
	}

	return cfg, nil
}
