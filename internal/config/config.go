package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix is the environment variable prefix, as in IPSPATCH_LOG_LEVEL.
const Prefix = "IPSPATCH"

var (
	ErrInvalidLogFormat    = errors.New("log_format must be 'json' or 'console'")
	ErrInvalidLogLevel     = errors.New("log_level must be debug, info, warn, or error")
	ErrInvalidWorkers      = errors.New("workers must be positive")
	ErrInvalidBackupSuffix = errors.New("backup_suffix cannot be empty when backups are enabled")
)

type Config struct {
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"LOG_FORMAT" default:"console"`
	Backup       bool   `envconfig:"BACKUP" default:"false"`
	BackupSuffix string `envconfig:"BACKUP_SUFFIX" default:".bak"`
	Workers      int    `envconfig:"WORKERS" default:"4"`
	MetricsFile  string `envconfig:"METRICS_FILE"`
}

// Load reads the given .env files, or ./.env if none are named, and then the
// environment. Missing .env files are ignored.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("loading .env: %w", err)
		}
	}
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("processing environment: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func Validate(cfg *Config) error {
	switch cfg.LogFormat {
	case "json", "console":
	default:
		return ErrInvalidLogFormat
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}
	if cfg.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if cfg.Backup && cfg.BackupSuffix == "" {
		return ErrInvalidBackupSuffix
	}
	return nil
}
