package main

import (
	"github.com/rs/zerolog"

	"github.com/zephyrtronium/ips/internal/config"
	"github.com/zephyrtronium/ips/internal/logging"
	"github.com/zephyrtronium/ips/internal/metrics"
	"github.com/zephyrtronium/ips/internal/patcher"
)

// env is the state shared by every subcommand.
type env struct {
	cfg     *config.Config
	log     zerolog.Logger
	metrics *metrics.Metrics
}

func loadEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := logging.NewLogger(logging.Config{Format: cfg.LogFormat, Level: cfg.LogLevel})
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log, metrics: metrics.New()}, nil
}

func (e *env) patcher(backup, verbose bool) *patcher.Patcher {
	log := e.log
	if verbose {
		log = log.Level(zerolog.DebugLevel)
	}
	return &patcher.Patcher{
		Log:          log,
		Metrics:      e.metrics,
		Backup:       backup || e.cfg.Backup,
		BackupSuffix: e.cfg.BackupSuffix,
	}
}

// flush writes the metrics textfile if one is configured.
func (e *env) flush() {
	if e.cfg.MetricsFile == "" {
		return
	}
	if err := e.metrics.WriteTextfile(e.cfg.MetricsFile); err != nil {
		e.log.Warn().Err(err).Str("path", e.cfg.MetricsFile).Msg("unable to write metrics")
	}
}
