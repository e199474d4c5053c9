package scheduler

import (
	"errors"
	"time"

	appconfig "github.com/trash2cash/platform/internal/config"
)

var ErrInvalidConfig = errors.New("scheduler: invalid configuration")

// Config controls scheduler intervals and batch sizes.
type Config struct {
	RunInterval     time.Duration
	BatchSize       int
	BinOfflineAfter time.Duration
	EnabledJobs     []string
}

func DefaultConfig() Config {
	return Config{
		RunInterval:     time.Minute,
		BatchSize:       50,
		BinOfflineAfter: 10 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaults.BatchSize
	}
	if c.BinOfflineAfter <= 0 {
		c.BinOfflineAfter = defaults.BinOfflineAfter
	}
	return c
}

func ProvideConfig(cfg appconfig.Config) Config {
	return Config{
		RunInterval:     cfg.Scheduler.RunInterval,
		BatchSize:       cfg.Scheduler.BatchSize,
		BinOfflineAfter: cfg.Scheduler.BinOfflineAfter,
		EnabledJobs:     cfg.Scheduler.EnabledJobs,
	}
}
