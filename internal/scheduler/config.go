package scheduler

import (
	"time"

	appconfig "github.com/smallbiznis/rebill/internal/config"
)

// Config controls pass cadence and timeouts.
type Config struct {
	// RunInterval is the wall-clock cadence between passes. Passes align
	// to the top of the UTC hour regardless of process start time.
	RunInterval time.Duration

	// StartupDelay is how long to wait after boot before the catch-up
	// pass, so restarts during a deploy do not all fire at once.
	StartupDelay time.Duration

	// GenerationTimeout bounds a single invoice generation attempt.
	GenerationTimeout time.Duration

	// PassTimeout bounds a whole pass across all due configs.
	PassTimeout time.Duration

	// LockTTL bounds the distributed run lock when Redis is configured.
	LockTTL time.Duration
}

func DefaultConfig() Config {
	return Config{
		RunInterval:       time.Hour,
		StartupDelay:      10 * time.Second,
		GenerationTimeout: 30 * time.Second,
		PassTimeout:       30 * time.Minute,
		LockTTL:           time.Hour,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.StartupDelay < 0 {
		c.StartupDelay = defaults.StartupDelay
	}
	if c.GenerationTimeout <= 0 {
		c.GenerationTimeout = defaults.GenerationTimeout
	}
	if c.PassTimeout <= 0 {
		c.PassTimeout = defaults.PassTimeout
	}
	if c.LockTTL <= 0 {
		c.LockTTL = defaults.LockTTL
	}
	return c
}

func ProvideConfig(cfg appconfig.Config) Config {
	return Config{
		RunInterval:       time.Hour,
		StartupDelay:      time.Duration(cfg.Scheduler.StartupDelaySec) * time.Second,
		GenerationTimeout: time.Duration(cfg.Scheduler.GenerationTimeout) * time.Second,
		PassTimeout:       time.Duration(cfg.Scheduler.PassTimeout) * time.Second,
		LockTTL:           time.Duration(cfg.Lock.TTLSeconds) * time.Second,
	}.withDefaults()
}
