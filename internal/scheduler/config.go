package scheduler

import (
	"time"

	"github.com/kofiy77/joyjoy-Locums/internal/config"
)

// Config controls scheduler intervals.
type Config struct {
	RunInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		RunInterval: time.Minute,
	}
}

func (c Config) withDefaults() Config {
	if c.RunInterval <= 0 {
		c.RunInterval = DefaultConfig().RunInterval
	}
	return c
}

func ProvideConfig(cfg config.Config) Config {
	out := Config{}
	if cfg.SchedulerIntervalSeconds > 0 {
		out.RunInterval = time.Duration(cfg.SchedulerIntervalSeconds) * time.Second
	}
	return out.withDefaults()
}
