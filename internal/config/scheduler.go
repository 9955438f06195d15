package config

import (
	"sync"
	"time"
)

type SchedulerConfig struct {
	Enabled     bool
	Interval    time.Duration
	HorizonDays int
	// MaxHorizonDays caps horizons requested through the API.
	MaxHorizonDays int
}

var (
	schedulerConfig *SchedulerConfig
	schedulerOnce   sync.Once
)

func LoadSchedulerConfig() *SchedulerConfig {
	schedulerOnce.Do(func() {
		schedulerConfig = &SchedulerConfig{
			Enabled:        getEnvAsBool("SCHEDULER_ENABLED", true),
			Interval:       getEnvAsDuration("SCHEDULER_INTERVAL", time.Hour),
			HorizonDays:    getEnvAsInt("SCHEDULER_HORIZON_DAYS", 14),
			MaxHorizonDays: getEnvAsInt("SCHEDULER_MAX_HORIZON_DAYS", 90),
		}
	})
	return schedulerConfig
}
