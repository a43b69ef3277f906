package config

import (
	"fmt"
	"time"
)

// CollectorConfig holds collection scheduling configuration.
type CollectorConfig struct {
	// Enabled is the initial state of scheduled collection.
	Enabled bool
	// Interval is the period between scheduled passes.
	Interval time.Duration
	// StartFloor bounds the recommended window start from below. Zero means no floor.
	StartFloor time.Time
	// DefaultWindow is the recommended window length before anything is collected.
	DefaultWindow time.Duration
}

// LoadCollectorConfigFromEnv loads collector configuration from environment variables.
func LoadCollectorConfigFromEnv() CollectorConfig {
	return CollectorConfig{
		Enabled:       GetEnvBool("COLLECTOR_ENABLED", false),
		Interval:      GetEnvDuration("COLLECTOR_INTERVAL", time.Hour),
		StartFloor:    GetEnvDate("COLLECTOR_START_FLOOR"),
		DefaultWindow: GetEnvDuration("COLLECTOR_DEFAULT_WINDOW", 7*24*time.Hour),
	}
}

// Validate validates collector configuration.
func (c CollectorConfig) Validate() error {
	if c.Interval < time.Minute {
		return fmt.Errorf("COLLECTOR_INTERVAL must be at least 1m, got %s", c.Interval)
	}
	if c.DefaultWindow <= 0 {
		return fmt.Errorf("DefaultWindow must be greater than 0")
	}
	return nil
}
