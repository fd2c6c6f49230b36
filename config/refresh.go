package config

import (
	"fmt"
	"time"
)

// RefreshConfig controls the background refresh cycle of the live views.
type RefreshConfig struct {
	// IntervalSeconds is the period of the background refresh.
	IntervalSeconds int `json:"interval_seconds"`
}

// SetDefaults applies sane defaults.
func (c *RefreshConfig) SetDefaults() {
	if c.IntervalSeconds == 0 {
		c.IntervalSeconds = 30
	}
}

// Validate checks the refresh settings.
func (c RefreshConfig) Validate() error {
	if c.IntervalSeconds < 0 {
		return fmt.Errorf("refresh.interval_seconds must not be negative")
	}
	return nil
}

// Interval returns the refresh period as a duration.
func (c RefreshConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}
