package config

import (
	"fmt"
	"net/url"
	"time"
)

// BackendConfig describes how to reach the dispatch backend API.
type BackendConfig struct {
	// BaseURL is the root of the backend, e.g. "http://localhost:5000".
	BaseURL string `json:"base_url"`
	// TimeoutSeconds bounds every request to the backend.
	TimeoutSeconds int `json:"timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *BackendConfig) SetDefaults() {
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 10
	}
}

// Validate checks mandatory fields.
func (c BackendConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("backend.base_url: %w", err)
	}
	return nil
}

// Timeout returns the request timeout as a duration.
func (c BackendConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
