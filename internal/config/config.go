// ABOUTME: Centralized configuration for the conversation store
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the store
type Config struct {
	// Database settings
	DBPath string

	// Streaming write settings
	CoalesceWindow time.Duration
	FlushRetries   int
	RetryDelay     time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		// Defaults
		DBPath:         os.Getenv("CHATSTORE_DB"),
		CoalesceWindow: getEnvDuration("CHATSTORE_COALESCE_WINDOW", 200*time.Millisecond),
		FlushRetries:   getEnvInt("CHATSTORE_FLUSH_RETRIES", 3),
		RetryDelay:     getEnvDuration("CHATSTORE_RETRY_DELAY", 50*time.Millisecond),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.CoalesceWindow < 10*time.Millisecond || c.CoalesceWindow > 5*time.Second {
		return fmt.Errorf("CHATSTORE_COALESCE_WINDOW must be 10ms-5s, got %s", c.CoalesceWindow)
	}
	if c.FlushRetries < 1 || c.FlushRetries > 10 {
		return fmt.Errorf("CHATSTORE_FLUSH_RETRIES must be 1-10, got %d", c.FlushRetries)
	}
	return nil
}

// Helper functions
func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
