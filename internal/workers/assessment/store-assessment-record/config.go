// internal/workers/assessment/store-assessment-record/config.go
package storeassessmentrecord

import (
	"fmt"
	"time"

	"assessment-workers/internal/common/config"
)

type Config struct {
	Enabled       bool
	MaxJobsActive int
	Timeout       time.Duration

	DedupeEnabled bool
	DedupeTTL     time.Duration
	// FailOnDuplicate throws DUPLICATE_SUBMISSION instead of completing with duplicate=true.
	FailOnDuplicate bool
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30 * time.Second,
		DedupeTTL:     24 * time.Hour,
	}
}

func LoadConfig(wc config.WorkerConfig, dedupe config.DedupeConfig) *Config {
	cfg := DefaultConfig()
	cfg.Enabled = wc.Enabled
	if wc.MaxJobsActive > 0 {
		cfg.MaxJobsActive = wc.MaxJobsActive
	}
	if wc.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wc.Timeout)
	}
	cfg.DedupeEnabled = dedupe.Enabled
	if dedupe.TTL > 0 {
		cfg.DedupeTTL = time.Duration(dedupe.TTL) * time.Second
	}
	return cfg
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	if c.DedupeEnabled && c.DedupeTTL <= 0 {
		return fmt.Errorf("dedupe ttl must be positive")
	}
	return nil
}
