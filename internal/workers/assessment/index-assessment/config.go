// internal/workers/assessment/index-assessment/config.go
package indexassessment

import (
	"fmt"
	"time"

	"assessment-workers/internal/common/config"
)

const DefaultIndex = "assessments"

type Config struct {
	Enabled       bool
	MaxJobsActive int
	Timeout       time.Duration
	Index         string
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       15 * time.Second,
		Index:         DefaultIndex,
	}
}

func LoadConfig(wc config.WorkerConfig, index string) *Config {
	cfg := DefaultConfig()
	cfg.Enabled = wc.Enabled
	if wc.MaxJobsActive > 0 {
		cfg.MaxJobsActive = wc.MaxJobsActive
	}
	if wc.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wc.Timeout)
	}
	if index != "" {
		cfg.Index = index
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
	if c.Index == "" {
		return fmt.Errorf("index is required")
	}
	return nil
}
