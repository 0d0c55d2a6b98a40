// internal/workers/assessment/publish-assessment-event/config.go
package publishassessmentevent

import (
	"fmt"
	"time"

	"assessment-workers/internal/common/config"
)

const EventAssessmentProcessed = "assessment.processed"

type Config struct {
	Enabled       bool
	MaxJobsActive int
	Timeout       time.Duration
	TopicARN      string
	EventType     string
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       10 * time.Second,
		EventType:     EventAssessmentProcessed,
	}
}

func LoadConfig(wc config.WorkerConfig, topicARN string) *Config {
	cfg := DefaultConfig()
	cfg.Enabled = wc.Enabled
	if wc.MaxJobsActive > 0 {
		cfg.MaxJobsActive = wc.MaxJobsActive
	}
	if wc.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wc.Timeout)
	}
	cfg.TopicARN = topicARN
	return cfg
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	if c.TopicARN == "" {
		return fmt.Errorf("topic_arn is required")
	}
	return nil
}
