// internal/workers/assessment/send-assessment-report/config.go
package sendassessmentreport

import (
	"fmt"
	"time"

	"assessment-workers/internal/common/config"
)

const (
	DefaultFromEmail = "noreply@yourdomain.com"
	DefaultSubject   = "Your Business Exit Readiness Assessment Report"
)

type Config struct {
	Enabled       bool
	MaxJobsActive int
	Timeout       time.Duration
	FromEmail     string
	// Subject is used when neither the job nor the recipient name supply one.
	Subject string
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30 * time.Second,
		FromEmail:     DefaultFromEmail,
		Subject:       DefaultSubject,
	}
}

func LoadConfig(wc config.WorkerConfig, fromEmail, subject string) *Config {
	cfg := DefaultConfig()
	cfg.Enabled = wc.Enabled
	if wc.MaxJobsActive > 0 {
		cfg.MaxJobsActive = wc.MaxJobsActive
	}
	if wc.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wc.Timeout)
	}
	if fromEmail != "" {
		cfg.FromEmail = fromEmail
	}
	if subject != "" {
		cfg.Subject = subject
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
	if c.FromEmail == "" {
		return fmt.Errorf("from_email is required")
	}
	return nil
}
