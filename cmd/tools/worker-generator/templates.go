// cmd/tools/worker-generator/templates.go
package main

const configTemplate = `// internal/workers/assessment/{{ .ID }}/config.go
package {{ .PackageName }}

import (
	"fmt"
	"time"

	"assessment-workers/internal/common/config"
)

type Config struct {
	Enabled       bool
	MaxJobsActive int
	Timeout       time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       {{ .TimeoutExpr }},
	}
}

func LoadConfig(wc config.WorkerConfig) *Config {
	cfg := DefaultConfig()
	cfg.Enabled = wc.Enabled
	if wc.MaxJobsActive > 0 {
		cfg.MaxJobsActive = wc.MaxJobsActive
	}
	if wc.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wc.Timeout)
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
	return nil
}
`

const modelsTemplate = `// internal/workers/assessment/{{ .ID }}/models.go
package {{ .PackageName }}

type Input struct {
{{- with parseSchema .InputSchema }}
{{ generateStructFields . }}
{{- end }}
}

type Output struct {
	Status string ` + "`json:\"status\"`" + `
{{- with parseSchema .OutputSchema }}
{{ generateStructFields . }}
{{- end }}
}
`

const handlerTemplate = `// internal/workers/assessment/{{ .ID }}/handler.go
package {{ .PackageName }}

import (
	"context"
	"encoding/json"
	"time"

	"assessment-workers/internal/common/errors"
	"assessment-workers/internal/common/logger"
	"assessment-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "{{ .TaskType }}"

// Handler runs the {{ .DisplayName }} task.{{ with .ErrorCodes }} Error codes: {{ join . ", " }}.{{ end }}
type Handler struct {
	config       *Config
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		logger:       log,
		errorHandler: errors.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		metrics.ObserveJob(TaskType, start, string(errors.ErrCodeMissingAssessmentField))
		h.errorHandler.HandleJobError(context.Background(), client, job, errors.NewMissingAssessmentFieldError("variables"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		metrics.ObserveJob(TaskType, start, string(errors.Normalize(err).Code))
		h.errorHandler.HandleJobError(context.Background(), client, job, err)
		return
	}

	h.completeJob(client, job, output)
	metrics.ObserveJob(TaskType, start, "")
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Output{Status: "success"}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	h.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey": job.Key,
	})
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
`

const testTemplate = `// internal/workers/assessment/{{ .ID }}/handler_test.go
package {{ .PackageName }}

import (
	"context"
	"testing"

	"assessment-workers/internal/common/config"
	"assessment-workers/internal/common/logger"
	"assessment-workers/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	cfg := LoadConfig(config.WorkerConfig{Enabled: true, MaxJobsActive: 3, Timeout: 1500})
	assert.Equal(t, 3, cfg.MaxJobsActive)
	assert.NoError(t, cfg.Validate())
}

func TestExecute(t *testing.T) {
	h := NewHandler(DefaultConfig(), logger.NewTestLogger(t))

	output, err := h.Execute(context.Background(), &Input{})
	require.NoError(t, err)
	assert.Equal(t, "success", output.Status)
}

func TestHandle_CompletesJob(t *testing.T) {
	h := NewHandler(DefaultConfig(), logger.NewTestLogger(t))
	client := testutil.NewJobClient()

	h.Handle(client, testutil.NewJob(1, TaskType, map[string]interface{}{}))

	require.Len(t, client.Completed(), 1)
	assert.Equal(t, "success", client.CompletedVariables()["status"])
}
`
