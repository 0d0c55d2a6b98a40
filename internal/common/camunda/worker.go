// internal/common/camunda/worker.go
package camunda

import (
	"sync"
	"time"

	"assessment-workers/internal/common/config"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"
)

// JobHandler is the signature every worker's Handle method satisfies.
type JobHandler func(client worker.JobClient, job entities.Job)

type CamundaWorker struct {
	worker   worker.JobWorker
	logger   *zap.Logger
	taskType string
}

// StartWorker opens a job worker for taskType. A disabled worker is logged and
// nil is returned.
func StartWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handler JobHandler, log *zap.Logger) *CamundaWorker {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return nil
	}

	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(worker.JobHandler(handler)).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)

	return &CamundaWorker{
		worker:   jobWorker,
		logger:   log,
		taskType: taskType,
	}
}

func (w *CamundaWorker) TaskType() string {
	return w.taskType
}

// Stop closes the job worker and waits for in-flight jobs.
func (w *CamundaWorker) Stop() {
	w.logger.Info("stopping worker", zap.String("taskType", w.taskType))
	w.worker.Close()
	w.worker.AwaitClose()
}

// Group tracks the workers started by the manager so they can be stopped together.
type Group struct {
	mu      sync.Mutex
	workers []*CamundaWorker
}

// Add ignores nil workers so StartWorker results can be passed straight in.
func (g *Group) Add(w *CamundaWorker) {
	if w == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.workers = append(g.workers, w)
}

func (g *Group) TaskTypes() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, 0, len(g.workers))
	for _, w := range g.workers {
		out = append(out, w.taskType)
	}
	return out
}

func (g *Group) Stop() {
	g.mu.Lock()
	workers := g.workers
	g.workers = nil
	g.mu.Unlock()

	var wg sync.WaitGroup
	for _, w := range workers {
		wg.Add(1)
		go func(w *CamundaWorker) {
			defer wg.Done()
			w.Stop()
		}(w)
	}
	wg.Wait()
}
