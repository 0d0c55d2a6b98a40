// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"assessment-workers/internal/api"
	"assessment-workers/internal/common/aws"
	"assessment-workers/internal/common/camunda"
	"assessment-workers/internal/common/config"
	"assessment-workers/internal/common/database"
	"assessment-workers/internal/common/logger"
	"assessment-workers/internal/common/observability"
	"assessment-workers/internal/common/spreadsheet"
	"assessment-workers/internal/pipeline"
	"assessment-workers/internal/report"
	"assessment-workers/pkg/registry"

	cas "assessment-workers/internal/workers/assessment/calculate-assessment-scores"
	gar "assessment-workers/internal/workers/assessment/generate-assessment-report"
	ia "assessment-workers/internal/workers/assessment/index-assessment"
	pae "assessment-workers/internal/workers/assessment/publish-assessment-event"
	sar "assessment-workers/internal/workers/assessment/send-assessment-report"
	sto "assessment-workers/internal/workers/assessment/store-assessment-record"
	uas "assessment-workers/internal/workers/assessment/upload-assessment-spreadsheet"
	vad "assessment-workers/internal/workers/assessment/validate-assessment-data"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// dependencies is everything main builds before handlers are wired.
type dependencies struct {
	pg          *database.PostgresClient
	redis       *database.RedisClient
	es          *database.ElasticsearchClient
	ses         *aws.SESClient
	sns         *aws.SNSClient
	spreadsheet *spreadsheet.Client
	reports     *report.Generator
	zeebe       *camunda.Client
}

// handlers holds one job handler per task type. Handlers whose integration is
// disabled stay nil.
type handlers struct {
	validate  *vad.Handler
	calculate *cas.Handler
	upload    *uas.Handler
	store     *sto.Handler
	report    *gar.Handler
	send      *sar.Handler
	index     *ia.Handler
	publish   *pae.Handler
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog, log, err := logger.NewFromSettings(cfg.Logging.Settings())
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer zapLog.Sync()

	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()
	if cfg.Tracing.Enabled {
		if err := obs.EnableTracing(cfg.Tracing.JaegerEndpoint, cfg.Tracing.SampleRatio); err != nil {
			zapLog.Error("tracing disabled", zap.Error(err))
		} else {
			zapLog.Info("tracing enabled", zap.String("endpoint", cfg.Tracing.JaegerEndpoint))
		}
	}

	ctx := context.Background()

	deps, err := connect(ctx, cfg, zapLog)
	if err != nil {
		zapLog.Fatal("dependency initialization failed", zap.Error(err))
	}
	defer deps.close(zapLog)

	h := buildHandlers(cfg, deps, log)

	processor := pipeline.NewProcessor(pipelineSteps(h), log)

	// --- Zeebe workers ---
	var workers camunda.Group
	if deps.zeebe != nil {
		catalog, err := registry.LoadRegistry(cfg.App.RegistryPath)
		if err != nil {
			zapLog.Warn("activity registry unavailable", zap.String("path", cfg.App.RegistryPath), zap.Error(err))
		}
		startWorkers(deps.zeebe, cfg, h, catalog, &workers, zapLog)
		zapLog.Info("workers registered", zap.Strings("taskTypes", workers.TaskTypes()))
	}

	// --- HTTP: submission API, health and metrics ---
	mux := http.NewServeMux()
	api.NewHandler(processor, cfg.Server.AllowedOrigin(), log).Register(mux)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy", nil)
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if failures := deps.check(r.Context()); len(failures) > 0 {
			writeStatus(w, http.StatusServiceUnavailable, "not ready", failures)
			return
		}
		writeStatus(w, http.StatusOK, "ready", nil)
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      mux,
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			zapLog.Error("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown failed", zap.Error(err))
	}
	workers.Stop()

	zapLog.Info("Worker manager stopped gracefully")
}

func connect(ctx context.Context, cfg *config.Config, zapLog *zap.Logger) (*dependencies, error) {
	deps := &dependencies{}

	// --- PostgreSQL ---
	err := retryWithBackoff(func() error {
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		if err := pg.Ping(ctx); err != nil {
			pg.Close()
			return err
		}
		deps.pg = pg
		return nil
	}, 10, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		return nil, err
	}
	if err := deps.pg.EnsureAssessmentSchema(ctx); err != nil {
		return nil, err
	}
	zapLog.Info("PostgreSQL connected")

	// --- Redis (dedupe guard) ---
	if cfg.Dedupe.Enabled {
		err := retryWithBackoff(func() error {
			rdb, err := database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			if err := rdb.Ping(ctx); err != nil {
				rdb.Close()
				return err
			}
			deps.redis = rdb
			return nil
		}, 5, time.Second, zapLog, "Redis connection")
		if err != nil {
			// duplicates are only detected while Redis is reachable
			zapLog.Warn("dedupe guard disabled", zap.Error(err))
		} else {
			zapLog.Info("Redis connected")
		}
	}

	// --- Elasticsearch ---
	if cfg.Database.Elasticsearch.Enabled {
		err := retryWithBackoff(func() error {
			es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			if err := es.Ping(); err != nil {
				return err
			}
			deps.es = es
			return nil
		}, 5, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Warn("search indexing disabled", zap.Error(err))
		} else {
			zapLog.Info("Elasticsearch connected")
		}
	}

	// --- AWS ---
	if cfg.Integrations.AWS.SES.Enabled {
		ses, err := aws.NewSESClient(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			return nil, fmt.Errorf("failed to create SES client: %w", err)
		}
		deps.ses = ses
	}
	if cfg.Integrations.AWS.SNS.Enabled {
		sns, err := aws.NewSNSClient(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			return nil, fmt.Errorf("failed to create SNS client: %w", err)
		}
		deps.sns = sns
	}

	if cfg.Integrations.Spreadsheet.Enabled {
		deps.spreadsheet = spreadsheet.NewClient(
			cfg.Integrations.Spreadsheet.APIURL,
			cfg.Integrations.Spreadsheet.APIKey,
			config.GetDuration(cfg.Integrations.Spreadsheet.Timeout),
		)
	}
	deps.reports = report.NewGenerator(cfg.Report.OutputDir, cfg.Report.Title, cfg.Report.Benchmark)

	// --- Zeebe ---
	if cfg.Camunda.Enabled {
		err := retryWithBackoff(func() error {
			zc, err := camunda.NewClient(cfg.Camunda)
			if err != nil {
				return err
			}
			deps.zeebe = zc
			return nil
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			return nil, err
		}
		zapLog.Info("Zeebe client connected successfully")
	}

	return deps, nil
}

func (d *dependencies) close(zapLog *zap.Logger) {
	if d.zeebe != nil {
		if err := d.zeebe.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}
	if d.redis != nil {
		d.redis.Close()
	}
	if d.pg != nil {
		d.pg.Close()
	}
}

// check pings every connected dependency and returns the failures by name.
func (d *dependencies) check(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	failures := map[string]string{}
	if err := d.pg.Ping(ctx); err != nil {
		failures["postgres"] = err.Error()
	}
	if d.redis != nil {
		if err := d.redis.Ping(ctx); err != nil {
			failures["redis"] = err.Error()
		}
	}
	if d.es != nil {
		if err := d.es.Ping(); err != nil {
			failures["elasticsearch"] = err.Error()
		}
	}
	if d.zeebe != nil {
		if err := d.zeebe.HealthCheck(ctx); err != nil {
			failures["zeebe"] = err.Error()
		}
	}
	return failures
}

func buildHandlers(cfg *config.Config, deps *dependencies, log logger.Logger) handlers {
	var h handlers

	h.validate = vad.NewHandler(vad.LoadConfig(config.GetWorkerConfig(cfg, vad.TaskType), false), log)
	h.calculate = cas.NewHandler(cas.LoadConfig(config.GetWorkerConfig(cfg, cas.TaskType)), log)

	var cache sto.DedupeCache
	if deps.redis != nil {
		cache = deps.redis
	}
	h.store = sto.NewHandler(sto.LoadConfig(config.GetWorkerConfig(cfg, sto.TaskType), cfg.Dedupe), deps.pg, cache, log)
	h.report = gar.NewHandler(gar.LoadConfig(config.GetWorkerConfig(cfg, gar.TaskType)), deps.reports, log)

	if deps.spreadsheet != nil {
		h.upload = uas.NewHandler(uas.LoadConfig(config.GetWorkerConfig(cfg, uas.TaskType)), deps.spreadsheet, log)
	}
	if deps.ses != nil {
		ses := cfg.Integrations.AWS.SES
		h.send = sar.NewHandler(sar.LoadConfig(config.GetWorkerConfig(cfg, sar.TaskType), ses.FromEmail, ses.Subject), deps.ses, log)
	}
	if deps.es != nil {
		h.index = ia.NewHandler(ia.LoadConfig(config.GetWorkerConfig(cfg, ia.TaskType), cfg.Database.Elasticsearch.Index), deps.es, log)
	}
	if deps.sns != nil {
		h.publish = pae.NewHandler(pae.LoadConfig(config.GetWorkerConfig(cfg, pae.TaskType), cfg.Integrations.AWS.SNS.TopicARN), deps.sns, log)
	}

	return h
}

// pipelineSteps adapts the handlers for the HTTP path. A nil handler leaves
// its step unconfigured.
func pipelineSteps(h handlers) pipeline.Steps {
	steps := pipeline.Steps{
		Validator:  pipeline.NewValidator(h.validate),
		Calculator: pipeline.NewCalculator(h.calculate),
		Store:      pipeline.NewRecordStore(h.store),
		Report:     pipeline.NewReportGenerator(h.report),
	}
	if h.upload != nil {
		steps.Spreadsheet = pipeline.NewSpreadsheetWriter(h.upload)
	}
	if h.send != nil {
		steps.Sender = pipeline.NewReportSender(h.send)
	}
	if h.index != nil {
		steps.Indexer = pipeline.NewSearchIndexer(h.index)
	}
	if h.publish != nil {
		steps.Publisher = pipeline.NewEventPublisher(h.publish)
	}
	return steps
}

func startWorkers(zc *camunda.Client, cfg *config.Config, h handlers, catalog *registry.ActivityRegistry, group *camunda.Group, zapLog *zap.Logger) {
	start := func(taskType string, handler camunda.JobHandler) {
		log := zapLog
		if catalog != nil {
			if activity, ok := catalog.Find(taskType); ok {
				log = zapLog.With(zap.String("activityVersion", activity.Version))
			} else {
				zapLog.Warn("task type missing from activity registry", zap.String("taskType", taskType))
			}
		}
		group.Add(camunda.StartWorker(zc.GetClient(), taskType, config.GetWorkerConfig(cfg, taskType), handler, log))
	}

	start(vad.TaskType, h.validate.Handle)
	start(cas.TaskType, h.calculate.Handle)
	start(sto.TaskType, h.store.Handle)
	start(gar.TaskType, h.report.Handle)

	if h.upload != nil {
		start(uas.TaskType, h.upload.Handle)
	}
	if h.send != nil {
		start(sar.TaskType, h.send.Handle)
	}
	if h.index != nil {
		start(ia.TaskType, h.index.Handle)
	}
	if h.publish != nil {
		start(pae.TaskType, h.publish.Handle)
	}
}

func writeStatus(w http.ResponseWriter, code int, status string, failures map[string]string) {
	body := map[string]interface{}{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	}
	if len(failures) > 0 {
		body["failures"] = failures
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}
