// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"nomad-workers/internal/batch"
	"nomad-workers/internal/common/camunda"
	"nomad-workers/internal/common/config"
	"nomad-workers/internal/common/database"
	"nomad-workers/internal/common/logger"
	"nomad-workers/internal/common/observability"
	"nomad-workers/internal/engine/quality"
	"nomad-workers/internal/engine/scoring"
	"nomad-workers/internal/provider"
	"nomad-workers/internal/store"

	rec "nomad-workers/internal/workers/context/refresh-entity-context"
	cjm "nomad-workers/internal/workers/match/compute-job-match"
	rma "nomad-workers/internal/workers/match/record-match-action"
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
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var zeebeClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebeClient, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      time.Duration(cfg.Camunda.Timeout) * time.Millisecond,
			RequestTimeout:         time.Duration(cfg.Camunda.RequestTimeout) * time.Millisecond,
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Elasticsearch with retry (optional mirror) ---
	var esClient *database.ElasticsearchClient
	if len(cfg.Database.Elasticsearch.Addresses) > 0 {
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		zapLog.Info("Elasticsearch connected successfully")
	} else {
		zapLog.Info("Elasticsearch not configured, search mirroring disabled")
	}

	// --- Engine + Stores ---
	scorer, err := scoring.NewEngine(cfg.Scoring.Weights)
	if err != nil {
		zapLog.Fatal("invalid scoring weights", zap.Error(err))
	}
	classifier, err := quality.NewClassifier(cfg.Quality.Bands)
	if err != nil {
		zapLog.Fatal("invalid quality bands", zap.Error(err))
	}

	matchStore := store.NewMatchStore(pg.DB, log)
	contextStore := store.NewContextStore(pg.DB, log)

	var indexer batch.Indexer
	if esClient != nil {
		indexer = store.NewContextIndexer(esClient.Client, cfg.Database.Elasticsearch.ContextIndex, log)
	}

	src := provider.New(pg.DB, redis.Client,
		time.Duration(cfg.Batch.CacheTTL)*time.Second, log)

	driver := batch.NewDriver(src, matchStore, contextStore, indexer, scorer, classifier,
		batch.Options{
			Concurrency:    cfg.Batch.Concurrency,
			MaxRetries:     cfg.Batch.MaxRetries,
			UnitTimeout:    time.Duration(cfg.Batch.UnitTimeout) * time.Millisecond,
			RetryBaseDelay: time.Duration(cfg.Batch.RetryBaseDelay) * time.Millisecond,
			ModelVersion:   cfg.Schedules.ModelVer,
		}, log)

	// --- Refresh Scheduler ---
	scheduler, err := batch.NewScheduler(driver, cfg.Schedules, log)
	if err != nil {
		zapLog.Fatal("invalid refresh schedules", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	// --- Register Workers ---
	var workers []*camunda.CamundaWorker

	if wcfg := cfg.Workers[cjm.TaskType]; wcfg.Enabled {
		handler := cjm.NewHandler(
			&cjm.Config{
				Timeout: time.Duration(wcfg.Timeout) * time.Millisecond,
			},
			driver, log,
		)
		workers = append(workers,
			camunda.NewWorker(zeebeClient.GetClient(), cjm.TaskType, wcfg.MaxJobsActive, handler, zapLog))
	}

	if wcfg := cfg.Workers[rma.TaskType]; wcfg.Enabled {
		handler := rma.NewHandler(
			&rma.Config{
				Timeout: time.Duration(wcfg.Timeout) * time.Millisecond,
			},
			matchStore, log,
		)
		workers = append(workers,
			camunda.NewWorker(zeebeClient.GetClient(), rma.TaskType, wcfg.MaxJobsActive, handler, zapLog))
	}

	if wcfg := cfg.Workers[rec.TaskType]; wcfg.Enabled {
		handler := rec.NewHandler(
			&rec.Config{
				Timeout: time.Duration(wcfg.Timeout) * time.Millisecond,
			},
			driver, log,
		)
		workers = append(workers,
			camunda.NewWorker(zeebeClient.GetClient(), rec.TaskType, wcfg.MaxJobsActive, handler, zapLog))
	}

	for _, w := range workers {
		w.Start()
	}
	zapLog.Info("All workers registered successfully", zap.Int("workers", len(workers)))

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			status := "ready"
			code := http.StatusOK
			if err := zeebeClient.HealthCheck(r.Context()); err != nil {
				status = "broker unreachable"
				code = http.StatusServiceUnavailable
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(code)
			json.NewEncoder(w).Encode(map[string]string{
				"status": status,
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop(shutdownCtx)
	}

	zapLog.Info("Worker manager stopped gracefully")
}
