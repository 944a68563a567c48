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

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"mortgage-workers/internal/common/config"
	"mortgage-workers/internal/common/database"
	"mortgage-workers/internal/common/logger"
	"mortgage-workers/internal/common/metrics"
	"mortgage-workers/internal/common/observability"
	"mortgage-workers/internal/providers"

	// Application Workers (6)
	cpr "mortgage-workers/internal/workers/application/check-priority-routing"
	crs "mortgage-workers/internal/workers/application/check-readiness-score"
	car "mortgage-workers/internal/workers/application/create-application-record"
	na "mortgage-workers/internal/workers/application/normalize-application"
	sdn "mortgage-workers/internal/workers/application/send-decision-notification"
	vad "mortgage-workers/internal/workers/application/validate-application-data"

	// Credit Workers (3)
	acs "mortgage-workers/internal/workers/credit/analyze-credit-score"
	cdt "mortgage-workers/internal/workers/credit/calculate-dti"
	cin "mortgage-workers/internal/workers/credit/calculate-income"

	// Property Workers (2)
	apr "mortgage-workers/internal/workers/property/analyze-property-risk"
	clt "mortgage-workers/internal/workers/property/calculate-ltv"

	// Risk & Compliance Workers (2)
	sk "mortgage-workers/internal/workers/risk/screen-kyc"
	sps "mortgage-workers/internal/workers/risk/screen-pep-sanctions"

	// Underwriting Workers (1)
	dl "mortgage-workers/internal/workers/underwriting/decide-loan"

	// Data Access Workers (2)
	qe "mortgage-workers/internal/workers/data-access/query-elasticsearch"
	qp "mortgage-workers/internal/workers/data-access/query-postgresql"
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

// workerTimeout converts the configured millisecond timeout, falling back to
// the handler's own default when the config leaves it unset.
func workerTimeout(wcfg config.WorkerConfig, fallback time.Duration) time.Duration {
	if wcfg.Timeout > 0 {
		return time.Duration(wcfg.Timeout) * time.Millisecond
	}
	return fallback
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
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
	var zeebeClient zbc.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebeClient, err = zbc.NewClient(&zbc.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
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
		// Test the connection with context
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		// Test the connection
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		// Test the connection with context
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- START: Register ALL 16 Workers ---

	// --- 1. Application Intake Workers (6) ---
	if wcfg := cfg.Workers[na.TaskType]; wcfg.Enabled {
		nacfg := na.LoadConfig()
		nacfg.Timeout = workerTimeout(wcfg, nacfg.Timeout)
		handler := na.NewHandler(nacfg, log)
		startWorker(zeebeClient, na.TaskType, wcfg, handler.Handle, zapLog)
	}

	if wcfg := cfg.Workers[vad.TaskType]; wcfg.Enabled {
		vadcfg := vad.LoadConfig()
		vadcfg.Timeout = workerTimeout(wcfg, vadcfg.Timeout)
		handler := vad.NewHandler(vadcfg, log)
		startWorker(zeebeClient, vad.TaskType, wcfg, handler.Handle, zapLog)
	}

	if wcfg := cfg.Workers[crs.TaskType]; wcfg.Enabled {
		crscfg := crs.LoadConfig()
		crscfg.Timeout = workerTimeout(wcfg, crscfg.Timeout)
		handler := crs.NewHandler(crscfg, log)
		startWorker(zeebeClient, crs.TaskType, wcfg, handler.Handle, zapLog)
	}

	if wcfg := cfg.Workers[cpr.TaskType]; wcfg.Enabled {
		cprcfg := cpr.LoadConfig()
		cprcfg.Timeout = workerTimeout(wcfg, cprcfg.Timeout)
		if cfg.Routing.JumboThreshold > 0 {
			cprcfg.JumboThreshold = cfg.Routing.JumboThreshold
		}
		if cfg.Routing.CacheTTLMin > 0 {
			cprcfg.CacheTTL = time.Duration(cfg.Routing.CacheTTLMin) * time.Minute
		}
		handler := cpr.NewHandler(cprcfg, pg.DB, redis.Client, log)
		startWorker(zeebeClient, cpr.TaskType, wcfg, handler.Handle, zapLog)
	}

	if wcfg := cfg.Workers[car.TaskType]; wcfg.Enabled {
		carcfg := car.LoadConfig()
		carcfg.Timeout = workerTimeout(wcfg, carcfg.Timeout)
		audit := car.NewElasticsearchAuditIndexer(esClient.Client)
		handler := car.NewHandlerWithAudit(carcfg, pg.DB, audit, log)
		startWorker(zeebeClient, car.TaskType, wcfg, handler.Handle, zapLog)
	}

	if wcfg := cfg.Workers[sdn.TaskType]; wcfg.Enabled {
		sdncfg := sdn.LoadConfig()
		sdncfg.Timeout = workerTimeout(wcfg, sdncfg.Timeout)
		sdncfg.EmailEnabled = cfg.Notifications.Email.Enabled
		sdncfg.FromEmail = cfg.Notifications.Email.FromEmail
		sdncfg.EventsEnabled = cfg.Notifications.Events.Enabled
		sdncfg.EventTopicARN = cfg.Notifications.Events.TopicARN
		sdncfg.AWSRegion = cfg.Notifications.AWS.Region
		handler, err := sdn.NewHandler(sdncfg, log)
		if err != nil {
			zapLog.Fatal("failed to create send-decision-notification handler", zap.Error(err))
		}
		startWorker(zeebeClient, sdn.TaskType, wcfg, handler.Handle, zapLog)
	}

	// --- 2. Credit Workers (3) ---
	if wcfg := cfg.Workers[acs.TaskType]; wcfg.Enabled {
		acscfg := acs.LoadConfig()
		acscfg.Timeout = workerTimeout(wcfg, acscfg.Timeout)
		handler := acs.NewHandler(acscfg, log)
		startWorker(zeebeClient, acs.TaskType, wcfg, handler.Handle, zapLog)
	}

	if wcfg := cfg.Workers[cin.TaskType]; wcfg.Enabled {
		cincfg := cin.LoadConfig()
		cincfg.Timeout = workerTimeout(wcfg, cincfg.Timeout)
		handler := cin.NewHandler(cincfg, log)
		startWorker(zeebeClient, cin.TaskType, wcfg, handler.Handle, zapLog)
	}

	if wcfg := cfg.Workers[cdt.TaskType]; wcfg.Enabled {
		cdtcfg := cdt.LoadConfig()
		cdtcfg.Timeout = workerTimeout(wcfg, cdtcfg.Timeout)
		handler := cdt.NewHandler(cdtcfg, log)
		startWorker(zeebeClient, cdt.TaskType, wcfg, handler.Handle, zapLog)
	}

	// --- 3. Property Workers (2) ---
	if wcfg := cfg.Workers[clt.TaskType]; wcfg.Enabled {
		cltcfg := clt.LoadConfig()
		cltcfg.Timeout = workerTimeout(wcfg, cltcfg.Timeout)
		handler := clt.NewHandler(cltcfg, log)
		startWorker(zeebeClient, clt.TaskType, wcfg, handler.Handle, zapLog)
	}

	if wcfg := cfg.Workers[apr.TaskType]; wcfg.Enabled {
		aprcfg := apr.LoadConfig()
		aprcfg.Timeout = workerTimeout(wcfg, aprcfg.Timeout)
		handler := apr.NewHandler(aprcfg, log)
		startWorker(zeebeClient, apr.TaskType, wcfg, handler.Handle, zapLog)
	}

	// --- 4. Risk & Compliance Workers (2) ---
	// Both screeners share the Redis-backed sanctions list provider.
	sanctionsProvider := providers.NewRedisSanctions(redis.Client)

	if wcfg := cfg.Workers[sk.TaskType]; wcfg.Enabled {
		skcfg := sk.LoadConfig()
		skcfg.Timeout = workerTimeout(wcfg, skcfg.Timeout)
		handler := sk.NewHandlerWithProvider(skcfg, log, sanctionsProvider)
		startWorker(zeebeClient, sk.TaskType, wcfg, handler.Handle, zapLog)
	}

	if wcfg := cfg.Workers[sps.TaskType]; wcfg.Enabled {
		spscfg := sps.LoadConfig()
		spscfg.Timeout = workerTimeout(wcfg, spscfg.Timeout)
		handler := sps.NewHandlerWithProvider(spscfg, log, sanctionsProvider)
		startWorker(zeebeClient, sps.TaskType, wcfg, handler.Handle, zapLog)
	}

	// --- 5. Underwriting Worker (1) ---
	if wcfg := cfg.Workers[dl.TaskType]; wcfg.Enabled {
		dlcfg := dl.LoadConfig()
		dlcfg.Timeout = workerTimeout(wcfg, dlcfg.Timeout)
		handler := dl.NewHandler(dlcfg, log)
		startWorker(zeebeClient, dl.TaskType, wcfg, handler.Handle, zapLog)
	}

	// --- 6. Data Access Workers (2) ---
	if wcfg := cfg.Workers[qp.TaskType]; wcfg.Enabled {
		qpcfg := qp.LoadConfig()
		qpcfg.Timeout = workerTimeout(wcfg, qpcfg.Timeout)
		handler := qp.NewHandler(qpcfg, pg.DB, log)
		startWorker(zeebeClient, qp.TaskType, wcfg, handler.Handle, zapLog)
	}

	if wcfg := cfg.Workers[qe.TaskType]; wcfg.Enabled {
		qecfg := qe.LoadConfig()
		qecfg.Timeout = workerTimeout(wcfg, qecfg.Timeout)
		handler := qe.NewHandler(qecfg, esClient.Client, log)
		startWorker(zeebeClient, qe.TaskType, wcfg, handler.Handle, zapLog)
	}

	zapLog.Info("All 16 workers registered successfully")

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
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
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

	_ = shutdownCtx

	if err := zeebeClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func startWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handlerFunc func(worker.JobClient, entities.Job), log *zap.Logger) {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return
	}

	instrumented := func(jobClient worker.JobClient, job entities.Job) {
		metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
		start := time.Now()
		handlerFunc(jobClient, job)
		metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(time.Since(start).Seconds())
		metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()
		metrics.WorkerJobsCompleted.WithLabelValues(taskType).Inc()
	}

	client.NewJobWorker().
		JobType(taskType).
		Handler(instrumented).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
}
