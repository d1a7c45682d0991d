package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sizing-workers/internal/catalog"
	awsclient "sizing-workers/internal/common/aws"
	"sizing-workers/internal/common/camunda"
	"sizing-workers/internal/common/config"
	"sizing-workers/internal/common/database"
	"sizing-workers/internal/common/logger"
	"sizing-workers/internal/common/observability"
	"sizing-workers/internal/common/validation"
	"sizing-workers/internal/sessions"
	"sizing-workers/pkg/registry"

	lp "sizing-workers/internal/workers/catalog/list-products"
	cs "sizing-workers/internal/workers/sizing/calculate-size"
	lms "sizing-workers/internal/workers/sizing/list-measurement-sessions"
	sms "sizing-workers/internal/workers/sizing/save-measurement-session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console", "")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"service": cfg.App.Name,
		"version": cfg.App.Version,
	})

	zapLog.Info("Starting worker manager...", zap.String("environment", cfg.App.Environment))

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Fatal("observability setup failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var zeebe *camunda.Client
	err = camunda.Retry(ctx, camunda.DefaultRetryConfig, "Zeebe client initialization", log, func(ctx context.Context) error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(ctx, camunda.ConfigFrom(cfg.Camunda))
		return err
	})
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	var pg *database.PostgresClient
	if cfg.UsesPostgres() {
		err = camunda.Retry(ctx, camunda.DefaultRetryConfig, "PostgreSQL connection", log, func(ctx context.Context) error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			if err := pg.Ping(ctx); err != nil {
				pg.Close()
				return err
			}
			return nil
		})
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()

		if err := pg.EnsureSchema(ctx); err != nil {
			zapLog.Fatal("schema migration failed", zap.Error(err))
		}
		zapLog.Info("PostgreSQL connected successfully")
	}

	var provider catalog.Provider
	switch cfg.Catalog.Source {
	case config.CatalogSourcePostgres:
		provider = catalog.NewPostgresProvider(pg.GetDB())
	default:
		fixtures, err := catalog.NewFixtureProvider(cfg.Catalog.FixturesDir)
		if err != nil {
			zapLog.Fatal("fixture catalog failed to load", zap.Error(err))
		}
		provider = fixtures
	}

	if cfg.UsesRedis() {
		var rdb *database.RedisClient
		err = camunda.Retry(ctx, camunda.DefaultRetryConfig, "Redis connection", log, func(ctx context.Context) error {
			var err error
			rdb, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return rdb.Ping(ctx)
		})
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rdb.Close()

		provider = catalog.NewCachedProvider(provider, rdb.GetClient(), time.Duration(cfg.Catalog.CacheTTL)*time.Second, log)
		zapLog.Info("Redis table cache enabled", zap.Int("ttlSeconds", cfg.Catalog.CacheTTL))
	}

	reg, err := registry.LoadRegistry(cfg.RegistryPath)
	if err != nil {
		zapLog.Fatal("activity registry load failed", zap.Error(err))
	}
	if err := reg.Validate(); err != nil {
		zapLog.Fatal("activity registry invalid", zap.Error(err))
	}
	validator := validation.NewValidator(reg)

	loader := catalog.NewLoader(provider, cfg.Sizing.StrictTables, log)
	client := zeebe.GetClient()
	var workers []*camunda.CamundaWorker

	register := func(start func() *camunda.CamundaWorker) {
		if w := start(); w != nil {
			workers = append(workers, w)
		}
	}

	register(func() *camunda.CamundaWorker {
		wcfg := config.GetWorkerConfig(cfg, cs.TaskType)
		handler := cs.NewHandler(&cs.Config{Timeout: wcfg.TimeoutDuration()}, loader, validator, log)
		return camunda.StartWorker(client, cs.TaskType, wcfg, handler.Handle, obs, log)
	})

	register(func() *camunda.CamundaWorker {
		wcfg := config.GetWorkerConfig(cfg, lp.TaskType)
		handler := lp.NewHandler(&lp.Config{Timeout: wcfg.TimeoutDuration()}, provider, validator, log)
		return camunda.StartWorker(client, lp.TaskType, wcfg, handler.Handle, obs, log)
	})

	var events sms.EventPublisher
	if cfg.PublishesEvents() {
		publisher, err := awsclient.NewSNSPublisher(ctx, cfg.Events.Region, cfg.Events.SNSTopicARN)
		if err != nil {
			zapLog.Fatal("sns publisher setup failed", zap.Error(err))
		}
		events = publisher
		zapLog.Info("Session events enabled", zap.String("topic", cfg.Events.SNSTopicARN))
	}

	if pg != nil {
		store := sessions.NewStore(pg.GetDB())

		register(func() *camunda.CamundaWorker {
			wcfg := config.GetWorkerConfig(cfg, sms.TaskType)
			handler := sms.NewHandler(&sms.Config{Timeout: wcfg.TimeoutDuration()}, provider, store, events, validator, log)
			return camunda.StartWorker(client, sms.TaskType, wcfg, handler.Handle, obs, log)
		})

		register(func() *camunda.CamundaWorker {
			wcfg := config.GetWorkerConfig(cfg, lms.TaskType)
			handler := lms.NewHandler(&lms.Config{
				Timeout:      wcfg.TimeoutDuration(),
				DefaultLimit: sessions.DefaultListLimit,
			}, store, validator, log)
			return camunda.StartWorker(client, lms.TaskType, wcfg, handler.Handle, obs, log)
		})
	} else {
		zapLog.Warn("no database configured, session workers not started",
			zap.Strings("taskTypes", []string{sms.TaskType, lms.TaskType}))
	}

	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy", nil)
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{}
		status := http.StatusOK
		if err := zeebe.HealthCheck(r.Context()); err != nil {
			checks["zeebe"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		if pg != nil {
			if err := pg.Ping(r.Context()); err != nil {
				checks["postgres"] = err.Error()
				status = http.StatusServiceUnavailable
			}
		}
		if status != http.StatusOK {
			writeStatus(w, status, "not ready", checks)
			return
		}
		writeStatus(w, status, "ready", nil)
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.MetricsAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping workers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var stopGroup errgroup.Group
	for _, w := range workers {
		stopGroup.Go(func() error {
			w.Stop()
			return nil
		})
	}
	_ = stopGroup.Wait()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping Health/Metrics server", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error flushing metrics", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func writeStatus(w http.ResponseWriter, code int, status string, checks map[string]string) {
	body := map[string]interface{}{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	}
	if len(checks) > 0 {
		body["checks"] = checks
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}
