// Command api runs the HTTP server for the agency portal backend.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"agency_portal_backend/internal/adapters"
	"agency_portal_backend/internal/auth"
	"agency_portal_backend/internal/catalog"
	"agency_portal_backend/internal/contact"
	apphttp "agency_portal_backend/internal/http"
	"agency_portal_backend/internal/http/router"
	"agency_portal_backend/internal/notification"
	"agency_portal_backend/internal/pricing"
	"agency_portal_backend/internal/projects"
	"agency_portal_backend/internal/quotes"
	quoteservice "agency_portal_backend/internal/quotes/service"
	"agency_portal_backend/internal/scheduler"
	"agency_portal_backend/migrations"
	"agency_portal_backend/platform/config"
	"agency_portal_backend/platform/db"
	"agency_portal_backend/platform/events"
	"agency_portal_backend/platform/logger"
	"agency_portal_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := withRetry(ctx, log, "database", func() (*pgxpool.Pool, error) {
		return db.NewPool(ctx, cfg)
	})
	if err != nil {
		log.Error("database unavailable", "error", err.Error())
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := db.RunMigrations(ctx, cfg, migrations.FS, "."); err != nil {
		log.Error("migrations failed", "error", err.Error())
		os.Exit(1)
	}
	log.Info("migrations applied")

	serviceCatalog, err := catalog.Load()
	if err != nil {
		log.Error("catalog load failed", "error", err.Error())
		os.Exit(1)
	}

	bus := events.NewInMemoryBus(log)
	validate := validator.New()
	pricer := pricing.NewEngine(serviceCatalog)

	// Redis backs both the stats cache and the task queue; both are optional.
	var statsCache quoteservice.StatsCache
	var enqueuer scheduler.Enqueuer = &scheduler.NoopEnqueuer{Log: log}
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Error("invalid REDIS_URL", "error", err.Error())
			os.Exit(1)
		}
		statsCache = quoteservice.NewRedisStatsCache(redis.NewClient(opts), log)

		asynqClient, err := scheduler.NewClient(cfg, log)
		if err != nil {
			log.Error("asynq client failed", "error", err.Error())
			os.Exit(1)
		}
		defer asynqClient.Close()
		enqueuer = asynqClient
	} else {
		log.Warn("REDIS_URL not set; stats cache and background email disabled")
	}

	authModule := auth.NewModule(dbPool, cfg, log, bus, validate)
	projectsModule := projects.NewModule(dbPool, log, validate)
	notificationModule := notification.NewModule(dbPool, enqueuer, log)
	notificationModule.Subscribe(bus)

	quotesModule := quotes.NewModule(dbPool, quotes.Deps{
		Pricer:   pricer,
		Users:    &adapters.UserProvisioner{Auth: authModule.Service()},
		Projects: &adapters.ProjectGateway{Projects: projectsModule.Service()},
		Notifier: &adapters.QuoteNotifier{Notifications: notificationModule.Service()},
		Cache:    statsCache,
		CacheTTL: cfg.StatsCacheTTL,
	}, log, bus, validate)

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(dbPool),
		EventBus: bus,
		Modules: []apphttp.Module{
			catalog.NewModule(serviceCatalog, log),
			authModule,
			quotesModule,
			projectsModule,
			notificationModule,
			contact.NewModule(dbPool, bus, log, validate),
		},
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err.Error())
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err.Error())
	}
	log.Info("server stopped")
}

// withRetry retries a startup dependency a few times before giving up, so a
// container does not crash-loop faster than its database comes up.
func withRetry[T any](ctx context.Context, log *logger.Logger, name string, connect func() (T, error)) (T, error) {
	const attempts = 5

	var zero T
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := connect()
		if err == nil {
			return result, nil
		}
		lastErr = err
		log.Warn("startup dependency not ready",
			"dependency", name, "attempt", attempt, "error", err.Error())

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(time.Duration(attempt) * 2 * time.Second):
		}
	}
	return zero, lastErr
}
