// Command worker runs the asynq background worker: transactional email and
// periodic cleanup.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"agency_portal_backend/internal/adapters"
	authrepo "agency_portal_backend/internal/auth/repository"
	"agency_portal_backend/internal/email"
	"agency_portal_backend/internal/notification/inapp"
	"agency_portal_backend/internal/scheduler"
	"agency_portal_backend/platform/config"
	"agency_portal_backend/platform/db"
	"agency_portal_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("config: " + err.Error())
	}
	log := logger.New(cfg.Env)

	if cfg.RedisURL == "" {
		log.Error("REDIS_URL is required for the worker")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("database unavailable", "error", err.Error())
		os.Exit(1)
	}
	defer pool.Close()

	var sender email.Sender = &email.NoopSender{Log: log}
	if cfg.EmailEnabled {
		smtpSender, err := email.NewSMTPSender(cfg, log)
		if err != nil {
			log.Error("smtp sender failed", "error", err.Error())
			os.Exit(1)
		}
		sender = smtpSender
	}

	store := &adapters.CleanupStore{
		Auth:          authrepo.New(pool),
		Notifications: inapp.NewRepository(pool),
	}

	worker, err := scheduler.NewWorker(cfg, sender, store, log)
	if err != nil {
		log.Error("worker init failed", "error", err.Error())
		os.Exit(1)
	}

	go func() {
		<-ctx.Done()
		log.Info("shutting down worker")
		worker.Shutdown()
	}()

	log.Info("worker started", "queue", cfg.AsynqQueueName, "concurrency", cfg.AsynqConcurrency)
	if err := worker.Run(); err != nil {
		log.Error("worker stopped", "error", err.Error())
		os.Exit(1)
	}
}
