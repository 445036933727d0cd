package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"agency_portal_backend/internal/email"
	"agency_portal_backend/platform/config"
	"agency_portal_backend/platform/logger"
)

// CleanupStore is the persistence surface the maintenance task needs.
type CleanupStore interface {
	DeleteExpiredRefreshTokens(ctx context.Context) (int64, error)
	DeleteReadNotificationsOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// readNotificationRetention is how long read notifications are kept.
const readNotificationRetention = 90 * 24 * time.Hour

// Worker processes queued tasks: transactional email and periodic cleanup.
type Worker struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
	log       *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, sender email.Sender, store CleanupStore, log *logger.Logger) (*Worker, error) {
	opt, err := RedisClientOpt(cfg)
	if err != nil {
		return nil, err
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: cfg.GetAsynqConcurrency(),
		Queues:      map[string]int{cfg.GetAsynqQueueName(): 1},
		Logger:      asynqLogger{log},
	})

	sched := asynq.NewScheduler(opt, &asynq.SchedulerOpts{Logger: asynqLogger{log}})
	if _, err := sched.Register("0 3 * * *", NewCleanupTask(), asynq.Queue(cfg.GetAsynqQueueName())); err != nil {
		return nil, fmt.Errorf("register cleanup schedule: %w", err)
	}

	mux := asynq.NewServeMux()
	w := &Worker{server: server, scheduler: sched, mux: mux, log: log}

	mux.HandleFunc(TypeEmailWelcome, func(ctx context.Context, t *asynq.Task) error {
		var p WelcomeEmailPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return fmt.Errorf("decode %s: %w", t.Type(), err)
		}
		return sender.SendWelcome(ctx, p.Email, p.Name)
	})

	mux.HandleFunc(TypeEmailQuoteNew, func(ctx context.Context, t *asynq.Task) error {
		var p QuoteReceivedEmailPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return fmt.Errorf("decode %s: %w", t.Type(), err)
		}
		return sender.SendQuoteReceived(ctx, p.Email, email.QuoteReceivedParams{
			Name:         p.Name,
			QuoteID:      p.QuoteID,
			ServiceLabel: p.ServiceLabel,
			PackageType:  p.PackageType,
			TotalPrice:   p.TotalPrice,
			Currency:     p.Currency,
			TimelineDays: p.TimelineDays,
		})
	})

	mux.HandleFunc(TypeEmailQuoteStatus, func(ctx context.Context, t *asynq.Task) error {
		var p QuoteStatusEmailPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return fmt.Errorf("decode %s: %w", t.Type(), err)
		}
		return sender.SendQuoteStatusChanged(ctx, p.Email, email.QuoteStatusParams{
			Name:         p.Name,
			QuoteID:      p.QuoteID,
			ServiceLabel: p.ServiceLabel,
			NewStatus:    p.NewStatus,
			ProjectTitle: p.ProjectTitle,
		})
	})

	mux.HandleFunc(TypeEmailContactAck, func(ctx context.Context, t *asynq.Task) error {
		var p ContactAckEmailPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return fmt.Errorf("decode %s: %w", t.Type(), err)
		}
		return sender.SendContactAck(ctx, p.Email, p.Name)
	})

	mux.HandleFunc(TypeMaintenanceClean, func(ctx context.Context, _ *asynq.Task) error {
		tokens, err := store.DeleteExpiredRefreshTokens(ctx)
		if err != nil {
			return fmt.Errorf("cleanup refresh tokens: %w", err)
		}
		cutoff := time.Now().Add(-readNotificationRetention)
		notifications, err := store.DeleteReadNotificationsOlderThan(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("cleanup notifications: %w", err)
		}
		log.Info("cleanup complete", "expired_tokens", tokens, "pruned_notifications", notifications)
		return nil
	})

	return w, nil
}

// Run starts the scheduler and blocks processing tasks until Shutdown.
func (w *Worker) Run() error {
	if err := w.scheduler.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	return w.server.Run(w.mux)
}

// Shutdown stops the worker gracefully.
func (w *Worker) Shutdown() {
	w.scheduler.Shutdown()
	w.server.Shutdown()
}

// asynqLogger adapts the structured logger to asynq's logging interface.
type asynqLogger struct {
	log *logger.Logger
}

func (l asynqLogger) Debug(args ...interface{}) { l.log.Debug(fmt.Sprint(args...)) }
func (l asynqLogger) Info(args ...interface{})  { l.log.Info(fmt.Sprint(args...)) }
func (l asynqLogger) Warn(args ...interface{})  { l.log.Warn(fmt.Sprint(args...)) }
func (l asynqLogger) Error(args ...interface{}) { l.log.Error(fmt.Sprint(args...)) }
func (l asynqLogger) Fatal(args ...interface{}) { l.log.Error(fmt.Sprint(args...)) }
