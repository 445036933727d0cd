package scheduler

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"agency_portal_backend/platform/config"
	"agency_portal_backend/platform/logger"
)

// Enqueuer queues background tasks. Enqueue failures on side-effect paths are
// logged and swallowed by callers.
type Enqueuer interface {
	EnqueueWelcomeEmail(ctx context.Context, payload WelcomeEmailPayload) error
	EnqueueQuoteReceivedEmail(ctx context.Context, payload QuoteReceivedEmailPayload) error
	EnqueueQuoteStatusEmail(ctx context.Context, payload QuoteStatusEmailPayload) error
	EnqueueContactAckEmail(ctx context.Context, payload ContactAckEmailPayload) error
}

// RedisClientOpt builds the asynq Redis connection options from REDIS_URL.
func RedisClientOpt(cfg config.SchedulerConfig) (asynq.RedisClientOpt, error) {
	parsed, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		return asynq.RedisClientOpt{}, fmt.Errorf("parse redis url: %w", err)
	}
	return asynq.RedisClientOpt{
		Addr:     parsed.Addr,
		Username: parsed.Username,
		Password: parsed.Password,
		DB:       parsed.DB,
	}, nil
}

// Client enqueues tasks onto the configured asynq queue.
type Client struct {
	client *asynq.Client
	queue  string
	log    *logger.Logger
}

func NewClient(cfg config.SchedulerConfig, log *logger.Logger) (*Client, error) {
	opt, err := RedisClientOpt(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{
		client: asynq.NewClient(opt),
		queue:  cfg.GetAsynqQueueName(),
		log:    log,
	}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) enqueue(ctx context.Context, task *asynq.Task, err error) error {
	if err != nil {
		return err
	}
	info, err := c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue), asynq.MaxRetry(5))
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", task.Type(), err)
	}
	c.log.Debug("task enqueued", "type", task.Type(), "id", info.ID, "queue", info.Queue)
	return nil
}

func (c *Client) EnqueueWelcomeEmail(ctx context.Context, payload WelcomeEmailPayload) error {
	task, err := NewWelcomeEmailTask(payload)
	return c.enqueue(ctx, task, err)
}

func (c *Client) EnqueueQuoteReceivedEmail(ctx context.Context, payload QuoteReceivedEmailPayload) error {
	task, err := NewQuoteReceivedEmailTask(payload)
	return c.enqueue(ctx, task, err)
}

func (c *Client) EnqueueQuoteStatusEmail(ctx context.Context, payload QuoteStatusEmailPayload) error {
	task, err := NewQuoteStatusEmailTask(payload)
	return c.enqueue(ctx, task, err)
}

func (c *Client) EnqueueContactAckEmail(ctx context.Context, payload ContactAckEmailPayload) error {
	task, err := NewContactAckEmailTask(payload)
	return c.enqueue(ctx, task, err)
}

// NoopEnqueuer is used when Redis is not configured; tasks are skipped.
type NoopEnqueuer struct {
	Log *logger.Logger
}

func (n *NoopEnqueuer) EnqueueWelcomeEmail(_ context.Context, payload WelcomeEmailPayload) error {
	n.Log.Debug("task skipped", "type", TypeEmailWelcome, "to", payload.Email)
	return nil
}

func (n *NoopEnqueuer) EnqueueQuoteReceivedEmail(_ context.Context, payload QuoteReceivedEmailPayload) error {
	n.Log.Debug("task skipped", "type", TypeEmailQuoteNew, "to", payload.Email)
	return nil
}

func (n *NoopEnqueuer) EnqueueQuoteStatusEmail(_ context.Context, payload QuoteStatusEmailPayload) error {
	n.Log.Debug("task skipped", "type", TypeEmailQuoteStatus, "to", payload.Email)
	return nil
}

func (n *NoopEnqueuer) EnqueueContactAckEmail(_ context.Context, payload ContactAckEmailPayload) error {
	n.Log.Debug("task skipped", "type", TypeEmailContactAck, "to", payload.Email)
	return nil
}
