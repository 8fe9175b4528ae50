package queue

import (
	"context"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// ===========================================================================
// Task Queue
// Fire-and-forget wake-up signals for background workers. Losing a signal
// is acceptable: a sweeper can pick up pending work from the database, so
// enqueue failures are logged and swallowed by callers.
// ===========================================================================

const (
	// TaskWebhookDeliver wakes the delivery worker to drain pending
	// webhook_deliveries rows.
	TaskWebhookDeliver = "webhook:deliver"
)

// Task is one unit of work handed to the queue.
type Task struct {
	// Type routing key for the worker mux.
	Type string

	// Payload opaque task body, JSON by convention.
	Payload []byte
}

// Enqueuer pushes tasks to the queue backend.
type Enqueuer interface {
	// Enqueue submits the task and returns the backend task ID.
	Enqueue(ctx context.Context, task Task) (string, error)

	// Close releases the backend connection.
	Close() error
}

// ===========================================================================
// Asynq implementation
// ===========================================================================

// AsynqEnqueuer implements Enqueuer on top of asynq/Redis.
type AsynqEnqueuer struct {
	client *asynq.Client
	logger *zap.Logger
}

// NewAsynqEnqueuer connects to Redis using an URI such as
// redis://:password@host:6379/0.
func NewAsynqEnqueuer(redisURI string, logger *zap.Logger) (*AsynqEnqueuer, error) {
	opt, err := asynq.ParseRedisURI(redisURI)
	if err != nil {
		return nil, err
	}
	return &AsynqEnqueuer{
		client: asynq.NewClient(opt),
		logger: logger,
	}, nil
}

// Enqueue submits the task and returns the backend task ID.
func (e *AsynqEnqueuer) Enqueue(ctx context.Context, task Task) (string, error) {
	info, err := e.client.EnqueueContext(ctx, asynq.NewTask(task.Type, task.Payload))
	if err != nil {
		return "", err
	}
	e.logger.Debug("task enqueued",
		zap.String("type", task.Type),
		zap.String("task_id", info.ID),
		zap.String("queue", info.Queue),
	)
	return info.ID, nil
}

// Close releases the Redis connection.
func (e *AsynqEnqueuer) Close() error {
	return e.client.Close()
}

// ===========================================================================
// No-op implementation
// ===========================================================================

// NoopEnqueuer discards every task. Used when no queue backend is
// configured and in tests.
type NoopEnqueuer struct{}

// Enqueue discards the task.
func (NoopEnqueuer) Enqueue(ctx context.Context, task Task) (string, error) {
	return "", nil
}

// Close is a no-op.
func (NoopEnqueuer) Close() error { return nil }
