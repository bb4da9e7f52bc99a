package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chatbook/models"
	"chatbook/services/booking"
	"chatbook/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueDispatcher defers inbound messages to the asynq worker.
type QueueDispatcher struct {
	client enqueuer
	logger *zap.Logger
}

func NewQueueDispatcher(client *asynq.Client, logger *zap.Logger) *QueueDispatcher {
	return &QueueDispatcher{client: client, logger: logger}
}

func (d *QueueDispatcher) Dispatch(ctx context.Context, msg models.InboundMessage) error {
	task, opts, err := tasks.NewInboundTask(msg)
	if err != nil {
		return fmt.Errorf("encode inbound message: %w", err)
	}
	_, err = d.client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		d.logger.Debug("duplicate inbound message ignored", zap.String("messageID", msg.MessageID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("enqueue inbound message: %w", err)
	}
	return nil
}

// InitInboundWorker starts the asynq server that feeds queued messages to the
// orchestrator. The caller shuts the returned server down.
func InitInboundWorker(redisOpts asynq.RedisClientOpt, orchestrator booking.Orchestrator, concurrency int, logger *zap.Logger) (*asynq.Server, error) {
	if concurrency <= 0 {
		concurrency = 10
	}
	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				tasks.InboundQueue: 1,
			},
			Logger: logger.Sugar(),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeInboundMessage, handleInboundTask(orchestrator, logger))

	// Start the worker with retry logic
	const maxAttempts = 5
	var err error
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		if err = srv.Start(mux); err == nil {
			logger.Info("inbound worker started", zap.Int("concurrency", concurrency))
			return srv, nil
		}
		logger.Warn("inbound worker failed to start",
			zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
		time.Sleep(time.Duration(attempts*2) * time.Second)
	}
	return nil, fmt.Errorf("start inbound worker: %w", err)
}

func handleInboundTask(orchestrator booking.Orchestrator, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		msg, err := tasks.ParseInboundTask(task)
		if err != nil {
			logger.Error("invalid inbound task payload", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}

		err = orchestrator.HandleMessage(ctx, msg)
		if err == nil {
			return nil
		}
		logger.Warn("inbound message failed",
			zap.String("messageID", msg.MessageID),
			zap.String("customerID", msg.CustomerID),
			zap.Error(err))
		if !booking.Retryable(err) {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}
}
