package queue

import (
	"context"

	"court-reservation-api/core/config"
	"court-reservation-api/core/logger"

	"github.com/hibiken/asynq"
)

func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

func NewClient(cfg config.RedisConfig) *asynq.Client {
	return asynq.NewClient(RedisOpt(cfg))
}

// NewServer builds the background worker. Handlers are registered on the
// returned mux by the modules that own the task types.
func NewServer(redisCfg config.RedisConfig, queueCfg config.QueueConfig) (*asynq.Server, *asynq.ServeMux) {
	concurrency := queueCfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	srv := asynq.NewServer(RedisOpt(redisCfg), asynq.Config{
		Concurrency: concurrency,
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			logger.Error("Queue:HandleTask:Failed", "type", task.Type(), "error", err)
		}),
	})
	return srv, asynq.NewServeMux()
}
