package worker

import (
	"context"
	"sync"
	"time"

	"sceneforge/internal/pkg/logger"
	"sceneforge/internal/worker/processor"
	"sceneforge/internal/worker/queue"
)

// Run starts the worker pool and blocks until ctx is canceled. Each consumer
// pops job ids off the queue and drives the full pipeline for one job at a
// time; concurrency across jobs comes from the pool size.
func Run(ctx context.Context, d Deps) error {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	log = log.WithComponent("worker")

	q := queue.NewRedisQueue(d.RDB, d.QueueName)
	p := processor.New(processor.Deps{
		Store:      d.Store,
		Pipeline:   d.Pipeline,
		Workspaces: d.Workspaces,
		SP:         d.SP,
		Log:        log,
	})

	count := d.Count
	if count <= 0 {
		count = 1
	}
	log.Info("starting consumers", "count", count, "queue", d.QueueName)

	var wg sync.WaitGroup
	for i := 1; i <= count; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			consume(ctx, log.WithFields(map[string]any{"consumer": n}), q, p)
		}(i)
	}
	wg.Wait()

	return ctx.Err()
}

func consume(ctx context.Context, log *logger.Logger, q *queue.RedisQueue, p *processor.Processor) {
	for {
		select {
		case <-ctx.Done():
			log.Info("consumer stopping")
			return
		default:
		}

		// Use a separate context with timeout for queue operations
		popCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		jobID, err := q.Pop(popCtx)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				log.Info("consumer stopping due to context cancellation")
				return
			}

			log.Warn("queue pop error, retrying",
				"error", err.Error(),
			)
			time.Sleep(1 * time.Second)
			continue
		}

		if jobID == "" {
			continue
		}

		jobCtx := logger.ContextWithJobID(ctx, jobID)
		jobLog := log.WithJobID(jobID)

		jobLog.Info("processing job")
		startTime := time.Now()

		if err := p.ProcessJob(jobCtx, jobID); err != nil {
			jobLog.Error("job failed",
				"error", err.Error(),
				"duration_ms", time.Since(startTime).Milliseconds(),
			)
		} else {
			jobLog.Info("job completed",
				"duration_ms", time.Since(startTime).Milliseconds(),
			)
		}
	}
}
