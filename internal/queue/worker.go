package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/maheshrc27/reelpost/internal/service"
)

func (q *Queue) HandleExecutePlanTask(ctx context.Context, task *asynq.Task) error {
	var payload ExecutePlanPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}

	summary, err := q.runner.Run(ctx, service.RunOptions{DryRun: payload.DryRun})
	if err != nil {
		q.logger.Error("plan execution failed", "error", err)
		return fmt.Errorf("execute plan: %v: %w", err, asynq.SkipRetry)
	}

	q.logger.Info("plan executed",
		"run_id", summary.RunID,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
	)
	if summary.Failed > 0 {
		return fmt.Errorf("%d post(s) failed: %w", summary.Failed, asynq.SkipRetry)
	}
	return nil
}

// NewServer builds a single-worker asynq server so that at most one run
// writes the results record at a time.
func (q *Queue) NewServer(redisURI string) (*asynq.Server, *asynq.ServeMux) {
	server := asynq.NewServer(asynq.RedisClientOpt{Addr: redisURI}, asynq.Config{
		Concurrency: 1,
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypeExecutePlan, q.HandleExecutePlanTask)
	return server, mux
}
