package queue

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// EnqueuePlan schedules one plan execution after delay. The task is never
// retried by asynq; a later run resumes from the results record instead.
func EnqueuePlan(client Enqueuer, payload ExecutePlanPayload, delay time.Duration) (*asynq.TaskInfo, error) {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	task := asynq.NewTask(TaskTypeExecutePlan, taskPayload)

	info, err := client.Enqueue(task, asynq.ProcessIn(delay), asynq.MaxRetry(0))
	if err != nil {
		return nil, fmt.Errorf("enqueue %s: %w", TaskTypeExecutePlan, err)
	}

	slog.Info("task scheduled", "id", info.ID, "dry_run", payload.DryRun, "process_in", delay)
	return info, nil
}
