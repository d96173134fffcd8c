package queue

import (
	"context"
	"log/slog"

	"github.com/maheshrc27/reelpost/internal/service"
)

// PlanRunner executes the posting plan once.
type PlanRunner interface {
	Run(ctx context.Context, opts service.RunOptions) (*service.RunSummary, error)
}

type Queue struct {
	runner PlanRunner
	logger *slog.Logger
}

func NewQueue(runner PlanRunner, logger *slog.Logger) *Queue {
	return &Queue{
		runner: runner,
		logger: logger,
	}
}

const TaskTypeExecutePlan = "plan:execute"

type ExecutePlanPayload struct {
	DryRun bool `json:"dry_run"`
}
