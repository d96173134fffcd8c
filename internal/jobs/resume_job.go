package job

import (
	"context"
	"log/slog"
	"sync"

	"github.com/maheshrc27/reelpost/internal/service"
	"github.com/robfig/cron"
)

type PlanRunner interface {
	Run(ctx context.Context, opts service.RunOptions) (*service.RunSummary, error)
}

// ResumeJob re-runs the posting plan on a schedule. Entries that already
// succeeded are skipped by the executor, so each tick only picks up what an
// earlier run left behind.
type ResumeJob struct {
	ctx    context.Context
	runner PlanRunner
	logger *slog.Logger
	mu     sync.Mutex
}

func NewResumeJob(ctx context.Context, runner PlanRunner, logger *slog.Logger) *ResumeJob {
	return &ResumeJob{
		ctx:    ctx,
		runner: runner,
		logger: logger,
	}
}

// Run is the cron callback. A tick that fires while the previous run is
// still going is dropped.
func (j *ResumeJob) Run() {
	if !j.mu.TryLock() {
		j.logger.Info("previous run still in progress, skipping tick")
		return
	}
	defer j.mu.Unlock()

	if j.ctx.Err() != nil {
		return
	}

	summary, err := j.runner.Run(j.ctx, service.RunOptions{})
	if err != nil {
		j.logger.Error("scheduled run failed", "error", err)
		return
	}
	j.logger.Info("scheduled run complete",
		"run_id", summary.RunID,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
	)
}

// Schedule registers the job on a new cron using spec, e.g. "@every 1h".
func (j *ResumeJob) Schedule(spec string) (*cron.Cron, error) {
	c := cron.New()
	if err := c.AddFunc(spec, j.Run); err != nil {
		return nil, err
	}
	return c, nil
}
