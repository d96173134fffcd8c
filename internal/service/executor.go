package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"time"
	"unicode/utf8"

	config "github.com/maheshrc27/reelpost/configs"
	"github.com/maheshrc27/reelpost/internal/models"
	"github.com/maheshrc27/reelpost/internal/repository"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

var (
	ErrNoPlatformsConfigured = errors.New("no platform credentials configured")
	ErrInputMissing          = repository.ErrInputMissing
)

type EntryStatus string

const (
	StatusSucceeded            EntryStatus = "succeeded"
	StatusFailed               EntryStatus = "failed"
	StatusSkippedAlreadyPosted EntryStatus = "already posted"
	StatusSkippedNoContent     EntryStatus = "no content found"
	StatusSkippedNotConfigured EntryStatus = "not configured"
	StatusPreviewed            EntryStatus = "previewed"
)

func (s EntryStatus) Skipped() bool {
	switch s {
	case StatusSkippedAlreadyPosted, StatusSkippedNoContent, StatusSkippedNotConfigured:
		return true
	}
	return false
}

const (
	previewCaptionLimit  = 80
	previewHashtagsLimit = 5
)

// Preview is what a dry run shows for an entry instead of posting it.
type Preview struct {
	FileName string
	Caption  string
	Hashtags []string
}

type EntryReport struct {
	Index   int
	Entry   models.ScheduleEntry
	Status  EntryStatus
	Result  *models.PostResult
	Preview *Preview
}

type RunSummary struct {
	RunID     string
	DryRun    bool
	Platforms []models.Platform
	Entries   []EntryReport
	Succeeded int
	Failed    int
	Skipped   int
}

// ExitCode is 1 when at least one entry failed.
func (s *RunSummary) ExitCode() int {
	if s.Failed > 0 {
		return 1
	}
	return 0
}

type RunOptions struct {
	DryRun bool
}

type ScheduleExecutor struct {
	cfg       config.Config
	inputs    repository.InputRepository
	registry  *PublishRegistry
	uploaders map[models.Platform]PlatformUploader
	notifier  ResultNotifier
	logger    *slog.Logger
	sleep     func(ctx context.Context, d time.Duration) error
}

// NewScheduleExecutor wires the executor. notifier may be nil.
func NewScheduleExecutor(
	cfg config.Config,
	inputs repository.InputRepository,
	registry *PublishRegistry,
	uploaders []PlatformUploader,
	notifier ResultNotifier,
	logger *slog.Logger,
) *ScheduleExecutor {
	byPlatform := make(map[models.Platform]PlatformUploader, len(uploaders))
	for _, u := range uploaders {
		byPlatform[u.Platform()] = u
	}
	return &ScheduleExecutor{
		cfg:       cfg,
		inputs:    inputs,
		registry:  registry,
		uploaders: byPlatform,
		notifier:  notifier,
		logger:    logger,
		sleep:     sleepContext,
	}
}

// Run walks the schedule once, in order. Per-entry problems never stop the
// run; only missing inputs, an empty set of configured platforms, a
// registry write failure or ctx cancellation return an error.
func (e *ScheduleExecutor) Run(ctx context.Context, opts RunOptions) (*RunSummary, error) {
	plan, err := e.inputs.LoadPlan()
	if err != nil {
		return nil, fmt.Errorf("load posting plan: %w", err)
	}
	videos, err := e.inputs.LoadMetadata()
	if err != nil {
		return nil, fmt.Errorf("load video metadata: %w", err)
	}
	urls, err := e.inputs.LoadURLMap()
	if err != nil {
		return nil, fmt.Errorf("load video urls: %w", err)
	}

	runID, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("generate run id: %w", err)
	}

	summary := &RunSummary{RunID: runID, DryRun: opts.DryRun}
	schedule := plan.Schedule()
	if len(schedule) == 0 {
		e.logger.Info("no entries in posting schedule, nothing to do")
		return summary, nil
	}

	if err := e.registry.Load(ctx); err != nil {
		return nil, err
	}

	configured := e.cfg.ConfiguredPlatforms()
	summary.Platforms = configured
	if !opts.DryRun && len(configured) == 0 {
		return nil, ErrNoPlatformsConfigured
	}

	files := make(map[string]string, len(videos))
	for _, v := range videos {
		files[v.VideoID] = v.FileName
	}

	logger := e.logger.With("run_id", runID)
	logger.Info("starting run",
		"entries", len(schedule),
		"dry_run", opts.DryRun,
		"platforms", configured,
	)

	for i, entry := range schedule {
		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("run interrupted before entry %d: %w", i+1, err)
		}

		report := EntryReport{Index: i, Entry: entry}
		attempted, err := e.runEntry(ctx, logger, plan, files, urls, configured, runID, opts.DryRun, &report)
		if err != nil {
			return summary, err
		}

		switch {
		case report.Status == StatusSucceeded:
			summary.Succeeded++
		case report.Status == StatusFailed:
			summary.Failed++
		case report.Status.Skipped():
			summary.Skipped++
		}
		summary.Entries = append(summary.Entries, report)

		if attempted && i < len(schedule)-1 && e.cfg.PostDelay > 0 {
			if err := e.sleep(ctx, e.cfg.PostDelay); err != nil {
				return summary, fmt.Errorf("run interrupted after entry %d: %w", i+1, err)
			}
		}
	}

	logger.Info("run complete",
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
	)
	return summary, nil
}

// runEntry classifies one schedule entry and, when it is due, posts it and
// records the result. attempted reports whether a result was written.
func (e *ScheduleExecutor) runEntry(
	ctx context.Context,
	logger *slog.Logger,
	plan *models.PostingPlan,
	files map[string]string,
	urls models.VideoURLMap,
	configured []models.Platform,
	runID string,
	dryRun bool,
	report *EntryReport,
) (bool, error) {
	entry := report.Entry
	logger = logger.With("video_id", entry.VideoID, "platform", entry.Platform)

	if e.registry.AlreadySucceeded(entry.VideoID, entry.Platform) {
		logger.Info("skipping entry", "reason", StatusSkippedAlreadyPosted)
		report.Status = StatusSkippedAlreadyPosted
		return false, nil
	}

	content := plan.ContentFor(entry.VideoID, entry.Platform)
	if content == nil {
		logger.Info("skipping entry", "reason", StatusSkippedNoContent)
		report.Status = StatusSkippedNoContent
		return false, nil
	}

	fileName := files[entry.VideoID]
	var videoPath string
	if fileName != "" {
		videoPath = filepath.Join(e.cfg.VideosDir, fileName)
	}

	if dryRun {
		report.Status = StatusPreviewed
		report.Preview = &Preview{
			FileName: fileName,
			Caption:  truncateCaption(content.Caption, previewCaptionLimit),
			Hashtags: content.Hashtags[:min(len(content.Hashtags), previewHashtagsLimit)],
		}
		return false, nil
	}

	uploader, ok := e.uploaders[entry.Platform]
	if !ok || !slices.Contains(configured, entry.Platform) {
		logger.Info("skipping entry", "reason", StatusSkippedNotConfigured)
		report.Status = StatusSkippedNotConfigured
		return false, nil
	}

	var outcome *Outcome
	switch {
	case entry.Platform == models.PlatformInstagram && urls[entry.VideoID] == "":
		outcome = &Outcome{Platform: entry.Platform, Error: "no S3 URL for video: run the upload command first"}
	case entry.Platform != models.PlatformInstagram && videoPath == "":
		outcome = &Outcome{Platform: entry.Platform, Error: "no video file path"}
	case entry.Platform == models.PlatformInstagram:
		logger.Info("posting entry")
		outcome = uploader.Post(ctx, urls[entry.VideoID], content.Caption, content.Hashtags)
	default:
		logger.Info("posting entry")
		outcome = uploader.Post(ctx, videoPath, content.Caption, content.Hashtags)
	}

	result := &models.PostResult{
		VideoID:  entry.VideoID,
		Platform: entry.Platform,
		Success:  outcome.Success,
		PostedAt: time.Now().Format(time.RFC3339),
		Error:    outcome.Error,
		RunID:    runID,
	}
	if outcome.Success {
		result.SetNativeID(outcome.NativeID)
	}

	if err := e.registry.Append(ctx, result); err != nil {
		return true, err
	}
	e.notify(ctx, logger, result)

	report.Result = result
	if result.Success {
		logger.Info("posted", "native_id", result.NativeID())
		report.Status = StatusSucceeded
	} else {
		logger.Warn("post failed", "error", result.Error)
		report.Status = StatusFailed
	}
	return true, nil
}

func (e *ScheduleExecutor) notify(ctx context.Context, logger *slog.Logger, result *models.PostResult) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.Notify(ctx, result); err != nil {
		logger.Warn("failed to publish result event", "error", err)
	}
}

func truncateCaption(caption string, limit int) string {
	if utf8.RuneCountInString(caption) <= limit {
		return caption
	}
	return string([]rune(caption)[:limit]) + "..."
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
