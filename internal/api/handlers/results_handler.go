package handlers

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/reelpost/internal/models"
	"github.com/maheshrc27/reelpost/internal/queue"
	"github.com/maheshrc27/reelpost/internal/repository"
	"github.com/maheshrc27/reelpost/internal/service"
)

type ResultsHandler struct {
	results  repository.PostingResultRepository
	inputs   repository.InputRepository
	enqueuer queue.Enqueuer
}

// NewResultsHandler serves the results record and plan state. enqueuer may
// be nil, in which case run requests are refused with 503, the same answer
// given when the queue cannot be reached.
func NewResultsHandler(results repository.PostingResultRepository, inputs repository.InputRepository, enqueuer queue.Enqueuer) *ResultsHandler {
	return &ResultsHandler{results: results, inputs: inputs, enqueuer: enqueuer}
}

func (h *ResultsHandler) ListResults(c *fiber.Ctx) error {
	results, err := h.results.List(c.Context())
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to load results",
		})
	}

	platform := models.Platform(c.Query("platform"))
	videoID := c.Query("video_id")

	filtered := make([]*models.PostResult, 0, len(results))
	for _, r := range results {
		if platform != "" && r.Platform != platform {
			continue
		}
		if videoID != "" && r.VideoID != videoID {
			continue
		}
		filtered = append(filtered, r)
	}

	return c.Status(fiber.StatusOK).JSON(filtered)
}

type platformCounts struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Summary reports attempt counts per platform and how many (video,
// platform) pairs are done.
func (h *ResultsHandler) Summary(c *fiber.Ctx) error {
	results, err := h.results.List(c.Context())
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to load results",
		})
	}

	perPlatform := make(map[models.Platform]*platformCounts, len(models.Platforms))
	for _, p := range models.Platforms {
		perPlatform[p] = &platformCounts{}
	}
	done := make(map[string]struct{})
	for _, r := range results {
		counts, ok := perPlatform[r.Platform]
		if !ok {
			counts = &platformCounts{}
			perPlatform[r.Platform] = counts
		}
		if r.Success {
			counts.Succeeded++
			done[r.VideoID+"/"+string(r.Platform)] = struct{}{}
		} else {
			counts.Failed++
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"attempts":  len(results),
		"posted":    len(done),
		"platforms": perPlatform,
	})
}

func (h *ResultsHandler) PlanWarnings(c *fiber.Ctx) error {
	plan, err := h.inputs.LoadPlan()
	if err != nil {
		return inputError(c, err)
	}
	videos, err := h.inputs.LoadMetadata()
	if err != nil {
		return inputError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"warnings": service.ValidatePlan(plan, len(videos)),
	})
}

type runRequest struct {
	DryRun       bool `json:"dry_run"`
	DelaySeconds int  `json:"delay_seconds"`
}

// EnqueueRun schedules a plan execution on the worker queue.
func (h *ResultsHandler) EnqueueRun(c *fiber.Ctx) error {
	if h.enqueuer == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Run queue is not available",
		})
	}

	var req runRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
	}
	if req.DelaySeconds < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "delay_seconds must not be negative",
		})
	}

	info, err := queue.EnqueuePlan(h.enqueuer, queue.ExecutePlanPayload{DryRun: req.DryRun},
		time.Duration(req.DelaySeconds)*time.Second)
	if err != nil {
		slog.Error("enqueue run failed", "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Run queue is not available",
		})
	}

	slog.Info("run enqueued", "requested_by", GetSubject(c), "task_id", info.ID)
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "Run scheduled successfully",
		"task_id": info.ID,
	})
}

func inputError(c *fiber.Ctx, err error) error {
	if errors.Is(err, repository.ErrInputMissing) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	slog.Error(err.Error())
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Unable to load plan",
	})
}
