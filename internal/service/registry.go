package service

import (
	"context"
	"fmt"

	"github.com/maheshrc27/reelpost/internal/models"
	"github.com/maheshrc27/reelpost/internal/repository"
)

type resultKey struct {
	videoID  string
	platform models.Platform
}

// PublishRegistry is the append-only record of posting attempts. Only
// successful results mark a (video, platform) pair as done.
type PublishRegistry struct {
	repo      repository.PostingResultRepository
	results   []*models.PostResult
	succeeded map[resultKey]struct{}
}

func NewPublishRegistry(repo repository.PostingResultRepository) *PublishRegistry {
	return &PublishRegistry{
		repo:      repo,
		succeeded: make(map[resultKey]struct{}),
	}
}

// Load reads every stored result. It replaces whatever was loaded before.
func (r *PublishRegistry) Load(ctx context.Context) error {
	results, err := r.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("load publish registry: %w", err)
	}

	r.results = results
	r.succeeded = make(map[resultKey]struct{}, len(results))
	for _, res := range results {
		if res.Success {
			r.succeeded[resultKey{res.VideoID, res.Platform}] = struct{}{}
		}
	}
	return nil
}

func (r *PublishRegistry) AlreadySucceeded(videoID string, platform models.Platform) bool {
	_, ok := r.succeeded[resultKey{videoID, platform}]
	return ok
}

// Append persists result before recording it in memory.
func (r *PublishRegistry) Append(ctx context.Context, result *models.PostResult) error {
	if err := r.repo.Create(ctx, result); err != nil {
		return fmt.Errorf("persist result for %s/%s: %w", result.VideoID, result.Platform, err)
	}
	r.results = append(r.results, result)
	if result.Success {
		r.succeeded[resultKey{result.VideoID, result.Platform}] = struct{}{}
	}
	return nil
}

func (r *PublishRegistry) Results() []*models.PostResult {
	out := make([]*models.PostResult, len(r.results))
	copy(out, r.results)
	return out
}
