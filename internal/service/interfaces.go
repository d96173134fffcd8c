package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/maheshrc27/reelpost/internal/models"
)

// PlatformUploader publishes one video to one platform. Post never retries
// and never returns a Go error: every failure is reported in the Outcome.
type PlatformUploader interface {
	Platform() models.Platform
	Configured() bool
	Post(ctx context.Context, locator, caption string, hashtags []string) *Outcome
}

// ResultNotifier is told about every result after it has been persisted.
type ResultNotifier interface {
	Notify(ctx context.Context, result *models.PostResult) error
}
