package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/maheshrc27/reelpost/internal/models"
)

// PostingResultRepository is the durable backing of the publish registry.
// Create must have persisted the row by the time it returns.
type PostingResultRepository interface {
	List(ctx context.Context) ([]*models.PostResult, error)
	Create(ctx context.Context, result *models.PostResult) error
}

type postingResultRepository struct {
	db *sqlx.DB
}

func NewPostingResultRepository(db *sqlx.DB) PostingResultRepository {
	return &postingResultRepository{db: db}
}

const publishResultsSchema = `
	CREATE TABLE IF NOT EXISTS publish_results (
		id            BIGSERIAL PRIMARY KEY,
		run_id        TEXT NOT NULL DEFAULT '',
		video_id      TEXT NOT NULL,
		platform      TEXT NOT NULL,
		success       BOOLEAN NOT NULL,
		posted_at     TEXT NOT NULL,
		error_message TEXT NOT NULL DEFAULT '',
		media_id      TEXT NOT NULL DEFAULT '',
		publish_id    TEXT NOT NULL DEFAULT '',
		fb_video_id   TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE UNIQUE INDEX IF NOT EXISTS publish_results_one_success
		ON publish_results (video_id, platform) WHERE success;`

// EnsureSchema creates the publish_results table when it is missing.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, publishResultsSchema); err != nil {
		return fmt.Errorf("create publish_results: %w", err)
	}
	return nil
}

func (r *postingResultRepository) Create(ctx context.Context, result *models.PostResult) error {
	query := `
		INSERT INTO publish_results (run_id, video_id, platform, success, posted_at,
			error_message, media_id, publish_id, fb_video_id)
		VALUES (:run_id, :video_id, :platform, :success, :posted_at,
			:error_message, :media_id, :publish_id, :fb_video_id)`

	if _, err := r.db.NamedExecContext(ctx, query, result); err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("insert publish result: %w", err)
	}
	return nil
}

func (r *postingResultRepository) List(ctx context.Context) ([]*models.PostResult, error) {
	query := `
		SELECT run_id, video_id, platform, success, posted_at,
			error_message, media_id, publish_id, fb_video_id
		FROM publish_results
		ORDER BY id`

	var results []*models.PostResult
	if err := r.db.SelectContext(ctx, &results, query); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("list publish results: %w", err)
	}
	return results, nil
}
