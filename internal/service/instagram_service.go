package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	config "github.com/maheshrc27/reelpost/configs"
	"github.com/maheshrc27/reelpost/internal/models"
	"github.com/maheshrc27/reelpost/internal/transfer"
)

type instagramService struct {
	cfg    config.Instagram
	client *http.Client
	window pollWindow
	logger *slog.Logger
}

// NewInstagramService posts Reels through the Instagram Graph API. The
// locator passed to Post is a public video URL; Instagram fetches the bytes
// itself.
func NewInstagramService(cfg config.Config, client *http.Client, logger *slog.Logger) PlatformUploader {
	if client == nil {
		client = http.DefaultClient
	}
	return &instagramService{
		cfg:    cfg.Instagram,
		client: client,
		window: pollWindow{interval: cfg.PollInterval, timeout: cfg.PollTimeout},
		logger: logger.With("platform", models.PlatformInstagram),
	}
}

func (ig *instagramService) Platform() models.Platform { return models.PlatformInstagram }

func (ig *instagramService) Configured() bool {
	return ig.cfg.UserID != "" && ig.cfg.AccessToken != ""
}

func (ig *instagramService) Post(ctx context.Context, videoURL, caption string, hashtags []string) *Outcome {
	s := &uploadSession{
		locator: videoURL,
		caption: BuildCaption(caption, hashtags, separatorParagraph),
	}
	return runUpload(ctx, ig, ig.window, ig.logger, s)
}

func (ig *instagramService) platform() models.Platform { return models.PlatformInstagram }

func (ig *instagramService) timeoutPolicy() timeoutPolicy {
	return timeoutPolicy{success: false, stage: "container processing"}
}

func (ig *instagramService) precondition(s *uploadSession) error {
	if !ig.Configured() {
		return errors.New("INSTAGRAM_USER_ID and INSTAGRAM_ACCESS_TOKEN must be set")
	}
	if s.locator == "" {
		return errors.New("no public video URL given")
	}
	return nil
}

// initiate creates a REELS media container.
func (ig *instagramService) initiate(ctx context.Context, s *uploadSession) error {
	params := url.Values{}
	params.Set("media_type", "REELS")
	params.Set("video_url", s.locator)
	params.Set("caption", s.caption)
	params.Set("access_token", ig.cfg.AccessToken)

	reqURL := fmt.Sprintf("%s/%s/media?%s", ig.cfg.GraphURL, ig.cfg.UserID, params.Encode())
	status, body, err := ig.do(ctx, http.MethodPost, reqURL)
	if err != nil {
		return fmt.Errorf("container creation failed: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("container creation failed: %s", body)
	}

	var result transfer.InstagramContainerResponse
	if err := json.Unmarshal(body, &result); err != nil || result.ID == "" {
		return fmt.Errorf("no container ID returned: %s", body)
	}
	s.handle = result.ID
	return nil
}

// transfer is a no-op: the container was created from a hosted URL.
func (ig *instagramService) transfer(ctx context.Context, s *uploadSession) error { return nil }

func (ig *instagramService) finish(ctx context.Context, s *uploadSession) error { return nil }

func (ig *instagramService) checkStatus(ctx context.Context, s *uploadSession) (pollState, string) {
	params := url.Values{}
	params.Set("fields", "status_code")
	params.Set("access_token", ig.cfg.AccessToken)

	reqURL := fmt.Sprintf("%s/%s?%s", ig.cfg.GraphURL, s.handle, params.Encode())
	_, body, err := ig.do(ctx, http.MethodGet, reqURL)
	if err != nil {
		ig.logger.Debug("status check failed", "error", err)
		return pollPending, ""
	}

	var status transfer.InstagramContainerStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return pollPending, ""
	}

	switch status.StatusCode {
	case transfer.InstagramStatusFinished:
		return pollComplete, ""
	case transfer.InstagramStatusError:
		return pollFailed, fmt.Sprintf("container processing failed: %s", body)
	}
	return pollPending, ""
}

func (ig *instagramService) publish(ctx context.Context, s *uploadSession) error {
	params := url.Values{}
	params.Set("creation_id", s.handle)
	params.Set("access_token", ig.cfg.AccessToken)

	reqURL := fmt.Sprintf("%s/%s/media_publish?%s", ig.cfg.GraphURL, ig.cfg.UserID, params.Encode())
	status, body, err := ig.do(ctx, http.MethodPost, reqURL)
	if err != nil {
		return fmt.Errorf("publish failed: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("publish failed: %s", body)
	}

	var result transfer.InstagramPublishResponse
	if err := json.Unmarshal(body, &result); err != nil {
		ig.logger.Warn("could not decode publish response", "body", string(body))
	}
	s.nativeID = result.ID
	return nil
}

func (ig *instagramService) do(ctx context.Context, method, reqURL string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := ig.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("HTTP request error: %w", stripURL(err))
	}

	body, err := readResponse(resp)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("error reading response body: %w", err)
	}
	return resp.StatusCode, body, nil
}
