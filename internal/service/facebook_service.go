package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"

	config "github.com/maheshrc27/reelpost/configs"
	"github.com/maheshrc27/reelpost/internal/models"
	"github.com/maheshrc27/reelpost/internal/transfer"
)

type facebookService struct {
	cfg    config.Facebook
	client *http.Client
	window pollWindow
	logger *slog.Logger
}

// NewFacebookService posts Page Reels using the resumable video_reels flow:
// start, binary upload to the rupload host, then finish with
// video_state=PUBLISHED.
func NewFacebookService(cfg config.Config, client *http.Client, logger *slog.Logger) PlatformUploader {
	if client == nil {
		client = http.DefaultClient
	}
	return &facebookService{
		cfg:    cfg.Facebook,
		client: client,
		window: pollWindow{interval: cfg.PollInterval, timeout: cfg.PollTimeout},
		logger: logger.With("platform", models.PlatformFacebook),
	}
}

func (fb *facebookService) Platform() models.Platform { return models.PlatformFacebook }

func (fb *facebookService) Configured() bool {
	return fb.cfg.PageID != "" && fb.cfg.PageAccessToken != ""
}

func (fb *facebookService) Post(ctx context.Context, videoPath, caption string, hashtags []string) *Outcome {
	s := &uploadSession{
		locator: videoPath,
		caption: BuildCaption(caption, hashtags, separatorParagraph),
	}
	return runUpload(ctx, fb, fb.window, fb.logger, s)
}

func (fb *facebookService) platform() models.Platform { return models.PlatformFacebook }

// Reaching the poll ceiling counts as published on Facebook.
func (fb *facebookService) timeoutPolicy() timeoutPolicy {
	return timeoutPolicy{success: true, stage: "publishing"}
}

func (fb *facebookService) precondition(s *uploadSession) error {
	if !fb.Configured() {
		return errors.New("FACEBOOK_PAGE_ID and FACEBOOK_PAGE_ACCESS_TOKEN must be set")
	}
	info, err := os.Stat(s.locator)
	if err != nil || info.IsDir() {
		return fmt.Errorf("video file not found: %s", s.locator)
	}
	s.fileSize = info.Size()
	return nil
}

func (fb *facebookService) initiate(ctx context.Context, s *uploadSession) error {
	params := url.Values{}
	params.Set("upload_phase", "start")
	params.Set("access_token", fb.cfg.PageAccessToken)

	status, body, err := fb.do(ctx, http.MethodPost, fb.reelsURL(params), nil, nil)
	if err != nil {
		return fmt.Errorf("init failed: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("init failed: %s", body)
	}

	var result transfer.FacebookReelStartResponse
	if err := json.Unmarshal(body, &result); err != nil || result.VideoID == "" {
		return fmt.Errorf("no video_id returned: %s", body)
	}
	s.handle = result.VideoID
	return nil
}

// transfer streams the file to the rupload host in one request.
func (fb *facebookService) transfer(ctx context.Context, s *uploadSession) error {
	file, err := os.Open(s.locator)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	defer file.Close()

	headers := http.Header{}
	headers.Set("Authorization", "OAuth "+fb.cfg.PageAccessToken)
	headers.Set("offset", "0")
	headers.Set("file_size", strconv.FormatInt(s.fileSize, 10))
	headers.Set("Content-Type", "application/octet-stream")

	reqURL := fmt.Sprintf("%s/%s", fb.cfg.RuploadURL, s.handle)
	status, body, err := fb.do(ctx, http.MethodPost, reqURL, headers, &sizedBody{r: file, n: s.fileSize})
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("upload failed: %s", body)
	}
	return nil
}

func (fb *facebookService) finish(ctx context.Context, s *uploadSession) error {
	params := url.Values{}
	params.Set("upload_phase", "finish")
	params.Set("video_id", s.handle)
	params.Set("video_state", transfer.FacebookStatePublished)
	params.Set("description", s.caption)
	params.Set("access_token", fb.cfg.PageAccessToken)

	status, body, err := fb.do(ctx, http.MethodPost, fb.reelsURL(params), nil, nil)
	if err != nil {
		return fmt.Errorf("finish/publish failed: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("finish/publish failed: %s", body)
	}
	return nil
}

func (fb *facebookService) checkStatus(ctx context.Context, s *uploadSession) (pollState, string) {
	params := url.Values{}
	params.Set("fields", "status")
	params.Set("access_token", fb.cfg.PageAccessToken)

	reqURL := fmt.Sprintf("%s/%s?%s", fb.cfg.GraphURL, s.handle, params.Encode())
	_, body, err := fb.do(ctx, http.MethodGet, reqURL, nil, nil)
	if err != nil {
		fb.logger.Debug("status check failed", "error", err)
		return pollPending, ""
	}

	var result transfer.FacebookStatusResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return pollPending, ""
	}

	switch result.Status.PublishingPhase.Status {
	case transfer.FacebookPhaseComplete:
		return pollComplete, ""
	case transfer.FacebookPhaseError:
		return pollFailed, fmt.Sprintf("publishing error: %s", body)
	}
	return pollPending, ""
}

// publish only records the id; the finish call already published the reel.
func (fb *facebookService) publish(ctx context.Context, s *uploadSession) error {
	s.nativeID = s.handle
	return nil
}

func (fb *facebookService) reelsURL(params url.Values) string {
	return fmt.Sprintf("%s/%s/video_reels?%s", fb.cfg.GraphURL, fb.cfg.PageID, params.Encode())
}

type sizedBody struct {
	r io.Reader
	n int64
}

func (fb *facebookService) do(ctx context.Context, method, reqURL string, headers http.Header, body *sizedBody) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = body.r
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("error creating request: %w", err)
	}
	if body != nil {
		req.ContentLength = body.n
	}
	for key, values := range headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := fb.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("HTTP request error: %w", stripURL(err))
	}

	respBody, err := readResponse(resp)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("error reading response body: %w", err)
	}
	return resp.StatusCode, respBody, nil
}
