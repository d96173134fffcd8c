package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	config "github.com/maheshrc27/reelpost/configs"
	"github.com/maheshrc27/reelpost/internal/models"
	"github.com/maheshrc27/reelpost/internal/transfer"
	"golang.org/x/oauth2"
)

type tiktokService struct {
	cfg    config.Tiktok
	api    *http.Client
	upload *http.Client
	window pollWindow
	logger *slog.Logger
}

// NewTiktokService posts videos through the TikTok Content Posting API using
// FILE_UPLOAD. API calls carry the access token as a bearer token; the byte
// transfer goes to the pre-signed upload_url returned by init.
func NewTiktokService(cfg config.Config, client *http.Client, logger *slog.Logger) PlatformUploader {
	if client == nil {
		client = http.DefaultClient
	}

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, client)
	token := &oauth2.Token{AccessToken: cfg.Tiktok.AccessToken, TokenType: "Bearer"}

	return &tiktokService{
		cfg:    cfg.Tiktok,
		api:    oauth2.NewClient(ctx, oauth2.StaticTokenSource(token)),
		upload: client,
		window: pollWindow{interval: cfg.PollInterval, timeout: cfg.PollTimeout},
		logger: logger.With("platform", models.PlatformTiktok),
	}
}

func (s *tiktokService) Platform() models.Platform { return models.PlatformTiktok }

func (s *tiktokService) Configured() bool { return s.cfg.AccessToken != "" }

func (s *tiktokService) Post(ctx context.Context, videoPath, caption string, hashtags []string) *Outcome {
	session := &uploadSession{
		locator: videoPath,
		caption: BuildCaption(caption, hashtags, separatorInline),
	}
	return runUpload(ctx, s, s.window, s.logger, session)
}

func (s *tiktokService) platform() models.Platform { return models.PlatformTiktok }

func (s *tiktokService) timeoutPolicy() timeoutPolicy {
	return timeoutPolicy{success: false, stage: "publish"}
}

func (s *tiktokService) precondition(session *uploadSession) error {
	if !s.Configured() {
		return errors.New("TIKTOK_ACCESS_TOKEN must be set")
	}
	info, err := os.Stat(session.locator)
	if err != nil || info.IsDir() {
		return fmt.Errorf("video file not found: %s", session.locator)
	}
	session.fileSize = info.Size()
	return nil
}

func (s *tiktokService) initiate(ctx context.Context, session *uploadSession) error {
	initRequest := transfer.VideoUploadRequest{
		PostInfo: transfer.VideoPostInfo{
			Title:        session.caption,
			PrivacyLevel: s.cfg.PrivacyLevel,
		},
		SourceInfo: transfer.VideoSourceInfo{
			Source:          transfer.TiktokSourceFileUpload,
			VideoSize:       session.fileSize,
			ChunkSize:       session.fileSize,
			TotalChunkCount: 1,
		},
	}

	status, body, err := s.postJSON(ctx, s.cfg.APIURL+"/post/publish/video/init/", initRequest)
	if err != nil {
		return fmt.Errorf("init failed: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("init failed (%d): %s", status, body)
	}

	var result transfer.TikTokUploadResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("init error: %s", body)
	}
	if result.Error.Code != transfer.TiktokErrorOK {
		return fmt.Errorf("init error: %s", body)
	}
	if result.Data.PublishID == "" || result.Data.UploadURL == "" {
		return fmt.Errorf("init error: missing publish_id or upload_url: %s", body)
	}

	session.handle = result.Data.PublishID
	session.uploadURL = result.Data.UploadURL
	return nil
}

// transfer PUTs the whole file as one chunk, streamed from disk.
func (s *tiktokService) transfer(ctx context.Context, session *uploadSession) error {
	file, err := os.Open(session.locator)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	defer file.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, session.uploadURL, file)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	req.ContentLength = session.fileSize
	req.Header.Set("Content-Range", fmt.Sprintf("bytes 0-%d/%d", session.fileSize-1, session.fileSize))
	req.Header.Set("Content-Type", detectVideoContentType(session.locator))

	resp, err := s.upload.Do(req)
	if err != nil {
		return fmt.Errorf("upload failed: %w", stripURL(err))
	}
	body, readErr := readResponse(resp)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		if readErr != nil {
			return fmt.Errorf("upload failed (%d): read response: %w", resp.StatusCode, readErr)
		}
		return fmt.Errorf("upload failed (%d): %s", resp.StatusCode, body)
	}
	if readErr != nil {
		s.logger.Warn("could not read upload response", "error", readErr)
	}
	return nil
}

// finish is a no-op: the post is published according to the privacy level
// sent with init.
func (s *tiktokService) finish(ctx context.Context, session *uploadSession) error { return nil }

func (s *tiktokService) checkStatus(ctx context.Context, session *uploadSession) (pollState, string) {
	status, body, err := s.postJSON(ctx, s.cfg.APIURL+"/post/publish/status/fetch/",
		transfer.TiktokStatusRequest{PublishID: session.handle})
	if err != nil || status != http.StatusOK {
		return pollPending, ""
	}

	var result transfer.TiktokStatusResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return pollPending, ""
	}

	switch result.Data.Status {
	case transfer.TiktokStatusPublishDone:
		return pollComplete, ""
	case transfer.TiktokStatusFailed, transfer.TiktokStatusPublishFailed:
		reason := result.Data.FailReason
		if reason == "" {
			reason = "unknown"
		}
		return pollFailed, fmt.Sprintf("publish failed: %s", reason)
	}
	return pollPending, ""
}

func (s *tiktokService) publish(ctx context.Context, session *uploadSession) error {
	session.nativeID = session.handle
	return nil
}

func (s *tiktokService) postJSON(ctx context.Context, reqURL string, payload any) (int, []byte, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("error marshalling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return 0, nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")

	resp, err := s.api.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("HTTP request error: %w", stripURL(err))
	}

	body, err := readResponse(resp)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("error reading response body: %w", err)
	}
	return resp.StatusCode, body, nil
}
