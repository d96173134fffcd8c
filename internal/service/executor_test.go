package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	config "github.com/maheshrc27/reelpost/configs"
	"github.com/maheshrc27/reelpost/internal/models"
	"github.com/maheshrc27/reelpost/internal/repository"
	"github.com/maheshrc27/reelpost/internal/service"
	"github.com/maheshrc27/reelpost/internal/service/mocks"
)

type ExecutorTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	instagram *mocks.MockPlatformUploader
	tiktok    *mocks.MockPlatformUploader
	facebook  *mocks.MockPlatformUploader
	notifier  *mocks.MockResultNotifier

	cfg    config.Config
	logger *slog.Logger
}

func (s *ExecutorTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())

	s.instagram = mocks.NewMockPlatformUploader(s.ctrl)
	s.tiktok = mocks.NewMockPlatformUploader(s.ctrl)
	s.facebook = mocks.NewMockPlatformUploader(s.ctrl)
	s.notifier = mocks.NewMockResultNotifier(s.ctrl)

	s.instagram.EXPECT().Platform().Return(models.PlatformInstagram).AnyTimes()
	s.tiktok.EXPECT().Platform().Return(models.PlatformTiktok).AnyTimes()
	s.facebook.EXPECT().Platform().Return(models.PlatformFacebook).AnyTimes()

	dir := s.T().TempDir()
	s.cfg = config.Config{
		TmpDir:    filepath.Join(dir, ".tmp"),
		VideosDir: filepath.Join(dir, "videos"),
	}
	s.Require().NoError(os.MkdirAll(s.cfg.TmpDir, 0o755))

	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	s.writeJSON(s.cfg.MetadataPath(), []models.VideoMetadata{
		{VideoID: "v001", FileName: "first.mp4"},
		{VideoID: "v002", FileName: "second.mp4"},
	})
}

func (s *ExecutorTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestExecutorTestSuite(t *testing.T) {
	suite.Run(t, new(ExecutorTestSuite))
}

func (s *ExecutorTestSuite) writeJSON(path string, v any) {
	data, err := json.Marshal(v)
	s.Require().NoError(err)
	s.Require().NoError(os.WriteFile(path, data, 0o644))
}

func (s *ExecutorTestSuite) writePlan(schedule ...models.ScheduleEntry) {
	item := func(id string) models.PlanItem {
		return models.PlanItem{
			VideoID:   id,
			Instagram: &models.PlatformContent{Caption: id + " ig", Hashtags: []string{"a", "b", "c", "d", "e", "f"}},
			Tiktok:    &models.PlatformContent{Caption: id + " tt", Hashtags: []string{"a", "b", "c"}},
			Facebook:  &models.PlatformContent{Caption: id + " fb", Hashtags: []string{"a", "b", "c"}},
		}
	}
	s.writeJSON(s.cfg.PlanPath(), models.PostingPlan{
		Items:       []models.PlanItem{item("v001"), item("v002")},
		PostingPlan: models.SchedulePlan{RecommendedSchedule: schedule},
	})
}

func (s *ExecutorTestSuite) newExecutor(notifier service.ResultNotifier) *service.ScheduleExecutor {
	inputs := repository.NewInputRepository(s.cfg.PlanPath(), s.cfg.MetadataPath(), s.cfg.URLMapPath())
	registry := service.NewPublishRegistry(repository.NewJSONResultRepository(s.cfg.ResultsPath()))
	return service.NewScheduleExecutor(
		s.cfg,
		inputs,
		registry,
		[]service.PlatformUploader{s.instagram, s.tiktok, s.facebook},
		notifier,
		s.logger,
	)
}

func (s *ExecutorTestSuite) storedResults() []models.PostResult {
	data, err := os.ReadFile(s.cfg.ResultsPath())
	s.Require().NoError(err)
	var results []models.PostResult
	s.Require().NoError(json.Unmarshal(data, &results))
	return results
}

func entry(videoID string, platform models.Platform, at string) models.ScheduleEntry {
	return models.ScheduleEntry{VideoID: videoID, Platform: platform, PublishTimeLocal: at}
}

func (s *ExecutorTestSuite) TestRun_InstagramWithoutHostedURLFails() {
	s.cfg.Instagram.AccessToken = "ig-token"
	s.writePlan(entry("v001", models.PlatformInstagram, "09:00"))

	summary, err := s.newExecutor(nil).Run(context.Background(), service.RunOptions{})

	s.Require().NoError(err)
	s.Equal(1, summary.Failed)
	s.Equal(1, summary.ExitCode())
	s.Equal(service.StatusFailed, summary.Entries[0].Status)

	results := s.storedResults()
	s.Require().Len(results, 1)
	s.False(results[0].Success)
	s.Equal("v001", results[0].VideoID)
	s.Contains(results[0].Error, "no S3 URL")
	s.Equal(summary.RunID, results[0].RunID)
}

func (s *ExecutorTestSuite) TestRun_ResumeSkipsAlreadyPosted() {
	s.cfg.Facebook.PageAccessToken = "fb-token"
	s.writePlan(entry("v001", models.PlatformFacebook, "09:00"))

	s.facebook.EXPECT().
		Post(gomock.Any(), filepath.Join(s.cfg.VideosDir, "first.mp4"), "v001 fb", []string{"a", "b", "c"}).
		Return(&service.Outcome{Success: true, Platform: models.PlatformFacebook, NativeID: "fbv-1"}).
		Times(1)

	first, err := s.newExecutor(nil).Run(context.Background(), service.RunOptions{})
	s.Require().NoError(err)
	s.Equal(1, first.Succeeded)

	for range 2 {
		again, err := s.newExecutor(nil).Run(context.Background(), service.RunOptions{})
		s.Require().NoError(err)
		s.Equal(0, again.Succeeded)
		s.Equal(1, again.Skipped)
		s.Equal(0, again.ExitCode())
		s.Equal(service.StatusSkippedAlreadyPosted, again.Entries[0].Status)
	}

	results := s.storedResults()
	s.Require().Len(results, 1)
	s.True(results[0].Success)
	s.Equal("fbv-1", results[0].FBVideoID)
	s.Empty(results[0].MediaID)
}

func (s *ExecutorTestSuite) TestRun_ReusedExecutorSeesResultsFromOtherWriters() {
	s.cfg.Facebook.PageAccessToken = "fb-token"
	s.writePlan(entry("v001", models.PlatformFacebook, "09:00"))

	s.facebook.EXPECT().
		Post(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&service.Outcome{Platform: models.PlatformFacebook, Error: "upload failed: boom"}).
		Times(1)

	executor := s.newExecutor(nil)

	first, err := executor.Run(context.Background(), service.RunOptions{})
	s.Require().NoError(err)
	s.Equal(1, first.Failed)

	other := repository.NewJSONResultRepository(s.cfg.ResultsPath())
	s.Require().NoError(other.Create(context.Background(), &models.PostResult{
		VideoID:   "v001",
		Platform:  models.PlatformFacebook,
		Success:   true,
		FBVideoID: "fbv-cli",
	}))

	second, err := executor.Run(context.Background(), service.RunOptions{})
	s.Require().NoError(err)
	s.Equal(1, second.Skipped)
	s.Equal(service.StatusSkippedAlreadyPosted, second.Entries[0].Status)

	results := s.storedResults()
	s.Require().Len(results, 2)
	s.False(results[0].Success)
	s.Equal("fbv-cli", results[1].FBVideoID)
}

func (s *ExecutorTestSuite) TestRun_DuplicateEntryInOneRunPostsOnce() {
	s.cfg.Facebook.PageAccessToken = "fb-token"
	s.writePlan(
		entry("v001", models.PlatformFacebook, "09:00"),
		entry("v001", models.PlatformFacebook, "18:00"),
	)

	s.facebook.EXPECT().
		Post(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&service.Outcome{Success: true, Platform: models.PlatformFacebook, NativeID: "fbv-1"}).
		Times(1)

	summary, err := s.newExecutor(nil).Run(context.Background(), service.RunOptions{})

	s.Require().NoError(err)
	s.Equal(1, summary.Succeeded)
	s.Equal(1, summary.Skipped)
	s.Equal(service.StatusSucceeded, summary.Entries[0].Status)
	s.Equal(service.StatusSkippedAlreadyPosted, summary.Entries[1].Status)
	s.Len(s.storedResults(), 1)
}

func (s *ExecutorTestSuite) TestRun_EmptyContentObjectIsNoContent() {
	s.cfg.Tiktok.AccessToken = "tt-token"
	s.Require().NoError(os.WriteFile(s.cfg.PlanPath(), []byte(`{
		"items": [{"video_id": "v001", "tiktok": {}}],
		"posting_plan": {"recommended_schedule": [
			{"video_id": "v001", "platform": "tiktok", "publish_time_local": "09:00"}
		]}
	}`), 0o644))

	summary, err := s.newExecutor(nil).Run(context.Background(), service.RunOptions{})

	s.Require().NoError(err)
	s.Equal(1, summary.Skipped)
	s.Equal(service.StatusSkippedNoContent, summary.Entries[0].Status)
	s.NoFileExists(s.cfg.ResultsPath())
}

func (s *ExecutorTestSuite) TestRun_FailedAttemptIsRetriedNextRun() {
	s.cfg.Tiktok.AccessToken = "tt-token"
	s.writePlan(entry("v001", models.PlatformTiktok, "09:00"))

	gomock.InOrder(
		s.tiktok.EXPECT().Post(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&service.Outcome{Platform: models.PlatformTiktok, Error: "publish failed: unknown"}),
		s.tiktok.EXPECT().Post(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&service.Outcome{Success: true, Platform: models.PlatformTiktok, NativeID: "pub-1"}),
	)

	first, err := s.newExecutor(nil).Run(context.Background(), service.RunOptions{})
	s.Require().NoError(err)
	s.Equal(1, first.ExitCode())

	second, err := s.newExecutor(nil).Run(context.Background(), service.RunOptions{})
	s.Require().NoError(err)
	s.Equal(1, second.Succeeded)
	s.Equal(0, second.ExitCode())

	results := s.storedResults()
	s.Require().Len(results, 2)
	s.False(results[0].Success)
	s.True(results[1].Success)
	s.Equal("pub-1", results[1].PublishID)
}

func (s *ExecutorTestSuite) TestRun_NoPlatformsConfigured() {
	s.writePlan(entry("v001", models.PlatformFacebook, "09:00"))

	summary, err := s.newExecutor(nil).Run(context.Background(), service.RunOptions{})

	s.ErrorIs(err, service.ErrNoPlatformsConfigured)
	s.Nil(summary)
	s.NoFileExists(s.cfg.ResultsPath())
}

func (s *ExecutorTestSuite) TestRun_EmptyScheduleIsNoop() {
	s.writePlan()

	summary, err := s.newExecutor(nil).Run(context.Background(), service.RunOptions{})

	s.Require().NoError(err)
	s.Empty(summary.Entries)
	s.Equal(0, summary.ExitCode())
}

func (s *ExecutorTestSuite) TestRun_MissingPlan() {
	_, err := s.newExecutor(nil).Run(context.Background(), service.RunOptions{})

	s.ErrorIs(err, service.ErrInputMissing)
}

func (s *ExecutorTestSuite) TestRun_DryRunPreviewsWithoutPosting() {
	s.writePlan(entry("v001", models.PlatformInstagram, "09:00"), entry("v002", models.PlatformTiktok, "10:00"))
	plan, err := repository.NewInputRepository(s.cfg.PlanPath(), "", "").LoadPlan()
	s.Require().NoError(err)
	plan.Items[0].Instagram.Caption = strings.Repeat("x", 100)
	s.writeJSON(s.cfg.PlanPath(), plan)

	summary, err := s.newExecutor(nil).Run(context.Background(), service.RunOptions{DryRun: true})

	s.Require().NoError(err)
	s.Require().Len(summary.Entries, 2)
	preview := summary.Entries[0].Preview
	s.Require().NotNil(preview)
	s.Equal(service.StatusPreviewed, summary.Entries[0].Status)
	s.Equal("first.mp4", preview.FileName)
	s.Equal(strings.Repeat("x", 80)+"...", preview.Caption)
	s.Equal([]string{"a", "b", "c", "d", "e"}, preview.Hashtags)
	s.Equal(0, summary.Succeeded+summary.Failed+summary.Skipped)
	s.NoFileExists(s.cfg.ResultsPath())
}

func (s *ExecutorTestSuite) TestRun_SkipsMissingContentAndUnconfiguredPlatforms() {
	s.cfg.Facebook.PageAccessToken = "fb-token"
	s.writePlan(
		entry("v009", models.PlatformFacebook, "09:00"),
		entry("v001", models.PlatformTiktok, "10:00"),
	)

	summary, err := s.newExecutor(nil).Run(context.Background(), service.RunOptions{})

	s.Require().NoError(err)
	s.Equal(2, summary.Skipped)
	s.Equal(service.StatusSkippedNoContent, summary.Entries[0].Status)
	s.Equal(service.StatusSkippedNotConfigured, summary.Entries[1].Status)
	s.NoFileExists(s.cfg.ResultsPath())
}

func (s *ExecutorTestSuite) TestRun_MissingFileNameFails() {
	s.cfg.Tiktok.AccessToken = "tt-token"
	s.writeJSON(s.cfg.MetadataPath(), []models.VideoMetadata{})
	s.writePlan(entry("v001", models.PlatformTiktok, "09:00"))

	summary, err := s.newExecutor(nil).Run(context.Background(), service.RunOptions{})

	s.Require().NoError(err)
	s.Equal(1, summary.Failed)
	results := s.storedResults()
	s.Require().Len(results, 1)
	s.Equal("no video file path", results[0].Error)
}

func (s *ExecutorTestSuite) TestRun_InstagramPostsHostedURL() {
	s.cfg.Instagram.AccessToken = "ig-token"
	s.writeJSON(s.cfg.URLMapPath(), models.VideoURLMap{"v001": "https://cdn.example.com/first.mp4"})
	s.writePlan(entry("v001", models.PlatformInstagram, "09:00"))

	s.instagram.EXPECT().
		Post(gomock.Any(), "https://cdn.example.com/first.mp4", "v001 ig", gomock.Any()).
		Return(&service.Outcome{Success: true, Platform: models.PlatformInstagram, NativeID: "m-1"})

	summary, err := s.newExecutor(nil).Run(context.Background(), service.RunOptions{})

	s.Require().NoError(err)
	s.Equal(1, summary.Succeeded)
	s.Equal("m-1", s.storedResults()[0].MediaID)
}

func (s *ExecutorTestSuite) TestRun_PacesBetweenAttemptsOnly() {
	s.cfg.Facebook.PageAccessToken = "fb-token"
	s.cfg.PostDelay = 30 * time.Second
	s.writePlan(
		entry("v001", models.PlatformFacebook, "09:00"),
		entry("v002", models.PlatformFacebook, "10:00"),
		entry("v002", models.PlatformTiktok, "11:00"),
	)

	s.facebook.EXPECT().Post(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&service.Outcome{Success: true, Platform: models.PlatformFacebook, NativeID: "x"}).
		Times(2)

	var sleeps []time.Duration
	exec := s.newExecutor(nil)
	exec.SetSleep(func(ctx context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	})

	summary, err := exec.Run(context.Background(), service.RunOptions{})

	s.Require().NoError(err)
	s.Equal(2, summary.Succeeded)
	s.Equal(1, summary.Skipped)
	s.Equal([]time.Duration{30 * time.Second, 30 * time.Second}, sleeps)
}

func (s *ExecutorTestSuite) TestRun_NoSleepAfterLastEntry() {
	s.cfg.Facebook.PageAccessToken = "fb-token"
	s.cfg.PostDelay = 30 * time.Second
	s.writePlan(entry("v001", models.PlatformFacebook, "09:00"))

	s.facebook.EXPECT().Post(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&service.Outcome{Success: true, Platform: models.PlatformFacebook})

	exec := s.newExecutor(nil)
	exec.SetSleep(func(ctx context.Context, d time.Duration) error {
		s.Fail("unexpected sleep after the final entry")
		return nil
	})

	_, err := exec.Run(context.Background(), service.RunOptions{})
	s.Require().NoError(err)
}

func (s *ExecutorTestSuite) TestRun_NotifierErrorsDoNotChangeOutcome() {
	s.cfg.Facebook.PageAccessToken = "fb-token"
	s.writePlan(entry("v001", models.PlatformFacebook, "09:00"))

	s.facebook.EXPECT().Post(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&service.Outcome{Success: true, Platform: models.PlatformFacebook, NativeID: "fbv-7"})
	s.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, result *models.PostResult) error {
			s.Equal("fbv-7", result.FBVideoID)
			return errors.New("broker down")
		})

	summary, err := s.newExecutor(s.notifier).Run(context.Background(), service.RunOptions{})

	s.Require().NoError(err)
	s.Equal(1, summary.Succeeded)
}

func (s *ExecutorTestSuite) TestRun_CanceledContextStopsBeforeNextEntry() {
	s.cfg.Facebook.PageAccessToken = "fb-token"
	s.writePlan(
		entry("v001", models.PlatformFacebook, "09:00"),
		entry("v002", models.PlatformFacebook, "10:00"),
	)

	ctx, cancel := context.WithCancel(context.Background())
	s.facebook.EXPECT().Post(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string, string, []string) *service.Outcome {
			cancel()
			return &service.Outcome{Success: true, Platform: models.PlatformFacebook}
		})

	summary, err := s.newExecutor(nil).Run(ctx, service.RunOptions{})

	s.ErrorIs(err, context.Canceled)
	s.Require().NotNil(summary)
	s.Equal(1, summary.Succeeded)
	s.Len(s.storedResults(), 1)
}
