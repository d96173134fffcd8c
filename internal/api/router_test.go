package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	config "github.com/maheshrc27/reelpost/configs"
	"github.com/maheshrc27/reelpost/internal/api/handlers"
	"github.com/maheshrc27/reelpost/internal/models"
	"github.com/maheshrc27/reelpost/internal/queue"
	"github.com/maheshrc27/reelpost/internal/repository"
	"github.com/maheshrc27/reelpost/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const testSecret = "test-secret"

type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: "task-42", Type: task.Type()}, nil
}

type RouterTestSuite struct {
	suite.Suite
	dir      string
	results  repository.PostingResultRepository
	enqueuer *fakeEnqueuer
	app      *fiber.App
	token    string
}

func (s *RouterTestSuite) SetupTest() {
	s.dir = s.T().TempDir()
	cfg := config.Config{TmpDir: s.dir, SecretKey: testSecret}

	s.results = repository.NewJSONResultRepository(cfg.ResultsPath())
	inputs := repository.NewInputRepository(cfg.PlanPath(), cfg.MetadataPath(), cfg.URLMapPath())
	s.enqueuer = &fakeEnqueuer{}

	s.app = NewApp(cfg, handlers.NewResultsHandler(s.results, inputs, s.enqueuer))

	token, err := utils.GenerateToken(testSecret, "ops", time.Hour)
	s.Require().NoError(err)
	s.token = token
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func (s *RouterTestSuite) do(method, target, body string) (*http.Response, []byte) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Authorization", "Bearer "+s.token)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.app.Test(req, -1)
	s.Require().NoError(err)
	data, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return resp, data
}

func (s *RouterTestSuite) seedResults() {
	ctx := s.T().Context()
	for _, r := range []*models.PostResult{
		{VideoID: "v001", Platform: models.PlatformTiktok, Error: "publish failed: unknown"},
		{VideoID: "v001", Platform: models.PlatformTiktok, Success: true, PublishID: "p1"},
		{VideoID: "v002", Platform: models.PlatformInstagram, Success: true, MediaID: "m1"},
	} {
		s.Require().NoError(s.results.Create(ctx, r))
	}
}

func (s *RouterTestSuite) TestRequiresBearerToken() {
	for _, header := range []string{"", "Bearer ", "Token abc", "Bearer not-a-jwt"} {
		req := httptest.NewRequest(http.MethodGet, "/api/results", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := s.app.Test(req, -1)
		s.Require().NoError(err)
		s.Equal(http.StatusUnauthorized, resp.StatusCode, header)
	}
}

func (s *RouterTestSuite) TestListResults_Filters() {
	s.seedResults()

	resp, body := s.do(http.MethodGet, "/api/results", "")
	s.Equal(http.StatusOK, resp.StatusCode)
	var all []models.PostResult
	s.Require().NoError(json.Unmarshal(body, &all))
	s.Len(all, 3)

	resp, body = s.do(http.MethodGet, "/api/results?platform=tiktok&video_id=v001", "")
	s.Equal(http.StatusOK, resp.StatusCode)
	var filtered []models.PostResult
	s.Require().NoError(json.Unmarshal(body, &filtered))
	s.Len(filtered, 2)
	for _, r := range filtered {
		s.Equal(models.PlatformTiktok, r.Platform)
	}
}

func (s *RouterTestSuite) TestListResults_EmptyRecord() {
	resp, body := s.do(http.MethodGet, "/api/results", "")

	s.Equal(http.StatusOK, resp.StatusCode)
	s.JSONEq(`[]`, string(body))
}

func (s *RouterTestSuite) TestSummary() {
	s.seedResults()

	resp, body := s.do(http.MethodGet, "/api/summary", "")

	s.Equal(http.StatusOK, resp.StatusCode)
	s.JSONEq(`{
		"attempts": 3,
		"posted": 2,
		"platforms": {
			"instagram": {"succeeded": 1, "failed": 0},
			"tiktok": {"succeeded": 1, "failed": 1},
			"facebook": {"succeeded": 0, "failed": 0}
		}
	}`, string(body))
}

func (s *RouterTestSuite) TestPlanWarnings() {
	resp, _ := s.do(http.MethodGet, "/api/plan/warnings", "")
	s.Equal(http.StatusNotFound, resp.StatusCode)

	plan := `{"items": [{"video_id": "v001", "instagram": {"caption": "", "hashtags": []}}],
		"posting_plan": {"recommended_schedule": []}}`
	s.Require().NoError(os.WriteFile(filepath.Join(s.dir, "posting_plan.json"), []byte(plan), 0o644))
	s.Require().NoError(os.WriteFile(filepath.Join(s.dir, "video_metadata.json"), []byte(`[{"video_id":"v001","file_name":"a.mp4"}]`), 0o644))

	resp, body := s.do(http.MethodGet, "/api/plan/warnings", "")
	s.Equal(http.StatusOK, resp.StatusCode)

	var payload struct {
		Warnings []string `json:"warnings"`
	}
	s.Require().NoError(json.Unmarshal(body, &payload))
	s.NotEmpty(payload.Warnings)
}

func (s *RouterTestSuite) TestEnqueueRun() {
	resp, body := s.do(http.MethodPost, "/api/runs", `{"dry_run": true, "delay_seconds": 60}`)

	s.Equal(http.StatusAccepted, resp.StatusCode)
	s.JSONEq(`{"message": "Run scheduled successfully", "task_id": "task-42"}`, string(body))
	s.Require().Len(s.enqueuer.tasks, 1)
	s.Equal(queue.TaskTypeExecutePlan, s.enqueuer.tasks[0].Type())
	s.JSONEq(`{"dry_run": true}`, string(s.enqueuer.tasks[0].Payload()))
}

func (s *RouterTestSuite) TestEnqueueRun_RejectsNegativeDelay() {
	resp, _ := s.do(http.MethodPost, "/api/runs", `{"delay_seconds": -5}`)

	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Empty(s.enqueuer.tasks)
}

func (s *RouterTestSuite) TestEnqueueRun_UnreachableQueue() {
	s.enqueuer.err = errors.New("redis down")

	resp, _ := s.do(http.MethodPost, "/api/runs", "")

	s.Equal(http.StatusServiceUnavailable, resp.StatusCode)
	s.Empty(s.enqueuer.tasks)
}

func TestEnqueueRun_NoQueue(t *testing.T) {
	cfg := config.Config{TmpDir: t.TempDir(), SecretKey: testSecret}
	results := repository.NewJSONResultRepository(cfg.ResultsPath())
	inputs := repository.NewInputRepository(cfg.PlanPath(), cfg.MetadataPath(), cfg.URLMapPath())
	app := NewApp(cfg, handlers.NewResultsHandler(results, inputs, nil))

	token, err := utils.GenerateToken(testSecret, "ops", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/runs", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)

	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
