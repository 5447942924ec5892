package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	gosync "sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planner/backend/config"
	"planner/backend/gateway"
	"planner/backend/models"
	"planner/backend/routes"
	"planner/backend/sync"
	"planner/backend/utils"
)

// memStore — хранилище профилей в памяти для HTTP-тестов.
type memStore struct {
	mu   gosync.Mutex
	docs map[uint]*models.Profile
}

func newMemStore() *memStore { return &memStore{docs: make(map[uint]*models.Profile)} }

func (s *memStore) Get(ctx context.Context, userID uint) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs[userID].Clone(), nil
}

func (s *memStore) Set(ctx context.Context, userID uint, p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[userID] = p.Clone()
	return nil
}

type testEnv struct {
	app   *fiber.App
	token string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{JWTSecret: "test-secret", SyncDebounceMS: 1000}
	logger := log.New(io.Discard, "", 0)
	profiles := sync.NewRegistry(newMemStore(), logger, time.Minute)
	t.Cleanup(profiles.Close)

	app := fiber.New()
	timers := routes.SetupRoutes(app, routes.Deps{
		Cfg:      cfg,
		Profiles: profiles,
		Gate:     gateway.New(time.UTC),
		Loc:      time.UTC,
		Logger:   logger,
	})
	t.Cleanup(timers.Close)

	token, err := utils.GenerateJWTToken(1, cfg)
	require.NoError(t, err)

	return &testEnv{app: app, token: token}
}

// do выполняет запрос с токеном и разбирает конверт ответа.
func (e *testEnv) do(t *testing.T, method, target string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Authorization", e.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var envelope map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return resp.StatusCode, envelope
}

func data(envelope map[string]any) map[string]any {
	d, _ := envelope["data"].(map[string]any)
	return d
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/profile/", nil)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/api/profile/", nil)
	req.Header.Set("Authorization", "garbage")
	resp, err = env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProfileEndpoints(t *testing.T) {
	env := newTestEnv(t)

	status, envelope := env.do(t, http.MethodGet, "/api/profile/", nil)
	require.Equal(t, http.StatusOK, status)
	profile := data(envelope)
	assert.Equal(t, float64(0), profile["xp"])
	subjects, _ := profile["subjects"].(map[string]any)
	assert.Contains(t, subjects, "Physics")

	status, envelope = env.do(t, http.MethodPut, "/api/profile/goal", fiber.Map{"hours": 6.5})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 6.5, data(envelope)["daily_goal_hours"])

	// Отвергнутая мутация отдаёт прежний снимок, а не ошибку
	status, envelope = env.do(t, http.MethodPut, "/api/profile/goal", fiber.Map{"hours": 48})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 6.5, data(envelope)["daily_goal_hours"])

	status, envelope = env.do(t, http.MethodPut, "/api/profile/exams", fiber.Map{"exams": []string{"neet"}})
	require.Equal(t, http.StatusOK, status)
	subjects, _ = data(envelope)["subjects"].(map[string]any)
	assert.Contains(t, subjects, "Biology")

	// Сброс без подтверждения отклоняется
	status, _ = env.do(t, http.MethodPost, "/api/profile/reset", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, envelope = env.do(t, http.MethodPost, "/api/profile/reset?confirm=true", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(models.DefaultDailyGoalHours), data(envelope)["daily_goal_hours"])
}

func TestTaskEndpoints(t *testing.T) {
	env := newTestEnv(t)

	status, envelope := env.do(t, http.MethodPost, "/api/tasks/", fiber.Map{"text": "Revise thermodynamics", "subject_tag": "Physics"})
	require.Equal(t, http.StatusOK, status)
	tasks, _ := data(envelope)["tasks"].([]any)
	require.Len(t, tasks, 1)
	first, _ := tasks[0].(map[string]any)
	taskID, _ := first["id"].(string)
	require.NotEmpty(t, taskID)

	status, envelope = env.do(t, http.MethodPost, "/api/tasks/"+taskID+"/toggle", nil)
	require.Equal(t, http.StatusOK, status)
	tasks, _ = data(envelope)["tasks"].([]any)
	first, _ = tasks[0].(map[string]any)
	assert.Equal(t, true, first["completed"])

	status, _ = env.do(t, http.MethodDelete, "/api/tasks/"+taskID, nil)
	assert.Equal(t, http.StatusBadRequest, status, "удаление требует подтверждения")

	status, envelope = env.do(t, http.MethodDelete, "/api/tasks/"+taskID+"?confirm=true", nil)
	require.Equal(t, http.StatusOK, status)
	tasks, _ = data(envelope)["tasks"].([]any)
	assert.Empty(t, tasks)
}

func TestSyllabusEndpoints(t *testing.T) {
	env := newTestEnv(t)

	status, envelope := env.do(t, http.MethodPost, "/api/syllabus/Physics/chapters",
		fiber.Map{"name": "Kinematics", "grade": "11", "total_units": 3})
	require.Equal(t, http.StatusOK, status)

	subjects, _ := data(envelope)["subjects"].(map[string]any)
	physics, _ := subjects["Physics"].(map[string]any)
	chapters, _ := physics["chapters"].([]any)
	require.Len(t, chapters, 1)
	chapter, _ := chapters[0].(map[string]any)
	chapterID, _ := chapter["id"].(string)
	require.NotEmpty(t, chapterID)

	status, envelope = env.do(t, http.MethodPost, "/api/syllabus/Physics/chapters/"+chapterID+"/toggle",
		fiber.Map{"index": 1})
	require.Equal(t, http.StatusOK, status)
	subjects, _ = data(envelope)["subjects"].(map[string]any)
	physics, _ = subjects["Physics"].(map[string]any)
	chapters, _ = physics["chapters"].([]any)
	chapter, _ = chapters[0].(map[string]any)
	units, _ := chapter["units_done"].([]any)
	assert.Equal(t, []any{false, true, false}, units)

	status, _ = env.do(t, http.MethodDelete, "/api/syllabus/Physics/chapters/"+chapterID, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, envelope = env.do(t, http.MethodDelete, "/api/syllabus/Physics/chapters/"+chapterID+"?confirm=true", nil)
	require.Equal(t, http.StatusOK, status)
	subjects, _ = data(envelope)["subjects"].(map[string]any)
	physics, _ = subjects["Physics"].(map[string]any)
	chapters, _ = physics["chapters"].([]any)
	assert.Empty(t, chapters)
}

func TestMockEndpoints(t *testing.T) {
	env := newTestEnv(t)

	status, envelope := env.do(t, http.MethodPost, "/api/mocks/", fiber.Map{
		"exam_type": "jee_main",
		"name":      "AITS 1",
		"date":      "2026-03-01",
		"p":         80, "c": 65, "m": 72,
	})
	require.Equal(t, http.StatusOK, status)
	mocks, _ := data(envelope)["mock_tests"].([]any)
	require.Len(t, mocks, 1)
	got, _ := mocks[0].(map[string]any)
	assert.Equal(t, 217.0, got["total"])
	assert.Equal(t, 300.0, got["max_marks"])
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t)

	status, envelope := env.do(t, http.MethodGet, "/api/metrics/dashboard", nil)
	require.Equal(t, http.StatusOK, status)

	dash := data(envelope)
	assert.Equal(t, float64(0), dash["xp"])
	assert.Equal(t, float64(0), dash["level"])
	assert.Equal(t, float64(0), dash["streak"])

	weekly, _ := dash["weekly"].([]any)
	assert.Len(t, weekly, 7)

	distribution, _ := dash["distribution"].([]any)
	require.Len(t, distribution, 1)
	bucket, _ := distribution[0].(map[string]any)
	assert.Equal(t, "No Data", bucket["name"])
}

func TestHeatmapEndpoint(t *testing.T) {
	env := newTestEnv(t)

	status, envelope := env.do(t, http.MethodGet, "/api/metrics/heatmap?year=2026", nil)
	require.Equal(t, http.StatusOK, status)

	body := data(envelope)
	assert.Equal(t, float64(2026), body["year"])
	months, _ := body["months"].([]any)
	assert.Len(t, months, 12)

	// Мусорный год откатывается к текущему
	status, envelope = env.do(t, http.MethodGet, "/api/metrics/heatmap?year=banana", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(time.Now().UTC().Year()), data(envelope)["year"])
}

func TestCountdownsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/metrics/countdowns", nil)
	req.Header.Set("Authorization", env.token)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var envelope struct {
		Data []map[string]any `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	for _, cd := range envelope.Data {
		days, _ := cd["days_left"].(float64)
		assert.GreaterOrEqual(t, days, float64(0))
	}
}

func TestTimerEndpoints(t *testing.T) {
	env := newTestEnv(t)

	status, envelope := env.do(t, http.MethodGet, "/api/timer/", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "idle", data(envelope)["state"])

	status, envelope = env.do(t, http.MethodPost, "/api/timer/start", fiber.Map{"subject": "Physics"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "running", data(envelope)["state"])
	assert.Equal(t, "Physics", data(envelope)["subject"])

	// Повторный старт без остановки отклоняется
	status, _ = env.do(t, http.MethodPost, "/api/timer/start", fiber.Map{"subject": "Maths"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, envelope = env.do(t, http.MethodPost, "/api/timer/pause", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "paused", data(envelope)["state"])

	status, envelope = env.do(t, http.MethodPost, "/api/timer/resume", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "running", data(envelope)["state"])

	// Нулевая сессия останавливается без подтверждения; фиксации не
	// было, и ответ этого не приукрашивает
	status, envelope = env.do(t, http.MethodPost, "/api/timer/stop", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, data(envelope)["committed"])
	assert.Equal(t, float64(0), data(envelope)["seconds"])
	assert.Equal(t, "idle", data(envelope)["state"])

	status, _ = env.do(t, http.MethodPost, "/api/timer/stop", nil)
	assert.Equal(t, http.StatusBadRequest, status, "остановка из покоя невозможна")
}
