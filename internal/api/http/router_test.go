package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/task-service/internal/api/http/handlers"
	"github.com/spec-kit/task-service/internal/auth"
	"github.com/spec-kit/task-service/internal/events"
	"github.com/spec-kit/task-service/internal/observability"
	"github.com/spec-kit/task-service/internal/repository/repositorytest"
	"github.com/spec-kit/task-service/internal/service"
)

type testServer struct {
	app    *fiber.App
	tokens *repositorytest.ActiveTokens
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := zap.NewNop()
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	codec, err := auth.NewTokenCodec(auth.TokenConfig{Secret: []byte("router-secret"), TTL: 5 * time.Minute})
	require.NoError(t, err)
	tokens := repositorytest.NewActiveTokens()
	sessions := auth.NewSessionAuthority(codec, tokens, logger, metrics)

	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo: repositorytest.NewUsers(),
		Hasher:   auth.NewPasswordHasher(bcrypt.MinCost),
		Sessions: sessions,
		Logger:   logger,
	})
	taskService := service.NewTaskService(service.TaskDependencies{
		TaskRepo:   repositorytest.NewTasks(),
		Dispatcher: events.NewInMemoryDispatcher(),
		Metrics:    metrics,
		Logger:     logger,
	})

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger, metrics)})
	RegisterMiddlewares(app, logger, metrics, time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("task-service", "test", nil),
		Auth:           handlers.NewAuthHandler(authService),
		Tasks:          handlers.NewTasksHandler(taskService),
		Admin:          handlers.NewAdminHandler(),
		AuthMiddleware: auth.NewAuthMiddleware(sessions),
		Metrics:        observability.Handler(reg),
	})
	return &testServer{app: app, tokens: tokens}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func (s *testServer) register(t *testing.T, username string, isAdmin bool) {
	t.Helper()
	status, _ := s.do(t, fiber.MethodPost, "/auth/register", "", map[string]any{
		"username": username,
		"password": "secret-pw",
		"email":    username + "@example.com",
		"is_admin": isAdmin,
	})
	require.Equal(t, fiber.StatusOK, status)
}

func (s *testServer) login(t *testing.T, username string) string {
	t.Helper()
	status, body := s.do(t, fiber.MethodPost, "/auth/login", "", map[string]any{
		"username": username,
		"password": "secret-pw",
	})
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, "bearer", body["token_type"])
	token, _ := body["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func errorCode(body map[string]any) string {
	errBody, _ := body["error"].(map[string]any)
	code, _ := errBody["code"].(string)
	return code
}

func TestRoot(t *testing.T) {
	s := newTestServer(t)
	status, body := s.do(t, fiber.MethodGet, "/", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, "Welcome to the Task API", body["message"])
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, fiber.MethodPost, "/auth/register", "", map[string]any{
		"username": "alice",
		"password": "secret-pw",
		"email":    "alice@example.com",
	})
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, "User registered successfully", body["message"])
	require.Equal(t, map[string]any{"username": "alice", "is_admin": false}, body["user"])

	token := s.login(t, "alice")

	status, body = s.do(t, fiber.MethodGet, "/auth/me", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, "alice", body["username"])
	require.Equal(t, false, body["is_admin"])

	status, body = s.do(t, fiber.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, "Logout successful", body["message"])
	require.Zero(t, s.tokens.Len())

	status, body = s.do(t, fiber.MethodGet, "/auth/me", token, nil)
	require.Equal(t, fiber.StatusUnauthorized, status)
	require.Equal(t, "TOKEN_REVOKED", errorCode(body))
}

func TestLoginWrongPassword(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "alice", false)

	status, body := s.do(t, fiber.MethodPost, "/auth/login", "", map[string]any{
		"username": "alice",
		"password": "not-the-password",
	})
	require.Equal(t, fiber.StatusUnauthorized, status)
	require.Equal(t, "BAD_CREDENTIALS", errorCode(body))
	require.Zero(t, s.tokens.Len())
}

func TestRegisterDuplicateUsername(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "alice", false)

	status, body := s.do(t, fiber.MethodPost, "/auth/register", "", map[string]any{
		"username": "alice",
		"password": "another-pw",
		"email":    "other@example.com",
	})
	require.Equal(t, fiber.StatusBadRequest, status)
	require.Equal(t, "DUPLICATE_USERNAME", errorCode(body))
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)

	cases := map[string]map[string]any{
		"short username": {"username": "abc", "password": "secret-pw", "email": "a@x.io"},
		"long username":  {"username": "abcdefghijklmnopqrstu", "password": "secret-pw", "email": "a@x.io"},
		"short password": {"username": "alice", "password": "abc", "email": "a@x.io"},
		"missing email":  {"username": "alice", "password": "secret-pw"},
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			status, body := s.do(t, fiber.MethodPost, "/auth/register", "", payload)
			require.Equal(t, fiber.StatusBadRequest, status)
			require.Equal(t, "VALIDATION_FAILED", errorCode(body))
		})
	}
}

func TestProtectedRoutesRequireBearer(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, fiber.MethodGet, "/api/tasks", "", nil)
	require.Equal(t, fiber.StatusUnauthorized, status)
	require.Equal(t, "MISSING_CREDENTIAL", errorCode(body))

	status, body = s.do(t, fiber.MethodGet, "/auth/me", "never-issued", nil)
	require.Equal(t, fiber.StatusUnauthorized, status)
	require.Equal(t, "TOKEN_REVOKED", errorCode(body))
}

func TestAdminDashboard(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "regular", false)
	s.register(t, "bossman", true)

	status, body := s.do(t, fiber.MethodGet, "/admin/dashboard", s.login(t, "regular"), nil)
	require.Equal(t, fiber.StatusForbidden, status)
	require.Equal(t, "FORBIDDEN", errorCode(body))

	status, body = s.do(t, fiber.MethodGet, "/admin/dashboard", s.login(t, "bossman"), nil)
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, "Welcome to the admin dashboard", body["message"])
}

func TestTasksCRUDScopedToOwner(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "alice", false)
	s.register(t, "bobby", false)
	alice := s.login(t, "alice")
	bob := s.login(t, "bobby")

	status, body := s.do(t, fiber.MethodPost, "/api/tasks", alice, map[string]any{"task": "buy milk"})
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, "Task created successfully", body["message"])
	task := body["task"].(map[string]any)
	require.Equal(t, "alice", task["owner"])
	require.Equal(t, false, task["is_completed"])
	path := "/api/tasks/1"

	status, body = s.do(t, fiber.MethodGet, "/api/tasks", bob, nil)
	require.Equal(t, fiber.StatusOK, status)
	require.Empty(t, body["tasks"])

	status, body = s.do(t, fiber.MethodPut, path, bob, map[string]any{"task": "mine now", "is_completed": true})
	require.Equal(t, fiber.StatusNotFound, status)
	require.Equal(t, "Task not found", body["error"].(map[string]any)["message"])

	status, body = s.do(t, fiber.MethodPut, path, alice, map[string]any{"task": "buy oat milk", "is_completed": false})
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, "Task updated successfully", body["message"])

	status, body = s.do(t, fiber.MethodPatch, path, alice, map[string]any{"is_completed": true})
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, "Task updated partially", body["message"])
	task = body["task"].(map[string]any)
	require.Equal(t, "buy oat milk", task["task"])
	require.Equal(t, true, task["is_completed"])

	status, body = s.do(t, fiber.MethodGet, "/api/tasks", alice, nil)
	require.Equal(t, fiber.StatusOK, status)
	require.Len(t, body["tasks"], 1)

	status, _ = s.do(t, fiber.MethodDelete, path, bob, nil)
	require.Equal(t, fiber.StatusNotFound, status)

	status, body = s.do(t, fiber.MethodDelete, path, alice, nil)
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, "Task deleted successfully", body["message"])

	status, _ = s.do(t, fiber.MethodDelete, path, alice, nil)
	require.Equal(t, fiber.StatusNotFound, status)
}

func TestTaskValidation(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "alice", false)
	token := s.login(t, "alice")

	status, _ := s.do(t, fiber.MethodPost, "/api/tasks", token, map[string]any{"task": ""})
	require.Equal(t, fiber.StatusBadRequest, status)

	status, _ = s.do(t, fiber.MethodPut, "/api/tasks/abc", token, map[string]any{"task": "x", "is_completed": true})
	require.Equal(t, fiber.StatusBadRequest, status)

	status, _ = s.do(t, fiber.MethodPut, "/api/tasks/1", token, map[string]any{"task": "x"})
	require.Equal(t, fiber.StatusBadRequest, status)
}

func TestUnknownRouteRendersErrorBody(t *testing.T) {
	s := newTestServer(t)
	status, body := s.do(t, fiber.MethodGet, "/nope", "", nil)
	require.Equal(t, fiber.StatusNotFound, status)
	require.Equal(t, "NOT_FOUND", errorCode(body))
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealthReady(t *testing.T) {
	app := fiber.New()
	app.Get("/ready", handlers.NewHealthHandler("task-service", "test", map[string]handlers.Pinger{
		"postgres": failingPinger{},
		"redis":    nil,
	}).Ready)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/ready", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	app = fiber.New()
	app.Get("/ready", handlers.NewHealthHandler("task-service", "test", nil).Ready)
	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/ready", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}
