package api

import (
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cookbookapp/cookbook-server/internal/auth"
	"github.com/cookbookapp/cookbook-server/internal/ratelimit"
	"github.com/cookbookapp/cookbook-server/internal/service"
	"github.com/cookbookapp/cookbook-server/internal/store/sqlite"
)

// testServer wraps the API server for handler tests.
type testServer struct {
	*Server
	api humatest.TestAPI
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	// Generous limiter so ordinary tests never trip it.
	limiter := ratelimit.New(1000, 1000)
	t.Cleanup(limiter.Stop)
	return setupTestServerWithLimiter(t, limiter)
}

func setupTestServerWithLimiter(t *testing.T, limiter *ratelimit.KeyedRateLimiter) *testServer {
	t.Helper()

	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := sqlite.Open(filepath.Join(dir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	key, err := auth.LoadOrGenerateKey(dir)
	require.NoError(t, err)

	tokens, err := auth.NewTokenService(hex.EncodeToString(key), 15*time.Minute, 30*24*time.Hour)
	require.NoError(t, err)

	services := &Services{
		Auth:   service.NewAuthService(st, tokens, logger),
		Recipe: service.NewRecipeService(st, logger),
		Label:  service.NewLabelService(st, logger),
	}

	s := NewServer(st, services, limiter, logger)

	return &testServer{Server: s, api: humatest.Wrap(t, s.api)}
}

// register creates a user through the API and fails the test on error.
func (ts *testServer) register(t *testing.T, email, password, name string) UserResponse {
	t.Helper()

	resp := ts.api.Post("/users", map[string]any{
		"email":    email,
		"password": password,
		"name":     name,
	})
	require.Equal(t, http.StatusCreated, resp.Code, "register failed: %s", resp.Body.String())

	var user UserResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &user))
	return user
}

// login authenticates through the API and returns the session payload.
func (ts *testServer) login(t *testing.T, email, password string) SessionResponse {
	t.Helper()

	resp := ts.api.Post("/sessions", map[string]any{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, resp.Code, "login failed: %s", resp.Body.String())

	var session SessionResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &session))
	return session
}

// authToken registers a user and returns a bearer token for it.
func (ts *testServer) authToken(t *testing.T, email string) string {
	t.Helper()

	ts.register(t, email, "test-password", "Test User")
	return ts.login(t, email, "test-password").Access
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")

	assert.Equal(t, http.StatusOK, resp.Code)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &health))

	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "healthy", health.Components["database"].Status)
	assert.NotEmpty(t, health.Components["database"].Latency)
}

func TestUnknownRoute(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/nonexistent")

	assert.Equal(t, http.StatusNotFound, resp.Code)
}
