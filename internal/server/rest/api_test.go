package rest

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/logging"
	"github.com/dmitrijs2005/gophtasks/internal/server/auth"
	"github.com/dmitrijs2005/gophtasks/internal/server/observability"
	"github.com/dmitrijs2005/gophtasks/internal/server/repositories/memory"
	"github.com/dmitrijs2005/gophtasks/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

type testAPI struct {
	handler http.Handler
	metrics *observability.Metrics
	users   *services.UserService
	logs    *bytes.Buffer
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	ctx := context.Background()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rm := memory.NewRepositoryManager()
	hasher := auth.NewBcryptHasher(bcrypt.MinCost, 4)
	codec, err := auth.NewTokenCodec([]byte("test-secret"), 30*time.Minute)
	require.NoError(t, err)
	authenticator, err := auth.NewAuthenticator(ctx, rm.Users(db), hasher)
	require.NoError(t, err)

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	logs := &bytes.Buffer{}
	users := services.NewUserService(db, rm, hasher, authenticator, codec)
	h, err := NewHandler(Deps{
		Users:    users,
		Tasks:    services.NewTaskService(db, rm),
		Resolver: auth.NewSessionResolver(codec, rm.Users(db), rm.RevokedTokens(db)),
		Logger:   logging.New(logs, "text", "warn"),
		Metrics:  metrics,
	})
	require.NoError(t, err)
	return &testAPI{handler: h, metrics: metrics, users: users, logs: logs}
}

func counterValue(t *testing.T, vec *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, vec.WithLabelValues(labels...).Write(&m))
	return m.GetCounter().GetValue()
}

type response struct {
	code   int
	header http.Header
	body   []byte
}

func (r response) json(t *testing.T, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.body, v), "body: %s", r.body)
}

func (r response) detail(t *testing.T) string {
	t.Helper()
	var e errorResponse
	r.json(t, &e)
	return e.Detail
}

func (a *testAPI) do(t *testing.T, method, path, token, body string) response {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	b, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return response{code: rec.Code, header: rec.Header(), body: b}
}

func (a *testAPI) register(t *testing.T, email, password string) userResponse {
	t.Helper()
	resp := a.do(t, http.MethodPost, "/users/", "", fmt.Sprintf(`{"email":%q,"password":%q}`, email, password))
	require.Equal(t, http.StatusCreated, resp.code, "body: %s", resp.body)
	var u userResponse
	resp.json(t, &u)
	return u
}

func (a *testAPI) loginRaw(t *testing.T, username, password string) response {
	t.Helper()
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return response{code: rec.Code, header: rec.Header(), body: rec.Body.Bytes()}
}

func (a *testAPI) login(t *testing.T, email, password string) string {
	t.Helper()
	resp := a.loginRaw(t, email, password)
	require.Equal(t, http.StatusOK, resp.code, "body: %s", resp.body)
	var tok tokenResponse
	resp.json(t, &tok)
	require.Equal(t, "bearer", tok.TokenType)
	require.NotEmpty(t, tok.AccessToken)
	return tok.AccessToken
}

func TestRoot(t *testing.T) {
	a := newTestAPI(t)
	resp := a.do(t, http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, resp.code)
	assert.NotEmpty(t, resp.header.Get("X-Request-ID"))
	var m messageResponse
	resp.json(t, &m)
	assert.NotEmpty(t, m.Message)
}

func TestRequestIDEchoed(t *testing.T) {
	a := newTestAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestAliceScenario(t *testing.T) {
	a := newTestAPI(t)

	alice := a.register(t, "alice@example.com", "pw123")
	assert.Equal(t, "alice@example.com", alice.Email)
	assert.True(t, alice.IsActive)
	token := a.login(t, "alice@example.com", "pw123")

	resp := a.do(t, http.MethodGet, "/tasks/", token, "")
	require.Equal(t, http.StatusOK, resp.code)
	assert.JSONEq(t, `[]`, string(resp.body))

	resp = a.do(t, http.MethodPost, "/tasks/", token, `{"title":"Buy milk","description":"2%","due_date":"2026-05-01T10:00:00Z"}`)
	require.Equal(t, http.StatusCreated, resp.code, "body: %s", resp.body)
	var task taskResponse
	resp.json(t, &task)
	assert.Equal(t, "Buy milk", task.Title)
	assert.False(t, task.Completed)
	assert.Equal(t, alice.ID, task.OwnerID)

	resp = a.do(t, http.MethodGet, fmt.Sprintf("/tasks/%d", task.ID), token, "")
	require.Equal(t, http.StatusOK, resp.code)

	a.register(t, "mallory@example.com", "pw456")
	other := a.login(t, "mallory@example.com", "pw456")

	resp = a.do(t, http.MethodGet, fmt.Sprintf("/tasks/%d", task.ID), other, "")
	assert.Equal(t, http.StatusForbidden, resp.code)
	assert.NotContains(t, string(resp.body), "Buy milk")

	resp = a.do(t, http.MethodGet, "/tasks", other, "")
	require.Equal(t, http.StatusOK, resp.code)
	assert.JSONEq(t, `[]`, string(resp.body))

	assert.Equal(t, 1.0, counterValue(t, a.metrics.AuthFailures, observability.ReasonForbidden))
	assert.Contains(t, a.logs.String(), "msg=forbidden")
	assert.Contains(t, a.logs.String(), "user=mallory@example.com")
	assert.Contains(t, a.logs.String(), fmt.Sprintf("path=/tasks/%d", task.ID))
}

func TestResponsesNeverCarryPasswordHash(t *testing.T) {
	a := newTestAPI(t)
	resp := a.do(t, http.MethodPost, "/users/", "", `{"email":"a@example.com","password":"pw123"}`)
	require.Equal(t, http.StatusCreated, resp.code)
	assert.NotContains(t, string(resp.body), "password")
	assert.NotContains(t, string(resp.body), "$2a$")

	token := a.login(t, "a@example.com", "pw123")
	resp = a.do(t, http.MethodGet, "/users/me/", token, "")
	require.Equal(t, http.StatusOK, resp.code)
	assert.NotContains(t, string(resp.body), "password")
}
