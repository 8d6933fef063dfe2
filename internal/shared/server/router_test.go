package server

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-builder/internal/assistant"
	"resume-builder/internal/llm"
	"resume-builder/internal/resumes"
	"resume-builder/internal/shared/auth"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/users"
)

type fixedCounter struct {
	n   int
	err error
}

func (f fixedCounter) Count(context.Context) (int, error) { return f.n, f.err }

func memoryDeps(cfg config.Config) RouterDeps {
	userSvc := users.NewService(users.NewMemoryRepo())
	resumeSvc := resumes.NewService(resumes.NewMemoryRepo(), userSvc)
	return RouterDeps{
		Config:           cfg,
		Users:            userSvc,
		UserHandler:      users.NewHandler(userSvc, resumeSvc),
		ResumeHandler:    resumes.NewHandler(resumeSvc),
		AssistantHandler: assistant.NewHandler(assistant.NewService(llm.MockClient{})),
	}
}

func serve(r http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestHealthInMemory(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(memoryDeps(config.Config{}))

	resp := serve(r, http.MethodGet, "/api/v1/health", "", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"status":"UP","database":"memory"}`, resp.Body.String())
	assert.NotEmpty(t, resp.Header().Get("X-Request-Id"))
}

func TestHealthWithDatabase(t *testing.T) {
	gin.SetMode(gin.TestMode)
	database, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer database.Close()

	deps := memoryDeps(config.Config{})
	deps.DB = database
	deps.Users = fixedCounter{n: 4}
	r := NewRouter(deps)

	mock.ExpectPing()
	resp := serve(r, http.MethodGet, "/api/v1/health", "", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"status":"UP","database":"connected","users":4}`, resp.Body.String())

	mock.ExpectPing().WillReturnError(driver.ErrBadConn)
	resp = serve(r, http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Contains(t, resp.Body.String(), "DOWN")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthCountFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	database, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer database.Close()
	mock.ExpectPing()

	deps := memoryDeps(config.Config{})
	deps.DB = database
	deps.Users = fixedCounter{err: errors.New("boom")}
	resp := serve(NewRouter(deps), http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
}

func TestRequiredAuthKeepsHealthPublic(t *testing.T) {
	gin.SetMode(gin.TestMode)
	verifier, err := auth.NewVerifier("secret")
	require.NoError(t, err)

	deps := memoryDeps(config.Config{AuthRequired: true})
	deps.Verifier = verifier
	r := NewRouter(deps)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/v1/health", "", nil).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/v1/metrics", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/api/v1/users/u-1/resumes", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/api/v1/users/health", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/api/v1/users/metrics/resumes", "", nil).Code)

	token, err := verifier.SignJWT("u-1", "u1@example.com", time.Hour)
	require.NoError(t, err)
	resp := serve(r, http.MethodGet, "/api/v1/users/u-1/resumes", "", map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestAIGroupIsRateLimited(t *testing.T) {
	gin.SetMode(gin.TestMode)
	deps := memoryDeps(config.Config{AIRatePerMinute: 1})
	deps.RateLimiter = middleware.NewRateLimiter(func() time.Time { return time.Unix(0, 0) })
	r := NewRouter(deps)

	body := `{"currentText":"hello","style":"professional"}`
	first := serve(r, http.MethodPost, "/api/v1/ai/generate", body, nil)
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())

	second := serve(r, http.MethodPost, "/api/v1/ai/generate", body, nil)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))

	// résumé routes share no bucket with /ai
	for i := 0; i < 3; i++ {
		resp := serve(r, http.MethodGet, "/api/v1/users/u-1/resumes", "", nil)
		assert.Equal(t, http.StatusOK, resp.Code)
	}
}

func TestUpsertThroughRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(memoryDeps(config.Config{}))

	resp := serve(r, http.MethodPost, "/api/v1/resumes", `{"userId":"u-1","data":{"a":1}}`, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var created resumes.Resume
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)

	resp = serve(r, http.MethodPost, "/api/v1/resumes", `{"userId":"u-1"}`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), `"field":"data"`)
}

func TestAddr(t *testing.T) {
	assert.Equal(t, ":3001", Addr(""))
	assert.Equal(t, ":9000", Addr("9000"))
	assert.Equal(t, ":9000", Addr(":9000"))
}
