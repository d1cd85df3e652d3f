package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promofeed/internal/extraction"
	"promofeed/internal/feed"
	"promofeed/internal/logger"
	apperrors "promofeed/pkg/errors"
	"promofeed/pkg/health"
	"promofeed/pkg/idgen"
	"promofeed/pkg/models"
	"promofeed/pkg/ratelimit"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type stubService struct {
	lastQuery feed.Query
	msgs      []models.MessageRecord
	result    models.ParsedResult
	err       error
}

func (s *stubService) Refresh(_ context.Context, frame string) (models.ParsedResult, error) {
	s.lastQuery = feed.Query{Frame: frame}
	return s.result, s.err
}

func (s *stubService) Messages(_ context.Context, q feed.Query) ([]models.MessageRecord, error) {
	s.lastQuery = q
	return s.msgs, s.err
}

func (s *stubService) Stored(_ context.Context, q feed.Query) ([]models.MessageRecord, error) {
	s.lastQuery = q
	return s.msgs, s.err
}

func (s *stubService) Status() feed.Status {
	return feed.Status{Frame: "all", Summary: "Found 1 new message", StatusCode: 200, Frames: []string{"all"}}
}

func newRouter(svc FeedService, opts RouterOptions) *gin.Engine {
	ext := extraction.New(
		extraction.WithClock(func() time.Time { return fixedNow }),
		extraction.WithIDGenerator(idgen.Sequence("msg")),
	)
	return NewRouter(NewHandler(svc, ext, logger.NopLogger()), logger.NopLogger(), opts)
}

func do(t *testing.T, r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestListMessages(t *testing.T) {
	svc := &stubService{msgs: []models.MessageRecord{{ID: "1", Code: "A", Message: "A"}}}
	r := newRouter(svc, RouterOptions{})

	w := do(t, r, http.MethodGet, "/api/v1/messages?timeframe=day&filter=code%20%3D%3D%20%22A%22", "")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, feed.Query{Frame: "day", Filter: `code == "A"`}, svc.lastQuery)
	body := decode(t, w)
	assert.Equal(t, "day", body["timeframe"])
	assert.Equal(t, float64(1), body["count"])
}

func TestListMessages_DefaultFrame(t *testing.T) {
	svc := &stubService{msgs: []models.MessageRecord{}}
	r := newRouter(svc, RouterOptions{})

	w := do(t, r, http.MethodGet, "/api/v1/messages", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "all", svc.lastQuery.Frame)
}

func TestListMessages_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
		code string
	}{
		{"validation", apperrors.ErrValidation.WithMessage("unknown time frame"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"upstream", apperrors.ErrUpstream, http.StatusBadGateway, "UPSTREAM_ERROR"},
		{"unavailable", apperrors.ErrServiceUnavailable, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(&stubService{err: tt.err}, RouterOptions{})

			w := do(t, r, http.MethodGet, "/api/v1/stored?timeframe=week", "")
			assert.Equal(t, tt.want, w.Code)
			assert.Equal(t, tt.code, decode(t, w)["error_code"])
		})
	}
}

func TestRefreshMessages(t *testing.T) {
	svc := &stubService{result: models.ParsedResult{Messages: []models.MessageRecord{}, Message: "No new messages"}}
	r := newRouter(svc, RouterOptions{})

	w := do(t, r, http.MethodPost, "/api/v1/messages/refresh?timeframe=hour", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hour", svc.lastQuery.Frame)
	assert.Equal(t, "No new messages", decode(t, w)["message"])
}

func TestGetStatus(t *testing.T) {
	r := newRouter(&stubService{}, RouterOptions{})

	w := do(t, r, http.MethodGet, "/api/v1/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Found 1 new message", body["message"])
	assert.Equal(t, float64(200), body["statusCode"])
}

func TestExtractEnvelope(t *testing.T) {
	r := newRouter(&stubService{}, RouterOptions{})

	w := do(t, r, http.MethodPost, "/api/v1/extract", `{"statusCode":200,"body":"[{'code':'X1'}]"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var res models.ParsedResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, res.HasNewMessages)
	require.Len(t, res.Messages, 1)
	assert.Equal(t, "X1", res.Messages[0].Code)
	assert.Equal(t, "Found 1 new message(s)", res.Message)
}

func TestExtractEnvelope_InvalidBody(t *testing.T) {
	r := newRouter(&stubService{}, RouterOptions{})

	w := do(t, r, http.MethodPost, "/api/v1/extract", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParseDocument(t *testing.T) {
	r := newRouter(&stubService{}, RouterOptions{})

	w := do(t, r, http.MethodPost, "/api/v1/parse", `[{'code': 'A', 'message': 'hello', 'severity': 'warning'}]`)
	require.Equal(t, http.StatusOK, w.Code)

	var res models.ParsedResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Len(t, res.Messages, 1)
	assert.Equal(t, "hello", res.Messages[0].Message)
	assert.Equal(t, models.SeverityWarning, res.Messages[0].Severity)
	assert.Equal(t, "Parsed 1 message(s)", res.Message)
}

func TestParseDocument_Errors(t *testing.T) {
	r := newRouter(&stubService{}, RouterOptions{})

	w := do(t, r, http.MethodPost, "/api/v1/parse", "   ")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode(t, w)["error_code"])

	w = do(t, r, http.MethodPost, "/api/v1/parse", "{not: json")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "DECODE_ERROR", decode(t, w)["error_code"])
}

func TestHealthAndMetrics(t *testing.T) {
	registry := health.NewCheckerRegistry()
	registry.Register(health.NewFuncChecker("upstream", func(context.Context) error { return nil }))
	r := newRouter(&stubService{}, RouterOptions{Health: registry})

	w := do(t, r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode(t, w)["status"])

	w = do(t, r, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitAppliesToAPIOnly(t *testing.T) {
	store := ratelimit.NewStore(ratelimit.RateLimitConfig{RPS: 1, Burst: 1, CleanupInterval: time.Minute, MaxAge: time.Minute})
	r := newRouter(&stubService{}, RouterOptions{RateLimit: store})

	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/api/v1/status", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, r, http.MethodGet, "/api/v1/status", "").Code)
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/health", "").Code)
}
