package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestStore_Allow(t *testing.T) {
	s := NewStore(RateLimitConfig{RPS: 1, Burst: 2, MaxAge: time.Minute})
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	ok, remaining := s.Allow("a")
	assert.True(t, ok)
	assert.Equal(t, 1, remaining)

	ok, _ = s.Allow("a")
	assert.True(t, ok)

	ok, _ = s.Allow("a")
	assert.False(t, ok)

	ok, _ = s.Allow("b")
	assert.True(t, ok, "clients are limited independently")
}

func TestStore_Cleanup(t *testing.T) {
	s := NewStore(RateLimitConfig{RPS: 1, Burst: 1, MaxAge: time.Minute})
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	s.Allow("old")
	now = now.Add(2 * time.Minute)
	s.Allow("fresh")

	assert.Equal(t, 1, s.Cleanup())
	assert.Equal(t, 1, s.Len())
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := NewStore(RateLimitConfig{RPS: 0.001, Burst: 1, MaxAge: time.Minute})

	r := gin.New()
	r.Use(RateLimitMiddleware(store))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "RATE_LIMITED")
}
