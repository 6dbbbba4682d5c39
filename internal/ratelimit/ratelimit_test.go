package ratelimit

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

// =============================================================================
// Rate Limit Test Suite
// =============================================================================
// Justification for unit tests: the sliding window is the defense against
// bulk abuse of an anonymous endpoint that writes files to disk. Boundary
// behavior and header contracts both matter.

type RateLimitSuite struct {
	suite.Suite
	nowTime time.Time
	store   *MemoryStore
	ctx     context.Context
}

func TestRateLimitSuite(t *testing.T) {
	suite.Run(t, new(RateLimitSuite))
}

func (s *RateLimitSuite) SetupTest() {
	s.nowTime = time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	s.store = NewMemoryStore(WithNow(func() time.Time { return s.nowTime }))
	s.ctx = context.Background()
}

func (s *RateLimitSuite) TestAllowsUpToLimit() {
	for i := 0; i < 3; i++ {
		result, err := s.store.Allow(s.ctx, "ip", 3, time.Minute)
		s.Require().NoError(err)
		s.True(result.Allowed, "request %d should be allowed", i+1)
		s.Equal(3-i-1, result.Remaining)
	}

	result, err := s.store.Allow(s.ctx, "ip", 3, time.Minute)
	s.Require().NoError(err)
	s.False(result.Allowed)
	s.Equal(0, result.Remaining)
}

func (s *RateLimitSuite) TestWindowSlides() {
	for i := 0; i < 3; i++ {
		_, err := s.store.Allow(s.ctx, "ip", 3, time.Minute)
		s.Require().NoError(err)
		s.nowTime = s.nowTime.Add(10 * time.Second)
	}

	// 30s in: all three timestamps still inside the window.
	result, err := s.store.Allow(s.ctx, "ip", 3, time.Minute)
	s.Require().NoError(err)
	s.False(result.Allowed)

	// 65s after the first request it ages out, freeing one slot.
	s.nowTime = s.nowTime.Add(45 * time.Second)
	result, err = s.store.Allow(s.ctx, "ip", 3, time.Minute)
	s.Require().NoError(err)
	s.True(result.Allowed)
}

func (s *RateLimitSuite) TestKeysAreIndependent() {
	for i := 0; i < 3; i++ {
		_, err := s.store.Allow(s.ctx, "first", 3, time.Minute)
		s.Require().NoError(err)
	}

	result, err := s.store.Allow(s.ctx, "second", 3, time.Minute)
	s.Require().NoError(err)
	s.True(result.Allowed)
}

func (s *RateLimitSuite) TestReset() {
	for i := 0; i < 3; i++ {
		_, err := s.store.Allow(s.ctx, "ip", 3, time.Minute)
		s.Require().NoError(err)
	}
	s.Require().NoError(s.store.Reset(s.ctx, "ip"))

	result, err := s.store.Allow(s.ctx, "ip", 3, time.Minute)
	s.Require().NoError(err)
	s.True(result.Allowed)
}

func (s *RateLimitSuite) TestResetAtReportsOldestExpiry() {
	start := s.nowTime
	_, err := s.store.Allow(s.ctx, "ip", 2, time.Minute)
	s.Require().NoError(err)

	s.nowTime = s.nowTime.Add(20 * time.Second)
	result, err := s.store.Allow(s.ctx, "ip", 2, time.Minute)
	s.Require().NoError(err)
	s.Equal(start.Add(time.Minute), result.ResetAt)
}

// =============================================================================
// Middleware Tests
// =============================================================================

func (s *RateLimitSuite) TestMiddlewareEnforcesLimit() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := Middleware(s.store, Limit{Requests: 2, Window: time.Minute}, logger)(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	request := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "203.0.113.7:5000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	first := request()
	s.Equal(http.StatusOK, first.Code)
	s.Equal("2", first.Header().Get("X-RateLimit-Limit"))
	s.Equal("1", first.Header().Get("X-RateLimit-Remaining"))

	s.Equal(http.StatusOK, request().Code)

	third := request()
	s.Equal(http.StatusTooManyRequests, third.Code)
	s.Equal("0", third.Header().Get("X-RateLimit-Remaining"))
}

func (s *RateLimitSuite) TestMiddlewareSeparatesClients() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := Middleware(s.store, Limit{Requests: 1, Window: time.Minute}, logger)(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	request := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", ip)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	s.Equal(http.StatusOK, request("203.0.113.7").Code)
	s.Equal(http.StatusTooManyRequests, request("203.0.113.7").Code)
	s.Equal(http.StatusOK, request("198.51.100.4").Code)
}
