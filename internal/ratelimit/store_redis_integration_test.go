//go:build integration

package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"willgen/pkg/testutil/containers"
)

// =============================================================================
// Redis Rate-Limit Store Integration Test Suite
// =============================================================================
// Justification for integration tests: the sliding window lives in Redis
// sorted-set commands, not Go, so the memory-store unit tests cannot cover
// eviction, counting, or key expiry against a real server.

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = NewRedisStore(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestAllowsUpToLimit() {
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := s.store.Allow(ctx, "203.0.113.7", 3, time.Minute)
		s.Require().NoError(err)
		s.True(res.Allowed)
		s.Equal(3-i-1, res.Remaining)
	}

	res, err := s.store.Allow(ctx, "203.0.113.7", 3, time.Minute)
	s.Require().NoError(err)
	s.False(res.Allowed)
	s.Zero(res.Remaining)
}

func (s *RedisStoreSuite) TestDenialDoesNotExtendTheWindow() {
	ctx := context.Background()

	res, err := s.store.Allow(ctx, "203.0.113.7", 1, time.Minute)
	s.Require().NoError(err)
	s.True(res.Allowed)

	first, err := s.store.Allow(ctx, "203.0.113.7", 1, time.Minute)
	s.Require().NoError(err)
	s.False(first.Allowed)

	second, err := s.store.Allow(ctx, "203.0.113.7", 1, time.Minute)
	s.Require().NoError(err)
	s.False(second.Allowed)
	s.WithinDuration(first.ResetAt, second.ResetAt, time.Second)
}

func (s *RedisStoreSuite) TestDeniedRequestsLeaveNoResidue() {
	ctx := context.Background()

	res, err := s.store.Allow(ctx, "203.0.113.7", 1, time.Minute)
	s.Require().NoError(err)
	s.True(res.Allowed)

	// Check-and-record is a single MULTI/EXEC, so a denied request first
	// registers its member and must then remove it.
	for i := 0; i < 3; i++ {
		res, err = s.store.Allow(ctx, "203.0.113.7", 1, time.Minute)
		s.Require().NoError(err)
		s.False(res.Allowed)
	}

	card, err := s.redis.Client.ZCard(ctx, redisKeyPrefix+"203.0.113.7").Result()
	s.Require().NoError(err)
	s.EqualValues(1, card, "denied requests must not occupy window slots")
}

func (s *RedisStoreSuite) TestWindowSlides() {
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := s.store.Allow(ctx, "203.0.113.7", 2, 500*time.Millisecond)
		s.Require().NoError(err)
		s.True(res.Allowed)
	}

	res, err := s.store.Allow(ctx, "203.0.113.7", 2, 500*time.Millisecond)
	s.Require().NoError(err)
	s.False(res.Allowed)

	time.Sleep(600 * time.Millisecond)

	res, err = s.store.Allow(ctx, "203.0.113.7", 2, 500*time.Millisecond)
	s.Require().NoError(err)
	s.True(res.Allowed, "entries older than the window must be evicted")
}

func (s *RedisStoreSuite) TestKeysAreIndependent() {
	ctx := context.Background()

	res, err := s.store.Allow(ctx, "203.0.113.7", 1, time.Minute)
	s.Require().NoError(err)
	s.True(res.Allowed)

	res, err = s.store.Allow(ctx, "203.0.113.7", 1, time.Minute)
	s.Require().NoError(err)
	s.False(res.Allowed)

	res, err = s.store.Allow(ctx, "198.51.100.23", 1, time.Minute)
	s.Require().NoError(err)
	s.True(res.Allowed)
}

func (s *RedisStoreSuite) TestReset() {
	ctx := context.Background()

	res, err := s.store.Allow(ctx, "203.0.113.7", 1, time.Minute)
	s.Require().NoError(err)
	s.True(res.Allowed)

	s.Require().NoError(s.store.Reset(ctx, "203.0.113.7"))

	res, err = s.store.Allow(ctx, "203.0.113.7", 1, time.Minute)
	s.Require().NoError(err)
	s.True(res.Allowed)
}
