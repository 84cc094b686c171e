package ratelimiter

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T) (*TokenBucketLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewTokenBucketLimiter(rdb, nil), mr
}

func TestAllow_NilLimiter_FailOpen(t *testing.T) {
	var limiter *TokenBucketLimiter
	allowed, retryAfter, err := limiter.Allow(context.Background(), "match", "1", 1)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Zero(t, retryAfter)
}

func TestNewTokenBucketLimiter_NilClient(t *testing.T) {
	assert.Nil(t, NewTokenBucketLimiter(nil, nil))
}

func TestAllow_NoBucketConfig_FailOpen(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	allowed, retryAfter, err := limiter.Allow(context.Background(), "unknown", "1", 1)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Zero(t, retryAfter)
}

func TestAllow_RespectsCapacityPerSubject(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	fixed := time.Unix(1_700_000_000, 0)
	limiter.now = func() time.Time { return fixed }
	limiter.SetBucket("match", PerMinute(3))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, retryAfter, err := limiter.Allow(ctx, "match", "user-1", 1)
		require.NoError(t, err)
		assert.True(t, allowed, "call %d", i)
		assert.Zero(t, retryAfter)
	}

	allowed, retryAfter, err := limiter.Allow(ctx, "match", "user-1", 1)
	require.NoError(t, err)
	assert.False(t, allowed)
	// one token at 3/min refills in 20s
	assert.InDelta(t, (20 * time.Second).Seconds(), retryAfter.Seconds(), 0.01)

	allowed, _, err = limiter.Allow(ctx, "match", "user-2", 1)
	require.NoError(t, err)
	assert.True(t, allowed, "other subjects have their own bucket")
}

func TestAllow_Refills(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	now := time.Unix(1_700_000_000, 0)
	limiter.now = func() time.Time { return now }
	limiter.SetBucket("match", PerMinute(1))
	ctx := context.Background()

	allowed, _, err := limiter.Allow(ctx, "match", "u", 1)
	require.NoError(t, err)
	require.True(t, allowed)
	allowed, _, err = limiter.Allow(ctx, "match", "u", 1)
	require.NoError(t, err)
	require.False(t, allowed)

	now = now.Add(61 * time.Second)
	allowed, _, err = limiter.Allow(ctx, "match", "u", 1)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestAllow_SetsExpiry(t *testing.T) {
	limiter, mr := newTestLimiter(t)
	limiter.SetBucket("match", PerMinute(60))

	_, _, err := limiter.Allow(context.Background(), "match", "u", 1)
	require.NoError(t, err)
	assert.True(t, mr.Exists("rate:match:u"))
	assert.Equal(t, 61*time.Second, mr.TTL("rate:match:u"))
}

func TestAllow_RedisDown_FailOpen(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer func() { _ = rdb.Close() }()
	limiter := NewTokenBucketLimiter(rdb, map[string]Bucket{"match": PerMinute(1)})
	mr.Close()

	allowed, _, err := limiter.Allow(context.Background(), "match", "u", 1)
	assert.Error(t, err)
	assert.True(t, allowed)
}

func TestPerMinute(t *testing.T) {
	assert.Equal(t, Bucket{}, PerMinute(0))
	cfg := PerMinute(30)
	assert.Equal(t, int64(30), cfg.Capacity)
	assert.InDelta(t, 0.5, cfg.PerSecond, 1e-9)
}

func TestAllow_CostAboveCapacityNeverPasses(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	limiter.now = func() time.Time { return time.Unix(1_700_000_000, 0) }
	limiter.SetBucket("recommend", PerMinute(2))

	allowed, retryAfter, err := limiter.Allow(context.Background(), "recommend", "u", 3)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.InDelta(t, 30.0, retryAfter.Seconds(), 0.01)
}

func TestParseReply(t *testing.T) {
	ok, wait, valid := parseReply([]interface{}{int64(0), "1.5"})
	require.True(t, valid)
	assert.False(t, ok)
	assert.Equal(t, 1500*time.Millisecond, wait)

	_, _, valid = parseReply([]interface{}{"x", "1"})
	assert.False(t, valid)
	_, _, valid = parseReply(nil)
	assert.False(t, valid)
}
