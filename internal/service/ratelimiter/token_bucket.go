// Package ratelimiter implements per-subject token buckets stored in Redis.
package ratelimiter

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces bucket hashes: <prefix><scope>:<subject>.
const KeyPrefix = "rate:"

// Limiter decides whether subject may spend cost tokens from the scope's bucket.
type Limiter interface {
	Allow(ctx context.Context, scope, subject string, cost int64) (allowed bool, retryAfter time.Duration, err error)
}

// Bucket holds at most Capacity tokens and regains PerSecond tokens every second.
type Bucket struct {
	Capacity  int64
	PerSecond float64
}

// PerMinute is a bucket allowing n calls per minute with a burst of n.
// n <= 0 yields the zero Bucket, which never limits.
func PerMinute(n int) Bucket {
	if n <= 0 {
		return Bucket{}
	}
	return Bucket{Capacity: int64(n), PerSecond: float64(n) / 60}
}

func (b Bucket) enabled() bool { return b.Capacity > 0 && b.PerSecond > 0 }

// expiry is the time an idle bucket needs to refill completely, plus a second.
func (b Bucket) expiry() int64 {
	return int64(math.Ceil(float64(b.Capacity)/b.PerSecond)) + 1
}

// TokenBucketLimiter evaluates buckets atomically inside Redis.
type TokenBucketLimiter struct {
	rdb    redis.Scripter
	script *redis.Script
	now    func() time.Time

	mu      sync.RWMutex
	buckets map[string]Bucket
}

// NewTokenBucketLimiter returns nil when rdb is nil; a nil limiter allows everything.
func NewTokenBucketLimiter(rdb redis.Scripter, buckets map[string]Bucket) *TokenBucketLimiter {
	if rdb == nil {
		return nil
	}
	l := &TokenBucketLimiter{
		rdb:     rdb,
		script:  redis.NewScript(takeScript),
		now:     time.Now,
		buckets: make(map[string]Bucket, len(buckets)),
	}
	for scope, b := range buckets {
		l.buckets[scope] = b
	}
	return l
}

// takeScript refills, then takes ARGV[4] tokens. It returns
// {allowed, retry_after_seconds}; the float travels as a string because
// Redis truncates Lua numbers in replies.
const takeScript = `
local capacity = tonumber(ARGV[1])
local per_second = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local cost = tonumber(ARGV[4])

local state = redis.call("HMGET", KEYS[1], "tokens", "ts")
local tokens = tonumber(state[1]) or capacity
local ts = tonumber(state[2]) or now

local elapsed = math.max(0, now - ts)
tokens = math.min(capacity, tokens + elapsed * per_second)

local allowed = 0
local wait = 0
if tokens >= cost then
  tokens = tokens - cost
  allowed = 1
else
  wait = (cost - tokens) / per_second
end

redis.call("HSET", KEYS[1], "tokens", tostring(tokens), "ts", tostring(now))
redis.call("EXPIRE", KEYS[1], ARGV[5])
return { allowed, tostring(wait) }
`

// Allow spends cost tokens (at least one) from subject's bucket in scope.
// Unconfigured scopes pass. On a Redis error the call passes and the error
// is returned for logging.
func (l *TokenBucketLimiter) Allow(ctx context.Context, scope, subject string, cost int64) (bool, time.Duration, error) {
	if l == nil {
		return true, 0, nil
	}
	l.mu.RLock()
	b := l.buckets[scope]
	l.mu.RUnlock()
	if !b.enabled() {
		return true, 0, nil
	}
	cost = max(cost, 1)

	key := KeyPrefix + scope + ":" + subject
	now := float64(l.now().UnixMicro()) / 1e6
	res, err := l.script.Run(ctx, l.rdb, []string{key}, b.Capacity, b.PerSecond, now, cost, b.expiry()).Slice()
	if err != nil {
		return true, 0, fmt.Errorf("op=ratelimiter.allow: %w", err)
	}
	allowed, wait, ok := parseReply(res)
	if !ok {
		slog.Warn("rate limiter reply malformed", slog.String("key", key), slog.Any("reply", res))
		return true, 0, nil
	}
	return allowed, wait, nil
}

func parseReply(res []interface{}) (bool, time.Duration, bool) {
	if len(res) != 2 {
		return false, 0, false
	}
	flag, ok := res[0].(int64)
	if !ok {
		return false, 0, false
	}
	s, ok := res[1].(string)
	if !ok {
		return false, 0, false
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(secs) || secs < 0 {
		secs = 0
	}
	return flag == 1, time.Duration(secs * float64(time.Second)), true
}

// SetBucket installs or replaces the bucket for scope.
func (l *TokenBucketLimiter) SetBucket(scope string, b Bucket) {
	if l == nil {
		return
	}
	l.mu.Lock()
	l.buckets[scope] = b
	l.mu.Unlock()
}
