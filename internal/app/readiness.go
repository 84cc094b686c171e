package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Pinger is the minimal interface for a database pool capable of Ping.
type Pinger interface {
	Ping(ctx context.Context) error
}

// BuildReadinessChecks returns the db check and, when rdb is configured, the
// redis check. An unconfigured redis yields a nil check so /readyz skips it.
func BuildReadinessChecks(pool Pinger, rdb redis.UniversalClient) (dbCheck, redisCheck func(ctx context.Context) error) {
	dbCheck = func(ctx context.Context) error {
		if pool == nil {
			return fmt.Errorf("db not configured")
		}
		return pool.Ping(ctx)
	}
	if rdb == nil {
		return dbCheck, nil
	}
	redisCheck = func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}
	return dbCheck, redisCheck
}
