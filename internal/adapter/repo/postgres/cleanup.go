package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// CleanupService prunes matching audit logs past the retention window.
// Match records themselves are never pruned.
type CleanupService struct {
	Pool          PgxPool
	RetentionDays int
	now           func() time.Time
}

// NewCleanupService creates a new cleanup service.
func NewCleanupService(pool PgxPool, retentionDays int) *CleanupService {
	if retentionDays <= 0 {
		retentionDays = 90
	}
	return &CleanupService{Pool: pool, RetentionDays: retentionDays, now: time.Now}
}

// CleanupOldData deletes matching logs older than the retention period and
// returns how many rows were removed.
func (s *CleanupService) CleanupOldData(ctx context.Context) (int64, error) {
	ctx, span := startSpan(ctx, "matching_logs", "Cleanup", "DELETE")
	defer span.End()
	cutoff := s.now().UTC().AddDate(0, 0, -s.RetentionDays)
	tag, err := s.Pool.Exec(ctx, `DELETE FROM matching_logs WHERE matched_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("op=cleanup.matching_logs: %w", err)
	}
	deleted := tag.RowsAffected()
	slog.Info("data cleanup completed",
		slog.Int64("deleted_matching_logs", deleted),
		slog.Time("cutoff", cutoff),
	)
	return deleted, nil
}

// RunPeriodic runs the cleanup immediately and then on every interval until
// ctx is cancelled.
func (s *CleanupService) RunPeriodic(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if ctx.Err() != nil {
		return
	}
	if _, err := s.CleanupOldData(ctx); err != nil {
		slog.Error("initial cleanup failed", slog.Any("error", err))
	}
	for {
		select {
		case <-ctx.Done():
			slog.Info("cleanup service stopping")
			return
		case <-ticker.C:
			if _, err := s.CleanupOldData(ctx); err != nil {
				slog.Error("periodic cleanup failed", slog.Any("error", err))
			}
		}
	}
}
