// Package postgres provides the PostgreSQL adapters: connection pool,
// schema migrations, repositories and the audit-log retention cleaner.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fairyhunter13/smart-resume-matcher/internal/domain"
)

// PgxPool is a minimal subset of pgxpool used by the repos for easy testing.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// NewPool creates a traced pgx connection pool from the provided DSN.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("op=postgres.new_pool: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.ConnConfig.Tracer = otelpgx.NewTracer()
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("op=postgres.new_pool: %w", err)
	}
	return pool, nil
}

const uniqueViolation = "23505"

// mapErr converts driver errors into domain sentinels.
func mapErr(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("op=%s: %w", op, domain.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("op=%s: %w: %s", op, domain.ErrConflict, pgErr.ConstraintName)
	}
	return fmt.Errorf("op=%s: %w", op, err)
}

func startSpan(ctx context.Context, table, name, operation string) (context.Context, trace.Span) {
	ctx, span := otel.Tracer("repo."+table).Start(ctx, table+"."+name)
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", operation),
		attribute.String("db.sql.table", table),
	)
	return ctx, span
}

// likePattern builds an ILIKE substring pattern with wildcards escaped.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(s)) + "%"
}

// jobFilterSQL appends filter predicates on the jobs alias j. Arguments are
// appended to args and placeholders numbered after them.
func jobFilterSQL(f domain.JobFilter, args []any) (string, []any) {
	var b strings.Builder
	add := func(column, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		args = append(args, likePattern(value))
		fmt.Fprintf(&b, " AND j.%s ILIKE $%d", column, len(args))
	}
	add("category", f.Category)
	add("location", f.Location)
	add("description", f.Keyword)
	return b.String(), args
}
