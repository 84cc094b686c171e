package postgres

import (
	"context"
	"fmt"
	"log/slog"
)

// Migration is a named, idempotent schema step.
type Migration struct {
	Name string
	Up   func(ctx context.Context, pool PgxPool) error
}

func execStep(stmt string) func(ctx context.Context, pool PgxPool) error {
	return func(ctx context.Context, pool PgxPool) error {
		_, err := pool.Exec(ctx, stmt)
		return err
	}
}

// Migrations lists the schema steps in application order.
func Migrations() []Migration {
	return []Migration{
		{Name: "create_users", Up: execStep(`
			CREATE TABLE IF NOT EXISTS users (
				id BIGSERIAL PRIMARY KEY,
				name TEXT NOT NULL,
				email TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL,
				role TEXT NOT NULL DEFAULT 'candidate',
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`)},
		{Name: "create_resumes", Up: execStep(`
			CREATE TABLE IF NOT EXISTS resumes (
				id BIGSERIAL PRIMARY KEY,
				user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				filename TEXT NOT NULL DEFAULT '',
				content TEXT NOT NULL DEFAULT '',
				summary TEXT NOT NULL DEFAULT '',
				skills TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`)},
		{Name: "create_jobs", Up: execStep(`
			CREATE TABLE IF NOT EXISTS jobs (
				id BIGSERIAL PRIMARY KEY,
				title TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				required_skills TEXT NOT NULL DEFAULT '',
				location TEXT NOT NULL DEFAULT '',
				category TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`)},
		{Name: "create_match_results", Up: execStep(`
			CREATE TABLE IF NOT EXISTS match_results (
				id BIGSERIAL PRIMARY KEY,
				resume_id BIGINT NOT NULL REFERENCES resumes(id) ON DELETE CASCADE,
				job_id BIGINT NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
				score DOUBLE PRECISION NOT NULL CHECK (score >= 0 AND score <= 1),
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				CONSTRAINT match_results_resume_job_key UNIQUE (resume_id, job_id)
			)`)},
		{Name: "index_match_results_job", Up: execStep(
			`CREATE INDEX IF NOT EXISTS match_results_job_id_idx ON match_results (job_id)`)},
		{Name: "create_matching_logs", Up: execStep(`
			CREATE TABLE IF NOT EXISTS matching_logs (
				id BIGSERIAL PRIMARY KEY,
				user_id BIGINT NOT NULL,
				resume_id BIGINT NOT NULL,
				job_id BIGINT NOT NULL,
				score DOUBLE PRECISION NOT NULL,
				matched_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`)},
		{Name: "index_matching_logs_matched_at", Up: execStep(
			`CREATE INDEX IF NOT EXISTS matching_logs_matched_at_idx ON matching_logs (matched_at)`)},
	}
}

// Migrate applies every migration. Steps are idempotent, so running it on
// each startup is safe.
func Migrate(ctx context.Context, pool PgxPool) error {
	slog.Info("starting database migrations")
	for _, m := range Migrations() {
		if err := m.Up(ctx, pool); err != nil {
			slog.Error("migration failed", slog.String("name", m.Name), slog.Any("error", err))
			return fmt.Errorf("op=postgres.migrate name=%s: %w", m.Name, err)
		}
		slog.Debug("migration applied", slog.String("name", m.Name))
	}
	slog.Info("database migrations completed")
	return nil
}
