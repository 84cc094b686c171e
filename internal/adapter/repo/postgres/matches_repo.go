package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/smart-resume-matcher/internal/domain"
)

// MatchRepo persists match records. The (resume_id, job_id) unique
// constraint is what keeps one record per pair under concurrent writers.
type MatchRepo struct{ Pool PgxPool }

// NewMatchRepo constructs a MatchRepo with the given pool.
func NewMatchRepo(p PgxPool) *MatchRepo { return &MatchRepo{Pool: p} }

const matchColumns = `m.id, m.resume_id, m.job_id, m.score, m.created_at`

// Find loads the record of a pair.
func (r *MatchRepo) Find(ctx domain.Context, resumeID, jobID int64) (domain.MatchRecord, error) {
	ctx, span := startSpan(ctx, "match_results", "Find", "SELECT")
	defer span.End()
	m, err := scanMatch(r.Pool.QueryRow(ctx,
		`SELECT `+matchColumns+` FROM match_results m WHERE m.resume_id=$1 AND m.job_id=$2`, resumeID, jobID))
	if err != nil {
		return domain.MatchRecord{}, mapErr("match.find", err)
	}
	return m, nil
}

// Insert stores a new record and its matching log row in one transaction.
// It returns domain.ErrConflict when the pair already has a record.
func (r *MatchRepo) Insert(ctx domain.Context, m domain.MatchRecord, userID int64) (out domain.MatchRecord, err error) {
	ctx, span := startSpan(ctx, "match_results", "Insert", "INSERT")
	defer span.End()
	span.SetAttributes(attribute.Int64("match.resume_id", m.ResumeID), attribute.Int64("match.job_id", m.JobID))

	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.MatchRecord{}, mapErr("match.insert", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	out, err = scanMatch(tx.QueryRow(ctx,
		`INSERT INTO match_results AS m (resume_id, job_id, score) VALUES ($1,$2,$3)
		ON CONFLICT (resume_id, job_id) DO NOTHING
		RETURNING `+matchColumns, m.ResumeID, m.JobID, m.Score))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.MatchRecord{}, fmt.Errorf("op=match.insert: %w", domain.ErrConflict)
		}
		return domain.MatchRecord{}, mapErr("match.insert", err)
	}
	if _, err = tx.Exec(ctx,
		`INSERT INTO matching_logs (user_id, resume_id, job_id, score, matched_at) VALUES ($1,$2,$3,$4,$5)`,
		userID, out.ResumeID, out.JobID, out.Score, out.CreatedAt); err != nil {
		return domain.MatchRecord{}, mapErr("match.insert_log", err)
	}
	if err = tx.Commit(ctx); err != nil {
		return domain.MatchRecord{}, mapErr("match.insert_commit", err)
	}
	return out, nil
}

// Query returns a resume's matches joined with their jobs, score descending
// with insertion order breaking ties.
func (r *MatchRepo) Query(ctx domain.Context, q domain.MatchQuery) ([]domain.MatchWithJob, error) {
	ctx, span := startSpan(ctx, "match_results", "Query", "SELECT")
	defer span.End()
	args := []any{q.ResumeID}
	where, args := jobFilterSQL(q.Filter, args)
	sql := `SELECT ` + matchColumns + `, j.title, j.description, j.location, j.category
		FROM match_results m JOIN jobs j ON j.id = m.job_id
		WHERE m.resume_id=$1` + where + `
		ORDER BY m.score DESC, m.id ASC`
	if !q.Page.Unbounded() {
		args = append(args, q.Page.Limit, q.Page.Offset())
		sql += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}
	rows, err := r.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapErr("match.query", err)
	}
	defer rows.Close()
	out := make([]domain.MatchWithJob, 0)
	for rows.Next() {
		var mj domain.MatchWithJob
		if err := rows.Scan(&mj.ID, &mj.ResumeID, &mj.JobID, &mj.Score, &mj.CreatedAt,
			&mj.JobTitle, &mj.JobDescription, &mj.Location, &mj.Category); err != nil {
			return nil, mapErr("match.query", err)
		}
		out = append(out, mj)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("match.query", err)
	}
	return out, nil
}

// ListByUser returns the matches of every resume a user owns, score descending.
func (r *MatchRepo) ListByUser(ctx domain.Context, userID int64) ([]domain.MatchRecord, error) {
	ctx, span := startSpan(ctx, "match_results", "ListByUser", "SELECT")
	defer span.End()
	rows, err := r.Pool.Query(ctx,
		`SELECT `+matchColumns+` FROM match_results m JOIN resumes r ON r.id = m.resume_id
		WHERE r.user_id=$1 ORDER BY m.score DESC, m.id ASC`, userID)
	if err != nil {
		return nil, mapErr("match.list_by_user", err)
	}
	defer rows.Close()
	out := make([]domain.MatchRecord, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, mapErr("match.list_by_user", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("match.list_by_user", err)
	}
	return out, nil
}

// Count returns the number of match records.
func (r *MatchRepo) Count(ctx domain.Context) (int64, error) {
	ctx, span := startSpan(ctx, "match_results", "Count", "SELECT")
	defer span.End()
	return count(ctx, r.Pool, "match.count", `SELECT COUNT(*) FROM match_results`)
}

func scanMatch(s scanner) (domain.MatchRecord, error) {
	var m domain.MatchRecord
	err := s.Scan(&m.ID, &m.ResumeID, &m.JobID, &m.Score, &m.CreatedAt)
	return m, err
}
