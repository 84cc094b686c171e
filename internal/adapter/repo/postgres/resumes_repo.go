package postgres

import (
	"github.com/fairyhunter13/smart-resume-matcher/internal/domain"
)

// ResumeRepo persists resumes and their extracted text.
type ResumeRepo struct{ Pool PgxPool }

// NewResumeRepo constructs a ResumeRepo with the given pool.
func NewResumeRepo(p PgxPool) *ResumeRepo { return &ResumeRepo{Pool: p} }

const resumeColumns = `id, user_id, filename, content, summary, skills, created_at`

// Create inserts a resume and returns its id.
func (r *ResumeRepo) Create(ctx domain.Context, res domain.Resume) (int64, error) {
	ctx, span := startSpan(ctx, "resumes", "Create", "INSERT")
	defer span.End()
	var id int64
	err := r.Pool.QueryRow(ctx,
		`INSERT INTO resumes (user_id, filename, content, summary, skills) VALUES ($1,$2,$3,$4,$5) RETURNING id`,
		res.UserID, res.Filename, res.Content, res.Summary, res.Skills,
	).Scan(&id)
	if err != nil {
		return 0, mapErr("resume.create", err)
	}
	return id, nil
}

// Get loads a resume by id.
func (r *ResumeRepo) Get(ctx domain.Context, id int64) (domain.Resume, error) {
	ctx, span := startSpan(ctx, "resumes", "Get", "SELECT")
	defer span.End()
	res, err := scanResume(r.Pool.QueryRow(ctx, `SELECT `+resumeColumns+` FROM resumes WHERE id=$1`, id))
	if err != nil {
		return domain.Resume{}, mapErr("resume.get", err)
	}
	return res, nil
}

// ListByUser returns a user's resumes, oldest first.
func (r *ResumeRepo) ListByUser(ctx domain.Context, userID int64) ([]domain.Resume, error) {
	ctx, span := startSpan(ctx, "resumes", "ListByUser", "SELECT")
	defer span.End()
	return r.list(ctx, "resume.list_by_user", `SELECT `+resumeColumns+` FROM resumes WHERE user_id=$1 ORDER BY id`, userID)
}

// List returns every resume, oldest first.
func (r *ResumeRepo) List(ctx domain.Context) ([]domain.Resume, error) {
	ctx, span := startSpan(ctx, "resumes", "List", "SELECT")
	defer span.End()
	return r.list(ctx, "resume.list", `SELECT `+resumeColumns+` FROM resumes ORDER BY id`)
}

// SearchBySkill finds resumes whose skills contain skill. ownerID 0 searches everyone.
func (r *ResumeRepo) SearchBySkill(ctx domain.Context, skill string, ownerID int64) ([]domain.Resume, error) {
	ctx, span := startSpan(ctx, "resumes", "SearchBySkill", "SELECT")
	defer span.End()
	if ownerID > 0 {
		return r.list(ctx, "resume.search",
			`SELECT `+resumeColumns+` FROM resumes WHERE skills ILIKE $1 AND user_id=$2 ORDER BY id`,
			likePattern(skill), ownerID)
	}
	return r.list(ctx, "resume.search",
		`SELECT `+resumeColumns+` FROM resumes WHERE skills ILIKE $1 ORDER BY id`, likePattern(skill))
}

// UpdateSummary replaces the summary and skills of a resume.
func (r *ResumeRepo) UpdateSummary(ctx domain.Context, id int64, summary, skills string) (domain.Resume, error) {
	ctx, span := startSpan(ctx, "resumes", "UpdateSummary", "UPDATE")
	defer span.End()
	res, err := scanResume(r.Pool.QueryRow(ctx,
		`UPDATE resumes SET summary=$2, skills=$3 WHERE id=$1 RETURNING `+resumeColumns, id, summary, skills))
	if err != nil {
		return domain.Resume{}, mapErr("resume.update_summary", err)
	}
	return res, nil
}

// Delete removes a resume; its match records cascade.
func (r *ResumeRepo) Delete(ctx domain.Context, id int64) error {
	ctx, span := startSpan(ctx, "resumes", "Delete", "DELETE")
	defer span.End()
	tag, err := r.Pool.Exec(ctx, `DELETE FROM resumes WHERE id=$1`, id)
	if err != nil {
		return mapErr("resume.delete", err)
	}
	if tag.RowsAffected() == 0 {
		return mapErr("resume.delete", domain.ErrNotFound)
	}
	return nil
}

// Count returns the number of resumes.
func (r *ResumeRepo) Count(ctx domain.Context) (int64, error) {
	ctx, span := startSpan(ctx, "resumes", "Count", "SELECT")
	defer span.End()
	return count(ctx, r.Pool, "resume.count", `SELECT COUNT(*) FROM resumes`)
}

func (r *ResumeRepo) list(ctx domain.Context, op, q string, args ...any) ([]domain.Resume, error) {
	rows, err := r.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, mapErr(op, err)
	}
	defer rows.Close()
	out := make([]domain.Resume, 0)
	for rows.Next() {
		res, err := scanResume(rows)
		if err != nil {
			return nil, mapErr(op, err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(op, err)
	}
	return out, nil
}

func scanResume(s scanner) (domain.Resume, error) {
	var res domain.Resume
	err := s.Scan(&res.ID, &res.UserID, &res.Filename, &res.Content, &res.Summary, &res.Skills, &res.CreatedAt)
	return res, err
}

func count(ctx domain.Context, pool PgxPool, op, q string, args ...any) (int64, error) {
	var n int64
	if err := pool.QueryRow(ctx, q, args...).Scan(&n); err != nil {
		return 0, mapErr(op, err)
	}
	return n, nil
}
