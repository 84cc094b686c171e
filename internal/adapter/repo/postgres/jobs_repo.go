package postgres

import (
	"github.com/fairyhunter13/smart-resume-matcher/internal/domain"
)

// JobRepo persists job postings.
type JobRepo struct{ Pool PgxPool }

// NewJobRepo constructs a JobRepo with the given pool.
func NewJobRepo(p PgxPool) *JobRepo { return &JobRepo{Pool: p} }

const jobColumns = `j.id, j.title, j.description, j.required_skills, j.location, j.category, j.created_at`

// Create inserts a job and returns its id.
func (r *JobRepo) Create(ctx domain.Context, j domain.Job) (int64, error) {
	ctx, span := startSpan(ctx, "jobs", "Create", "INSERT")
	defer span.End()
	var id int64
	err := r.Pool.QueryRow(ctx,
		`INSERT INTO jobs (title, description, required_skills, location, category) VALUES ($1,$2,$3,$4,$5) RETURNING id`,
		j.Title, j.Description, j.RequiredSkills, j.Location, j.Category,
	).Scan(&id)
	if err != nil {
		return 0, mapErr("job.create", err)
	}
	return id, nil
}

// Get loads a job by id.
func (r *JobRepo) Get(ctx domain.Context, id int64) (domain.Job, error) {
	ctx, span := startSpan(ctx, "jobs", "Get", "SELECT")
	defer span.End()
	j, err := scanJob(r.Pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs j WHERE j.id=$1`, id))
	if err != nil {
		return domain.Job{}, mapErr("job.get", err)
	}
	return j, nil
}

// List returns jobs passing the filter ordered by id.
func (r *JobRepo) List(ctx domain.Context, f domain.JobFilter) ([]domain.Job, error) {
	ctx, span := startSpan(ctx, "jobs", "List", "SELECT")
	defer span.End()
	where, args := jobFilterSQL(f, nil)
	rows, err := r.Pool.Query(ctx, `SELECT `+jobColumns+` FROM jobs j WHERE TRUE`+where+` ORDER BY j.id`, args...)
	if err != nil {
		return nil, mapErr("job.list", err)
	}
	defer rows.Close()
	out := make([]domain.Job, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, mapErr("job.list", err)
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("job.list", err)
	}
	return out, nil
}

// Update overwrites the mutable fields of a job and returns the stored row.
func (r *JobRepo) Update(ctx domain.Context, j domain.Job) (domain.Job, error) {
	ctx, span := startSpan(ctx, "jobs", "Update", "UPDATE")
	defer span.End()
	out, err := scanJob(r.Pool.QueryRow(ctx,
		`UPDATE jobs j SET title=$2, description=$3, required_skills=$4, location=$5, category=$6 WHERE j.id=$1 RETURNING `+jobColumns,
		j.ID, j.Title, j.Description, j.RequiredSkills, j.Location, j.Category))
	if err != nil {
		return domain.Job{}, mapErr("job.update", err)
	}
	return out, nil
}

// Delete removes a job; its match records cascade.
func (r *JobRepo) Delete(ctx domain.Context, id int64) error {
	ctx, span := startSpan(ctx, "jobs", "Delete", "DELETE")
	defer span.End()
	tag, err := r.Pool.Exec(ctx, `DELETE FROM jobs WHERE id=$1`, id)
	if err != nil {
		return mapErr("job.delete", err)
	}
	if tag.RowsAffected() == 0 {
		return mapErr("job.delete", domain.ErrNotFound)
	}
	return nil
}

// Count returns the number of jobs.
func (r *JobRepo) Count(ctx domain.Context) (int64, error) {
	ctx, span := startSpan(ctx, "jobs", "Count", "SELECT")
	defer span.End()
	return count(ctx, r.Pool, "job.count", `SELECT COUNT(*) FROM jobs`)
}

func scanJob(s scanner) (domain.Job, error) {
	var j domain.Job
	err := s.Scan(&j.ID, &j.Title, &j.Description, &j.RequiredSkills, &j.Location, &j.Category, &j.CreatedAt)
	return j, err
}
