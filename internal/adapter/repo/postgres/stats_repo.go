package postgres

import (
	"github.com/fairyhunter13/smart-resume-matcher/internal/domain"
)

// StatsRepo runs the group-by aggregations over match records.
type StatsRepo struct{ Pool PgxPool }

// NewStatsRepo constructs a StatsRepo with the given pool.
func NewStatsRepo(p PgxPool) *StatsRepo { return &StatsRepo{Pool: p} }

// MatchCountPerCandidate counts matches per user through their resumes.
func (r *StatsRepo) MatchCountPerCandidate(ctx domain.Context) ([]domain.CandidateMatchCount, error) {
	ctx, span := startSpan(ctx, "match_results", "MatchCountPerCandidate", "SELECT")
	defer span.End()
	rows, err := r.Pool.Query(ctx, `
		SELECT u.id, u.name, COUNT(m.id) AS match_count
		FROM users u
		JOIN resumes r ON r.user_id = u.id
		JOIN match_results m ON m.resume_id = r.id
		GROUP BY u.id, u.name
		ORDER BY match_count DESC, u.id ASC`)
	if err != nil {
		return nil, mapErr("stats.per_candidate", err)
	}
	defer rows.Close()
	out := make([]domain.CandidateMatchCount, 0)
	for rows.Next() {
		var c domain.CandidateMatchCount
		if err := rows.Scan(&c.UserID, &c.Name, &c.MatchCount); err != nil {
			return nil, mapErr("stats.per_candidate", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("stats.per_candidate", err)
	}
	return out, nil
}

// MostAppliedJobs returns the jobs with the most match records.
func (r *StatsRepo) MostAppliedJobs(ctx domain.Context, limit int) ([]domain.JobApplicationCount, error) {
	ctx, span := startSpan(ctx, "match_results", "MostAppliedJobs", "SELECT")
	defer span.End()
	rows, err := r.Pool.Query(ctx, `
		SELECT j.id, j.title, COUNT(m.id) AS applications
		FROM jobs j
		JOIN match_results m ON m.job_id = j.id
		GROUP BY j.id, j.title
		ORDER BY applications DESC, j.id ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, mapErr("stats.most_applied", err)
	}
	defer rows.Close()
	out := make([]domain.JobApplicationCount, 0)
	for rows.Next() {
		var c domain.JobApplicationCount
		if err := rows.Scan(&c.JobID, &c.Title, &c.Applications); err != nil {
			return nil, mapErr("stats.most_applied", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("stats.most_applied", err)
	}
	return out, nil
}
