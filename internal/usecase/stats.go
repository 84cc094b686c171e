package usecase

import (
	"fmt"

	"github.com/fairyhunter13/smart-resume-matcher/internal/domain"
)

// DefaultMostAppliedLimit is used when the caller passes no limit.
const DefaultMostAppliedLimit = 5

// StatsService computes corpus-wide aggregates.
type StatsService struct {
	Resumes domain.ResumeRepository
	Jobs    domain.JobRepository
	Matches domain.MatchRepository
	Stats   domain.StatsRepository
}

// NewStatsService constructs a StatsService.
func NewStatsService(r domain.ResumeRepository, j domain.JobRepository, m domain.MatchRepository, st domain.StatsRepository) StatsService {
	return StatsService{Resumes: r, Jobs: j, Matches: m, Stats: st}
}

// Totals counts resumes, jobs and matches.
func (s StatsService) Totals(ctx domain.Context) (domain.Totals, error) {
	var t domain.Totals
	var err error
	if t.Resumes, err = s.Resumes.Count(ctx); err != nil {
		return domain.Totals{}, storeErr(err)
	}
	if t.Jobs, err = s.Jobs.Count(ctx); err != nil {
		return domain.Totals{}, storeErr(err)
	}
	if t.Matches, err = s.Matches.Count(ctx); err != nil {
		return domain.Totals{}, storeErr(err)
	}
	return t, nil
}

// MatchesPerCandidate counts matches per user across their resumes.
func (s StatsService) MatchesPerCandidate(ctx domain.Context) ([]domain.CandidateMatchCount, error) {
	out, err := s.Stats.MatchCountPerCandidate(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	return out, nil
}

// MostAppliedJobs returns the jobs with the most matches. limit 0 selects the default.
func (s StatsService) MostAppliedJobs(ctx domain.Context, limit int) ([]domain.JobApplicationCount, error) {
	if limit == 0 {
		limit = DefaultMostAppliedLimit
	}
	if limit < 0 || limit > MaxPageLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", domain.ErrInvalidArgument, MaxPageLimit)
	}
	out, err := s.Stats.MostAppliedJobs(ctx, limit)
	if err != nil {
		return nil, storeErr(err)
	}
	return out, nil
}
