package usecase

import (
	"fmt"

	"github.com/fairyhunter13/smart-resume-matcher/internal/domain"
	"github.com/fairyhunter13/smart-resume-matcher/internal/matching"
	"github.com/fairyhunter13/smart-resume-matcher/internal/observability"
)

const (
	// MaxPageLimit caps the page size of ranked queries.
	MaxPageLimit = 100
	// DefaultTopN is the recommend size when the caller does not pass one.
	DefaultTopN = 5
)

// Recommendation is a live, unpersisted score for a job.
type Recommendation struct {
	Job   domain.Job
	Score float64
}

// MatchedJob is the compact projection of a persisted match.
type MatchedJob struct {
	JobID    int64   `json:"job_id"`
	JobTitle string  `json:"job_title"`
	Score    float64 `json:"score"`
}

// RankService answers ranked, filtered and paginated queries over matches.
type RankService struct {
	Resumes domain.ResumeRepository
	Jobs    domain.JobRepository
	Matches domain.MatchRepository
	Scorer  matching.Scorer
}

// NewRankService constructs a RankService. A nil scorer selects the lexical scorer.
func NewRankService(r domain.ResumeRepository, j domain.JobRepository, m domain.MatchRepository, s matching.Scorer) RankService {
	if s == nil {
		s = matching.NewLexicalScorer()
	}
	return RankService{Resumes: r, Jobs: j, Matches: m, Scorer: s}
}

// ValidatePage rejects non-positive pages and limits outside 1..MaxPageLimit.
func ValidatePage(page domain.PageRequest) error {
	if page.Page <= 0 || page.Limit <= 0 {
		return fmt.Errorf("%w: page and limit must be positive", domain.ErrInvalidArgument)
	}
	if page.Limit > MaxPageLimit {
		return fmt.Errorf("%w: limit must be at most %d", domain.ErrInvalidArgument, MaxPageLimit)
	}
	return nil
}

// RankedByResume returns one page of a resume's persisted matches, best
// first. An empty page is domain.ErrNoResults.
func (s RankService) RankedByResume(ctx domain.Context, resumeID int64, f domain.JobFilter, page domain.PageRequest) ([]domain.MatchWithJob, error) {
	if err := validateID("resume_id", resumeID); err != nil {
		return nil, err
	}
	if err := ValidatePage(page); err != nil {
		return nil, err
	}
	return s.query(ctx, domain.MatchQuery{ResumeID: resumeID, Filter: f, Page: page})
}

// History returns every persisted match of a resume, best first.
func (s RankService) History(ctx domain.Context, resumeID int64) ([]domain.MatchWithJob, error) {
	if err := validateID("resume_id", resumeID); err != nil {
		return nil, err
	}
	return s.query(ctx, domain.MatchQuery{ResumeID: resumeID})
}

// MatchedJobs projects History to job id, title and score.
func (s RankService) MatchedJobs(ctx domain.Context, resumeID int64) ([]MatchedJob, error) {
	rows, err := s.History(ctx, resumeID)
	if err != nil {
		return nil, err
	}
	out := make([]MatchedJob, len(rows))
	for i, r := range rows {
		out[i] = MatchedJob{JobID: r.JobID, JobTitle: r.JobTitle, Score: r.Score}
	}
	return out, nil
}

func (s RankService) query(ctx domain.Context, q domain.MatchQuery) ([]domain.MatchWithJob, error) {
	rows, err := s.Matches.Query(ctx, q)
	if err != nil {
		return nil, storeErr(err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrNoResults
	}
	return rows, nil
}

// RankedByUser returns the matches of all of a user's resumes, best first.
func (s RankService) RankedByUser(ctx domain.Context, userID int64) ([]domain.MatchRecord, error) {
	if err := validateID("user_id", userID); err != nil {
		return nil, err
	}
	rows, err := s.Matches.ListByUser(ctx, userID)
	if err != nil {
		return nil, storeErr(err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrNoResults
	}
	return rows, nil
}

// Recommend scores the resume live against every job passing the filter and
// returns the best topN. Nothing is persisted. topN 0 selects DefaultTopN.
func (s RankService) Recommend(ctx domain.Context, resumeID int64, topN int, f domain.JobFilter) ([]Recommendation, error) {
	if err := validateID("resume_id", resumeID); err != nil {
		return nil, err
	}
	if topN == 0 {
		topN = DefaultTopN
	}
	if topN < 0 {
		return nil, fmt.Errorf("%w: top_n must be positive", domain.ErrInvalidArgument)
	}
	resume, err := s.Resumes.Get(ctx, resumeID)
	if err != nil {
		return nil, storeErr(err)
	}
	jobs, err := s.Jobs.List(ctx, f)
	if err != nil {
		return nil, storeErr(err)
	}
	if len(jobs) == 0 {
		return nil, domain.ErrNoResults
	}
	scored := matching.ScoreAll(s.Scorer, resume.Content, jobs, domain.Job.ScoringText)
	observability.ObserveRecommendations(len(scored))
	top := matching.TopN(scored, topN)
	out := make([]Recommendation, len(top))
	for i, t := range top {
		out[i] = Recommendation{Job: t.Item, Score: t.Score}
	}
	return out, nil
}
