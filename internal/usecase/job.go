package usecase

import (
	"fmt"
	"strings"

	"github.com/fairyhunter13/smart-resume-matcher/internal/domain"
	"github.com/fairyhunter13/smart-resume-matcher/internal/matching"
)

// JobInput is the writable part of a job posting.
type JobInput struct {
	Title          string
	Description    string
	RequiredSkills string
	Location       string
	Category       string
}

func (in JobInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidArgument)
	}
	if strings.TrimSpace(in.Description) == "" && strings.TrimSpace(in.RequiredSkills) == "" {
		return fmt.Errorf("%w: description or required_skills is required", domain.ErrInvalidArgument)
	}
	return nil
}

func (in JobInput) job(id int64) domain.Job {
	return domain.Job{
		ID:             id,
		Title:          strings.TrimSpace(in.Title),
		Description:    in.Description,
		RequiredSkills: in.RequiredSkills,
		Location:       strings.TrimSpace(in.Location),
		Category:       strings.TrimSpace(in.Category),
	}
}

// JobService manages job postings.
type JobService struct {
	Jobs    domain.JobRepository
	Resumes domain.ResumeRepository
	Scorer  matching.Scorer
}

// NewJobService constructs a JobService. A nil scorer selects the lexical scorer.
func NewJobService(j domain.JobRepository, r domain.ResumeRepository, s matching.Scorer) JobService {
	if s == nil {
		s = matching.NewLexicalScorer()
	}
	return JobService{Jobs: j, Resumes: r, Scorer: s}
}

// Create stores a new job.
func (s JobService) Create(ctx domain.Context, in JobInput) (domain.Job, error) {
	if err := in.validate(); err != nil {
		return domain.Job{}, err
	}
	j := in.job(0)
	id, err := s.Jobs.Create(ctx, j)
	if err != nil {
		return domain.Job{}, storeErr(err)
	}
	return s.Get(ctx, id)
}

// Get loads one job.
func (s JobService) Get(ctx domain.Context, id int64) (domain.Job, error) {
	if err := validateID("job_id", id); err != nil {
		return domain.Job{}, err
	}
	j, err := s.Jobs.Get(ctx, id)
	if err != nil {
		return domain.Job{}, storeErr(err)
	}
	return j, nil
}

// List returns the jobs passing the filter. An empty list is not an error.
func (s JobService) List(ctx domain.Context, f domain.JobFilter) ([]domain.Job, error) {
	out, err := s.Jobs.List(ctx, f)
	if err != nil {
		return nil, storeErr(err)
	}
	return out, nil
}

// Update overwrites a job's fields.
func (s JobService) Update(ctx domain.Context, id int64, in JobInput) (domain.Job, error) {
	if err := validateID("job_id", id); err != nil {
		return domain.Job{}, err
	}
	if err := in.validate(); err != nil {
		return domain.Job{}, err
	}
	out, err := s.Jobs.Update(ctx, in.job(id))
	if err != nil {
		return domain.Job{}, storeErr(err)
	}
	return out, nil
}

// Delete removes a job together with its match records.
func (s JobService) Delete(ctx domain.Context, id int64) error {
	if err := validateID("job_id", id); err != nil {
		return err
	}
	if err := s.Jobs.Delete(ctx, id); err != nil {
		return storeErr(err)
	}
	return nil
}

// MatchForCandidate scores all of a user's resumes, taken together, against
// every job passing the filter. Results are best first and not persisted.
func (s JobService) MatchForCandidate(ctx domain.Context, userID int64, f domain.JobFilter) ([]Recommendation, error) {
	profile, err := loadProfile(ctx, s.Resumes, userID)
	if err != nil {
		return nil, err
	}
	jobs, err := s.Jobs.List(ctx, f)
	if err != nil {
		return nil, storeErr(err)
	}
	scored := matching.ScoreAll(s.Scorer, profile.Text, jobs, domain.Job.ScoringText)
	out := make([]Recommendation, 0, len(scored))
	for _, sc := range matching.TopN(scored, len(scored)) {
		out = append(out, Recommendation{Job: sc.Item, Score: sc.Score})
	}
	return out, nil
}
