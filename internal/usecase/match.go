// Package usecase contains the application services of the matcher.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fairyhunter13/smart-resume-matcher/internal/domain"
	"github.com/fairyhunter13/smart-resume-matcher/internal/matching"
	"github.com/fairyhunter13/smart-resume-matcher/internal/observability"
)

// ScoreInput is either a TextPair or an IDPair.
type ScoreInput interface{ isScoreInput() }

// TextPair scores two raw texts.
type TextPair struct {
	ResumeText string
	JobText    string
}

// IDPair scores a stored resume against a stored job.
type IDPair struct {
	ResumeID int64
	JobID    int64
}

func (TextPair) isScoreInput() {}
func (IDPair) isScoreInput()   {}

// DefaultPublishTimeout bounds how long a created match waits on its event.
const DefaultPublishTimeout = 2 * time.Second

// MatchService computes and persists resume/job match scores.
type MatchService struct {
	Resumes domain.ResumeRepository
	Jobs    domain.JobRepository
	Matches domain.MatchRepository
	Scorer  matching.Scorer
	Events  domain.MatchEventPublisher
	// PublishTimeout caps the match.created publish; <= 0 uses DefaultPublishTimeout.
	PublishTimeout time.Duration
}

// NewMatchService constructs a MatchService. A nil scorer selects the lexical scorer.
func NewMatchService(r domain.ResumeRepository, j domain.JobRepository, m domain.MatchRepository, s matching.Scorer, ev domain.MatchEventPublisher) MatchService {
	if s == nil {
		s = matching.NewLexicalScorer()
	}
	return MatchService{Resumes: r, Jobs: j, Matches: m, Scorer: s, Events: ev, PublishTimeout: DefaultPublishTimeout}
}

// Score computes a score without persisting anything.
func (s MatchService) Score(ctx domain.Context, in ScoreInput) (float64, error) {
	switch v := in.(type) {
	case TextPair:
		if strings.TrimSpace(v.ResumeText) == "" || strings.TrimSpace(v.JobText) == "" {
			return 0, fmt.Errorf("%w: resume_text and job_text are required", domain.ErrInvalidArgument)
		}
		return s.Scorer.Score(v.ResumeText, v.JobText), nil
	case IDPair:
		if err := validatePair(v.ResumeID, v.JobID); err != nil {
			return 0, err
		}
		resume, job, err := s.resolve(ctx, v.ResumeID, v.JobID)
		if err != nil {
			return 0, err
		}
		return s.Scorer.Score(resume.Content, job.ScoringText()), nil
	default:
		return 0, fmt.Errorf("%w: unsupported score input %T", domain.ErrInvalidArgument, in)
	}
}

// Get returns the persisted record of a pair.
func (s MatchService) Get(ctx domain.Context, resumeID, jobID int64) (domain.MatchRecord, error) {
	if err := validatePair(resumeID, jobID); err != nil {
		return domain.MatchRecord{}, err
	}
	m, err := s.Matches.Find(ctx, resumeID, jobID)
	if err != nil {
		return domain.MatchRecord{}, storeErr(err)
	}
	return m, nil
}

// GetOrCreate returns the record of a pair, scoring and persisting it on
// first use. An existing record is returned unchanged.
func (s MatchService) GetOrCreate(ctx domain.Context, resumeID, jobID int64) (domain.MatchRecord, error) {
	if err := validatePair(resumeID, jobID); err != nil {
		return domain.MatchRecord{}, err
	}
	existing, err := s.Matches.Find(ctx, resumeID, jobID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.MatchRecord{}, storeErr(err)
	}

	resume, job, err := s.resolve(ctx, resumeID, jobID)
	if err != nil {
		return domain.MatchRecord{}, err
	}
	rec := domain.MatchRecord{ResumeID: resumeID, JobID: jobID, Score: s.Scorer.Score(resume.Content, job.ScoringText())}

	created, err := s.Matches.Insert(ctx, rec, resume.UserID)
	if errors.Is(err, domain.ErrConflict) {
		// Another request persisted the pair first; its record is the answer.
		observability.ObserveMatchConflict()
		winner, ferr := s.Matches.Find(ctx, resumeID, jobID)
		if ferr != nil {
			return domain.MatchRecord{}, storeErr(ferr)
		}
		return winner, nil
	}
	if err != nil {
		return domain.MatchRecord{}, storeErr(err)
	}

	observability.ObserveMatchCreated(created.Score)
	lg := observability.LoggerFromContext(ctx)
	lg.Info("match created",
		slog.Int64("resume_id", created.ResumeID),
		slog.Int64("job_id", created.JobID),
		slog.Float64("score", created.Score))
	s.publishCreated(ctx, created)
	return created, nil
}

// publishCreated emits match.created on a context detached from the request
// and bounded by PublishTimeout. Failures are logged only.
func (s MatchService) publishCreated(ctx domain.Context, rec domain.MatchRecord) {
	if s.Events == nil {
		return
	}
	timeout := s.PublishTimeout
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	if err := s.Events.PublishMatchCreated(pctx, rec); err != nil {
		observability.LoggerFromContext(ctx).Warn("publish match event failed",
			slog.Int64("match_id", rec.ID), slog.Any("error", err))
	}
}

func (s MatchService) resolve(ctx domain.Context, resumeID, jobID int64) (domain.Resume, domain.Job, error) {
	resume, err := s.Resumes.Get(ctx, resumeID)
	if err != nil {
		return domain.Resume{}, domain.Job{}, storeErr(err)
	}
	job, err := s.Jobs.Get(ctx, jobID)
	if err != nil {
		return domain.Resume{}, domain.Job{}, storeErr(err)
	}
	return resume, job, nil
}

func validatePair(resumeID, jobID int64) error {
	if err := validateID("resume_id", resumeID); err != nil {
		return err
	}
	return validateID("job_id", jobID)
}

func validateID(name string, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidArgument, name)
	}
	return nil
}

var passthrough = []error{
	domain.ErrNotFound, domain.ErrInvalidArgument, domain.ErrConflict,
	domain.ErrForbidden, domain.ErrUnauthorized, domain.ErrDependency,
	domain.ErrUpstreamTimeout, domain.ErrUpstreamRateLimit, domain.ErrRateLimited,
}

// storeErr passes domain sentinels through and marks anything else as a
// dependency failure.
func storeErr(err error) error {
	for _, sentinel := range passthrough {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", domain.ErrDependency, err)
}
