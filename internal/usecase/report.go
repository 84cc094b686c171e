package usecase

import (
	"github.com/fairyhunter13/smart-resume-matcher/internal/domain"
	"github.com/fairyhunter13/smart-resume-matcher/internal/matching"
)

// ReportService builds and renders the per-job match report of a candidate.
type ReportService struct {
	Resumes  domain.ResumeRepository
	Jobs     domain.JobRepository
	Scorer   matching.Scorer
	Renderer domain.ReportRenderer
}

// NewReportService constructs a ReportService. A nil scorer selects the lexical scorer.
func NewReportService(r domain.ResumeRepository, j domain.JobRepository, s matching.Scorer, rr domain.ReportRenderer) ReportService {
	if s == nil {
		s = matching.NewLexicalScorer()
	}
	return ReportService{Resumes: r, Jobs: j, Scorer: s, Renderer: rr}
}

// Build assembles the report content without rendering it.
func (s ReportService) Build(ctx domain.Context, userID, jobID int64) (domain.MatchReport, error) {
	if err := validateID("job_id", jobID); err != nil {
		return domain.MatchReport{}, err
	}
	profile, err := loadProfile(ctx, s.Resumes, userID)
	if err != nil {
		return domain.MatchReport{}, err
	}
	if profile.Skills == "" {
		return domain.MatchReport{}, domainNotFound("no resume summary found")
	}
	job, err := s.Jobs.Get(ctx, jobID)
	if err != nil {
		return domain.MatchReport{}, storeErr(err)
	}
	plan := planFor(job, profile.Skills)
	return domain.MatchReport{
		JobTitle:  job.Title,
		Score:     s.Scorer.Score(profile.Text, job.ScoringText()),
		SkillGap:  plan.SkillGap,
		Trainings: plan.Trainings,
	}, nil
}

// ExportPDF builds the report and renders it as a PDF document.
func (s ReportService) ExportPDF(ctx domain.Context, userID, jobID int64) ([]byte, error) {
	rep, err := s.Build(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}
	pdf, err := s.Renderer.RenderMatchReport(ctx, rep)
	if err != nil {
		return nil, storeErr(err)
	}
	return pdf, nil
}
