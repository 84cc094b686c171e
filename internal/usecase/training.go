package usecase

import (
	"fmt"

	"github.com/fairyhunter13/smart-resume-matcher/internal/domain"
	"github.com/fairyhunter13/smart-resume-matcher/internal/matching"
)

// TrainingPlan is the skill gap of a candidate for one job and the courses
// that close it.
type TrainingPlan struct {
	JobTitle  string   `json:"job_title"`
	SkillGap  []string `json:"skill_gap"`
	Trainings []string `json:"recommended_trainings"`
}

// TrainingService derives skill gaps and training recommendations.
type TrainingService struct {
	Resumes domain.ResumeRepository
	Jobs    domain.JobRepository
}

// NewTrainingService constructs a TrainingService.
func NewTrainingService(r domain.ResumeRepository, j domain.JobRepository) TrainingService {
	return TrainingService{Resumes: r, Jobs: j}
}

// RecommendForJob compares the user's known skills with the job's required
// skills. The known skills come from the first resume that has extracted skills.
func (s TrainingService) RecommendForJob(ctx domain.Context, userID, jobID int64) (TrainingPlan, error) {
	if err := validateID("job_id", jobID); err != nil {
		return TrainingPlan{}, err
	}
	job, err := s.Jobs.Get(ctx, jobID)
	if err != nil {
		return TrainingPlan{}, storeErr(err)
	}
	profile, err := loadProfile(ctx, s.Resumes, userID)
	if err != nil {
		return TrainingPlan{}, err
	}
	if profile.Skills == "" {
		return TrainingPlan{}, domainNotFound("no resume skills found; summarize a resume first")
	}
	return planFor(job, profile.Skills), nil
}

func planFor(job domain.Job, knownSkills string) TrainingPlan {
	gap := matching.SkillGap(knownSkills, job.RequiredSkills)
	return TrainingPlan{
		JobTitle:  job.Title,
		SkillGap:  gap,
		Trainings: matching.RecommendTrainings(gap),
	}
}

func domainNotFound(msg string) error { return fmt.Errorf("%w: %s", domain.ErrNotFound, msg) }
