package httpserver

import (
	"time"

	"github.com/fairyhunter13/smart-resume-matcher/internal/domain"
	"github.com/fairyhunter13/smart-resume-matcher/internal/usecase"
)

type userView struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func toUserView(u domain.User) userView {
	return userView{ID: u.ID, Name: u.Name, Email: u.Email, Role: string(u.Role)}
}

type resumeView struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Filename  string    `json:"filename"`
	Content   string    `json:"content"`
	Summary   string    `json:"summary"`
	Skills    string    `json:"skills"`
	CreatedAt time.Time `json:"created_at"`
}

func toResumeView(r domain.Resume) resumeView {
	return resumeView{
		ID:        r.ID,
		UserID:    r.UserID,
		Filename:  r.Filename,
		Content:   r.Content,
		Summary:   r.Summary,
		Skills:    r.Skills,
		CreatedAt: r.CreatedAt,
	}
}

func toResumeViews(rs []domain.Resume) []resumeView {
	out := make([]resumeView, len(rs))
	for i, r := range rs {
		out[i] = toResumeView(r)
	}
	return out
}

type jobView struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	RequiredSkills string `json:"required_skills"`
	Location       string `json:"location"`
	Category       string `json:"category"`
}

func toJobView(j domain.Job) jobView {
	return jobView{
		ID:             j.ID,
		Title:          j.Title,
		Description:    j.Description,
		RequiredSkills: j.RequiredSkills,
		Location:       j.Location,
		Category:       j.Category,
	}
}

type matchView struct {
	ResumeID int64   `json:"resume_id"`
	JobID    int64   `json:"job_id"`
	Score    float64 `json:"score"`
}

func toMatchView(m domain.MatchRecord) matchView {
	return matchView{ResumeID: m.ResumeID, JobID: m.JobID, Score: m.Score}
}

type matchWithJobView struct {
	ResumeID       int64   `json:"resume_id"`
	JobID          int64   `json:"job_id"`
	Score          float64 `json:"score"`
	JobTitle       string  `json:"job_title"`
	JobDescription string  `json:"job_description"`
	Location       string  `json:"location"`
	Category       string  `json:"category"`
}

func toMatchWithJobViews(rows []domain.MatchWithJob) []matchWithJobView {
	out := make([]matchWithJobView, len(rows))
	for i, m := range rows {
		out[i] = matchWithJobView{
			ResumeID:       m.ResumeID,
			JobID:          m.JobID,
			Score:          m.Score,
			JobTitle:       m.JobTitle,
			JobDescription: m.JobDescription,
			Location:       m.Location,
			Category:       m.Category,
		}
	}
	return out
}

type recommendationView struct {
	JobID          int64   `json:"job_id"`
	Title          string  `json:"title"`
	RequiredSkills string  `json:"required_skills"`
	Location       string  `json:"location"`
	Category       string  `json:"category"`
	Score          float64 `json:"score"`
}

func toRecommendationViews(recs []usecase.Recommendation) []recommendationView {
	out := make([]recommendationView, len(recs))
	for i, r := range recs {
		out[i] = recommendationView{
			JobID:          r.Job.ID,
			Title:          r.Job.Title,
			RequiredSkills: r.Job.RequiredSkills,
			Location:       r.Job.Location,
			Category:       r.Job.Category,
			Score:          r.Score,
		}
	}
	return out
}
