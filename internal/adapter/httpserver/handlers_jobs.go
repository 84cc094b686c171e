package httpserver

import (
	"fmt"
	"net/http"

	"github.com/fairyhunter13/smart-resume-matcher/internal/domain"
	"github.com/fairyhunter13/smart-resume-matcher/internal/usecase"
)

type jobRequest struct {
	Title          string `json:"title" validate:"required,max=300"`
	Description    string `json:"description" validate:"max=20000"`
	RequiredSkills string `json:"required_skills" validate:"max=5000"`
	Location       string `json:"location" validate:"max=200"`
	Category       string `json:"category" validate:"max=200"`
}

func (j jobRequest) input() usecase.JobInput {
	return usecase.JobInput{
		Title:          j.Title,
		Description:    j.Description,
		RequiredSkills: j.RequiredSkills,
		Location:       j.Location,
		Category:       j.Category,
	}
}

// CreateJobHandler stores a new job (admin).
func (s *Server) CreateJobHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req jobRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		job, err := s.Jobs.Create(r.Context(), req.input())
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusCreated, toJobView(job))
	}
}

// ListJobsHandler lists jobs narrowed by ?category=&location=&keyword=.
func (s *Server) ListJobsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobs, err := s.Jobs.List(r.Context(), jobFilterFrom(r))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		out := make([]jobView, len(jobs))
		for i, j := range jobs {
			out[i] = toJobView(j)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GetJobHandler returns one job.
func (s *Server) GetJobHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		job, err := s.Jobs.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toJobView(job))
	}
}

// UpdateJobHandler replaces a job's fields (admin).
func (s *Server) UpdateJobHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		var req jobRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		job, err := s.Jobs.Update(r.Context(), id, req.input())
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toJobView(job))
	}
}

// DeleteJobHandler removes a job and its matches (admin).
func (s *Server) DeleteJobHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		if err := s.Jobs.Delete(r.Context(), id); err != nil {
			writeError(w, r, err, nil)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// MatchJobsHandler scores all of the caller's resumes together against every
// job passing the filter, best first. Only candidates have resumes to match.
func (s *Server) MatchJobsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := currentUser(r)
		if u.Role != domain.RoleCandidate {
			writeError(w, r, fmt.Errorf("%w: only candidates can match jobs", domain.ErrForbidden), nil)
			return
		}
		recs, err := s.Jobs.MatchForCandidate(r.Context(), u.ID, jobFilterFrom(r))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toRecommendationViews(recs))
	}
}
