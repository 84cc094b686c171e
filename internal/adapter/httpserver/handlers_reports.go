package httpserver

import (
	"context"
	"net/http"
	"strconv"
	"time"
)

// TotalsHandler reports resume, job and match counts.
func (s *Server) TotalsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := s.Stats.Totals(r.Context())
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, t)
	}
}

// MatchesPerCandidateHandler reports match counts per user.
func (s *Server) MatchesPerCandidateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := s.Stats.MatchesPerCandidate(r.Context())
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// MostAppliedJobsHandler reports the jobs with the most matches.
func (s *Server) MostAppliedJobsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := queryInt(r, "limit", 0)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		out, err := s.Stats.MostAppliedJobs(r.Context(), limit)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// TrainingsHandler returns the caller's skill gap for a job and the
// trainings that close it.
func (s *Server) TrainingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID, err := pathID(r, "job_id")
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		plan, err := s.Trainings.RecommendForJob(r.Context(), currentUser(r).ID, jobID)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, plan)
	}
}

// ExportPDFHandler streams the caller's match report for a job as a PDF.
func (s *Server) ExportPDFHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID, err := pathID(r, "job_id")
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		pdf, err := s.Reports.ExportPDF(r.Context(), currentUser(r).ID, jobID)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="job_match_`+strconv.FormatInt(jobID, 10)+`.pdf"`)
		w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(pdf)
	}
}

// ReadyzHandler checks the database and, when configured, Redis.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	type check struct {
		Name    string `json:"name"`
		OK      bool   `json:"ok"`
		Details string `json:"details,omitempty"`
	}
	runCheck := func(ctx context.Context, name string, fn func(context.Context) error) check {
		if err := fn(ctx); err != nil {
			return check{Name: name, OK: false, Details: err.Error()}
		}
		return check{Name: name, OK: true}
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		checks := make([]check, 0, 2)
		if s.DBCheck != nil {
			checks = append(checks, runCheck(ctx, "db", s.DBCheck))
		}
		if s.RedisCheck != nil {
			checks = append(checks, runCheck(ctx, "redis", s.RedisCheck))
		}
		st := http.StatusOK
		for _, c := range checks {
			if !c.OK {
				st = http.StatusServiceUnavailable
				break
			}
		}
		writeJSON(w, st, map[string]any{"checks": checks})
	}
}
