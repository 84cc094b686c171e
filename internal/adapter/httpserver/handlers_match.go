package httpserver

import (
	"fmt"
	"net/http"

	"github.com/fairyhunter13/smart-resume-matcher/internal/domain"
	"github.com/fairyhunter13/smart-resume-matcher/internal/usecase"
)

type matchTextRequest struct {
	ResumeText     string `json:"resume_text" validate:"required,max=200000"`
	JobDescription string `json:"job_description" validate:"required,max=200000"`
}

type matchResumeRequest struct {
	ResumeID int64 `json:"resume_id"`
	JobID    int64 `json:"job_id"`
}

// authorizeResume confirms the caller may read resumeID. On failure the error
// response has already been written.
func (s *Server) authorizeResume(w http.ResponseWriter, r *http.Request, resumeID int64) bool {
	if _, err := s.Resumes.Get(r.Context(), currentUser(r), resumeID); err != nil {
		writeError(w, r, err, nil)
		return false
	}
	return true
}

// resumeParam parses {resume_id} and checks the caller may read it.
func (s *Server) resumeParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := pathID(r, "resume_id")
	if err != nil {
		writeError(w, r, err, nil)
		return 0, false
	}
	return id, s.authorizeResume(w, r, id)
}

// MatchTextHandler scores two raw texts without persisting anything.
func (s *Server) MatchTextHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req matchTextRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		score, err := s.Matches.Score(r.Context(), usecase.TextPair{ResumeText: req.ResumeText, JobText: req.JobDescription})
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]float64{"score": score})
	}
}

// MatchResumeHandler returns the persisted match of a stored pair, scoring
// and persisting it first when absent.
func (s *Server) MatchResumeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req matchResumeRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.ResumeID <= 0 || req.JobID <= 0 {
			writeError(w, r, fmt.Errorf("%w: resume_id and job_id must be positive", domain.ErrInvalidArgument), nil)
			return
		}
		if !s.authorizeResume(w, r, req.ResumeID) {
			return
		}
		m, err := s.Matches.GetOrCreate(r.Context(), req.ResumeID, req.JobID)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toMatchView(m))
	}
}

// MatchResultHandler returns the persisted match of a pair, or 404.
func (s *Server) MatchResultHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resumeID, ok := s.resumeParam(w, r)
		if !ok {
			return
		}
		jobID, err := pathID(r, "job_id")
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		m, err := s.Matches.Get(r.Context(), resumeID, jobID)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toMatchView(m))
	}
}

// RankedHandler returns one page of a resume's persisted matches, best first.
func (s *Server) RankedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := pageFrom(r)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		resumeID, ok := s.resumeParam(w, r)
		if !ok {
			return
		}
		rows, err := s.Rank.RankedByResume(r.Context(), resumeID, jobFilterFrom(r), page)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toMatchWithJobViews(rows))
	}
}

// ByUserHandler returns the matches of all of a user's resumes. Candidates
// may only ask about themselves.
func (s *Server) ByUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := pathID(r, "user_id")
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		if u := currentUser(r); !u.IsAdmin() && u.ID != userID {
			writeError(w, r, fmt.Errorf("%w: matches belong to another user", domain.ErrForbidden), nil)
			return
		}
		rows, err := s.Rank.RankedByUser(r.Context(), userID)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		out := make([]matchView, len(rows))
		for i, m := range rows {
			out[i] = toMatchView(m)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type recommendView struct {
	ResumeID int64   `json:"resume_id"`
	JobID    int64   `json:"job_id"`
	JobTitle string  `json:"job_title"`
	Score    float64 `json:"score"`
}

// RecommendHandler scores a resume live against the filtered jobs and returns
// the best ?top_n= of them.
func (s *Server) RecommendHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topN, err := queryInt(r, "top_n", usecase.DefaultTopN)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		if topN <= 0 {
			writeError(w, r, fmt.Errorf("%w: top_n must be positive", domain.ErrInvalidArgument), nil)
			return
		}
		resumeID, ok := s.resumeParam(w, r)
		if !ok {
			return
		}
		recs, err := s.Rank.Recommend(r.Context(), resumeID, topN, jobFilterFrom(r))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		out := make([]recommendView, len(recs))
		for i, rec := range recs {
			out[i] = recommendView{ResumeID: resumeID, JobID: rec.Job.ID, JobTitle: rec.Job.Title, Score: rec.Score}
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// HistoryHandler returns every persisted match of a resume, best first.
func (s *Server) HistoryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resumeID, ok := s.resumeParam(w, r)
		if !ok {
			return
		}
		rows, err := s.Rank.History(r.Context(), resumeID)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		out := make([]matchView, len(rows))
		for i, m := range rows {
			out[i] = toMatchView(m.MatchRecord)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// HistoryDetailHandler is HistoryHandler joined with job details.
func (s *Server) HistoryDetailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resumeID, ok := s.resumeParam(w, r)
		if !ok {
			return
		}
		rows, err := s.Rank.History(r.Context(), resumeID)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toMatchWithJobViews(rows))
	}
}

// MatchedJobsHandler projects a resume's history to job id, title and score.
func (s *Server) MatchedJobsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resumeID, ok := s.resumeParam(w, r)
		if !ok {
			return
		}
		out, err := s.Rank.MatchedJobs(r.Context(), resumeID)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// MatchStatisticsHandler reports corpus-wide counters.
func (s *Server) MatchStatisticsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := s.Stats.Totals(r.Context())
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int64{
			"total_matching": t.Matches,
			"total_resume":   t.Resumes,
			"total_job":      t.Jobs,
		})
	}
}
