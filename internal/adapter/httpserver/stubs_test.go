package httpserver

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/smart-resume-matcher/internal/domain"
	"github.com/fairyhunter13/smart-resume-matcher/internal/usecase"
)

var (
	candidate = domain.User{ID: 7, Name: "Cand", Email: "c@example.com", Role: domain.RoleCandidate}
	admin     = domain.User{ID: 1, Name: "Root", Email: "root@example.com", Role: domain.RoleAdmin}
)

type mockAuth struct{ mock.Mock }

func (m *mockAuth) Register(ctx domain.Context, name, email, password string) (domain.User, error) {
	args := m.Called(ctx, name, email, password)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *mockAuth) Login(ctx domain.Context, email, password string, requireAdmin bool) (string, domain.User, error) {
	args := m.Called(ctx, email, password, requireAdmin)
	return args.String(0), args.Get(1).(domain.User), args.Error(2)
}

func (m *mockAuth) Authenticate(ctx domain.Context, token string) (domain.User, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *mockAuth) ListUsers(ctx domain.Context, actor domain.User) ([]domain.User, error) {
	args := m.Called(ctx, actor)
	users, _ := args.Get(0).([]domain.User)
	return users, args.Error(1)
}

type stubResumes struct {
	resumes map[int64]domain.Resume
	uploads []string
}

func (s *stubResumes) visible(actor domain.User, id int64) (domain.Resume, error) {
	if id <= 0 {
		return domain.Resume{}, domain.ErrInvalidArgument
	}
	r, ok := s.resumes[id]
	if !ok {
		return domain.Resume{}, domain.ErrNotFound
	}
	if !actor.IsAdmin() && r.UserID != actor.ID {
		return domain.Resume{}, domain.ErrForbidden
	}
	return r, nil
}

func (s *stubResumes) Upload(_ domain.Context, owner domain.User, filename string, data []byte, contentType string) (domain.Resume, error) {
	s.uploads = append(s.uploads, filename+"|"+contentType)
	return domain.Resume{ID: 99, UserID: owner.ID, Filename: "key_" + filename, Content: string(data)}, nil
}

func (s *stubResumes) Resummarize(_ domain.Context, actor domain.User, id int64) (domain.Resume, error) {
	r, err := s.visible(actor, id)
	r.Summary, r.Skills = "fresh summary", "go, sql"
	return r, err
}

func (s *stubResumes) Get(_ domain.Context, actor domain.User, id int64) (domain.Resume, error) {
	return s.visible(actor, id)
}

func (s *stubResumes) ListMine(_ domain.Context, actor domain.User) ([]domain.Resume, error) {
	var out []domain.Resume
	for _, r := range s.resumes {
		if r.UserID == actor.ID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubResumes) ListAll(domain.Context, domain.User) ([]domain.Resume, error) {
	out := make([]domain.Resume, 0, len(s.resumes))
	for _, r := range s.resumes {
		out = append(out, r)
	}
	return out, nil
}

func (s *stubResumes) Search(_ domain.Context, _ domain.User, skill string) ([]domain.Resume, error) {
	if strings.TrimSpace(skill) == "" {
		return nil, domain.ErrInvalidArgument
	}
	return nil, nil
}

func (s *stubResumes) UpdateSummary(_ domain.Context, actor domain.User, id int64, summary, skills string) (domain.Resume, error) {
	r, err := s.visible(actor, id)
	if err != nil {
		return r, err
	}
	r.Summary, r.Skills = summary, skills
	return r, nil
}

func (s *stubResumes) Delete(_ domain.Context, actor domain.User, id int64) error {
	_, err := s.visible(actor, id)
	return err
}

type stubJobs struct {
	created []usecase.JobInput
	recs    []usecase.Recommendation
}

func (s *stubJobs) Create(_ domain.Context, in usecase.JobInput) (domain.Job, error) {
	s.created = append(s.created, in)
	return domain.Job{ID: 10, Title: in.Title, RequiredSkills: in.RequiredSkills}, nil
}

func (s *stubJobs) Get(_ domain.Context, id int64) (domain.Job, error) {
	if id != 10 {
		return domain.Job{}, domain.ErrNotFound
	}
	return domain.Job{ID: 10, Title: "Backend"}, nil
}

func (s *stubJobs) List(_ domain.Context, f domain.JobFilter) ([]domain.Job, error) {
	return []domain.Job{{ID: 10, Title: "Backend", Category: f.Category}}, nil
}

func (s *stubJobs) Update(_ domain.Context, id int64, in usecase.JobInput) (domain.Job, error) {
	return domain.Job{ID: id, Title: in.Title}, nil
}

func (s *stubJobs) Delete(domain.Context, int64) error { return nil }

func (s *stubJobs) MatchForCandidate(domain.Context, int64, domain.JobFilter) ([]usecase.Recommendation, error) {
	return s.recs, nil
}

type stubMatches struct {
	created int
}

func (s *stubMatches) Score(_ domain.Context, in usecase.ScoreInput) (float64, error) {
	if tp, ok := in.(usecase.TextPair); ok && tp.ResumeText == tp.JobText {
		return 1, nil
	}
	return 0.667, nil
}

func (s *stubMatches) Get(_ domain.Context, resumeID, jobID int64) (domain.MatchRecord, error) {
	if jobID != 10 {
		return domain.MatchRecord{}, domain.ErrNotFound
	}
	return domain.MatchRecord{ResumeID: resumeID, JobID: jobID, Score: 0.5}, nil
}

func (s *stubMatches) GetOrCreate(_ domain.Context, resumeID, jobID int64) (domain.MatchRecord, error) {
	s.created++
	return domain.MatchRecord{ID: 1, ResumeID: resumeID, JobID: jobID, Score: 0.75}, nil
}

type stubRank struct {
	rows     []domain.MatchWithJob
	lastPage domain.PageRequest
	lastTopN int
	lastF    domain.JobFilter
}

func (s *stubRank) RankedByResume(_ domain.Context, _ int64, f domain.JobFilter, page domain.PageRequest) ([]domain.MatchWithJob, error) {
	s.lastPage, s.lastF = page, f
	if len(s.rows) == 0 {
		return nil, domain.ErrNoResults
	}
	return s.rows, nil
}

func (s *stubRank) History(domain.Context, int64) ([]domain.MatchWithJob, error) {
	if len(s.rows) == 0 {
		return nil, domain.ErrNoResults
	}
	return s.rows, nil
}

func (s *stubRank) MatchedJobs(domain.Context, int64) ([]usecase.MatchedJob, error) {
	out := make([]usecase.MatchedJob, len(s.rows))
	for i, r := range s.rows {
		out[i] = usecase.MatchedJob{JobID: r.JobID, JobTitle: r.JobTitle, Score: r.Score}
	}
	return out, nil
}

func (s *stubRank) RankedByUser(domain.Context, int64) ([]domain.MatchRecord, error) {
	out := make([]domain.MatchRecord, len(s.rows))
	for i, r := range s.rows {
		out[i] = r.MatchRecord
	}
	return out, nil
}

func (s *stubRank) Recommend(_ domain.Context, _ int64, topN int, f domain.JobFilter) ([]usecase.Recommendation, error) {
	s.lastTopN, s.lastF = topN, f
	return []usecase.Recommendation{{Job: domain.Job{ID: 10, Title: "Backend"}, Score: 0.9}}, nil
}

type stubStats struct{}

func (stubStats) Totals(domain.Context) (domain.Totals, error) {
	return domain.Totals{Resumes: 3, Jobs: 2, Matches: 5}, nil
}

func (stubStats) MatchesPerCandidate(domain.Context) ([]domain.CandidateMatchCount, error) {
	return []domain.CandidateMatchCount{{UserID: 7, Name: "Cand", MatchCount: 5}}, nil
}

func (stubStats) MostAppliedJobs(_ domain.Context, limit int) ([]domain.JobApplicationCount, error) {
	if limit < 0 {
		return nil, domain.ErrInvalidArgument
	}
	return []domain.JobApplicationCount{{JobID: 10, Title: "Backend", Applications: 4}}, nil
}

type stubTrainings struct{}

func (stubTrainings) RecommendForJob(_ domain.Context, _, jobID int64) (usecase.TrainingPlan, error) {
	if jobID != 10 {
		return usecase.TrainingPlan{}, domain.ErrNotFound
	}
	return usecase.TrainingPlan{JobTitle: "Backend", SkillGap: []string{"docker"}, Trainings: []string{"Docker Mastery"}}, nil
}

type stubReports struct{}

func (stubReports) ExportPDF(domain.Context, int64, int64) ([]byte, error) {
	return []byte("%PDF-1.4 fake"), nil
}

// fixture bundles a Server with its stubs. Tokens "cand" and "admin"
// authenticate as the candidate and admin users.
type fixture struct {
	srv     *Server
	auth    *mockAuth
	resumes *stubResumes
	jobs    *stubJobs
	matches *stubMatches
	rank    *stubRank
}

func newFixture() *fixture {
	auth := &mockAuth{}
	auth.On("Authenticate", mock.Anything, "cand").Return(candidate, nil).Maybe()
	auth.On("Authenticate", mock.Anything, "admin").Return(admin, nil).Maybe()
	auth.On("Authenticate", mock.Anything, mock.Anything).Return(domain.User{}, domain.ErrUnauthorized).Maybe()
	f := &fixture{
		auth: auth,
		resumes: &stubResumes{resumes: map[int64]domain.Resume{
			1: {ID: 1, UserID: candidate.ID, Filename: "cv.pdf", Content: "go sql"},
			2: {ID: 2, UserID: 42, Filename: "other.pdf", Content: "java"},
		}},
		jobs:    &stubJobs{},
		matches: &stubMatches{},
		rank:    &stubRank{},
	}
	f.srv = NewServer(Options{
		MaxUploadBytes: 1 << 10,
		Auth:           f.auth,
		Resumes:        f.resumes,
		Jobs:           f.jobs,
		Matches:        f.matches,
		Rank:           f.rank,
		Stats:          stubStats{},
		Trainings:      stubTrainings{},
		Reports:        stubReports{},
	})
	return f
}

// route serves req through a chi router that registers h at pattern behind
// RequireAuth, so URL params and the current user resolve as in production.
func (f *fixture) route(method, pattern string, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.With(f.srv.RequireAuth).Method(method, pattern, h)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func authed(method, target, token string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[errorEnvelope](t, rec).Error.Code
}
