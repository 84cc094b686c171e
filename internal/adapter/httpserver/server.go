package httpserver

import (
	"context"

	"github.com/fairyhunter13/smart-resume-matcher/internal/domain"
	"github.com/fairyhunter13/smart-resume-matcher/internal/service/ratelimiter"
	"github.com/fairyhunter13/smart-resume-matcher/internal/usecase"
)

// The service interfaces below are the subsets of the usecase services the
// handlers call. The usecase value types satisfy them.

type AuthAPI interface {
	Register(ctx domain.Context, name, email, password string) (domain.User, error)
	Login(ctx domain.Context, email, password string, requireAdmin bool) (string, domain.User, error)
	Authenticate(ctx domain.Context, token string) (domain.User, error)
	ListUsers(ctx domain.Context, actor domain.User) ([]domain.User, error)
}

type ResumeAPI interface {
	Upload(ctx domain.Context, owner domain.User, filename string, data []byte, contentType string) (domain.Resume, error)
	Resummarize(ctx domain.Context, actor domain.User, id int64) (domain.Resume, error)
	Get(ctx domain.Context, actor domain.User, id int64) (domain.Resume, error)
	ListMine(ctx domain.Context, actor domain.User) ([]domain.Resume, error)
	ListAll(ctx domain.Context, actor domain.User) ([]domain.Resume, error)
	Search(ctx domain.Context, actor domain.User, skill string) ([]domain.Resume, error)
	UpdateSummary(ctx domain.Context, actor domain.User, id int64, summary, skills string) (domain.Resume, error)
	Delete(ctx domain.Context, actor domain.User, id int64) error
}

type JobAPI interface {
	Create(ctx domain.Context, in usecase.JobInput) (domain.Job, error)
	Get(ctx domain.Context, id int64) (domain.Job, error)
	List(ctx domain.Context, f domain.JobFilter) ([]domain.Job, error)
	Update(ctx domain.Context, id int64, in usecase.JobInput) (domain.Job, error)
	Delete(ctx domain.Context, id int64) error
	MatchForCandidate(ctx domain.Context, userID int64, f domain.JobFilter) ([]usecase.Recommendation, error)
}

type MatchAPI interface {
	Score(ctx domain.Context, in usecase.ScoreInput) (float64, error)
	Get(ctx domain.Context, resumeID, jobID int64) (domain.MatchRecord, error)
	GetOrCreate(ctx domain.Context, resumeID, jobID int64) (domain.MatchRecord, error)
}

type RankAPI interface {
	RankedByResume(ctx domain.Context, resumeID int64, f domain.JobFilter, page domain.PageRequest) ([]domain.MatchWithJob, error)
	History(ctx domain.Context, resumeID int64) ([]domain.MatchWithJob, error)
	MatchedJobs(ctx domain.Context, resumeID int64) ([]usecase.MatchedJob, error)
	RankedByUser(ctx domain.Context, userID int64) ([]domain.MatchRecord, error)
	Recommend(ctx domain.Context, resumeID int64, topN int, f domain.JobFilter) ([]usecase.Recommendation, error)
}

type StatsAPI interface {
	Totals(ctx domain.Context) (domain.Totals, error)
	MatchesPerCandidate(ctx domain.Context) ([]domain.CandidateMatchCount, error)
	MostAppliedJobs(ctx domain.Context, limit int) ([]domain.JobApplicationCount, error)
}

type TrainingAPI interface {
	RecommendForJob(ctx domain.Context, userID, jobID int64) (usecase.TrainingPlan, error)
}

type ReportAPI interface {
	ExportPDF(ctx domain.Context, userID, jobID int64) ([]byte, error)
}

// Server aggregates handler dependencies.
type Server struct {
	MaxUploadBytes int64

	Auth      AuthAPI
	Resumes   ResumeAPI
	Jobs      JobAPI
	Matches   MatchAPI
	Rank      RankAPI
	Stats     StatsAPI
	Trainings TrainingAPI
	Reports   ReportAPI

	// Limiter guards the compute-heavy match routes; nil disables it.
	Limiter ratelimiter.Limiter

	DBCheck    func(ctx context.Context) error
	RedisCheck func(ctx context.Context) error
}

// Options carries the collaborators of a Server.
type Options struct {
	MaxUploadBytes int64
	Auth           AuthAPI
	Resumes        ResumeAPI
	Jobs           JobAPI
	Matches        MatchAPI
	Rank           RankAPI
	Stats          StatsAPI
	Trainings      TrainingAPI
	Reports        ReportAPI
	Limiter        ratelimiter.Limiter
	DBCheck        func(ctx context.Context) error
	RedisCheck     func(ctx context.Context) error
}

// NewServer constructs an HTTP server with all handlers and checks wired.
func NewServer(o Options) *Server {
	maxBytes := o.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &Server{
		MaxUploadBytes: maxBytes,
		Auth:           o.Auth,
		Resumes:        o.Resumes,
		Jobs:           o.Jobs,
		Matches:        o.Matches,
		Rank:           o.Rank,
		Stats:          o.Stats,
		Trainings:      o.Trainings,
		Reports:        o.Reports,
		Limiter:        o.Limiter,
		DBCheck:        o.DBCheck,
		RedisCheck:     o.RedisCheck,
	}
}
