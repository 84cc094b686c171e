// Package app assembles the HTTP router and readiness checks.
package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpserver "github.com/fairyhunter13/smart-resume-matcher/internal/adapter/httpserver"
	"github.com/fairyhunter13/smart-resume-matcher/internal/adapter/observability"
	"github.com/fairyhunter13/smart-resume-matcher/internal/config"
)

// MatchScope is the per-user limiter scope of the compute-heavy match routes.
const MatchScope = "match"

// ParseOrigins splits a comma-separated origin list into a slice, trimming spaces.
// If the input is empty, returns ["*"].
func ParseOrigins(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "*" {
		return []string{"*"}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// BuildRouter constructs the HTTP handler with all middlewares and routes.
func BuildRouter(cfg config.Config, srv *httpserver.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(httpserver.Recoverer())
	r.Use(httpserver.TraceMiddleware)
	r.Use(httpserver.RequestID())
	r.Use(httpserver.AccessLog())
	r.Use(observability.HTTPMetricsMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   ParseOrigins(cfg.CORSAllowOrigins),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id", "Retry-After", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health and metrics stay outside the request timeout and IP limiter.
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", srv.ReadyzHandler())
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(api chi.Router) {
		timeout := cfg.HTTPRequestTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		api.Use(httpserver.TimeoutMiddleware(timeout))
		if cfg.RateLimitPerMin > 0 {
			api.Use(httprate.LimitByIP(cfg.RateLimitPerMin, time.Minute))
		}

		api.Post("/auth/register", srv.RegisterHandler())
		api.Post("/auth/login", srv.LoginHandler())

		api.Group(func(authed chi.Router) {
			authed.Use(srv.RequireAuth)

			authed.Get("/auth/me", srv.MeHandler())
			authed.With(httpserver.RequireAdmin).Get("/auth/users", srv.ListUsersHandler())

			authed.Route("/resumes", func(rr chi.Router) {
				rr.Post("/upload", srv.UploadResumeHandler())
				rr.Get("/me", srv.MyResumesHandler())
				rr.Get("/search", srv.SearchResumesHandler())
				rr.With(httpserver.RequireAdmin).Get("/", srv.ListResumesHandler())
				rr.Get("/{id}", srv.GetResumeHandler())
				rr.Put("/{id}", srv.UpdateResumeHandler())
				rr.Delete("/{id}", srv.DeleteResumeHandler())
			})
			authed.Post("/resume-summary/{id}", srv.ResummarizeHandler())

			authed.Route("/jobs", func(jr chi.Router) {
				jr.Get("/", srv.ListJobsHandler())
				jr.Get("/match", srv.MatchJobsHandler())
				jr.Get("/{id}", srv.GetJobHandler())
				jr.Group(func(admin chi.Router) {
					admin.Use(httpserver.RequireAdmin)
					admin.Post("/", srv.CreateJobHandler())
					admin.Put("/{id}", srv.UpdateJobHandler())
					admin.Delete("/{id}", srv.DeleteJobHandler())
				})
			})

			authed.Route("/match", func(mr chi.Router) {
				limited := mr.With(srv.RateLimit(MatchScope))
				limited.Post("/text", srv.MatchTextHandler())
				limited.Post("/resume", srv.MatchResumeHandler())
				limited.Get("/recommend/{resume_id}", srv.RecommendHandler())
				mr.Get("/result/{resume_id}/{job_id}", srv.MatchResultHandler())
				mr.Get("/ranked/{resume_id}", srv.RankedHandler())
				mr.Get("/by-user/{user_id}", srv.ByUserHandler())
				mr.Get("/history/{resume_id}", srv.HistoryHandler())
				mr.Get("/history/detail/{resume_id}", srv.HistoryDetailHandler())
				mr.Get("/statistics", srv.MatchStatisticsHandler())
				mr.Get("/resume/{resume_id}/matched-jobs", srv.MatchedJobsHandler())
			})

			authed.Route("/stats", func(sr chi.Router) {
				sr.Use(httpserver.RequireAdmin)
				sr.Get("/totals", srv.TotalsHandler())
				sr.Get("/matches-per-candidate", srv.MatchesPerCandidateHandler())
				sr.Get("/most-applied-jobs", srv.MostAppliedJobsHandler())
			})

			authed.Get("/trainings/recommend/{job_id}", srv.TrainingsHandler())
			authed.Get("/export/pdf/{job_id}", srv.ExportPDFHandler())
		})
	})

	return httpserver.SecurityHeaders(r)
}
