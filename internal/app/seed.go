package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fairyhunter13/smart-resume-matcher/internal/config"
	"github.com/fairyhunter13/smart-resume-matcher/internal/domain"
	"github.com/fairyhunter13/smart-resume-matcher/internal/usecase"
)

// AdminSeeder creates the bootstrap administrator.
type AdminSeeder interface {
	EnsureSeedData(ctx domain.Context, admin domain.SeedAdmin) error
}

// JobSeeder lists and creates jobs.
type JobSeeder interface {
	List(ctx domain.Context, f domain.JobFilter) ([]domain.Job, error)
	Create(ctx domain.Context, in usecase.JobInput) (domain.Job, error)
}

// SeedJobs creates every seed job whose title is not already taken
// (case-insensitively) and returns how many were created.
func SeedJobs(ctx context.Context, jobs JobSeeder, seeds []config.SeedJob) (int, error) {
	existing, err := jobs.List(ctx, domain.JobFilter{})
	if err != nil {
		return 0, fmt.Errorf("op=app.seed_jobs: %w", err)
	}
	taken := make(map[string]struct{}, len(existing))
	for _, j := range existing {
		taken[strings.ToLower(strings.TrimSpace(j.Title))] = struct{}{}
	}
	created := 0
	for _, s := range seeds {
		key := strings.ToLower(s.Title)
		if _, ok := taken[key]; ok {
			continue
		}
		if _, err := jobs.Create(ctx, usecase.JobInput{
			Title:          s.Title,
			Description:    s.Description,
			RequiredSkills: s.RequiredSkills,
			Location:       s.Location,
			Category:       s.Category,
		}); err != nil {
			return created, fmt.Errorf("op=app.seed_jobs: %q: %w", s.Title, err)
		}
		taken[key] = struct{}{}
		created++
	}
	return created, nil
}

// Seed bootstraps the admin account and, when SEED_JOBS_FILE is set, the job
// catalog. Both steps are idempotent.
func Seed(ctx context.Context, cfg config.Config, admins AdminSeeder, jobs JobSeeder) error {
	if err := admins.EnsureSeedData(ctx, domain.SeedAdmin{
		Name:     cfg.AdminName,
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
	}); err != nil {
		return err
	}
	if cfg.SeedJobsFile == "" {
		return nil
	}
	seeds, err := config.LoadSeedJobs(cfg.SeedJobsFile)
	if err != nil {
		return err
	}
	n, err := SeedJobs(ctx, jobs, seeds)
	if err != nil {
		return err
	}
	slog.Info("seed jobs loaded", slog.String("file", cfg.SeedJobsFile), slog.Int("created", n), slog.Int("total", len(seeds)))
	return nil
}
