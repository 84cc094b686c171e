package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/smart-resume-matcher/internal/config"
	"github.com/fairyhunter13/smart-resume-matcher/internal/domain"
	"github.com/fairyhunter13/smart-resume-matcher/internal/usecase"
)

type memJobs struct {
	jobs []domain.Job
	fail error
}

func (m *memJobs) List(domain.Context, domain.JobFilter) ([]domain.Job, error) { return m.jobs, nil }

func (m *memJobs) Create(_ domain.Context, in usecase.JobInput) (domain.Job, error) {
	if m.fail != nil {
		return domain.Job{}, m.fail
	}
	j := domain.Job{ID: int64(len(m.jobs) + 1), Title: in.Title, RequiredSkills: in.RequiredSkills}
	m.jobs = append(m.jobs, j)
	return j, nil
}

type recordingAdmin struct{ got []domain.SeedAdmin }

func (r *recordingAdmin) EnsureSeedData(_ domain.Context, a domain.SeedAdmin) error {
	r.got = append(r.got, a)
	return nil
}

func TestSeedJobs_SkipsExistingTitles(t *testing.T) {
	jobs := &memJobs{jobs: []domain.Job{{ID: 1, Title: "Backend Engineer"}}}
	seeds := []config.SeedJob{
		{Title: "backend engineer", RequiredSkills: "go"},
		{Title: "Data Analyst", RequiredSkills: "sql, excel"},
		{Title: "Data Analyst", RequiredSkills: "duplicate in file"},
	}
	n, err := SeedJobs(context.Background(), jobs, seeds)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, jobs.jobs, 2)
	assert.Equal(t, "sql, excel", jobs.jobs[1].RequiredSkills)

	n, err = SeedJobs(context.Background(), jobs, seeds)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSeedJobs_PropagatesCreateError(t *testing.T) {
	jobs := &memJobs{fail: domain.ErrInvalidArgument}
	_, err := SeedJobs(context.Background(), jobs, []config.SeedJob{{Title: "X"}})
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
}

func TestSeed_AdminAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("jobs:\n  - title: Backend\n    required_skills: go, sql\n"), 0o600))
	cfg := config.Config{AdminName: "Root", AdminEmail: "root@example.com", AdminPassword: "secret12", SeedJobsFile: path}

	admins := &recordingAdmin{}
	jobs := &memJobs{}
	require.NoError(t, Seed(context.Background(), cfg, admins, jobs))
	require.Len(t, admins.got, 1)
	assert.Equal(t, "root@example.com", admins.got[0].Email)
	require.Len(t, jobs.jobs, 1)
	assert.Equal(t, "Backend", jobs.jobs[0].Title)

	cfg.SeedJobsFile = filepath.Join(t.TempDir(), "missing.yaml")
	assert.Error(t, Seed(context.Background(), cfg, admins, jobs))
}
