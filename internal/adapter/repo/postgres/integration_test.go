//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/fairyhunter13/smart-resume-matcher/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/smart-resume-matcher/internal/domain"
)

const pgPort nat.Port = "5432/tcp"

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{string(pgPort)},
		HostConfigModifier: func(hc *container.HostConfig) {
			hc.Tmpfs = map[string]string{"/var/lib/postgresql/data": "rw"}
		},
		Env: map[string]string{
			"POSTGRES_USER":     "matcher",
			"POSTGRES_PASSWORD": "matcher",
			"POSTGRES_DB":       "matcher",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).WithStartupTimeout(90 * time.Second),
	}
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(ctx) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, pgPort)
	require.NoError(t, err)
	return fmt.Sprintf("postgres://matcher:matcher@%s:%s/matcher?sslmode=disable", host, port.Port())
}

func TestIntegration_MatchLifecycle(t *testing.T) {
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, startPostgres(t))
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, postgres.Migrate(ctx, pool))
	require.NoError(t, postgres.Migrate(ctx, pool), "migrations are idempotent")

	users := postgres.NewUserRepo(pool)
	resumes := postgres.NewResumeRepo(pool)
	jobs := postgres.NewJobRepo(pool)
	matches := postgres.NewMatchRepo(pool)
	stats := postgres.NewStatsRepo(pool)

	uid, err := users.Create(ctx, domain.User{Name: "Ann", Email: "ann@example.com", PasswordHash: "x"})
	require.NoError(t, err)
	_, err = users.Create(ctx, domain.User{Name: "Ann2", Email: "ANN@example.com", PasswordHash: "x"})
	require.ErrorIs(t, err, domain.ErrConflict)

	rid, err := resumes.Create(ctx, domain.Resume{UserID: uid, Content: "python sql communication", Skills: "python, sql"})
	require.NoError(t, err)

	var jobIDs []int64
	for i, score := range []float64{0.9, 0.7, 0.5, 0.3, 0.1} {
		jid, err := jobs.Create(ctx, domain.Job{Title: fmt.Sprintf("Job %d", i), RequiredSkills: "python", Category: "IT"})
		require.NoError(t, err)
		jobIDs = append(jobIDs, jid)
		_, err = matches.Insert(ctx, domain.MatchRecord{ResumeID: rid, JobID: jid, Score: score}, uid)
		require.NoError(t, err)
	}

	page2, err := matches.Query(ctx, domain.MatchQuery{ResumeID: rid, Page: domain.PageRequest{Page: 2, Limit: 2}})
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.Equal(t, 0.5, page2[0].Score)
	assert.Equal(t, 0.3, page2[1].Score)

	// Concurrent first-time inserts for one pair: exactly one wins.
	jid, err := jobs.Create(ctx, domain.Job{Title: "Contended", RequiredSkills: "go"})
	require.NoError(t, err)
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins, conflicts := 0, 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := matches.Insert(ctx, domain.MatchRecord{ResumeID: rid, JobID: jid, Score: 0}, uid)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
			} else if assert.ErrorIs(t, err, domain.ErrConflict) {
				conflicts++
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
	assert.Equal(t, 7, conflicts)

	top, err := stats.MostAppliedJobs(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, top, 3)

	require.NoError(t, jobs.Delete(ctx, jobIDs[0]))
	n, err := matches.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n, "deleting a job cascades to its match")
}
