// Command server starts the smart resume matcher HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/smart-resume-matcher/internal/adapter/ai/groq"
	"github.com/fairyhunter13/smart-resume-matcher/internal/adapter/auth"
	httpserver "github.com/fairyhunter13/smart-resume-matcher/internal/adapter/httpserver"
	"github.com/fairyhunter13/smart-resume-matcher/internal/adapter/observability"
	"github.com/fairyhunter13/smart-resume-matcher/internal/adapter/queue/redpanda"
	"github.com/fairyhunter13/smart-resume-matcher/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/smart-resume-matcher/internal/adapter/report/htmlpdf"
	localstore "github.com/fairyhunter13/smart-resume-matcher/internal/adapter/storage/local"
	s3store "github.com/fairyhunter13/smart-resume-matcher/internal/adapter/storage/s3"
	"github.com/fairyhunter13/smart-resume-matcher/internal/adapter/textextractor/local"
	"github.com/fairyhunter13/smart-resume-matcher/internal/app"
	"github.com/fairyhunter13/smart-resume-matcher/internal/config"
	"github.com/fairyhunter13/smart-resume-matcher/internal/domain"
	"github.com/fairyhunter13/smart-resume-matcher/internal/matching"
	"github.com/fairyhunter13/smart-resume-matcher/internal/service/ratelimiter"
	"github.com/fairyhunter13/smart-resume-matcher/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)
	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DBURL)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		return err
	}

	users := postgres.NewUserRepo(pool)
	resumes := postgres.NewResumeRepo(pool)
	jobs := postgres.NewJobRepo(pool)
	matches := postgres.NewMatchRepo(pool)
	stats := postgres.NewStatsRepo(pool)

	if cfg.DataRetentionDays > 0 {
		cleanupSvc := postgres.NewCleanupService(pool, cfg.DataRetentionDays)
		go cleanupSvc.RunPeriodic(ctx, cfg.CleanupInterval)
		slog.Info("cleanup service started", slog.Int("retention_days", cfg.DataRetentionDays), slog.Duration("interval", cfg.CleanupInterval))
	}

	files, err := newFileStore(ctx, cfg)
	if err != nil {
		return err
	}

	var summarizer domain.Summarizer
	if cfg.SummarizerEnabled() {
		summarizer = groq.New(cfg)
		slog.Info("resume summarizer enabled", slog.String("model", cfg.GroqModel))
	}

	var events domain.MatchEventPublisher = redpanda.NoopPublisher{}
	if cfg.EventsEnabled() {
		producer, err := redpanda.NewMatchEventProducer(ctx, cfg.KafkaBrokers, cfg.MatchEventsTopic)
		if err != nil {
			return err
		}
		defer producer.Close()
		events = producer
	}

	var (
		rdb     redis.UniversalClient
		limiter ratelimiter.Limiter
	)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		defer func() { _ = client.Close() }()
		rdb = client
		limiter = ratelimiter.NewTokenBucketLimiter(client, map[string]ratelimiter.Bucket{
			app.MatchScope: ratelimiter.PerMinute(cfg.MatchRatePerMin),
		})
	}

	hasher, err := auth.NewBcryptHasher(cfg.BcryptCost)
	if err != nil {
		return err
	}
	tokens, err := auth.NewJWTService(cfg.JWTSecret, cfg.JWTTTL())
	if err != nil {
		return err
	}

	scorer := matching.NewLexicalScorer()
	authSvc := usecase.NewAuthService(users, hasher, tokens)
	jobSvc := usecase.NewJobService(jobs, resumes, scorer)

	if err := app.Seed(ctx, cfg, authSvc, jobSvc); err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	dbCheck, redisCheck := app.BuildReadinessChecks(pool, rdb)
	srv := httpserver.NewServer(httpserver.Options{
		MaxUploadBytes: cfg.MaxUploadBytes(),
		Auth:           authSvc,
		Resumes:        usecase.NewResumeService(resumes, files, local.New(), summarizer, cfg.MaxUploadBytes()),
		Jobs:           jobSvc,
		Matches:        usecase.NewMatchService(resumes, jobs, matches, scorer, events),
		Rank:           usecase.NewRankService(resumes, jobs, matches, scorer),
		Stats:          usecase.NewStatsService(resumes, jobs, matches, stats),
		Trainings:      usecase.NewTrainingService(resumes, jobs),
		Reports:        usecase.NewReportService(resumes, jobs, scorer, htmlpdf.New(cfg.ChromePath, cfg.ReportTimeout)),
		Limiter:        limiter,
		DBCheck:        dbCheck,
		RedisCheck:     redisCheck,
	})

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           app.BuildRouter(cfg, srv),
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port), slog.String("env", cfg.AppEnv))
		errCh <- srvHTTP.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	return srvHTTP.Shutdown(shutdownCtx)
}

func newFileStore(ctx context.Context, cfg config.Config) (domain.FileStore, error) {
	switch cfg.StorageBackend {
	case "s3":
		return s3store.NewFromOptions(ctx, s3store.Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	case "", "local":
		return localstore.New(cfg.UploadDir)
	}
	return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
}
