package main

import (
	"github.com/spf13/cobra"

	"github.com/fairyhunter13/smart-resume-matcher/internal/adapter/auth"
	"github.com/fairyhunter13/smart-resume-matcher/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/smart-resume-matcher/internal/app"
	"github.com/fairyhunter13/smart-resume-matcher/internal/config"
	"github.com/fairyhunter13/smart-resume-matcher/internal/matching"
	"github.com/fairyhunter13/smart-resume-matcher/internal/usecase"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the admin account and seed jobs",
	Long:  "Migrates the database, creates the ADMIN_EMAIL account when missing and loads the jobs of SEED_JOBS_FILE (or --file) whose titles are not taken yet.",
	RunE:  runSeed,
}

var seedFile string

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "YAML job seed file; overrides SEED_JOBS_FILE")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	if seedFile != "" {
		cfg.SeedJobsFile = seedFile
	}
	ctx := cmd.Context()
	pool, err := postgres.NewPool(ctx, cfg.DBURL)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		return err
	}

	hasher, err := auth.NewBcryptHasher(cfg.BcryptCost)
	if err != nil {
		return err
	}
	tokens, err := auth.NewJWTService(cfg.JWTSecret, cfg.JWTTTL())
	if err != nil {
		return err
	}
	authSvc := usecase.NewAuthService(postgres.NewUserRepo(pool), hasher, tokens)
	jobSvc := usecase.NewJobService(postgres.NewJobRepo(pool), postgres.NewResumeRepo(pool), matching.NewLexicalScorer())
	return app.Seed(ctx, cfg, authSvc, jobSvc)
}
