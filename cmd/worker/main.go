// Command worker resumes calendar generation for projects whose batch pass
// died mid-flight, e.g. when the API process restarted. It requires the
// Postgres store.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"calshop/internal/adapter/repo"
	"calshop/internal/generation"
	"calshop/internal/infra"
	image "calshop/internal/providers/image"
)

// staleAfter is how long a project may sit in processing with unfinished
// months before the worker reclaims it.
const staleAfter = 15 * time.Minute

const claimLimit = 5

type batchWorker struct {
	store        *repo.PostgresStore
	orchestrator *generation.Orchestrator
	logger       infra.Logger
	pollEvery    time.Duration
}

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	if cfg.DatabaseURL == "" {
		logger.Fatal().Msg("worker: DATABASE_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	store := repo.NewPostgresStore(pool)
	if err := store.Migrate(ctx); err != nil {
		logger.Fatal().Err(err).Msg("worker: migrate failed")
	}

	generator, err := image.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure image generator")
	}
	defer generator.Close()

	worker := &batchWorker{
		store: store,
		orchestrator: generation.New(store, generator, logger, generation.Options{
			CallTimeout: cfg.GenerationTimeout,
			UnitDelay:   cfg.GenerationDelay,
		}),
		logger:    logger,
		pollEvery: cfg.WorkerPollEvery,
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker: stopped with error")
	}
	logger.Info().Msg("worker: stopped")
}

func (w *batchWorker) Run(ctx context.Context) error {
	w.logger.Info().Msg("worker: started")
	ticker := time.NewTicker(w.pollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		tokens, err := w.store.StaleProcessingProjects(ctx, time.Now().Add(-staleAfter), claimLimit)
		if err != nil {
			w.logger.Error().Err(err).Msg("worker: failed to scan for stale projects")
			continue
		}
		for _, token := range tokens {
			w.logger.Info().Str("project", token).Msg("worker: resuming batch")
			result, err := w.orchestrator.GenerateAll(ctx, token)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				w.logger.Error().Err(err).Str("project", token).Msg("worker: batch failed")
				continue
			}
			w.logger.Info().Str("project", token).Int("completed", result.Completed).
				Int("failed", result.Failed).Msg("worker: batch resumed")
		}
	}
}
