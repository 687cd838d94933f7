package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"calshop/internal/adapter/repo"
	"calshop/internal/domain"
	"calshop/internal/fulfillment"
	"calshop/internal/generation"
	"calshop/internal/http/handlers"
	httpapi "calshop/internal/http/httpapi"
	"calshop/internal/infra"
	"calshop/internal/payments"
	image "calshop/internal/providers/image"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	// Store selection: Postgres when configured, in-memory otherwise.
	var store domain.Store
	if cfg.DatabaseURL != "" {
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer pool.Close()
		pg := repo.NewPostgresStore(pool)
		if err := pg.Migrate(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to migrate schema")
		}
		store = pg
	} else {
		logger.Warn().Msg("DATABASE_URL not set, using in-memory store")
		store = repo.NewMemoryStore()
	}

	generator, err := image.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure image generator")
	}
	defer generator.Close()

	orchestrator := generation.New(store, generator, logger, generation.Options{
		CallTimeout: cfg.GenerationTimeout,
		UnitDelay:   cfg.GenerationDelay,
	})

	printify := fulfillment.NewPrintifyClient(fulfillment.PrintifyOptions{
		BaseURL:  cfg.PrintifyBaseURL,
		APIToken: cfg.PrintifyAPIToken,
		ShopID:   cfg.PrintifyShopID,
	})
	fulfiller := fulfillment.NewService(store, printify, logger)

	verifier := payments.NewVerifier(cfg.StripeWebhookSecret, payments.DefaultTolerance)

	app := handlers.NewApp(store, orchestrator, fulfiller, verifier, cfg, logger)
	router := httpapi.NewRouter(app)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
