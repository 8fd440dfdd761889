package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fingenius-server/src/api"
	"fingenius-server/src/config"
	"fingenius-server/src/db"
	"fingenius-server/src/db/memory"
	sqlstore "fingenius-server/src/db/sql"
	"fingenius-server/src/insights"
	"fingenius-server/src/insights/ollama"
	"fingenius-server/src/insights/openai"
	"fingenius-server/src/logging"
	"fingenius-server/src/middleware"
	"fingenius-server/src/notify"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.DataBackend).Msg("store setup failed")
	}
	defer store.Close()

	cache, err := db.NewInsightCache(cfg.InsightCacheTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("insight cache setup failed")
	}
	defer cache.Close()

	insightSvc := insights.NewService(store, newGenerator(cfg), cache, cfg.InsightWindow)
	deriver := notify.NewDeriver(store, cfg.CurrencySymbol, cfg.Locale)
	auth := middleware.NewAuth(cfg.JWTSecret, cfg.TokenTTL)

	// Router
	router := api.NewRouter(store, auth, insightSvc, deriver, cfg.AllowedOrigins)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Insight generation can take a while.
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("backend", cfg.DataBackend).Str("ai_provider", cfg.AIProvider).Msg("API server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func openStore(ctx context.Context, cfg config.Config) (db.Store, error) {
	if cfg.DataBackend != "postgres" {
		return memory.New(), nil
	}

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return sqlstore.NewPostgresStore(pool), nil
}

func newGenerator(cfg config.Config) insights.Generator {
	switch cfg.AIProvider {
	case "openai":
		return openai.New(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)
	case "ollama":
		return ollama.New(cfg.OllamaURL, cfg.OllamaModel)
	default:
		return insights.Disabled{}
	}
}
