package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ecosort/ecosort/config"
	"github.com/ecosort/ecosort/internal/classify"
	"github.com/ecosort/ecosort/internal/server"
	"github.com/ecosort/ecosort/internal/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	config.LoadEnvFile()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	// Create context that cancels on SIGINT or SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	gemini, err := classify.NewGeminiClassifier(ctx, cfg.GeminiAPIKey)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize gemini classifier")
	}
	log.Info().Msg("gemini classifier initialized")

	var classifier classify.Classifier = gemini
	if cfg.DBPath != "" {
		store, err := storage.NewSQLiteStore(cfg.DBPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize classification cache")
		}
		defer store.Close()
		classifier = classify.NewCachedClassifier(gemini, store)
		log.Info().Str("dbPath", cfg.DBPath).Msg("classification caching enabled")
	}

	srv := server.New(cfg, classifier)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(ctx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Error().Err(err).Msg("shutdown with error")
		os.Exit(1)
	}
	log.Info().Msg("shutdown complete")
}
