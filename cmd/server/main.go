// Package main runs the export HTTP API. Batches submitted with async:true go
// to Redis when DESIGNEXPORT_REDIS_ADDR is set and to an in-process worker
// pool otherwise.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/dharsanguruparan/designexport/internal/api"
	"github.com/dharsanguruparan/designexport/internal/app"
	"github.com/dharsanguruparan/designexport/internal/config"
	"github.com/dharsanguruparan/designexport/internal/logging"
	"github.com/dharsanguruparan/designexport/internal/processing"
	"github.com/dharsanguruparan/designexport/internal/queue"
	"github.com/dharsanguruparan/designexport/internal/signing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Load config")
	}
	logging.Init(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := app.Build(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Build export service")
	}
	defer rt.Close()

	var batches api.BatchQueue
	if cfg.RedisAddr != "" {
		client := queue.NewClient(app.RedisOpt(cfg))
		defer client.Close()
		batches = client
		log.Info().Str("redis", cfg.RedisAddr).Msg("Async batches go to the asynq queue")
	} else {
		runner := processing.New(rt.Service, cfg.ProcessingPool)
		runner.Start(ctx)
		batches = runner
		log.Info().Int("workers", cfg.ProcessingPool).Msg("Async batches run in process")
	}

	srv := api.New(cfg, rt.Service, batches, rt.Objects, signing.NewSigner(cfg.SigningSecret))
	if err := srv.Run(ctx); err != nil {
		log.Error().Err(err).Msg("Server stopped")
		rt.Close()
		os.Exit(1)
	}
}
