package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"github.com/dharsanguruparan/designexport/internal/app"
	"github.com/dharsanguruparan/designexport/internal/config"
	"github.com/dharsanguruparan/designexport/internal/logging"
	"github.com/dharsanguruparan/designexport/internal/queue"
	"github.com/dharsanguruparan/designexport/internal/worker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Load config")
	}
	logging.Init(cfg.LogLevel)

	if cfg.RedisAddr == "" {
		log.Fatal().Msg("DESIGNEXPORT_REDIS_ADDR is required for the worker")
	}
	if cfg.Backend != config.BackendS3 {
		// Memory stores are per process; the API would never see the results.
		log.Fatal().Str("backend", string(cfg.Backend)).Msg("Worker requires DESIGNEXPORT_BACKEND=s3")
	}

	rt, err := app.Build(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Build export service")
	}
	defer rt.Close()

	server := asynq.NewServer(app.RedisOpt(cfg), asynq.Config{
		Concurrency: cfg.ProcessingPool,
		Queues:      map[string]int{queue.Queue: 1},
		Logger:      asynqLogger{},
	})
	processor := worker.NewProcessor(rt.Service)
	mux := processor.Handler()

	go func() {
		<-ctx.Done()
		server.Shutdown()
	}()

	log.Info().Int("concurrency", cfg.ProcessingPool).Msg("Worker started")
	if err := server.Run(mux); err != nil {
		log.Error().Err(err).Msg("Worker stopped")
		rt.Close()
		os.Exit(1)
	}
}
