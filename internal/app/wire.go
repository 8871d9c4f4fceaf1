// Package app assembles the export service from configuration so that the
// server and worker binaries share one wiring.
package app

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"github.com/dharsanguruparan/designexport/internal/config"
	"github.com/dharsanguruparan/designexport/internal/database"
	"github.com/dharsanguruparan/designexport/internal/export"
	"github.com/dharsanguruparan/designexport/internal/imaging"
	"github.com/dharsanguruparan/designexport/internal/repository"
	"github.com/dharsanguruparan/designexport/internal/s3storage"
	"github.com/dharsanguruparan/designexport/internal/storage"
)

// Objects is what the binaries need from an object store beyond
// export.ObjectStore.
type Objects interface {
	export.ObjectStore
	Get(ctx context.Context, path string) ([]byte, string, error)
}

// Runtime is the assembled service plus the pieces the binaries expose.
type Runtime struct {
	Service *export.Service
	Objects Objects
	// Designs is set for the memory backend so callers can seed design files.
	Designs *storage.MemoryDesignFiles

	closers []func()
}

// Close releases database pools and similar resources.
func (r *Runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

// Build wires the service for cfg.Backend.
func Build(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	pipeline := imaging.NewPipeline(
		imaging.NewHTTPLoader(cfg.FetchTimeout, cfg.MaxSourceBytes),
		imaging.StdEncoder{},
		cfg.MaxSurfacePixel,
	)

	switch cfg.Backend {
	case config.BackendS3:
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		rt := &Runtime{closers: []func(){pool.Close}}
		if err := database.EnsureSchema(ctx, pool); err != nil {
			rt.Close()
			return nil, err
		}
		store, err := s3storage.New(cfg)
		if err != nil {
			rt.Close()
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			rt.Close()
			return nil, err
		}
		designs := repository.NewDesignFileRepository(pool)
		for id, project := range cfg.DesignFiles {
			if err := designs.Register(ctx, id, project); err != nil {
				rt.Close()
				return nil, err
			}
		}
		rt.Objects = store
		rt.Service = export.NewService(pipeline, store,
			repository.NewAssetRepository(pool), designs)
		log.Info().Str("bucket", cfg.S3Bucket).Msg("Using Postgres and S3 backend")
		return rt, nil

	default:
		objects := storage.NewMemoryObjectStore(cfg.PublicBaseURL)
		designs := storage.NewMemoryDesignFiles()
		for id, project := range cfg.DesignFiles {
			designs.Register(id, project)
		}
		log.Warn().Msg("Using in-memory backend, exports are lost on restart")
		return &Runtime{
			Service: export.NewService(pipeline, objects, storage.NewMemoryAssetStore(), designs),
			Objects: objects,
			Designs: designs,
		}, nil
	}
}

// RedisOpt returns the asynq connection options from cfg.
func RedisOpt(cfg *config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
}
