// Package api exposes the export service over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dharsanguruparan/designexport/internal/config"
	"github.com/dharsanguruparan/designexport/internal/model"
	"github.com/dharsanguruparan/designexport/internal/signing"
)

// Exporter is the export.Service surface the API calls.
type Exporter interface {
	ExportAsset(ctx context.Context, req model.ExportRequest) (*model.ExportedAsset, error)
	BatchExport(ctx context.Context, req model.BatchRequest) (*model.BatchExportResult, error)
	GetExportedAsset(ctx context.Context, id string) (*model.ExportedAsset, error)
	GetExportedAssets(ctx context.Context, designFileID string) ([]model.ExportedAsset, error)
	GetProjectAssets(ctx context.Context, projectID string) ([]model.ExportedAsset, error)
	DeleteExportedAsset(ctx context.Context, id string) error
}

// BatchQueue runs batches in the background. Both the in-process runner and
// the asynq client implement it.
type BatchQueue interface {
	Enqueue(ctx context.Context, req model.BatchRequest) (*model.BatchJob, error)
	Job(ctx context.Context, id string) (*model.BatchJob, error)
}

// ObjectReader reads stored objects back for downloads.
type ObjectReader interface {
	Get(ctx context.Context, path string) ([]byte, string, error)
	PathFromURL(fileURL string) (string, error)
}

// Presigner is implemented by object stores that can hand out their own
// signed URLs.
type Presigner interface {
	PresignURL(ctx context.Context, path string, ttl time.Duration) (string, error)
}

// Server exposes HTTP endpoints for exports and exported assets.
type Server struct {
	cfg      *config.Config
	exporter Exporter
	batches  BatchQueue
	objects  ObjectReader
	signer   *signing.Signer

	server  *http.Server
	handler http.Handler
	once    sync.Once
}

// New constructs a Server. batches may be nil, in which case async batch
// requests are refused.
func New(cfg *config.Config, exporter Exporter, batches BatchQueue, objects ObjectReader, signer *signing.Signer) *Server {
	return &Server{
		cfg:      cfg,
		exporter: exporter,
		batches:  batches,
		objects:  objects,
		signer:   signer,
	}
}

// Handler returns the fully wrapped router.
func (s *Server) Handler() http.Handler {
	s.once.Do(func() {
		s.handler = corsMiddleware(loggingMiddleware(s.routes()))
	})
	return s.handler
}

// Run starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()
	log.Info().Str("address", s.cfg.Address).Msg("API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /exports", s.handleExport)
	mux.HandleFunc("POST /exports/batch", s.handleBatch)
	mux.HandleFunc("GET /batches/{id}", s.handleBatchStatus)
	mux.HandleFunc("GET /design-files/{id}/assets", s.handleDesignFileAssets)
	mux.HandleFunc("GET /projects/{id}/assets", s.handleProjectAssets)
	mux.HandleFunc("GET /assets/{id}", s.handleAsset)
	mux.HandleFunc("DELETE /assets/{id}", s.handleDeleteAsset)
	mux.HandleFunc("GET /assets/{id}/signed-url", s.handleSignedURL)
	mux.HandleFunc("GET /download", s.handleDownload)
	mux.HandleFunc("GET /objects/{path...}", s.handleObject)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
