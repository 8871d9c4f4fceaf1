// Package export coordinates asset exports: it validates requests, renders
// variants through the imaging pipeline, uploads the binary and records the
// metadata row, keeping the two in step.
package export

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dharsanguruparan/designexport/internal/imaging"
	"github.com/dharsanguruparan/designexport/internal/model"
)

// Service is the entry point for exports. It holds no per-request state, so
// one instance can serve concurrent callers.
type Service struct {
	images   ImageProcessor
	objects  ObjectStore
	assets   AssetStore
	projects ProjectResolver
	now      func() time.Time
}

// NewService wires a Service from its collaborators.
func NewService(images ImageProcessor, objects ObjectStore, assets AssetStore, projects ProjectResolver) *Service {
	return &Service{
		images:   images,
		objects:  objects,
		assets:   assets,
		projects: projects,
		now:      time.Now,
	}
}

// ExportAsset renders, uploads and records one export. If the metadata row
// cannot be written the uploaded object is removed before returning.
func (s *Service) ExportAsset(ctx context.Context, req model.ExportRequest) (*model.ExportedAsset, error) {
	asset, err := s.exportAsset(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("asset export failed: %w", err)
	}
	return asset, nil
}

func (s *Service) exportAsset(ctx context.Context, req model.ExportRequest) (*model.ExportedAsset, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	projectID, err := s.resolveProject(ctx, req.DesignFileID)
	if err != nil {
		return nil, err
	}

	processed, err := s.process(ctx, req)
	if err != nil {
		return nil, err
	}

	path := ObjectPath(projectID, req.Name, req.Scale, req.Format, s.now())
	if err := s.objects.Upload(ctx, path, processed.Buffer, req.Format.MIMEType()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUpload, err)
	}

	row := model.ExportedAsset{
		DesignFileID:  req.DesignFileID,
		ProjectID:     projectID,
		Name:          req.Name,
		Format:        req.Format,
		Scale:         req.Scale,
		Width:         processed.Width,
		Height:        processed.Height,
		FileSizeBytes: int64(processed.SizeBytes),
		FileURL:       s.objects.PublicURL(path),
		CreatedBy:     req.CreatedBy,
	}
	created, err := s.assets.Insert(ctx, row)
	if err != nil {
		return nil, s.rollbackUpload(ctx, path, fmt.Errorf("%w: %w", ErrMetadataPersist, err))
	}

	log.Info().
		Str("asset_id", created.ID).
		Str("design_file_id", created.DesignFileID).
		Str("path", path).
		Str("format", string(created.Format)).
		Int("scale", int(created.Scale)).
		Int64("size_bytes", created.FileSizeBytes).
		Msg("Asset exported")
	return created, nil
}

// rollbackUpload removes an object whose metadata row failed to persist. The
// removal runs even if ctx was cancelled meanwhile.
func (s *Service) rollbackUpload(ctx context.Context, path string, cause error) error {
	if err := s.objects.Remove(context.WithoutCancel(ctx), path); err != nil {
		log.Error().Err(err).Str("path", path).Msg("Rollback failed, object left without metadata")
		return fmt.Errorf("%w (%w: %s: %v)", cause, ErrRollback, path, err)
	}
	log.Warn().Err(cause).Str("path", path).Msg("Metadata insert failed, uploaded object removed")
	return cause
}

func (s *Service) resolveProject(ctx context.Context, designFileID string) (string, error) {
	projectID, err := s.projects.ProjectForDesignFile(ctx, designFileID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return "", fmt.Errorf("%w: %s", ErrDesignFileNotFound, designFileID)
		}
		return "", fmt.Errorf("resolve project: %w", err)
	}
	return projectID, nil
}

// process renders the request once and, when a size budget is set and the
// first render exceeds it, hands the already decoded source to the optimizer.
func (s *Service) process(ctx context.Context, req model.ExportRequest) (*model.ProcessedImage, error) {
	src, err := s.images.Load(ctx, req.SourceImageURL)
	if err != nil {
		return nil, err
	}
	opts := imaging.Options{
		Format:  req.Format,
		Scale:   float64(req.Scale),
		Quality: requestQuality(req.Quality),
		Crop:    req.CropArea,
	}
	res, err := s.images.Render(src, opts)
	if err != nil {
		return nil, err
	}
	if req.MaxSizeBytes != nil && int64(res.SizeBytes) > *req.MaxSizeBytes {
		log.Debug().
			Int("size_bytes", res.SizeBytes).
			Int64("max_bytes", *req.MaxSizeBytes).
			Msg("Initial render over budget, optimizing")
		return s.images.Optimize(src, *req.MaxSizeBytes, opts)
	}
	return res, nil
}

// GetExportedAsset returns one asset row.
func (s *Service) GetExportedAsset(ctx context.Context, id string) (*model.ExportedAsset, error) {
	asset, err := s.assets.Get(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, id)
		}
		return nil, err
	}
	return asset, nil
}

// GetExportedAssets lists the exports of a design file, newest first.
func (s *Service) GetExportedAssets(ctx context.Context, designFileID string) ([]model.ExportedAsset, error) {
	assets, err := s.assets.ListByDesignFile(ctx, designFileID)
	if err != nil {
		return nil, fmt.Errorf("list design file assets: %w", err)
	}
	newestFirst(assets)
	return assets, nil
}

// GetProjectAssets lists the exports of a project, newest first.
func (s *Service) GetProjectAssets(ctx context.Context, projectID string) ([]model.ExportedAsset, error) {
	assets, err := s.assets.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list project assets: %w", err)
	}
	newestFirst(assets)
	return assets, nil
}

// DeleteExportedAsset removes the stored object and then the metadata row.
// When the object cannot be removed the row is kept, so the asset stays
// visible and the delete can be retried.
func (s *Service) DeleteExportedAsset(ctx context.Context, id string) error {
	asset, err := s.GetExportedAsset(ctx, id)
	if err != nil {
		return err
	}
	path, err := s.objects.PathFromURL(asset.FileURL)
	if err != nil {
		return fmt.Errorf("delete asset %s: %w", id, err)
	}
	if err := s.objects.Remove(ctx, path); err != nil {
		return fmt.Errorf("delete asset %s: %w: %w", id, ErrStorageDelete, err)
	}
	if err := s.assets.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete asset %s: %w", id, err)
	}
	log.Info().Str("asset_id", id).Str("path", path).Msg("Asset deleted")
	return nil
}

// ValidateRequest checks a single export request.
func ValidateRequest(req model.ExportRequest) error {
	switch {
	case strings.TrimSpace(req.DesignFileID) == "":
		return fmt.Errorf("%w: design file id is required", ErrInvalidRequest)
	case strings.TrimSpace(req.SourceImageURL) == "":
		return fmt.Errorf("%w: source image url is required", ErrInvalidRequest)
	case strings.TrimSpace(req.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidRequest)
	}
	if !req.Format.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, req.Format)
	}
	if !req.Scale.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidScale, req.Scale)
	}
	if req.MaxSizeBytes != nil && *req.MaxSizeBytes <= 0 {
		return fmt.Errorf("%w: max size must be positive", ErrInvalidRequest)
	}
	return validateShared(req.Quality, req.CropArea)
}

func validateShared(quality *float64, crop *model.CropArea) error {
	if quality != nil && (*quality < model.MinQuality || *quality > model.MaxQuality) {
		return fmt.Errorf("%w: %v not in [%v, %v]", ErrInvalidQuality, *quality, model.MinQuality, model.MaxQuality)
	}
	if crop != nil && !crop.Valid() {
		return fmt.Errorf("%w: %+v", ErrInvalidCropArea, *crop)
	}
	return nil
}

func requestQuality(q *float64) float64 {
	if q == nil {
		return model.DefaultQuality
	}
	return *q
}

func newestFirst(assets []model.ExportedAsset) {
	sort.SliceStable(assets, func(i, j int) bool {
		return assets[i].CreatedAt.After(assets[j].CreatedAt)
	})
}
