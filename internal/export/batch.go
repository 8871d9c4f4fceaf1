package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/dharsanguruparan/designexport/internal/model"
)

// Configurations returns formats x scales, format-major.
func Configurations(formats []model.Format, scales []model.Scale) []model.BatchExportConfig {
	out := make([]model.BatchExportConfig, 0, len(formats)*len(scales))
	for _, f := range formats {
		for _, s := range scales {
			out = append(out, model.BatchExportConfig{Format: f, Scale: s})
		}
	}
	return out
}

// BatchExport exports every format/scale combination one after another. A
// failing item is recorded in Failed and does not stop the batch; only an
// invalid request returns an error.
func (s *Service) BatchExport(ctx context.Context, req model.BatchRequest) (*model.BatchExportResult, error) {
	if err := ValidateBatch(req); err != nil {
		return nil, fmt.Errorf("batch export failed: %w", err)
	}

	result := &model.BatchExportResult{
		Successful: []model.ExportedAsset{},
		Failed:     []model.FailedExport{},
	}
	for _, cfg := range Configurations(req.Formats, req.Scales) {
		result.TotalProcessed++
		asset, err := s.ExportAsset(ctx, model.ExportRequest{
			DesignFileID:   req.DesignFileID,
			SourceImageURL: req.SourceImageURL,
			Name:           fmt.Sprintf("%s-%dx", req.BaseName, cfg.Scale),
			Format:         cfg.Format,
			Scale:          cfg.Scale,
			Quality:        req.Quality,
			CropArea:       req.CropArea,
			CreatedBy:      req.CreatedBy,
		})
		if err != nil {
			log.Warn().Err(err).
				Str("design_file_id", req.DesignFileID).
				Str("format", string(cfg.Format)).
				Int("scale", int(cfg.Scale)).
				Msg("Batch item failed")
			result.Failed = append(result.Failed, model.FailedExport{Config: cfg, ErrorMessage: err.Error()})
			result.TotalFailed++
			continue
		}
		result.Successful = append(result.Successful, *asset)
		result.TotalSuccessful++
	}

	log.Info().
		Str("design_file_id", req.DesignFileID).
		Int("processed", result.TotalProcessed).
		Int("successful", result.TotalSuccessful).
		Int("failed", result.TotalFailed).
		Msg("Batch export finished")
	return result, nil
}

// ValidateBatch checks the request-level fields of a batch.
func ValidateBatch(req model.BatchRequest) error {
	switch {
	case strings.TrimSpace(req.DesignFileID) == "":
		return fmt.Errorf("%w: design file id is required", ErrInvalidRequest)
	case strings.TrimSpace(req.SourceImageURL) == "":
		return fmt.Errorf("%w: source image url is required", ErrInvalidRequest)
	case strings.TrimSpace(req.BaseName) == "":
		return fmt.Errorf("%w: base name is required", ErrInvalidRequest)
	case len(req.Formats) == 0:
		return fmt.Errorf("%w: at least one format is required", ErrInvalidFormat)
	case len(req.Scales) == 0:
		return fmt.Errorf("%w: at least one scale is required", ErrInvalidScale)
	}
	for _, f := range req.Formats {
		if !f.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidFormat, f)
		}
	}
	for _, sc := range req.Scales {
		if !sc.Valid() {
			return fmt.Errorf("%w: %d", ErrInvalidScale, sc)
		}
	}
	return validateShared(req.Quality, req.CropArea)
}
