package export

import (
	"context"
	"image"

	"github.com/dharsanguruparan/designexport/internal/imaging"
	"github.com/dharsanguruparan/designexport/internal/model"
)

// ObjectStore holds exported binaries. Paths are namespaced by project id.
type ObjectStore interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) error
	PublicURL(path string) string
	Remove(ctx context.Context, paths ...string) error
	// PathFromURL reverses PublicURL.
	PathFromURL(fileURL string) (string, error)
}

// AssetStore persists ExportedAsset rows. Implementations return errors
// wrapping model.ErrNotFound for missing rows and list newest first.
type AssetStore interface {
	Insert(ctx context.Context, asset model.ExportedAsset) (*model.ExportedAsset, error)
	Get(ctx context.Context, id string) (*model.ExportedAsset, error)
	ListByDesignFile(ctx context.Context, designFileID string) ([]model.ExportedAsset, error)
	ListByProject(ctx context.Context, projectID string) ([]model.ExportedAsset, error)
	Delete(ctx context.Context, id string) error
}

// ProjectResolver finds the project that owns a design file.
type ProjectResolver interface {
	ProjectForDesignFile(ctx context.Context, designFileID string) (string, error)
}

// ImageProcessor is the rendering side of an export. *imaging.Pipeline
// implements it.
type ImageProcessor interface {
	Load(ctx context.Context, sourceURL string) (image.Image, error)
	Render(src image.Image, opts imaging.Options) (*model.ProcessedImage, error)
	Optimize(src image.Image, maxBytes int64, opts imaging.Options) (*model.ProcessedImage, error)
}
