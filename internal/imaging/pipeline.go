package imaging

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/rs/zerolog/log"

	"github.com/dharsanguruparan/designexport/internal/model"
)

// Options controls one render.
type Options struct {
	Format       model.Format
	Scale        float64
	Quality      float64
	Crop         *model.CropArea
	TargetWidth  *int
	TargetHeight *int
}

// withDefaults fills the zero values with the documented defaults.
func (o Options) withDefaults() Options {
	if o.Scale <= 0 {
		o.Scale = 1
	}
	if o.Quality <= 0 {
		o.Quality = model.DefaultQuality
	}
	return o
}

// Pipeline ties a Loader and an Encoder together. It holds no mutable state
// and is safe to share between goroutines.
type Pipeline struct {
	loader    Loader
	encoder   Encoder
	maxPixels int
}

// NewPipeline builds a Pipeline. maxPixels caps the area of any surface it
// allocates; zero disables the cap.
func NewPipeline(loader Loader, encoder Encoder, maxPixels int) *Pipeline {
	if encoder == nil {
		encoder = StdEncoder{}
	}
	return &Pipeline{loader: loader, encoder: encoder, maxPixels: maxPixels}
}

// Load fetches and decodes the source image.
func (p *Pipeline) Load(ctx context.Context, sourceURL string) (image.Image, error) {
	img, err := p.loader.Load(ctx, sourceURL)
	if err != nil {
		if !errors.Is(err, ErrImageLoad) {
			err = fmt.Errorf("%w: %v", ErrImageLoad, err)
		}
		return nil, fmt.Errorf("image processing failed: %w", err)
	}
	return img, nil
}

// Process loads sourceURL and renders it once.
func (p *Pipeline) Process(ctx context.Context, sourceURL string, opts Options) (*model.ProcessedImage, error) {
	src, err := p.Load(ctx, sourceURL)
	if err != nil {
		return nil, err
	}
	return p.Render(src, opts)
}

// Render rasterizes src at the requested scale (and crop) and encodes the
// surface. With a crop, the crop size rather than the source size is what
// gets scaled.
func (p *Pipeline) Render(src image.Image, opts Options) (*model.ProcessedImage, error) {
	opts = opts.withDefaults()

	srcW, srcH := float64(src.Bounds().Dx()), float64(src.Bounds().Dy())
	if opts.Crop != nil {
		srcW, srcH = opts.Crop.Width, opts.Crop.Height
	}
	dims := ComputeDimensions(srcW, srcH, opts.TargetWidth, opts.TargetHeight, opts.Scale)

	surface, err := Rasterize(src, opts.Crop, dims, p.maxPixels)
	if err != nil {
		return nil, fmt.Errorf("image processing failed: %w", err)
	}
	buf, err := p.encoder.Encode(surface, opts.Format, opts.Quality)
	if err == nil && len(buf) == 0 {
		err = fmt.Errorf("%w: %s encoder produced no data", ErrEncoding, opts.Format)
	}
	if err != nil {
		if !errors.Is(err, ErrEncoding) {
			err = fmt.Errorf("%w: %v", ErrEncoding, err)
		}
		return nil, fmt.Errorf("image processing failed: %w", err)
	}

	log.Debug().
		Str("format", string(opts.Format)).
		Float64("scale", opts.Scale).
		Float64("quality", opts.Quality).
		Int("width", dims.Width).
		Int("height", dims.Height).
		Int("size_bytes", len(buf)).
		Msg("Rendered export variant")

	return &model.ProcessedImage{
		Buffer:    buf,
		Width:     dims.Width,
		Height:    dims.Height,
		Format:    opts.Format,
		SizeBytes: len(buf),
		Quality:   opts.Quality,
		Scale:     opts.Scale,
	}, nil
}
