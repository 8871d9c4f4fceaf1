package imaging

import (
	"fmt"
	"image"
	"math"

	"golang.org/x/image/draw"

	"github.com/dharsanguruparan/designexport/internal/model"
)

// Rasterize draws src, or the crop of it, onto a new RGBA surface of exactly
// dims using Catmull-Rom resampling. The caller owns the returned surface.
//
// A crop reaching past the source edges is clamped to the source bounds; a
// crop that does not overlap the source at all is rejected.
func Rasterize(src image.Image, crop *model.CropArea, dims Dimensions, maxPixels int) (*image.RGBA, error) {
	if dims.Width <= 0 || dims.Height <= 0 {
		return nil, fmt.Errorf("%w: invalid target size %dx%d", ErrSurfaceAllocation, dims.Width, dims.Height)
	}
	if maxPixels > 0 && dims.Width*dims.Height > maxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrSurfaceAllocation, dims.Width, dims.Height, maxPixels)
	}

	srcRect := src.Bounds()
	if crop != nil {
		r, err := cropRect(srcRect, *crop)
		if err != nil {
			return nil, err
		}
		srcRect = r
	}

	dst := image.NewRGBA(image.Rect(0, 0, dims.Width, dims.Height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, srcRect, draw.Src, nil)
	return dst, nil
}

// cropRect converts a crop in source-pixel coordinates into an image
// rectangle relative to bounds.Min and clamps it to bounds.
func cropRect(bounds image.Rectangle, crop model.CropArea) (image.Rectangle, error) {
	if !crop.Valid() {
		return image.Rectangle{}, fmt.Errorf("%w: %+v", ErrInvalidCropArea, crop)
	}
	r := image.Rect(
		bounds.Min.X+int(math.Floor(crop.X)),
		bounds.Min.Y+int(math.Floor(crop.Y)),
		bounds.Min.X+int(math.Ceil(crop.X+crop.Width)),
		bounds.Min.Y+int(math.Ceil(crop.Y+crop.Height)),
	).Intersect(bounds)
	if r.Empty() {
		return image.Rectangle{}, fmt.Errorf("%w: crop %+v lies outside %dx%d source",
			ErrInvalidCropArea, crop, bounds.Dx(), bounds.Dy())
	}
	return r, nil
}
