package imaging

import "errors"

var (
	// ErrImageLoad covers fetch and decode failures of the source image.
	ErrImageLoad = errors.New("image load failed")
	// ErrSurfaceAllocation is returned when a target surface cannot be created.
	ErrSurfaceAllocation = errors.New("surface allocation failed")
	// ErrEncoding is returned when an encoder fails or produces no data.
	ErrEncoding = errors.New("encoding failed")
	// ErrInvalidCropArea is returned for malformed crops and crops that miss
	// the source entirely.
	ErrInvalidCropArea = errors.New("invalid crop area")
)
