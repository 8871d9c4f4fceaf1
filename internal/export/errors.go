package export

import (
	"errors"

	"github.com/dharsanguruparan/designexport/internal/imaging"
)

// Input errors. They are returned before any side effect happens.
var (
	ErrInvalidRequest  = errors.New("invalid export request")
	ErrInvalidFormat   = errors.New("invalid format")
	ErrInvalidScale    = errors.New("invalid scale")
	ErrInvalidQuality  = errors.New("invalid quality")
	ErrInvalidCropArea = imaging.ErrInvalidCropArea
)

// Processing errors, re-exported so callers only need this package.
var (
	ErrImageLoad         = imaging.ErrImageLoad
	ErrSurfaceAllocation = imaging.ErrSurfaceAllocation
	ErrEncoding          = imaging.ErrEncoding
)

// Persistence and lookup errors.
var (
	ErrStorageUpload      = errors.New("storage upload failed")
	ErrStorageDelete      = errors.New("storage delete failed")
	ErrMetadataPersist    = errors.New("metadata persist failed")
	ErrRollback           = errors.New("rollback of uploaded object failed")
	ErrDesignFileNotFound = errors.New("design file not found")
	ErrAssetNotFound      = errors.New("asset not found")
)

// IsInputError reports whether err was caused by a malformed request.
func IsInputError(err error) bool {
	for _, target := range []error{ErrInvalidRequest, ErrInvalidFormat, ErrInvalidScale, ErrInvalidQuality, ErrInvalidCropArea} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err means a referenced design file or asset does
// not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrDesignFileNotFound) || errors.Is(err, ErrAssetNotFound)
}
