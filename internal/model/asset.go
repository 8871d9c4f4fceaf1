// Package model contains simple struct definitions shared across packages.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned by metadata stores when a row does not exist. Both
// the Postgres repository and the in-memory store wrap it so callers can use
// errors.Is regardless of backend.
var ErrNotFound = errors.New("record not found")

// Format is an export encoding. The string value doubles as the file
// extension used in object paths.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPG  Format = "jpg"
	FormatWebP Format = "webp"
	FormatSVG  Format = "svg"
)

// Formats lists every supported export format in a stable order.
var Formats = []Format{FormatPNG, FormatJPG, FormatWebP, FormatSVG}

// ParseFormat normalizes user input ("JPEG", "jpg", " png ") into a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPG, nil
	case "webp":
		return FormatWebP, nil
	case "svg":
		return FormatSVG, nil
	}
	return "", fmt.Errorf("unknown format %q", s)
}

// Valid reports whether f is one of the supported formats.
func (f Format) Valid() bool {
	for _, known := range Formats {
		if f == known {
			return true
		}
	}
	return false
}

// MIMEType returns the content type the encoder produces for f.
func (f Format) MIMEType() string {
	switch f {
	case FormatPNG:
		return "image/png"
	case FormatJPG:
		return "image/jpeg"
	case FormatWebP:
		return "image/webp"
	case FormatSVG:
		return "image/svg+xml"
	}
	return "application/octet-stream"
}

// Lossy reports whether quality affects the encoded output.
func (f Format) Lossy() bool {
	return f == FormatJPG || f == FormatWebP
}

// Scale is the user-selectable resolution multiplier.
type Scale int

const (
	Scale1x Scale = 1
	Scale2x Scale = 2
	Scale3x Scale = 3
)

// Valid reports whether s is 1, 2 or 3.
func (s Scale) Valid() bool {
	return s == Scale1x || s == Scale2x || s == Scale3x
}

// Quality bounds for the lossy encoders.
const (
	DefaultQuality = 0.9
	MinQuality     = 0.1
	MaxQuality     = 1.0
)

// CropArea is a rectangle in source-pixel coordinates.
type CropArea struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid checks the shape of the rectangle only; it is not compared against
// the source bounds here.
func (c CropArea) Valid() bool {
	return c.X >= 0 && c.Y >= 0 && c.Width > 0 && c.Height > 0
}

// ExportRequest describes one export. It is built per call and never stored.
type ExportRequest struct {
	DesignFileID   string    `json:"designFileId"`
	SourceImageURL string    `json:"sourceImageUrl"`
	Name           string    `json:"name"`
	Format         Format    `json:"format"`
	Scale          Scale     `json:"scale"`
	Quality        *float64  `json:"quality,omitempty"`
	CropArea       *CropArea `json:"cropArea,omitempty"`
	MaxSizeBytes   *int64    `json:"maxSizeBytes,omitempty"`
	CreatedBy      string    `json:"createdBy,omitempty"`
}

// ProcessedImage is the output of one rasterize+encode pass. Quality and
// Scale record the parameters that produced it, which differ from the
// request once the size optimizer has stepped down.
type ProcessedImage struct {
	Buffer    []byte  `json:"-"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	Format    Format  `json:"format"`
	SizeBytes int     `json:"sizeBytes"`
	Quality   float64 `json:"quality"`
	Scale     float64 `json:"scale"`
}

// ExportedAsset is the persisted metadata row for one exported binary.
type ExportedAsset struct {
	ID            string    `json:"id"`
	DesignFileID  string    `json:"designFileId"`
	ProjectID     string    `json:"projectId"`
	Name          string    `json:"name"`
	Format        Format    `json:"format"`
	Scale         Scale     `json:"scale"`
	Width         int       `json:"width"`
	Height        int       `json:"height"`
	FileSizeBytes int64     `json:"fileSizeBytes"`
	FileURL       string    `json:"fileUrl"`
	CreatedBy     string    `json:"createdBy"`
	CreatedAt     time.Time `json:"createdAt"`
}
