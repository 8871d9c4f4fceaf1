// Package imaging turns a source raster into encoded export variants: it
// computes target sizes, resamples onto fresh surfaces, encodes them and,
// when asked, searches for a variant that fits a byte budget.
package imaging

import "math"

// Dimensions is a pixel size.
type Dimensions struct {
	Width  int
	Height int
}

// ComputeDimensions scales the source size by scale and then, if target
// sizes are given, fits the result inside them while keeping the aspect
// ratio. Each axis is rounded on its own, so the output ratio may drift by
// up to half a pixel. It never fails; degenerate inputs give degenerate
// outputs.
func ComputeDimensions(srcWidth, srcHeight float64, targetWidth, targetHeight *int, scale float64) Dimensions {
	if scale <= 0 {
		scale = 1
	}
	width := srcWidth * scale
	height := srcHeight * scale

	switch {
	case targetWidth != nil && targetHeight != nil:
		ratio := math.Min(float64(*targetWidth)/width, float64(*targetHeight)/height)
		width *= ratio
		height *= ratio
	case targetWidth != nil:
		ratio := float64(*targetWidth) / width
		width = float64(*targetWidth)
		height *= ratio
	case targetHeight != nil:
		ratio := float64(*targetHeight) / height
		height = float64(*targetHeight)
		width *= ratio
	}

	return Dimensions{
		Width:  roundPixels(width),
		Height: roundPixels(height),
	}
}

// roundPixels rounds to the nearest pixel. NaN and infinities, which a
// zero-sized source produces once a ratio is applied, collapse to 0.
func roundPixels(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Round(v))
}
