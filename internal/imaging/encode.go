package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"

	"github.com/chai2010/webp"

	"github.com/dharsanguruparan/designexport/internal/model"
)

// Encoder serializes a surface into one export format.
type Encoder interface {
	Encode(surface image.Image, format model.Format, quality float64) ([]byte, error)
}

// StdEncoder is the production Encoder: image/png and image/jpeg from the
// standard library, lossy WebP through libwebp, and an SVG wrapper around a
// PNG payload.
type StdEncoder struct{}

// Encode implements Encoder. quality is in [0.1, 1.0] and ignored for PNG.
func (StdEncoder) Encode(surface image.Image, format model.Format, quality float64) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case model.FormatPNG:
		err = png.Encode(&buf, surface)
	case model.FormatJPG:
		err = jpeg.Encode(&buf, surface, &jpeg.Options{Quality: qualityPercent(quality)})
	case model.FormatWebP:
		err = webp.Encode(&buf, surface, &webp.Options{Quality: float32(qualityPercent(quality))})
	case model.FormatSVG:
		err = encodeSVG(&buf, surface)
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrEncoding, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrEncoding, format, err)
	}
	if buf.Len() == 0 {
		return nil, fmt.Errorf("%w: %s encoder produced no data", ErrEncoding, format)
	}
	return buf.Bytes(), nil
}

// encodeSVG embeds the raster as a PNG data URI. There is no vectorization;
// the document just carries the pixels at their native size.
func encodeSVG(buf *bytes.Buffer, surface image.Image) error {
	var raster bytes.Buffer
	if err := png.Encode(&raster, surface); err != nil {
		return err
	}
	b := surface.Bounds()
	fmt.Fprintf(buf,
		`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="%d" height="%d" viewBox="0 0 %d %d">`,
		b.Dx(), b.Dy(), b.Dx(), b.Dy())
	fmt.Fprintf(buf, `<image width="%d" height="%d" xlink:href="data:image/png;base64,`, b.Dx(), b.Dy())
	enc := base64.NewEncoder(base64.StdEncoding, buf)
	if _, err := enc.Write(raster.Bytes()); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	buf.WriteString(`"/></svg>`)
	return nil
}

func qualityPercent(q float64) int {
	p := int(math.Round(q * 100))
	if p < 1 {
		return 1
	}
	if p > 100 {
		return 100
	}
	return p
}
