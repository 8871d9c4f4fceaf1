package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharsanguruparan/designexport/internal/model"
)

func TestRasterizeWholeImage(t *testing.T) {
	src := gradient(80, 60)
	surface, err := Rasterize(src, nil, Dimensions{160, 120}, 0)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 160, 120), surface.Bounds())
}

func TestRasterizeCropSamplesOnlyTheRegion(t *testing.T) {
	// left half red, right half blue
	src := image.NewRGBA(image.Rect(0, 0, 100, 50))
	for y := 0; y < 50; y++ {
		for x := 0; x < 100; x++ {
			c := color.RGBA{R: 0xff, A: 0xff}
			if x >= 50 {
				c = color.RGBA{B: 0xff, A: 0xff}
			}
			src.Set(x, y, c)
		}
	}
	crop := &model.CropArea{X: 60, Y: 10, Width: 30, Height: 30}
	surface, err := Rasterize(src, crop, Dimensions{60, 60}, 0)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 60, 60), surface.Bounds())
	for _, p := range []image.Point{{0, 0}, {30, 30}, {59, 59}} {
		got := surface.RGBAAt(p.X, p.Y)
		assert.Less(t, got.R, uint8(0x10), "pixel %v should come from the blue half", p)
		assert.Greater(t, got.B, uint8(0xf0))
	}
}

func TestRasterizeClampsCropToSource(t *testing.T) {
	src := gradient(50, 50)
	crop := &model.CropArea{X: 40, Y: 40, Width: 100, Height: 100}
	surface, err := Rasterize(src, crop, Dimensions{20, 20}, 0)
	require.NoError(t, err)
	assert.Equal(t, 20, surface.Bounds().Dx())
}

func TestRasterizeRejectsCropOutsideSource(t *testing.T) {
	src := gradient(50, 50)
	_, err := Rasterize(src, &model.CropArea{X: 60, Y: 0, Width: 10, Height: 10}, Dimensions{10, 10}, 0)
	assert.ErrorIs(t, err, ErrInvalidCropArea)

	_, err = Rasterize(src, &model.CropArea{X: 0, Y: 0, Width: 0, Height: 10}, Dimensions{10, 10}, 0)
	assert.ErrorIs(t, err, ErrInvalidCropArea)
}

func TestRasterizeSurfaceLimits(t *testing.T) {
	src := gradient(10, 10)
	_, err := Rasterize(src, nil, Dimensions{0, 10}, 0)
	assert.ErrorIs(t, err, ErrSurfaceAllocation)

	_, err = Rasterize(src, nil, Dimensions{1000, 1000}, 999_999)
	assert.ErrorIs(t, err, ErrSurfaceAllocation)
}
