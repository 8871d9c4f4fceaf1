package imaging

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestComputeDimensionsScaleOnly(t *testing.T) {
	cases := []struct {
		w, h  float64
		scale float64
		want  Dimensions
	}{
		{800, 600, 1, Dimensions{800, 600}},
		{800, 600, 2, Dimensions{1600, 1200}},
		{800, 600, 3, Dimensions{2400, 1800}},
		{333, 101, 0.5, Dimensions{167, 51}},
		{10.4, 10.6, 1, Dimensions{10, 11}},
	}
	for _, tc := range cases {
		got := ComputeDimensions(tc.w, tc.h, nil, nil, tc.scale)
		assert.Equal(t, tc.want, got, "source %vx%v scale %v", tc.w, tc.h, tc.scale)
		assert.Equal(t, int(math.Round(tc.w*tc.scale)), got.Width)
		assert.Equal(t, int(math.Round(tc.h*tc.scale)), got.Height)
	}
}

func TestComputeDimensionsDefaultsScale(t *testing.T) {
	assert.Equal(t, Dimensions{40, 30}, ComputeDimensions(40, 30, nil, nil, 0))
}

func TestComputeDimensionsFitWithin(t *testing.T) {
	cases := []struct {
		w, h   float64
		tw, th int
		scale  float64
	}{
		{800, 600, 400, 400, 1},
		{600, 800, 400, 400, 1},
		{1920, 1080, 300, 300, 2},
		{100, 50, 1000, 1000, 1},
		{1234, 567, 321, 123, 3},
	}
	for _, tc := range cases {
		got := ComputeDimensions(tc.w, tc.h, intPtr(tc.tw), intPtr(tc.th), tc.scale)
		assert.LessOrEqual(t, got.Width, tc.tw)
		assert.LessOrEqual(t, got.Height, tc.th)
		touches := got.Width == tc.tw || got.Height == tc.th
		assert.True(t, touches, "one axis should meet its target: %+v", got)
	}
}

func TestComputeDimensionsSingleTarget(t *testing.T) {
	assert.Equal(t, Dimensions{400, 300}, ComputeDimensions(800, 600, intPtr(400), nil, 1))
	assert.Equal(t, Dimensions{200, 150}, ComputeDimensions(800, 600, nil, intPtr(150), 1))
	// the ratio is taken against the scaled size
	assert.Equal(t, Dimensions{400, 300}, ComputeDimensions(800, 600, intPtr(400), nil, 2))
}

func TestComputeDimensionsDegenerate(t *testing.T) {
	assert.Equal(t, Dimensions{0, 0}, ComputeDimensions(0, 0, nil, nil, 2))
	assert.Equal(t, Dimensions{0, 0}, ComputeDimensions(0, 0, intPtr(10), intPtr(10), 1))
}
