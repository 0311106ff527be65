package postprocess

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fill(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}

func TestDownsample(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 64, 32))
	blue := color.NRGBA{40, 60, 250, 255}
	fill(src, image.Rect(16, 0, 64, 32), blue)

	dst := Downsample(src, 32, 16)
	require.Equal(t, image.Rect(0, 0, 32, 16), dst.Bounds())

	assert.Zero(t, dst.NRGBAAt(1, 8).A)
	inner := dst.NRGBAAt(24, 8)
	assert.Equal(t, uint8(255), inner.A)
	assert.InDelta(t, 250, int(inner.B), 2)

	// edge pixels keep the surface color instead of darkening
	edge := dst.NRGBAAt(8, 8)
	if edge.A > 16 {
		assert.InDelta(t, 250, int(edge.B), 12)
		assert.InDelta(t, 40, int(edge.R), 12)
	}
}

func TestDownsampleNoop(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	assert.Same(t, src, Downsample(src, 16, 16))
	assert.Same(t, src, Downsample(src, 32, 32))
}
