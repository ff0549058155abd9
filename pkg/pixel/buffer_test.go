package pixel

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferPixel(t *testing.T) {
	b := NewBuffer(image.Rect(2, -1, 5, 1), 3)
	require.Len(t, b.Pix, 3*3*2)

	b.SetSamples(4, 0, 7, 8, 9)
	b.SetSamples(2, 0, 1, 2, 3)

	row := b.Pixel(2, 0)
	require.Len(t, row, 9)
	assert.Equal(t, []float32{1, 2, 3}, row[:3])
	assert.Equal(t, []float32{7, 8, 9}, row[6:9])

	assert.Equal(t, []float32{7, 8, 9}, b.Pixel(4, 0))
	assert.Nil(t, b.Pixel(5, 0))
	assert.Nil(t, b.Pixel(2, 1))
	assert.Equal(t, 3, b.Channels())
}

func TestBufferColor(t *testing.T) {
	b := NewBuffer(image.Rect(0, 0, 2, 1), 4)
	b.Set(1, 0, color.RGBA64{R: 0xffff, G: 0, B: 0x8000, A: 0xffff})

	s := b.Pixel(1, 0)
	assert.Equal(t, float32(1), s[0])
	assert.Equal(t, float32(0), s[1])
	assert.InDelta(t, 0.5, s[2], 1e-4)
	assert.Equal(t, float32(1), s[3])

	assert.Equal(t, color.RGBA64{R: 0xffff, B: 0x8000, A: 0xffff}, b.At(1, 0))

	// out of range samples are clamped
	b.SetSamples(0, 0, 4, -1, 0, 2)
	assert.Equal(t, color.RGBA64{R: 0xffff, A: 0xffff}, b.At(0, 0))
}

func TestBufferGrayAt(t *testing.T) {
	b := NewBuffer(image.Rect(0, 0, 1, 1), 1)
	b.SetSamples(0, 0, 1)
	assert.Equal(t, color.RGBA64{R: 0xffff, G: 0xffff, B: 0xffff, A: 0xffff}, b.At(0, 0))
}

func TestFromImage(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	src.Set(0, 0, color.NRGBA{R: 255, A: 255})
	src.Set(2, 1, color.NRGBA{B: 255, A: 255})

	b := FromImage(src)
	assert.Equal(t, src.Bounds(), b.Bounds())
	assert.Equal(t, 4, b.Channels())
	assert.Equal(t, []float32{1, 0, 0, 1}, b.Pixel(0, 0)[:4])
	assert.Equal(t, []float32{0, 0, 1, 1}, b.Pixel(2, 1))
	assert.Equal(t, []float32{0, 0, 0, 0}, b.Pixel(1, 0)[:4])
}
