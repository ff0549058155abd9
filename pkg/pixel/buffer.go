package pixel

import (
	"image"
	"image/color"
	"math"
)

// Source is a read-only view over a host framebuffer of interleaved
// float32 samples.
type Source interface {
	// Bounds is the region of defined pixels, in host coordinates.
	Bounds() image.Rectangle
	// Channels is the number of interleaved samples per pixel.
	Channels() int
	// Pixel returns the samples starting at (x, y) up to the end of row y.
	// Channel c of column x+i is at index i*Channels()+c.
	Pixel(x, y int) []float32
}

func NewBuffer(r image.Rectangle, channels int) *Buffer {
	return &Buffer{
		Pix:         make([]float32, channels*r.Dx()*r.Dy()),
		Stride:      channels * r.Dx(),
		Rect:        r,
		NumChannels: channels,
	}
}

// Buffer is a float32 framebuffer. Row Rect.Min.Y is stored first; hosts
// that keep images bottom-up put the lowest row of the picture there.
// It implements the draw.Image interface with premultiplied RGBA colors.
type Buffer struct {
	Pix         []float32
	Stride      int
	Rect        image.Rectangle
	NumChannels int
}

// Bounds implements the image.Image (and Source) interface.
func (b *Buffer) Bounds() image.Rectangle {
	return b.Rect
}

// Channels implements the Source interface.
func (b *Buffer) Channels() int {
	return b.NumChannels
}

// PixOffset returns the index of the first sample of (x, y).
func (b *Buffer) PixOffset(x, y int) int {
	return (y-b.Rect.Min.Y)*b.Stride + (x-b.Rect.Min.X)*b.NumChannels
}

// Pixel implements the Source interface.
func (b *Buffer) Pixel(x, y int) []float32 {
	if !(image.Point{X: x, Y: y}.In(b.Rect)) {
		return nil
	}
	i := b.PixOffset(x, y)
	end := b.PixOffset(b.Rect.Min.X, y) + b.Rect.Dx()*b.NumChannels
	return b.Pix[i:end:end]
}

// ColorModel implements the image.Image (and draw.Image) interface.
func (b *Buffer) ColorModel() color.Model {
	return color.RGBA64Model
}

// At implements the image.Image (and draw.Image) interface. Samples are
// clamped to [0,1]; missing channels read as 0 except alpha, which reads 1.
func (b *Buffer) At(x, y int) color.Color {
	s := b.Pixel(x, y)
	if s == nil {
		return color.RGBA64{}
	}

	var v [4]float32
	v[3] = 1
	for c := 0; c < b.NumChannels && c < 4; c++ {
		v[c] = s[c]
	}
	if b.NumChannels == 1 {
		v[1], v[2] = v[0], v[0]
	}

	return color.RGBA64{R: unit16(v[0]), G: unit16(v[1]), B: unit16(v[2]), A: unit16(v[3])}
}

// Set implements the draw.Image interface.
func (b *Buffer) Set(x, y int, c color.Color) {
	s := b.Pixel(x, y)
	if s == nil {
		return
	}

	r, g, bl, a := c.RGBA()
	v := [4]float32{float32(r) / 0xffff, float32(g) / 0xffff, float32(bl) / 0xffff, float32(a) / 0xffff}
	copy(s[:b.NumChannels], v[:])
}

// SetSamples writes raw samples of (x, y) without any conversion.
func (b *Buffer) SetSamples(x, y int, samples ...float32) {
	if s := b.Pixel(x, y); s != nil {
		copy(s[:b.NumChannels], samples)
	}
}

func unit16(f float32) uint16 {
	if f <= 0 || math.IsNaN(float64(f)) {
		return 0
	}
	if f >= 1 {
		return 0xffff
	}
	return uint16(f*0xffff + 0.5)
}
