package pixel

import (
	"image"
)

// FromImage copies src into a four channel Buffer with the same bounds.
// Rows keep their order; pass an image flipped with imaging.FlipV to get a
// bottom-up host buffer out of a top-down picture.
func FromImage(src image.Image) *Buffer {
	b := src.Bounds()
	d := NewBuffer(b, 4)

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			d.Set(x, y, src.At(x, y))
		}
	}

	return d
}
