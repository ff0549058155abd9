package writer

import (
	"image"
	"math"

	"github.com/mrjoshuak/go-openexr/exr"
	"github.com/pkg/errors"

	"exrwriter/pkg/format"
)

// ChannelNames is the channel list of every file, in packing order.
var ChannelNames = [...]string{"R", "G", "B", "A"}

// Windows derives the file geometry from the source bounds. The data window
// keeps the absolute host coordinates; the display window has the same size
// anchored at the origin. Both windows are inclusive int32 boxes, so bounds
// that do not fit are rejected.
func Windows(rod image.Rectangle) (data, display exr.Box2i, err error) {
	if rod.Empty() {
		return data, display, errors.Wrapf(ErrGeometry, "empty data window %v", rod)
	}

	// Max is inclusive, and both extents must be representable as well.
	for _, v := range []int{rod.Min.X, rod.Min.Y, rod.Max.X - 1, rod.Max.Y - 1, rod.Dx() - 1, rod.Dy() - 1} {
		if v < math.MinInt32 || v > math.MaxInt32 {
			return data, display, errors.Wrapf(ErrGeometry, "data window %v exceeds int32 coordinates", rod)
		}
	}

	data = exr.Box2i{
		Min: exr.V2i{X: int32(rod.Min.X), Y: int32(rod.Min.Y)},
		Max: exr.V2i{X: int32(rod.Max.X - 1), Y: int32(rod.Max.Y - 1)},
	}
	display = exr.Box2i{
		Max: exr.V2i{X: int32(rod.Dx() - 1), Y: int32(rod.Dy() - 1)},
	}
	return data, display, nil
}

// NewHeader builds the header of a four channel scanline file written in
// increasing Y.
func NewHeader(rod image.Rectangle, f format.Format) (*exr.Header, error) {
	data, display, err := Windows(rod)
	if err != nil {
		return nil, err
	}

	h := exr.NewHeader()
	h.SetDataWindow(data)
	h.SetDisplayWindow(display)
	h.SetCompression(f.Codec)
	h.SetLineOrder(exr.LineOrderIncreasing)
	h.SetPixelAspectRatio(1.0)
	h.SetScreenWindowCenter(exr.V2f{X: 0, Y: 0})
	h.SetScreenWindowWidth(1.0)

	cl := exr.NewChannelList()
	for _, name := range ChannelNames {
		cl.Add(exr.NewChannel(name, f.PixelType))
	}
	h.SetChannels(cl)

	return h, nil
}
