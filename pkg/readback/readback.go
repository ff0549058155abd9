// Package readback decodes written scanline files so they can be checked
// against the source they were encoded from.
package readback

import (
	"io"

	"github.com/mrjoshuak/go-openexr/exr"
	"github.com/mrjoshuak/go-openexr/half"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/spf13/afero"
)

// Image is a decoded file. Every channel is widened to float32 and stored in
// file row order, row 0 being the lowest Y of the data window.
type Image struct {
	Header   *exr.Header
	Width    int
	Height   int
	Types    map[string]exr.PixelType
	Channels map[string][]float32
}

// At returns sample (x, row) of a channel, x and row counted from the data
// window origin. Missing channels read as 0.
func (img *Image) At(name string, x, row int) float32 {
	ch, ok := img.Channels[name]
	if !ok {
		return 0
	}
	return ch[row*img.Width+x]
}

func Open(fs afero.Fs, name string) (*Image, error) {
	f, err := fs.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return Read(f, info.Size())
}

// Read decodes every scanline of the first part of a file.
func Read(r io.ReaderAt, size int64) (*Image, error) {
	f, err := exr.OpenReader(r, size)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}

	rd, err := exr.NewScanlineReader(f)
	if err != nil {
		return nil, errors.Wrap(err, "scanline reader")
	}

	dw := rd.DataWindow()
	img := &Image{
		Header:   rd.Header(),
		Width:    int(dw.Width()),
		Height:   int(dw.Height()),
		Types:    map[string]exr.PixelType{},
		Channels: map[string][]float32{},
	}

	fb := exr.NewFrameBuffer()
	halves := map[string][]half.Half{}
	cl := img.Header.Channels()
	for i := 0; i < cl.Len(); i++ {
		ch := cl.At(i)
		img.Types[ch.Name] = ch.Type

		switch ch.Type {
		case exr.PixelTypeHalf:
			plane := make([]half.Half, img.Width*img.Height)
			halves[ch.Name] = plane
			fb.Insert(ch.Name, exr.NewSliceFromHalf(plane, img.Width, img.Height))
		case exr.PixelTypeFloat:
			plane := make([]float32, img.Width*img.Height)
			img.Channels[ch.Name] = plane
			fb.Insert(ch.Name, exr.NewSliceFromFloat32(plane, img.Width, img.Height))
		default:
			return nil, errors.Errorf("channel %s: unsupported pixel type %d", ch.Name, ch.Type)
		}
	}

	rd.SetFrameBuffer(fb)
	if err := rd.ReadPixels(int(dw.Min.Y), int(dw.Max.Y)); err != nil {
		return nil, errors.Wrap(err, "read pixels")
	}

	for name, plane := range halves {
		img.Channels[name] = lo.Map(plane, func(v half.Half, _ int) float32 {
			return v.Float32()
		})
	}

	return img, nil
}
