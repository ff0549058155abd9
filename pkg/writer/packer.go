package writer

import (
	"image"

	"github.com/mrjoshuak/go-openexr/exr"
	"github.com/mrjoshuak/go-openexr/half"
	"github.com/pkg/errors"

	"exrwriter/pkg/pixel"
)

// Packer stages host rows in the frame buffer handed to the codec. The
// channel planes are allocated once, in file row order, and every Pack call
// overwrites exactly one file row of them.
type Packer struct {
	src    pixel.Source
	target exr.PixelType
	rect   image.Rectangle
	stride int
	bound  int

	floats [][]float32
	halves [][]half.Half
	fb     *exr.FrameBuffer
}

func NewPacker(src pixel.Source, target exr.PixelType) *Packer {
	p := &Packer{
		src:    src,
		target: target,
		rect:   src.Bounds(),
		stride: src.Channels(),
		fb:     exr.NewFrameBuffer(),
	}
	p.bound = min(max(p.stride, 0), len(ChannelNames))

	width, height := p.rect.Dx(), p.rect.Dy()
	for c := 0; c < p.bound; c++ {
		switch target {
		case exr.PixelTypeFloat:
			plane := make([]float32, width*height)
			p.floats = append(p.floats, plane)
			p.fb.Insert(ChannelNames[c], exr.NewSliceFromFloat32(plane, width, height))
		case exr.PixelTypeHalf:
			plane := make([]half.Half, width*height)
			p.halves = append(p.halves, plane)
			p.fb.Insert(ChannelNames[c], exr.NewSliceFromHalf(plane, width, height))
		}
	}

	return p
}

// FrameBuffer returns the staged planes. Channels the source does not carry
// have no slice, so the codec stores them as zero.
func (p *Packer) FrameBuffer() *exr.FrameBuffer {
	return p.fb
}

// Pack stages host row hostRow as file row fileRow, narrowing to half when
// the target requires it.
func (p *Packer) Pack(hostRow, fileRow int) error {
	if p.fb == nil {
		return errors.New("packer released")
	}
	if p.stride < 1 {
		return errors.Wrapf(ErrGeometry, "source has %d channels", p.stride)
	}
	if fileRow < 0 || fileRow >= p.rect.Dy() {
		return errors.Wrapf(ErrGeometry, "file row %d outside %d rows", fileRow, p.rect.Dy())
	}

	width := p.rect.Dx()
	row := p.src.Pixel(p.rect.Min.X, hostRow)
	if len(row) < width*p.stride {
		return errors.Wrapf(ErrGeometry, "row %d holds %d samples, want %d", hostRow, len(row), width*p.stride)
	}

	off := fileRow * width
	switch p.target {
	case exr.PixelTypeFloat:
		for c, plane := range p.floats {
			dst := plane[off : off+width]
			for i := range dst {
				dst[i] = row[i*p.stride+c]
			}
		}
	case exr.PixelTypeHalf:
		for c, plane := range p.halves {
			dst := plane[off : off+width]
			for i := range dst {
				dst[i] = half.FromFloat32(row[i*p.stride+c])
			}
		}
	default:
		return errors.Errorf("unsupported target type %d", p.target)
	}

	return nil
}

// Release drops the planes.
func (p *Packer) Release() {
	p.floats, p.halves, p.fb = nil, nil, nil
}
