package writer

import (
	"image"
	"math"
	"testing"

	"github.com/mrjoshuak/go-openexr/exr"
	"github.com/mrjoshuak/go-openexr/half"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exrwriter/pkg/format"
	"exrwriter/pkg/pixel"
)

func TestWindows(t *testing.T) {
	rects := []image.Rectangle{
		image.Rect(0, 0, 4, 2),
		image.Rect(-7, -7, -6, -6),
		image.Rect(10, 20, 1930, 1100),
		image.Rect(-100, 3, 50, 4),
		image.Rect(math.MaxInt32-3, math.MinInt32, math.MaxInt32, math.MinInt32+2),
	}
	for _, r := range rects {
		data, display, err := Windows(r)
		require.NoError(t, err)

		assert.Equal(t, exr.V2i{}, display.Min, "%v", r)
		assert.Equal(t, data.Width(), display.Width(), "%v", r)
		assert.Equal(t, data.Height(), display.Height(), "%v", r)
		assert.Equal(t, int32(r.Min.X), data.Min.X)
		assert.Equal(t, int32(r.Min.Y), data.Min.Y)
		assert.Equal(t, int32(r.Max.X-1), data.Max.X)
		assert.Equal(t, int32(r.Max.Y-1), data.Max.Y)
		assert.Equal(t, int32(r.Dx()), data.Width())
	}

	bad := []image.Rectangle{
		{},
		image.Rect(0, 0, 0, 5),
		image.Rect(2, 2, 8, 2),
		// coordinates or extents that do not fit an int32 box
		image.Rect(math.MaxInt32, 0, math.MaxInt32+2, 1),
		image.Rect(math.MinInt32-1, 0, 0, 1),
		image.Rect(0, math.MaxInt32+1, 1, math.MaxInt32+5),
		image.Rect(math.MinInt32, 0, math.MaxInt32-1, 1),
		image.Rect(0, -1<<40, 1, 0),
	}
	for _, r := range bad {
		_, _, err := Windows(r)
		assert.True(t, errors.Is(err, ErrGeometry), "%v", r)
	}
}

func TestNewHeader(t *testing.T) {
	h, err := NewHeader(image.Rect(0, 0, 4, 2), format.Format{Codec: exr.CompressionNone, PixelType: exr.PixelTypeHalf})
	require.NoError(t, err)

	assert.Equal(t, exr.Box2i{Max: exr.V2i{X: 3, Y: 1}}, h.DataWindow())
	assert.Equal(t, exr.Box2i{Max: exr.V2i{X: 3, Y: 1}}, h.DisplayWindow())
	assert.Equal(t, exr.CompressionNone, h.Compression())
	assert.Equal(t, exr.LineOrderIncreasing, h.LineOrder())

	cl := h.Channels()
	require.Equal(t, len(ChannelNames), cl.Len())
	var names []string
	for i := 0; i < cl.Len(); i++ {
		ch := cl.At(i)
		names = append(names, ch.Name)
		assert.Equal(t, exr.PixelTypeHalf, ch.Type, ch.Name)
	}
	assert.ElementsMatch(t, ChannelNames[:], names)

	_, err = NewHeader(image.Rect(0, 0, math.MaxInt32, 1).Add(image.Pt(2, 0)), format.Format{Codec: exr.CompressionNone, PixelType: exr.PixelTypeHalf})
	assert.True(t, errors.Is(err, ErrGeometry))
}

func TestPackerFloatCopiesRow(t *testing.T) {
	r := image.Rect(2, 0, 9, 3)
	src := randomBuffer(r, 4, 1)
	p := NewPacker(src, exr.PixelTypeFloat)
	require.Len(t, p.floats, 4)
	assert.Nil(t, p.halves)

	require.NoError(t, p.Pack(1, 1))

	row := src.Pixel(2, 1)
	for c, name := range ChannelNames {
		require.NotNil(t, p.FrameBuffer().Get(name), name)
		plane := p.floats[c]
		require.Len(t, plane, r.Dx()*r.Dy())
		for i := 0; i < r.Dx(); i++ {
			assert.Equal(t, row[i*4+c], plane[r.Dx()+i], "%s column %d", name, i)
		}
		assert.Zero(t, plane[0])
	}
}

func TestPackerNarrowsEveryColumn(t *testing.T) {
	r := image.Rect(-3, 5, 8, 7)
	src := pixel.NewBuffer(r, 4)
	for x := r.Min.X; x < r.Max.X; x++ {
		for c := 0; c < 4; c++ {
			src.Pixel(x, 6)[c] = float32(x*10 + c)
		}
	}

	p := NewPacker(src, exr.PixelTypeHalf)
	require.Len(t, p.halves, 4)
	assert.Nil(t, p.floats)

	// host row 6 is the top of the picture, file row 0
	require.NoError(t, p.Pack(6, 0))

	for c, name := range ChannelNames {
		require.NotNil(t, p.FrameBuffer().Get(name), name)
		for i := 0; i < r.Dx(); i++ {
			want := float32((r.Min.X+i)*10 + c)
			assert.Equal(t, want, p.halves[c][i].Float32(), "%s column %d", name, i)
		}
	}

	assert.True(t, errors.Is(p.Pack(5, 2), ErrGeometry))

	p.Release()
	assert.Error(t, p.Pack(5, 1))
	assert.Nil(t, p.FrameBuffer())
}

func TestPackerReusesPlanes(t *testing.T) {
	r := image.Rect(0, 0, 64, 32)
	src := randomBuffer(r, 4, 9)
	p := NewPacker(src, exr.PixelTypeHalf)
	fb := p.FrameBuffer()
	first := &p.halves[0][0]

	allocs := testing.AllocsPerRun(10, func() {
		for fileRow := 0; fileRow < r.Dy(); fileRow++ {
			if err := p.Pack(r.Max.Y-1-fileRow, fileRow); err != nil {
				t.Fatal(err)
			}
		}
	})
	assert.Zero(t, allocs)

	assert.Same(t, fb, p.FrameBuffer())
	assert.Same(t, first, &p.halves[0][0])
	assert.Equal(t, half.FromFloat32(src.Pixel(0, r.Max.Y-1)[0]), p.halves[0][0])
}

func TestPackerSourceChannels(t *testing.T) {
	two := randomBuffer(image.Rect(0, 0, 3, 1), 2, 1)
	p := NewPacker(two, exr.PixelTypeFloat)
	require.NoError(t, p.Pack(0, 0))
	assert.Len(t, p.floats, 2)
	assert.NotNil(t, p.FrameBuffer().Get("G"))
	assert.Nil(t, p.FrameBuffer().Get("B"))
	assert.Nil(t, p.FrameBuffer().Get("A"))
	assert.Equal(t, two.Pix[2*2+1], p.floats[1][2])

	five := randomBuffer(image.Rect(0, 0, 3, 1), 5, 1)
	p = NewPacker(five, exr.PixelTypeHalf)
	require.NoError(t, p.Pack(0, 0))
	assert.Len(t, p.halves, 4)
	assert.Equal(t, half.FromFloat32(five.Pix[2*5+3]), p.halves[3][2])

	none := randomBuffer(image.Rect(0, 0, 3, 1), 0, 1)
	assert.True(t, errors.Is(NewPacker(none, exr.PixelTypeHalf).Pack(0, 0), ErrGeometry))
}

func TestNarrowingIsIdempotent(t *testing.T) {
	values := []float32{0, -0, 1, -1, 0.1, 1.0 / 3, 65504, 70000, -1e-8, 6e-5, 3.14159, 1e30}
	for _, v := range values {
		h := half.FromFloat32(v)
		assert.Equal(t, h, half.FromFloat32(h.Float32()), "%v", v)
	}
	assert.True(t, math.IsInf(float64(half.FromFloat32(1e30).Float32()), 1))
}

func TestParams(t *testing.T) {
	p := NewParams()
	c, d := p.Snapshot()
	assert.Equal(t, format.PIZ32, c)
	assert.Equal(t, format.Float32, d)

	assert.True(t, p.SetCompressionIndex(4))
	assert.True(t, p.SetBitDepthIndex(0))
	c, d = p.Snapshot()
	assert.Equal(t, format.RLE, c)
	assert.Equal(t, format.Half16, d)

	assert.False(t, p.SetCompressionIndex(12))
	assert.False(t, p.SetBitDepthIndex(-1))
	c, d = p.Snapshot()
	assert.Equal(t, format.B44, c)
	assert.Equal(t, format.Float32, d)

	assert.Error(t, p.SetCompression(format.Compression(6)))
	assert.Error(t, p.SetBitDepth(format.BitDepth(2)))
}
