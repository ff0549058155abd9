package writer

import (
	"sync"

	"exrwriter/pkg/format"
)

func NewParams() *Params {
	return &Params{
		compression: format.DefaultCompression,
		bitDepth:    format.DefaultBitDepth,
	}
}

// Params holds the output choices. It may be changed while encodes run;
// each Encode works on a snapshot taken when it starts.
type Params struct {
	l sync.RWMutex

	compression format.Compression
	bitDepth    format.BitDepth
}

func (p *Params) Snapshot() (format.Compression, format.BitDepth) {
	p.l.RLock()
	defer p.l.RUnlock()
	return p.compression, p.bitDepth
}

func (p *Params) SetCompression(c format.Compression) error {
	if _, err := c.Codec(); err != nil {
		return err
	}

	p.l.Lock()
	defer p.l.Unlock()
	p.compression = c
	return nil
}

func (p *Params) SetBitDepth(d format.BitDepth) error {
	if _, err := d.PixelType(); err != nil {
		return err
	}

	p.l.Lock()
	defer p.l.Unlock()
	p.bitDepth = d
	return nil
}

// SetCompressionIndex stores the menu entry at i. An index out of range
// stores the last entry and reports false.
func (p *Params) SetCompressionIndex(i int) bool {
	c, ok := format.CompressionAt(i)

	p.l.Lock()
	defer p.l.Unlock()
	p.compression = c
	return ok
}

// SetBitDepthIndex is SetCompressionIndex for the bit depth menu.
func (p *Params) SetBitDepthIndex(i int) bool {
	d, ok := format.BitDepthAt(i)

	p.l.Lock()
	defer p.l.Unlock()
	p.bitDepth = d
	return ok
}
