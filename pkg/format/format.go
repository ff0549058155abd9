// Package format maps the user facing output choices onto codec settings.
package format

import (
	"strings"

	"github.com/mrjoshuak/go-openexr/exr"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

var ErrUnknownChoice = errors.New("format: unknown choice")

// Compression is the user facing compression choice, in menu order.
type Compression int

const (
	None Compression = iota
	ZIP1
	ZIP16
	PIZ32
	RLE
	B44
)

// BitDepth is the user facing sample precision choice, in menu order.
type BitDepth int

const (
	Half16 BitDepth = iota
	Float32
)

const (
	DefaultCompression = PIZ32
	DefaultBitDepth    = Float32
)

type compressionInfo struct {
	label string
	names []string
	codec exr.Compression
}

type bitDepthInfo struct {
	label     string
	names     []string
	pixelType exr.PixelType
}

var compressions = [...]compressionInfo{
	None:  {"No compression", []string{"none"}, exr.CompressionNone},
	ZIP1:  {"Zip (1 scanline)", []string{"zips", "zip1"}, exr.CompressionZIPS},
	ZIP16: {"Zip (16 scanlines)", []string{"zip", "zip16"}, exr.CompressionZIP},
	PIZ32: {"PIZ Wavelet (32 scanlines)", []string{"piz", "piz32"}, exr.CompressionPIZ},
	RLE:   {"RLE", []string{"rle"}, exr.CompressionRLE},
	B44:   {"B44", []string{"b44"}, exr.CompressionB44},
}

var bitDepths = [...]bitDepthInfo{
	Half16:  {"16 bit half", []string{"half", "16"}, exr.PixelTypeHalf},
	Float32: {"32 bit float", []string{"float", "32"}, exr.PixelTypeFloat},
}

// Compressions lists every choice in menu order.
func Compressions() []Compression {
	return lo.Times(len(compressions), func(i int) Compression { return Compression(i) })
}

// BitDepths lists every choice in menu order.
func BitDepths() []BitDepth {
	return lo.Times(len(bitDepths), func(i int) BitDepth { return BitDepth(i) })
}

// CompressionAt maps a menu index to its choice. An index outside the menu
// yields the last entry (B44) and false.
func CompressionAt(i int) (Compression, bool) {
	if i < 0 || i >= len(compressions) {
		return Compression(len(compressions) - 1), false
	}
	return Compression(i), true
}

// BitDepthAt maps a menu index to its choice. An index outside the menu
// yields the last entry (Float32) and false.
func BitDepthAt(i int) (BitDepth, bool) {
	if i < 0 || i >= len(bitDepths) {
		return BitDepth(len(bitDepths) - 1), false
	}
	return BitDepth(i), true
}

func (c Compression) Valid() bool {
	return c >= 0 && int(c) < len(compressions)
}

func (c Compression) String() string {
	if !c.Valid() {
		return "Compression(?)"
	}
	return compressions[c].label
}

// Name is the short name accepted on the command line.
func (c Compression) Name() string {
	if !c.Valid() {
		return ""
	}
	return compressions[c].names[0]
}

// Codec returns the container compression the choice selects.
func (c Compression) Codec() (exr.Compression, error) {
	if !c.Valid() {
		return 0, errors.Wrapf(ErrUnknownChoice, "compression %d", int(c))
	}
	return compressions[c].codec, nil
}

func (d BitDepth) Valid() bool {
	return d >= 0 && int(d) < len(bitDepths)
}

func (d BitDepth) String() string {
	if !d.Valid() {
		return "BitDepth(?)"
	}
	return bitDepths[d].label
}

func (d BitDepth) Name() string {
	if !d.Valid() {
		return ""
	}
	return bitDepths[d].names[0]
}

// PixelType returns the on-disk sample type the choice selects.
func (d BitDepth) PixelType() (exr.PixelType, error) {
	if !d.Valid() {
		return 0, errors.Wrapf(ErrUnknownChoice, "bit depth %d", int(d))
	}
	return bitDepths[d].pixelType, nil
}

// ParseCompression accepts a short name ("piz") or a menu label.
func ParseCompression(s string) (Compression, error) {
	s = strings.TrimSpace(s)
	for i, info := range compressions {
		if strings.EqualFold(s, info.label) || lo.Contains(info.names, strings.ToLower(s)) {
			return Compression(i), nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownChoice, "compression %q", s)
}

// ParseBitDepth accepts a short name ("half", "32") or a menu label.
func ParseBitDepth(s string) (BitDepth, error) {
	s = strings.TrimSpace(s)
	for i, info := range bitDepths {
		if strings.EqualFold(s, info.label) || lo.Contains(info.names, strings.ToLower(s)) {
			return BitDepth(i), nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownChoice, "bit depth %q", s)
}

// Format is a negotiated codec configuration.
type Format struct {
	Codec     exr.Compression
	PixelType exr.PixelType
}

func (f Format) String() string {
	d, ok := lo.Find(BitDepths(), func(d BitDepth) bool {
		return bitDepths[d].pixelType == f.PixelType
	})
	if !ok {
		return f.Codec.String() + "/?"
	}
	return f.Codec.String() + "/" + d.Name()
}

// Negotiate resolves both choices. It never falls back to a default.
func Negotiate(c Compression, d BitDepth) (Format, error) {
	codec, err := c.Codec()
	if err != nil {
		return Format{}, err
	}
	pt, err := d.PixelType()
	if err != nil {
		return Format{}, err
	}
	return Format{Codec: codec, PixelType: pt}, nil
}
