// Package source turns picture files into host ordered pixel buffers.
package source

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/go-resty/resty/v2"
	"github.com/inhies/go-bytesize"
	"github.com/samber/lo"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"exrwriter/pkg/pixel"
)

type Option func(l *Loader)

// WithFit scales pictures down to fit into w x h, keeping the aspect ratio.
func WithFit(w, h int) Option {
	return func(l *Loader) {
		l.fitW, l.fitH = w, h
	}
}

// WithProgress writes a download bar for remote sources to w.
func WithProgress(w io.Writer) Option {
	return func(l *Loader) {
		l.bar = w
	}
}

// NewLoader reads local paths relative to dir, or as given when dir is empty.
func NewLoader(dir string, logger *zap.Logger, opts ...Option) (*Loader, error) {
	fs, err := newFs(dir)
	if err != nil {
		return nil, fmt.Errorf("create loader failed: %w", err)
	}
	return New(fs, logger, opts...), nil
}

func New(fs afero.Fs, logger *zap.Logger, opts ...Option) *Loader {
	l := &Loader{
		fs:  fs,
		cli: resty.New().SetDoNotParseResponse(true),
		log: logger,
		bar: io.Discard,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

type Loader struct {
	fs   afero.Fs
	cli  *resty.Client
	log  *zap.Logger
	bar  io.Writer
	fitW int
	fitH int
}

func isURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// Read returns the raw bytes of a local file or an http(s) URL.
func (l *Loader) Read(ref string) ([]byte, error) {
	if !isURL(ref) {
		return afero.ReadFile(l.fs, ref)
	}

	resp, err := l.cli.R().Get(ref)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = resp.RawBody().Close()
	}()

	if resp.StatusCode() >= 400 {
		return nil, fmt.Errorf("fetch %s: %s", ref, resp.Status())
	}

	bar := progressbar.NewOptions64(resp.RawResponse.ContentLength,
		progressbar.OptionSetWriter(l.bar),
		progressbar.OptionSetDescription(fmt.Sprintf("Downloading %s", ref)),
		progressbar.OptionShowBytes(true),
	)

	var buf bytes.Buffer
	if _, err := io.Copy(io.MultiWriter(&buf, bar), resp.RawBody()); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decode decodes a picture, applying the EXIF orientation, and fits it
// into the configured box.
func (l *Loader) Decode(bs []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(bs), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image failed: %w", err)
	}

	if l.fitW > 0 && l.fitH > 0 {
		img = imaging.Fit(img, l.fitW, l.fitH, imaging.Lanczos)
	}

	return img, nil
}

// Load reads and decodes ref into a bottom-up four channel buffer.
func (l *Loader) Load(ref string) (*pixel.Buffer, error) {
	bs, err := l.Read(ref)
	if err != nil {
		return nil, fmt.Errorf("read %s failed: %w", ref, err)
	}

	img, err := l.Decode(bs)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	l.log.With(
		zap.String("ref", ref),
		zap.String("size", bytesize.New(float64(len(bs))).String()),
		zap.Int("w", b.Dx()),
		zap.Int("h", b.Dy()),
		zap.String("via", lo.Ternary(isURL(ref), "http", "fs")),
	).Debug("loaded")

	return ToHost(img), nil
}

// ToHost flips a top-down picture into a bottom-up host buffer.
func ToHost(img image.Image) *pixel.Buffer {
	return pixel.FromImage(imaging.FlipV(img))
}
