package writer

import (
	"fmt"
	"image"
	"path/filepath"
	"time"

	"github.com/mrjoshuak/go-openexr/exr"
	"github.com/pkg/errors"
	"github.com/rs/xid"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"exrwriter/pkg/format"
	"exrwriter/pkg/pixel"
)

func New(params *Params, opts ...Option) *EXR {
	e := &EXR{
		params: params,
		// options
		fs:     afero.NewOsFs(),
		log:    zap.NewNop(),
		atomic: true,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// EXR writes sources as scanline OpenEXR files. It is safe for concurrent
// use; every Encode call owns its file and buffers.
type EXR struct {
	params *Params
	// options
	fs       afero.Fs
	log      *zap.Logger
	progress func(done, total int)
	atomic   bool
}

func (e *EXR) Params() *Params {
	return e.params
}

// Encode writes src into filename. Any failure aborts the whole file and
// is reported as a single *Error; no partial output is left behind.
func (e *EXR) Encode(filename string, frame float64, src pixel.Source) error {
	start := time.Now()
	c, d := e.params.Snapshot()
	log := e.log.With(zap.String("file", filename), zap.Float64("frame", frame))

	f, err := format.Negotiate(c, d)
	if err != nil {
		return &Error{Filename: filename, Frame: frame, Err: fmt.Errorf("%w: %w", ErrCodecConstruction, err)}
	}

	s := &scanlineEncoder{
		fs:       e.fs,
		log:      log,
		progress: e.progress,
		filename: filename,
		path:     filename,
	}
	if e.atomic {
		s.path = tempName(filename)
	}

	if err := s.encode(src, f); err != nil {
		log.With(zap.Error(err)).Warn("encode failed")
		return &Error{Filename: filename, Frame: frame, Err: err}
	}

	log.With(
		zap.String("format", f.String()),
		zap.String("bounds", src.Bounds().String()),
		zap.String("cost", time.Since(start).String()),
	).Info("encoded")

	return nil
}

func tempName(filename string) string {
	dir, base := filepath.Split(filename)
	return filepath.Join(dir, "."+base+"."+xid.New().String()+".tmp")
}

type state int

const (
	stateIdle state = iota
	stateHeaderWritten
	stateWritingRows
	stateClosed
)

func (s state) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateHeaderWritten:
		return "header-written"
	case stateWritingRows:
		return "writing-rows"
	case stateClosed:
		return "closed"
	}
	return "unknown"
}

// scanlineEncoder carries the resources of one Encode call.
type scanlineEncoder struct {
	fs       afero.Fs
	log      *zap.Logger
	progress func(done, total int)

	filename string
	path     string

	state   state
	created bool
	file    afero.File
	out     *exr.ScanlineWriter
	packer  *Packer
}

func (s *scanlineEncoder) encode(src pixel.Source, f format.Format) (err error) {
	defer func() {
		if cerr := s.close(err == nil); err == nil {
			err = cerr
		}
	}()

	if err = s.writeHeader(src.Bounds(), f); err != nil {
		return err
	}

	s.packer = NewPacker(src, f.PixelType)
	return s.writeRows()
}

func (s *scanlineEncoder) writeHeader(rod image.Rectangle, f format.Format) error {
	if s.state != stateIdle {
		return errors.Errorf("header in state %s", s.state)
	}

	h, err := NewHeader(rod, f)
	if err != nil {
		return err
	}

	if s.file, err = s.fs.Create(s.path); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	s.created = true

	if s.out, err = exr.NewScanlineWriter(s.file, h); err != nil {
		return fmt.Errorf("%w: %w", ErrCodecConstruction, err)
	}

	s.state = stateHeaderWritten
	return nil
}

// writeRows emits the file scanlines in increasing Y. The host buffer is
// stored bottom-up, so file row i is host row dataWindow.Max.Y-i. Rows are
// staged one at a time and handed to the codec one chunk at a time.
func (s *scanlineEncoder) writeRows() error {
	s.state = stateWritingRows

	h := s.out.Header()
	dw := h.DataWindow()
	total := int(dw.Height())
	lines := max(h.Compression().ScanlinesPerChunk(), 1)

	s.out.SetFrameBuffer(s.packer.FrameBuffer())

	for first := 0; first < total; first += lines {
		last := min(first+lines, total) - 1

		for fileRow := first; fileRow <= last; fileRow++ {
			if err := s.packer.Pack(int(dw.Max.Y)-fileRow, fileRow); err != nil {
				return err
			}
		}

		y1, y2 := int(dw.Min.Y)+first, int(dw.Min.Y)+last
		if err := s.out.WritePixels(y1, y2); err != nil {
			return fmt.Errorf("%w: scanlines %d-%d: %w", ErrCompression, y1, y2, err)
		}

		if s.progress != nil {
			s.progress(last+1, total)
		}
	}

	return nil
}

// close finalizes the stream and releases every resource. Without commit,
// or when finalizing fails, the output file is removed.
func (s *scanlineEncoder) close(commit bool) error {
	if s.state == stateClosed {
		return nil
	}

	var err error
	if s.out != nil {
		if cerr := s.out.Close(); cerr != nil && commit {
			err = fmt.Errorf("%w: %w", ErrIO, cerr)
		}
		s.out = nil
	}
	if s.file != nil {
		if cerr := s.file.Close(); cerr != nil && err == nil && commit {
			err = fmt.Errorf("%w: %w", ErrIO, cerr)
		}
		s.file = nil
	}
	if s.packer != nil {
		s.packer.Release()
		s.packer = nil
	}

	s.state = stateClosed

	if commit && err == nil {
		if s.path != s.filename {
			if rerr := s.fs.Rename(s.path, s.filename); rerr != nil {
				err = fmt.Errorf("%w: %w", ErrIO, rerr)
			}
		}
		if err == nil {
			return nil
		}
	}

	if s.created {
		if rerr := s.fs.Remove(s.path); rerr != nil {
			s.log.With(zap.String("path", s.path), zap.Error(rerr)).Debug("remove partial output")
		}
	}
	return err
}
