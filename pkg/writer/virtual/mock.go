package virtual

import (
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"exrwriter/pkg/pixel"
	"exrwriter/pkg/writer"
)

func Mock(logger *zap.Logger) writer.Writer {
	return &Mocker{l: logger}
}

// Mocker logs encode requests instead of writing files.
type Mocker struct {
	l     *zap.Logger
	calls atomic.Int64
}

func (m *Mocker) Encode(filename string, frame float64, src pixel.Source) error {
	b := src.Bounds()
	if _, _, err := writer.Windows(b); err != nil {
		return &writer.Error{Filename: filename, Frame: frame, Err: err}
	}

	m.calls.Inc()
	m.l.With(
		zap.String("file", filename),
		zap.Float64("frame", frame),
		zap.Int("w", b.Dx()),
		zap.Int("h", b.Dy()),
		zap.Int("channels", src.Channels()),
	).Info("encode")
	return nil
}

// Calls counts the accepted encode requests.
func (m *Mocker) Calls() int {
	return int(m.calls.Load())
}
