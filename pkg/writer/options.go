package writer

import (
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

type Option func(e *EXR)

func WithLogger(logger *zap.Logger) Option {
	return func(e *EXR) {
		e.log = logger
	}
}

func WithFs(fs afero.Fs) Option {
	return func(e *EXR) {
		e.fs = fs
	}
}

// WithProgress reports the number of written scanlines after every chunk
// handed to the codec.
func WithProgress(fn func(done, total int)) Option {
	return func(e *EXR) {
		e.progress = fn
	}
}

// WithAtomic writes into a temporary file next to the target and renames it
// on success. On by default.
func WithAtomic(atomic bool) Option {
	return func(e *EXR) {
		e.atomic = atomic
	}
}
