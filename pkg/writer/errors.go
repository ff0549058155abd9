package writer

import (
	"github.com/pkg/errors"
)

var (
	ErrGeometry          = errors.New("invalid data window")
	ErrCodecConstruction = errors.New("cannot create output")
	ErrIO                = errors.New("i/o failure")
	ErrCompression       = errors.New("scanline write failed")
)

const errorPrefix = "OpenEXR error: "

// Error is the single failure an Encode call reports. The wrapped error
// carries one of the sentinels above for callers that need the class.
type Error struct {
	Filename string
	Frame    float64
	Err      error
}

func (e *Error) Error() string {
	return errorPrefix + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}
