package writer

import (
	"exrwriter/pkg/pixel"
)

// Writer encodes one frame of a source into a file.
type Writer interface {
	Encode(filename string, frame float64, src pixel.Source) error
}

// SupportedFormats lists the file extensions the writer produces.
func SupportedFormats() []string {
	return []string{"exr"}
}

// IsImageFile reports whether files of the extension hold images. Every
// supported format does.
func IsImageFile(ext string) bool {
	return true
}
