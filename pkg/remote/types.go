package remote

import (
	"image"
)

type EmptyResponse struct {
}

type EncodeRequest struct {
	Filename string
	Frame    float64
	Rect     image.Rectangle
	Channels int
	Pix      []float32
}

type SetIndexRequest struct {
	Index int
}

type SetIndexResponse struct {
	InRange bool
}
