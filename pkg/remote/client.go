package remote

import (
	"net/rpc"

	"exrwriter/pkg/format"
	"exrwriter/pkg/pixel"
)

func New(addr string) (*Client, error) {
	client, err := rpc.DialHTTP("tcp", addr)
	if err != nil {
		return nil, err
	}

	return &Client{rpc: client}, nil
}

// Client encodes on a remote exrserve instance. It implements writer.Writer.
type Client struct {
	rpc *rpc.Client
}

func (c *Client) Encode(filename string, frame float64, src pixel.Source) error {
	b := src.Bounds()
	n := src.Channels()

	pix := make([]float32, 0, b.Dx()*b.Dy()*n)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := src.Pixel(b.Min.X, y)
		pix = append(pix, row[:min(len(row), b.Dx()*n)]...)
	}

	return c.rpc.Call("Service.Encode", &EncodeRequest{
		Filename: filename,
		Frame:    frame,
		Rect:     b,
		Channels: n,
		Pix:      pix,
	}, &EmptyResponse{})
}

func (c *Client) SetCompression(comp format.Compression) error {
	return c.rpc.Call("Service.SetCompression", comp.Name(), &EmptyResponse{})
}

func (c *Client) SetBitDepth(d format.BitDepth) error {
	return c.rpc.Call("Service.SetBitDepth", d.Name(), &EmptyResponse{})
}

// SetCompressionIndex selects a menu entry; see writer.Params.
func (c *Client) SetCompressionIndex(i int) (bool, error) {
	var resp SetIndexResponse
	err := c.rpc.Call("Service.SetCompressionIndex", SetIndexRequest{Index: i}, &resp)
	return resp.InRange, err
}

// SetBitDepthIndex selects a bit depth menu entry; see writer.Params.
func (c *Client) SetBitDepthIndex(i int) (bool, error) {
	var resp SetIndexResponse
	err := c.rpc.Call("Service.SetBitDepthIndex", SetIndexRequest{Index: i}, &resp)
	return resp.InRange, err
}

func (c *Client) Close() error {
	return c.rpc.Close()
}
