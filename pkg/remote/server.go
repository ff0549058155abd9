package remote

import (
	"context"
	"net/http"
	"net/rpc"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"exrwriter/pkg/format"
	"exrwriter/pkg/pixel"
	"exrwriter/pkg/writer"
)

// Handler serves enc over net/rpc on the default rpc path.
func Handler(enc *writer.EXR, logger *zap.Logger) (http.Handler, error) {
	server := rpc.NewServer()
	if err := server.Register(&Service{enc: enc, log: logger}); err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle(rpc.DefaultRPCPath, server)
	return mux, nil
}

func Proxy(enc *writer.EXR, srv *http.Server, logger *zap.Logger, lifecycle fx.Lifecycle) error {
	h, err := Handler(enc, logger)
	if err != nil {
		return err
	}
	srv.Handler = h

	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != http.ErrServerClosed {
					logger.With(zap.Error(err)).Fatal("serve")
				}
			}()
			logger.With(zap.String("addr", srv.Addr)).Info("listening")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})

	return nil
}

type Service struct {
	enc *writer.EXR
	log *zap.Logger
}

func (s *Service) Encode(req *EncodeRequest, _ *EmptyResponse) error {
	if req.Channels < 1 || len(req.Pix) != req.Rect.Dx()*req.Rect.Dy()*req.Channels {
		return errors.Errorf("bad request: %d samples for %v x %d", len(req.Pix), req.Rect, req.Channels)
	}

	src := &pixel.Buffer{
		Pix:         req.Pix,
		Stride:      req.Rect.Dx() * req.Channels,
		Rect:        req.Rect,
		NumChannels: req.Channels,
	}

	s.log.With(zap.String("file", req.Filename), zap.Float64("frame", req.Frame)).Debug("encode")
	return s.enc.Encode(req.Filename, req.Frame, src)
}

func (s *Service) SetCompression(name string, _ *EmptyResponse) error {
	c, err := format.ParseCompression(name)
	if err != nil {
		return err
	}
	return s.enc.Params().SetCompression(c)
}

func (s *Service) SetBitDepth(name string, _ *EmptyResponse) error {
	d, err := format.ParseBitDepth(name)
	if err != nil {
		return err
	}
	return s.enc.Params().SetBitDepth(d)
}

func (s *Service) SetCompressionIndex(req SetIndexRequest, resp *SetIndexResponse) error {
	resp.InRange = s.enc.Params().SetCompressionIndex(req.Index)
	return nil
}

func (s *Service) SetBitDepthIndex(req SetIndexRequest, resp *SetIndexResponse) error {
	resp.InRange = s.enc.Params().SetBitDepthIndex(req.Index)
	return nil
}
