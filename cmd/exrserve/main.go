package main

import (
	"net/http"

	"github.com/spf13/afero"
	flag "github.com/spf13/pflag"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"exrwriter/pkg/format"
	"exrwriter/pkg/remote"
	"exrwriter/pkg/writer"
)

var listen = flag.String("listen", ":9123", "listen addr")
var root = flag.String("root", ".", "output root dir")
var compression = flag.String("compression", format.DefaultCompression.Name(), "initial compression")
var depth = flag.String("depth", format.DefaultBitDepth.Name(), "initial bit depth")

func main() {
	flag.Parse()

	fx.New(
		fx.Provide(
			func() (*zap.Logger, error) {
				return zap.NewProduction()
			},
			func() (*writer.Params, error) {
				p := writer.NewParams()
				c, err := format.ParseCompression(*compression)
				if err != nil {
					return nil, err
				}
				d, err := format.ParseBitDepth(*depth)
				if err != nil {
					return nil, err
				}
				if err := p.SetCompression(c); err != nil {
					return nil, err
				}
				if err := p.SetBitDepth(d); err != nil {
					return nil, err
				}
				return p, nil
			},
			func(p *writer.Params, logger *zap.Logger) *writer.EXR {
				fs := afero.NewBasePathFs(afero.NewOsFs(), *root)
				return writer.New(p, writer.WithFs(fs), writer.WithLogger(logger))
			},
			func() *http.Server {
				return &http.Server{Addr: *listen}
			},
		),
		fx.Invoke(
			remote.Proxy,
		),
	).Run()
}
