package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/inhies/go-bytesize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/afero"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"exrwriter/pkg/format"
	"exrwriter/pkg/readback"
	"exrwriter/pkg/remote"
	"exrwriter/pkg/source"
	"exrwriter/pkg/writer"
	"exrwriter/pkg/writer/virtual"
)

var output = flag.StringP("output", "o", "frame.%04d.exr", "output file, a %d verb takes the frame number")
var compression = flag.StringP("compression", "c", format.DefaultCompression.Name(), "none, zips, zip, piz, rle or b44")
var depth = flag.StringP("depth", "d", format.DefaultBitDepth.Name(), "half or float")
var startFrame = flag.Float64("frame", 1, "frame number of the first input")
var inputDir = flag.String("dir", "", "base dir of local inputs")
var fit = flag.String("fit", "", "scale inputs down to fit WxH")
var atomic = flag.Bool("atomic", true, "write through a temp file")
var target = flag.String("remote", "", "encode on an exrserve addr")
var dryRun = flag.Bool("dry-run", false, "log instead of writing")
var verify = flag.Bool("verify", false, "read back every written file")
var debug = flag.Bool("debug", false, "set debug")

func main() {
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	if !*debug {
		logger, _ = zap.NewProduction()
	}
	defer func() {
		_ = logger.Sync()
	}()

	if flag.NArg() == 0 {
		log.Fatal("no inputs, pass image files or URLs")
	}

	c, err := format.ParseCompression(*compression)
	if err != nil {
		log.Fatal(err)
	}
	d, err := format.ParseBitDepth(*depth)
	if err != nil {
		log.Fatal(err)
	}

	var loaderOpts []source.Option
	loaderOpts = append(loaderOpts, source.WithProgress(os.Stderr))
	if *fit != "" {
		var w, h int
		if _, err := fmt.Sscanf(*fit, "%dx%d", &w, &h); err != nil {
			log.Fatalf("bad fit %q: %v", *fit, err)
		}
		loaderOpts = append(loaderOpts, source.WithFit(w, h))
	}

	loader, err := source.NewLoader(*inputDir, logger, loaderOpts...)
	if err != nil {
		log.Fatal(err)
	}

	var bar *progressbar.ProgressBar
	var w writer.Writer

	switch {
	case *dryRun:
		w = virtual.Mock(logger)
	case *target != "":
		cli, err := remote.New(*target)
		if err != nil {
			log.Fatal(err)
		}
		defer cli.Close()
		if err := cli.SetCompression(c); err != nil {
			log.Fatal(err)
		}
		if err := cli.SetBitDepth(d); err != nil {
			log.Fatal(err)
		}
		w = cli
	default:
		p := writer.NewParams()
		if err := p.SetCompression(c); err != nil {
			log.Fatal(err)
		}
		if err := p.SetBitDepth(d); err != nil {
			log.Fatal(err)
		}
		w = writer.New(p,
			writer.WithLogger(logger),
			writer.WithAtomic(*atomic),
			writer.WithProgress(func(done, total int) {
				if bar == nil {
					bar = progressbar.Default(int64(total), "scanlines")
				}
				_ = bar.Set(done)
			}),
		)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	failed := 0
	for i, ref := range flag.Args() {
		select {
		case <-stop:
			logger.Info("interrupted")
			os.Exit(1)
		default:
		}

		frame := *startFrame + float64(i)
		name := *output
		if strings.Contains(name, "%") {
			name = fmt.Sprintf(name, int(frame))
		}

		src, err := loader.Load(ref)
		if err != nil {
			logger.With(zap.String("ref", ref), zap.Error(err)).Error("load failed")
			failed++
			continue
		}

		bar = nil
		if err := w.Encode(name, frame, src); err != nil {
			logger.With(zap.String("ref", ref), zap.Error(err)).Error("encode failed")
			failed++
			continue
		}
		if bar != nil {
			_ = bar.Finish()
		}

		if *verify && !*dryRun && *target == "" {
			if err := check(name, logger); err != nil {
				logger.With(zap.String("file", name), zap.Error(err)).Error("verify failed")
				failed++
			}
		}
	}

	if failed > 0 {
		os.Exit(1)
	}
}

func check(name string, logger *zap.Logger) error {
	fs := afero.NewOsFs()
	st, err := fs.Stat(name)
	if err != nil {
		return err
	}

	img, err := readback.Open(fs, name)
	if err != nil {
		return err
	}

	h := img.Header
	logger.With(
		zap.String("file", name),
		zap.Any("dataWindow", h.DataWindow()),
		zap.Stringer("compression", h.Compression()),
		zap.Int("channels", len(img.Channels)),
		zap.String("size", bytesize.New(float64(st.Size())).String()),
	).Info("verified")
	return nil
}
