package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"sync"
	"time"

	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"github.com/turtacn/PrintShop-Customizer/internal/domain/customization"
	"github.com/turtacn/PrintShop-Customizer/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/PrintShop-Customizer/pkg/errors"
)

// ImageSource opens the bytes behind an image reference.
type ImageSource interface {
	Open(ctx context.Context, ref customization.ImageRef) (io.ReadCloser, error)
}

// DefaultMaxLogoDimension bounds either side of a logo image in pixels.
const DefaultMaxLogoDimension = 4096

// DecodeLogo decodes a PNG, JPEG or WebP logo image.  The header is read
// first: an image wider or taller than maxDim is rejected before any pixel
// buffer is allocated.  maxDim <= 0 means DefaultMaxLogoDimension.
func DecodeLogo(r io.Reader, maxDim int) (image.Image, string, error) {
	if maxDim <= 0 {
		maxDim = DefaultMaxLogoDimension
	}
	var head bytes.Buffer
	cfg, _, err := image.DecodeConfig(io.TeeReader(r, &head))
	if err != nil {
		return nil, "", apperrors.Wrap(err, apperrors.ErrCodeLogoDecodeFailed, "decode logo image")
	}
	if cfg.Width > maxDim || cfg.Height > maxDim {
		return nil, "", apperrors.New(apperrors.ErrCodeLogoTooLarge, "logo image dimensions exceed the limit").
			WithDetail(fmt.Sprintf("size=%dx%d max=%d", cfg.Width, cfg.Height, maxDim))
	}
	img, format, err := image.Decode(io.MultiReader(&head, r))
	if err != nil {
		return nil, "", apperrors.Wrap(err, apperrors.ErrCodeLogoDecodeFailed, "decode logo image")
	}
	return img, format, nil
}

// DecodeLogoBytes is DecodeLogo over a byte slice.
func DecodeLogoBytes(b []byte, maxDim int) (image.Image, string, error) {
	return DecodeLogo(bytes.NewReader(b), maxDim)
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithConcurrency bounds the number of images decoded at once.
func WithConcurrency(n int) LoaderOption {
	return func(l *Loader) {
		if n > 0 {
			l.concurrency = n
		}
	}
}

// WithLoadTimeout bounds the time spent on a single image.
func WithLoadTimeout(d time.Duration) LoaderOption {
	return func(l *Loader) {
		if d > 0 {
			l.timeout = d
		}
	}
}

// WithMaxDimension bounds the width and height of a decoded logo.
func WithMaxDimension(px int) LoaderOption {
	return func(l *Loader) {
		if px > 0 {
			l.maxDim = px
		}
	}
}

// Loader resolves logo images into texture results off the caller's
// goroutine.
type Loader struct {
	source      ImageSource
	logger      logging.Logger
	concurrency int
	timeout     time.Duration
	maxDim      int
}

// NewLoader creates a Loader reading from source.
func NewLoader(source ImageSource, logger logging.Logger, opts ...LoaderOption) *Loader {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	l := &Loader{source: source, logger: logger.Named("texture-loader"), concurrency: 4, timeout: 10 * time.Second, maxDim: DefaultMaxLogoDimension}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Future is the pending outcome of a Load call.
type Future struct {
	done    chan struct{}
	once    sync.Once
	results []customization.TextureResult
}

// Done is closed when every image has been attempted.
func (f *Future) Done() <-chan struct{} { return f.done }

// Wait blocks until the batch completes or ctx ends.  Results are in the
// order the logos were given.
func (f *Future) Wait(ctx context.Context) ([]customization.TextureResult, error) {
	select {
	case <-f.done:
		return f.results, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *Future) resolve(results []customization.TextureResult) {
	f.once.Do(func() {
		f.results = results
		close(f.done)
	})
}

// Load starts decoding every logo and returns immediately.  A failing image
// yields a TextureFailed result; it never fails the batch.  Logos cut short by
// ctx or the per-image timeout come back TexturePending, which ApplyTextures
// ignores, so they are retried by the next load.
func (l *Loader) Load(ctx context.Context, logos []customization.LogoAsset) *Future {
	f := &Future{done: make(chan struct{})}
	results := make([]customization.TextureResult, len(logos))

	go func() {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(l.concurrency)
		for i, logo := range logos {
			g.Go(func() error {
				results[i] = l.loadOne(gctx, logo)
				return nil
			})
		}
		_ = g.Wait()
		f.resolve(results)
	}()
	return f
}

func (l *Loader) loadOne(ctx context.Context, logo customization.LogoAsset) customization.TextureResult {
	start := time.Now()
	res := customization.TextureResult{LogoID: logo.ID}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	fail := func(reason string, err error) customization.TextureResult {
		if ctx.Err() != nil {
			l.logger.Debug("logo texture load interrupted",
				logging.LogoID(string(logo.ID)),
				logging.Err(ctx.Err()),
			)
			res.Status = customization.TextureStatus{State: customization.TexturePending, Reason: "interrupted"}
			return res
		}
		l.logger.Warn("logo texture unavailable",
			logging.LogoID(string(logo.ID)),
			logging.String("reason", reason),
			logging.Err(err),
		)
		res.Status = customization.TextureStatus{State: customization.TextureFailed, Reason: reason}
		return res
	}

	if err := ctx.Err(); err != nil {
		return fail("interrupted", err)
	}
	rc, err := l.source.Open(ctx, logo.ImageRef)
	if err != nil {
		return fail("open", err)
	}
	defer rc.Close()

	img, _, err := DecodeLogo(rc, l.maxDim)
	if err != nil {
		return fail("decode", err)
	}
	b := img.Bounds()
	res.Status = customization.TextureStatus{State: customization.TextureReady, Width: b.Dx(), Height: b.Dy()}
	logging.LogOperationDuration(l.logger, "load_logo_texture", start, time.Second, logging.LogoID(string(logo.ID)))
	return res
}

//Personal.AI order the ending
