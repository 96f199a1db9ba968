// Package generator runs the full pipeline: content payload, module grid,
// styled raster, optional logo, encoded bytes and finally a URL.
package generator

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/cristianadrielbraun/qrstudio/internal/content"
	"github.com/cristianadrielbraun/qrstudio/internal/history"
	"github.com/cristianadrielbraun/qrstudio/internal/imgenc"
	"github.com/cristianadrielbraun/qrstudio/internal/logo"
	"github.com/cristianadrielbraun/qrstudio/internal/qrgen"
	"github.com/cristianadrielbraun/qrstudio/internal/raster"
	"github.com/cristianadrielbraun/qrstudio/internal/storage"
)

const (
	// DefaultTimeout bounds one Generate call when WithTimeout is not given.
	DefaultTimeout = 5 * time.Second
	// DefaultConcurrency is how many renders may run at once by default.
	DefaultConcurrency = 8
)

// Recorder stores a line of history per generated code.
type Recorder interface {
	Save(ctx context.Context, r history.Record) error
}

// Request is one render job.
type Request struct {
	Content content.Request
	Style   raster.Style
	Level   qrgen.Level
	Format  imgenc.Format
	Logo    []byte
}

// Result is a finished render.
type Result struct {
	ID          string
	URL         string
	Style       raster.StyleID
	Format      imgenc.Format
	ContentType string
	Data        []byte
	// Fallback is set when the requested style could not be drawn and a
	// plainer rendering was delivered instead.
	Fallback bool
	// LogoApplied is false when a logo was supplied but dropped.
	LogoApplied bool

	storageKey string
}

// Generator is safe for concurrent use.
type Generator struct {
	enc      qrgen.Encoder
	store    storage.Storage
	recorder Recorder
	logger   *slog.Logger
	sem      *semaphore.Weighted
	timeout  time.Duration
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger for fallback and logo warnings. Nil keeps
// slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithStorage switches delivery from data URLs to stored files.
func WithStorage(s storage.Storage) Option {
	return func(g *Generator) { g.store = s }
}

// WithRecorder saves a history record after each delivered code.
func WithRecorder(r Recorder) Option {
	return func(g *Generator) { g.recorder = r }
}

// WithTimeout overrides DefaultTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(g *Generator) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithConcurrency bounds the number of renders running at once.
func WithConcurrency(n int64) Option {
	return func(g *Generator) {
		if n > 0 {
			g.sem = semaphore.NewWeighted(n)
		}
	}
}

// New returns a Generator that encodes with enc and delivers data URLs
// unless WithStorage is given.
func New(enc qrgen.Encoder, opts ...Option) *Generator {
	g := &Generator{
		enc:     enc,
		logger:  slog.Default(),
		sem:     semaphore.NewWeighted(DefaultConcurrency),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate validates the request, renders it and delivers the result as a
// data URL or a stored file URL.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	res, err := g.run(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := g.deliver(ctx, res); err != nil {
		return nil, err
	}
	g.record(ctx, req, res)
	return res, nil
}

// Render is Generate without delivery: the result carries the encoded bytes
// and an empty URL, and nothing is stored or recorded.
func (g *Generator) Render(ctx context.Context, req Request) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.run(ctx, req)
}

// run validates, waits for a render slot and renders under ctx.
func (g *Generator) run(ctx context.Context, req Request) (*Result, error) {
	if err := validateStyle(req.Style); err != nil {
		return nil, err
	}
	payload, err := content.Encode(req.Content)
	if err != nil {
		return nil, err
	}
	if payload == "" {
		return nil, &content.ValidationError{Field: "content", Message: "no content provided"}
	}

	if err := g.sem.Acquire(ctx, 1); err != nil {
		return nil, g.ctxError(ctx, err)
	}

	type outcome struct {
		res *Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		defer g.sem.Release(1)
		defer func() {
			if r := recover(); r != nil {
				g.logger.Error("render panicked",
					slog.String("style", string(req.Style.ID)),
					slog.Any("panic", r),
				)
				done <- outcome{err: &raster.RasterizationError{
					Style: req.Style.ID,
					Err:   fmt.Errorf("%w: %v", raster.ErrModulePanic, r),
				}}
			}
		}()
		res, err := g.render(payload, req)
		done <- outcome{res, err}
	}()

	select {
	case <-ctx.Done():
		g.logger.Warn("render abandoned",
			slog.String("style", string(req.Style.ID)),
			slog.Duration("timeout", g.timeout),
		)
		return nil, g.ctxError(ctx, ctx.Err())
	case out := <-done:
		return out.res, out.err
	}
}

func validateStyle(s raster.Style) error {
	if _, err := raster.ParseStyleID(string(s.ID)); err != nil {
		return &content.ValidationError{Field: "qrStyle", Message: err.Error()}
	}
	if _, err := raster.ParseWhiteMode(string(s.WhiteMode)); err != nil {
		return &content.ValidationError{Field: "whiteQrMode", Message: err.Error()}
	}
	if s.CanvasSize <= 0 {
		return &content.ValidationError{Field: "size", Message: raster.ErrInvalidCanvas.Error()}
	}
	return nil
}

func (g *Generator) ctxError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrTimeout, g.timeout)
	}
	return err
}

// render runs the CPU-bound part of the pipeline. It holds no shared state.
func (g *Generator) render(payload string, req Request) (*Result, error) {
	s := req.Style
	if s.ID == "" {
		s.ID = raster.StyleClassic
	}
	level := req.Level.Resolve(len(req.Logo) > 0)

	grid, err := g.enc.Encode(payload, level)
	if err != nil {
		if errors.Is(err, qrgen.ErrEncode) {
			return nil, &content.ValidationError{Field: "content", Message: "content too long to encode"}
		}
		return nil, err
	}

	img, fallback := g.rasterize(grid, s, payload, level)

	logoApplied := false
	if len(req.Logo) > 0 {
		switch {
		case s.ID != raster.StyleClassic:
			g.logger.Debug("logo ignored for style", slog.String("style", string(s.ID)))
		case fallback:
			g.logger.Warn("logo dropped on fallback rendering")
		default:
			if out, err := applyLogo(img, req.Logo); err != nil {
				g.logger.Warn("logo dropped", slog.String("error", err.Error()))
			} else {
				img, logoApplied = out, true
			}
		}
	}

	format := req.Format
	if format == "" {
		format = imgenc.PNG
	}
	data, err := imgenc.Encode(img, format, matte(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}

	return &Result{
		ID:          uuid.NewString(),
		Style:       s.ID,
		Format:      format,
		ContentType: format.ContentType(),
		Data:        data,
		Fallback:    fallback,
		LogoApplied: logoApplied,
	}, nil
}

// rasterize draws the requested style, falling back to classic, then to the
// encoder's own rendering scaled up to the canvas and finally to the
// unstyled one-pixel-per-module symbol.
func (g *Generator) rasterize(grid raster.Grid, s raster.Style, payload string, level qrgen.Level) (*image.RGBA, bool) {
	img, err := raster.Rasterize(grid, s, raster.WithLogger(g.logger))
	if err == nil {
		return img, false
	}
	g.logger.Warn("styled rasterization failed", slog.String("style", string(s.ID)), slog.String("error", err.Error()))

	if s.ID != raster.StyleClassic {
		classic := s
		classic.ID = raster.StyleClassic
		if img, err := raster.Rasterize(grid, classic, raster.WithLogger(g.logger)); err == nil {
			return img, true
		}
	}

	if br, ok := g.enc.(qrgen.BaseRenderer); ok && !s.Transparent {
		base, err := br.Base(payload, level, s.Dark, s.Light)
		if err == nil {
			size := base.Bounds().Dx()
			if s.CanvasSize >= size {
				size = s.CanvasSize
			}
			return raster.ScaleNearest(base, size), true
		}
		g.logger.Warn("base rendering failed", slog.String("error", err.Error()))
	}
	return raster.Native(grid, s.Dark, s.Light, s.Transparent), true
}

func applyLogo(img *image.RGBA, data []byte) (*image.RGBA, error) {
	l, err := logo.Decode(data)
	if err != nil {
		return nil, err
	}
	return logo.Composite(img, l)
}

// matte is the color transparent pixels become in formats without alpha.
func matte(s raster.Style) color.Color {
	if bg := s.Background(); bg.A == 0xff {
		return bg
	}
	return color.White
}

func (g *Generator) deliver(ctx context.Context, res *Result) error {
	if g.store == nil {
		res.URL = imgenc.DataURL(res.Data, res.Format)
		return nil
	}
	name := storage.UniqueName(string(res.Style), res.Format.Ext())
	url, err := g.store.Save(ctx, name, res.Data, res.ContentType)
	if err != nil {
		if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
			return fmt.Errorf("%w after %s", ErrTimeout, g.timeout)
		}
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	res.URL = url
	res.storageKey = name
	return nil
}

func (g *Generator) record(ctx context.Context, req Request, res *Result) {
	if g.recorder == nil {
		return
	}
	kind := ""
	if req.Content != nil {
		kind = string(req.Content.Kind())
	}
	rec := history.Record{
		ID:          res.ID,
		ContentType: kind,
		Style:       string(res.Style),
		Format:      string(res.Format),
		URL:         res.URL,
		StorageKey:  res.storageKey,
		CreatedAt:   time.Now(),
	}
	if g.store == nil {
		// data URLs are not worth keeping
		rec.URL = ""
	}
	if err := g.recorder.Save(ctx, rec); err != nil {
		g.logger.Warn("history not saved", slog.String("id", res.ID), slog.String("error", err.Error()))
	}
}
