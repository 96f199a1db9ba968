package generator_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianadrielbraun/qrstudio/internal/content"
	"github.com/cristianadrielbraun/qrstudio/internal/generator"
	"github.com/cristianadrielbraun/qrstudio/internal/history"
	"github.com/cristianadrielbraun/qrstudio/internal/imgenc"
	"github.com/cristianadrielbraun/qrstudio/internal/logger"
	"github.com/cristianadrielbraun/qrstudio/internal/qrgen"
	"github.com/cristianadrielbraun/qrstudio/internal/raster"
	"github.com/cristianadrielbraun/qrstudio/internal/storage"
)

// countingEncoder wraps the yeqown encoder, records calls and can be slowed down.
// It does not implement qrgen.BaseRenderer, so fallbacks skip the base image.
type countingEncoder struct {
	delay time.Duration
	calls atomic.Int32

	mu     sync.Mutex
	levels []qrgen.Level
}

func (e *countingEncoder) Name() string { return "counting" }

func (e *countingEncoder) Encode(text string, level qrgen.Level) (raster.Grid, error) {
	e.calls.Add(1)
	e.mu.Lock()
	e.levels = append(e.levels, level)
	e.mu.Unlock()
	if e.delay > 0 {
		time.Sleep(e.delay)
	}
	return qrgen.Yeqown{}.Encode(text, level)
}

func (e *countingEncoder) lastLevel() qrgen.Level {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.levels[len(e.levels)-1]
}

// baseOnlyEncoder yields an empty grid so every styled path fails and the
// encoder's own base rendering is used.
type baseOnlyEncoder struct{}

func (baseOnlyEncoder) Name() string { return "base-only" }

func (baseOnlyEncoder) Encode(string, qrgen.Level) (raster.Grid, error) {
	return raster.Grid{}, nil
}

func (baseOnlyEncoder) Base(text string, level qrgen.Level, dark, light color.RGBA) (image.Image, error) {
	return qrgen.Yeqown{}.Base(text, level, dark, light)
}

// panicOnceEncoder panics on its first Encode and behaves normally after.
type panicOnceEncoder struct {
	panicked atomic.Bool
}

func (e *panicOnceEncoder) Name() string { return "panic-once" }

func (e *panicOnceEncoder) Encode(text string, level qrgen.Level) (raster.Grid, error) {
	if e.panicked.CompareAndSwap(false, true) {
		panic("encoder exploded")
	}
	return qrgen.Yeqown{}.Encode(text, level)
}

type memoryRecorder struct {
	mu      sync.Mutex
	records []history.Record
}

func (m *memoryRecorder) Save(_ context.Context, r history.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, r)
	return nil
}

func newGenerator(enc qrgen.Encoder, opts ...generator.Option) *generator.Generator {
	return generator.New(enc, append([]generator.Option{generator.WithLogger(logger.Discard())}, opts...)...)
}

func urlRequest(style raster.StyleID) generator.Request {
	s := raster.DefaultStyle()
	s.ID = style
	return generator.Request{
		Content: content.Link{URL: "example.com"},
		Style:   s,
	}
}

func decodeDataURL(t *testing.T, u string) image.Image {
	t.Helper()
	const prefix = "data:image/png;base64,"
	require.True(t, strings.HasPrefix(u, prefix), u[:min(len(u), 40)])
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(u, prefix))
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func logoPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{255, 0, 0, 255}}, image.Point{}, draw.Src)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestGenerateDataURL(t *testing.T) {
	t.Parallel()

	for _, style := range []raster.StyleID{raster.StyleClassic, raster.StyleGlassmorphismDots, raster.StylePixelPerfect} {
		t.Run(string(style), func(t *testing.T) {
			t.Parallel()
			res, err := newGenerator(qrgen.Yeqown{}).Generate(context.Background(), urlRequest(style))
			require.NoError(t, err)

			assert.Equal(t, style, res.Style)
			assert.False(t, res.Fallback)
			assert.NotEmpty(t, res.ID)
			assert.Equal(t, "image/png", res.ContentType)

			img := decodeDataURL(t, res.URL)
			assert.Equal(t, image.Rect(0, 0, 512, 512), img.Bounds())
		})
	}
}

func TestGenerateStoresFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := storage.NewLocal(dir, "/qr-codes/")
	require.NoError(t, err)
	rec := &memoryRecorder{}

	g := newGenerator(qrgen.Skip2{}, generator.WithStorage(store), generator.WithRecorder(rec))
	res, err := g.Generate(context.Background(), urlRequest(raster.StylePixelPerfect))
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(res.URL, "/qr-codes/qr-pixel-perfect-"), res.URL)
	name := strings.TrimPrefix(res.URL, "/qr-codes/")
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, res.Data, data)

	require.Len(t, rec.records, 1)
	assert.Equal(t, res.ID, rec.records[0].ID)
	assert.Equal(t, "url", rec.records[0].ContentType)
	assert.Equal(t, name, rec.records[0].StorageKey)
	assert.Equal(t, res.URL, rec.records[0].URL)
}

func TestGenerateValidationSkipsRendering(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		req   content.Request
		field string
	}{
		{"wifi without ssid", content.WiFi{SSID: "", Password: "x"}, "wifi_ssid"},
		{"empty text", content.Text{}, "content"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			enc := &countingEncoder{}
			req := urlRequest(raster.StyleClassic)
			req.Content = tt.req

			_, err := newGenerator(enc).Generate(context.Background(), req)
			var verr *content.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)
			assert.Zero(t, enc.calls.Load(), "encoder must not run")
		})
	}

	t.Run("unknown style", func(t *testing.T) {
		t.Parallel()
		enc := &countingEncoder{}
		_, err := newGenerator(enc).Generate(context.Background(), urlRequest("watercolor"))
		assert.ErrorIs(t, err, content.ErrValidation)
		assert.Zero(t, enc.calls.Load())
	})

	t.Run("missing content", func(t *testing.T) {
		t.Parallel()
		req := urlRequest(raster.StyleClassic)
		req.Content = nil
		_, err := newGenerator(qrgen.Yeqown{}).Generate(context.Background(), req)
		assert.ErrorIs(t, err, content.ErrInvalidContentType)
	})
}

func TestGenerateContentTooLong(t *testing.T) {
	t.Parallel()

	req := urlRequest(raster.StyleClassic)
	req.Content = content.Text{Body: strings.Repeat("x", 4000)}
	_, err := newGenerator(qrgen.Yeqown{}).Generate(context.Background(), req)

	var verr *content.ValidationError
	require.True(t, errors.As(err, &verr), "got %v", err)
	assert.Equal(t, "content", verr.Field)
}

func TestGenerateTimeout(t *testing.T) {
	t.Parallel()

	enc := &countingEncoder{delay: 300 * time.Millisecond}
	g := newGenerator(enc, generator.WithTimeout(20*time.Millisecond))
	_, err := g.Generate(context.Background(), urlRequest(raster.StyleClassic))
	assert.ErrorIs(t, err, generator.ErrTimeout)
}

func TestGenerateConcurrencyBound(t *testing.T) {
	t.Parallel()

	enc := &countingEncoder{delay: 400 * time.Millisecond}
	g := newGenerator(enc, generator.WithConcurrency(1), generator.WithTimeout(time.Second))

	first := make(chan error, 1)
	go func() {
		_, err := g.Generate(context.Background(), urlRequest(raster.StyleClassic))
		first <- err
	}()
	require.Eventually(t, func() bool { return enc.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := g.Generate(ctx, urlRequest(raster.StyleClassic))
	assert.ErrorIs(t, err, generator.ErrTimeout, "second render waits for the slot")
	assert.Equal(t, int32(1), enc.calls.Load())

	require.NoError(t, <-first)
}

func TestGenerateFallbacks(t *testing.T) {
	t.Parallel()

	t.Run("dots too small fall back to classic", func(t *testing.T) {
		t.Parallel()
		req := urlRequest(raster.StyleGlassmorphismDots)
		req.Style.CanvasSize = 60

		res, err := newGenerator(qrgen.Yeqown{}).Generate(context.Background(), req)
		require.NoError(t, err)
		assert.True(t, res.Fallback)

		img := decodeDataURL(t, res.URL)
		assert.Equal(t, 60, img.Bounds().Dx())
		r, g, b, _ := img.At(59, 59).RGBA()
		assert.Equal(t, [3]uint32{0xffff, 0xffff, 0xffff}, [3]uint32{r, g, b}, "classic light background")
	})

	t.Run("grid larger than canvas renders natively", func(t *testing.T) {
		t.Parallel()
		enc := &countingEncoder{}
		req := urlRequest(raster.StyleClassic)
		req.Style.CanvasSize = 10

		res, err := newGenerator(enc).Generate(context.Background(), req)
		require.NoError(t, err)
		assert.True(t, res.Fallback)

		grid, err := qrgen.Yeqown{}.Encode("https://example.com", enc.lastLevel())
		require.NoError(t, err)
		img := decodeDataURL(t, res.URL)
		assert.Equal(t, grid.Size(), img.Bounds().Dx())
	})

	t.Run("base rendering scales to canvas", func(t *testing.T) {
		t.Parallel()
		req := urlRequest(raster.StyleGlassmorphismDots)
		req.Style.CanvasSize = 512

		res, err := newGenerator(baseOnlyEncoder{}).Generate(context.Background(), req)
		require.NoError(t, err)
		assert.True(t, res.Fallback)

		img := decodeDataURL(t, res.URL)
		assert.Equal(t, image.Rect(0, 0, 512, 512), img.Bounds())
		r, g, b, _ := img.At(0, 0).RGBA()
		assert.Equal(t, [3]uint32{0xffff, 0xffff, 0xffff}, [3]uint32{r, g, b}, "quiet zone stays light")
	})
}

func TestGenerateRecoversRenderPanic(t *testing.T) {
	t.Parallel()

	g := newGenerator(&panicOnceEncoder{}, generator.WithConcurrency(1), generator.WithTimeout(2*time.Second))

	_, err := g.Generate(context.Background(), urlRequest(raster.StyleClassic))
	require.Error(t, err)
	var rerr *raster.RasterizationError
	require.True(t, errors.As(err, &rerr), "%v", err)
	assert.Equal(t, raster.StyleClassic, rerr.Style)
	assert.ErrorIs(t, err, raster.ErrModulePanic)

	res, err := g.Generate(context.Background(), urlRequest(raster.StyleClassic))
	require.NoError(t, err, "slot is released after a panic")
	assert.False(t, res.Fallback)
}

func TestGenerateLogo(t *testing.T) {
	t.Parallel()

	t.Run("classic gets logo and level H", func(t *testing.T) {
		t.Parallel()
		enc := &countingEncoder{}
		req := urlRequest(raster.StyleClassic)
		req.Logo = logoPNG(t)

		res, err := newGenerator(enc).Generate(context.Background(), req)
		require.NoError(t, err)
		assert.True(t, res.LogoApplied)
		assert.Equal(t, qrgen.LevelHigh, enc.lastLevel())

		r, g, b, _ := decodeDataURL(t, res.URL).At(256, 256).RGBA()
		assert.Greater(t, r>>8, uint32(240))
		assert.Less(t, g>>8, uint32(15))
		assert.Less(t, b>>8, uint32(15))
	})

	t.Run("explicit level wins", func(t *testing.T) {
		t.Parallel()
		enc := &countingEncoder{}
		req := urlRequest(raster.StyleClassic)
		req.Logo = logoPNG(t)
		req.Level = qrgen.LevelQuart

		_, err := newGenerator(enc).Generate(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, qrgen.LevelQuart, enc.lastLevel())
	})

	t.Run("undecodable logo is dropped", func(t *testing.T) {
		t.Parallel()
		req := urlRequest(raster.StyleClassic)
		req.Logo = []byte("not a picture")

		res, err := newGenerator(qrgen.Yeqown{}).Generate(context.Background(), req)
		require.NoError(t, err)
		assert.False(t, res.LogoApplied)
	})

	t.Run("styled renders ignore the logo", func(t *testing.T) {
		t.Parallel()
		req := urlRequest(raster.StylePixelPerfect)
		req.Logo = logoPNG(t)

		res, err := newGenerator(qrgen.Yeqown{}).Generate(context.Background(), req)
		require.NoError(t, err)
		assert.False(t, res.LogoApplied)
	})
}

func TestGenerateJPEG(t *testing.T) {
	t.Parallel()

	req := urlRequest(raster.StyleClassic)
	req.Format = imgenc.JPEG
	req.Style.Transparent = true

	res, err := newGenerator(qrgen.Yeqown{}).Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", res.ContentType)
	assert.True(t, strings.HasPrefix(res.URL, "data:image/jpeg;base64,"))

	img, err := jpeg.Decode(bytes.NewReader(res.Data))
	require.NoError(t, err)
	r, _, _, _ := img.At(2, 2).RGBA()
	assert.Greater(t, r>>8, uint32(230), "transparent background flattens to white")
}

func TestRenderSkipsDelivery(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := storage.NewLocal(dir, "/qr-codes/")
	require.NoError(t, err)
	rec := &memoryRecorder{}

	g := newGenerator(qrgen.Yeqown{}, generator.WithStorage(store), generator.WithRecorder(rec))
	res, err := g.Render(context.Background(), urlRequest(raster.StyleClassic))
	require.NoError(t, err)

	assert.Empty(t, res.URL)
	img, err := png.Decode(bytes.NewReader(res.Data))
	require.NoError(t, err)
	assert.Equal(t, 512, img.Bounds().Dx())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Empty(t, rec.records)
}
