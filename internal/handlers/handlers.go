// Package handlers exposes the generator over HTTP with gin.
package handlers

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/qrstudio/internal/generator"
	"github.com/cristianadrielbraun/qrstudio/internal/history"
	"github.com/cristianadrielbraun/qrstudio/internal/logo"
	"github.com/cristianadrielbraun/qrstudio/internal/raster"
	"github.com/cristianadrielbraun/qrstudio/internal/storage"
)

// DefaultUploadMemory is how much of a multipart body is kept in memory
// before parts spill to temp files.
const DefaultUploadMemory = 1 << 20

// History is the part of the history store the handlers use.
type History interface {
	Recent(ctx context.Context, limit int) ([]history.Record, error)
	Get(ctx context.Context, id string) (history.Record, error)
	Delete(ctx context.Context, id string) error
}

// Handler holds the dependencies of the HTTP handlers.
type Handler struct {
	gen          *generator.Generator
	history      History
	store        storage.Storage
	logger       *slog.Logger
	canvasSize   int
	maxLogoBytes int64
	uploadMemory int64
}

type Option func(*Handler)

func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithHistory enables the /api/codes endpoints.
func WithHistory(hs History) Option {
	return func(h *Handler) { h.history = hs }
}

// WithStorage lets DELETE /api/codes/:id remove the stored file as well.
func WithStorage(s storage.Storage) Option {
	return func(h *Handler) { h.store = s }
}

func WithCanvasSize(px int) Option {
	return func(h *Handler) {
		if px > 0 {
			h.canvasSize = px
		}
	}
}

func WithMaxLogoBytes(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxLogoBytes = n
		}
	}
}

func WithUploadMemory(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.uploadMemory = n
		}
	}
}

// New returns a Handler around gen.
func New(gen *generator.Generator, opts ...Option) *Handler {
	h := &Handler{
		gen:          gen,
		logger:       slog.Default(),
		canvasSize:   raster.DefaultCanvasSize,
		maxLogoBytes: logo.DefaultMaxBytes,
		uploadMemory: DefaultUploadMemory,
	}
	for _, opt := range opts {
		opt(h)
	}
	useFormFieldNames()
	return h
}

// Register mounts the routes on r.
func (h *Handler) Register(r gin.IRouter) {
	r.POST("/generate", h.Generate)

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/qr", h.QRCodeHandler)
		api.POST("/generate", h.Generate)
		api.POST("/htmx/generate", h.GenerateFragment)
		if h.history != nil {
			api.GET("/codes", h.ListCodes)
			api.DELETE("/codes/:id", h.DeleteCode)
		}
	}
}
