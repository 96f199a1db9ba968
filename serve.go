package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/qrstudio/internal/config"
	"github.com/cristianadrielbraun/qrstudio/internal/generator"
	"github.com/cristianadrielbraun/qrstudio/internal/handlers"
	"github.com/cristianadrielbraun/qrstudio/internal/history"
	"github.com/cristianadrielbraun/qrstudio/internal/logger"
	"github.com/cristianadrielbraun/qrstudio/internal/qrgen"
	"github.com/cristianadrielbraun/qrstudio/internal/storage"
)

// runServe wires config, storage, history and the generator into the gin server.
func runServe(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	slog.SetDefault(log)
	log.Info("starting qrstudio", "version", version, "addr", cfg.Addr(), "delivery", cfg.Delivery, "encoder", cfg.Encoder)

	enc, err := qrgen.New(cfg.Encoder)
	if err != nil {
		return err
	}

	genOpts := []generator.Option{
		generator.WithLogger(log),
		generator.WithTimeout(cfg.RenderTimeout.Duration),
		generator.WithConcurrency(cfg.RenderConcurrency),
	}
	handlerOpts := []handlers.Option{
		handlers.WithLogger(log),
		handlers.WithCanvasSize(cfg.CanvasSize),
		handlers.WithMaxLogoBytes(cfg.MaxLogoBytes),
		handlers.WithUploadMemory(cfg.UploadMemory),
	}

	store, err := newStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	if store != nil {
		genOpts = append(genOpts, generator.WithStorage(store))
		handlerOpts = append(handlerOpts, handlers.WithStorage(store))
	}

	if cfg.HistoryDB != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.HistoryDB), 0o755); err != nil {
			return fmt.Errorf("create history dir: %w", err)
		}
		hs, err := history.Open(ctx, cfg.HistoryDB)
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer hs.Close()
		genOpts = append(genOpts, generator.WithRecorder(hs))
		handlerOpts = append(handlerOpts, handlers.WithHistory(hs))
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(handlers.RequestLogger(log))
	r.Use(gin.Recovery())

	if local, ok := store.(*storage.Local); ok && strings.HasPrefix(cfg.PublicURL, "/") {
		r.Static(strings.TrimSuffix(cfg.PublicURL, "/"), local.Dir())
	}

	handlers.New(generator.New(enc, genOpts...), handlerOpts...).Register(r)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-sigCtx.Done():
	}

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}
	log.Info("goodbye")
	return nil
}

func newLogger(cfg *config.Config) (*slog.Logger, error) {
	opts := []logger.Option{logger.WithEnvironment(cfg.Env, "qrstudio")}
	if cfg.LogLevel != "" {
		lvl, err := logger.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		opts = append(opts, logger.WithLevel(lvl))
	}
	if cfg.LogFormat != "" {
		opts = append(opts, logger.WithFormat(logger.Format(cfg.LogFormat)))
	}
	return logger.New(opts...), nil
}

// newStorage returns nil when codes are delivered as data URLs.
func newStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	if cfg.Delivery != "file" {
		return nil, nil
	}
	switch cfg.Storage {
	case "s3":
		return storage.NewS3(ctx, storage.S3Config{
			Bucket:         cfg.S3.Bucket,
			Region:         cfg.S3.Region,
			AccessKeyID:    cfg.S3.AccessKeyID,
			SecretKey:      cfg.S3.SecretKey,
			Endpoint:       cfg.S3.Endpoint,
			BaseURL:        cfg.S3.BaseURL,
			Prefix:         cfg.S3.Prefix,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
	default:
		return storage.NewLocal(cfg.PublicDir, cfg.PublicURL)
	}
}
