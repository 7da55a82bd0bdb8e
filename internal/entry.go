// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/almanac/internal/api"
	"github.com/starford/almanac/internal/archive"
	"github.com/starford/almanac/internal/index"
	"github.com/starford/almanac/internal/mcpserver"
	"github.com/starford/almanac/internal/metrics"
	"github.com/starford/almanac/internal/models"
	"github.com/starford/almanac/internal/partition"
	"github.com/starford/almanac/internal/search"
	"github.com/starford/almanac/internal/sse"
	"github.com/starford/almanac/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func newApplication(opts []Option) (*application, error) {
	app := &application{now: time.Now, logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// logger builds the structured JSON logger and installs it as the default.
func (a *application) logger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(a.logOutput, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// runtime is the set of long-lived components every command shares.
type runtime struct {
	store *storage.FS
	db    *index.DB
	svc   *archive.Service
}

func (a *application) open(logger *slog.Logger, m *metrics.Metrics) (*runtime, error) {
	cfg := a.config

	if err := os.MkdirAll(cfg.Store.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	store, err := storage.NewFS(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	cacheOpts := []search.CacheOption{
		search.WithLoadErrorHook(func(err error) {
			logger.Warn("slug cache: serving stale slugs", slog.String("error", err.Error()))
		}),
	}
	if m != nil {
		cacheOpts = append(cacheOpts, search.WithRefreshHook(m.SlugCacheRefreshed))
	}
	cache := search.NewSlugCache(db.AuthorSlugs, cfg.Search.SlugCacheTTL, cacheOpts...)

	svc := archive.NewService(store, db, cache,
		archive.WithClock(a.now),
		archive.WithLogger(logger),
		archive.WithSearchLimits(cfg.Search.DefaultLimit, cfg.Search.MaxLimit),
	)
	return &runtime{store: store, db: db, svc: svc}, nil
}

// Run starts the HTTP server and the store watcher with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger()

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("store_path", cfg.Store.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	m := metrics.New()
	rt, err := app.open(logger, m)
	if err != nil {
		return err
	}
	defer rt.db.Close()

	// Initial sync; serving continues on failure with whatever is indexed.
	if _, err := rt.svc.Reindex(ctx); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(m.Middleware)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := rt.svc.SlugCache().Get(req.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", m.Handler())

	r.Get("/api/events", broker.ServeHTTP)
	r.Mount("/api", api.NewRouter(rt.svc, m.ObserveSearch))

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Store watcher: keep the index current and drop cached slugs when an
	// author object changes.
	g.Go(func() error {
		err := index.Watch(gCtx, rt.db, rt.store, logger, func(kind, key string) {
			m.IndexChanged(kind, key)
			broker.PublishChange(kind, key)
			if strings.HasPrefix(key, models.AuthorsPrefix) {
				rt.svc.SlugCache().Invalidate()
			}
		})
		if err != nil {
			logger.Warn("watcher disabled", slog.String("error", err.Error()))
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		// Open event streams only end when their channels close.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the watcher stops with the server.
var errShutdown = errors.New("shutdown")

// Reindex reconciles the catalogue with the store once and exits.
func Reindex(ctx context.Context, opts ...Option) (int, error) {
	app, err := newApplication(opts)
	if err != nil {
		return 0, err
	}
	logger := app.logger()
	rt, err := app.open(logger, nil)
	if err != nil {
		return 0, err
	}
	defer rt.db.Close()
	return rt.svc.Reindex(ctx)
}

// RunMCP serves the archive over MCP on stdin/stdout. Logs go to stderr.
func RunMCP(ctx context.Context, version string, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	logger := app.logger()
	rt, err := app.open(logger, nil)
	if err != nil {
		return err
	}
	defer rt.db.Close()

	if _, err := rt.svc.Reindex(ctx); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}
	logger.Info("mcp: serving on stdio")
	return mcpserver.New(rt.svc, version).ServeStdio()
}

// PartitionOptions are the command-line settings of a partition run.
type PartitionOptions struct {
	Input   io.Reader
	Workers int
	Prune   bool
}

// RunPartition splits the author mapping into store objects and then
// reindexes so a running server's catalogue and a fresh one agree.
func RunPartition(ctx context.Context, p PartitionOptions, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := app.logger()
	rt, err := app.open(logger, nil)
	if err != nil {
		return err
	}
	defer rt.db.Close()

	workers := p.Workers
	if workers <= 0 {
		workers = app.config.Partition.Workers
	}
	manifest, err := partition.Run(ctx, p.Input, rt.store, partition.Options{
		Workers: workers,
		Prune:   p.Prune,
		Now:     app.now,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	n, err := rt.svc.Reindex(ctx)
	if err != nil {
		return err
	}
	logger.Info("partition: indexed",
		slog.Int("files", len(manifest.Files)),
		slog.Int("authors", n))
	return nil
}
