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
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/histmap/internal/api"
	"github.com/starford/histmap/internal/history"
	"github.com/starford/histmap/internal/index"
	"github.com/starford/histmap/internal/journeyservice"
	"github.com/starford/histmap/internal/mcpserver"
	"github.com/starford/histmap/internal/metrics"
	"github.com/starford/histmap/internal/mindmap"
	"github.com/starford/histmap/internal/sse"
	"github.com/starford/histmap/internal/storage"
)

// historyDebounce coalesces the burst of writes a browser makes when it
// flushes its history database.
const historyDebounce = 500 * time.Millisecond

// components are the long-lived pieces shared by every run mode.
type components struct {
	logger *slog.Logger
	store  *storage.FS
	db     *index.DB
	source history.Source
	svc    *journeyservice.Service
}

func (c *components) Close() error {
	return c.db.Close()
}

func (a *application) open(logOut io.Writer) (*components, error) {
	if a.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := a.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("history_driver", cfg.History.Driver),
		slog.String("history_path", cfg.History.Path),
		slog.String("journeys_path", cfg.Journeys.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	if err := os.MkdirAll(cfg.Journeys.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create journeys dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Journeys.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	source, err := history.Open(cfg.History.Driver, cfg.History.Path)
	if err != nil {
		return nil, fmt.Errorf("init history source: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	if err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	svc := journeyservice.NewService(store, db, source, journeyservice.Settings{
		Window:     cfg.History.Window,
		MaxResults: cfg.History.MaxResults,
		Canvas:     cfg.Layout.Canvas(),
	}, logger)

	return &components{
		logger: logger,
		store:  store,
		db:     db,
		source: source,
		svc:    svc,
	}, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := newApplication(opts)

	c, err := app.open(os.Stdout)
	if err != nil {
		return err
	}
	defer c.Close()

	cfg := app.config
	logger := c.logger

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()
	c.svc.OnChange(broker.PublishJourneyEvent)

	apiRouter := api.NewRouter(c.svc, api.RouterOptions{
		AuthEnabled:    cfg.Auth.AuthEnabled(),
		Token:          cfg.Auth.Token,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Events:         broker,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, _, err := c.db.ListJourneys(1, 0, ""); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"index unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", metrics.Handler())

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Journey directory watcher feeds the SSE broker.
	g.Go(func() error {
		if err := index.Watch(gCtx, c.db, c.store, cfg.Journeys.Path, logger, broker.PublishJourneyEvent); err != nil {
			logger.Warn("journey watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

	if cfg.History.Watch {
		g.Go(func() error {
			err := history.WatchFile(gCtx, cfg.History.Path, historyDebounce, logger, func() {
				logger.Debug("history source changed")
				broker.PublishHistoryUpdated()
			})
			if err != nil {
				logger.Warn("history watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
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

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return context.Canceled
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the MCP tools over stdio. Logs go to stderr since stdout is
// the protocol channel.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := newApplication(opts)

	c, err := app.open(os.Stderr)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := index.Watch(gCtx, c.db, c.store, app.config.Journeys.Path, c.logger, nil); err != nil {
			c.logger.Warn("journey watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})
	g.Go(func() error {
		// stdin closed or signal received: stop the watcher too.
		defer cancel()
		return mcpserver.New(c.svc, app.version).ServeStdio()
	})
	return g.Wait()
}

// CurrentGraph reads the configured history source once and lays it out.
// It does not touch the journey store.
func CurrentGraph(ctx context.Context, opts ...Option) (*mindmap.Graph, error) {
	app := newApplication(opts)
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	source, err := history.Open(cfg.History.Driver, cfg.History.Path)
	if err != nil {
		return nil, err
	}
	q := history.Window(time.Now(), cfg.History.Window, cfg.History.MaxResults)
	records, err := source.Recent(ctx, q)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	return mindmap.Build(history.Classify(records, logger), cfg.Layout.Canvas())
}
