// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/muninn/internal/api"
	"github.com/starford/muninn/internal/auth"
	"github.com/starford/muninn/internal/cache"
	"github.com/starford/muninn/internal/export"
	"github.com/starford/muninn/internal/granola"
	"github.com/starford/muninn/internal/mcpserver"
	"github.com/starford/muninn/internal/meetingservice"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger. In MCP mode stdout belongs to the
	// protocol, so logs go to stderr either way.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("granola_base_url", cfg.Granola.BaseURL),
		slog.String("cache_path", cfg.Cache.Path),
		slog.Bool("mcp_mode", app.mcp),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Token source for the upstream API.
	credDir := cfg.Granola.ResolveCredentialsDir()
	tokens := auth.NewFileSource(credDir)

	// Upstream client.
	client := granola.New(cfg.Granola.BaseURL, cfg.Granola.Timeout(), tokens)

	// Local meeting cache.
	db, err := cache.Open(cfg.Cache.Path)
	if err != nil {
		return fmt.Errorf("init cache: %w", err)
	}
	defer db.Close()

	// Export directory: configured path, or a temp dir scoped to this run.
	var exports *export.Dir
	if cfg.Export.Dir != "" {
		exports, err = export.NewDir(cfg.Export.Dir)
	} else {
		exports, err = export.NewTempDir()
	}
	if err != nil {
		return fmt.Errorf("init export dir: %w", err)
	}
	defer func() {
		if err := exports.Close(); err != nil {
			logger.Warn("export dir cleanup failed", slog.String("error", err.Error()))
		}
	}()

	svc := meetingservice.NewService(client, db, exports)

	if app.mcp {
		return runMCP(ctx, svc, tokens, logger)
	}
	return runHTTP(ctx, cfg, svc, tokens, logger)
}

// runMCP serves the MCP protocol on stdin/stdout until the client hangs up.
func runMCP(ctx context.Context, svc *meetingservice.Service, tokens *auth.FileSource, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := tokens.Watch(gCtx, logger); err != nil {
			logger.Warn("credentials watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

	g.Go(func() error {
		// Stop the watcher once the client disconnects.
		defer cancel()
		logger.Info("Starting MCP server on stdio")
		return mcpserver.New(svc).ServeStdio()
	})

	return g.Wait()
}

func runHTTP(ctx context.Context, cfg *Config, svc *meetingservice.Service, tokens *auth.FileSource, logger *slog.Logger) error {
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token)

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
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Keep the upstream token fresh while Granola rotates it.
	g.Go(func() error {
		if err := tokens.Watch(gCtx, logger); err != nil {
			logger.Warn("credentials watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

	// Start HTTP server.
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

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
