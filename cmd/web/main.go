package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"somikra/internal/config"
	"somikra/internal/handlers"
	"somikra/internal/middleware"
	"somikra/internal/observability"
	"somikra/internal/proxy"
	"somikra/internal/server"
	"somikra/internal/services"
	"somikra/internal/tools"
	"somikra/internal/ui/templates"
)

const (
	renderTimeout = 10 * time.Second
	cacheMaxAge   = "public, max-age=300"
)

func handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", cacheMaxAge)
	if err := templates.Dashboard().Render(ctx, w); err != nil {
		http.Error(w, "render error", http.StatusInternalServerError)
	}
}

func newDeps(cfg *config.Config, sessions *services.Sessions, logger *slog.Logger) handlers.Deps {
	fetcher := proxy.NewFetcher(cfg.Proxy, logger)
	return handlers.Deps{
		Sessions:  sessions,
		Parser:    services.NewParser(cfg.Upload.Workers, logger),
		Fetcher:   fetcher,
		Tools:     tools.NewRunner(cfg.Tools, fetcher, logger),
		UploadMax: cfg.Upload.MaxBytes,
	}
}

func newHandler(cfg *config.Config, deps handlers.Deps, logger *slog.Logger) http.Handler {
	srv := server.NewServer(deps, logger, &server.TemplateHandlers{Dashboard: handleDashboard})

	rateLimiter := middleware.NewRateLimiter(cfg.Security)
	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.SameOrigin(cfg.Security, logger),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
		middleware.Session(cfg.Session),
	)
	return middlewareChain(srv)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"addr", cfg.Address(),
		"session_ttl", cfg.Session.TTL,
		"seed_mock_data", cfg.Session.SeedMockData,
	)

	sessions := services.NewSessions(cfg.Session, logger)
	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	go sessions.Run(janitorCtx)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      newHandler(cfg, newDeps(cfg, sessions, logger), logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)

	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("stopping session janitor", "sessions", sessions.Len())
		stopJanitor()
		return nil
	})

	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
