// Storefront Gateway - authenticated proxy between storefront clients and
// the external commerce API. Stateless; designed for Cloud Run deployment.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storefront-gateway/internal/config"
	"storefront-gateway/internal/handler"
	"storefront-gateway/internal/middleware"
	"storefront-gateway/internal/observability"
	"storefront-gateway/internal/session"
	"storefront-gateway/internal/upstream"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := observability.InitLogger(cfg.LogLevel, cfg.IsProduction())
	logger.Info("configuration loaded",
		slog.String("environment", cfg.Environment),
		slog.String("gateway_id", cfg.GatewayID),
		slog.String("upstream", cfg.Secrets.UpstreamURL),
	)

	up, err := upstream.New(upstream.Config{
		BaseURL: cfg.Secrets.UpstreamURL,
		APIKey:  cfg.Secrets.UpstreamAPIKey,
	})
	if err != nil {
		return fmt.Errorf("creating upstream client: %w", err)
	}

	sessions := session.NewManager(cfg.Secrets.SessionSecret, cfg.IsProduction())
	h := handler.New(up, sessions, logger)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst)
	defer rateLimiter.Stop()

	r := chi.NewRouter()
	// Metrics lives on the router so it can label by matched route pattern.
	r.Use(middleware.Metrics())

	h.Routes(r)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Recovery must be outermost to catch panics from the other middleware.
	stack := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logging(logger),
		rateLimiter.Middleware(),
	)(r)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      stack,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", slog.String("addr", server.Addr))
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-shutdown:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			server.Close()
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	logger.Info("server stopped")
	return nil
}
