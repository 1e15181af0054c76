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

	"github.com/xenixjr/webrisk-demo-repo/internal/config"
	"github.com/xenixjr/webrisk-demo-repo/internal/handler"
	"github.com/xenixjr/webrisk-demo-repo/internal/middleware"
	"github.com/xenixjr/webrisk-demo-repo/internal/service/webrisk"
)

func main() {
	cfg := config.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})))

	// Services
	client := webrisk.NewClient(cfg.WebRiskEndpoint, cfg.WebRiskAPIKey, cfg.ProjectNumber)

	// Handlers
	scanHandler := handler.NewScanHandler(client)
	submissionHandler := handler.NewSubmissionHandler(client)
	healthHandler := handler.NewHealthHandler()

	// Router
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(cfg.CORSAllowOrigin))
	r.Use(middleware.Logger)
	r.Use(middleware.Recovery)

	healthHandler.RegisterRoutes(r)
	r.Route("/api", func(r chi.Router) {
		scanHandler.RegisterRoutes(r)
		submissionHandler.RegisterRoutes(r)
	})

	// Server with graceful shutdown
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "port", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	// Give in-flight requests time to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}
