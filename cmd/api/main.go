package main

import (
	"context"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	httpadapter "github.com/audioscribe/audioscribe/internal/adapters/http"
	"github.com/audioscribe/audioscribe/internal/bootstrap"
	"github.com/audioscribe/audioscribe/internal/config"
	"github.com/audioscribe/audioscribe/internal/observability/logging"
	"github.com/audioscribe/audioscribe/internal/observability/metrics"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("api", cfg.LogLevel, cfg.LogFile))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPServerMetrics(registry, "api")
	pipelineMetrics := metrics.NewPipelineMetrics(registry, "api")

	app := bootstrap.New(cfg, "api", pipelineMetrics)
	api := httpadapter.NewRouter(app.Service).Handler()

	mux := http.NewServeMux()
	mux.Handle("/metrics", httpMetrics.Handler())
	mux.Handle("/", httpMetrics.Middleware("api", api))

	// Pipeline requests hold the connection for the whole run, which can
	// legitimately take many minutes of download plus transcription wait.
	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.APIHost, cfg.APIPort),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("api listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api shutdown error", "error", err)
	}
}
