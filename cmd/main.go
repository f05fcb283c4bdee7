package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/attune/internal/adapters/http/api"
	"github.com/okian/attune/internal/adapters/http/stream"
	"github.com/okian/attune/internal/app"
	"github.com/okian/attune/internal/config"
	"github.com/okian/attune/internal/domain/scoring"
	"github.com/okian/attune/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	if err := logger.Init(os.Stdout); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env).
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Telemetry hub receives every synced event and scored state.
	hub := stream.NewHub(stream.WithSendBuffer(cfg.StreamSendBuffer))

	svc, err := app.New(
		app.WithLogger(log),
		app.WithTolerance(time.Duration(cfg.SyncToleranceMS)*time.Millisecond),
		app.WithBufferCapacity(cfg.BufferCapacity),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithScoringOptions(
			scoring.WithPoseTolerance(cfg.PoseToleranceDeg),
			scoring.WithEyeThresholds(cfg.EyeOpenHigh, cfg.EyeOpenLow),
			scoring.WithLoudnessThresholds(cfg.RMSLoud, cfg.RMSQuiet),
			scoring.WithZeroCrossingThreshold(cfg.ZCRActive),
		),
		app.WithEventListener(hub.BroadcastEvent),
		app.WithStateListener(hub.BroadcastState),
	)
	if err != nil {
		os.Stderr.WriteString("failed to build service: " + err.Error() + "\n")
		return
	}
	svc.Start(ctx)
	defer svc.Stop()

	mux := http.NewServeMux()
	api.NewServer(svc).Register(ctx, mux)
	mux.HandleFunc("/ws/state", hub.HandleWS)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}
