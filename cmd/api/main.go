package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/folio-dev/portfolio-api/config"
	"github.com/folio-dev/portfolio-api/internal/notify"
	"github.com/folio-dev/portfolio-api/internal/server"
	"github.com/folio-dev/portfolio-api/internal/services"
	"github.com/folio-dev/portfolio-api/pkg/httpclient"
	"github.com/folio-dev/portfolio-api/pkg/logger"
	"github.com/folio-dev/portfolio-api/pkg/metrics"
	"github.com/folio-dev/portfolio-api/pkg/profiling"
	"github.com/folio-dev/portfolio-api/pkg/tracing"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.IsDevelopment(),
		LogDir:      cfg.FileLogDir(),
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting portfolio API",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
	)

	tracerShutdown, err := tracing.InitTracer(cfg.Observability, cfg.Server.AppEnv)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	stopProfiler, err := profiling.InitProfiler(cfg.Profiling, cfg.Observability, cfg.Server.AppEnv)
	if err != nil {
		logger.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer stopProfiler()

	metrics.RecordInfrastructureMetrics()

	// Credentials are never logged, only whether each channel is on.
	logger.Info("Notification channels",
		zap.Bool("chat", cfg.Notify.ChatEnabled()),
		zap.Bool("email", cfg.Notify.EmailEnabled()),
		zap.Duration("channel_timeout", cfg.Notify.ChannelTimeout),
	)
	if !cfg.Notify.ChatEnabled() && !cfg.Notify.EmailEnabled() {
		logger.Warn("No notification channel configured; every submission will fail with 500")
	}

	// The client timeout is a backstop; each attempt carries its own deadline.
	httpClient := httpclient.NewStandardClient(2 * cfg.Notify.ChannelTimeout)
	dispatcher := notify.NewDispatcher(cfg.Notify.ChannelTimeout,
		notify.NewChannelsFromConfig(cfg.Notify, httpClient, nil)...)
	contactService := services.NewContactService(dispatcher)

	router := server.NewRouter(cfg, server.Deps{ContactService: contactService})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.Notify.ChannelTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// In-flight submissions get long enough to finish their channel attempts
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Notify.ChannelTimeout+time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
