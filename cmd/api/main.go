package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/johnquangdev/consult-review/internal/adapter/handler"
	httpmw "github.com/johnquangdev/consult-review/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/consult-review/internal/usecase/review"
	"github.com/johnquangdev/consult-review/pkg/config"
	"github.com/johnquangdev/consult-review/pkg/logger"
	"github.com/johnquangdev/consult-review/pkg/metrics"
	pkgvalidator "github.com/johnquangdev/consult-review/pkg/validator"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.New(cfg.Server.Environment, cfg.Server.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zl.Sync()

	m := metrics.New(nil)

	// Initialize dependencies
	zl.Info("🔧 Initializing dependencies...")
	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	deps, err := buildDependencies(initCtx, cfg, m, zl)
	cancelInit()
	if err != nil {
		zl.Fatal("Failed to initialize dependencies", zap.Error(err))
	}
	defer deps.Close()

	// Start the review workers; job contexts derive from appCtx
	appCtx, cancelApp := context.WithCancel(context.Background())
	defer cancelApp()

	dispatcher := review.NewDispatcher(deps.pipeline, deps.registry, review.DispatcherOptions{
		Workers:    cfg.Pipeline.Workers,
		QueueSize:  cfg.Pipeline.QueueSize,
		JobTimeout: cfg.Pipeline.JobTimeout,
	}, m, zl)
	if err := dispatcher.Start(appCtx); err != nil {
		zl.Fatal("Failed to start worker pool", zap.Error(err))
	}

	// Initialize Echo instance
	e := echo.New()
	e.Validator = pkgvalidator.New()
	e.HideBanner = true

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(httpmw.Metrics(m))

	webhookHandler := handler.NewWebhookHandler(deps.registry, dispatcher, handler.WebhookOptions{
		Secret:           cfg.Zoom.WebhookSecret,
		VerifySignature:  cfg.Zoom.VerifySignature,
		SignatureMaxSkew: cfg.Zoom.SignatureMaxSkew,
		Events:           cfg.Zoom.Events,
		AudioEnabled:     cfg.Pipeline.AudioEnabled,
	}, m, zl)

	router := handler.NewRouter(cfg, webhookHandler, m)
	router.Setup(e)

	// Start server
	go func() {
		addr := cfg.GetServerAddr()
		zl.Info("🚀 Starting server",
			zap.String("addr", addr),
			zap.String("environment", cfg.Server.Environment),
			zap.Strings("events", cfg.Zoom.Events),
		)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			zl.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	zl.Info("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		zl.Error("❌ Server forced to shutdown", zap.Error(err))
	}
	if err := dispatcher.Stop(ctx); err != nil {
		zl.Warn("⚠️ Running reviews were cancelled", zap.Error(err))
	}

	zl.Info("✅ Server stopped gracefully")
}
