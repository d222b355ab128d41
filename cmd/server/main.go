package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/pension/backend/internal/bootstrap"
	"github.com/pension/backend/internal/infrastructure/config"
	"github.com/pension/backend/internal/infrastructure/logger"
	"github.com/pension/backend/internal/infrastructure/telemetry"
	"github.com/pension/backend/internal/interfaces/http/middleware"
	"github.com/pension/backend/internal/interfaces/http/router"
)

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: logger.DefaultTimeFormat,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync(log)

	log.Info("Starting pension advisor",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("snapshot_backend", cfg.Snapshot.Backend),
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	tp, err := telemetry.NewTracerProvider(cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	app, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize services", zap.Error(err))
	}

	source, err := app.LoadCatalog(ctx)
	if err != nil {
		log.Fatal("Failed to load product catalog", zap.Error(err))
	}
	log.Info("Product catalog ready",
		zap.String("source", source),
		zap.Int("products", app.Catalog.Current().Len()),
	)

	if err := app.RestoreHistory(ctx); err != nil {
		log.Warn("Recommendation history not restored", zap.Error(err))
	}

	var limiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer limiter.Stop()
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	var tracer trace.TracerProvider
	if tp.IsEnabled() {
		tracer = tp.Provider()
	}

	engine := router.New(router.Dependencies{
		Config:  cfg,
		Logger:  log,
		Catalog: app.Catalog,
		Engine:  app.Engine,
		Loader:  app.Loader,
		Metrics: app.Metrics,
		Tracer:  tracer,
		Limiter: limiter,
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := app.Persist(shutdownCtx); err != nil {
		log.Error("Failed to save snapshots", zap.Error(err))
	}
	if err := app.Close(); err != nil {
		log.Warn("Failed to close snapshot store", zap.Error(err))
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Warn("Failed to shut down tracing", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
