package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"lakemap/backend/internal/aggregate"
	"lakemap/backend/internal/graph"
	"lakemap/backend/internal/httpapi"
	"lakemap/backend/internal/observability"
	"lakemap/backend/pkg/config"
	"lakemap/backend/pkg/logger"
)

const shutdownTimeout = 5 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	// Initialize logger
	if err := logger.Init(cfg.Env, cfg.LogLevel); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting HTTP API server...")

	if err := run(cfg, log); err != nil {
		log.Fatal("Server failed", zap.Error(err))
	}
	log.Info("Server exited")
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		Enabled:     cfg.TracingEnabled,
		ServiceName: "lakemap",
		Environment: cfg.Env,
	}, log)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Warn("Tracer shutdown failed", zap.Error(err))
		}
	}()

	// Connect to Neo4j
	timeout := time.Duration(cfg.Neo4jTimeoutSeconds) * time.Second
	store, err := graph.Open(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword, cfg.Neo4jDatabase, cfg.Neo4jMaxPoolSize, timeout)
	if err != nil {
		return err
	}
	defer store.Close(context.Background())
	log.Info("Connected to Neo4j", zap.String("uri", cfg.Neo4jURI), zap.String("database", cfg.Neo4jDatabase))

	// Initialize dependencies
	repo := graph.NewRepository(store)
	svc := aggregate.NewService(repo)

	serviceName := ""
	if cfg.TracingEnabled {
		serviceName = "lakemap"
	}
	router := httpapi.NewRouter(httpapi.RouterConfig{
		Service:        svc,
		Logger:         log,
		CORSOrigins:    cfg.CORSOrigins,
		Production:     cfg.IsProduction(),
		ServiceName:    serviceName,
		MaxImportBytes: cfg.ImportMaxBytes,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server started", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server forced to shutdown", zap.Error(err))
			return err
		}
		return nil
	})

	return g.Wait()
}
