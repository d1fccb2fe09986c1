package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"lakemap/backend/internal/graph"
	"lakemap/backend/pkg/config"
	"lakemap/backend/pkg/logger"
)

func main() {
	force := flag.Bool("force", false, "Re-run constraint creation even if the schema version is recorded")
	check := flag.Bool("check", false, "Only report whether the schema version is recorded")
	timeout := flag.Duration("timeout", 2*time.Minute, "Overall migration timeout")
	flag.Parse()

	// Initialize logger
	if err := logger.Init("development", ""); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting schema migration...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	store, err := graph.Open(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword, cfg.Neo4jDatabase,
		cfg.Neo4jMaxPoolSize, time.Duration(cfg.Neo4jTimeoutSeconds)*time.Second)
	if err != nil {
		log.Fatal("Failed to connect to Neo4j", zap.Error(err))
	}
	defer store.Close(context.Background())

	applied, err := graph.SchemaApplied(ctx, store)
	if err != nil {
		log.Fatal("Failed to check schema version", zap.Error(err))
	}

	if *check {
		log.Info("Schema status", zap.String("version", graph.SchemaVersion), zap.Bool("applied", applied))
		if !applied {
			os.Exit(1)
		}
		return
	}

	if applied && !*force {
		log.Info("Schema already applied, skipping (use -force to re-run)", zap.String("version", graph.SchemaVersion))
		return
	}

	if err := graph.EnsureConstraints(ctx, store, log); err != nil {
		log.Fatal("Migration failed", zap.Error(err))
	}

	log.Info("Migration completed successfully!", zap.String("version", graph.SchemaVersion))
}
