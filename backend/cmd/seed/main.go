package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"go.uber.org/zap"

	"lakemap/backend/internal/dataset"
	"lakemap/backend/internal/graph"
	"lakemap/backend/pkg/config"
	"lakemap/backend/pkg/logger"
)

func main() {
	opts := options{}
	flag.IntVar(&opts.Users, "users", 5, "Users to create")
	flag.IntVar(&opts.Points, "points", 20, "Points to create")
	flag.IntVar(&opts.Lakes, "lakes", 3, "Lakes to create")
	flag.IntVar(&opts.Routes, "routes", 6, "Routes to create")
	flag.IntVar(&opts.Tickets, "tickets", 8, "Support tickets to create")
	flag.Int64Var(&opts.Seed, "seed", 0, "Random seed; 0 picks one from the clock")
	flag.Parse()

	// Initialize logger
	if err := logger.Init("development", ""); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting database seeding...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx := context.Background()
	store, err := graph.Open(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword, cfg.Neo4jDatabase,
		cfg.Neo4jMaxPoolSize, time.Duration(cfg.Neo4jTimeoutSeconds)*time.Second)
	if err != nil {
		log.Fatal("Failed to connect to Neo4j", zap.Error(err))
	}
	defer store.Close(context.Background())

	// Create constraints
	log.Info("Creating constraints...")
	if err := graph.EnsureConstraints(ctx, store, log); err != nil {
		log.Fatal("Failed to create constraints", zap.Error(err))
	}

	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	ds, err := generate(opts, time.Now())
	if err != nil {
		log.Fatal("Invalid seed options", zap.Error(err))
	}

	repo := graph.NewRepository(store)
	report, err := dataset.Import(ctx, repo, ds)
	if err != nil {
		log.Fatal("Seeding failed", zap.Error(err), zap.Any("report", report))
	}

	log.Info("Seeding completed successfully!",
		zap.Int64("seed", opts.Seed),
		zap.Int("users", report.Users),
		zap.Int("points", report.Points),
		zap.Int("lakes", report.Lakes),
		zap.Int("routes", report.Routes),
		zap.Int("tickets", report.Tickets),
		zap.Int("reviews", report.Reviews),
	)
}
