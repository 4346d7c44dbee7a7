package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"itinerary-route-service/internal/adapters/cache"
	"itinerary-route-service/internal/adapters/distance"
	"itinerary-route-service/internal/adapters/repositories"
	"itinerary-route-service/internal/adapters/usage"
	"itinerary-route-service/internal/api"
	"itinerary-route-service/internal/config"
	"itinerary-route-service/internal/optimizer"
	"itinerary-route-service/internal/platform/db"
	"itinerary-route-service/internal/platform/obs"
	"itinerary-route-service/internal/ports"
	"itinerary-route-service/internal/services"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// main is the application composition root.
// It wires concrete adapters (SQL, ORS, Redis) behind ports and starts the HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := obs.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	if !cfg.DotEnvLoaded {
		logger.Info("no .env file found (using environment variables)")
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, dialect, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Initialize schema and seed demo data on startup for local runs.
	if err := initAndSeed(conn, dialect, cfg.SeedPath, logger); err != nil {
		return err
	}

	tracker, err := newUsageTracker(ctx, cfg, logger)
	if err != nil {
		return err
	}

	source, err := newMatrixSource(cfg, conn, dialect, tracker, logger)
	if err != nil {
		return err
	}

	opt := optimizer.New(optimizer.Options{
		Source:        source,
		MaxIterations: cfg.OptimizeMaxIterations,
		TimeBudget:    cfg.OptimizeTimeBudget,
		Workers:       cfg.OptimizeWorkers,
		Logger:        logger,
	})

	repo := repositories.NewSQLActivityRepository(conn, dialect)
	planner := services.NewPlanner(repo, opt, tracker, logger)
	router := api.NewRouter(planner, tracker, logger)

	// Timeouts are tuned for cold-cache road matrices (external API latency).
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openDB(cfg config.Config) (*sql.DB, db.Dialect, error) {
	if cfg.UsePostgres() {
		conn, err := db.Open(cfg.DatabaseURL)
		return conn, db.Postgres, err
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, db.SQLite, fmt.Errorf("openDB: create %q: %w", dir, err)
		}
	}
	conn, err := db.OpenSqlite(cfg.DBPath)
	return conn, db.SQLite, err
}

func initAndSeed(conn *sql.DB, dialect db.Dialect, seedPath string, logger *zap.Logger) error {
	if err := repositories.InitSchema(conn, dialect); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if _, err := os.Stat(seedPath); errors.Is(err, os.ErrNotExist) {
		logger.Info("seed file not found, skipping", zap.String("path", seedPath))
		return nil
	}

	if err := repositories.SeedFromJSON(conn, dialect, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}
	logger.Info("database seeded", zap.String("path", seedPath))

	return nil
}

func newUsageTracker(ctx context.Context, cfg config.Config, logger *zap.Logger) (ports.UsageTracker, error) {
	if cfg.RedisURL == "" {
		logger.Info("usage tracking in memory")
		return usage.NewMemoryTracker(logger), nil
	}

	tracker, err := usage.NewRedisTrackerFromURL(ctx, cfg.RedisURL, logger)
	if err != nil {
		return nil, fmt.Errorf("usage tracker: %w", err)
	}
	logger.Info("usage tracking in redis")
	return tracker, nil
}

// newMatrixSource selects road distances when an ORS key is configured and
// great-circle distances otherwise.
func newMatrixSource(
	cfg config.Config,
	conn *sql.DB,
	dialect db.Dialect,
	tracker ports.UsageTracker,
	logger *zap.Logger,
) (optimizer.MatrixSource, error) {
	if !cfg.RoadDistances() {
		logger.Info("using haversine distances")
		return optimizer.HaversineSource{}, nil
	}

	// ORS provider uses a persistent cache to avoid repeated matrix calls.
	var distanceCache ports.DistanceCache = cache.NewSqliteDistanceCache(conn)
	if dialect == db.Postgres {
		distanceCache = cache.NewSQLDistanceCache(conn, logger)
	}

	provider, err := distance.NewORSMatrixProvider(cfg.ORSAPIKey, cfg.ORSProfile, distanceCache, tracker, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("using road distances", zap.String("profile", cfg.ORSProfile))
	return distance.NewRoadSource(provider), nil
}
