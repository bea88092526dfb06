package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"sky-catalog/internal/cache"
	"sky-catalog/internal/catalogimport"
	"sky-catalog/internal/config"
	"sky-catalog/internal/database"
	"sky-catalog/internal/events"
	"sky-catalog/internal/repository"
	"sky-catalog/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func main() {
	file := flag.String("file", "", "path of the gzipped NDJSON import file (S3 key suffix when S3 is enabled)")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: catalog-import -file dishes.ndjson.gz")
		os.Exit(2)
	}

	if err := run(*file); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(file string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	instanceID := uuid.NewString()
	logger.Info().Str("file", file).Str("instance_id", instanceID).Msg("starting catalog import")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := database.ApplyMigrations(ctx, pool, logger); err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	invalidator, closeCache, err := newInvalidator(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	// Running instances learn about imported dishes through catalog events.
	publisher := events.NewNopPublisher()
	if cfg.Events.Enabled {
		conn, ch, err := events.Connect(cfg.Events.URL, cfg.Events.Exchange, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to event broker: %w", err)
		}
		defer conn.Close()
		defer ch.Close()
		publisher = events.NewRabbitPublisher(ch, cfg.Events.Exchange)
	}

	dishRepo := repository.NewDishRepository(pool, logger)
	flavorRepo := repository.NewFlavorRepository(pool, logger)
	guard := service.NewDeletionGuard(dishRepo, repository.NewComboRepository(logger), logger)
	dishService := service.NewDishService(dishRepo, flavorRepo, guard, invalidator, publisher, instanceID, logger)

	loader, err := newLoader(ctx, cfg.Import, logger)
	if err != nil {
		return err
	}

	importer := catalogimport.NewImporter(dishService, cfg.Import.Concurrency, logger)
	report, err := importer.ImportFile(ctx, loader, file)
	if err != nil && report.Total == 0 {
		return fmt.Errorf("import failed: %w", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if encErr := encoder.Encode(report); encErr != nil {
		return fmt.Errorf("failed to write report: %w", encErr)
	}

	if err != nil {
		return fmt.Errorf("import interrupted: %w", err)
	}
	if len(report.Failed) > 0 {
		return fmt.Errorf("%d of %d records failed", len(report.Failed), report.Total)
	}
	return nil
}

// newLoader reads from S3 with a local fallback when S3 is enabled, and from
// the local file system otherwise.
func newLoader(ctx context.Context, cfg config.ImportConfig, logger zerolog.Logger) (catalogimport.Loader, error) {
	fileLoader := catalogimport.NewFileLoader(logger)
	if !cfg.S3Enabled {
		logger.Info().Msg("using local file system for import files (S3 disabled)")
		return fileLoader, nil
	}

	s3Loader, err := catalogimport.NewS3Loader(ctx, cfg.S3Bucket, cfg.S3Region, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to initialise S3 loader, falling back to local file system only")
		return fileLoader, nil
	}
	return catalogimport.NewFallbackLoader(s3Loader, fileLoader, cfg.S3Prefix, logger), nil
}

// newInvalidator connects to the shared cache so imported categories are
// invalidated like any other write. The in-process backend has nothing to
// invalidate from a separate process.
func newInvalidator(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*cache.Invalidator, func(), error) {
	policy, err := cache.ParsePolicy(cfg.Cache.Policy)
	if err != nil {
		return nil, nil, err
	}

	if cfg.Cache.Backend == config.CacheBackendMemory {
		return cache.NewInvalidator(cache.NewMemoryCache(1, cfg.Cache.TTL), policy, logger), func() {}, nil
	}

	client, err := cache.NewRedisClient(ctx, cfg.Redis, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize cache: %w", err)
	}
	var opts []cache.Option
	if cfg.Cache.SecondDeleteDelay > 0 {
		opts = append(opts, cache.WithSecondDelete(cfg.Cache.SecondDeleteDelay))
	}
	invalidator := cache.NewInvalidator(cache.NewRedisCache(client, cfg.Cache.OpTimeout), policy, logger, opts...)

	// Delayed deletes must run before the client goes away.
	closeFn := func() {
		invalidator.Wait()
		_ = client.Close()
	}

	return invalidator, closeFn, nil
}
