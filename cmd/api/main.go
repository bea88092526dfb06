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

	"sky-catalog/internal/cache"
	"sky-catalog/internal/config"
	"sky-catalog/internal/database"
	"sky-catalog/internal/events"
	"sky-catalog/internal/handler"
	"sky-catalog/internal/repository"
	"sky-catalog/internal/router"
	"sky-catalog/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	instanceID := uuid.NewString()
	logger.Info().Str("instance_id", instanceID).Msg("starting sky-catalog API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
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

	// Initialize cache backend and shop status store
	dishCache, shopStore, closeCache, err := newCache(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	defer closeCache()

	policy, err := cache.ParsePolicy(cfg.Cache.Policy)
	if err != nil {
		return err
	}
	invalidator := cache.NewInvalidator(dishCache, policy, logger, invalidatorOptions(cfg.Cache)...)
	defer invalidator.Wait()

	// Initialize catalog events
	publisher := events.NewNopPublisher()
	if cfg.Events.Enabled {
		conn, ch, err := events.Connect(cfg.Events.URL, cfg.Events.Exchange, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to event broker: %w", err)
		}
		defer conn.Close()
		defer ch.Close()
		publisher = events.NewRabbitPublisher(ch, cfg.Events.Exchange)

		// Each instance with an in-process cache applies the other instances' writes.
		if cfg.Cache.Backend == config.CacheBackendMemory {
			subCh, err := conn.Channel()
			if err != nil {
				return fmt.Errorf("failed to open subscriber channel: %w", err)
			}
			defer subCh.Close()

			sub := events.NewRabbitSubscriber(subCh, cfg.Events.Exchange, logger)
			if err := events.NewCacheSync(sub, invalidator, instanceID, logger).Start(ctx); err != nil {
				return fmt.Errorf("failed to start cache sync: %w", err)
			}
		}
	} else {
		logger.Info().Msg("catalog events disabled")
	}

	// Initialize repositories
	dishRepo := repository.NewDishRepository(pool, logger)
	flavorRepo := repository.NewFlavorRepository(pool, logger)
	comboRepo := repository.NewComboRepository(logger)

	// Initialize services
	guard := service.NewDeletionGuard(dishRepo, comboRepo, logger)
	dishService := service.NewDishService(dishRepo, flavorRepo, guard, invalidator, publisher, instanceID, logger)
	menuService := service.NewMenuService(dishRepo, flavorRepo, dishCache, invalidator.Generations(), cfg.Cache.TTL, logger)
	shopService := service.NewShopService(shopStore, logger)

	// Initialize HTTP handlers
	dishHandler := handler.NewDishHandler(dishService, logger)
	menuHandler := handler.NewMenuHandler(menuService, logger)
	shopHandler := handler.NewShopHandler(shopService, logger)

	// Initialize router
	mux := router.New(dishHandler, menuHandler, shopHandler, cfg.Auth.APIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Str("cache_backend", cfg.Cache.Backend).
			Str("invalidation_policy", string(policy)).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newCache builds the configured dish cache and the shop status store that
// lives next to it.
func newCache(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (cache.Cache, cache.ShopStore, func(), error) {
	if cfg.Cache.Backend == config.CacheBackendMemory {
		logger.Info().Int("capacity", cfg.Cache.Capacity).Msg("using in-process cache")
		return cache.NewMemoryCache(cfg.Cache.Capacity, cfg.Cache.TTL), cache.NewMemoryShopStore(), func() {}, nil
	}

	client, err := cache.NewRedisClient(ctx, cfg.Redis, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	closeFn := func() {
		if err := client.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close redis client")
		}
	}
	return cache.NewRedisCache(client, cfg.Cache.OpTimeout), cache.NewRedisShopStore(client, cfg.Cache.OpTimeout), closeFn, nil
}

// invalidatorOptions repeats invalidations of the shared redis cache so loads
// finishing late on any instance cannot keep a pre-commit list. The in-process
// backend relies on its own generation checks and on catalog events.
func invalidatorOptions(cfg config.CacheConfig) []cache.Option {
	if cfg.Backend == config.CacheBackendRedis && cfg.SecondDeleteDelay > 0 {
		return []cache.Option{cache.WithSecondDelete(cfg.SecondDeleteDelay)}
	}
	return nil
}
