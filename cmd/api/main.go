package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/storefront/api/routes"
	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/internal/checkout"
	"github.com/angelmondragon/storefront/internal/events"
	"github.com/angelmondragon/storefront/internal/orders"
	products "github.com/angelmondragon/storefront/internal/products"
	"github.com/angelmondragon/storefront/internal/repo"
	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/db"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
	"github.com/angelmondragon/storefront/pkg/migrate"
	"github.com/angelmondragon/storefront/pkg/mongo"
	"github.com/angelmondragon/storefront/pkg/redis"
	"github.com/angelmondragon/storefront/pkg/storage"
	"github.com/angelmondragon/storefront/pkg/storage/memory"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	var format string
	if cfg.App.IsDev() && os.Getenv("LOG_FORMAT") == "" {
		format = "console"
	}
	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      format,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	backend, closers, err := openBackend(ctx, cfg, logg)
	defer func() {
		for _, c := range closers {
			err = multierr.Append(err, c.Close())
		}
	}()
	if err != nil {
		return err
	}

	store, err := storage.New(backend, storage.Options{
		Namespace: cfg.Storage.Namespace,
		Logger:    logg,
		Metrics:   metrics.NewStorageMetrics(reg),
	})
	if err != nil {
		return err
	}

	hub := events.NewHub(logg, metrics.NewEventMetrics(reg))

	productRepo, err := products.NewRepository(store, products.Options{Publisher: hub, Logger: logg})
	if err != nil {
		return err
	}
	cartRepo, err := cart.NewRepository(store, hub)
	if err != nil {
		return err
	}
	ordersRepo, err := orders.NewRepository(store, orders.Options{Publisher: hub, Logger: logg})
	if err != nil {
		return err
	}
	checkoutSvc, err := checkout.NewService(cartRepo, ordersRepo, logg)
	if err != nil {
		return err
	}

	if cfg.Storage.SeedOnStart {
		if _, err := productRepo.SeedIfEmpty(ctx); err != nil {
			return fmt.Errorf("seeding catalog: %w", err)
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":       cfg.App.Env,
		"addr":      addr,
		"storage":   cfg.Storage.Driver,
		"namespace": cfg.Storage.Namespace,
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, store, reg, productRepo, cartRepo, ordersRepo, checkoutSvc, hub),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logg.Info(logCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openBackend selects the key-value backend for the configured storage driver.
// The returned closers must be closed even when err is non-nil.
func openBackend(ctx context.Context, cfg *config.Config, logg *logger.Logger) (storage.Backend, []io.Closer, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverRedis:
		client, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, nil, fmt.Errorf("bootstrap redis: %w", err)
		}
		return client, []io.Closer{client}, nil

	case config.StorageDriverSQL:
		client, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			return nil, nil, fmt.Errorf("bootstrap database: %w", err)
		}
		closers := []io.Closer{client}
		if err := migrate.MaybeRun(ctx, cfg, logg, client); err != nil {
			return nil, closers, fmt.Errorf("run migrations: %w", err)
		}
		return repo.NewKVRepository(client.DB(), client.Ping), closers, nil

	case config.StorageDriverMongo:
		client, err := mongo.New(ctx, cfg.Mongo, logg)
		if err != nil {
			return nil, nil, fmt.Errorf("bootstrap mongo: %w", err)
		}
		return client, []io.Closer{client}, nil

	default:
		return memory.New(), nil, nil
	}
}
