package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/kumsat/microservices-checkout-quality-gate/internal/adapter/collaborator"
	"github.com/kumsat/microservices-checkout-quality-gate/internal/adapter/handler"
	"github.com/kumsat/microservices-checkout-quality-gate/internal/adapter/logging"
	"github.com/kumsat/microservices-checkout-quality-gate/internal/adapter/messaging"
	"github.com/kumsat/microservices-checkout-quality-gate/internal/adapter/metrics"
	"github.com/kumsat/microservices-checkout-quality-gate/internal/adapter/storage"
	"github.com/kumsat/microservices-checkout-quality-gate/internal/adapter/tracing"
	"github.com/kumsat/microservices-checkout-quality-gate/internal/config"
	"github.com/kumsat/microservices-checkout-quality-gate/internal/core/service"
	"github.com/kumsat/microservices-checkout-quality-gate/internal/port"
)

func main() {
	cfg := config.MustLoad()

	logger := logging.New(cfg.App.Name, cfg.Log.Level, cfg.PrettyLogs())
	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
	logger.Info().Msg("server stopped")
}

// backends holds the storage chosen by config plus the cleanup for whatever
// connections were opened.
type backends struct {
	stock       port.StockRepository
	orders      port.OrderRepository
	idempotency port.IdempotencyStore
	closers     []func() error
}

func (b *backends) close(logger zerolog.Logger) {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			logger.Warn().Err(err).Msg("close backend")
		}
	}
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.InitTracerProvider(cfg.App.Name, cfg.Tracing.JaegerEndpoint)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer shutdownTracing(context.Background())

	store, err := openBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.close(logger)

	if err := seedStock(ctx, store.stock, cfg.Inventory.Seed, logger); err != nil {
		return err
	}

	var catalog port.Catalog = collaborator.NewMemoryCatalog(collaborator.DefaultProducts())
	if cfg.Collaborators.CatalogURL != "" {
		catalog = collaborator.NewHTTPCatalog(collaborator.NewClient(cfg.Collaborators.CatalogURL, cfg.Collaborators.StepTimeout))
		logger.Info().Str("url", cfg.Collaborators.CatalogURL).Msg("using remote catalog")
	}
	var carts port.CartStore = collaborator.NewMemoryCartStore()
	if cfg.Collaborators.CartURL != "" {
		carts = collaborator.NewHTTPCartStore(collaborator.NewClient(cfg.Collaborators.CartURL, cfg.Collaborators.StepTimeout))
		logger.Info().Str("url", cfg.Collaborators.CartURL).Msg("using remote cart")
	}

	var events port.EventPublisher = messaging.NopPublisher{}
	if brokers := messaging.ParseBrokers(cfg.Kafka.Brokers); len(brokers) > 0 {
		publisher := messaging.NewKafkaPublisher(brokers, cfg.Kafka.Topic)
		defer publisher.Close()
		events = publisher
		logger.Info().Strs("brokers", brokers).Str("topic", cfg.Kafka.Topic).Msg("publishing order events")
	}

	promMetrics := metrics.New()

	inventory := service.NewInventoryService(store.stock)
	payments := service.NewPaymentService()
	orders := service.NewOrderService(store.orders)
	checkout := service.NewCheckoutService(catalog, carts, inventory, payments, orders,
		service.WithLogger(logger.With().Str("component", "checkout").Logger()),
		service.WithMetrics(promMetrics),
		service.WithEventPublisher(events),
		service.WithIdempotencyStore(store.idempotency),
		service.WithStepTimeout(cfg.Collaborators.StepTimeout),
	)

	router := handler.NewRouter(handler.RouterConfig{
		Handler:        handler.NewHTTPHandler(catalog, carts, inventory, payments, orders, checkout),
		Logger:         logger,
		Observer:       promMetrics,
		MetricsHandler: promMetrics.Handler(),
	})
	httpServer := &http.Server{
		Addr:         cfg.Server.HTTPAddress(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	grpcServer := handler.NewGRPCServer(handler.NewGRPCHandler(inventory, payments, orders, checkout), logger)
	lis, err := net.Listen("tcp", cfg.Server.GRPCAddress())
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("addr", httpServer.Addr).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.Info().Str("addr", lis.Addr().String()).Msg("gRPC server listening")
		if err := grpcServer.Serve(lis); err != nil {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		err := httpServer.Shutdown(shutdownCtx)
		grpcServer.GracefulStop()
		return err
	})

	return g.Wait()
}

func openBackends(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*backends, error) {
	b := &backends{}

	var (
		rdb        *redis.Client
		mysqlStore *storage.MySQLAdapter
	)

	if cfg.Inventory.Backend == "redis" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		b.closers = append(b.closers, rdb.Close)
		logger.Info().Str("addr", cfg.Redis.Address()).Msg("connected to redis")
	}

	if cfg.Inventory.Backend == "mysql" || cfg.Orders.Backend == "mysql" {
		db, err := sql.Open("mysql", cfg.MySQL.DSN())
		if err != nil {
			b.close(logger)
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
		db.SetConnMaxLifetime(5 * time.Minute)
		b.closers = append(b.closers, db.Close)

		if err := db.PingContext(ctx); err != nil {
			b.close(logger)
			return nil, fmt.Errorf("ping mysql: %w", err)
		}
		mysqlStore = storage.NewMySQLAdapter(db)
		if err := mysqlStore.Migrate(ctx); err != nil {
			b.close(logger)
			return nil, err
		}
		logger.Info().Str("host", cfg.MySQL.Host).Str("db", cfg.MySQL.Name).Msg("connected to mysql")
	}

	switch cfg.Inventory.Backend {
	case "redis":
		adapter := storage.NewRedisAdapter(rdb)
		b.stock = adapter
		b.idempotency = adapter
	case "mysql":
		b.stock = mysqlStore
	default:
		b.stock = storage.NewMemoryStockAdapter()
	}
	if b.idempotency == nil {
		b.idempotency = storage.NewMemoryIdempotencyStore()
	}

	switch cfg.Orders.Backend {
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.Orders.SQLitePath), 0o755); err != nil {
			b.close(logger)
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
		journal, err := storage.NewSQLiteOrderJournal(cfg.Orders.SQLitePath)
		if err != nil {
			b.close(logger)
			return nil, err
		}
		b.closers = append(b.closers, journal.Close)
		b.orders = journal
	case "mysql":
		b.orders = mysqlStore
	default:
		b.orders = storage.NewMemoryOrderJournal()
	}

	logger.Info().
		Str("inventory", cfg.Inventory.Backend).
		Str("orders", cfg.Orders.Backend).
		Msg("storage initialized")
	return b, nil
}

func seedStock(ctx context.Context, stock port.StockRepository, seed map[string]int, logger zerolog.Logger) error {
	for productID, qty := range seed {
		if err := stock.SetStock(ctx, productID, qty); err != nil {
			return fmt.Errorf("seed stock %s: %w", productID, err)
		}
		logger.Info().Str("product_id", productID).Int("stock", qty).Msg("initialized stock")
	}
	return nil
}
