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

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront-backend/api/routes"
	"github.com/angelmondragon/storefront-backend/internal/activity"
	"github.com/angelmondragon/storefront-backend/internal/auth"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/categories"
	"github.com/angelmondragon/storefront-backend/internal/dashboard"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	products "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/internal/seed"
	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/migrate"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

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

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Environment: cfg.App.Env,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("bootstrap database: %w", err)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(dbClient))

	reset, err := migrate.MaybeReset(ctx, cfg, logg, dbClient)
	if err != nil {
		return fmt.Errorf("reset schema: %w", err)
	}
	if reset {
		if _, err := seed.Run(ctx, dbClient, cfg.Password, logg); err != nil {
			return fmt.Errorf("seed sample data: %w", err)
		}
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return fmt.Errorf("bootstrap redis: %w", err)
		}
		defer multierr.AppendInvoke(&err, multierr.Close(redisClient))
	} else {
		logg.Warn(ctx, "redis not configured; rate limiting and idempotency disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)
	storeMetrics := metrics.NewStoreMetrics(registry)

	params, err := buildServices(cfg, dbClient, storeMetrics)
	if err != nil {
		return err
	}
	params.Config = cfg
	params.Logger = logg
	params.DB = dbClient
	params.Redis = redisClient
	params.Gatherer = registry
	params.HTTPMetrics = httpMetrics

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"addr":         addr,
		"pricing_mode": string(cfg.Orders.Mode()),
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(params),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logg.Info(ctx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func buildServices(cfg *config.Config, dbClient *db.Client, storeMetrics *metrics.StoreMetrics) (routes.Params, error) {
	conn := dbClient.DB()

	authService, err := auth.NewService(auth.ServiceParams{
		Tx:             dbClient,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Metrics:        storeMetrics,
	})
	if err != nil {
		return routes.Params{}, fmt.Errorf("create auth service: %w", err)
	}

	userService, err := users.NewService(users.NewRepository(conn))
	if err != nil {
		return routes.Params{}, fmt.Errorf("create users service: %w", err)
	}

	categoryService, err := categories.NewService(dbClient, categories.NewRepository(conn))
	if err != nil {
		return routes.Params{}, fmt.Errorf("create category service: %w", err)
	}

	productService, err := products.NewService(dbClient, products.NewRepository(conn))
	if err != nil {
		return routes.Params{}, fmt.Errorf("create product service: %w", err)
	}

	cartService, err := cart.NewService(cart.ServiceParams{
		Tx:      dbClient,
		Repo:    cart.NewRepository(conn),
		Metrics: storeMetrics,
	})
	if err != nil {
		return routes.Params{}, fmt.Errorf("create cart service: %w", err)
	}

	orderService, err := orders.NewService(orders.ServiceParams{
		Repo:                orders.NewRepository(conn),
		Tx:                  dbClient,
		PricingMode:         cfg.Orders.Mode(),
		RecommendationLimit: cfg.Orders.RecommendationLimit,
		Metrics:             storeMetrics,
	})
	if err != nil {
		return routes.Params{}, fmt.Errorf("create orders service: %w", err)
	}

	activityService, err := activity.NewService(activity.NewRepository(conn))
	if err != nil {
		return routes.Params{}, fmt.Errorf("create activity service: %w", err)
	}

	dashboardService, err := dashboard.NewService(dashboard.ServiceParams{
		Users:    userService,
		Cart:     cartService,
		Orders:   orderService,
		Activity: activityService,
	})
	if err != nil {
		return routes.Params{}, fmt.Errorf("create dashboard service: %w", err)
	}

	return routes.Params{
		Auth:       authService,
		Users:      userService,
		Categories: categoryService,
		Products:   productService,
		Cart:       cartService,
		Orders:     orderService,
		Dashboard:  dashboardService,
	}, nil
}
