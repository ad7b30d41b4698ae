package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hkb-commerce/storefront-backend/api"
	"github.com/hkb-commerce/storefront-backend/api/controllers"
	"github.com/hkb-commerce/storefront-backend/api/controllers/webhooks"
	"github.com/hkb-commerce/storefront-backend/api/routes"
	internalauth "github.com/hkb-commerce/storefront-backend/internal/auth"
	"github.com/hkb-commerce/storefront-backend/internal/checkout"
	"github.com/hkb-commerce/storefront-backend/internal/orders"
	"github.com/hkb-commerce/storefront-backend/internal/reports"
	"github.com/hkb-commerce/storefront-backend/internal/sales"
	pfwebhook "github.com/hkb-commerce/storefront-backend/internal/webhooks/payfast"
	"github.com/hkb-commerce/storefront-backend/pkg/config"
	"github.com/hkb-commerce/storefront-backend/pkg/db"
	"github.com/hkb-commerce/storefront-backend/pkg/env"
	"github.com/hkb-commerce/storefront-backend/pkg/logger"
	"github.com/hkb-commerce/storefront-backend/pkg/metrics"
	"github.com/hkb-commerce/storefront-backend/pkg/migrate"
	"github.com/hkb-commerce/storefront-backend/pkg/outbox"
	"github.com/hkb-commerce/storefront-backend/pkg/redis"
)

func main() {
	log := logger.New(env.Get("STOREFRONT_SERVICE_NAME", "storefront-api"), env.Get("STOREFRONT_APP_ENV", config.AppEnvDev) == config.AppEnvDev)

	if err := godotenv.Load(); err != nil {
		log.Warn("no .env file found, reading environment directly")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err, "load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(cfg.DB)
	if err != nil {
		log.Fatal(err, "connect database")
	}
	defer func() { _ = dbClient.Close() }()

	if err := migrate.MaybeRunDev(ctx, cfg, dbClient, log); err != nil {
		log.Fatal(err, "run migrations")
	}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		log.Fatal(err, "connect redis")
	}
	defer func() { _ = redisClient.Close() }()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	webhookMetrics := metrics.NewWebhookMetrics(registry)

	orderRepo := orders.NewRepository(dbClient.DB())
	salesRepo := sales.NewRepository(dbClient.DB())
	reportsRepo := reports.NewRepository(dbClient.DB())

	outboxSvc, err := outbox.NewService(outbox.NewRepository(dbClient.DB()))
	if err != nil {
		log.Fatal(err, "build outbox service")
	}

	checkoutSvc, err := checkout.NewService(checkout.ServiceParams{
		DB:      dbClient,
		Orders:  orderRepo,
		Outbox:  outboxSvc,
		PayFast: cfg.PayFast,
	})
	if err != nil {
		log.Fatal(err, "build checkout service")
	}

	orderSvc, err := orders.NewService(orders.ServiceParams{Repo: orderRepo})
	if err != nil {
		log.Fatal(err, "build order service")
	}

	salesSvc, err := sales.NewService(sales.ServiceParams{Repo: salesRepo})
	if err != nil {
		log.Fatal(err, "build sales service")
	}

	reconSvc, err := pfwebhook.NewService(pfwebhook.ServiceParams{
		DB:      dbClient,
		Orders:  orderRepo,
		Sales:   salesRepo,
		Outbox:  outboxSvc,
		Metrics: webhookMetrics,
	})
	if err != nil {
		log.Fatal(err, "build reconciliation service")
	}

	guard, err := pfwebhook.NewIdempotencyGuard(redisClient, 0)
	if err != nil {
		log.Fatal(err, "build idempotency guard")
	}

	authSvc, err := internalauth.NewService(cfg.AdminAuth)
	if err != nil {
		log.Fatal(err, "build admin auth service")
	}

	router := routes.NewRouter(routes.RouterParams{
		Logger:      log,
		Redis:       redisClient,
		Config:      cfg,
		Metrics:     registry,
		Health:      controllers.NewHealthController(dbClient, redisClient),
		Checkout:    controllers.NewCheckoutController(checkoutSvc),
		Auth:        controllers.NewAuthController(authSvc),
		AdminOrders: controllers.NewAdminOrdersController(orderSvc),
		AdminSales:  controllers.NewAdminSalesController(salesSvc, reportsRepo),
		PayFast:     webhooks.NewPayFastController(reconSvc, guard, cfg.PayFast, webhookMetrics),
		AuthService: authSvc,
	})

	server := api.NewServer(cfg.HTTP, router, log)
	if err := server.Run(ctx); err != nil {
		log.Fatal(err, "http server stopped")
	}
	log.Info("http server stopped cleanly")
}
