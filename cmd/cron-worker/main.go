package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hkb-commerce/storefront-backend/internal/cron"
	"github.com/hkb-commerce/storefront-backend/internal/orders"
	"github.com/hkb-commerce/storefront-backend/internal/sales"
	"github.com/hkb-commerce/storefront-backend/pkg/config"
	"github.com/hkb-commerce/storefront-backend/pkg/db"
	"github.com/hkb-commerce/storefront-backend/pkg/env"
	"github.com/hkb-commerce/storefront-backend/pkg/logger"
	"github.com/hkb-commerce/storefront-backend/pkg/metrics"
	"github.com/hkb-commerce/storefront-backend/pkg/outbox"
	"github.com/hkb-commerce/storefront-backend/pkg/redis"
)

func main() {
	log := logger.New("cron-worker", env.Get("STOREFRONT_APP_ENV", config.AppEnvDev) == config.AppEnvDev)

	if err := godotenv.Load(); err != nil {
		log.Warn("no .env file found, reading environment directly")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err, "load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = log.Attach(ctx)

	dbClient, err := db.New(cfg.DB)
	if err != nil {
		log.Fatal(err, "connect database")
	}
	defer func() { _ = dbClient.Close() }()

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		log.Fatal(err, "connect redis")
	}
	defer func() { _ = redisClient.Close() }()

	registry := prometheus.NewRegistry()
	cronMetrics := metrics.NewCronJobMetrics(registry)

	outboxSvc, err := outbox.NewService(outbox.NewRepository(dbClient.DB()))
	if err != nil {
		log.Fatal(err, "build outbox service")
	}

	sweepJob, err := cron.NewLedgerSweepJob(cron.LedgerSweepJobParams{
		DB:       dbClient,
		Orders:   orders.NewRepository(dbClient.DB()),
		Sales:    sales.NewRepository(dbClient.DB()),
		Outbox:   outboxSvc,
		Interval: cfg.Cron.SweepInterval,
		Lookback: cfg.Cron.SweepLookback,
		Metrics:  cronMetrics,
	})
	if err != nil {
		log.Fatal(err, "build ledger sweep job")
	}

	jobs := cron.NewRegistry()
	jobs.Register(sweepJob)

	lock, err := cron.NewRedisLock(redisClient, cfg.Cron.LockTTL)
	if err != nil {
		log.Fatal(err, "build cron lock")
	}

	runner, err := cron.NewService(cron.ServiceParams{
		Registry: jobs,
		Lock:     lock,
		Metrics:  cronMetrics,
	})
	if err != nil {
		log.Fatal(err, "build cron service")
	}

	log.Info("cron worker started")
	runner.Run(ctx)
	log.Info("cron worker stopped")
}
