package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/hkb-commerce/storefront-backend/internal/reports"
	"github.com/hkb-commerce/storefront-backend/pkg/config"
	"github.com/hkb-commerce/storefront-backend/pkg/db"
	"github.com/hkb-commerce/storefront-backend/pkg/env"
	"github.com/hkb-commerce/storefront-backend/pkg/logger"
	"github.com/hkb-commerce/storefront-backend/pkg/pubsub"
)

func main() {
	log := logger.New("reports-worker", env.Get("STOREFRONT_APP_ENV", config.AppEnvDev) == config.AppEnvDev)

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

	broker, err := pubsub.New(ctx, cfg.PubSub)
	if err != nil {
		log.Fatal(err, "connect pubsub")
	}
	defer func() { _ = broker.Close() }()

	consumer, err := reports.NewConsumer(reports.NewRepository(dbClient.DB()))
	if err != nil {
		log.Fatal(err, "build reports consumer")
	}

	log.Info("reports worker receiving")
	if err := broker.Receive(ctx, consumer.Handle); err != nil && ctx.Err() == nil {
		log.Fatal(err, "receive loop stopped")
	}
	log.Info("reports worker stopped")
}
