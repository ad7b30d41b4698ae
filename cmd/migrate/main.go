package main

import (
	"context"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/hkb-commerce/storefront-backend/pkg/config"
	"github.com/hkb-commerce/storefront-backend/pkg/db"
	"github.com/hkb-commerce/storefront-backend/pkg/env"
	"github.com/hkb-commerce/storefront-backend/pkg/logger"
	"github.com/hkb-commerce/storefront-backend/pkg/migrate"
)

func main() {
	log := logger.New("migrate", env.Get("STOREFRONT_APP_ENV", config.AppEnvDev) == config.AppEnvDev)

	if err := godotenv.Load(); err != nil {
		log.Warn("no .env file found, reading environment directly")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err, "load config")
	}

	dbClient, err := db.New(cfg.DB)
	if err != nil {
		log.Fatal(err, "connect database")
	}
	defer func() { _ = dbClient.Close() }()

	if err := migrate.Run(context.Background(), dbClient); err != nil {
		log.Fatal(err, "apply migrations")
	}
	log.Info("migrations applied")
}
