package migrate

import (
	"context"
	"embed"

	"github.com/pressly/goose/v3"

	"github.com/hkb-commerce/storefront-backend/pkg/config"
	"github.com/hkb-commerce/storefront-backend/pkg/db"
	pkgerrors "github.com/hkb-commerce/storefront-backend/pkg/errors"
	"github.com/hkb-commerce/storefront-backend/pkg/logger"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Run applies all pending migrations.
func Run(ctx context.Context, client *db.Client) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "set goose dialect")
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeDependency, "unwrap sql db")
	}
	if err := goose.UpContext(ctx, sqlDB, "migrations"); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeDependency, "apply migrations")
	}
	return nil
}

// MaybeRunDev applies migrations on startup in development only. Production
// runs the migrate command explicitly.
func MaybeRunDev(ctx context.Context, cfg *config.Config, client *db.Client, log *logger.Logger) error {
	if !cfg.IsDev() {
		return nil
	}
	log.Info("applying migrations (development)")
	return Run(ctx, client)
}
