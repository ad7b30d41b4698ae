package db

import (
	"context"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/hkb-commerce/storefront-backend/pkg/config"
	pkgerrors "github.com/hkb-commerce/storefront-backend/pkg/errors"
)

// Client wraps the gorm handle so callers never import gorm directly for
// connection lifecycle concerns.
type Client struct {
	db *gorm.DB
}

// New opens a Postgres connection pool sized per config.
func New(cfg config.DBConfig) (*Client, error) {
	gdb, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeDependency, "open database")
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeDependency, "unwrap sql db")
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return &Client{db: gdb}, nil
}

// NewWithGorm wraps an existing gorm handle. Tests use this with sqlite.
func NewWithGorm(gdb *gorm.DB) *Client {
	return &Client{db: gdb}
}

// DB exposes the underlying gorm handle for repositories.
func (c *Client) DB() *gorm.DB {
	return c.db
}

// Ping verifies the connection is alive. Readiness probes call this.
func (c *Client) Ping(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeDependency, "unwrap sql db")
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeDependency, "ping database")
	}
	return nil
}

// Close releases the connection pool.
func (c *Client) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// WithTx runs fn inside a transaction, rolling back on error or panic.
func (c *Client) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tx := c.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return pkgerrors.Wrap(tx.Error, pkgerrors.CodeDependency, "begin transaction")
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeDependency, "commit transaction")
	}
	return nil
}
