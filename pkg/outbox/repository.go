package outbox

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/hkb-commerce/storefront-backend/pkg/db/models"
	pkgerrors "github.com/hkb-commerce/storefront-backend/pkg/errors"
)

// Repository persists outbox rows. Insert is expected to run on the same
// transaction as the state change it announces.
type Repository interface {
	Insert(ctx context.Context, event *models.OutboxEvent) error
	FetchUnpublished(ctx context.Context, limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, cause error) error
	WithTx(tx *gorm.DB) Repository
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository builds the gorm-backed outbox repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) WithTx(tx *gorm.DB) Repository {
	return &gormRepository{db: tx}
}

func (r *gormRepository) Insert(ctx context.Context, event *models.OutboxEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeDependency, "insert outbox event")
	}
	return nil
}

func (r *gormRepository) FetchUnpublished(ctx context.Context, limit, maxAttempts int) ([]models.OutboxEvent, error) {
	var events []models.OutboxEvent
	err := r.db.WithContext(ctx).
		Where("published_at IS NULL AND attempts < ?", maxAttempts).
		Order("created_at ASC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeDependency, "fetch unpublished outbox events")
	}
	return events, nil
}

func (r *gormRepository) MarkPublished(ctx context.Context, id string) error {
	now := time.Now()
	err := r.db.WithContext(ctx).
		Model(&models.OutboxEvent{}).
		Where("id = ?", id).
		Update("published_at", now).Error
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeDependency, "mark outbox event published")
	}
	return nil
}

func (r *gormRepository) MarkFailed(ctx context.Context, id string, cause error) error {
	msg := cause.Error()
	err := r.db.WithContext(ctx).
		Model(&models.OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": msg,
		}).Error
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeDependency, "mark outbox event failed")
	}
	return nil
}
