package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hkb-commerce/storefront-backend/pkg/db/models"
	pkgerrors "github.com/hkb-commerce/storefront-backend/pkg/errors"
)

// ListFilter narrows the admin sales listing.
type ListFilter struct {
	CustomerEmail string
	From          time.Time
	To            time.Time
	Limit         int
	Offset        int
}

// Repository is the ledger persistence surface. The table is append-only;
// there is no update path.
type Repository interface {
	Insert(ctx context.Context, sale *models.Sale) error
	ExistsByPaymentID(ctx context.Context, paymentID string) (bool, error)
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Sale, error)
	List(ctx context.Context, filter ListFilter) ([]models.Sale, int64, error)
	WithTx(tx *gorm.DB) Repository
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository builds the gorm-backed sales repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) WithTx(tx *gorm.DB) Repository {
	return &gormRepository{db: tx}
}

// Insert appends a ledger entry. Unique violations on the payment id bubble
// up raw so callers can classify them as duplicates.
func (r *gormRepository) Insert(ctx context.Context, sale *models.Sale) error {
	return r.db.WithContext(ctx).Create(sale).Error
}

func (r *gormRepository) ExistsByPaymentID(ctx context.Context, paymentID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Where("payfast_payment_id = ?", paymentID).
		Count(&count).Error
	if err != nil {
		return false, pkgerrors.Wrap(err, pkgerrors.CodeDependency, "check sale by payment id")
	}
	return count > 0, nil
}

func (r *gormRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Sale, error) {
	var sale models.Sale
	err := r.db.WithContext(ctx).First(&sale, "order_id = ?", orderID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "sale for order %s not found", orderID)
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeDependency, "find sale by order id")
	}
	return &sale, nil
}

func (r *gormRepository) List(ctx context.Context, filter ListFilter) ([]models.Sale, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Sale{})
	if filter.CustomerEmail != "" {
		q = q.Where("customer_email = ?", filter.CustomerEmail)
	}
	if !filter.From.IsZero() {
		q = q.Where("created_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where("created_at < ?", filter.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, pkgerrors.Wrap(err, pkgerrors.CodeDependency, "count sales")
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var list []models.Sale
	err := q.Order("created_at DESC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&list).Error
	if err != nil {
		return nil, 0, pkgerrors.Wrap(err, pkgerrors.CodeDependency, "list sales")
	}
	return list, total, nil
}
