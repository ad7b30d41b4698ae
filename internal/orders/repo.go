package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hkb-commerce/storefront-backend/pkg/db/models"
	"github.com/hkb-commerce/storefront-backend/pkg/enums"
	pkgerrors "github.com/hkb-commerce/storefront-backend/pkg/errors"
)

// PaymentOutcome is what reconciliation writes onto an order once the
// gateway has spoken.
type PaymentOutcome struct {
	PaymentID     string
	PaymentStatus string
	GrossCents    int64
	FeeCents      int64
	NetCents      int64
	CompletedAt   time.Time
}

// ListFilter narrows the admin order listing.
type ListFilter struct {
	Status        enums.OrderStatus
	CustomerEmail string
	Limit         int
	Offset        int
}

// Repository is the order persistence surface.
type Repository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, filter ListFilter) ([]models.Order, int64, error)
	CompletePayment(ctx context.Context, id uuid.UUID, outcome PaymentOutcome) (bool, error)
	MarkUnsuccessful(ctx context.Context, id uuid.UUID, status enums.OrderStatus, paymentID, paymentStatus string) (bool, error)
	FindCompletedWithoutSale(ctx context.Context, since time.Time, limit int) ([]models.Order, error)
	WithTx(tx *gorm.DB) Repository
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository builds the gorm-backed order repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) WithTx(tx *gorm.DB) Repository {
	return &gormRepository{db: tx}
}

func (r *gormRepository) Create(ctx context.Context, order *models.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeDependency, "insert order")
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("LineItems").
		First(&order, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "order %s not found", id)
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeDependency, "find order")
	}
	return &order, nil
}

func (r *gormRepository) List(ctx context.Context, filter ListFilter) ([]models.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.CustomerEmail != "" {
		q = q.Where("customer_email = ?", filter.CustomerEmail)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, pkgerrors.Wrap(err, pkgerrors.CodeDependency, "count orders")
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var list []models.Order
	err := q.Order("created_at DESC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&list).Error
	if err != nil {
		return nil, 0, pkgerrors.Wrap(err, pkgerrors.CodeDependency, "list orders")
	}
	return list, total, nil
}

// CompletePayment flips a PENDING order to COMPLETED and writes the payment
// sub-record in one conditional update. Returns false when the order was
// already terminal, which callers treat as a no-op.
func (r *gormRepository) CompletePayment(ctx context.Context, id uuid.UUID, outcome PaymentOutcome) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, enums.OrderStatusPending).
		Updates(map[string]any{
			"status":             enums.OrderStatusCompleted,
			"payfast_payment_id": outcome.PaymentID,
			"payment_status":     outcome.PaymentStatus,
			"amount_gross_cents": outcome.GrossCents,
			"amount_fee_cents":   outcome.FeeCents,
			"amount_net_cents":   outcome.NetCents,
			"completed_at":       outcome.CompletedAt,
		})
	if res.Error != nil {
		return false, pkgerrors.Wrap(res.Error, pkgerrors.CodeDependency, "complete order payment")
	}
	return res.RowsAffected > 0, nil
}

// MarkUnsuccessful flips a PENDING order to FAILED or CANCELLED. Same
// conditional-write rule as CompletePayment.
func (r *gormRepository) MarkUnsuccessful(ctx context.Context, id uuid.UUID, status enums.OrderStatus, paymentID, paymentStatus string) (bool, error) {
	if status != enums.OrderStatusFailed && status != enums.OrderStatusCancelled {
		return false, pkgerrors.Newf(pkgerrors.CodeInternal, "status %q is not an unsuccessful outcome", status)
	}
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, enums.OrderStatusPending).
		Updates(map[string]any{
			"status":             status,
			"payfast_payment_id": paymentID,
			"payment_status":     paymentStatus,
		})
	if res.Error != nil {
		return false, pkgerrors.Wrap(res.Error, pkgerrors.CodeDependency, "mark order unsuccessful")
	}
	return res.RowsAffected > 0, nil
}

// FindCompletedWithoutSale returns completed orders newer than since whose
// ledger entry is missing. The sweep job rebuilds those.
func (r *gormRepository) FindCompletedWithoutSale(ctx context.Context, since time.Time, limit int) ([]models.Order, error) {
	var list []models.Order
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.OrderStatusCompleted).
		Where("completed_at >= ?", since).
		Where("payfast_payment_id IS NOT NULL").
		Where("NOT EXISTS (SELECT 1 FROM sales WHERE sales.order_id = orders.id)").
		Order("completed_at ASC").
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeDependency, "find completed orders without sale")
	}
	return list, nil
}
