package reports

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hkb-commerce/storefront-backend/pkg/db/models"
	pkgerrors "github.com/hkb-commerce/storefront-backend/pkg/errors"
)

// Summary aggregates the report rows in a period.
type Summary struct {
	SaleCount  int64 `json:"sale_count"`
	GrossCents int64 `json:"gross_cents"`
	FeeCents   int64 `json:"fee_cents"`
	NetCents   int64 `json:"net_cents"`
}

// ListFilter narrows the report listing.
type ListFilter struct {
	From   time.Time
	To     time.Time
	Limit  int
	Offset int
}

// Repository maintains the sales_reports read model.
type Repository interface {
	Upsert(ctx context.Context, report *models.SalesReport) error
	List(ctx context.Context, filter ListFilter) ([]models.SalesReport, int64, error)
	Summarize(ctx context.Context, from, to time.Time) (*Summary, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository builds the gorm-backed reports repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// Upsert writes one report row keyed on order_id so broker redelivery
// overwrites instead of duplicating.
func (r *gormRepository) Upsert(ctx context.Context, report *models.SalesReport) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "order_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"sale_id", "customer_email", "item_name",
				"gross_cents", "fee_cents", "net_cents",
				"currency", "sold_at", "updated_at",
			}),
		}).
		Create(report).Error
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeDependency, "upsert sales report")
	}
	return nil
}

func (r *gormRepository) List(ctx context.Context, filter ListFilter) ([]models.SalesReport, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.SalesReport{})
	if !filter.From.IsZero() {
		q = q.Where("sold_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where("sold_at < ?", filter.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, pkgerrors.Wrap(err, pkgerrors.CodeDependency, "count sales reports")
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var list []models.SalesReport
	err := q.Order("sold_at DESC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&list).Error
	if err != nil {
		return nil, 0, pkgerrors.Wrap(err, pkgerrors.CodeDependency, "list sales reports")
	}
	return list, total, nil
}

func (r *gormRepository) Summarize(ctx context.Context, from, to time.Time) (*Summary, error) {
	q := r.db.WithContext(ctx).Model(&models.SalesReport{})
	if !from.IsZero() {
		q = q.Where("sold_at >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("sold_at < ?", to)
	}

	var summary Summary
	err := q.Select(
		"COUNT(*) AS sale_count, " +
			"COALESCE(SUM(gross_cents), 0) AS gross_cents, " +
			"COALESCE(SUM(fee_cents), 0) AS fee_cents, " +
			"COALESCE(SUM(net_cents), 0) AS net_cents",
	).Scan(&summary).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeDependency, "summarize sales reports")
	}
	return &summary, nil
}
