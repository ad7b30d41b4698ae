package models

import (
	"time"

	"github.com/google/uuid"
)

// SalesReportsUniqueConstraint keys one report row per order so consumer
// redelivery upserts instead of duplicating.
const SalesReportsUniqueConstraint = "ux_sales_reports_order_id"

// SalesReport is a denormalized read-model row maintained by the reports
// worker from payment.completed events.
type SalesReport struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_sales_reports_order_id" json:"order_id"`
	SaleID  uuid.UUID `gorm:"type:uuid;not null" json:"sale_id"`

	CustomerEmail string `gorm:"index" json:"customer_email"`
	ItemName      string `json:"item_name"`

	GrossCents int64  `gorm:"not null" json:"gross_cents"`
	FeeCents   int64  `gorm:"not null" json:"fee_cents"`
	NetCents   int64  `gorm:"not null" json:"net_cents"`
	Currency   string `gorm:"type:varchar(3);not null" json:"currency"`

	SoldAt time.Time `gorm:"index" json:"sold_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName implements the gorm naming override.
func (SalesReport) TableName() string {
	return "sales_reports"
}
