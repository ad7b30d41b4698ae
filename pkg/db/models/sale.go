package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/hkb-commerce/storefront-backend/pkg/enums"
)

// SalesUniqueConstraint is the unique index guarding one ledger entry per
// gateway payment. Idempotency of notification processing hangs off it.
const SalesUniqueConstraint = "ux_sales_payfast_payment_id"

// Sale is an append-only ledger entry for a confirmed payment. Amounts come
// from the gateway notification, never from the order total.
type Sale struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`

	PayfastPaymentID string `gorm:"column:payfast_payment_id;not null;uniqueIndex:ux_sales_payfast_payment_id" json:"payfast_payment_id"`
	PaymentStatus    string `gorm:"not null" json:"payment_status"`

	GrossCents int64  `gorm:"not null" json:"gross_cents"`
	FeeCents   int64  `gorm:"not null" json:"fee_cents"`
	NetCents   int64  `gorm:"not null" json:"net_cents"`
	Currency   string `gorm:"type:varchar(3);not null" json:"currency"`

	ItemName      string          `json:"item_name"`
	Items         json.RawMessage `gorm:"type:jsonb" json:"items,omitempty"`
	CustomerEmail string          `gorm:"index" json:"customer_email"`

	Status enums.SaleStatus `gorm:"type:varchar(16);not null" json:"status"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName implements the gorm naming override.
func (Sale) TableName() string {
	return "sales"
}
