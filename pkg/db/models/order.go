package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/hkb-commerce/storefront-backend/pkg/enums"
)

// Order is a placed storefront order. Customer and item data are snapshotted
// at checkout time; the payment sub-record columns stay nil until the gateway
// confirms.
type Order struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	CustomerName    string `gorm:"not null" json:"customer_name"`
	CustomerEmail   string `gorm:"not null;index" json:"customer_email"`
	CustomerPhone   string `json:"customer_phone"`
	DeliveryAddress string `json:"delivery_address"`

	Status        enums.OrderStatus   `gorm:"type:varchar(16);not null;index" json:"status"`
	TotalCents    int64               `gorm:"not null" json:"total_cents"`
	Currency      string              `gorm:"type:varchar(3);not null" json:"currency"`
	PaymentMethod enums.PaymentMethod `gorm:"type:varchar(16);not null" json:"payment_method"`

	// Payment sub-record, written once by reconciliation.
	PayfastPaymentID *string    `gorm:"column:payfast_payment_id" json:"payfast_payment_id,omitempty"`
	PaymentStatus    *string    `json:"payment_status,omitempty"`
	AmountGrossCents *int64     `json:"amount_gross_cents,omitempty"`
	AmountFeeCents   *int64     `json:"amount_fee_cents,omitempty"`
	AmountNetCents   *int64     `json:"amount_net_cents,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`

	LineItems []OrderLineItem `gorm:"foreignKey:OrderID" json:"line_items,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName implements the gorm naming override.
func (Order) TableName() string {
	return "orders"
}
