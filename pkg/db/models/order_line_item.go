package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderLineItem snapshots one cart line at checkout. Prices are copied, not
// referenced, so later catalog edits never change a placed order.
type OrderLineItem struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`

	ProductID      string `gorm:"not null" json:"product_id"`
	Name           string `gorm:"not null" json:"name"`
	UnitPriceCents int64  `gorm:"not null" json:"unit_price_cents"`
	Quantity       int    `gorm:"not null" json:"quantity"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName implements the gorm naming override.
func (OrderLineItem) TableName() string {
	return "order_line_items"
}

// SubtotalCents is the line total.
func (li OrderLineItem) SubtotalCents() int64 {
	return li.UnitPriceCents * int64(li.Quantity)
}
