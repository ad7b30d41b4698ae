package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/hkb-commerce/storefront-backend/pkg/enums"
)

// OutboxEvent is a domain event staged in the same transaction as the state
// change it describes. The publisher drains unpublished rows.
type OutboxEvent struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	EventType     enums.OutboxEventType     `gorm:"type:varchar(64);not null" json:"event_type"`
	AggregateType enums.OutboxAggregateType `gorm:"type:varchar(32);not null" json:"aggregate_type"`
	AggregateID   string                    `gorm:"not null;index" json:"aggregate_id"`

	Payload json.RawMessage `gorm:"type:jsonb;not null" json:"payload"`

	Attempts    int        `gorm:"not null;default:0" json:"attempts"`
	LastError   *string    `json:"last_error,omitempty"`
	PublishedAt *time.Time `gorm:"index" json:"published_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName implements the gorm naming override.
func (OutboxEvent) TableName() string {
	return "outbox_events"
}
