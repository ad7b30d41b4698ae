package outbox

import (
	"encoding/json"
	"time"

	"github.com/hkb-commerce/storefront-backend/pkg/enums"
)

// EnvelopeVersion is bumped when the published payload shape changes.
const EnvelopeVersion = 1

// DomainEvent is what services hand to the outbox. Data must already be
// JSON-serializable.
type DomainEvent struct {
	EventType     enums.OutboxEventType
	AggregateType enums.OutboxAggregateType
	AggregateID   string
	Actor         string
	Data          any
	OccurredAt    time.Time
}

// PayloadEnvelope is the wire shape published to the broker.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Actor      string          `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}
