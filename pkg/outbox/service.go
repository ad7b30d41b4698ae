package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hkb-commerce/storefront-backend/pkg/db/models"
	pkgerrors "github.com/hkb-commerce/storefront-backend/pkg/errors"
)

// Service stages domain events for publication.
type Service struct {
	repo Repository
}

// NewService wires the outbox service.
func NewService(repo Repository) (*Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "outbox service requires a repository")
	}
	return &Service{repo: repo}, nil
}

// Emit stages event on the given transaction so it commits atomically with
// the caller's state change.
func (s *Service) Emit(ctx context.Context, tx *gorm.DB, event DomainEvent) error {
	if !event.EventType.IsValid() {
		return pkgerrors.Newf(pkgerrors.CodeInternal, "unknown outbox event type %q", event.EventType)
	}
	if !event.AggregateType.IsValid() {
		return pkgerrors.Newf(pkgerrors.CodeInternal, "unknown outbox aggregate type %q", event.AggregateType)
	}

	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	data, err := json.Marshal(event.Data)
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "marshal outbox event data")
	}

	id := uuid.New()
	envelope := PayloadEnvelope{
		Version:    EnvelopeVersion,
		EventID:    id.String(),
		EventType:  string(event.EventType),
		OccurredAt: occurredAt,
		Actor:      event.Actor,
		Data:       data,
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "marshal outbox envelope")
	}

	row := &models.OutboxEvent{
		ID:            id,
		EventType:     event.EventType,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		Payload:       payload,
		CreatedAt:     occurredAt,
	}
	return s.repo.WithTx(tx).Insert(ctx, row)
}
