package reports

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/hkb-commerce/storefront-backend/pkg/db/models"
	"github.com/hkb-commerce/storefront-backend/pkg/enums"
	pkgerrors "github.com/hkb-commerce/storefront-backend/pkg/errors"
	"github.com/hkb-commerce/storefront-backend/pkg/logger"
	"github.com/hkb-commerce/storefront-backend/pkg/outbox"
)

// saleEvent is the payment.completed data shape published by reconciliation
// and the sweep.
type saleEvent struct {
	OrderID       string    `json:"order_id"`
	SaleID        string    `json:"sale_id"`
	CustomerEmail string    `json:"customer_email"`
	ItemName      string    `json:"item_name"`
	GrossCents    int64     `json:"gross_cents"`
	FeeCents      int64     `json:"fee_cents"`
	NetCents      int64     `json:"net_cents"`
	Currency      string    `json:"currency"`
	SoldAt        time.Time `json:"sold_at"`
}

// Consumer projects payment.completed events into the sales_reports table.
type Consumer struct {
	repo Repository
}

// NewConsumer validates params and builds the consumer.
func NewConsumer(repo Repository) (*Consumer, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "reports consumer requires a repository")
	}
	return &Consumer{repo: repo}, nil
}

// Handle processes one broker message. Returning an error nacks the message
// for redelivery; unknown event types ack and are dropped.
func (c *Consumer) Handle(ctx context.Context, data []byte, attributes map[string]string) error {
	log := logger.FromContext(ctx)

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		log.Error(err, "drop undecodable report message")
		return nil
	}
	if envelope.EventType != string(enums.EventPaymentCompleted) {
		return nil
	}

	var event saleEvent
	if err := json.Unmarshal(envelope.Data, &event); err != nil {
		log.WithField("event_id", envelope.EventID).Error(err, "drop malformed payment.completed event")
		return nil
	}

	report, err := buildReport(event)
	if err != nil {
		log.WithField("event_id", envelope.EventID).Error(err, "drop payment.completed event with bad ids")
		return nil
	}

	if err := c.repo.Upsert(ctx, report); err != nil {
		return err
	}
	log.WithFields(map[string]any{
		"event_id": envelope.EventID,
		"order_id": event.OrderID,
	}).Info("sales report row upserted")
	return nil
}

func buildReport(event saleEvent) (*models.SalesReport, error) {
	orderID, err := uuid.Parse(event.OrderID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeValidation, "parse order id")
	}
	saleID, err := uuid.Parse(event.SaleID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeValidation, "parse sale id")
	}

	soldAt := event.SoldAt
	if soldAt.IsZero() {
		soldAt = time.Now()
	}

	now := time.Now()
	return &models.SalesReport{
		ID:            uuid.New(),
		OrderID:       orderID,
		SaleID:        saleID,
		CustomerEmail: event.CustomerEmail,
		ItemName:      event.ItemName,
		GrossCents:    event.GrossCents,
		FeeCents:      event.FeeCents,
		NetCents:      event.NetCents,
		Currency:      event.Currency,
		SoldAt:        soldAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}
