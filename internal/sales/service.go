package sales

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/hkb-commerce/storefront-backend/pkg/db/models"
	"github.com/hkb-commerce/storefront-backend/pkg/enums"
	pkgerrors "github.com/hkb-commerce/storefront-backend/pkg/errors"
	"github.com/hkb-commerce/storefront-backend/pkg/payfast"
)

// ServiceParams wires the sales service.
type ServiceParams struct {
	Repo Repository
}

// Service exposes ledger reads and entry construction.
type Service struct {
	repo Repository
}

// NewService validates params and builds the service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "sales service requires a repository")
	}
	return &Service{repo: params.Repo}, nil
}

// List returns a filtered page of ledger entries.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]models.Sale, int64, error) {
	return s.repo.List(ctx, filter)
}

// FindByOrderID returns the ledger entry for an order.
func (s *Service) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Sale, error) {
	return s.repo.FindByOrderID(ctx, orderID)
}

// NewFromNotification builds a ledger entry from a confirmed notification.
// Amounts come from the notification, not the order total; line items are
// copied so the entry stands alone.
func NewFromNotification(order *models.Order, n *payfast.Notification) (*models.Sale, error) {
	items, err := marshalItems(order.LineItems)
	if err != nil {
		return nil, err
	}
	return &models.Sale{
		ID:               uuid.New(),
		OrderID:          order.ID,
		PayfastPaymentID: n.PaymentID,
		PaymentStatus:    n.PaymentStatus,
		GrossCents:       n.GrossCents,
		FeeCents:         n.FeeCents,
		NetCents:         n.NetCents,
		Currency:         order.Currency,
		ItemName:         n.ItemName,
		Items:            items,
		CustomerEmail:    order.CustomerEmail,
		Status:           enums.SaleStatusRecorded,
		CreatedAt:        time.Now(),
	}, nil
}

// NewFromCompletedOrder rebuilds a missing ledger entry from an order's
// payment sub-record. The sweep job uses this when the original insert was
// lost.
func NewFromCompletedOrder(order *models.Order) (*models.Sale, error) {
	if order.PayfastPaymentID == nil || order.PaymentStatus == nil {
		return nil, pkgerrors.Newf(pkgerrors.CodeInternal, "order %s has no payment sub-record", order.ID)
	}
	items, err := marshalItems(order.LineItems)
	if err != nil {
		return nil, err
	}

	gross, fee, net := order.TotalCents, int64(0), order.TotalCents
	if order.AmountGrossCents != nil {
		gross = *order.AmountGrossCents
	}
	if order.AmountFeeCents != nil {
		fee = *order.AmountFeeCents
	}
	if order.AmountNetCents != nil {
		net = *order.AmountNetCents
	}

	createdAt := time.Now()
	if order.CompletedAt != nil {
		createdAt = *order.CompletedAt
	}

	return &models.Sale{
		ID:               uuid.New(),
		OrderID:          order.ID,
		PayfastPaymentID: *order.PayfastPaymentID,
		PaymentStatus:    *order.PaymentStatus,
		GrossCents:       gross,
		FeeCents:         fee,
		NetCents:         net,
		Currency:         order.Currency,
		ItemName:         orderItemName(order),
		Items:            items,
		CustomerEmail:    order.CustomerEmail,
		Status:           enums.SaleStatusBackfilled,
		CreatedAt:        createdAt,
	}, nil
}

func marshalItems(items []models.OrderLineItem) (json.RawMessage, error) {
	if len(items) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "marshal sale items")
	}
	return raw, nil
}

func orderItemName(order *models.Order) string {
	if len(order.LineItems) == 1 {
		return order.LineItems[0].Name
	}
	return "Order " + order.ID.String()[:8]
}
