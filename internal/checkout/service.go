package checkout

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hkb-commerce/storefront-backend/internal/orders"
	"github.com/hkb-commerce/storefront-backend/pkg/config"
	"github.com/hkb-commerce/storefront-backend/pkg/db"
	"github.com/hkb-commerce/storefront-backend/pkg/db/models"
	"github.com/hkb-commerce/storefront-backend/pkg/enums"
	pkgerrors "github.com/hkb-commerce/storefront-backend/pkg/errors"
	"github.com/hkb-commerce/storefront-backend/pkg/outbox"
	"github.com/hkb-commerce/storefront-backend/pkg/payfast"
)

// Input is a validated checkout request.
type Input struct {
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	DeliveryAddress string
	PaymentMethod   enums.PaymentMethod
	Currency        string
	TotalCents      int64
	Items           []ItemInput
}

// ItemInput is one cart line.
type ItemInput struct {
	ProductID      string
	Name           string
	UnitPriceCents int64
	Quantity       int
}

// Result is what the buyer's client needs to continue to the gateway.
type Result struct {
	OrderID     uuid.UUID `json:"order_id"`
	RedirectURL string    `json:"redirect_url"`
	TotalCents  int64     `json:"total_cents"`
}

// ServiceParams wires the checkout service.
type ServiceParams struct {
	DB      *db.Client
	Orders  orders.Repository
	Outbox  *outbox.Service
	PayFast config.PayFastConfig
}

// Service creates pending orders and signed gateway redirects.
type Service struct {
	db      *db.Client
	orders  orders.Repository
	outbox  *outbox.Service
	payfast config.PayFastConfig
}

// NewService validates params and builds the service.
func NewService(params ServiceParams) (*Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "checkout service requires a db client")
	}
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "checkout service requires an order repository")
	}
	if params.Outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "checkout service requires an outbox")
	}
	return &Service{
		db:      params.DB,
		orders:  params.Orders,
		outbox:  params.Outbox,
		payfast: params.PayFast,
	}, nil
}

// Initiate creates a PENDING order with its line-item snapshot and returns
// the signed redirect. The client-stated total must equal the sum of the
// snapshotted lines; a stale or tampered cart is rejected before anything
// is written.
func (s *Service) Initiate(ctx context.Context, in Input) (*Result, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	now := time.Now()
	orderID := uuid.New()

	var total int64
	lineItems := make([]models.OrderLineItem, 0, len(in.Items))
	for _, item := range in.Items {
		total += item.UnitPriceCents * int64(item.Quantity)
		lineItems = append(lineItems, models.OrderLineItem{
			ID:             uuid.New(),
			OrderID:        orderID,
			ProductID:      item.ProductID,
			Name:           item.Name,
			UnitPriceCents: item.UnitPriceCents,
			Quantity:       item.Quantity,
			CreatedAt:      now,
		})
	}
	if total != in.TotalCents {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation,
			"stated total %d does not match line items total %d", in.TotalCents, total)
	}

	order := &models.Order{
		ID:              orderID,
		CustomerName:    in.CustomerName,
		CustomerEmail:   in.CustomerEmail,
		CustomerPhone:   in.CustomerPhone,
		DeliveryAddress: in.DeliveryAddress,
		Status:          enums.OrderStatusPending,
		TotalCents:      total,
		Currency:        in.Currency,
		PaymentMethod:   in.PaymentMethod,
		LineItems:       lineItems,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.orders.WithTx(tx).Create(ctx, order); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID.String(),
			Actor:         "checkout",
			Data: map[string]any{
				"order_id":       orderID.String(),
				"customer_email": in.CustomerEmail,
				"total_cents":    total,
				"currency":       in.Currency,
			},
			OccurredAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	redirect := payfast.BuildRedirectURL(s.payfast, payfast.RedirectRequest{
		OrderID:       orderID,
		CustomerName:  in.CustomerName,
		CustomerEmail: in.CustomerEmail,
		TotalCents:    total,
		ItemName:      itemName(orderID, lineItems),
	})

	return &Result{OrderID: orderID, RedirectURL: redirect, TotalCents: total}, nil
}

func validateInput(in Input) error {
	if len(in.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "checkout requires at least one item")
	}
	if !in.PaymentMethod.IsValid() {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid payment method %q", in.PaymentMethod)
	}
	if in.TotalCents <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order total must be positive")
	}
	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "item %q has non-positive quantity", item.Name)
		}
		if item.UnitPriceCents <= 0 {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "item %q has non-positive price", item.Name)
		}
	}
	return nil
}

func itemName(orderID uuid.UUID, items []models.OrderLineItem) string {
	if len(items) == 1 {
		return items[0].Name
	}
	return "Order " + orderID.String()[:8]
}
