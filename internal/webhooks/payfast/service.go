package payfast

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/hkb-commerce/storefront-backend/internal/orders"
	"github.com/hkb-commerce/storefront-backend/internal/sales"
	"github.com/hkb-commerce/storefront-backend/pkg/db"
	"github.com/hkb-commerce/storefront-backend/pkg/db/models"
	"github.com/hkb-commerce/storefront-backend/pkg/enums"
	pkgerrors "github.com/hkb-commerce/storefront-backend/pkg/errors"
	"github.com/hkb-commerce/storefront-backend/pkg/logger"
	"github.com/hkb-commerce/storefront-backend/pkg/metrics"
	"github.com/hkb-commerce/storefront-backend/pkg/outbox"
	pfgateway "github.com/hkb-commerce/storefront-backend/pkg/payfast"
)

// ServiceParams wires the reconciliation service.
type ServiceParams struct {
	DB      *db.Client
	Orders  orders.Repository
	Sales   sales.Repository
	Outbox  *outbox.Service
	Metrics *metrics.WebhookMetrics
}

// Service reconciles gateway notifications against orders and the ledger.
type Service struct {
	db      *db.Client
	orders  orders.Repository
	sales   sales.Repository
	outbox  *outbox.Service
	metrics *metrics.WebhookMetrics
}

// NewService validates params and builds the service.
func NewService(params ServiceParams) (*Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "reconciliation service requires a db client")
	}
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "reconciliation service requires an order repository")
	}
	if params.Sales == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "reconciliation service requires a sales repository")
	}
	if params.Outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "reconciliation service requires an outbox")
	}
	return &Service{
		db:      params.DB,
		orders:  params.Orders,
		sales:   params.Sales,
		outbox:  params.Outbox,
		metrics: params.Metrics,
	}, nil
}

// HandleNotification applies one verified notification. The returned outcome
// is a metrics label; a non-nil error means the store was unavailable and
// the gateway should retry.
//
// The order status flip is a single conditional update keyed on PENDING, so
// concurrent deliveries race safely: the loser sees zero rows and stops. The
// ledger insert is guarded by the unique payment-id index; a violation there
// is a duplicate, not an error.
func (s *Service) HandleNotification(ctx context.Context, n *pfgateway.Notification) (string, error) {
	log := logger.FromContext(ctx).WithFields(map[string]any{
		"order_id":       n.OrderID.String(),
		"pf_payment_id":  n.PaymentID,
		"payment_status": n.PaymentStatus,
	})

	exists, err := s.sales.ExistsByPaymentID(ctx, n.PaymentID)
	if err != nil {
		return metrics.OutcomeError, err
	}
	if exists {
		log.Info("notification replay, ledger entry already present")
		return metrics.OutcomeDuplicate, nil
	}

	if !n.IsComplete() {
		return s.handleUnsuccessful(ctx, log, n)
	}
	return s.handleComplete(ctx, log, n)
}

func (s *Service) handleUnsuccessful(ctx context.Context, log *logger.Logger, n *pfgateway.Notification) (string, error) {
	target := enums.OrderStatusFailed
	if n.PaymentStatus == pfgateway.PaymentStatusCancelled {
		target = enums.OrderStatusCancelled
	}

	var flipped bool
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		var txErr error
		flipped, txErr = s.orders.WithTx(tx).MarkUnsuccessful(ctx, n.OrderID, target, n.PaymentID, n.PaymentStatus)
		if txErr != nil || !flipped {
			return txErr
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPaymentFailed,
			AggregateType: enums.AggregateOrder,
			AggregateID:   n.OrderID.String(),
			Actor:         "payfast-webhook",
			Data: map[string]any{
				"order_id":       n.OrderID.String(),
				"pf_payment_id":  n.PaymentID,
				"payment_status": n.PaymentStatus,
			},
		})
	})
	if err != nil {
		return metrics.OutcomeError, err
	}
	if !flipped {
		return s.classifyNoFlip(ctx, log, n)
	}
	log.WithField("status", target.String()).Info("order marked unsuccessful")
	return metrics.OutcomeFailed, nil
}

// classifyNoFlip tells a replay on a terminal order apart from a
// notification for an order this store has never seen. Both are
// acknowledged; only the label differs.
func (s *Service) classifyNoFlip(ctx context.Context, log *logger.Logger, n *pfgateway.Notification) (string, error) {
	if _, err := s.orders.FindByID(ctx, n.OrderID); err != nil {
		if pkgerrors.CodeOf(err) == pkgerrors.CodeNotFound {
			log.Warn("notification references unknown order")
			return metrics.OutcomeUnknownOrder, nil
		}
		return metrics.OutcomeError, err
	}
	log.Info("order already terminal, ignoring notification")
	return metrics.OutcomeDuplicate, nil
}

func (s *Service) handleComplete(ctx context.Context, log *logger.Logger, n *pfgateway.Notification) (string, error) {
	flipped, err := s.orders.CompletePayment(ctx, n.OrderID, orders.PaymentOutcome{
		PaymentID:     n.PaymentID,
		PaymentStatus: n.PaymentStatus,
		GrossCents:    n.GrossCents,
		FeeCents:      n.FeeCents,
		NetCents:      n.NetCents,
		CompletedAt:   time.Now(),
	})
	if err != nil {
		return metrics.OutcomeError, err
	}
	if !flipped {
		return s.classifyNoFlip(ctx, log, n)
	}

	order, err := s.orders.FindByID(ctx, n.OrderID)
	if err != nil {
		// Order is COMPLETED but the ledger write could not start. The
		// sweep job rebuilds the entry.
		s.recordSkew(log, err)
		return metrics.OutcomeCompleted, nil
	}

	sale, err := sales.NewFromNotification(order, n)
	if err != nil {
		s.recordSkew(log, err)
		return metrics.OutcomeCompleted, nil
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if insertErr := s.sales.WithTx(tx).Insert(ctx, sale); insertErr != nil {
			return insertErr
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPaymentCompleted,
			AggregateType: enums.AggregateSale,
			AggregateID:   sale.ID.String(),
			Actor:         "payfast-webhook",
			Data:          saleEventData(order, sale),
		})
	})
	if err != nil {
		if db.IsUniqueViolation(err, models.SalesUniqueConstraint) {
			log.Info("ledger entry already present, concurrent delivery won")
			return metrics.OutcomeDuplicate, nil
		}
		s.recordSkew(log, err)
		return metrics.OutcomeCompleted, nil
	}

	log.Info("payment reconciled, ledger entry recorded")
	return metrics.OutcomeCompleted, nil
}

func (s *Service) recordSkew(log *logger.Logger, err error) {
	log.WithFields(pkgerrors.Dump(err)).Warn("order completed but ledger write deferred to sweep")
	if s.metrics != nil {
		s.metrics.LedgerSkew.Inc()
	}
}

func saleEventData(order *models.Order, sale *models.Sale) map[string]any {
	return map[string]any{
		"order_id":       order.ID.String(),
		"sale_id":        sale.ID.String(),
		"pf_payment_id":  sale.PayfastPaymentID,
		"customer_email": sale.CustomerEmail,
		"item_name":      sale.ItemName,
		"gross_cents":    sale.GrossCents,
		"fee_cents":      sale.FeeCents,
		"net_cents":      sale.NetCents,
		"currency":       sale.Currency,
		"sold_at":        sale.CreatedAt,
	}
}
