package cron

import (
	"context"
	"time"

	"go.uber.org/multierr"
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
)

const sweepBatchSize = 100

// LedgerSweepJobParams wires the sweep job.
type LedgerSweepJobParams struct {
	DB       *db.Client
	Orders   orders.Repository
	Sales    sales.Repository
	Outbox   *outbox.Service
	Interval time.Duration
	Lookback time.Duration
	Metrics  *metrics.CronJobMetrics
}

// LedgerSweepJob rebuilds ledger entries for completed orders whose sale
// insert was lost. It closes the window left open when reconciliation
// completes an order but cannot reach the ledger.
type LedgerSweepJob struct {
	db       *db.Client
	orders   orders.Repository
	sales    sales.Repository
	outbox   *outbox.Service
	interval time.Duration
	lookback time.Duration
	metrics  *metrics.CronJobMetrics
}

// NewLedgerSweepJob validates params and builds the job.
func NewLedgerSweepJob(params LedgerSweepJobParams) (*LedgerSweepJob, error) {
	if params.DB == nil || params.Orders == nil || params.Sales == nil || params.Outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "ledger sweep job requires db, repositories, and outbox")
	}
	if params.Interval <= 0 {
		params.Interval = 10 * time.Minute
	}
	if params.Lookback <= 0 {
		params.Lookback = 72 * time.Hour
	}
	return &LedgerSweepJob{
		db:       params.DB,
		orders:   params.Orders,
		sales:    params.Sales,
		outbox:   params.Outbox,
		interval: params.Interval,
		lookback: params.Lookback,
		metrics:  params.Metrics,
	}, nil
}

// Name implements Job.
func (j *LedgerSweepJob) Name() string {
	return "ledger-sweep"
}

// Interval implements Job.
func (j *LedgerSweepJob) Interval() time.Duration {
	return j.interval
}

// Run implements Job. Each missing entry is rebuilt independently so one
// bad order cannot block the rest of the batch.
func (j *LedgerSweepJob) Run(ctx context.Context) error {
	since := time.Now().Add(-j.lookback)
	candidates, err := j.orders.FindCompletedWithoutSale(ctx, since, sweepBatchSize)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		return nil
	}

	log := logger.FromContext(ctx).WithField("candidates", len(candidates))
	log.Info("ledger sweep found completed orders without sales")

	var errs error
	for i := range candidates {
		if err := j.backfill(ctx, &candidates[i]); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

func (j *LedgerSweepJob) backfill(ctx context.Context, order *models.Order) error {
	// FindCompletedWithoutSale does not preload line items.
	full, err := j.orders.FindByID(ctx, order.ID)
	if err != nil {
		return err
	}

	sale, err := sales.NewFromCompletedOrder(full)
	if err != nil {
		return err
	}

	err = j.db.WithTx(ctx, func(tx *gorm.DB) error {
		if insertErr := j.sales.WithTx(tx).Insert(ctx, sale); insertErr != nil {
			return insertErr
		}
		return j.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPaymentCompleted,
			AggregateType: enums.AggregateSale,
			AggregateID:   sale.ID.String(),
			Actor:         "ledger-sweep",
			Data: map[string]any{
				"order_id":       full.ID.String(),
				"sale_id":        sale.ID.String(),
				"pf_payment_id":  sale.PayfastPaymentID,
				"customer_email": sale.CustomerEmail,
				"item_name":      sale.ItemName,
				"gross_cents":    sale.GrossCents,
				"fee_cents":      sale.FeeCents,
				"net_cents":      sale.NetCents,
				"currency":       sale.Currency,
				"sold_at":        sale.CreatedAt,
			},
		})
	})
	if err != nil {
		if db.IsUniqueViolation(err, models.SalesUniqueConstraint) {
			return nil
		}
		return err
	}

	if j.metrics != nil {
		j.metrics.Swept.Inc()
	}
	return nil
}
