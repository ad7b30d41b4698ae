package webhooks

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/hkb-commerce/storefront-backend/api/responses"
	pfwebhook "github.com/hkb-commerce/storefront-backend/internal/webhooks/payfast"
	"github.com/hkb-commerce/storefront-backend/pkg/config"
	pkgerrors "github.com/hkb-commerce/storefront-backend/pkg/errors"
	"github.com/hkb-commerce/storefront-backend/pkg/logger"
	"github.com/hkb-commerce/storefront-backend/pkg/metrics"
	pfgateway "github.com/hkb-commerce/storefront-backend/pkg/payfast"
)

const maxNotificationBody = 64 << 10

// NotificationHandler is the reconciliation surface the controller calls.
// The concrete service lives in internal/webhooks/payfast; tests fake it.
type NotificationHandler interface {
	HandleNotification(ctx context.Context, n *pfgateway.Notification) (string, error)
}

// PayFastController receives gateway payment notifications.
//
// Response discipline: a non-2xx tells the gateway to retry, so only a
// store outage earns one. Bad signatures, unknown orders, and replays are
// acknowledged with 200 and recorded in metrics instead.
type PayFastController struct {
	svc     NotificationHandler
	guard   *pfwebhook.IdempotencyGuard
	cfg     config.PayFastConfig
	metrics *metrics.WebhookMetrics
}

// NewPayFastController wires the controller.
func NewPayFastController(svc NotificationHandler, guard *pfwebhook.IdempotencyGuard, cfg config.PayFastConfig, m *metrics.WebhookMetrics) *PayFastController {
	return &PayFastController{svc: svc, guard: guard, cfg: cfg, metrics: m}
}

// Notify handles one instant payment notification.
func (c *PayFastController) Notify(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	log := logger.FromContext(r.Context())

	body, err := io.ReadAll(io.LimitReader(r.Body, maxNotificationBody))
	if err != nil {
		responses.WriteError(w, r, pkgerrors.Wrap(err, pkgerrors.CodeDependency, "read notification body"))
		return
	}

	n, err := pfgateway.ParseNotification(body)
	if err != nil {
		log.WithFields(pkgerrors.Dump(err)).Warn("acknowledging malformed notification")
		c.record(metrics.OutcomeBadSignature, started)
		c.ack(w)
		return
	}

	if !pfgateway.VerifySignature(n.Fields, c.cfg.Passphrase) {
		log.WithField("pf_payment_id", n.PaymentID).Warn("acknowledging notification with invalid signature")
		c.record(metrics.OutcomeBadSignature, started)
		c.ack(w)
		return
	}

	fresh, guardErr := c.guard.CheckAndMark(r.Context(), n.PaymentID)
	if guardErr != nil {
		log.Error(guardErr, "idempotency guard unavailable, relying on ledger constraint")
	}
	if !fresh {
		log.WithField("pf_payment_id", n.PaymentID).Info("acknowledging replayed notification")
		c.record(metrics.OutcomeDuplicate, started)
		c.ack(w)
		return
	}

	outcome, err := c.svc.HandleNotification(r.Context(), n)
	if err != nil {
		// Release the marker so the gateway's retry gets processed.
		_ = c.guard.Delete(r.Context(), n.PaymentID)
		c.record(metrics.OutcomeError, started)
		responses.WriteError(w, r, err)
		return
	}

	c.record(outcome, started)
	c.ack(w)
}

func (c *PayFastController) ack(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (c *PayFastController) record(outcome string, started time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.Received.WithLabelValues(outcome).Inc()
	c.metrics.Duration.Observe(time.Since(started).Seconds())
}
