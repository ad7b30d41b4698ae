package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WebhookMetrics counts gateway notification outcomes.
type WebhookMetrics struct {
	Received   *prometheus.CounterVec
	Duration   prometheus.Histogram
	LedgerSkew prometheus.Counter
}

// NewWebhookMetrics registers the webhook metric family.
func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	factory := promauto.With(reg)
	return &WebhookMetrics{
		Received: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_webhook_notifications_total",
			Help: "Gateway notifications by outcome.",
		}, []string{"outcome"}),
		Duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "storefront_webhook_duration_seconds",
			Help:    "Notification processing duration.",
			Buckets: prometheus.DefBuckets,
		}),
		LedgerSkew: factory.NewCounter(prometheus.CounterOpts{
			Name: "storefront_webhook_ledger_skew_total",
			Help: "Orders completed whose ledger write failed and was deferred to the sweep.",
		}),
	}
}

// Webhook outcome label values.
const (
	OutcomeCompleted    = "completed"
	OutcomeFailed       = "failed"
	OutcomeDuplicate    = "duplicate"
	OutcomeBadSignature = "bad_signature"
	OutcomeUnknownOrder = "unknown_order"
	OutcomeError        = "error"
)
