package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CronJobMetrics tracks scheduled job runs.
type CronJobMetrics struct {
	Runs     *prometheus.CounterVec
	Duration *prometheus.HistogramVec
	Swept    prometheus.Counter
}

// NewCronJobMetrics registers the cron metric family.
func NewCronJobMetrics(reg prometheus.Registerer) *CronJobMetrics {
	factory := promauto.With(reg)
	return &CronJobMetrics{
		Runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_cron_runs_total",
			Help: "Cron job runs by job and result.",
		}, []string{"job", "result"}),
		Duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storefront_cron_duration_seconds",
			Help:    "Cron job run duration by job.",
			Buckets: prometheus.DefBuckets,
		}, []string{"job"}),
		Swept: factory.NewCounter(prometheus.CounterOpts{
			Name: "storefront_cron_ledger_entries_backfilled_total",
			Help: "Ledger entries rebuilt by the reconciliation sweep.",
		}),
	}
}
