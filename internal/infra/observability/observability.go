// Package observability exposes Prometheus metrics for the mission
// lifecycle: offers, outcomes, and earnings paid out.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the mission lifecycle instruments. A nil *Metrics is valid
// and records nothing, so wiring metrics stays optional.
type Metrics struct {
	MissionsOffered   prometheus.Counter
	MissionsAccepted  prometheus.Counter
	MissionsRejected  prometheus.Counter
	MissionsCompleted prometheus.Counter
	EarningsPaid      prometheus.Counter
	DriverOnline      prometheus.Gauge
}

// New registers the metric set against reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		MissionsOffered: factory.NewCounter(prometheus.CounterOpts{
			Name: "papaleguas_missions_offered_total",
			Help: "Missions surfaced to the driver as alerts.",
		}),
		MissionsAccepted: factory.NewCounter(prometheus.CounterOpts{
			Name: "papaleguas_missions_accepted_total",
			Help: "Missions the driver accepted (manual or auto-accept).",
		}),
		MissionsRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "papaleguas_missions_rejected_total",
			Help: "Missions rejected by the driver or timed out.",
		}),
		MissionsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "papaleguas_missions_completed_total",
			Help: "Deliveries confirmed with a valid customer code.",
		}),
		EarningsPaid: factory.NewCounter(prometheus.CounterOpts{
			Name: "papaleguas_earnings_paid_total",
			Help: "Sum of delivery payouts credited, in R$.",
		}),
		DriverOnline: factory.NewGauge(prometheus.GaugeOpts{
			Name: "papaleguas_driver_online",
			Help: "1 while the driver is available or on a mission.",
		}),
	}
}

// ─── Nil-safe recording helpers ─────────────────────────────────────────────

// Offered records a mission alert.
func (m *Metrics) Offered() {
	if m != nil {
		m.MissionsOffered.Inc()
	}
}

// Accepted records an accepted mission.
func (m *Metrics) Accepted() {
	if m != nil {
		m.MissionsAccepted.Inc()
	}
}

// Rejected records a rejected or timed-out mission.
func (m *Metrics) Rejected() {
	if m != nil {
		m.MissionsRejected.Inc()
	}
}

// Completed records a finished delivery and its payout.
func (m *Metrics) Completed(earnings float64) {
	if m != nil {
		m.MissionsCompleted.Inc()
		m.EarningsPaid.Add(earnings)
	}
}

// Online flips the availability gauge.
func (m *Metrics) Online(online bool) {
	if m == nil {
		return
	}
	if online {
		m.DriverOnline.Set(1)
	} else {
		m.DriverOnline.Set(0)
	}
}
