package metrics

import "github.com/prometheus/client_golang/prometheus"

// PortalMetrics exposes counters/histograms for booking flows.
type PortalMetrics struct {
	bookingsConfirmed *prometheus.CounterVec
	cancellations     *prometheus.CounterVec
	stepTransitions   *prometheus.CounterVec
	confirmLatency    prometheus.Histogram
}

func NewPortalMetrics(reg prometheus.Registerer) *PortalMetrics {
	m := &PortalMetrics{
		bookingsConfirmed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "booking",
			Name:      "confirmed_total",
			Help:      "Total appointments created through the booking wizard",
		}, []string{"status"}),
		cancellations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "appointments",
			Name:      "cancelled_total",
			Help:      "Total appointment cancellations",
		}, []string{"reason"}),
		stepTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "wizard",
			Name:      "step_transitions_total",
			Help:      "Wizard step transitions",
		}, []string{"from", "to"}),
		confirmLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "portal",
			Subsystem: "booking",
			Name:      "confirm_latency_seconds",
			Help:      "Latency of the booking confirm call",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsConfirmed, m.cancellations, m.stepTransitions, m.confirmLatency)
	return m
}

func (m *PortalMetrics) ObserveBookingConfirmed(status string) {
	if m == nil {
		return
	}
	m.bookingsConfirmed.WithLabelValues(status).Inc()
}

func (m *PortalMetrics) ObserveCancellation(reason string) {
	if m == nil {
		return
	}
	m.cancellations.WithLabelValues(reason).Inc()
}

func (m *PortalMetrics) ObserveStepTransition(from, to string) {
	if m == nil {
		return
	}
	m.stepTransitions.WithLabelValues(from, to).Inc()
}

func (m *PortalMetrics) ObserveConfirmLatency(seconds float64) {
	if m == nil {
		return
	}
	m.confirmLatency.Observe(seconds)
}
