package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters for the booking pipeline.
type BookingMetrics struct {
	submissionsTotal *prometheus.CounterVec
	rejectedTotal    *prometheus.CounterVec
	submitLatency    prometheus.Histogram
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medibook",
			Subsystem: "booking",
			Name:      "submissions_total",
			Help:      "Booking submissions handed to the submission collaborator, by outcome",
		}, []string{"outcome"}),
		rejectedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medibook",
			Subsystem: "booking",
			Name:      "validation_rejections_total",
			Help:      "Submit attempts blocked by client validation, by missing field",
		}, []string{"field"}),
		submitLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "medibook",
			Subsystem: "booking",
			Name:      "submit_latency_seconds",
			Help:      "Latency of the submission collaborator",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.rejectedTotal, m.submitLatency)
	return m
}

func (m *BookingMetrics) ObserveSubmission(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(outcome).Inc()
	m.submitLatency.Observe(seconds)
}

func (m *BookingMetrics) ObserveRejected(fields []string) {
	if m == nil {
		return
	}
	for _, f := range fields {
		m.rejectedTotal.WithLabelValues(f).Inc()
	}
}

// ChatMetrics exposes counters/histograms for chat turns.
type ChatMetrics struct {
	turnsTotal   *prometheus.CounterVec
	replyLatency *prometheus.HistogramVec
}

func NewChatMetrics(reg prometheus.Registerer) *ChatMetrics {
	m := &ChatMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medibook",
			Subsystem: "chat",
			Name:      "turns_total",
			Help:      "Chat turns answered, by provider and outcome",
		}, []string{"provider", "outcome"}),
		replyLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "medibook",
			Subsystem: "chat",
			Name:      "reply_latency_seconds",
			Help:      "Latency of the chat collaborator",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}, []string{"provider"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.replyLatency)
	return m
}

func (m *ChatMetrics) ObserveTurn(provider, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(provider, outcome).Inc()
	m.replyLatency.WithLabelValues(provider).Observe(seconds)
}

// SessionMetrics tracks open page sessions.
type SessionMetrics struct {
	active  prometheus.Gauge
	expired prometheus.Counter
}

func NewSessionMetrics(reg prometheus.Registerer) *SessionMetrics {
	m := &SessionMetrics{
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "medibook",
			Subsystem: "sessions",
			Name:      "active",
			Help:      "Open page sessions",
		}),
		expired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "medibook",
			Subsystem: "sessions",
			Name:      "expired_total",
			Help:      "Page sessions discarded by the idle sweeper",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.active, m.expired)
	return m
}

func (m *SessionMetrics) Opened() {
	if m == nil {
		return
	}
	m.active.Inc()
}

func (m *SessionMetrics) Closed(expired bool) {
	if m == nil {
		return
	}
	m.active.Dec()
	if expired {
		m.expired.Inc()
	}
}
