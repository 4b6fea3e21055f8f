package metrics

import "github.com/prometheus/client_golang/prometheus"

// AssistantMetrics exposes counters/histograms for calls, turns and bookings.
type AssistantMetrics struct {
	turnLatency    *prometheus.HistogramVec
	modelLatency   *prometheus.HistogramVec
	bookingsTotal  *prometheus.CounterVec
	languageSwitch *prometheus.CounterVec
	webhooksTotal  *prometheus.CounterVec
	activeSessions prometheus.Gauge
}

func NewAssistantMetrics(reg prometheus.Registerer) *AssistantMetrics {
	m := &AssistantMetrics{
		turnLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "aira",
			Subsystem: "dialogue",
			Name:      "turn_latency_seconds",
			Help:      "Latency of one conversational turn",
			Buckets:   prometheus.DefBuckets,
		}, []string{"language", "intent"}),
		modelLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "aira",
			Subsystem: "model",
			Name:      "call_latency_seconds",
			Help:      "Latency of language model calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "status"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aira",
			Subsystem: "booking",
			Name:      "attempts_total",
			Help:      "Appointment booking attempts by outcome",
		}, []string{"outcome"}),
		languageSwitch: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aira",
			Subsystem: "dialogue",
			Name:      "language_switch_total",
			Help:      "Sessions that switched language after the first utterance",
		}, []string{"from", "to"}),
		webhooksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aira",
			Subsystem: "webhook",
			Name:      "events_total",
			Help:      "Inbound webhook events",
		}, []string{"source", "event"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "aira",
			Subsystem: "dialogue",
			Name:      "active_sessions",
			Help:      "Sessions currently held in memory",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnLatency, m.modelLatency, m.bookingsTotal, m.languageSwitch, m.webhooksTotal, m.activeSessions)
	return m
}

func (m *AssistantMetrics) ObserveTurn(language, intent string, seconds float64) {
	if m == nil {
		return
	}
	m.turnLatency.WithLabelValues(language, intent).Observe(seconds)
}

func (m *AssistantMetrics) ObserveModelCall(operation, status string, seconds float64) {
	if m == nil {
		return
	}
	m.modelLatency.WithLabelValues(operation, status).Observe(seconds)
}

func (m *AssistantMetrics) RecordBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(outcome).Inc()
}

func (m *AssistantMetrics) RecordLanguageSwitch(from, to string) {
	if m == nil {
		return
	}
	m.languageSwitch.WithLabelValues(from, to).Inc()
}

func (m *AssistantMetrics) ObserveWebhook(source, event string) {
	if m == nil {
		return
	}
	m.webhooksTotal.WithLabelValues(source, event).Inc()
}

func (m *AssistantMetrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}
