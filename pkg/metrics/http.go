package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SessionBackendMetrics records request and session-creation outcomes for
// the payment-session backend.
type SessionBackendMetrics struct {
	requestDuration *prometheus.HistogramVec
	sessionsCreated prometheus.Counter
	sessionsFailed  *prometheus.CounterVec
	statusChecks    *prometheus.CounterVec
}

// NewSessionBackendMetrics registers the backend metrics on the provided registerer.
func NewSessionBackendMetrics(reg prometheus.Registerer) *SessionBackendMetrics {
	if reg == nil {
		return &SessionBackendMetrics{}
	}
	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "status"})
	sessionsCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_sessions_created_total",
		Help: "Checkout sessions successfully created.",
	})
	sessionsFailed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_sessions_failed_total",
		Help: "Checkout session creations that failed.",
	}, []string{"reason"})
	statusChecks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "session_status_checks_total",
		Help: "Session status lookups by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(requestDuration, sessionsCreated, sessionsFailed, statusChecks)
	return &SessionBackendMetrics{
		requestDuration: requestDuration,
		sessionsCreated: sessionsCreated,
		sessionsFailed:  sessionsFailed,
		statusChecks:    statusChecks,
	}
}

// ObserveRequest records one handled request.
func (m *SessionBackendMetrics) ObserveRequest(route, status string, duration time.Duration) {
	if m == nil || m.requestDuration == nil {
		return
	}
	m.requestDuration.WithLabelValues(normalizeLabel(route), normalizeLabel(status)).Observe(duration.Seconds())
}

// IncSessionCreated counts a successful session creation.
func (m *SessionBackendMetrics) IncSessionCreated() {
	if m == nil || m.sessionsCreated == nil {
		return
	}
	m.sessionsCreated.Inc()
}

// IncSessionFailed counts a failed session creation by reason.
func (m *SessionBackendMetrics) IncSessionFailed(reason string) {
	if m == nil || m.sessionsFailed == nil {
		return
	}
	m.sessionsFailed.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncStatusCheck counts a session status lookup by outcome.
func (m *SessionBackendMetrics) IncStatusCheck(outcome string) {
	if m == nil || m.statusChecks == nil {
		return
	}
	m.statusChecks.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
