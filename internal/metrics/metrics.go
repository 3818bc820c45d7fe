package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "f2fit_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "f2fit_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "f2fit_logins_total",
			Help: "Login attempts by resulting role or failure",
		},
		[]string{"outcome"},
	)

	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "f2fit_bookings_total",
			Help: "Class booking attempts",
		},
		[]string{"status"},
	)

	SubscriptionsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "f2fit_subscriptions_created_total",
			Help: "Member subscriptions created",
		},
		[]string{"source"},
	)

	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "f2fit_exports_total",
			Help: "Generated export files",
		},
		[]string{"format"},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "f2fit_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// RecordLogin takes the role on success, or "failed".
func RecordLogin(outcome string) {
	LoginsTotal.WithLabelValues(outcome).Inc()
}

func RecordBooking(status string) {
	BookingsTotal.WithLabelValues(status).Inc()
}

func RecordSubscription(source string) {
	SubscriptionsCreatedTotal.WithLabelValues(source).Inc()
}

func RecordExport(format string) {
	ExportsTotal.WithLabelValues(format).Inc()
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}
