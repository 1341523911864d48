package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rowmatch_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rowmatch_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ActivityOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rowmatch_activity_operations_total",
			Help: "Total number of activity workflow operations",
		},
		[]string{"operation", "result"},
	)

	ExpiredActivitiesSweptTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rowmatch_expired_activities_swept_total",
			Help: "Total number of expired activities removed while listing",
		},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rowmatch_notifications_total",
			Help: "Total number of status notifications dispatched",
		},
		[]string{"status", "result"},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rowmatch_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rowmatch_email_queue_length",
			Help: "Current length of email queue",
		},
	)

	RateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rowmatch_rate_limited_total",
			Help: "Requests rejected by a rate limiter",
		},
		[]string{"scope"},
	)

	UsersRegisteredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rowmatch_users_registered_total",
			Help: "Total number of registered users",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// RecordActivityOperation labels the result "ok" when err is nil.
func RecordActivityOperation(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	ActivityOperationsTotal.WithLabelValues(operation, result).Inc()
}

func RecordSweep(count int) {
	ExpiredActivitiesSweptTotal.Add(float64(count))
}

func RecordNotification(status, result string) {
	NotificationsTotal.WithLabelValues(status, result).Inc()
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}

func RecordRateLimited(scope string) {
	RateLimitedTotal.WithLabelValues(scope).Inc()
}

func RecordRegistration() {
	UsersRegisteredTotal.Inc()
}
