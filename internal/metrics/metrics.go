package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, route, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, route, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// QuestionsTotal counts relayed questions by outcome (answered, empty, unauthenticated, upstream_error).
	QuestionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edu_questions_total",
			Help: "Total number of questions handled by outcome",
		},
		[]string{"outcome"},
	)

	// LoginsTotal counts login attempts by outcome (success, invalid, error).
	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edu_logins_total",
			Help: "Total number of login attempts by outcome",
		},
		[]string{"outcome"},
	)

	// SessionsPurged counts expired session records removed by the purge job.
	SessionsPurged = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "edu_sessions_purged_total",
			Help: "Total number of expired sessions deleted",
		},
	)
)

var initOnce sync.Once

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, QuestionsTotal, LoginsTotal, SessionsPurged)
	})
}

// RecordRequest records duration and count for an HTTP request. route should
// be the matched route pattern so usernames never become label values.
func RecordRequest(method, route string, statusCode int, durationSeconds float64) {
	if route == "" {
		route = "unmatched"
	}
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, route, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, route, status).Inc()
}

func IncQuestions(outcome string) {
	QuestionsTotal.WithLabelValues(outcome).Inc()
}

func IncLogins(outcome string) {
	LoginsTotal.WithLabelValues(outcome).Inc()
}

// AddSessionsPurged adds n to the purged sessions counter.
func AddSessionsPurged(n int64) {
	if n > 0 {
		SessionsPurged.Add(float64(n))
	}
}
