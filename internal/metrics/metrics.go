package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Submission results.
const (
	ResultAccepted = "accepted"
	ResultRejected = "rejected"
	ResultFailed   = "failed"
)

// Metrics provides observability for the contact intake flow.
type Metrics struct {
	// Submissions by result: accepted, rejected (validation), failed (storage)
	Submissions *prometheus.CounterVec

	// Notification outcomes by status: sent, skipped, failed
	Notifications *prometheus.CounterVec

	NotifyLatency prometheus.Histogram

	RateLimited prometheus.Counter
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Submissions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "portfolio_contact_submissions_total",
			Help: "Contact form submissions by result",
		}, []string{"result"}),

		Notifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "portfolio_contact_notifications_total",
			Help: "Notification email outcomes by status",
		}, []string{"status"}),

		NotifyLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "portfolio_contact_notify_duration_seconds",
			Help:    "Duration of notification email attempts",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),

		RateLimited: f.NewCounter(prometheus.CounterOpts{
			Name: "portfolio_ratelimit_rejections_total",
			Help: "Requests rejected by the rate limiter",
		}),
	}
}

// IncrementSubmission records a submission result.
func (m *Metrics) IncrementSubmission(result string) {
	if m != nil {
		m.Submissions.WithLabelValues(result).Inc()
	}
}

// IncrementNotification records a notification outcome.
func (m *Metrics) IncrementNotification(status string) {
	if m != nil {
		m.Notifications.WithLabelValues(status).Inc()
	}
}

// ObserveNotifyLatency records how long a delivery attempt took.
func (m *Metrics) ObserveNotifyLatency(d time.Duration) {
	if m != nil {
		m.NotifyLatency.Observe(d.Seconds())
	}
}

// IncrementRateLimited counts a 429 response.
func (m *Metrics) IncrementRateLimited() {
	if m != nil {
		m.RateLimited.Inc()
	}
}
