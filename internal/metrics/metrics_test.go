package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncrementSubmission(ResultAccepted)
	m.IncrementSubmission(ResultAccepted)
	m.IncrementSubmission(ResultRejected)
	m.IncrementNotification("skipped")
	m.IncrementRateLimited()
	m.ObserveNotifyLatency(20 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Submissions.WithLabelValues(ResultAccepted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Submissions.WithLabelValues(ResultRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues("skipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimited))
	assert.Equal(t, 1, testutil.CollectAndCount(m.NotifyLatency))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementSubmission(ResultFailed)
		m.IncrementNotification("failed")
		m.ObserveNotifyLatency(time.Second)
		m.IncrementRateLimited()
	})
}

func TestNew_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
