package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

var _ Notify = (*notifyMetrics)(nil)

type notifyMetrics struct {
	sent        *prometheus.CounterVec
	failed      *prometheus.CounterVec
	redelivered *prometheus.CounterVec
}

func newNotifyMetrics(registry *promRegistry) *notifyMetrics {
	sent := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_messages_sent_total",
			Help: "Total number of staff notifications delivered",
		},
		[]string{"kind"},
	)

	failed := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_messages_failed_total",
			Help: "Total number of staff notifications that exhausted delivery attempts",
		},
		[]string{"kind"},
	)

	redelivered := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_messages_redelivered_total",
			Help: "Total number of staff notifications delivered from the dead letter queue",
		},
		[]string{"kind"},
	)

	registry.registry.MustRegister(sent, failed, redelivered)

	return &notifyMetrics{
		sent:        sent,
		failed:      failed,
		redelivered: redelivered,
	}
}

func (m *notifyMetrics) Sent(kind string) {
	m.sent.WithLabelValues(kind).Add(1)
}

func (m *notifyMetrics) Failed(kind string) {
	m.failed.WithLabelValues(kind).Add(1)
}

func (m *notifyMetrics) Redelivered(kind string) {
	m.redelivered.WithLabelValues(kind).Add(1)
}
