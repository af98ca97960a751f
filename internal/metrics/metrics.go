package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	EmailsSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "emails_sent_total",
			Help: "Total outbound emails sent",
		},
	)

	EmailFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "email_failures_total",
			Help: "Total failed outbound emails",
		},
	)

	InboundProcessed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "inbound_messages_processed_total",
			Help: "Total unread inbound messages consumed by sweeps",
		},
	)

	RepliesSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "auto_replies_sent_total",
			Help: "Total stage-advance replies sent",
		},
	)

	PendingSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pending_emails_sent_total",
			Help: "Total scheduled pending emails sent",
		},
	)

	Sweeps = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sweeps_total",
			Help: "Total completed sweeps",
		},
	)

	SweepFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sweep_failures_total",
			Help: "Total sweeps aborted by a fatal collaborator failure",
		},
	)
)

func Init() {
	prometheus.MustRegister(
		EmailsSent,
		EmailFailures,
		InboundProcessed,
		RepliesSent,
		PendingSent,
		Sweeps,
		SweepFailures,
	)
}
