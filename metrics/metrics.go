package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	ChatRequestsTotal   *prometheus.CounterVec
	GatewayDuration     *prometheus.HistogramVec
	LeadsCapturedTotal  prometheus.Counter
	SessionEventsTotal  *prometheus.CounterVec
)

func init() {
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chatdesk",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "chatdesk",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	ChatRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chatdesk",
			Name:      "chat_requests_total",
			Help:      "Chat requests by outcome",
		},
		[]string{"outcome"},
	)

	GatewayDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "chatdesk",
			Name:      "gateway_duration_seconds",
			Help:      "Model gateway completion latency in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"model", "status"},
	)

	LeadsCapturedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "chatdesk",
			Name:      "leads_captured_total",
			Help:      "Leads captured through the widget",
		},
	)

	SessionEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chatdesk",
			Name:      "session_events_total",
			Help:      "Owner session lifecycle events published",
		},
		[]string{"type"},
	)

	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		ChatRequestsTotal,
		GatewayDuration,
		LeadsCapturedTotal,
		SessionEventsTotal,
	)
}
