package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// LedgerRequests counts ledger calls by operation and outcome kind
var LedgerRequests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ethtransfer_ledger_requests_total",
		Help: "Total number of ledger endpoint calls by operation and result",
	},
	[]string{"op", "result"},
)

// LedgerLatency records latency distribution for ledger calls
var LedgerLatency = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "ethtransfer_ledger_request_duration_seconds",
		Help:    "Latency in seconds of ledger endpoint calls",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"op"},
)

// HTTP API metrics
var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ethtransfer_http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"path", "method", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ethtransfer_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)
)

// TransferEventsPublished counts transfer events handed to the broker
var TransferEventsPublished = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ethtransfer_transfer_events_total",
		Help: "Transfer events published, by result",
	},
	[]string{"result"},
)

func init() {
	prometheus.MustRegister(LedgerRequests, LedgerLatency)
	prometheus.MustRegister(HTTPRequestsTotal, HTTPRequestDuration)
	prometheus.MustRegister(TransferEventsPublished)
}
