package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var TotalRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "aidraw_http_requests_total",
		Help: "Number of HTTP requests.",
	},
	[]string{"path", "code", "method"},
)

var HttpDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name: "aidraw_http_request_duration_seconds",
		Help: "HTTP request duration, streaming requests included.",
		Buckets: []float64{
			0.1, // 100 ms
			0.25,
			0.5,
			1,
			3,
			5,
			10,
			30,
			60,
			120,
		},
	},
	[]string{"path", "code", "method"},
)

var UpstreamCalls = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "aidraw_upstream_calls_total",
		Help: "Provider calls by provider, mode and outcome.",
	},
	[]string{"provider", "mode", "outcome"},
)

var StreamedChunks = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "aidraw_streamed_chunks_total",
		Help: "Text deltas relayed downstream.",
	},
	[]string{"provider"},
)

var ExemptCalls = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "aidraw_quota_exempt_calls_total",
		Help: "Chat calls answered with X-Quota-Exempt: true.",
	},
)

const (
	ModeOnce   = "once"
	ModeStream = "stream"

	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeAborted = "aborted"
)
