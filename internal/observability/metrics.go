// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Mint metrics
	MintsTotal           *prometheus.CounterVec
	EntryPointFallbacks  prometheus.Counter
	ConfirmationAttempts prometheus.Histogram
	TokenIDUnresolved    prometheus.Counter

	// Retrieval metrics
	TokensRetrieved        prometheus.Counter
	OwnershipScans         *prometheus.CounterVec
	MetadataDecodeFailures prometheus.Counter

	// Operation latency
	OperationDuration *prometheus.HistogramVec

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "gameitem_nft"
	}

	return &Metrics{
		MintsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mint",
			Name:      "total",
			Help:      "Total number of mint attempts by outcome",
		}, []string{"outcome"}),
		EntryPointFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mint",
			Name:      "entry_point_fallbacks_total",
			Help:      "Times the primary mint entry point was rejected and an alternate was probed",
		}),
		ConfirmationAttempts: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "mint",
			Name:      "confirmation_attempts",
			Help:      "Number of receipt polls before confirmation",
			Buckets:   []float64{1, 2, 3, 5, 10, 20, 40, 60},
		}),
		TokenIDUnresolved: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mint",
			Name:      "token_id_unresolved_total",
			Help:      "Confirmed mints whose token identifier could not be extracted",
		}),
		TokensRetrieved: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "retrieval",
			Name:      "tokens_total",
			Help:      "Total number of token views returned",
		}),
		OwnershipScans: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "retrieval",
			Name:      "discovery_total",
			Help:      "Total number of ownership discoveries by strategy",
		}, []string{"strategy"}),
		MetadataDecodeFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "retrieval",
			Name:      "metadata_decode_failures_total",
			Help:      "Per-token metadata decode failures",
		}),
		OperationDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of client operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status",
		}, []string{"route", "status"}),
	}
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
