package collector

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"git.backbone/corpix/greeter/pkg/errors"
	"git.backbone/corpix/greeter/pkg/meta"
	"git.backbone/corpix/greeter/pkg/telemetry/registry"
)

type (
	CounterVec   = prometheus.CounterVec
	HistogramVec = prometheus.HistogramVec
	Labels       = prometheus.Labels

	HTTP struct {
		Requests *CounterVec
		Latency  *HistogramVec
	}
)

var HTTPLabels = []string{"method", "route", "status"}

func Name(subsystem string, name string, rest ...string) string {
	return strings.Join(
		append(
			[]string{meta.TelemetryNamespace, subsystem, name},
			rest...,
		),
		"_",
	)
}

func (h *HTTP) Observe(method string, route string, status int, latency time.Duration) {
	labels := Labels{
		"method": method,
		"route":  route,
		"status": strconv.Itoa(status),
	}
	h.Requests.With(labels).Inc()
	h.Latency.With(labels).Observe(latency.Seconds())
}

// NewHTTP registers request collectors for subsystem in r.
// Collectors registered earlier under the same names are reused.
func NewHTTP(r *registry.Registry, subsystem string) (*HTTP, error) {
	requests, err := registry.Register(r, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: Name(subsystem, "http_requests_total"),
			Help: "Number of handled HTTP requests",
		},
		HTTPLabels,
	))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to register %s requests collector", subsystem)
	}

	latency, err := registry.Register(r, prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    Name(subsystem, "http_request_duration_seconds"),
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		HTTPLabels,
	))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to register %s latency collector", subsystem)
	}

	return &HTTP{
		Requests: requests.(*CounterVec),
		Latency:  latency.(*HistogramVec),
	}, nil
}
