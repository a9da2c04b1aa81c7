package registry

import (
	"github.com/prometheus/client_golang/prometheus"
)

type (
	Registry  = prometheus.Registry
	Collector = prometheus.Collector
)

var DefaultRegistry = New()

// New creates a registry with the process and runtime collectors attached.
func New() *Registry {
	r := prometheus.NewRegistry()
	r.MustRegister(
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
	return r
}

// Bare creates an empty registry.
func Bare() *Registry {
	return prometheus.NewRegistry()
}

// Register registers c returning the already registered collector
// when an equal one exists, so components may be created more than once.
func Register(r *Registry, c Collector) (Collector, error) {
	err := r.Register(c)
	if err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector, nil
		}
		return nil, err
	}
	return c, nil
}
