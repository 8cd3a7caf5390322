package server

import (
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "contestatii"

type metrics struct {
	requests          *prometheus.CounterVec
	duration          *prometheus.HistogramVec
	complaintsCreated prometheus.Counter
	reportsGenerated  prometheus.Counter
}

func newMetrics(registry prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		complaintsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "complaints_created_total",
			Help:      "Complaints successfully created",
		}),
		reportsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "reports_generated_total",
			Help:      "Proces-verbal PDFs generated",
		}),
	}

	for _, c := range []prometheus.Collector{m.requests, m.duration, m.complaintsCreated, m.reportsGenerated} {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}

	return m, nil
}

// routeLabel collapses ids out of the path so the route label stays bounded.
func routeLabel(path string) string {
	for _, prefix := range []string{"/contestatii/", "/membri-contestatie/"} {
		if strings.HasPrefix(path, prefix) && len(path) > len(prefix) {
			return prefix + ":id"
		}
	}

	switch path {
	case "/register", "/login", "/logout", "/verify", "/judete", "/healthz", "/metrics",
		"/contestatii", "/contestatii-only", "/contestatii-stats", "/contestatii-next-number",
		"/membri-contestatie", "/filter-contestatii", "/location-preselection", "/rapoarte":
		return path
	}

	return "other"
}
