// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package metrics exposes conversion counters and timings in the Prometheus
// exposition format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tabconv"

// Metrics owns a private registry so that several instances (one per test,
// say) never collide on the global default registerer. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry    *prometheus.Registry
	conversions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	uploadBytes prometheus.Histogram
}

// New creates the conversion metrics plus the standard Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversions_total",
			Help:      "Conversions handled, by input extension, output format and outcome.",
		}, []string{"extension", "format", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "conversion_duration_seconds",
			Help:      "Time spent extracting and rendering, by output format.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"format"}),
		uploadBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upload_bytes",
			Help:      "Size of uploaded files.",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 10),
		}),
	}
	m.registry.MustRegister(
		m.conversions,
		m.duration,
		m.uploadBytes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveConversion records one finished conversion.
func (m *Metrics) ObserveConversion(extension, format, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.conversions.WithLabelValues(extension, format, status).Inc()
	m.duration.WithLabelValues(format).Observe(d.Seconds())
}

// ObserveUpload records the size of an uploaded file.
func (m *Metrics) ObserveUpload(n int64) {
	if m == nil {
		return
	}
	m.uploadBytes.Observe(float64(n))
}

// Handler serves the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
