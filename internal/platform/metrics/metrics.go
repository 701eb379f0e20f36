// Package metrics agrupa los colectores Prometheus del servicio.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "vetsheet"

// Metrics es seguro para uso concurrente. Cada instancia tiene su propio registry.
type Metrics struct {
	registry *prometheus.Registry

	DocumentsParsed *prometheus.CounterVec
	Entities        *prometheus.CounterVec
	ParseSeconds    prometheus.Histogram
	CacheLookups    *prometheus.CounterVec
	RecordsSaved    *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		DocumentsParsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_parsed_total",
			Help:      "Documents parsed, by origin (source, upload, cli).",
		}, []string{"origin"}),
		Entities: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entities_extracted_total",
			Help:      "Owners, pets and visits extracted.",
		}, []string{"kind"}),
		ParseSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "parse_duration_seconds",
			Help:      "Time spent decoding and parsing one document.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_cache_lookups_total",
			Help:      "Parse cache lookups by result (hit, miss).",
		}, []string{"result"}),
		RecordsSaved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_saved_total",
			Help:      "Rows created while saving parsed documents.",
		}, []string{"kind"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	m.registry.MustRegister(
		m.DocumentsParsed, m.Entities, m.ParseSeconds, m.CacheLookups,
		m.RecordsSaved, m.HTTPRequests, m.HTTPDuration,
	)
	return m
}

// ObserveParse registra un documento parseado y sus entidades.
func (m *Metrics) ObserveParse(origin string, owners, pets, visits int, d time.Duration) {
	if m == nil {
		return
	}
	m.DocumentsParsed.WithLabelValues(origin).Inc()
	m.Entities.WithLabelValues("owner").Add(float64(owners))
	m.Entities.WithLabelValues("pet").Add(float64(pets))
	m.Entities.WithLabelValues("visit").Add(float64(visits))
	m.ParseSeconds.Observe(d.Seconds())
}

func (m *Metrics) CacheHit() {
	if m != nil {
		m.CacheLookups.WithLabelValues("hit").Inc()
	}
}

func (m *Metrics) CacheMiss() {
	if m != nil {
		m.CacheLookups.WithLabelValues("miss").Inc()
	}
}

func (m *Metrics) ObserveSave(owners, pets, visits int) {
	if m == nil {
		return
	}
	m.RecordsSaved.WithLabelValues("owner").Add(float64(owners))
	m.RecordsSaved.WithLabelValues("pet").Add(float64(pets))
	m.RecordsSaved.WithLabelValues("visit").Add(float64(visits))
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Handler expone el registry en formato Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry para tests y para registrar colectores extra.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
