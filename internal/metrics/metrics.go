// Package metrics содержит prometheus-метрики сервиса.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Результаты операций с подписками.
const (
	ResultCreated  = "created"
	ResultRenewed  = "renewed"
	ResultConflict = "conflict"
	ResultRemoved  = "removed"
	ResultNotFound = "not_found"
	ResultRetry    = "retry"
	ResultError    = "error"
)

// Metrics объединяет коллекторы сервиса.
type Metrics struct {
	operations      *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	topCacheLookups *prometheus.CounterVec
}

// New создаёт коллекторы и регистрирует их в reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "subscription_tracker",
			Name:      "subscription_operations_total",
			Help:      "Subscription lifecycle operations by outcome.",
		}, []string{"operation", "result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "subscription_tracker",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern, method and status code.",
		}, []string{"route", "method", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "subscription_tracker",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		topCacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "subscription_tracker",
			Name:      "top_cache_lookups_total",
			Help:      "Top subscriptions cache lookups by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.operations, m.httpRequests, m.httpDuration, m.topCacheLookups)
	return m
}

// ObserveOperation учитывает исход операции над подпиской.
func (m *Metrics) ObserveOperation(operation, result string) {
	m.operations.WithLabelValues(operation, result).Inc()
}

// ObserveTopCache учитывает попадание или промах кеша рейтинга.
func (m *Metrics) ObserveTopCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.topCacheLookups.WithLabelValues(result).Inc()
}

// ObserveHTTP учитывает обработанный HTTP-запрос.
func (m *Metrics) ObserveHTTP(route, method, code string, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(route, method, code).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}
