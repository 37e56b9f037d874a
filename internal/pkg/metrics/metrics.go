package metrics

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "haley_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "haley_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// Quota metrics
	quotaDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "haley_quota_decisions_total",
		Help: "Quota checks and increments by outcome",
	}, []string{"operation", "outcome"})

	// Rate limit metrics
	rateLimitExceeded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "haley_rate_limit_exceeded_total",
		Help: "Requests rejected by the per-client rate limiter",
	}, []string{"route"})

	// Cache metrics
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "haley_feed_cache_hits_total",
		Help: "Public thumbnail feed cache hits",
	})

	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "haley_feed_cache_misses_total",
		Help: "Public thumbnail feed cache misses",
	})

	// Event metrics
	eventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "haley_events_published_total",
		Help: "Domain events handed to a broker",
	}, []string{"type", "sink", "status"})

	realtimeClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "haley_realtime_clients",
		Help: "Open quota websocket connections on this instance",
	})
)

// Metrics provides methods to record metrics
type Metrics struct{}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	httpRequests.WithLabelValues(method, route, status).Inc()
	httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordQuotaDecision counts one quota outcome, e.g. ("consume", "rejected").
func (m *Metrics) RecordQuotaDecision(operation, outcome string) {
	quotaDecisions.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) RecordRateLimitExceeded(route string) {
	rateLimitExceeded.WithLabelValues(route).Inc()
}

func (m *Metrics) RecordCacheHit() {
	cacheHits.Inc()
}

func (m *Metrics) RecordCacheMiss() {
	cacheMisses.Inc()
}

func (m *Metrics) RecordEventPublished(eventType, sink, status string) {
	eventsPublished.WithLabelValues(eventType, sink, status).Inc()
}

func (m *Metrics) SetRealtimeClients(n int) {
	realtimeClients.Set(float64(n))
}

// Handler exposes the default registry on a Fiber route.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
