package monitoring

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector owns a service's HTTP metrics and prefixes every metric it
// creates with the service name.
type MetricsCollector struct {
	prefix     string
	registerer prometheus.Registerer
	gatherer   prometheus.Gatherer

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	inFlight            prometheus.Gauge
}

// NewMetricsCollector registers the service metrics on the default registry.
func NewMetricsCollector(serviceName, version, commit string) *MetricsCollector {
	return NewMetricsCollectorWithRegistry(serviceName, version, commit, prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

// NewMetricsCollectorWithRegistry registers the service metrics on reg and
// serves them from gatherer.
func NewMetricsCollectorWithRegistry(serviceName, version, commit string, reg prometheus.Registerer, gatherer prometheus.Gatherer) *MetricsCollector {
	// Prometheus names cannot contain hyphens
	mc := &MetricsCollector{
		prefix:     strings.ReplaceAll(serviceName, "-", "_") + "_",
		registerer: reg,
		gatherer:   gatherer,
	}

	mc.httpRequestsTotal = mc.NewCounter("http_requests_total", "Total number of HTTP requests", []string{"method", "endpoint", "status"})
	mc.httpRequestDuration = mc.NewHistogram("http_request_duration_seconds", "HTTP request duration in seconds", []string{"method", "endpoint"}, nil)
	mc.inFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: mc.prefix + "http_requests_in_flight",
		Help: "Requests currently being served",
	})
	reg.MustRegister(mc.inFlight)
	mc.NewGauge("service_info", "Service build information", []string{"version", "commit"}).WithLabelValues(version, commit).Set(1)

	return mc
}

// Registerer exposes the registry so shared packages can add their own collectors.
func (mc *MetricsCollector) Registerer() prometheus.Registerer { return mc.registerer }

// MetricsMiddleware counts and times requests by route template.
func (mc *MetricsCollector) MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		mc.inFlight.Inc()
		defer mc.inFlight.Dec()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}
		method := c.Request.Method
		mc.httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(c.Writer.Status())).Inc()
		mc.httpRequestDuration.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the gatherer in the Prometheus text format.
func (mc *MetricsCollector) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(mc.gatherer, promhttp.HandlerOpts{}))
}

func (mc *MetricsCollector) NewCounter(name, help string, labels []string) *prometheus.CounterVec {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: mc.prefix + name, Help: help}, labels)
	mc.registerer.MustRegister(counter)
	return counter
}

func (mc *MetricsCollector) NewGauge(name, help string, labels []string) *prometheus.GaugeVec {
	gauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: mc.prefix + name, Help: help}, labels)
	mc.registerer.MustRegister(gauge)
	return gauge
}

// NewHistogram uses prometheus.DefBuckets when buckets is nil.
func (mc *MetricsCollector) NewHistogram(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	if buckets == nil {
		buckets = prometheus.DefBuckets
	}
	histogram := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: mc.prefix + name, Help: help, Buckets: buckets}, labels)
	mc.registerer.MustRegister(histogram)
	return histogram
}
