package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds all application metrics.
type AppMetrics struct {
	// HTTP Layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPRequestSize     HistogramVec
	HTTPResponseSize    HistogramVec
	HTTPActiveRequests  GaugeVec
	RateLimitedTotal    CounterVec

	// gRPC Layer
	GRPCRequestsTotal   CounterVec
	GRPCRequestDuration HistogramVec

	// Design Layer
	DesignOperationsTotal   CounterVec
	DesignOperationDuration HistogramVec
	DesignVersionConflicts  CounterVec
	DesignReadiness         CounterVec

	// Logo Layer
	LogoUploadsTotal CounterVec
	LogoUploadBytes  HistogramVec

	// Render Layer
	TextureLoadsTotal        CounterVec
	TextureLoadDuration      HistogramVec
	TextureSynthesisDuration HistogramVec
	TextureStoreTotal        CounterVec
	RenderSkippedPlacements  CounterVec

	// Pricing Layer
	QuotesTotal        CounterVec
	QuoteRequestsTotal CounterVec
	QuoteLineTotal     HistogramVec

	// Infrastructure Layer
	DBConnectionPoolSize   GaugeVec
	DBConnectionPoolActive GaugeVec
	DBQueryDuration        HistogramVec
	CacheHitsTotal         CounterVec
	CacheMissesTotal       CounterVec
	EventsPublishedTotal   CounterVec
	MessageProcessDuration HistogramVec

	// System Health
	ServiceUptime     GaugeVec
	HealthCheckStatus GaugeVec
	ErrorsTotal       CounterVec
}

// Default Buckets
var (
	DefaultHTTPDurationBuckets    = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultTextureDurationBuckets = []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}
	DefaultSizeBuckets            = []float64{100, 1000, 10000, 100000, 1000000, 10000000}
	DefaultDBDurationBuckets      = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
	DefaultMoneyBuckets           = []float64{100, 500, 1000, 5000, 10000, 50000, 100000, 500000}
)

// NewAppMetrics registers all metrics and returns AppMetrics struct.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	// HTTP
	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPRequestSize = collector.RegisterHistogram("http_request_size_bytes", "HTTP request size", DefaultSizeBuckets, "method", "path")
	m.HTTPResponseSize = collector.RegisterHistogram("http_response_size_bytes", "HTTP response size", DefaultSizeBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method")
	m.RateLimitedTotal = collector.RegisterCounter("http_rate_limited_total", "Requests rejected by the rate limiter", "backend")

	// gRPC
	m.GRPCRequestsTotal = collector.RegisterCounter("grpc_requests_total", "Total gRPC requests", "service", "method", "code")
	m.GRPCRequestDuration = collector.RegisterHistogram("grpc_request_duration_seconds", "gRPC request duration", DefaultHTTPDurationBuckets, "service", "method")

	// Design
	m.DesignOperationsTotal = collector.RegisterCounter("design_operations_total", "Design operations", "operation", "status")
	m.DesignOperationDuration = collector.RegisterHistogram("design_operation_duration_seconds", "Design operation duration", DefaultHTTPDurationBuckets, "operation")
	m.DesignVersionConflicts = collector.RegisterCounter("design_version_conflicts_total", "Optimistic version conflicts on save")
	m.DesignReadiness = collector.RegisterCounter("design_readiness_transitions_total", "Readiness state after a mutation", "state")

	// Logo
	m.LogoUploadsTotal = collector.RegisterCounter("logo_uploads_total", "Logo uploads", "content_type", "status")
	m.LogoUploadBytes = collector.RegisterHistogram("logo_upload_bytes", "Logo upload size", DefaultSizeBuckets, "content_type")

	// Render
	m.TextureLoadsTotal = collector.RegisterCounter("texture_loads_total", "Logo texture loads", "result")
	m.TextureLoadDuration = collector.RegisterHistogram("texture_load_batch_duration_seconds", "Logo texture batch load duration", DefaultTextureDurationBuckets)
	m.TextureSynthesisDuration = collector.RegisterHistogram("texture_synthesis_duration_seconds", "Base texture synthesis duration", DefaultTextureDurationBuckets, "archetype")
	m.TextureStoreTotal = collector.RegisterCounter("texture_store_total", "Base texture store writes", "result")
	m.RenderSkippedPlacements = collector.RegisterCounter("render_skipped_placements_total", "Placements skipped while mapping a frame", "reason")

	// Pricing
	m.QuotesTotal = collector.RegisterCounter("quotes_total", "Quotes computed", "product_type")
	m.QuoteRequestsTotal = collector.RegisterCounter("quote_requests_total", "Quote and sample requests", "kind", "status")
	m.QuoteLineTotal = collector.RegisterHistogram("quote_line_total", "Quoted line totals in minor units", DefaultMoneyBuckets, "product_type")

	// Infrastructure
	m.DBConnectionPoolSize = collector.RegisterGauge("db_pool_size", "Database connection pool size", "db")
	m.DBConnectionPoolActive = collector.RegisterGauge("db_pool_active", "Database active connections", "db")
	m.DBQueryDuration = collector.RegisterHistogram("db_query_duration_seconds", "Database query duration", DefaultDBDurationBuckets, "db", "operation")
	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")
	m.EventsPublishedTotal = collector.RegisterCounter("events_published_total", "Domain events published", "event_type", "status")
	m.MessageProcessDuration = collector.RegisterHistogram("mq_process_duration_seconds", "Message processing duration", DefaultTextureDurationBuckets, "topic", "status")

	// System Health
	m.ServiceUptime = collector.RegisterGauge("service_uptime_seconds", "Service uptime", "service")
	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "error_type", "severity")

	return m
}

// NewNoopAppMetrics returns metrics backed by the no-op collector.
func NewNoopAppMetrics() *AppMetrics {
	return NewAppMetrics(NewNoopCollector())
}

// Helpers

func statusLabel(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

func RecordHTTPRequest(metrics *AppMetrics, method, path string, statusCode int, duration time.Duration, reqSize, respSize int64) {
	status := strconv.Itoa(statusCode)
	metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	if reqSize > 0 {
		metrics.HTTPRequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	}
	metrics.HTTPResponseSize.WithLabelValues(method, path).Observe(float64(respSize))
}

func RecordGRPCRequest(metrics *AppMetrics, service, method, code string, duration time.Duration) {
	metrics.GRPCRequestsTotal.WithLabelValues(service, method, code).Inc()
	metrics.GRPCRequestDuration.WithLabelValues(service, method).Observe(duration.Seconds())
}

// RecordDesignOperation counts one service operation and its latency.
func RecordDesignOperation(metrics *AppMetrics, operation string, duration time.Duration, err error) {
	metrics.DesignOperationsTotal.WithLabelValues(operation, statusLabel(err)).Inc()
	metrics.DesignOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func RecordLogoUpload(metrics *AppMetrics, contentType string, size int64, err error) {
	metrics.LogoUploadsTotal.WithLabelValues(contentType, statusLabel(err)).Inc()
	if err == nil {
		metrics.LogoUploadBytes.WithLabelValues(contentType).Observe(float64(size))
	}
}

// RecordTextureBatch counts per-logo load outcomes of one merged batch.
func RecordTextureBatch(metrics *AppMetrics, loaded, failed int, duration time.Duration) {
	metrics.TextureLoadsTotal.WithLabelValues("loaded").Add(float64(loaded))
	metrics.TextureLoadsTotal.WithLabelValues("failed").Add(float64(failed))
	metrics.TextureLoadDuration.WithLabelValues().Observe(duration.Seconds())
}

func RecordTextureSynthesis(metrics *AppMetrics, archetype string, duration time.Duration, uploaded bool) {
	metrics.TextureSynthesisDuration.WithLabelValues(archetype).Observe(duration.Seconds())
	if uploaded {
		metrics.TextureStoreTotal.WithLabelValues("uploaded").Inc()
	} else {
		metrics.TextureStoreTotal.WithLabelValues("reused").Inc()
	}
}

func RecordQuote(metrics *AppMetrics, productType string, lineTotal int64) {
	metrics.QuotesTotal.WithLabelValues(productType).Inc()
	metrics.QuoteLineTotal.WithLabelValues(productType).Observe(float64(lineTotal))
}

func RecordQuoteRequest(metrics *AppMetrics, kind string, err error) {
	metrics.QuoteRequestsTotal.WithLabelValues(kind, statusLabel(err)).Inc()
}

func RecordEventPublished(metrics *AppMetrics, eventType string, err error) {
	metrics.EventsPublishedTotal.WithLabelValues(eventType, statusLabel(err)).Inc()
}

func RecordMessageProcessed(metrics *AppMetrics, topic string, duration time.Duration, err error) {
	metrics.MessageProcessDuration.WithLabelValues(topic, statusLabel(err)).Observe(duration.Seconds())
}

func RecordDBQuery(metrics *AppMetrics, db, operation string, duration time.Duration, err error) {
	metrics.DBQueryDuration.WithLabelValues(db, operation).Observe(duration.Seconds())
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues(db, "query_error", "error").Inc()
	}
}

func RecordCacheAccess(metrics *AppMetrics, cache string, hit bool) {
	if hit {
		metrics.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		metrics.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

func RecordError(metrics *AppMetrics, component, errorType, severity string) {
	metrics.ErrorsTotal.WithLabelValues(component, errorType, severity).Inc()
}

//Personal.AI order the ending
