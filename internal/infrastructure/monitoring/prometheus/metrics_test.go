package prometheus

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAppMetrics(t *testing.T) (*AppMetrics, MetricsCollector) {
	c := newTestCollector(t)
	return NewAppMetrics(c), c
}

func TestNewAppMetrics_AllMetricsRegistered(t *testing.T) {
	m, _ := newTestAppMetrics(t)
	require.NotNil(t, m)

	assert.NotNil(t, m.HTTPRequestsTotal)
	assert.NotNil(t, m.DesignOperationsTotal)
	assert.NotNil(t, m.LogoUploadsTotal)
	assert.NotNil(t, m.TextureLoadsTotal)
	assert.NotNil(t, m.QuotesTotal)
	assert.NotNil(t, m.EventsPublishedTotal)
}

func TestRecordHTTPRequest_AllMetricsUpdated(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordHTTPRequest(m, "GET", "/api/v1/designs/{id}", 200, 100*time.Millisecond, 1024, 2048)

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `test_unit_http_requests_total{method="GET",path="/api/v1/designs/{id}",status_code="200"} 1`)
	assert.Contains(t, output, `test_unit_http_request_size_bytes_sum{method="GET",path="/api/v1/designs/{id}"} 1024`)
	assert.Contains(t, output, `test_unit_http_response_size_bytes_sum{method="GET",path="/api/v1/designs/{id}"} 2048`)
	assert.Contains(t, output, `test_unit_http_request_duration_seconds_count{method="GET",path="/api/v1/designs/{id}"} 1`)
}

func TestRecordGRPCRequest(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordGRPCRequest(m, "grpc.health.v1.Health", "Check", "OK", 5*time.Millisecond)

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `test_unit_grpc_requests_total{code="OK",method="Check",service="grpc.health.v1.Health"} 1`)
	assert.Contains(t, output, `test_unit_grpc_request_duration_seconds_count{method="Check",service="grpc.health.v1.Health"} 1`)
}

func TestRecordDesignOperation_Status(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordDesignOperation(m, "toggle_location", time.Millisecond, nil)
	RecordDesignOperation(m, "toggle_location", time.Millisecond, errors.New("boom"))

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `test_unit_design_operations_total{operation="toggle_location",status="success"} 1`)
	assert.Contains(t, output, `test_unit_design_operations_total{operation="toggle_location",status="failure"} 1`)
	assert.Contains(t, output, `test_unit_design_operation_duration_seconds_count{operation="toggle_location"} 2`)
}

func TestRecordLogoUpload_BytesOnlyOnSuccess(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordLogoUpload(m, "image/png", 4096, nil)
	RecordLogoUpload(m, "image/png", 999, errors.New("too large"))

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `test_unit_logo_uploads_total{content_type="image/png",status="success"} 1`)
	assert.Contains(t, output, `test_unit_logo_uploads_total{content_type="image/png",status="failure"} 1`)
	assert.Contains(t, output, `test_unit_logo_upload_bytes_sum{content_type="image/png"} 4096`)
}

func TestRecordTextureBatch(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordTextureBatch(m, 3, 1, 20*time.Millisecond)

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `test_unit_texture_loads_total{result="loaded"} 3`)
	assert.Contains(t, output, `test_unit_texture_loads_total{result="failed"} 1`)
	assert.Contains(t, output, `test_unit_texture_load_batch_duration_seconds_count 1`)
}

func TestRecordTextureSynthesis_UploadedVsReused(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordTextureSynthesis(m, "fabric", 10*time.Millisecond, true)
	RecordTextureSynthesis(m, "fabric", 10*time.Millisecond, false)
	RecordTextureSynthesis(m, "card", 10*time.Millisecond, false)

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `test_unit_texture_store_total{result="uploaded"} 1`)
	assert.Contains(t, output, `test_unit_texture_store_total{result="reused"} 2`)
	assert.Contains(t, output, `test_unit_texture_synthesis_duration_seconds_count{archetype="fabric"} 2`)
}

func TestRecordQuoteAndRequest(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordQuote(m, "tshirt", 12500)
	RecordQuoteRequest(m, "sample", nil)

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `test_unit_quotes_total{product_type="tshirt"} 1`)
	assert.Contains(t, output, `test_unit_quote_line_total_sum{product_type="tshirt"} 12500`)
	assert.Contains(t, output, `test_unit_quote_requests_total{kind="sample",status="success"} 1`)
}

func TestRecordCacheAccess(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordCacheAccess(m, "design", true)
	RecordCacheAccess(m, "design", false)
	RecordCacheAccess(m, "design", false)

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `test_unit_cache_hits_total{cache="design"} 1`)
	assert.Contains(t, output, `test_unit_cache_misses_total{cache="design"} 2`)
}

func TestRecordDBQuery_ErrorCounted(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordDBQuery(m, "postgres", "update_design", time.Millisecond, errors.New("deadlock"))

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `test_unit_errors_total{component="postgres",error_type="query_error",severity="error"} 1`)
	assert.Contains(t, output, `test_unit_db_query_duration_seconds_count{db="postgres",operation="update_design"} 1`)
}

func TestRecordEventAndMessage(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordEventPublished(m, "logo.uploaded", nil)
	RecordMessageProcessed(m, "customizer.logo.uploaded", time.Millisecond, errors.New("retry"))

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `test_unit_events_published_total{event_type="logo.uploaded",status="success"} 1`)
	assert.Contains(t, output, `test_unit_mq_process_duration_seconds_count{status="failure",topic="customizer.logo.uploaded"} 1`)
}

func TestNoopAppMetrics(t *testing.T) {
	m := NewNoopAppMetrics()
	assert.NotPanics(t, func() {
		RecordHTTPRequest(m, "GET", "/", 200, time.Millisecond, 0, 0)
		RecordError(m, "api", "panic", "critical")
	})
}

//Personal.AI order the ending
