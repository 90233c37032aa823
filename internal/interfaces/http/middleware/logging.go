package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/PrintShop-Customizer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PrintShop-Customizer/internal/infrastructure/monitoring/prometheus"
)

// LoggingConfig selects what the access log records.  Skipped paths are
// still measured.
type LoggingConfig struct {
	SkipPaths     []string
	SlowThreshold time.Duration
	Metrics       *prometheus.AppMetrics
}

// DefaultLoggingConfig keeps probe and scrape traffic out of the log.  Texture
// synthesis for a large template can take a second or two, so slow starts at 3s.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		SkipPaths:     []string{"/healthz", "/readyz", "/metrics"},
		SlowThreshold: 3 * time.Second,
	}
}

// accessLog is one finished request.
type accessLog struct {
	method  string
	target  string
	status  int
	bytes   int64
	elapsed time.Duration
	remote  string
	agent   string
	reqID   string
}

func (a accessLog) fields() []logging.Field {
	fs := []logging.Field{
		logging.String("method", a.method),
		logging.String("path", a.target),
		logging.Int("status", a.status),
		logging.Duration("duration", a.elapsed),
		logging.Int64("bytes", a.bytes),
		logging.String("remote_addr", a.remote),
		logging.RequestID(a.reqID),
	}
	if a.agent != "" {
		fs = append(fs, logging.String("user_agent", a.agent))
	}
	return fs
}

func (a accessLog) emit(logger logging.Logger, slow time.Duration) {
	switch {
	case a.status >= http.StatusInternalServerError:
		logger.Error("HTTP request completed with server error", a.fields()...)
	case a.status >= http.StatusBadRequest:
		logger.Warn("HTTP request completed with client error", a.fields()...)
	case slow > 0 && a.elapsed >= slow:
		logger.Warn("HTTP request completed (slow)", a.fields()...)
	default:
		logger.Info("HTTP request completed", a.fields()...)
	}
}

// routePattern is the matched chi pattern, so metric labels never carry ids.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// RequestLogging measures every request and writes one access log line per
// request outside SkipPaths.
func RequestLogging(logger logging.Logger, cfg LoggingConfig) func(http.Handler) http.Handler {
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = prometheus.NewNoopAppMetrics()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			inflight := metrics.HTTPActiveRequests.WithLabelValues(r.Method)
			inflight.Inc()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			reqID := chimw.GetReqID(r.Context())
			if reqID != "" {
				r = r.WithContext(logging.ContextWithRequestID(r.Context(), reqID))
			}

			next.ServeHTTP(ww, r)

			inflight.Dec()
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			elapsed := time.Since(start)
			written := int64(ww.BytesWritten())
			prometheus.RecordHTTPRequest(metrics, r.Method, routePattern(r), status, elapsed, r.ContentLength, written)

			if _, ok := skip[r.URL.Path]; ok {
				return
			}
			accessLog{
				method:  r.Method,
				target:  r.URL.RequestURI(),
				status:  status,
				bytes:   written,
				elapsed: elapsed,
				remote:  r.RemoteAddr,
				agent:   r.UserAgent(),
				reqID:   reqID,
			}.emit(logger, cfg.SlowThreshold)
		})
	}
}

// LoggingMiddleware adapts RequestLogging to RouterConfig.
type LoggingMiddleware struct {
	wrap func(http.Handler) http.Handler
}

func NewLoggingMiddleware(logger logging.Logger, cfg LoggingConfig) *LoggingMiddleware {
	return &LoggingMiddleware{wrap: RequestLogging(logger, cfg)}
}

func (m *LoggingMiddleware) Handler(next http.Handler) http.Handler { return m.wrap(next) }

//Personal.AI order the ending
