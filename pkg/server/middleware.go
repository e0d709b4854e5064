package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storelink/storelink/internal/logging"
	"github.com/storelink/storelink/internal/ratelimiter"
	"github.com/storelink/storelink/pkg/metrics"
)

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// routeLabel collapses a request path to its collection prefix so metric
// label cardinality stays bounded regardless of IDs in the path.
func routeLabel(path string) string {
	if !strings.HasPrefix(path, "/v1/") {
		return path
	}
	rest := strings.TrimPrefix(path, "/v1/")
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}
	return "/v1/" + rest
}

// withObservability logs every request and, when a collector is present,
// records request metrics. m may be nil.
//
// Each request is tagged with an ID, echoed in the X-Request-ID response
// header; a client-supplied X-Request-ID is reused so IDs correlate across
// services.
func withObservability(next http.Handler, m *metrics.HTTPMetrics) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		m.RequestStarted()
		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		m.RequestFinished(r.Method, routeLabel(r.URL.Path), rec.status, duration)

		logging.Debug("http request",
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", duration))
	})
}

// withRateLimit rejects requests exceeding the configured rate with 429.
func withRateLimit(next http.Handler, limiter *ratelimiter.RateLimiter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}
