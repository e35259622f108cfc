// ABOUTME: Request logging middleware that tags each request with an ID
// ABOUTME: Logs start and completion with status and timing, warning on slow requests

package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"mememe-api/core/interfaces"

	"github.com/google/uuid"
)

// SlowRequestThreshold is the duration after which a request is logged as slow.
// A cold catalog refresh fans out to every community feed, so this is generous.
const SlowRequestThreshold = 5 * time.Second

// statusRecorder wraps http.ResponseWriter to capture the status code
type statusRecorder struct {
	http.ResponseWriter
	status  int
	written bool
}

func (rw *statusRecorder) WriteHeader(code int) {
	if rw.written {
		return
	}
	rw.status = code
	rw.written = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

type requestIDKey struct{}

// RequestID returns the ID assigned to the request by RequestLoggingMiddleware
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// RequestLoggingMiddleware creates a middleware that logs all requests
func RequestLoggingMiddleware(logger interfaces.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", requestID)
			r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, requestID))

			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			logger.Info("Request started", RequestLogFields(r))

			next.ServeHTTP(recorder, r)

			duration := time.Since(start)
			fields := ResponseLogFields(recorder.status, duration)
			fields["request_id"] = requestID
			fields["method"] = r.Method
			fields["path"] = r.URL.Path

			switch {
			case recorder.status >= http.StatusInternalServerError:
				logger.Error("Request failed with server error", fields)
			case duration > SlowRequestThreshold:
				logger.Warn("Slow request", fields)
			default:
				logger.Info("Request completed", fields)
			}
		})
	}
}

// RequestLogFields extracts common log fields from a request
func RequestLogFields(r *http.Request) map[string]interface{} {
	return map[string]interface{}{
		"request_id": RequestID(r.Context()),
		"method":     r.Method,
		"path":       r.URL.Path,
		"query":      r.URL.RawQuery,
		"remote_ip":  ExtractIP(r),
		"user_agent": r.UserAgent(),
	}
}

// ResponseLogFields creates log fields for a response
func ResponseLogFields(status int, duration time.Duration) map[string]interface{} {
	return map[string]interface{}{
		"status":      status,
		"status_text": fmt.Sprintf("%d %s", status, http.StatusText(status)),
		"duration":    duration.String(),
		"duration_ms": duration.Milliseconds(),
	}
}
