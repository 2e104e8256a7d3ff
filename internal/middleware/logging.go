package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"aidraw-backend/internal/metrics"
)

// RequestLogger logs one line per request. The wrapped writer keeps
// http.Flusher so streamed responses still flush.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		// deferred so aborted streams are logged too
		defer func() {
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			entry := log.WithFields(log.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     status,
				"bytes":      ww.BytesWritten(),
				"duration":   time.Since(start).String(),
				"request_id": r.Header.Get(RequestIDHeader),
				"remote":     r.RemoteAddr,
			})
			if status >= http.StatusInternalServerError {
				entry.Warn("request completed")
			} else {
				entry.Info("request completed")
			}
		}()

		next.ServeHTTP(ww, r)
	})
}

// unmatchedRoute labels requests that never reached a route, including
// preflights answered by CORS.
const unmatchedRoute = "unmatched"

// Metrics records request counts and durations per route pattern.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		now := time.Now()

		defer func() {
			// raw paths would give every unknown URL its own series
			path := unmatchedRoute
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				path = rctx.RoutePattern()
			}
			statusCode := ww.Status()
			if statusCode == 0 {
				statusCode = http.StatusOK
			}
			code := strconv.Itoa(statusCode)

			metrics.TotalRequests.WithLabelValues(path, code, r.Method).Inc()
			metrics.HttpDuration.WithLabelValues(path, code, r.Method).Observe(time.Since(now).Seconds())
		}()

		next.ServeHTTP(ww, r)
	})
}
