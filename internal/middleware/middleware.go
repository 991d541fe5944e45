package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/SigNoz/storefront-go-app/internal/metrics"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// RequestID returns the request ID stored by RequestIDMiddleware
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return "unknown"
}

// MetricsMiddleware records HTTP request metrics and logs each request
func MetricsMiddleware(metrics *metrics.AppMetrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)

			duration := time.Since(start).Milliseconds()

			routePattern := "unknown"
			if route := mux.CurrentRoute(r); route != nil {
				if pathTemplate, err := route.GetPathTemplate(); err == nil {
					routePattern = pathTemplate
				}
			}

			ctx := r.Context()
			attrs := metric.WithAttributes(metrics.WithServiceName([]attribute.KeyValue{
				attribute.String("http.method", r.Method),
				attribute.String("http.route", routePattern),
				attribute.Int("http.status_code", rw.statusCode),
			})...)

			metrics.HTTPRequestsTotal.Add(ctx, 1, attrs)
			if rw.statusCode >= 400 {
				metrics.HTTPRequestsErrors.Add(ctx, 1, attrs)
			}
			metrics.HTTPRequestDuration.Record(ctx, float64(duration), attrs)

			log.Info().
				Str("request_id", RequestID(ctx)).
				Str("method", r.Method).
				Str("route", routePattern).
				Str("remote_addr", r.RemoteAddr).
				Int("status", rw.statusCode).
				Int64("duration_ms", duration).
				Msg("request")
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// RequestIDMiddleware adds a request ID to the context
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CORSMiddleware adds CORS headers
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ErrorHandlerMiddleware turns panics into 500 responses
func ErrorHandlerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Str("request_id", RequestID(r.Context())).
					Interface("panic", err).
					Msg("handler panicked")
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
