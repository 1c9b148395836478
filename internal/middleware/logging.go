// Package middleware provides the HTTP middleware of the seller console:
// request logging, panic recovery, security headers, CSRF, rate limiting
// and the session gates.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

const logKey contextKey = "log"

// logFields collects attributes that later middleware learns about the
// request, such as the seller, for the access log line.
type logFields struct {
	requestID string
	sellerID  string
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

// WriteHeader captures the status code before writing it.
func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

// Write ensures a default 200 status if WriteHeader was never called.
func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.statusCode = http.StatusOK
		rw.written = true
	}
	return rw.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter { return rw.ResponseWriter }

// Logger assigns each request an id and logs method, path, status,
// duration, remote address and, when signed in, the seller id.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		fields := &logFields{requestID: r.Header.Get(RequestIDHeader)}
		if _, err := uuid.Parse(fields.requestID); err != nil {
			fields.requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, fields.requestID)
		r = r.WithContext(context.WithValue(r.Context(), logKey, fields))

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration", time.Since(start).String(),
			"remote", r.RemoteAddr,
			"request_id", fields.requestID,
		}
		if fields.sellerID != "" {
			attrs = append(attrs, "seller", fields.sellerID)
		}
		slog.Info("http request", attrs...)
	})
}

// RequestIDFromCtx returns the id Logger assigned to the request.
func RequestIDFromCtx(ctx context.Context) string {
	if f, ok := ctx.Value(logKey).(*logFields); ok {
		return f.requestID
	}
	return ""
}

func setLogSeller(ctx context.Context, sellerID string) {
	if f, ok := ctx.Value(logKey).(*logFields); ok {
		f.sellerID = sellerID
	}
}
