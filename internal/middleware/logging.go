// Package middleware holds the app's own HTTP middleware. The chi-provided
// middleware (RequestID, RealIP, Recoverer) is wired straight from the chi
// package in server.setupRoutes; only the slog request logger lives here.
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// statusRecorder wraps http.ResponseWriter to remember what the handler
// wrote. http.ResponseWriter exposes neither the status code nor the byte
// count after the fact, so the logger has to capture them on the way through.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	n, err := rec.ResponseWriter.Write(b)
	rec.bytes += int64(n)
	return n, err
}

// Logger returns middleware that writes one structured slog line per
// completed request: method, path, status, duration, bytes, and the request
// id minted by chi's RequestID middleware (empty if it isn't in the chain).
//
// The line is written AFTER the handler returns, so a playlist mutation and
// its status code land in the same record. Nothing here logs form values —
// login and register bodies carry passwords.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rec := &statusRecorder{
				ResponseWriter: w,
				status:         http.StatusOK, // implicit 200 if WriteHeader is never called
			}

			next.ServeHTTP(rec, r)

			logger.Info("request completed",
				slog.String("requestId", chimiddleware.GetReqID(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.status),
				slog.Duration("duration", time.Since(start)),
				slog.Int64("bytes", rec.bytes),
			)
		})
	}
}
