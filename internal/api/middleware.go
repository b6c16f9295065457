package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/circleworks/beacon/internal/session"
)

// SessionHeader names the header carrying the client's session ID.
const SessionHeader = "X-Session-ID"

// ActorHeader names the header carrying the acting user. The surrounding
// product owns identity; this core takes the caller's word for it.
const ActorHeader = "X-User"

// defaultActor is used when the caller sends no ActorHeader.
const defaultActor = "you"

// Actor returns the acting user for a request.
func Actor(r *http.Request) string {
	if v := r.Header.Get(ActorHeader); v != "" {
		return v
	}
	return defaultActor
}

// SessionMiddleware resolves the request's session from SessionHeader and
// attaches it to the context. A missing header maps to the default session;
// a malformed one is a 400.
func SessionMiddleware(mgr *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(SessionHeader)
			if id == "" {
				id = session.DefaultSessionID
			}

			sess, err := mgr.Get(id)
			if err != nil {
				WriteProblem(w, r, http.StatusBadRequest, err.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap response writer to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		slog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
