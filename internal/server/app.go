package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielledeleo/wikilite/wiki"
	"github.com/danielledeleo/wikilite/wiki/service"
)

// App holds all application dependencies and services.
type App struct {
	Pages     service.PageService
	Files     service.FileService
	Search    service.SearchService
	Rendering service.RenderingService
	Config    *wiki.Config
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

// SlogLoggingMiddleware logs HTTP requests using slog
func SlogLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.status,
			"size", wrapped.size,
			"duration", time.Since(start),
			"remote", r.RemoteAddr,
		)
	})
}

// recoveryLogger sends panics caught by handlers.RecoveryHandler to slog.
type recoveryLogger struct{}

func (recoveryLogger) Println(v ...interface{}) {
	slog.Error("handler panic", "category", "http", "error", fmt.Sprint(v...))
}

func check(err error) {
	if err != nil {
		slog.Error("unexpected error", "error", err)
	}
}
