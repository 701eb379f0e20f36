package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/WINTERANDREA/vet-sheet-parser/internal/platform/logger"
	"github.com/WINTERANDREA/vet-sheet-parser/internal/platform/metrics"
)

// Observe loguea cada request y alimenta las métricas HTTP. Las métricas usan
// el patrón de ruta de chi para no explotar en cardinalidad.
func Observe(log logger.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			d := time.Since(start)
			m.ObserveHTTP(r.Method, routePattern(r), status, d)

			fields := map[string]any{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      status,
				"bytes":       ww.BytesWritten(),
				"duration_ms": d.Milliseconds(),
				"request_id":  RequestIDFrom(r.Context()),
			}
			switch {
			case status >= 500:
				log.Error("http.request", fields)
			case status >= 400:
				log.Warn("http.request", fields)
			default:
				log.Info("http.request", fields)
			}
		})
	}
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
