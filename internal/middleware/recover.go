package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/WINTERANDREA/vet-sheet-parser/internal/platform/logger"
)

// Recover reemplaza a chi/middleware.Recoverer: loguea el panic con el logger
// estructurado y responde 500 en JSON.
func Recover(log logger.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error("http.panic", map[string]any{
					"panic":      rec,
					"method":     r.Method,
					"path":       r.URL.Path,
					"request_id": RequestIDFrom(r.Context()),
					"stack":      string(debug.Stack()),
				})
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":"internal error"}`))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
