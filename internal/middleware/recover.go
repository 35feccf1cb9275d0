package middleware

import (
	"net/http"
	"runtime/debug"

	"animal-sanctuary/internal/platform/logger"
	"animal-sanctuary/internal/platform/respond"
)

// Recover reemplaza a chimw.Recoverer: loguea el panic con el logger del request
// y responde con el envelope estándar en vez de texto plano.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logger.FromContext(r.Context()).Error("panic recovered", map[string]any{
				"panic": rec,
				"stack": string(debug.Stack()),
				"path":  r.URL.Path,
			})
			respond.Fail(w, http.StatusInternalServerError, "internal error")
		}()
		next.ServeHTTP(w, r)
	})
}
