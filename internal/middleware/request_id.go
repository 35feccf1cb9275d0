package middleware

import "net/http"

const RequestIDHeader = "X-Request-ID"

// RequestID devuelve al cliente el id que asignó chimw.RequestID (debe ir después de él),
// para poder cruzar un reporte con los logs.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := RequestIDFrom(r.Context()); id != "" {
			w.Header().Set(RequestIDHeader, id)
		}
		next.ServeHTTP(w, r)
	})
}
