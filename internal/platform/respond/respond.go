// Package respond escribe el envelope JSON común {success, data, error, message, pagination}.
package respond

import (
	"encoding/json"
	"fmt"
	"net/http"

	"animal-sanctuary/internal/platform/apperr"
	"animal-sanctuary/internal/platform/logger"
	"animal-sanctuary/internal/platform/pagination"
)

type Envelope struct {
	Success    bool             `json:"success"`
	Data       any              `json:"data,omitempty"`
	Error      string           `json:"error,omitempty"`
	Message    string           `json:"message,omitempty"`
	Pagination *pagination.Meta `json:"pagination,omitempty"`
}

func JSON(w http.ResponseWriter, status int, data any) {
	write(w, status, Envelope{Success: true, Data: data})
}

func Message(w http.ResponseWriter, status int, data any, msg string) {
	write(w, status, Envelope{Success: true, Data: data, Message: msg})
}

// Page responde 400 si la página pedida está después de la última.
func Page(w http.ResponseWriter, data any, meta pagination.Meta) {
	if meta.OutOfRange() {
		write(w, http.StatusBadRequest, Envelope{
			Success:    false,
			Error:      fmt.Sprintf("page %d out of range (total_pages %d)", meta.CurrentPage, meta.TotalPages),
			Pagination: &meta,
		})
		return
	}
	write(w, http.StatusOK, Envelope{Success: true, Data: data, Pagination: &meta})
}

// Fail responde errores de borde HTTP (json inválido, unauthorized) que no pasan por un service.
func Fail(w http.ResponseWriter, status int, msg string) {
	write(w, status, Envelope{Success: false, Error: msg})
}

// Error mapea un error de service a status + mensaje público.
// Los errores de storage se loguean con detalle; el cliente solo ve un mensaje genérico.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed", map[string]any{
			"method": r.Method,
			"path":   r.URL.Path,
			"err":    err,
		})
	}
	write(w, status, Envelope{Success: false, Error: apperr.PublicMessage(err)})
}

// Write escribe un envelope armado a mano (p.ej. 503 con data).
func Write(w http.ResponseWriter, status int, env Envelope) {
	write(w, status, env)
}

func write(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

// Decode lee el body JSON rechazando campos desconocidos.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
