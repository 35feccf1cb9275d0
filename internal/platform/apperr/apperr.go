// Package apperr define la taxonomía de errores compartida por los módulos de dominio.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindStorage Kind = iota
	KindValidation
	KindRule
	KindConflict
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindRule:
		return "rule"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	default:
		return "storage"
	}
}

// Error es un error clasificado. Los paquetes de dominio declaran sentinels con New
// y los envuelven con Wrapf cuando necesitan agregar detalle.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	// Wrapf: el mensaje ya describe al sentinel, no lo repetimos.
	var inner *Error
	if errors.As(e.Err, &inner) {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Storage envuelve una falla del data store. El detalle queda en Err (para logs);
// Message es lo único que ve el cliente.
func Storage(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindStorage, Message: msg, Err: err}
}

// OrStorage deja pasar errores ya clasificados y envuelve el resto como Storage.
func OrStorage(err error, msg string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return Storage(err, msg)
}

// Wrapf agrega contexto conservando el sentinel (errors.Is sigue funcionando).
func Wrapf(sentinel *Error, format string, args ...any) error {
	return &Error{Kind: sentinel.Kind, Message: fmt.Sprintf(format, args...), Err: sentinel}
}

// KindOf devuelve el Kind del primer *Error en la cadena. Cualquier otro error cuenta como Storage.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

// PublicMessage es el texto seguro para exponer al cliente.
func PublicMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) || e.Kind == KindStorage {
		return "internal error"
	}
	return e.Error()
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindRule:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
