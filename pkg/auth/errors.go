package auth

import (
	"errors"
	"net/http"
)

var (
	ErrUnauthenticated = errors.New("no autenticado")
	ErrForbidden       = errors.New("sin permiso")
	ErrNotConfigured   = errors.New("autenticación no configurada")
)

// MapHTTPStatus maps auth errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrUnauthenticated), errors.Is(err, ErrNotConfigured):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
