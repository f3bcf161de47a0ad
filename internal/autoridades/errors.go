package autoridades

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound         = errors.New("autoridad no encontrada")
	ErrDistritoNotFound = errors.New("distrito no encontrado")
)

// MapHTTPStatus maps lookup errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrDistritoNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
