package edictos

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/pjecz/portal-notarias/pkg/storage"
)

var (
	ErrNotFound       = errors.New("edicto no encontrado")
	ErrAcuseNotFound  = errors.New("acuse no encontrado")
	ErrFileNotFound   = errors.New("no se encontró el archivo")
	ErrNotEligible    = errors.New("autoridad no habilitada para edictos")
	ErrForbidden      = errors.New("edicto de otra autoridad")
	ErrExpired        = errors.New("plazo vencido")
	ErrInvalidState   = errors.New("estatus no permite la operacion")
	ErrInvalidCommand = errors.New("comando invalido")
	ErrInvalidID      = errors.New("identificador invalido")
)

// ValidationError carries the warnings of a rejected form, in the order they
// were found and without repeats.
type ValidationError struct {
	Warnings []string
}

func (e *ValidationError) Error() string {
	return "validacion: " + strings.Join(e.Warnings, "; ")
}

func (e *ValidationError) add(msg string) {
	if !slices.Contains(e.Warnings, msg) {
		e.Warnings = append(e.Warnings, msg)
	}
}

func (e *ValidationError) failed() bool {
	return len(e.Warnings) > 0
}

// Refusal is a precondition or permission failure with the message shown to the user.
type Refusal struct {
	Err     error
	Message string
}

func (r *Refusal) Error() string {
	return r.Err.Error() + ": " + r.Message
}

func (r *Refusal) Unwrap() error {
	return r.Err
}

func refuse(err error, msg string) *Refusal {
	return &Refusal{Err: err, Message: msg}
}

// MapHTTPStatus maps edictos errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrAcuseNotFound),
		errors.Is(err, ErrFileNotFound),
		errors.Is(err, ErrInvalidID):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden),
		errors.Is(err, ErrExpired),
		errors.Is(err, ErrNotEligible):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidCommand):
		return http.StatusBadRequest
	}
	return storage.MapHTTPStatus(err)
}
