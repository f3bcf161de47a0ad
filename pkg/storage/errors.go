package storage

import (
	"errors"
	"net/http"
)

var (
	// ErrNotFound indicates the requested blob or its container does not exist.
	ErrNotFound = errors.New("blob not found")
	// ErrEmptyKey indicates an empty storage key was provided.
	ErrEmptyKey = errors.New("storage key must not be empty")
	// ErrInvalidKey indicates the storage key contains a path traversal segment.
	ErrInvalidKey = errors.New("storage key contains invalid path segment")
	// ErrInvalidURL indicates a stored URL does not point into the configured container.
	ErrInvalidURL = errors.New("url does not reference a stored blob")
	// ErrNotConfigured indicates the blob store has no connection settings.
	ErrNotConfigured = errors.New("storage is not configured")
	// ErrNotAllowedExtension indicates a known file type outside the allowed set.
	ErrNotAllowedExtension = errors.New("file extension not allowed")
	// ErrUnknownExtension indicates a missing or unrecognized file extension.
	ErrUnknownExtension = errors.New("unknown file extension")
)

// MapHTTPStatus maps storage errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrEmptyKey),
		errors.Is(err, ErrInvalidKey),
		errors.Is(err, ErrInvalidURL),
		errors.Is(err, ErrNotAllowedExtension),
		errors.Is(err, ErrUnknownExtension):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotConfigured):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// IsMissing reports whether err means the object cannot be located:
// not found, an unusable URL or key, or no store at all.
func IsMissing(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidURL) ||
		errors.Is(err, ErrEmptyKey) ||
		errors.Is(err, ErrInvalidKey) ||
		errors.Is(err, ErrNotConfigured) ||
		errors.Is(err, ErrUnknownExtension)
}
