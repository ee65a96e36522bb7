package services

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthorized = errors.New("unauthorized access")
	ErrForbidden    = errors.New("forbidden access")
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidTransition is an ErrInvalidInput: callers mapping the
	// taxonomy to status codes need not know about it.
	ErrInvalidTransition = fmt.Errorf("%w: order status can no longer change", ErrInvalidInput)
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func notFound(what string) error {
	return fmt.Errorf("%s %w", what, ErrNotFound)
}

// StatusCode maps the error taxonomy onto HTTP status codes. Anything
// outside it is an internal fault.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Message is the text safe to send to the client. Internal faults never
// leak their cause.
func Message(err error) string {
	if StatusCode(err) == http.StatusInternalServerError {
		return "internal server error"
	}
	return err.Error()
}
