package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrBadRequest   = errors.New("bad request")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("unprocessable input")
	ErrServer       = errors.New("server error")
)

// APIError carries the server's message. errors.Is matches it against the sentinel for its status.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Details    json.RawMessage
	kind       error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.kind, e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error { return e.kind }

func kindFor(status int) error {
	switch {
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusForbidden:
		return ErrForbidden
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusConflict:
		return ErrConflict
	case status == http.StatusUnprocessableEntity:
		return ErrInvalidInput
	case status >= 500:
		return ErrServer
	default:
		return ErrBadRequest
	}
}
