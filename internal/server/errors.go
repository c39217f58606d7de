package server

import (
	"errors"
	"net/http"
)

// HTTPError carries a status code and a client-facing message.
// Err is logged but never sent to the client.
type HTTPError struct {
	Err     error
	Message string
	Code    int
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func newHTTPError(code int, message string, err error) *HTTPError {
	return &HTTPError{Code: code, Message: message, Err: err}
}

func errBadRequest(message string, err error) *HTTPError {
	return newHTTPError(http.StatusBadRequest, message, err)
}

func errNotFound(message string) *HTTPError {
	return newHTTPError(http.StatusNotFound, message, nil)
}

func errServiceUnavailable(message string, err error) *HTTPError {
	return newHTTPError(http.StatusServiceUnavailable, message, err)
}

// asHTTPError maps any error to an HTTPError, defaulting to 500.
func asHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return newHTTPError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError), err)
}
