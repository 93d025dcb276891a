// Package errs provides the error types returned by the node's web API.
package errs

import (
	"errors"
	"net/http"
)

// Response is the form used for API responses from failures in the API.
type Response struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Trusted is an error whose message is safe to show to the client along
// with the HTTP status to respond with.
type Trusted struct {
	Err    error
	Status int
}

// NewTrusted wraps a provided error with an HTTP status code. Handlers use it
// for expected failures such as a bad request body.
func NewTrusted(err error, status int) error {
	return &Trusted{err, status}
}

// Error implements the error interface.
func (te *Trusted) Error() string {
	return te.Err.Error()
}

// Unwrap returns the wrapped error.
func (te *Trusted) Unwrap() error {
	return te.Err
}

// GetTrusted returns the trusted error in the chain, nil when there is none.
func GetTrusted(err error) *Trusted {
	var te *Trusted
	if !errors.As(err, &te) {
		return nil
	}
	return te
}

// Status returns the HTTP status for the error. Anything not trusted is an
// internal error.
func Status(err error) int {
	if te := GetTrusted(err); te != nil {
		return te.Status
	}
	return http.StatusInternalServerError
}
