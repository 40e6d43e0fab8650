// Package errs provides the error types used to respond to ledger API
// failures.
package errs

import (
	"errors"
	"net/http"

	"github.com/ardanlabs/powledger/foundation/blockchain/chain"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/pow"
)

// Response is the form used for API responses from failures in the API.
type Response struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Trusted is used to pass an error during the request through the
// application with web specific context.
type Trusted struct {
	Err    error
	Status int
}

// NewTrusted wraps a provided error with an HTTP status code. This
// function should be used when handlers encounter expected errors.
func NewTrusted(err error, status int) error {
	return &Trusted{err, status}
}

// Error implements the error interface. It uses the default message of the
// wrapped error. This is what will be shown in the services' logs.
func (te *Trusted) Error() string {
	return te.Err.Error()
}

// Unwrap returns the wrapped error.
func (te *Trusted) Unwrap() error {
	return te.Err
}

// IsTrusted checks if an error of type Trusted exists.
func IsTrusted(err error) bool {
	var te *Trusted
	return errors.As(err, &te)
}

// GetTrusted returns a copy of the Trusted pointer.
func GetTrusted(err error) *Trusted {
	var te *Trusted
	if !errors.As(err, &te) {
		return nil
	}
	return te
}

// =============================================================================

// Ledger maps the errors returned by the ledger packages to a trusted error
// with the matching status. Errors the ledger does not document are
// returned untouched and end up as a 500.
func Ledger(err error) error {
	switch {
	case err == nil:
		return nil

	case errors.Is(err, database.ErrNotFound):
		return NewTrusted(err, http.StatusNotFound)

	case errors.Is(err, database.ErrInvalidIndex),
		errors.Is(err, database.ErrUnknownField),
		errors.Is(err, database.ErrInvalidValue),
		errors.Is(err, pow.ErrInvalidDifficulty),
		errors.Is(err, chain.ErrUnknownMode):
		return NewTrusted(err, http.StatusBadRequest)

	case errors.Is(err, database.ErrBlockExists):
		return NewTrusted(err, http.StatusConflict)
	}

	return err
}
