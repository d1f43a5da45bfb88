package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/docpack/internal/db"
	"github.com/jonathan/docpack/internal/schemas"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrStoreUnavailable is returned by endpoints that need persistence when
// the server runs without a database.
var ErrStoreUnavailable = errors.New("package storage is not configured")

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var validation *ErrValidation
	var schemaErr *schemas.ValidationError
	switch {
	case errors.As(err, &validation), errors.As(err, &schemaErr):
		return http.StatusBadRequest
	case errors.Is(err, db.ErrPackageNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
