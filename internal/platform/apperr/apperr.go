// Package apperr defines the error kinds shared by the portal services and
// maps them onto HTTP responses.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"
)

var (
	ErrUnauthenticated      = errors.New("unauthenticated")
	ErrIncompleteSubmission = errors.New("incomplete submission")
	ErrInvalidDate          = errors.New("date is earlier than today")
	ErrNotFound             = errors.New("not found")
	ErrPersistence          = errors.New("persistence error")
	ErrValidation           = errors.New("validation failed")
)

// IncompleteSubmissionError lists the fields whose presence rule was not met.
type IncompleteSubmissionError struct {
	Missing []string
}

func (e *IncompleteSubmissionError) Error() string {
	return fmt.Sprintf("incomplete submission: missing %s", strings.Join(e.Missing, ", "))
}

func (e *IncompleteSubmissionError) Is(target error) bool {
	return target == ErrIncompleteSubmission
}

// ValidationError carries one message per failing field. Every field is
// checked before the error is built, so callers see all failures at once.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("validation failed: %s", strings.Join(keys, ", "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// PersistenceError wraps any failure reported by the record store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// Persistence wraps err as a PersistenceError unless it is nil.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}

// HTTPError converts a service error into the echo error returned to the
// client. Persistence failures never leak store details.
func HTTPError(err error) *echo.HTTPError {
	var incomplete *IncompleteSubmissionError
	var invalid *ValidationError
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	case errors.As(err, &incomplete):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, map[string]interface{}{
			"error":   "incomplete_submission",
			"missing": incomplete.Missing,
		})
	case errors.Is(err, ErrIncompleteSubmission):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, map[string]interface{}{
			"error": "incomplete_submission",
		})
	case errors.Is(err, ErrInvalidDate):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, map[string]interface{}{
			"error": "invalid_date",
		})
	case errors.As(err, &invalid):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, map[string]interface{}{
			"error":  "validation_failed",
			"fields": invalid.Fields,
		})
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	case errors.Is(err, ErrPersistence):
		return echo.NewHTTPError(http.StatusBadGateway, "the record store is unavailable, please try again")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
