package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKinds_MatchSentinels(t *testing.T) {
	if !errors.Is(&IncompleteSubmissionError{Missing: []string{"fecha"}}, ErrIncompleteSubmission) {
		t.Error("IncompleteSubmissionError should match ErrIncompleteSubmission")
	}
	if !errors.Is(&ValidationError{Fields: map[string]string{"dni": "x"}}, ErrValidation) {
		t.Error("ValidationError should match ErrValidation")
	}
	cause := errors.New("connection refused")
	err := fmt.Errorf("create appointment: %w", Persistence("insert", cause))
	if !errors.Is(err, ErrPersistence) {
		t.Error("wrapped PersistenceError should match ErrPersistence")
	}
	if !errors.Is(err, cause) {
		t.Error("PersistenceError should unwrap to its cause")
	}
	if Persistence("insert", nil) != nil {
		t.Error("Persistence(nil) should be nil")
	}
}

func TestHTTPError_Status(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrUnauthenticated, http.StatusUnauthorized},
		{&IncompleteSubmissionError{Missing: []string{"hora"}}, http.StatusUnprocessableEntity},
		{ErrInvalidDate, http.StatusUnprocessableEntity},
		{&ValidationError{Fields: map[string]string{"nombre": "bad"}}, http.StatusUnprocessableEntity},
		{fmt.Errorf("modify: %w", ErrNotFound), http.StatusNotFound},
		{Persistence("query", errors.New("boom")), http.StatusBadGateway},
		{errors.New("other"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := HTTPError(tt.err).Code; got != tt.want {
			t.Errorf("HTTPError(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestValidationError_MessageIsSorted(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"dni": "a", "apellidos": "b"}}
	if got := err.Error(); got != "validation failed: apellidos, dni" {
		t.Errorf("unexpected message %q", got)
	}
}
