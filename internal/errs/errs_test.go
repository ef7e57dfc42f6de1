package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindsMatchSentinels(t *testing.T) {
	cases := []struct {
		err      *Error
		sentinel error
		status   int
	}{
		{InvalidInput("bad"), ErrInvalidInput, http.StatusBadRequest},
		{Conflict("dup"), ErrConflict, http.StatusBadRequest},
		{Unauthorized("who"), ErrUnauthorized, http.StatusUnauthorized},
		{Forbidden("no"), ErrForbidden, http.StatusForbidden},
		{Internal(errors.New("boom")), ErrInternal, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		wrapped := fmt.Errorf("layer: %w", tc.err)
		if !errors.Is(wrapped, tc.sentinel) {
			t.Fatalf("%s: errors.Is failed for %v", tc.err.Kind, tc.sentinel)
		}
		if tc.err.Status() != tc.status {
			t.Fatalf("%s: expected status %d, got %d", tc.err.Kind, tc.status, tc.err.Status())
		}
		got, ok := As(wrapped)
		if !ok || got != tc.err {
			t.Fatalf("%s: As did not return the original error", tc.err.Kind)
		}
	}
}

func TestInternalHidesCause(t *testing.T) {
	cause := errors.New("pq: relation \"users\" does not exist")
	err := Internal(cause)

	if len(err.Messages) != 1 || err.Messages[0] != InternalMessage {
		t.Fatalf("unexpected client messages: %v", err.Messages)
	}
	if !errors.Is(err, cause) {
		t.Fatal("cause should stay reachable through Unwrap")
	}
}

func TestKindsDoNotCrossMatch(t *testing.T) {
	if errors.Is(InvalidInput("x"), ErrUnauthorized) {
		t.Fatal("InvalidInput must not match ErrUnauthorized")
	}
	if errors.Is(Conflict("x"), ErrInvalidInput) {
		t.Fatal("Conflict must not match ErrInvalidInput")
	}
}
