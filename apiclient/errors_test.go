package apiclient

import (
	"errors"
	"testing"
)

func TestErrorMessagePreference(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"detail wins", &APIError{Status: 400, Message: extractMessage([]byte(`{"detail":"d","message":"m","non_field_errors":["n"]}`))}, "d"},
		{"message next", &APIError{Status: 400, Message: extractMessage([]byte(`{"message":"m","non_field_errors":["n"]}`))}, "m"},
		{"non field errors", &APIError{Status: 400, Message: extractMessage([]byte(`{"non_field_errors":["Créneau indisponible","x"]}`))}, "Créneau indisponible"},
		{"error field", &APIError{Status: 400, Message: extractMessage([]byte(`{"success":false,"error":"Ce créneau n'est pas disponible"}`))}, "Ce créneau n'est pas disponible"},
		{"field errors only", &APIError{Status: 400, Message: extractMessage([]byte(`{"date":["required"]}`))}, "Request failed with status code 400"},
		{"non json body", &APIError{Status: 502, Message: extractMessage([]byte(`<html>bad gateway</html>`))}, "Request failed with status code 502"},
		{"transport", errors.New("dial tcp: connection refused"), "dial tcp: connection refused"},
		{"nil", nil, DefaultErrorMessage},
	}
	for _, tc := range cases {
		if got := ErrorMessage(tc.err); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(&APIError{Status: 404}) {
		t.Fatalf("expected 404 to be not found")
	}
	if IsNotFound(&APIError{Status: 400}) || IsNotFound(errors.New("x")) {
		t.Fatalf("expected other errors not to be not found")
	}
}
