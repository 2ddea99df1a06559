package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
)

// DefaultErrorMessage is shown when nothing better can be extracted.
const DefaultErrorMessage = "Une erreur est survenue"

// ErrSessionExpired means the access token was rejected and could not be
// refreshed. Both tokens have been cleared; the user has to log in again.
var ErrSessionExpired = errors.New("session expired")

// APIError is a non-2xx answer from the booking API.
type APIError struct {
	Status  int
	Message string
	Body    []byte
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error %d", e.Status)
}

// NotFound reports whether the API answered 404.
func (e *APIError) NotFound() bool { return e.Status == 404 }

type errorBody struct {
	Detail         json.RawMessage `json:"detail"`
	Message        json.RawMessage `json:"message"`
	NonFieldErrors []string        `json:"non_field_errors"`
	Error          json.RawMessage `json:"error"`
}

// extractMessage picks the server-provided message in order of preference:
// detail, message, the first non_field_errors entry, then error.
func extractMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	if s := rawString(eb.Detail); s != "" {
		return s
	}
	if s := rawString(eb.Message); s != "" {
		return s
	}
	if len(eb.NonFieldErrors) > 0 && eb.NonFieldErrors[0] != "" {
		return eb.NonFieldErrors[0]
	}
	return rawString(eb.Error)
}

func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// ErrorMessage turns any error returned by the client into one
// human-readable line for a toast.
func ErrorMessage(err error) string {
	if err == nil {
		return DefaultErrorMessage
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return fmt.Sprintf("Request failed with status code %d", apiErr.Status)
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return DefaultErrorMessage
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.NotFound()
}
