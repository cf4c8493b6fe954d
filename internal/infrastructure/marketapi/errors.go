package marketapi

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is returned for every failed call. Status is 0 when no response
// was received.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	switch {
	case e.Status == 0:
		return fmt.Sprintf("marketapi %s %s: %v", e.Method, e.Path, e.Err)
	case e.Message != "":
		return fmt.Sprintf("marketapi %s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("marketapi %s %s: %d: %v", e.Method, e.Path, e.Status, e.Err)
	}
	return fmt.Sprintf("marketapi %s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status, 0 for transport failures
func (e *APIError) StatusCode() int {
	return e.Status
}

// ServerMessage returns the message field of the error body, if any
func (e *APIError) ServerMessage() string {
	return e.Message
}

// IsStatus reports whether err is an APIError with the given status
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// IsUnauthorized reports whether the API rejected the credentials
func IsUnauthorized(err error) bool {
	return IsStatus(err, http.StatusUnauthorized) || IsStatus(err, http.StatusForbidden)
}
