package client

import (
	"errors"
	"fmt"
)

// InactiveUserMessage is the body the auth endpoint returns for suspended readers.
const InactiveUserMessage = "El usuario está inactivo"

// ErrInactiveUser is returned by Login when the account exists but is suspended.
var ErrInactiveUser = errors.New("user is inactive")

// ErrEmptyToken is returned by Login when the backend answers 2xx without a token.
var ErrEmptyToken = errors.New("empty token in login response")

// HTTPError represents a non-2xx HTTP response from the API.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsStatus returns true if err (or any wrapped error) is an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}
