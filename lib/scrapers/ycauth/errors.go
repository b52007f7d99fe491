package ycauth

import (
	"errors"
	"fmt"
)

var ErrMissingCsrfToken = errors.New("missing csrf token")
var ErrLoginRejected = errors.New("login rejected")

// AuthError wraps any failure during the login and session bootstrap flow.
// Step names the round-trip that failed.
type AuthError struct {
	Step string
	Err  error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth: %s: %s", e.Step, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}
