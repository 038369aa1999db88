package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNoSession is returned by session loads when nobody is logged in.
	ErrNoSession = errors.New("no session")
	// ErrInvalidSession rejects a save with only one of token and user id.
	ErrInvalidSession = errors.New("session requires both token and user id")
	// ErrUnauthenticated means a scoped operation ran without a usable
	// session. Callers redirect to the login surface and do not retry.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrSessionExpired is a 401 from the backend on an authenticated call.
	ErrSessionExpired = errors.New("session expired")
	// ErrFetchFailed is matched by every *FetchError.
	ErrFetchFailed = errors.New("fetch failed")
	// ErrValidationFailed is matched by every *ValidationError.
	ErrValidationFailed = errors.New("validation failed")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenMismatch      = errors.New("token subject does not match user")
	ErrNotFound           = errors.New("not found")
	ErrUnknownTab         = errors.New("unknown tab")
)

// FetchError is a transport or server failure talking to the backend.
type FetchError struct {
	Op      string
	Status  int
	Message string
	Cause   error
}

func (e *FetchError) Error() string {
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if e.Status > 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, msg)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *FetchError) Unwrap() error { return e.Cause }

func (e *FetchError) Is(target error) bool { return target == ErrFetchFailed }

// ValidationError carries per-field messages, as returned by 422 responses
// or produced by local form checks.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError builds a ValidationError with a single field message.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string][]string{field: {msg}}}
}

// Add appends a message for field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidationFailed }
