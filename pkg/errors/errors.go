package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Survey client error kinds. Callers match them with errors.Is.

var (
	// ErrAuthRejected indicates the backend refused the identity credential
	ErrAuthRejected = errors.New("authentication rejected")

	// ErrRateLimited indicates the backend or provider is throttling requests
	ErrRateLimited = errors.New("rate limited")

	// ErrInvalidToken indicates the stored session token cannot be decoded or has expired
	ErrInvalidToken = errors.New("invalid session token")

	// ErrIncompleteAnswer indicates an advance without a qualifying staged answer
	ErrIncompleteAnswer = errors.New("incomplete answer")

	// ErrSubmissionRejected indicates the backend refused the survey payload
	ErrSubmissionRejected = errors.New("submission rejected")

	// ErrFetchFailed indicates the submissions list could not be fetched
	ErrFetchFailed = errors.New("fetch failed")

	// ErrSubmissionInFlight indicates a submission is already being sent
	ErrSubmissionInFlight = errors.New("submission already in progress")

	// ErrInvalidTransition indicates an operation not allowed in the current survey state
	ErrInvalidTransition = errors.New("invalid survey transition")

	// ErrInvalidInput indicates invalid input data
	ErrInvalidInput = errors.New("invalid input")
)

// HTTPError is a non-2xx response from the survey backend
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// StatusCode extracts the HTTP status from err, or 0 when err carries none
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

// IsUnauthenticated reports a 401 or 403 backend response
func IsUnauthenticated(err error) bool {
	code := StatusCode(err)
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}

// Message returns the server-provided message when present, otherwise err's text
func Message(err error) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.Message != "" {
		return httpErr.Message
	}
	return err.Error()
}

// AuthRejectedError wraps the cause of a refused sign-in
func AuthRejectedError(cause error) error {
	return fmt.Errorf("%w: %s", ErrAuthRejected, Message(cause))
}

// RateLimitedError carries the user-facing wait suggestion
func RateLimitedError() error {
	return fmt.Errorf("%w: please wait a few minutes before trying again", ErrRateLimited)
}

// SubmissionRejectedError wraps the reason the backend refused a submission
func SubmissionRejectedError(cause error) error {
	return fmt.Errorf("%w: %s", ErrSubmissionRejected, Message(cause))
}

// FetchFailedError wraps the reason the submissions list was not loaded
func FetchFailedError(cause error) error {
	return fmt.Errorf("%w: %s", ErrFetchFailed, Message(cause))
}

// InvalidInputError creates an invalid input error with context
func InvalidInputError(field, reason string) error {
	return fmt.Errorf("%s: %s: %w", field, reason, ErrInvalidInput)
}

// Is checks if an error matches a target error (works with wrapped errors)
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is errors.As, re-exported so callers need a single errors import
func As(err error, target any) bool {
	return errors.As(err, target)
}
