package terabox

import (
	"errors"
	"fmt"

	"teraview/internal/media"
)

// Sentinels for errors.Is checks. The typed errors below match them.
var (
	ErrInvalidInput = errors.New("invalid TeraBox URL")
	ErrRequest      = errors.New("API request failed")
	ErrParse        = errors.New("malformed API response")
	ErrNoLink       = errors.New("no direct link in API response")
)

// InvalidInputError is returned before any I/O when a link fails validation.
type InvalidInputError struct {
	Link media.Link
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid TeraBox URL %q", string(e.Link))
}

func (e *InvalidInputError) Is(target error) bool { return target == ErrInvalidInput }

// RequestError is returned when the endpoint answered with a non-success status.
type RequestError struct {
	Status int
	Err    error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("API request failed with status %d", e.Status)
}

func (e *RequestError) Unwrap() error { return e.Err }

func (e *RequestError) Is(target error) bool { return target == ErrRequest }

// ParseError is returned when the response body is not the expected JSON object.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed API response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }
