package entity

import (
	"errors"
	"fmt"
)

var (
	ErrBadRequest          = errors.New("bad request")
	ErrNotFound            = errors.New("not found")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrUpstream            = errors.New("upstream error")

	ErrUpstreamBodyTooLarge = fmt.Errorf("%w: response body too large", ErrUpstream)
)

// UpstreamStatusError is returned when the query service answers with a non-2xx status.
// Truncated is set when Body was cut at the client's size limit.
type UpstreamStatusError struct {
	StatusCode int
	Body       string
	Truncated  bool
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("query service error: %d - %s", e.StatusCode, e.Body)
}

func (e *UpstreamStatusError) Is(target error) bool {
	return target == ErrUpstream
}

// UpstreamUnavailableError wraps a transport failure (dial, DNS, timeout).
type UpstreamUnavailableError struct {
	Err error
}

func (e *UpstreamUnavailableError) Error() string {
	return e.Err.Error()
}

func (e *UpstreamUnavailableError) Unwrap() error {
	return e.Err
}

func (e *UpstreamUnavailableError) Is(target error) bool {
	return target == ErrUpstreamUnavailable
}
