package marketdata

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedPayload is returned when the response body cannot be decoded.
	ErrMalformedPayload = errors.New("malformed market data payload")

	// ErrNoPool is returned when a token has no trading pool.
	ErrNoPool = errors.New("no pool found for token")
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}
