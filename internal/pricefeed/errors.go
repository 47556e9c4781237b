package pricefeed

import (
	"errors"
	"fmt"
)

var (
	// ErrConnectTimeout is reported when the socket does not open in time.
	ErrConnectTimeout = errors.New("websocket connect timeout")
	// ErrNoEndpoint is reported when no live endpoint is configured.
	ErrNoEndpoint = errors.New("no websocket endpoint configured")
	// ErrAlreadyStarted is returned by Start on a running transport.
	ErrAlreadyStarted = errors.New("transport already started")
	// ErrStopped is returned by Start after Stop. Transports are single use.
	ErrStopped = errors.New("transport stopped")
)

// ConnectError means the socket never opened. Recovered by polling.
type ConnectError struct {
	Endpoint string
	Err      error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect %s: %v", e.Endpoint, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// RuntimeError means a live socket closed or failed. Recovered by polling.
type RuntimeError struct {
	Endpoint string
	Err      error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("live socket %s: %v", e.Endpoint, e.Err)
}

func (e *RuntimeError) Unwrap() error { return e.Err }

// TickParseError describes a malformed inbound tick. Such ticks are dropped.
type TickParseError struct {
	Reason string
	Err    error
}

func (e *TickParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed tick (%s): %v", e.Reason, e.Err)
	}
	return "malformed tick: " + e.Reason
}

func (e *TickParseError) Unwrap() error { return e.Err }
