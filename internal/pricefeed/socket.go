// Package pricefeed delivers live price ticks for one token: a WebSocket
// subscription first, fixed-interval polling when the socket is unavailable.
package pricefeed

import "errors"

// ErrSocketNotOpen is returned when sending on a socket that is not open.
var ErrSocketNotOpen = errors.New("socket not open")

// SocketHandlers receive socket lifecycle events on the event loop.
// Callbacks never fire after Close.
type SocketHandlers struct {
	OnOpen    func()
	OnMessage func(data []byte)
	// OnClose reports a socket that failed to open or dropped after opening.
	OnClose func(err error)
}

// Socket is a single WebSocket connection.
type Socket interface {
	// Open reports whether the connection is established and not closed.
	Open() bool

	// Send writes v as a JSON text frame.
	Send(v interface{}) error

	// Close tears the connection down. Safe to call more than once.
	Close() error
}

// Dialer opens sockets. Dial returns immediately; the outcome arrives
// through the handlers.
type Dialer interface {
	Dial(endpoint string, handlers SocketHandlers) Socket
}
