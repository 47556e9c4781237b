package pricefeed

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"solana-price-chart/internal/eventloop"
)

// WSConfig configures WebSocket connections.
type WSConfig struct {
	// HandshakeTimeout bounds the opening handshake.
	HandshakeTimeout time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
	// CloseTimeout bounds the close frame written on shutdown.
	CloseTimeout time.Duration
}

// DefaultWSConfig returns default WebSocket configuration.
func DefaultWSConfig() WSConfig {
	return WSConfig{
		HandshakeTimeout: 10 * time.Second,
		PingInterval:     30 * time.Second,
		ReadTimeout:      90 * time.Second,
		WriteTimeout:     10 * time.Second,
		CloseTimeout:     time.Second,
	}
}

// WSDialer implements Dialer using gorilla/websocket.
type WSDialer struct {
	loop   eventloop.Loop
	config WSConfig
}

// NewWSDialer creates a dialer that posts socket events onto loop.
func NewWSDialer(loop eventloop.Loop, config *WSConfig) *WSDialer {
	cfg := DefaultWSConfig()
	if config != nil {
		cfg = *config
	}
	return &WSDialer{loop: loop, config: cfg}
}

// Compile-time interface check.
var _ Dialer = (*WSDialer)(nil)

// Dial starts connecting in the background.
func (d *WSDialer) Dial(endpoint string, handlers SocketHandlers) Socket {
	ctx, cancel := context.WithCancel(context.Background())
	s := &wsSocket{
		loop:     d.loop,
		config:   d.config,
		endpoint: endpoint,
		handlers: handlers,
		cancel:   cancel,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}

	s.wg.Add(1)
	go s.run(ctx)
	return s
}

// wsSocket is one gorilla connection whose events are re-posted to the loop.
type wsSocket struct {
	loop     eventloop.Loop
	config   WSConfig
	endpoint string
	handlers SocketHandlers
	cancel   context.CancelFunc

	conn   *websocket.Conn
	connMu sync.Mutex
	open   atomic.Bool
	closed atomic.Bool

	done    chan struct{}
	stopped chan struct{}
	wg      sync.WaitGroup
}

// Open reports whether the connection is established.
func (s *wsSocket) Open() bool {
	return s.open.Load() && !s.closed.Load()
}

// Send writes v as JSON.
func (s *wsSocket) Send(v interface{}) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.conn == nil || !s.Open() {
		return ErrSocketNotOpen
	}
	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	return s.conn.WriteJSON(v)
}

// Close marks the socket closed and returns immediately. The close frame
// and the wait for the background goroutines run in their own goroutine.
func (s *wsSocket) Close() error {
	if s.closed.Swap(true) {
		return nil
	}

	s.cancel()
	s.open.Store(false)
	close(s.done)

	go s.shutdown()
	return nil
}

func (s *wsSocket) shutdown() {
	defer close(s.stopped)

	s.connMu.Lock()
	if s.conn != nil {
		s.conn.SetWriteDeadline(time.Now().Add(s.closeTimeout()))
		s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.conn.Close()
	}
	s.connMu.Unlock()

	s.wg.Wait()
}

func (s *wsSocket) closeTimeout() time.Duration {
	if s.config.CloseTimeout > 0 {
		return s.config.CloseTimeout
	}
	return time.Second
}

// post delivers fn to the loop unless the socket was closed meanwhile.
func (s *wsSocket) post(fn func()) {
	s.loop.Post(func() {
		if s.closed.Load() || fn == nil {
			return
		}
		fn()
	})
}

// run dials, then reads until the connection ends.
func (s *wsSocket) run(ctx context.Context) {
	defer s.wg.Done()

	dialer := websocket.Dialer{
		HandshakeTimeout: s.config.HandshakeTimeout,
	}
	conn, _, err := dialer.DialContext(ctx, s.endpoint, nil)
	if err != nil {
		s.post(func() { s.fireClose(err) })
		return
	}

	s.connMu.Lock()
	if s.closed.Load() {
		s.connMu.Unlock()
		conn.Close()
		return
	}
	s.conn = conn
	s.open.Store(true)
	s.connMu.Unlock()

	// Pongs keep a quiet but healthy connection alive.
	conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	})

	s.post(func() {
		if s.handlers.OnOpen != nil {
			s.handlers.OnOpen()
		}
	})

	s.wg.Add(1)
	go s.pingLoop()

	s.readLoop(conn)
}

// readLoop forwards text frames to the loop.
func (s *wsSocket) readLoop(conn *websocket.Conn) {
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			s.open.Store(false)
			if !s.closed.Load() {
				s.post(func() { s.fireClose(err) })
			}
			return
		}

		conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		s.post(func() {
			if s.handlers.OnMessage != nil {
				s.handlers.OnMessage(message)
			}
		})
	}
}

// pingLoop sends periodic ping frames to keep connection alive.
func (s *wsSocket) pingLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.connMu.Lock()
			if s.conn != nil {
				s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
				// A dead connection surfaces as a read error.
				s.conn.WriteMessage(websocket.PingMessage, nil)
			}
			s.connMu.Unlock()
		}
	}
}

func (s *wsSocket) fireClose(err error) {
	if s.handlers.OnClose == nil {
		return
	}
	if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		err = errors.New("server closed connection")
	}
	s.handlers.OnClose(err)
}
