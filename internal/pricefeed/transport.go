package pricefeed

import (
	"errors"
	"time"

	"github.com/rs/zerolog"

	"solana-price-chart/internal/domain"
	"solana-price-chart/internal/eventloop"
	"solana-price-chart/internal/observability"
)

// Config configures a Transport.
type Config struct {
	// Endpoint is the live price WebSocket URL. Empty means poll only.
	Endpoint string
	// ConnectTimeout bounds the wait for the socket to open.
	ConnectTimeout time.Duration
	// PollInterval is the fallback polling cadence.
	PollInterval time.Duration
	// PollTimeout bounds a single poll request. Defaults to PollInterval.
	PollTimeout time.Duration
}

// DefaultConfig returns the default transport configuration.
func DefaultConfig() Config {
	return Config{
		ConnectTimeout: 5 * time.Second,
		PollInterval:   10 * time.Second,
	}
}

// Options holds Transport dependencies.
type Options struct {
	Loop   eventloop.Loop
	Dialer Dialer
	Prices PriceSource
	Config Config
	Logger zerolog.Logger

	// OnTick receives every valid tick.
	OnTick func(tick domain.Tick)
	// OnState receives every state transition.
	OnState func(from, to domain.TransportState)
}

// Transport delivers ticks for one token: WebSocket first, polling after
// any socket failure. Polling is terminal for the lifetime of a Transport.
// Every method must be called on the loop.
type Transport struct {
	token  domain.TokenIdentity
	loop   eventloop.Loop
	dialer Dialer
	prices PriceSource
	config Config
	logger zerolog.Logger

	onTick  func(domain.Tick)
	onState func(from, to domain.TransportState)

	state        domain.TransportState
	started      bool
	stopped      bool
	socket       Socket
	connectTimer *eventloop.Handle
	poller       *Poller
	lastPrice    float64
}

// NewTransport creates an idle transport for token.
func NewTransport(token domain.TokenIdentity, opts Options) *Transport {
	cfg := opts.Config
	def := DefaultConfig()
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = def.ConnectTimeout
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}

	return &Transport{
		token:   token,
		loop:    opts.Loop,
		dialer:  opts.Dialer,
		prices:  opts.Prices,
		config:  cfg,
		logger:  opts.Logger.With().Str("mint", token.Mint).Str("pool", token.Pool).Logger(),
		onTick:  opts.OnTick,
		onState: opts.OnState,
		state:   domain.TransportIdle,
	}
}

// State returns the current transport state.
func (t *Transport) State() domain.TransportState {
	return t.state
}

// LastPrice returns the last delivered price, 0 if none yet.
func (t *Transport) LastPrice() float64 {
	return t.lastPrice
}

// Start opens the socket and arms the connect timeout. Without an endpoint
// or dialer the transport degrades to polling immediately.
func (t *Transport) Start() error {
	if t.stopped {
		return ErrStopped
	}
	if t.started {
		return ErrAlreadyStarted
	}
	t.started = true

	t.setState(domain.TransportConnecting)

	if t.config.Endpoint == "" || t.dialer == nil {
		t.degrade(&ConnectError{Endpoint: t.config.Endpoint, Err: ErrNoEndpoint})
		return nil
	}

	t.connectTimer = t.loop.AfterFunc(t.config.ConnectTimeout, t.handleConnectTimeout)
	t.socket = t.dialer.Dial(t.config.Endpoint, SocketHandlers{
		OnOpen:    t.handleOpen,
		OnMessage: t.handleMessage,
		OnClose:   t.handleClose,
	})
	return nil
}

// Stop closes the socket (unsubscribing if it is open) and clears the poll
// timer. Safe to call more than once.
func (t *Transport) Stop() {
	if t.stopped {
		return
	}
	t.stopped = true

	t.connectTimer.Cancel()
	t.connectTimer = nil

	if t.socket != nil {
		if t.socket.Open() {
			if err := t.socket.Send(UnsubscribeMessage(t.token.Mint)); err != nil {
				t.logger.Debug().Err(err).Msg("unsubscribe failed")
			}
		}
		t.socket.Close()
		t.socket = nil
	}

	if t.poller != nil {
		t.poller.Stop()
		t.poller = nil
	}

	if t.state != domain.TransportIdle {
		t.setState(domain.TransportIdle)
	}
}

func (t *Transport) handleConnectTimeout() {
	if t.stopped || t.state != domain.TransportConnecting {
		return
	}
	t.degrade(&ConnectError{Endpoint: t.config.Endpoint, Err: ErrConnectTimeout})
}

func (t *Transport) handleOpen() {
	if t.stopped || t.state != domain.TransportConnecting || t.socket == nil {
		return
	}
	t.connectTimer.Cancel()
	t.connectTimer = nil

	t.setState(domain.TransportLive)
	if err := t.socket.Send(SubscribeMessage(t.token.Mint)); err != nil {
		t.degrade(&RuntimeError{Endpoint: t.config.Endpoint, Err: err})
	}
}

func (t *Transport) handleClose(err error) {
	if t.stopped {
		return
	}
	if err == nil {
		err = errors.New("socket closed")
	}

	switch t.state {
	case domain.TransportConnecting:
		t.degrade(&ConnectError{Endpoint: t.config.Endpoint, Err: err})
	case domain.TransportLive:
		t.degrade(&RuntimeError{Endpoint: t.config.Endpoint, Err: err})
	}
}

func (t *Transport) handleMessage(data []byte) {
	if t.stopped || t.state != domain.TransportLive {
		return
	}

	msg, err := DecodeMessage(data)
	if err != nil {
		t.drop("decode", err)
		return
	}

	switch msg.Type {
	case MsgConnected:
		t.logger.Debug().Str("message", msg.Message).Msg("price socket connected")
	case MsgSubscribed:
		t.logger.Debug().Str("token", msg.Token).Msg("subscribed")
	case MsgError:
		t.logger.Warn().Str("message", msg.Message).Msg("price socket error message")
	case MsgPriceUpdate:
		if msg.Token != "" && msg.Token != t.token.Mint {
			t.drop("token", &TickParseError{Reason: "unexpected token " + msg.Token})
			return
		}
		tick, err := msg.Tick()
		if err != nil {
			t.drop("parse", err)
			return
		}
		t.deliver(tick)
	default:
		t.logger.Debug().Str("type", msg.Type).Msg("ignoring unknown message type")
	}
}

func (t *Transport) handlePoll(price float64, at time.Time) {
	if t.stopped || t.state != domain.TransportDegraded {
		return
	}
	tick := domain.Tick{
		Price:  price,
		Time:   at.Unix(),
		Source: domain.TickSourcePoll,
	}
	if err := tick.Validate(); err != nil {
		t.drop("parse", &TickParseError{Reason: "poll", Err: err})
		return
	}
	t.deliver(tick)
}

// degrade abandons the socket and starts polling.
func (t *Transport) degrade(cause error) {
	t.logger.Warn().Err(cause).Msg("live price socket unavailable, falling back to polling")

	t.connectTimer.Cancel()
	t.connectTimer = nil
	if t.socket != nil {
		t.socket.Close()
		t.socket = nil
	}

	t.setState(domain.TransportDegraded)

	if t.prices == nil {
		t.logger.Error().Msg("no price source for polling, live updates unavailable")
		t.setState(domain.TransportFailed)
		return
	}
	t.poller = NewPoller(t.loop, t.prices, t.token.Pool, t.config.PollInterval, t.config.PollTimeout, t.logger, t.handlePoll)
	t.poller.Start()
}

func (t *Transport) deliver(tick domain.Tick) {
	t.lastPrice = tick.Price
	observability.RecordTick(tick.Source.String())
	event := t.logger.Debug().
		Str("source", tick.Source.String()).
		Float64("price", tick.Price).
		Int64("time", tick.Time)
	if tick.Origin != "" {
		event = event.Str("origin", tick.Origin)
	}
	event.Msg("tick")
	if t.onTick != nil {
		t.onTick(tick)
	}
}

func (t *Transport) drop(reason string, err error) {
	observability.RecordTickDropped(reason)
	t.logger.Debug().Err(err).Msg("dropping tick")
}

func (t *Transport) setState(to domain.TransportState) {
	from := t.state
	if from == to {
		return
	}
	t.state = to
	observability.RecordTransition(from.String(), to.String())
	t.logger.Info().Str("from", from.String()).Str("to", to.String()).Msg("transport state")
	if t.onState != nil {
		t.onState(from, to)
	}
}
