package pricefeed

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"solana-price-chart/internal/domain"
)

// Message types on the live price socket.
const (
	MsgSubscribe   = "subscribe"
	MsgUnsubscribe = "unsubscribe"
	MsgConnected   = "connected"
	MsgSubscribed  = "subscribed"
	MsgPriceUpdate = "price-update"
	MsgError       = "error"
)

// millisecondThreshold separates second from millisecond timestamps.
// 1e11 seconds is year 5138; 1e11 ms is 1973.
const millisecondThreshold = 1e11

// ControlMessage is sent to the backend.
type ControlMessage struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// SubscribeMessage builds a subscribe request for a mint.
func SubscribeMessage(mint string) ControlMessage {
	return ControlMessage{Type: MsgSubscribe, Token: mint}
}

// UnsubscribeMessage builds an unsubscribe request for a mint.
func UnsubscribeMessage(mint string) ControlMessage {
	return ControlMessage{Type: MsgUnsubscribe, Token: mint}
}

// InboundMessage is any message received from the backend.
type InboundMessage struct {
	Type      string          `json:"type"`
	Token     string          `json:"token,omitempty"`
	Message   string          `json:"message,omitempty"`
	Price     json.RawMessage `json:"price,omitempty"`
	Timestamp json.RawMessage `json:"timestamp,omitempty"`
	Source    string          `json:"source,omitempty"`
}

// DecodeMessage parses one text frame.
func DecodeMessage(data []byte) (InboundMessage, error) {
	var msg InboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return InboundMessage{}, &TickParseError{Reason: "invalid json", Err: err}
	}
	if msg.Type == "" {
		return InboundMessage{}, &TickParseError{Reason: "missing type"}
	}
	return msg, nil
}

// Tick converts a price-update message into a validated tick.
func (m InboundMessage) Tick() (domain.Tick, error) {
	price, err := parsePrice(m.Price)
	if err != nil {
		return domain.Tick{}, &TickParseError{Reason: "price", Err: err}
	}
	ts, err := parseTimestamp(m.Timestamp)
	if err != nil {
		return domain.Tick{}, &TickParseError{Reason: "timestamp", Err: err}
	}

	tick := domain.Tick{
		Price:  price,
		Time:   ts,
		Source: domain.TickSourceWebSocket,
		Origin: m.Source,
	}
	if err := tick.Validate(); err != nil {
		return domain.Tick{}, &TickParseError{Reason: "validation", Err: err}
	}
	return tick, nil
}

// parsePrice accepts a JSON number or a numeric string.
func parsePrice(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, errors.New("missing price")
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		return strconv.ParseFloat(strings.TrimSpace(s), 64)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, err
	}
	return n.Float64()
}

// parseTimestamp accepts epoch seconds, epoch milliseconds, or RFC3339,
// and returns seconds.
func parseTimestamp(raw json.RawMessage) (int64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, errors.New("missing timestamp")
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		s = strings.TrimSpace(s)
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t.Unix(), nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, err
		}
		return normalizeEpoch(f)
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, err
	}
	f, err := n.Float64()
	if err != nil {
		return 0, err
	}
	return normalizeEpoch(f)
}

func normalizeEpoch(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0, errors.New("invalid timestamp")
	}
	if f > millisecondThreshold {
		f /= 1000
	}
	return int64(f), nil
}
