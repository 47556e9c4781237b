package domain

// TransportState is the live update state of a chart.
type TransportState int

const (
	TransportIdle       TransportState = iota // not started or stopped
	TransportConnecting                       // WebSocket opening, timeout armed
	TransportLive                             // WebSocket open and subscribed
	TransportDegraded                         // polling after WebSocket failure
	TransportFailed                           // no live updates, last value frozen
)

// String returns the string representation of TransportState.
func (s TransportState) String() string {
	switch s {
	case TransportIdle:
		return "idle"
	case TransportConnecting:
		return "connecting"
	case TransportLive:
		return "live"
	case TransportDegraded:
		return "degraded"
	case TransportFailed:
		return "failed"
	default:
		return "unknown"
	}
}
