package chart

import "solana-price-chart/internal/domain"

// Phase is the lifecycle phase of a chart.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
	PhaseError
)

// String returns the string representation of Phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// User-visible error messages.
const (
	MsgMissingToken      = "token pool not available"
	MsgBackfillFailed    = "failed to load chart data"
	MsgContainerNotReady = "chart container not ready, please reopen the chart"
)

// Status is what the embedding UI shows for a chart.
type Status struct {
	Phase   Phase
	Message string // set in PhaseError
	Err     error  // underlying cause, for logs
	Token   domain.TokenIdentity
}
