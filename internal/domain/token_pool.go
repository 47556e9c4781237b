package domain

// TokenPool maps a mint to the pool its chart reads candles and polls from.
type TokenPool struct {
	Mint       string `json:"mint"`
	Pool       string `json:"pool"`
	ResolvedAt int64  `json:"resolved_at"` // Unix ms
	UpdatedAt  int64  `json:"updated_at"`  // Unix ms, set by the store
}

// Identity returns the chart identity for this mapping.
func (p TokenPool) Identity() TokenIdentity {
	return TokenIdentity{Mint: p.Mint, Pool: p.Pool}
}
