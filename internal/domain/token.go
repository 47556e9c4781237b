package domain

import (
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

// Token identity errors.
var (
	ErrMissingMint    = errors.New("token mint address is required")
	ErrMissingPool    = errors.New("token pool address is required")
	ErrInvalidAddress = errors.New("invalid solana address")
)

// solanaAddressLen is the decoded length of a Solana public key.
const solanaAddressLen = 32

// TokenIdentity names the instrument a chart follows.
// Live ticks are keyed by Mint, candles and polls by Pool.
type TokenIdentity struct {
	Mint string `json:"mint"`
	Pool string `json:"pool"`
}

// Validate checks that both addresses are present and well formed.
func (t TokenIdentity) Validate() error {
	if t.Mint == "" {
		return ErrMissingMint
	}
	if t.Pool == "" {
		return ErrMissingPool
	}
	if err := ValidateAddress(t.Mint); err != nil {
		return fmt.Errorf("mint: %w", err)
	}
	if err := ValidateAddress(t.Pool); err != nil {
		return fmt.Errorf("pool: %w", err)
	}
	if t.Mint == t.Pool {
		return fmt.Errorf("%w: mint and pool are the same address", ErrInvalidAddress)
	}
	return nil
}

// String returns "mint@pool".
func (t TokenIdentity) String() string {
	return t.Mint + "@" + t.Pool
}

// ValidateAddress checks that addr is a base58 encoded 32-byte public key.
func ValidateAddress(addr string) error {
	decoded, err := base58.Decode(addr)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidAddress, addr, err)
	}
	if len(decoded) != solanaAddressLen {
		return fmt.Errorf("%w: %q decodes to %d bytes", ErrInvalidAddress, addr, len(decoded))
	}
	return nil
}
