package storage

import (
	"context"

	"solana-price-chart/internal/domain"
)

// TokenPoolStore provides access to the token_pools catalog.
type TokenPoolStore interface {
	// Upsert stores the pool for a mint, replacing any previous mapping.
	// Returns ErrInvalidInput if the identity does not validate.
	Upsert(ctx context.Context, p *domain.TokenPool) error

	// GetByMint retrieves the mapping for a mint. Returns ErrNotFound if not exists.
	GetByMint(ctx context.Context, mint string) (*domain.TokenPool, error)
}
