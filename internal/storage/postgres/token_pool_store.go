package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-price-chart/internal/domain"
	"solana-price-chart/internal/storage"
)

// TokenPoolStore implements storage.TokenPoolStore using PostgreSQL.
type TokenPoolStore struct {
	pool *Pool
}

// NewTokenPoolStore creates a new TokenPoolStore.
func NewTokenPoolStore(pool *Pool) *TokenPoolStore {
	return &TokenPoolStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TokenPoolStore = (*TokenPoolStore)(nil)

// Upsert stores the pool for a mint, replacing any previous mapping.
func (s *TokenPoolStore) Upsert(ctx context.Context, p *domain.TokenPool) error {
	if p == nil || p.Identity().Validate() != nil {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO token_pools (mint, pool, resolved_at, updated_at)
		VALUES ($1, $2, $3, (EXTRACT(EPOCH FROM NOW()) * 1000)::BIGINT)
		ON CONFLICT (mint) DO UPDATE SET
			pool = EXCLUDED.pool,
			resolved_at = EXCLUDED.resolved_at,
			updated_at = EXCLUDED.updated_at
	`

	if _, err := s.pool.Exec(ctx, query, p.Mint, p.Pool, p.ResolvedAt); err != nil {
		return fmt.Errorf("upsert token pool: %w", err)
	}
	return nil
}

// GetByMint retrieves the mapping for a mint. Returns ErrNotFound if not exists.
func (s *TokenPoolStore) GetByMint(ctx context.Context, mint string) (*domain.TokenPool, error) {
	query := `
		SELECT mint, pool, resolved_at, updated_at
		FROM token_pools
		WHERE mint = $1
	`

	row := s.pool.QueryRow(ctx, query, mint)
	p, err := scanTokenPool(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get token pool by mint: %w", err)
	}
	return p, nil
}

// scanTokenPool scans a single row into TokenPool.
func scanTokenPool(row pgx.Row) (*domain.TokenPool, error) {
	var p domain.TokenPool

	err := row.Scan(
		&p.Mint,
		&p.Pool,
		&p.ResolvedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &p, nil
}
