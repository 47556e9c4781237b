package memory

import (
	"context"
	"sync"
	"time"

	"solana-price-chart/internal/domain"
	"solana-price-chart/internal/storage"
)

// TokenPoolStore is an in-memory implementation of storage.TokenPoolStore.
type TokenPoolStore struct {
	mu     sync.RWMutex
	byMint map[string]*domain.TokenPool
	now    func() time.Time
}

// NewTokenPoolStore creates a new in-memory token pool store.
func NewTokenPoolStore() *TokenPoolStore {
	return &TokenPoolStore{
		byMint: make(map[string]*domain.TokenPool),
		now:    time.Now,
	}
}

// Compile-time interface check.
var _ storage.TokenPoolStore = (*TokenPoolStore)(nil)

// Upsert stores the pool for a mint.
func (s *TokenPoolStore) Upsert(_ context.Context, p *domain.TokenPool) error {
	if p == nil || p.Identity().Validate() != nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	poolCopy := *p
	poolCopy.UpdatedAt = s.now().UnixMilli()
	s.byMint[p.Mint] = &poolCopy
	return nil
}

// GetByMint retrieves the mapping for a mint. Returns ErrNotFound if not exists.
func (s *TokenPoolStore) GetByMint(_ context.Context, mint string) (*domain.TokenPool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.byMint[mint]
	if !exists {
		return nil, storage.ErrNotFound
	}

	poolCopy := *p
	return &poolCopy, nil
}
