// Package tokens resolves a mint address to the chart identity (mint and
// most liquid pool) a chart needs before it can mount.
package tokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"solana-price-chart/internal/domain"
	"solana-price-chart/internal/observability"
	"solana-price-chart/internal/storage"
)

const (
	DefaultTTL             = 10 * time.Minute
	DefaultCleanupInterval = 30 * time.Minute
)

// PoolFinder looks up the most liquid pool of a mint.
type PoolFinder interface {
	TopPool(ctx context.Context, mint string) (string, error)
}

// Options configures a Resolver.
type Options struct {
	// Store persists resolved mappings. Optional.
	Store  storage.TokenPoolStore
	TTL    time.Duration
	Logger zerolog.Logger
}

// Resolver finds the pool for a mint: in-process cache first, then the
// store, then the market data API.
type Resolver struct {
	finder PoolFinder
	store  storage.TokenPoolStore
	cache  *cache.Cache
	logger zerolog.Logger
	now    func() time.Time
}

// NewResolver creates a resolver backed by finder.
func NewResolver(finder PoolFinder, opts Options) *Resolver {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Resolver{
		finder: finder,
		store:  opts.Store,
		cache:  cache.New(ttl, DefaultCleanupInterval),
		logger: opts.Logger,
		now:    time.Now,
	}
}

// Resolve returns the chart identity for mint.
func (r *Resolver) Resolve(ctx context.Context, mint string) (domain.TokenIdentity, error) {
	if mint == "" {
		return domain.TokenIdentity{}, domain.ErrMissingMint
	}
	if err := domain.ValidateAddress(mint); err != nil {
		return domain.TokenIdentity{}, fmt.Errorf("mint: %w", err)
	}

	if v, ok := r.cache.Get(mint); ok {
		observability.RecordResolverLookup("cache")
		return v.(domain.TokenIdentity), nil
	}

	if r.store != nil {
		p, err := r.store.GetByMint(ctx, mint)
		switch {
		case err == nil:
			id := p.Identity()
			r.cache.SetDefault(mint, id)
			observability.RecordResolverLookup("store")
			return id, nil
		case !errors.Is(err, storage.ErrNotFound):
			r.logger.Warn().Err(err).Str("mint", mint).Msg("token pool store lookup failed")
		}
	}

	pool, err := r.finder.TopPool(ctx, mint)
	if err != nil {
		observability.RecordResolverLookup("error")
		return domain.TokenIdentity{}, fmt.Errorf("resolve pool for %s: %w", mint, err)
	}

	id := domain.TokenIdentity{Mint: mint, Pool: pool}
	if err := id.Validate(); err != nil {
		observability.RecordResolverLookup("error")
		return domain.TokenIdentity{}, fmt.Errorf("resolve pool for %s: %w", mint, err)
	}
	observability.RecordResolverLookup("api")

	r.Remember(ctx, id)
	return id, nil
}

// Remember records a known identity in the cache and the store.
func (r *Resolver) Remember(ctx context.Context, id domain.TokenIdentity) {
	if id.Validate() != nil {
		return
	}
	r.cache.SetDefault(id.Mint, id)

	if r.store == nil {
		return
	}
	err := r.store.Upsert(ctx, &domain.TokenPool{
		Mint:       id.Mint,
		Pool:       id.Pool,
		ResolvedAt: r.now().UnixMilli(),
	})
	if err != nil {
		r.logger.Warn().Err(err).Str("mint", id.Mint).Msg("failed to store token pool")
	}
}

// Forget drops a cached mapping so the next Resolve goes past the cache.
func (r *Resolver) Forget(mint string) {
	r.cache.Delete(mint)
}
