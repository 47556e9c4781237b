package tokens

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-price-chart/internal/domain"
	"solana-price-chart/internal/marketdata"
	"solana-price-chart/internal/storage/memory"
)

const (
	testMint  = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	testPool  = "58oQChx4yWmvKdwLLZzBi4ChoCc2fqCUWBkwMihLYQo2"
	otherPool = "Czfq3xZZDmsdGdUyrNLtRhGc47cXcZtLG4crryfu44zE"
)

type stubFinder struct {
	pool  string
	err   error
	calls int
}

func (f *stubFinder) TopPool(context.Context, string) (string, error) {
	f.calls++
	return f.pool, f.err
}

func TestResolver_APIThenCache(t *testing.T) {
	finder := &stubFinder{pool: testPool}
	store := memory.NewTokenPoolStore()
	r := NewResolver(finder, Options{Store: store, Logger: zerolog.Nop()})
	ctx := context.Background()

	id, err := r.Resolve(ctx, testMint)
	require.NoError(t, err)
	assert.Equal(t, domain.TokenIdentity{Mint: testMint, Pool: testPool}, id)

	again, err := r.Resolve(ctx, testMint)
	require.NoError(t, err)
	assert.Equal(t, id, again)
	assert.Equal(t, 1, finder.calls)

	stored, err := store.GetByMint(ctx, testMint)
	require.NoError(t, err)
	assert.Equal(t, testPool, stored.Pool)
	assert.NotZero(t, stored.ResolvedAt)
}

func TestResolver_StoreBeforeAPI(t *testing.T) {
	finder := &stubFinder{pool: otherPool}
	store := memory.NewTokenPoolStore()
	ctx := context.Background()
	require.NoError(t, store.Upsert(ctx, &domain.TokenPool{Mint: testMint, Pool: testPool}))

	r := NewResolver(finder, Options{Store: store, Logger: zerolog.Nop()})
	id, err := r.Resolve(ctx, testMint)
	require.NoError(t, err)
	assert.Equal(t, testPool, id.Pool)
	assert.Zero(t, finder.calls)
}

func TestResolver_ForgetRefetches(t *testing.T) {
	finder := &stubFinder{pool: testPool}
	r := NewResolver(finder, Options{Logger: zerolog.Nop()})
	ctx := context.Background()

	_, err := r.Resolve(ctx, testMint)
	require.NoError(t, err)
	r.Forget(testMint)
	_, err = r.Resolve(ctx, testMint)
	require.NoError(t, err)
	assert.Equal(t, 2, finder.calls)
}

func TestResolver_Errors(t *testing.T) {
	ctx := context.Background()

	r := NewResolver(&stubFinder{err: marketdata.ErrNoPool}, Options{Logger: zerolog.Nop()})
	_, err := r.Resolve(ctx, testMint)
	assert.ErrorIs(t, err, marketdata.ErrNoPool)

	_, err = r.Resolve(ctx, "")
	assert.ErrorIs(t, err, domain.ErrMissingMint)

	_, err = r.Resolve(ctx, "0OIl")
	assert.ErrorIs(t, err, domain.ErrInvalidAddress)

	r = NewResolver(&stubFinder{pool: testMint}, Options{Logger: zerolog.Nop()})
	_, err = r.Resolve(ctx, testMint)
	assert.True(t, errors.Is(err, domain.ErrInvalidAddress))
}

func TestResolver_Remember(t *testing.T) {
	finder := &stubFinder{err: errors.New("should not be called")}
	r := NewResolver(finder, Options{Logger: zerolog.Nop()})
	ctx := context.Background()

	r.Remember(ctx, domain.TokenIdentity{Mint: testMint, Pool: testPool})
	id, err := r.Resolve(ctx, testMint)
	require.NoError(t, err)
	assert.Equal(t, testPool, id.Pool)
	assert.Zero(t, finder.calls)
}
