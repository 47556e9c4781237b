package marketdata

import (
	"context"
	"fmt"
	"strconv"
)

// LatestPrice returns the pool's base token USD price.
func (c *Client) LatestPrice(ctx context.Context, pool string) (float64, error) {
	if pool == "" {
		return 0, fmt.Errorf("latest price: empty pool address")
	}

	var resp poolResponse
	err := c.get(ctx, "pool", "/pools/{pool}", map[string]string{"pool": pool}, nil, &resp)
	if err != nil {
		return 0, fmt.Errorf("latest price %s: %w", pool, err)
	}

	raw := resp.Data.Attributes.BaseTokenPriceUSD
	if raw == nil || *raw == "" {
		return 0, fmt.Errorf("latest price %s: %w: missing base_token_price_usd", pool, ErrMalformedPayload)
	}

	price, err := strconv.ParseFloat(*raw, 64)
	if err != nil || price <= 0 {
		return 0, fmt.Errorf("latest price %s: %w: price %q", pool, ErrMalformedPayload, *raw)
	}
	return price, nil
}

// TopPool returns the most liquid pool address for a token mint.
func (c *Client) TopPool(ctx context.Context, mint string) (string, error) {
	if mint == "" {
		return "", fmt.Errorf("top pool: empty mint address")
	}

	var resp poolsResponse
	err := c.get(ctx, "token_pools", "/tokens/{mint}/pools",
		map[string]string{"mint": mint},
		map[string]string{"page": "1"},
		&resp,
	)
	if err != nil {
		return "", fmt.Errorf("top pool %s: %w", mint, err)
	}

	for _, p := range resp.Data {
		if p.Attributes.Address != "" {
			return p.Attributes.Address, nil
		}
	}
	return "", fmt.Errorf("top pool %s: %w", mint, ErrNoPool)
}
