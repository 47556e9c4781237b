package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"solana-price-chart/internal/domain"
)

// OHLCV fetches candles for a pool. The API returns newest first; order is preserved.
func (c *Client) OHLCV(ctx context.Context, pool string, q OHLCVQuery) ([]domain.Candle, error) {
	if pool == "" {
		return nil, fmt.Errorf("ohlcv: empty pool address")
	}

	var resp ohlcvResponse
	err := c.get(ctx, "ohlcv", "/pools/{pool}/ohlcv/{timeframe}",
		map[string]string{"pool": pool, "timeframe": q.Timeframe},
		map[string]string{
			"aggregate": strconv.Itoa(q.Aggregate),
			"limit":     strconv.Itoa(q.Limit),
			"currency":  q.Currency,
		},
		&resp,
	)
	if err != nil {
		return nil, fmt.Errorf("ohlcv %s: %w", pool, err)
	}

	candles := make([]domain.Candle, 0, len(resp.Data.Attributes.OHLCVList))
	for i, row := range resp.Data.Attributes.OHLCVList {
		candle, err := parseCandle(row)
		if err != nil {
			return nil, fmt.Errorf("ohlcv %s row %d: %w", pool, i, err)
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

// parseCandle decodes [timestamp, open, high, low, close, volume].
func parseCandle(row []json.Number) (domain.Candle, error) {
	if len(row) < 5 {
		return domain.Candle{}, fmt.Errorf("%w: candle has %d fields", ErrMalformedPayload, len(row))
	}

	values := make([]float64, 6)
	for i := 0; i < len(row) && i < 6; i++ {
		v, err := row[i].Float64()
		if err != nil {
			return domain.Candle{}, fmt.Errorf("%w: field %d: %v", ErrMalformedPayload, i, err)
		}
		values[i] = v
	}

	return domain.Candle{
		Timestamp: int64(values[0]),
		Open:      values[1],
		High:      values[2],
		Low:       values[3],
		Close:     values[4],
		Volume:    values[5],
	}, nil
}
