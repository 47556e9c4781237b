package marketdata

import "encoding/json"

// OHLCVQuery selects the candle window.
type OHLCVQuery struct {
	Timeframe string // minute, hour or day
	Aggregate int    // bars of Timeframe per candle
	Limit     int    // number of candles
	Currency  string // usd or token
}

// DefaultOHLCVQuery returns the chart window: 100 five-minute candles in USD.
func DefaultOHLCVQuery() OHLCVQuery {
	return OHLCVQuery{
		Timeframe: "minute",
		Aggregate: 5,
		Limit:     100,
		Currency:  "usd",
	}
}

// Wire types

type ohlcvResponse struct {
	Data struct {
		Attributes struct {
			OHLCVList [][]json.Number `json:"ohlcv_list"`
		} `json:"attributes"`
	} `json:"data"`
}

type poolResponse struct {
	Data struct {
		Attributes poolAttributes `json:"attributes"`
	} `json:"data"`
}

type poolsResponse struct {
	Data []struct {
		Attributes poolAttributes `json:"attributes"`
	} `json:"data"`
}

type poolAttributes struct {
	Address           string  `json:"address"`
	Name              string  `json:"name"`
	BaseTokenPriceUSD *string `json:"base_token_price_usd"`
}
