package chart

import (
	"github.com/rs/zerolog"

	"solana-price-chart/internal/domain"
	"solana-price-chart/internal/eventloop"
	"solana-price-chart/internal/pricefeed"
)

// TransportFeeds returns a FeedFactory building pricefeed transports.
func TransportFeeds(loop eventloop.Loop, dialer pricefeed.Dialer, prices pricefeed.PriceSource, cfg pricefeed.Config, logger zerolog.Logger) FeedFactory {
	return func(token domain.TokenIdentity, onTick func(domain.Tick), onState func(from, to domain.TransportState)) Feed {
		return pricefeed.NewTransport(token, pricefeed.Options{
			Loop:    loop,
			Dialer:  dialer,
			Prices:  prices,
			Config:  cfg,
			Logger:  logger,
			OnTick:  onTick,
			OnState: onState,
		})
	}
}
