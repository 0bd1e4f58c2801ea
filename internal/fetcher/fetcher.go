package fetcher

import (
	"context"

	"forex-rsi-alerts/internal/market"
)

// CandleFetcher retrieves closing-price candles for one pair and timeframe,
// ordered oldest to newest.
type CandleFetcher interface {
	FetchCloses(ctx context.Context, pair market.Pair, tf market.Timeframe) ([]market.Candle, error)
}
