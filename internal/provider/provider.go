// Package provider contains the external market data clients and the
// fallback resolver that orders them per market.
package provider

import (
	"context"
	"time"

	"github.com/wonny/chartinsight/internal/contracts"
)

// Provider fetches daily OHLCV history for one exchange-native symbol
// spelling. Symbol alias fallback lives in the Resolver, not here.
type Provider interface {
	Name() string
	FetchDaily(ctx context.Context, symbol string, from, to time.Time) (contracts.BarSeries, error)
}
