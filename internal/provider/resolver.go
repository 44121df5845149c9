package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/chartinsight/internal/contracts"
	"github.com/wonny/chartinsight/pkg/logger"
)

// ResolverConfig holds per-provider retry settings
type ResolverConfig struct {
	YahooRetries int
	YahooDelay   time.Duration
	NaverRetries int
	NaverDelay   time.Duration
}

// DefaultResolverConfig returns the standard retry settings
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		YahooRetries: 3,
		YahooDelay:   5 * time.Second,
		NaverRetries: 3,
		NaverDelay:   2 * time.Second,
	}
}

// Resolver downloads daily history by walking an ordered list of
// (provider, symbol) attempts until one yields data. Korean tickers
// try the Korean-native source before Yahoo's suffixed spellings;
// US tickers go the other way.
type Resolver struct {
	yahoo Provider
	naver Provider
	cfg   ResolverConfig
	log   *logger.Logger
	sleep func(time.Duration)
}

// NewResolver creates a Resolver over the two providers
func NewResolver(yahoo, naver Provider, cfg ResolverConfig, log *logger.Logger) *Resolver {
	return &Resolver{
		yahoo: yahoo,
		naver: naver,
		cfg:   cfg,
		log:   log,
		sleep: time.Sleep,
	}
}

// attempt is one (provider, symbol) pairing in the fallback order
type attempt struct {
	provider Provider
	symbol   string
	retries  int
	delay    time.Duration
}

// attempts builds the ordered fallback list for a ticker and market
func (r *Resolver) attempts(ticker contracts.Ticker, m contracts.Market) []attempt {
	var list []attempt

	if m.IsKorean() {
		list = append(list, attempt{
			provider: r.naver,
			symbol:   ticker.Normalized(),
			retries:  r.cfg.NaverRetries,
			delay:    r.cfg.NaverDelay,
		})
		for _, sym := range ticker.YahooSymbols(m) {
			list = append(list, attempt{
				provider: r.yahoo,
				symbol:   sym,
				retries:  r.cfg.YahooRetries,
				delay:    r.cfg.YahooDelay,
			})
		}
		return list
	}

	for _, sym := range ticker.YahooSymbols(m) {
		list = append(list, attempt{
			provider: r.yahoo,
			symbol:   sym,
			retries:  r.cfg.YahooRetries,
			delay:    r.cfg.YahooDelay,
		})
	}
	list = append(list, attempt{
		provider: r.naver,
		symbol:   ticker.Normalized(),
		retries:  r.cfg.NaverRetries,
		delay:    r.cfg.NaverDelay,
	})
	return list
}

// Download fetches daily bars for a ticker, trying each provider and
// symbol spelling in order with fixed-delay retries. Every attempt is
// logged with its outcome. Exhausting the list yields ErrDownload.
func (r *Resolver) Download(ctx context.Context, ticker contracts.Ticker, m contracts.Market, from, to time.Time) (contracts.BarSeries, error) {
	var lastErr error

	for _, a := range r.attempts(ticker, m) {
		for try := 1; try <= a.retries; try++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			series, err := a.provider.FetchDaily(ctx, a.symbol, from, to)

			fields := map[string]interface{}{
				"ticker":   ticker,
				"provider": a.provider.Name(),
				"symbol":   a.symbol,
				"attempt":  try,
			}

			if err == nil && !series.IsEmpty() {
				fields["rows"] = series.Len()
				r.log.WithFields(fields).Info("Download succeeded")

				series.Sort()
				return series.DedupeDates(), nil
			}

			if err == nil {
				err = fmt.Errorf("empty series for %s", a.symbol)
			}
			lastErr = err

			fields["error"] = err.Error()
			r.log.WithFields(fields).Warn("Download attempt failed")

			if try < a.retries {
				r.sleep(a.delay)
			}
		}
	}

	return nil, fmt.Errorf("%w: %s on %s: %v", contracts.ErrDownload, ticker, m, lastErr)
}
