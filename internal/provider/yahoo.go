package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/wonny/chartinsight/internal/contracts"
	"github.com/wonny/chartinsight/pkg/httputil"
	"github.com/wonny/chartinsight/pkg/logger"
)

// YahooClient fetches daily candles from the Yahoo Finance v8 chart API
// ⭐ SSOT: Yahoo Finance API 호출은 이 클라이언트에서만
type YahooClient struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewYahooClient creates a Yahoo Finance client
func NewYahooClient(httpClient *httputil.Client, log *logger.Logger, baseURL string) *YahooClient {
	if baseURL == "" {
		baseURL = "https://query1.finance.yahoo.com"
	}
	return &YahooClient{
		httpClient: httpClient,
		logger:     log,
		baseURL:    baseURL,
	}
}

// Name returns the provider name
func (c *YahooClient) Name() string { return "yahoo" }

// yahooChart is the chart API response envelope. Quote arrays use
// pointers because Yahoo emits null for bars with no trade.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				ExchangeTimezoneName string `json:"exchangeTimezoneName"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchDaily fetches daily bars for symbol in [from, to]. Bars with a
// null OHLC value are skipped; timestamps are collapsed to the bar's
// calendar date in the exchange timezone.
func (c *YahooClient) FetchDaily(ctx context.Context, symbol string, from, to time.Time) (contracts.BarSeries, error) {
	fullURL := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d&events=history",
		c.baseURL, url.PathEscape(symbol), from.Unix(), to.Unix())

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("decode chart response failed: %w", err)
	}

	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("chart api error: %s (%s)",
			chart.Chart.Error.Description, chart.Chart.Error.Code)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, fmt.Errorf("no data returned for %s", symbol)
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no quote data returned for %s", symbol)
	}
	quote := result.Indicators.Quote[0]

	loc := time.UTC
	if result.Meta.ExchangeTimezoneName != "" {
		if l, err := time.LoadLocation(result.Meta.ExchangeTimezoneName); err == nil {
			loc = l
		}
	}

	series := make(contracts.BarSeries, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) {
			break
		}
		if quote.Open[i] == nil || quote.High[i] == nil || quote.Low[i] == nil || quote.Close[i] == nil {
			continue
		}

		local := time.Unix(ts, 0).In(loc)
		date := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)

		var volume float64
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			volume = *quote.Volume[i]
		}

		series = append(series, contracts.Bar{
			Date:   date,
			Open:   *quote.Open[i],
			High:   *quote.High[i],
			Low:    *quote.Low[i],
			Close:  *quote.Close[i],
			Volume: volume,
		})
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"rows":   series.Len(),
	}).Debug("Fetched daily bars from Yahoo")

	return series, nil
}
