package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/chartinsight/internal/contracts"
	"github.com/wonny/chartinsight/pkg/httputil"
	"github.com/wonny/chartinsight/pkg/logger"
)

// NaverClient fetches daily candles from the Naver Finance chart API.
// It only understands bare 6-digit Korean codes.
// ⭐ SSOT: Naver Finance API 호출은 이 클라이언트에서만
type NaverClient struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewNaverClient creates a Naver Finance client
func NewNaverClient(httpClient *httputil.Client, log *logger.Logger, baseURL string) *NaverClient {
	if baseURL == "" {
		baseURL = "https://fchart.stock.naver.com"
	}
	return &NaverClient{
		httpClient: httpClient,
		logger:     log,
		baseURL:    baseURL,
	}
}

// Name returns the provider name
func (c *NaverClient) Name() string { return "naver" }

// FetchDaily fetches daily bars for a 6-digit stock code in [from, to]
func (c *NaverClient) FetchDaily(ctx context.Context, symbol string, from, to time.Time) (contracts.BarSeries, error) {
	fromStr := strings.ReplaceAll(from.Format("2006-01-02"), "-", "")
	toStr := strings.ReplaceAll(to.Format("2006-01-02"), "-", "")

	fullURL := fmt.Sprintf(
		"%s/siseJson.naver?symbol=%s&requestType=1&startTime=%s&endTime=%s&timeframe=day",
		c.baseURL, symbol, fromStr, toStr,
	)

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body failed: %w", err)
	}

	series, err := c.parsePriceResponse(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse response failed: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"stock_code": symbol,
		"rows":       series.Len(),
	}).Debug("Fetched daily bars from Naver")

	return series, nil
}

// parsePriceResponse parses the siseJson payload. Naver returns a
// JavaScript array with single quotes, so quotes are normalized before
// JSON decoding, with a regex scan as the fallback.
func (c *NaverClient) parsePriceResponse(body string) (contracts.BarSeries, error) {
	body = strings.TrimSpace(body)
	body = strings.ReplaceAll(body, "'", "\"")

	var rawData [][]interface{}
	if err := json.Unmarshal([]byte(body), &rawData); err == nil {
		return c.parsePriceJSON(rawData)
	}

	return c.parsePriceRegex(body)
}

// parsePriceJSON parses the decoded array-of-rows format
func (c *NaverClient) parsePriceJSON(rawData [][]interface{}) (contracts.BarSeries, error) {
	var series contracts.BarSeries
	for i, row := range rawData {
		if i == 0 || len(row) < 6 {
			continue // Skip header
		}

		dateStr, ok := row[0].(string)
		if !ok {
			continue
		}
		dateStr = strings.Trim(dateStr, "\"")

		date, err := parseCompactDate(dateStr)
		if err != nil {
			continue
		}

		series = append(series, contracts.Bar{
			Date:   date,
			Open:   toFloat64(row[1]),
			High:   toFloat64(row[2]),
			Low:    toFloat64(row[3]),
			Close:  toFloat64(row[4]),
			Volume: toFloat64(row[5]),
		})
	}
	return series, nil
}

var naverRowRe = regexp.MustCompile(`\["(\d{8})",\s*(\d+),\s*(\d+),\s*(\d+),\s*(\d+),\s*(\d+)\]`)

// parsePriceRegex parses rows with a regex (fallback)
func (c *NaverClient) parsePriceRegex(body string) (contracts.BarSeries, error) {
	matches := naverRowRe.FindAllStringSubmatch(body, -1)

	var series contracts.BarSeries
	for _, match := range matches {
		if len(match) < 7 {
			continue
		}

		date, err := parseCompactDate(match[1])
		if err != nil {
			continue
		}

		open, _ := strconv.ParseFloat(match[2], 64)
		high, _ := strconv.ParseFloat(match[3], 64)
		low, _ := strconv.ParseFloat(match[4], 64)
		closeP, _ := strconv.ParseFloat(match[5], 64)
		volume, _ := strconv.ParseFloat(match[6], 64)

		series = append(series, contracts.Bar{
			Date:   date,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closeP,
			Volume: volume,
		})
	}
	return series, nil
}

// parseCompactDate accepts YYYYMMDD or YYYY-MM-DD
func parseCompactDate(s string) (time.Time, error) {
	if len(s) == 8 {
		s = s[:4] + "-" + s[4:6] + "-" + s[6:8]
	}
	return time.Parse("2006-01-02", s)
}

// toFloat64 converts the loosely typed cell values
func toFloat64(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int64:
		return float64(val)
	case int:
		return float64(val)
	case string:
		n, _ := strconv.ParseFloat(val, 64)
		return n
	default:
		return 0
	}
}
