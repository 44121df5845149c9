package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/chartinsight/internal/contracts"
	"github.com/wonny/chartinsight/pkg/logger"
)

// fakeProvider records every symbol it was asked for and answers from a
// canned map; unknown symbols fail.
type fakeProvider struct {
	name  string
	data  map[string]contracts.BarSeries
	calls []string
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) FetchDaily(_ context.Context, symbol string, _, _ time.Time) (contracts.BarSeries, error) {
	f.calls = append(f.calls, symbol)
	if s, ok := f.data[symbol]; ok {
		return s, nil
	}
	return nil, errors.New("no data")
}

func someBars(n int) contracts.BarSeries {
	s := make(contracts.BarSeries, 0, n)
	start := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		s = append(s, contracts.Bar{Date: start.AddDate(0, 0, i), Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10})
	}
	return s
}

func fastConfig() ResolverConfig {
	return ResolverConfig{YahooRetries: 2, NaverRetries: 2}
}

func newResolver(yahoo, naver *fakeProvider) *Resolver {
	r := NewResolver(yahoo, naver, fastConfig(), logger.NewNop())
	r.sleep = func(time.Duration) {}
	return r
}

func TestDownloadKoreanTriesNaverFirst(t *testing.T) {
	yahoo := &fakeProvider{name: "yahoo"}
	naver := &fakeProvider{name: "naver", data: map[string]contracts.BarSeries{
		"005930": someBars(5),
	}}

	r := newResolver(yahoo, naver)
	series, err := r.Download(context.Background(), "005930.KS", contracts.MarketKOSPI, time.Now().AddDate(-1, 0, 0), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 5, series.Len())

	assert.Equal(t, []string{"005930"}, naver.calls, "naver asked with the bare code")
	assert.Empty(t, yahoo.calls, "yahoo never consulted when naver succeeds")
}

func TestDownloadKosdaqFallbackOrder(t *testing.T) {
	// Naver has nothing; Yahoo only knows the .KS spelling. A KOSDAQ
	// ticker must still try .KQ first, then fall through to .KS.
	yahoo := &fakeProvider{name: "yahoo", data: map[string]contracts.BarSeries{
		"000660.KS": someBars(3),
	}}
	naver := &fakeProvider{name: "naver"}

	r := newResolver(yahoo, naver)
	series, err := r.Download(context.Background(), "000660", contracts.MarketKOSDAQ, time.Now().AddDate(-1, 0, 0), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 3, series.Len())

	assert.Equal(t, []string{"000660", "000660"}, naver.calls, "naver retried before falling back")
	assert.Equal(t, []string{"000660.KQ", "000660.KQ", "000660.KS"}, yahoo.calls,
		"KQ exhausted before KS, which succeeds on the first try")
}

func TestDownloadUSTriesYahooFirst(t *testing.T) {
	yahoo := &fakeProvider{name: "yahoo", data: map[string]contracts.BarSeries{
		"AAPL": someBars(4),
	}}
	naver := &fakeProvider{name: "naver"}

	r := newResolver(yahoo, naver)
	_, err := r.Download(context.Background(), "AAPL", contracts.MarketUS, time.Now().AddDate(-1, 0, 0), time.Now())
	require.NoError(t, err)

	assert.Equal(t, []string{"AAPL"}, yahoo.calls)
	assert.Empty(t, naver.calls)
}

func TestDownloadAllExhaustedReturnsErrDownload(t *testing.T) {
	r := newResolver(&fakeProvider{name: "yahoo"}, &fakeProvider{name: "naver"})

	_, err := r.Download(context.Background(), "005930", contracts.MarketKOSPI, time.Now().AddDate(-1, 0, 0), time.Now())
	assert.ErrorIs(t, err, contracts.ErrDownload)
}

func TestDownloadEmptySeriesCountsAsFailure(t *testing.T) {
	naver := &fakeProvider{name: "naver", data: map[string]contracts.BarSeries{
		"005930": {},
	}}
	yahoo := &fakeProvider{name: "yahoo", data: map[string]contracts.BarSeries{
		"005930.KS": someBars(2),
	}}

	r := newResolver(yahoo, naver)
	series, err := r.Download(context.Background(), "005930", contracts.MarketKOSPI, time.Now().AddDate(-1, 0, 0), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, series.Len(), "empty naver answer falls through to yahoo")
}

func TestDownloadSortsAndDedupes(t *testing.T) {
	bars := contracts.BarSeries{
		{Date: time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC), Close: 2},
		{Date: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), Close: 1},
		{Date: time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC), Close: 3},
	}
	yahoo := &fakeProvider{name: "yahoo", data: map[string]contracts.BarSeries{"AAPL": bars}}

	r := newResolver(yahoo, &fakeProvider{name: "naver"})
	series, err := r.Download(context.Background(), "AAPL", contracts.MarketUS, time.Now().AddDate(-1, 0, 0), time.Now())
	require.NoError(t, err)

	require.Equal(t, 2, series.Len())
	assert.Equal(t, 3.0, series[1].Close, "last duplicate wins")
}

func TestDownloadHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newResolver(&fakeProvider{name: "yahoo"}, &fakeProvider{name: "naver"})
	_, err := r.Download(ctx, "AAPL", contracts.MarketUS, time.Now().AddDate(-1, 0, 0), time.Now())
	assert.ErrorIs(t, err, context.Canceled)
}
