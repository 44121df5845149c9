package jobs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/chartinsight/internal/contracts"
)

func TestTrackedTickers(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "KOSPI")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	names := []string{
		"005930_ohlcv_d_20250820_000000_KST.csv",
		"005930_ohlcv_d_20250821_000000_KST.csv", // same ticker, newer
		"005930_ohlcv_w_20250821_000000_KST.csv", // weekly: not a tracking marker
		"051910_ohlcv_d_20250821_000000_KST.csv",
		"005930_indicators_d_20250821_000000_KST.csv",
		"notes.txt",
	}
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	tickers := TrackedTickers(root, contracts.MarketKOSPI)
	assert.Equal(t, []contracts.Ticker{"005930", "051910"}, tickers)
}

func TestTrackedTickersMissingFolder(t *testing.T) {
	assert.Empty(t, TrackedTickers(t.TempDir(), contracts.MarketUS))
}
