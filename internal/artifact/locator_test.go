package artifact

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/chartinsight/internal/contracts"
	"github.com/wonny/chartinsight/pkg/logger"
)

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("# OHLCV Data Metadata\n# End Metadata\n\nDate,Open\n"), 0o644))
	return path
}

func TestLocatorPicksNewestByFilenameTimestamp(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "KOSPI")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	old := touch(t, dir, "005930_ohlcv_d_20250101_000000_KST.csv")
	newest := touch(t, dir, "005930_ohlcv_d_20250822_153000_KST.csv")

	// Make the older artifact the most recently modified file, to prove
	// the filename timestamp wins over mod time.
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(old, future, future))

	loc := NewLocator(root, logger.NewNop())
	got, err := loc.Latest("005930", contracts.MarketKOSPI, contracts.KindOHLCV, contracts.TimeframeDaily)
	require.NoError(t, err)
	assert.Equal(t, newest, got)
}

func TestLocatorSearchesAllCandidates(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "KOSDAQ")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	// Saved under the .KQ spelling; looked up by the bare code.
	path := touch(t, dir, "035720.KQ_ohlcv_d_20250820_000000_KST.csv")

	loc := NewLocator(root, logger.NewNop())
	got, err := loc.Latest("035720", contracts.MarketKOSDAQ, contracts.KindOHLCV, contracts.TimeframeDaily)
	require.NoError(t, err)
	assert.Equal(t, path, got)
}

func TestLocatorIgnoresOtherKindsAndTimeframes(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "US")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	touch(t, dir, "AAPL_ohlcv_w_20250822_000000_EST.csv")
	touch(t, dir, "AAPL_indicators_d_20250822_000000_EST.csv")
	daily := touch(t, dir, "AAPL_ohlcv_d_20250820_000000_EST.csv")

	loc := NewLocator(root, logger.NewNop())
	got, err := loc.Latest("AAPL", contracts.MarketUS, contracts.KindOHLCV, contracts.TimeframeDaily)
	require.NoError(t, err)
	assert.Equal(t, daily, got)
}

func TestLocatorNotFound(t *testing.T) {
	loc := NewLocator(t.TempDir(), logger.NewNop())

	_, err := loc.Latest("005930", contracts.MarketKOSPI, contracts.KindOHLCV, contracts.TimeframeDaily)
	assert.ErrorIs(t, err, contracts.ErrNotFound)
}

func TestLocatorCrossinfoCaseInsensitive(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "KOSPI")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	path := touch(t, dir, "005930_CROSSINFO_d_20250820_000000_KST.csv")

	loc := NewLocator(root, logger.NewNop())
	got, err := loc.Latest("005930", contracts.MarketKOSPI, contracts.KindCrossInfo, contracts.TimeframeDaily)
	require.NoError(t, err)
	assert.Equal(t, path, got)
}

func TestLocatorUnparsableNameFallsBackToModTime(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "KOSPI")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	legacy := touch(t, dir, "005930_ohlcv_d_legacy_file_KST.csv")
	_ = legacy // unparsable timestamp: ranked by mod time only
	parsed := touch(t, dir, "005930_ohlcv_d_20990101_000000_KST.csv")

	loc := NewLocator(root, logger.NewNop())
	got, err := loc.Latest("005930", contracts.MarketKOSPI, contracts.KindOHLCV, contracts.TimeframeDaily)
	require.NoError(t, err)
	assert.Equal(t, parsed, got, "far-future filename timestamp outranks mod time")
}
