package artifact

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/wonny/chartinsight/internal/contracts"
	"github.com/wonny/chartinsight/internal/resample"
	"github.com/wonny/chartinsight/pkg/logger"
)

const metaTimeLayout = "2006-01-02 15:04:05"

// Store persists OHLCV and indicator artifacts as CSV files with a
// metadata preamble, under {root}/{market}/.
// ⭐ SSOT: 아티팩트 쓰기는 이 타입을 통해서만 수행
type Store struct {
	root string
	log  *logger.Logger
	now  func() time.Time
}

// NewStore creates a Store rooted at dir
func NewStore(dir string, log *logger.Logger) *Store {
	return &Store{root: dir, log: log, now: time.Now}
}

// metaKV keeps the preamble in insertion order
type metaKV struct {
	key   string
	value string
}

// SaveBars writes an OHLCV series as a CSV artifact and returns its path.
// Saving a daily series also derives and persists the weekly and monthly
// artifacts when enough history exists; their failures are logged but do
// not fail the daily save.
func (s *Store) SaveBars(ticker contracts.Ticker, m contracts.Market, tf contracts.Timeframe, series contracts.BarSeries) (string, error) {
	if series.IsEmpty() {
		return "", fmt.Errorf("%w: no bars to save for %s", contracts.ErrStorage, ticker)
	}

	sorted := series.Clone()
	sorted.Sort()

	path, err := s.writeBars(ticker, m, tf, sorted)
	if err != nil {
		return "", err
	}

	if tf == contracts.TimeframeDaily {
		s.deriveAndSave(ticker, m, contracts.TimeframeWeekly, resample.ToWeekly(sorted))
		s.deriveAndSave(ticker, m, contracts.TimeframeMonthly, resample.ToMonthly(sorted))
	}

	return path, nil
}

// deriveAndSave persists a resampled series, tolerating failure
func (s *Store) deriveAndSave(ticker contracts.Ticker, m contracts.Market, tf contracts.Timeframe, series contracts.BarSeries) {
	if series.IsEmpty() {
		s.log.WithFields(map[string]interface{}{
			"ticker":    ticker,
			"timeframe": tf.Label(),
		}).Debug("Derived series empty, skipping save")
		return
	}

	path, err := s.writeBars(ticker, m, tf, series)
	if err != nil {
		s.log.WithError(err).WithFields(map[string]interface{}{
			"ticker":    ticker,
			"timeframe": tf.Label(),
		}).Error("Derived series save failed")
		return
	}

	s.log.WithFields(map[string]interface{}{
		"ticker":    ticker,
		"timeframe": tf.Label(),
		"rows":      series.Len(),
		"path":      path,
	}).Info("Derived OHLCV artifact saved")
}

func (s *Store) writeBars(ticker contracts.Ticker, m contracts.Market, tf contracts.Timeframe, series contracts.BarSeries) (string, error) {
	dir, err := s.ensureMarketDir(m)
	if err != nil {
		return "", err
	}

	latest, _ := series.Latest()
	id := Identity{
		Ticker:    ticker.Normalized(),
		Kind:      contracts.KindOHLCV,
		Timeframe: tf,
		Timestamp: latest.Date,
		TZ:        m.TZLabel(),
	}
	path := filepath.Join(dir, id.Filename())

	first := series[0]
	meta := s.metadata(ticker, m, tf.Label(), first.Date, latest.Date, series.Len())

	header := []string{"Date", "Open", "High", "Low", "Close", "Volume", "Date_Index", "Time_Index"}
	err = s.writeAtomic(path, meta, header, func(w *csv.Writer) error {
		for _, b := range series {
			row := []string{
				b.Date.Format("2006-01-02"),
				formatFloat(b.Open),
				formatFloat(b.High),
				formatFloat(b.Low),
				formatFloat(b.Close),
				formatFloat(b.Volume),
				b.Date.Format("2006-01-02"),
				b.Date.Format("15:04:05"),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.log.WithFields(map[string]interface{}{
		"ticker":    ticker,
		"market":    m,
		"timeframe": tf.Label(),
		"rows":      series.Len(),
		"path":      path,
	}).Info("OHLCV artifact saved")

	return path, nil
}

// SaveIndicators writes an indicator series for one timeframe and
// returns its path. The metadata timeframe label is "indicators_{tf}".
func (s *Store) SaveIndicators(ticker contracts.Ticker, m contracts.Market, tf contracts.Timeframe, ind *contracts.IndicatorSeries) (string, error) {
	if ind == nil || ind.Len() == 0 {
		return "", fmt.Errorf("%w: no indicator rows to save for %s", contracts.ErrStorage, ticker)
	}

	dir, err := s.ensureMarketDir(m)
	if err != nil {
		return "", err
	}

	latest := ind.Dates[ind.Len()-1]
	id := Identity{
		Ticker:    ticker.Normalized(),
		Kind:      contracts.KindIndicators,
		Timeframe: tf,
		Timestamp: latest,
		TZ:        m.TZLabel(),
	}
	path := filepath.Join(dir, id.Filename())

	meta := s.metadata(ticker, m, "indicators_"+string(tf), ind.Dates[0], latest, ind.Len())

	header := make([]string, 0, len(contracts.IndicatorColumns)+3)
	header = append(header, "Date")
	header = append(header, contracts.IndicatorColumns...)
	header = append(header, "Date_Index", "Time_Index")

	err = s.writeAtomic(path, meta, header, func(w *csv.Writer) error {
		row := make([]string, len(header))
		for i, date := range ind.Dates {
			row[0] = date.Format("2006-01-02")
			for j, col := range contracts.IndicatorColumns {
				v := ind.Values[col][i]
				if math.IsNaN(v) {
					row[j+1] = ""
				} else {
					row[j+1] = formatFloat(v)
				}
			}
			row[len(row)-2] = date.Format("2006-01-02")
			row[len(row)-1] = date.Format("15:04:05")
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.log.WithFields(map[string]interface{}{
		"ticker":    ticker,
		"market":    m,
		"timeframe": tf.Label(),
		"rows":      ind.Len(),
		"path":      path,
	}).Info("Indicator artifact saved")

	return path, nil
}

// ensureMarketDir creates the per-market folder if missing
func (s *Store) ensureMarketDir(m contracts.Market) (string, error) {
	dir := filepath.Join(s.root, m.Folder())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create dir %s: %v", contracts.ErrStorage, dir, err)
	}
	return dir, nil
}

func (s *Store) metadata(ticker contracts.Ticker, m contracts.Market, tfLabel string, start, end time.Time, rows int) []metaKV {
	now := s.now()
	return []metaKV{
		{"ticker", ticker.Normalized()},
		{"market_type", m.String()},
		{"timeframe", tfLabel},
		{"data_start_date", start.Format(metaTimeLayout)},
		{"data_end_date", end.Format(metaTimeLayout)},
		{"latest_data_datetime", end.Format(metaTimeLayout)},
		{"total_rows", strconv.Itoa(rows)},
		{"created_at", now.Format(metaTimeLayout)},
		{"timezone", m.TZLabel()},
		{"current_time", now.In(m.Location()).Format(metaTimeLayout)},
	}
}

// writeAtomic writes preamble + CSV body to a temp file in the target
// directory and renames it into place, so readers never see a partial
// artifact.
func (s *Store) writeAtomic(path string, meta []metaKV, header []string, writeRows func(*csv.Writer) error) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".artifact-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", contracts.ErrStorage, err)
	}
	tmpPath := tmp.Name()

	cleanup := func() {
		tmp.Close()
		os.Remove(tmpPath)
	}

	bw := bufio.NewWriter(tmp)

	if _, err := bw.WriteString("# OHLCV Data Metadata\n"); err != nil {
		cleanup()
		return fmt.Errorf("%w: write preamble: %v", contracts.ErrStorage, err)
	}
	for _, kv := range meta {
		if _, err := fmt.Fprintf(bw, "# %s: %s\n", kv.key, kv.value); err != nil {
			cleanup()
			return fmt.Errorf("%w: write preamble: %v", contracts.ErrStorage, err)
		}
	}
	if _, err := bw.WriteString("# End Metadata\n\n"); err != nil {
		cleanup()
		return fmt.Errorf("%w: write preamble: %v", contracts.ErrStorage, err)
	}

	cw := csv.NewWriter(bw)
	if err := cw.Write(header); err != nil {
		cleanup()
		return fmt.Errorf("%w: write header: %v", contracts.ErrStorage, err)
	}
	if err := writeRows(cw); err != nil {
		cleanup()
		return fmt.Errorf("%w: write rows: %v", contracts.ErrStorage, err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		cleanup()
		return fmt.Errorf("%w: flush csv: %v", contracts.ErrStorage, err)
	}

	if err := bw.Flush(); err != nil {
		cleanup()
		return fmt.Errorf("%w: flush: %v", contracts.ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: close temp file: %v", contracts.ErrStorage, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: rename into place: %v", contracts.ErrStorage, err)
	}

	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
