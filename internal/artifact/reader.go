package artifact

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/chartinsight/internal/contracts"
)

// ReadBars parses an OHLCV artifact back into a BarSeries. The metadata
// preamble is skipped; malformed data rows are skipped rather than
// failing the whole read. A missing file returns contracts.ErrNotFound.
func ReadBars(path string) (contracts.BarSeries, error) {
	rows, header, err := readBody(path)
	if err != nil {
		return nil, err
	}

	col := columnIndex(header)
	required := []string{"Date", "Open", "High", "Low", "Close", "Volume"}
	for _, name := range required {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("%w: %s missing column %s", contracts.ErrStorage, path, name)
		}
	}

	series := make(contracts.BarSeries, 0, len(rows))
	for _, row := range rows {
		date, err := parseDate(row[col["Date"]])
		if err != nil {
			continue
		}

		bar := contracts.Bar{Date: date}
		ok := true
		for name, dst := range map[string]*float64{
			"Open":   &bar.Open,
			"High":   &bar.High,
			"Low":    &bar.Low,
			"Close":  &bar.Close,
			"Volume": &bar.Volume,
		} {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[col[name]]), 64)
			if err != nil {
				ok = false
				break
			}
			*dst = v
		}
		if !ok {
			continue
		}

		series = append(series, bar)
	}

	series.Sort()
	return series, nil
}

// ReadIndicators parses an indicator artifact. Empty cells become NaN.
func ReadIndicators(path string) (*contracts.IndicatorSeries, error) {
	rows, header, err := readBody(path)
	if err != nil {
		return nil, err
	}

	col := columnIndex(header)
	if _, ok := col["Date"]; !ok {
		return nil, fmt.Errorf("%w: %s missing column Date", contracts.ErrStorage, path)
	}

	var dates []time.Time
	var kept [][]string
	for _, row := range rows {
		date, err := parseDate(row[col["Date"]])
		if err != nil {
			continue
		}
		dates = append(dates, date)
		kept = append(kept, row)
	}

	series := contracts.NewIndicatorSeries(dates)
	for _, name := range contracts.IndicatorColumns {
		idx, ok := col[name]
		if !ok {
			continue
		}
		vals := make([]float64, len(kept))
		for i, row := range kept {
			cell := strings.TrimSpace(row[idx])
			if cell == "" {
				vals[i] = math.NaN()
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				vals[i] = math.NaN()
				continue
			}
			vals[i] = v
		}
		series.Set(name, vals)
	}

	return series, nil
}

// ReadMetadata returns the preamble key/value pairs of an artifact
func ReadMetadata(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", contracts.ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: read %s: %v", contracts.ErrStorage, path, err)
	}

	meta := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "# End Metadata" {
			break
		}
		if !strings.HasPrefix(line, "# ") {
			continue
		}
		body := strings.TrimPrefix(line, "# ")
		key, value, found := strings.Cut(body, ": ")
		if !found {
			continue
		}
		meta[key] = value
	}

	return meta, nil
}

// readBody skips the metadata preamble and returns the CSV header and rows.
// Rows with a wrong field count are dropped.
func readBody(path string) (rows [][]string, header []string, err error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", contracts.ErrNotFound, path)
		}
		return nil, nil, fmt.Errorf("%w: open %s: %v", contracts.ErrStorage, path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read %s: %v", contracts.ErrStorage, path, err)
	}

	lines := strings.Split(string(data), "\n")

	// Header line: the first "Date,..." line after the preamble. Files
	// written before the preamble existed have it as the first line.
	headerIdx := -1
	for i, line := range lines {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "Date") && strings.Contains(stripped, ",") {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, nil, fmt.Errorf("%w: %s has no csv header", contracts.ErrStorage, path)
	}

	reader := csv.NewReader(strings.NewReader(strings.Join(lines[headerIdx:], "\n")))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: parse %s: %v", contracts.ErrStorage, path, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%w: %s is empty", contracts.ErrStorage, path)
	}

	header = records[0]
	for _, rec := range records[1:] {
		if len(rec) != len(header) {
			continue
		}
		rows = append(rows, rec)
	}

	return rows, header, nil
}

func columnIndex(header []string) map[string]int {
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	return col
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", s)
}
