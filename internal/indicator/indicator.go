// Package indicator computes the fixed technical indicator battery from
// an OHLCV series. All functions are pure; a value whose lookback window
// is not yet filled is NaN, never zero.
package indicator

import (
	"math"
	"time"

	"github.com/wonny/chartinsight/internal/contracts"
)

// Window sizes of the battery
const (
	emaShort   = 5
	emaMid     = 20
	emaLong    = 40
	macdFast   = 12
	macdSlow   = 26
	macdSig    = 9
	rsiWindow  = 14
	stochK     = 14
	stochD     = 3
	bbWindow   = 20
	bbStdDevs  = 2.0
	ichiTenkan = 9
	ichiKijun  = 26
	ichiSenkou = 52
)

// MinRows is the minimum series length worth computing indicators for,
// per timeframe. Below it the long-window columns would be entirely NaN.
func MinRows(tf contracts.Timeframe) int {
	switch tf {
	case contracts.TimeframeWeekly:
		return 20
	case contracts.TimeframeMonthly:
		return 6
	default:
		return 50
	}
}

// Compute calculates every indicator column for the series. The input
// must be sorted ascending with unique dates; it is not modified.
func Compute(bars contracts.BarSeries) *contracts.IndicatorSeries {
	dates := make([]time.Time, bars.Len())
	for i, b := range bars {
		dates[i] = b.Date
	}

	out := contracts.NewIndicatorSeries(dates)
	if bars.IsEmpty() {
		return out
	}

	closes := bars.Closes()
	highs := bars.Highs()
	lows := bars.Lows()
	volumes := bars.Volumes()

	out.Set("Close", append([]float64(nil), closes...))
	out.Set("Change_Percent", changePercent(closes))

	out.Set("EMA5", ema(closes, emaShort))
	out.Set("EMA20", ema(closes, emaMid))
	out.Set("EMA40", ema(closes, emaLong))

	macdLine, signal, histogram := macd(closes)
	out.Set("MACD", macdLine)
	out.Set("MACD_Signal", signal)
	out.Set("MACD_Histogram", histogram)

	out.Set("RSI", rsi(closes, rsiWindow))

	k, d := stochastic(highs, lows, closes)
	out.Set("Stoch_K", k)
	out.Set("Stoch_D", d)

	upper, middle, lower := bollinger(closes)
	out.Set("BB_Upper", upper)
	out.Set("BB_Middle", middle)
	out.Set("BB_Lower", lower)

	out.Set("Ichimoku_Tenkan", midline(highs, lows, ichiTenkan))
	out.Set("Ichimoku_Kijun", midline(highs, lows, ichiKijun))
	out.Set("Ichimoku_Senkou_A", senkouA(highs, lows))
	out.Set("Ichimoku_Senkou_B", midline(highs, lows, ichiSenkou))

	vma5 := sma(volumes, 5)
	vma20 := sma(volumes, 20)
	vma40 := sma(volumes, 40)
	out.Set("Volume_MA5", vma5)
	out.Set("Volume_MA20", vma20)
	out.Set("Volume_MA40", vma40)
	out.Set("Volume_Ratio_5d", volumeRatio(volumes, vma5))
	out.Set("Volume_Ratio_20d", volumeRatio(volumes, vma20))
	out.Set("Volume_Ratio_40d", volumeRatio(volumes, vma40))

	return out
}

// changePercent is the day-over-day close change in percent, rounded to
// two decimals. The first row has no predecessor and reports 0.
func changePercent(closes []float64) []float64 {
	out := nanSlice(len(closes))
	if len(closes) == 0 {
		return out
	}

	out[0] = 0
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1]
		if prev == 0 {
			out[i] = 0
			continue
		}
		out[i] = round2((closes[i] - prev) / prev * 100)
	}
	return out
}

// sma is a simple rolling mean, NaN while the window is unfilled
func sma(vals []float64, window int) []float64 {
	out := nanSlice(len(vals))
	if window <= 0 || len(vals) < window {
		return out
	}

	var sum float64
	for i, v := range vals {
		sum += v
		if i >= window {
			sum -= vals[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// ema is an exponential moving average seeded with the SMA of the first
// full window. Leading NaNs in the input push the seed forward, which
// lets the same routine smooth the MACD line.
func ema(vals []float64, window int) []float64 {
	out := nanSlice(len(vals))
	if window <= 0 {
		return out
	}

	alpha := 2.0 / float64(window+1)

	// find the first index where `window` consecutive finite values end
	run := 0
	seedAt := -1
	for i, v := range vals {
		if math.IsNaN(v) {
			run = 0
			continue
		}
		run++
		if run == window {
			seedAt = i
			break
		}
	}
	if seedAt < 0 {
		return out
	}

	var sum float64
	for i := seedAt - window + 1; i <= seedAt; i++ {
		sum += vals[i]
	}
	out[seedAt] = sum / float64(window)

	for i := seedAt + 1; i < len(vals); i++ {
		if math.IsNaN(vals[i]) {
			out[i] = out[i-1]
			continue
		}
		out[i] = vals[i]*alpha + out[i-1]*(1-alpha)
	}
	return out
}

// macd returns the MACD line (EMA12-EMA26), its EMA9 signal, and the
// histogram (line - signal)
func macd(closes []float64) (line, signal, histogram []float64) {
	fast := ema(closes, macdFast)
	slow := ema(closes, macdSlow)

	line = nanSlice(len(closes))
	for i := range closes {
		if math.IsNaN(fast[i]) || math.IsNaN(slow[i]) {
			continue
		}
		line[i] = fast[i] - slow[i]
	}

	signal = ema(line, macdSig)

	histogram = nanSlice(len(closes))
	for i := range closes {
		if math.IsNaN(line[i]) || math.IsNaN(signal[i]) {
			continue
		}
		histogram[i] = line[i] - signal[i]
	}
	return line, signal, histogram
}

// rsi is Wilder's relative strength index: the first average gain/loss
// is a simple mean, then Wilder smoothing.
func rsi(closes []float64, window int) []float64 {
	out := nanSlice(len(closes))
	if len(closes) <= window {
		return out
	}

	var gainSum, lossSum float64
	for i := 1; i <= window; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gainSum += delta
		} else {
			lossSum -= delta
		}
	}

	avgGain := gainSum / float64(window)
	avgLoss := lossSum / float64(window)
	out[window] = rsiValue(avgGain, avgLoss)

	for i := window + 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}

		avgGain = (avgGain*float64(window-1) + gain) / float64(window)
		avgLoss = (avgLoss*float64(window-1) + loss) / float64(window)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50 // flat series: neither strength nor weakness
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// stochastic returns the %K (14) and %D (3-period SMA of %K) oscillator.
// A zero high-low range leaves the value NaN.
func stochastic(highs, lows, closes []float64) (k, d []float64) {
	n := len(closes)
	k = nanSlice(n)

	for i := stochK - 1; i < n; i++ {
		hi := maxOf(highs[i-stochK+1 : i+1])
		lo := minOf(lows[i-stochK+1 : i+1])
		if hi == lo {
			continue
		}
		k[i] = (closes[i] - lo) / (hi - lo) * 100
	}

	d = nanSlice(n)
	for i := range k {
		if i < stochK-1+stochD-1 {
			continue
		}
		var sum float64
		valid := true
		for j := i - stochD + 1; j <= i; j++ {
			if math.IsNaN(k[j]) {
				valid = false
				break
			}
			sum += k[j]
		}
		if valid {
			d[i] = sum / stochD
		}
	}
	return k, d
}

// bollinger returns the 20-period bands at 2 population standard
// deviations around the SMA
func bollinger(closes []float64) (upper, middle, lower []float64) {
	n := len(closes)
	middle = sma(closes, bbWindow)
	upper = nanSlice(n)
	lower = nanSlice(n)

	for i := bbWindow - 1; i < n; i++ {
		mean := middle[i]
		var varSum float64
		for j := i - bbWindow + 1; j <= i; j++ {
			d := closes[j] - mean
			varSum += d * d
		}
		std := math.Sqrt(varSum / bbWindow)
		upper[i] = mean + bbStdDevs*std
		lower[i] = mean - bbStdDevs*std
	}
	return upper, middle, lower
}

// midline is the Ichimoku building block: (highest high + lowest low)/2
// over the window
func midline(highs, lows []float64, window int) []float64 {
	n := len(highs)
	out := nanSlice(n)

	for i := window - 1; i < n; i++ {
		hi := maxOf(highs[i-window+1 : i+1])
		lo := minOf(lows[i-window+1 : i+1])
		out[i] = (hi + lo) / 2
	}
	return out
}

// senkouA is the mean of the tenkan and kijun lines, unshifted
func senkouA(highs, lows []float64) []float64 {
	tenkan := midline(highs, lows, ichiTenkan)
	kijun := midline(highs, lows, ichiKijun)

	out := nanSlice(len(highs))
	for i := range out {
		if math.IsNaN(tenkan[i]) || math.IsNaN(kijun[i]) {
			continue
		}
		out[i] = (tenkan[i] + kijun[i]) / 2
	}
	return out
}

// volumeRatio is volume over its rolling mean, in percent, rounded to
// two decimals
func volumeRatio(volumes, ma []float64) []float64 {
	out := nanSlice(len(volumes))
	for i := range volumes {
		if math.IsNaN(ma[i]) || ma[i] == 0 {
			continue
		}
		out[i] = round2(volumes[i] / ma[i] * 100)
	}
	return out
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func maxOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
