package features

import (
	"fmt"
	"math"
	"time"

	"github.com/wonny/tradewind/internal/contracts"
	"github.com/wonny/tradewind/pkg/logger"
)

// Columns is the fixed feature column order consumed by the quantitative
// model. Training and prediction must both go through this ordering.
// ⭐ SSOT: 피처 컬럼 순서는 여기서만 정의
var Columns = []string{
	"Return_Lag1",
	"Return_Lag2",
	"Return_Lag3",
	"Return_Lag4",
	"ROC_5",
	"MA_Return_5",
	"Volatility_5",
	"Volatility_10",
	"RSI",
	"OBV",
	"MACD",
	"MACD_Signal",
}

// Row is one cleaned feature vector plus its training target.
// All twelve indicator values are finite; rows that failed that
// invariant were dropped during cleaning.
type Row struct {
	Timestamp   time.Time
	DailyReturn float64 // target: the instrument's daily return at this bar

	ReturnLag1   float64
	ReturnLag2   float64
	ReturnLag3   float64
	ReturnLag4   float64
	ROC5         float64
	MeanReturn5  float64
	Volatility5  float64
	Volatility10 float64
	RSI          float64
	OBV          float64
	MACD         float64
	MACDSignal   float64
}

// Vector returns the indicator values in Columns order
func (r *Row) Vector() []float64 {
	return []float64{
		r.ReturnLag1, r.ReturnLag2, r.ReturnLag3, r.ReturnLag4,
		r.ROC5, r.MeanReturn5, r.Volatility5, r.Volatility10,
		r.RSI, r.OBV, r.MACD, r.MACDSignal,
	}
}

// Engine turns raw OHLCV history into cleaned feature rows
type Engine struct {
	logger *logger.Logger
}

// NewEngine creates a new feature engine
func NewEngine(log *logger.Logger) *Engine {
	return &Engine{logger: log}
}

// Compute derives the full feature table for a price series and drops
// every row that carries a non-finite value in any required column.
// The computation is pure arithmetic over the input: identical series
// produce bit-identical output.
func (e *Engine) Compute(series *contracts.PriceSeries) ([]Row, error) {
	if series == nil || series.IsEmpty() {
		return nil, fmt.Errorf("compute features for %q: empty price series", seriesSymbol(series))
	}

	closes := series.Closes()
	volumes := series.Volumes()
	n := len(closes)

	daily := pctChange(closes, 1)
	roc5 := pctChange(closes, 5)
	meanRet5 := rollingMean(daily, 5)
	vol5 := rollingStd(daily, 5)
	vol10 := fillNaN(rollingStd(daily, 10), 0)
	rsi := computeRSI(closes, 14)
	obv := pctChange(computeOBV(closes, volumes), 1)
	macd, signal := computeMACD(closes, 12, 26, 9)

	lags := make([][]float64, 4)
	for k := 1; k <= 4; k++ {
		lags[k-1] = shift(daily, k)
	}

	rows := make([]Row, 0, n)
	for i := 0; i < n; i++ {
		row := Row{
			Timestamp:    series.Candles[i].Timestamp,
			DailyReturn:  daily[i],
			ReturnLag1:   lags[0][i],
			ReturnLag2:   lags[1][i],
			ReturnLag3:   lags[2][i],
			ReturnLag4:   lags[3][i],
			ROC5:         roc5[i],
			MeanReturn5:  meanRet5[i],
			Volatility5:  vol5[i],
			Volatility10: vol10[i],
			RSI:          rsi[i] / 100.0, // scaled to [0,1]
			OBV:          obv[i],
			MACD:         macd[i],
			MACDSignal:   signal[i],
		}
		if rowUsable(&row) {
			rows = append(rows, row)
		}
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("compute features for %q: no usable rows after cleaning (%d input bars)",
			series.Symbol, n)
	}

	e.logger.WithFields(map[string]interface{}{
		"symbol":    series.Symbol,
		"input":     n,
		"usable":    len(rows),
		"dropped":   n - len(rows),
	}).Debug("Computed feature table")

	return rows, nil
}

// Latest returns the newest cleaned row, the one exposed for live prediction
func Latest(rows []Row) (Row, bool) {
	if len(rows) == 0 {
		return Row{}, false
	}
	return rows[len(rows)-1], true
}

// rowUsable checks the finite-value invariant on target and all columns.
// ±Inf counts as missing, same as NaN.
func rowUsable(r *Row) bool {
	if !isFinite(r.DailyReturn) {
		return false
	}
	for _, v := range r.Vector() {
		if !isFinite(v) {
			return false
		}
	}
	return true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func seriesSymbol(s *contracts.PriceSeries) string {
	if s == nil {
		return ""
	}
	return s.Symbol
}

// pctChange computes x[i]/x[i-period] - 1, NaN where undefined.
// Division by zero yields ±Inf and is caught by row cleaning.
func pctChange(xs []float64, period int) []float64 {
	out := make([]float64, len(xs))
	for i := range xs {
		if i < period {
			out[i] = math.NaN()
			continue
		}
		out[i] = xs[i]/xs[i-period] - 1
	}
	return out
}

// shift moves the series forward by k positions, NaN-padding the head
func shift(xs []float64, k int) []float64 {
	out := make([]float64, len(xs))
	for i := range xs {
		if i < k {
			out[i] = math.NaN()
			continue
		}
		out[i] = xs[i-k]
	}
	return out
}

// rollingMean computes the trailing mean over a full window; a window
// containing NaN, or an incomplete window, yields NaN.
func rollingMean(xs []float64, window int) []float64 {
	out := make([]float64, len(xs))
	for i := range xs {
		if i < window-1 {
			out[i] = math.NaN()
			continue
		}
		sum := 0.0
		for j := i - window + 1; j <= i; j++ {
			sum += xs[j]
		}
		out[i] = sum / float64(window)
	}
	return out
}

// rollingStd computes the trailing sample standard deviation (ddof=1)
func rollingStd(xs []float64, window int) []float64 {
	out := make([]float64, len(xs))
	for i := range xs {
		if i < window-1 {
			out[i] = math.NaN()
			continue
		}
		mean := 0.0
		for j := i - window + 1; j <= i; j++ {
			mean += xs[j]
		}
		mean /= float64(window)

		ss := 0.0
		for j := i - window + 1; j <= i; j++ {
			d := xs[j] - mean
			ss += d * d
		}
		out[i] = math.Sqrt(ss / float64(window-1))
	}
	return out
}

// fillNaN replaces NaN entries with the given value
func fillNaN(xs []float64, v float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		if math.IsNaN(x) {
			out[i] = v
		} else {
			out[i] = x
		}
	}
	return out
}

// computeRSI derives the relative strength index from rolling mean
// gain/loss over the period. A loss-free window drives RS to +Inf and
// the RSI to its 100 ceiling; a flat window (0/0) stays NaN and the row
// is dropped downstream.
func computeRSI(closes []float64, period int) []float64 {
	n := len(closes)
	gains := make([]float64, n)
	losses := make([]float64, n)
	gains[0] = math.NaN()
	losses[0] = math.NaN()
	for i := 1; i < n; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i] = delta
			losses[i] = 0
		} else {
			gains[i] = 0
			losses[i] = -delta
		}
	}

	avgGain := rollingMean(gains, period)
	avgLoss := rollingMean(losses, period)

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		rs := avgGain[i] / avgLoss[i]
		out[i] = 100 - 100/(1+rs)
	}
	return out
}

// computeOBV accumulates signed volume: add on up-closes, subtract on
// down-closes, carry forward when unchanged. Starts at zero.
func computeOBV(closes, volumes []float64) []float64 {
	n := len(closes)
	out := make([]float64, n)
	for i := 1; i < n; i++ {
		switch {
		case closes[i] > closes[i-1]:
			out[i] = out[i-1] + volumes[i]
		case closes[i] < closes[i-1]:
			out[i] = out[i-1] - volumes[i]
		default:
			out[i] = out[i-1]
		}
	}
	return out
}

// computeMACD returns the MACD line (short EMA - long EMA) and its EMA
// signal line. EMAs use smoothing 2/(span+1), seeded with the first
// value, no bias correction.
func computeMACD(closes []float64, short, long, signalSpan int) ([]float64, []float64) {
	shortEMA := ema(closes, short)
	longEMA := ema(closes, long)

	macd := make([]float64, len(closes))
	for i := range closes {
		macd[i] = shortEMA[i] - longEMA[i]
	}
	return macd, ema(macd, signalSpan)
}

func ema(xs []float64, span int) []float64 {
	out := make([]float64, len(xs))
	if len(xs) == 0 {
		return out
	}
	alpha := 2.0 / float64(span+1)
	out[0] = xs[0]
	for i := 1; i < len(xs); i++ {
		out[i] = alpha*xs[i] + (1-alpha)*out[i-1]
	}
	return out
}
