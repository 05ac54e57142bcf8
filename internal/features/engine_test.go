package features

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/wonny/tradewind/internal/contracts"
	"github.com/wonny/tradewind/pkg/config"
	"github.com/wonny/tradewind/pkg/logger"
)

func newTestLogger() *logger.Logger {
	cfg := &config.Config{Env: "test", LogLevel: "error", LogFormat: "json"}
	return logger.New(cfg)
}

// makeSeries builds a wiggly synthetic series so every indicator has
// both gains and losses to work with.
func makeSeries(symbol string, n int) *contracts.PriceSeries {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	candles := make([]contracts.Candle, n)
	for i := 0; i < n; i++ {
		price := 100.0 + 0.5*float64(i) + 3.0*math.Sin(float64(i))
		candles[i] = contracts.Candle{
			Timestamp: base.AddDate(0, 0, i),
			Open:      price - 0.5,
			High:      price + 1,
			Low:       price - 1,
			Close:     price,
			Volume:    1000 + 50*float64(i%7),
		}
	}
	return &contracts.PriceSeries{Symbol: symbol, Candles: candles}
}

func TestComputeEmptySeries(t *testing.T) {
	engine := NewEngine(newTestLogger())

	tests := []struct {
		name   string
		series *contracts.PriceSeries
	}{
		{"nil series", nil},
		{"no candles", &contracts.PriceSeries{Symbol: "AAPL"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := engine.Compute(tt.series); err == nil {
				t.Error("Expected error for empty series")
			}
		})
	}
}

func TestComputeCleaning(t *testing.T) {
	engine := NewEngine(newTestLogger())
	series := makeSeries("AAPL", 60)

	rows, err := engine.Compute(series)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	// Warmup consumes at most the RSI period plus the return lags;
	// everything after that should survive cleaning.
	if len(rows) < 30 {
		t.Errorf("Expected at least 30 usable rows from 60 bars, got %d", len(rows))
	}

	for i, row := range rows {
		for j, v := range row.Vector() {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Errorf("Row %d column %s is not finite: %v", i, Columns[j], v)
			}
		}
		if math.IsNaN(row.DailyReturn) {
			t.Errorf("Row %d target is NaN", i)
		}
		if row.RSI < 0 || row.RSI > 1 {
			t.Errorf("Row %d RSI out of [0,1]: %v", i, row.RSI)
		}
		if i > 0 && !rows[i].Timestamp.After(rows[i-1].Timestamp) {
			t.Errorf("Row %d timestamp not increasing", i)
		}
	}
}

func TestComputeDeterminism(t *testing.T) {
	engine := NewEngine(newTestLogger())
	series := makeSeries("AAPL", 60)

	first, err := engine.Compute(series)
	if err != nil {
		t.Fatalf("First compute failed: %v", err)
	}
	second, err := engine.Compute(series)
	if err != nil {
		t.Fatalf("Second compute failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("Identical series produced different feature tables")
	}
}

func TestVectorMatchesColumns(t *testing.T) {
	row := Row{
		ReturnLag1: 1, ReturnLag2: 2, ReturnLag3: 3, ReturnLag4: 4,
		ROC5: 5, MeanReturn5: 6, Volatility5: 7, Volatility10: 8,
		RSI: 9, OBV: 10, MACD: 11, MACDSignal: 12,
	}

	vec := row.Vector()
	if len(vec) != len(Columns) {
		t.Fatalf("Vector length %d != column count %d", len(vec), len(Columns))
	}
	for i, v := range vec {
		if v != float64(i+1) {
			t.Errorf("Column %s at position %d has value %v, want %v", Columns[i], i, v, float64(i+1))
		}
	}
}

func TestLatest(t *testing.T) {
	if _, ok := Latest(nil); ok {
		t.Error("Expected ok=false for empty rows")
	}

	rows := []Row{
		{DailyReturn: 0.01},
		{DailyReturn: 0.02},
	}
	last, ok := Latest(rows)
	if !ok {
		t.Fatal("Expected ok=true")
	}
	if last.DailyReturn != 0.02 {
		t.Errorf("Latest returned %v, want the newest row", last.DailyReturn)
	}
}

func TestPctChange(t *testing.T) {
	out := pctChange([]float64{100, 110, 121}, 1)

	if !math.IsNaN(out[0]) {
		t.Errorf("Expected NaN head, got %v", out[0])
	}
	if math.Abs(out[1]-0.1) > 1e-12 {
		t.Errorf("out[1] = %v, want 0.1", out[1])
	}
	if math.Abs(out[2]-0.1) > 1e-12 {
		t.Errorf("out[2] = %v, want 0.1", out[2])
	}
}

func TestRollingStdSample(t *testing.T) {
	// Sample std (ddof=1) of {2, 4, 6} is 2
	out := rollingStd([]float64{2, 4, 6}, 3)

	if !math.IsNaN(out[0]) || !math.IsNaN(out[1]) {
		t.Error("Expected NaN for incomplete windows")
	}
	if math.Abs(out[2]-2.0) > 1e-12 {
		t.Errorf("Sample std = %v, want 2", out[2])
	}
}

func TestRSIBounds(t *testing.T) {
	series := makeSeries("AAPL", 60)
	rsi := computeRSI(series.Closes(), 14)

	for i := 14; i < len(rsi); i++ {
		if math.IsNaN(rsi[i]) {
			continue
		}
		if rsi[i] < 0 || rsi[i] > 100 {
			t.Errorf("RSI[%d] = %v, out of [0,100]", i, rsi[i])
		}
	}
}

func TestMACDSignalLagsMACD(t *testing.T) {
	closes := makeSeries("AAPL", 60).Closes()
	macd, signal := computeMACD(closes, 12, 26, 9)

	if len(macd) != len(closes) || len(signal) != len(closes) {
		t.Fatal("MACD output length mismatch")
	}

	// The signal line is an EMA of the MACD line, so it starts equal
	// and thereafter smooths toward it.
	if macd[0] != signal[0] {
		t.Errorf("Signal seed %v != MACD seed %v", signal[0], macd[0])
	}

	var diffs float64
	for i := range macd {
		diffs += math.Abs(macd[i] - signal[i])
	}
	if diffs == 0 {
		t.Error("Signal line identical to MACD line, smoothing had no effect")
	}
}

func TestEMASeed(t *testing.T) {
	out := ema([]float64{10, 20}, 9)
	if out[0] != 10 {
		t.Errorf("EMA seed = %v, want first value", out[0])
	}
	want := 0.2*20 + 0.8*10
	if math.Abs(out[1]-want) > 1e-12 {
		t.Errorf("EMA[1] = %v, want %v", out[1], want)
	}
}
