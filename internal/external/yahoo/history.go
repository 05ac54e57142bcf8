package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/wonny/tradewind/internal/contracts"
)

// chartResponse mirrors the Yahoo v8 chart payload. Price columns may
// contain nulls on halted or partial days, hence the pointer slices.
type chartResponse struct {
	Chart struct {
		Result []struct {
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

// FetchHistory fetches the daily OHLCV history for a symbol. An empty
// history is reported as an error, never as an empty series.
// ⭐ SSOT: 시세 히스토리 조회는 이 함수에서만
func (c *Client) FetchHistory(ctx context.Context, symbol string, from, to time.Time) (*contracts.PriceSeries, error) {
	fullURL := fmt.Sprintf(
		"%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d&events=div%%2Csplit",
		c.chartBaseURL, symbol, from.Unix(), to.Unix(),
	)

	body, err := c.fetch(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("fetch history for %s: %w", symbol, err)
	}

	series, err := parseChartResponse(symbol, body)
	if err != nil {
		return nil, fmt.Errorf("parse history for %s: %w", symbol, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"bars":   series.Len(),
	}).Debug("Fetched price history")
	return series, nil
}

// parseChartResponse converts the chart payload to a PriceSeries,
// dropping bars with a missing close
func parseChartResponse(symbol string, body []byte) (*contracts.PriceSeries, error) {
	var resp chartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode chart response: %w", err)
	}

	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("chart API error: %s - %s",
			resp.Chart.Error.Code, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("no chart data for %s", symbol)
	}

	result := resp.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no quote data for %s", symbol)
	}
	quote := result.Indicators.Quote[0]

	series := &contracts.PriceSeries{Symbol: symbol}
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue
		}

		candle := contracts.Candle{
			Timestamp: time.Unix(ts, 0).UTC(),
			Close:     *quote.Close[i],
		}
		if i < len(quote.Open) && quote.Open[i] != nil {
			candle.Open = *quote.Open[i]
		}
		if i < len(quote.High) && quote.High[i] != nil {
			candle.High = *quote.High[i]
		}
		if i < len(quote.Low) && quote.Low[i] != nil {
			candle.Low = *quote.Low[i]
		}
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			candle.Volume = *quote.Volume[i]
		}
		series.Candles = append(series.Candles, candle)
	}

	if series.IsEmpty() {
		return nil, fmt.Errorf("empty price history for %s", symbol)
	}

	return series, nil
}
