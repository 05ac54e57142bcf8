package contracts

import "time"

// Candle represents one OHLCV bar for an instrument
// ⭐ SSOT: 시세 데이터 전달 타입은 여기서만 정의
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// PriceSeries is an ordered OHLCV history for one instrument.
// Timestamps are strictly increasing; any row may have been withdrawn
// during upstream cleaning, so consumers must not assume fixed spacing.
type PriceSeries struct {
	Symbol  string   `json:"symbol"`
	Candles []Candle `json:"candles"`
}

// Len returns the number of bars in the series
func (s *PriceSeries) Len() int {
	return len(s.Candles)
}

// IsEmpty checks whether the series carries any usable bars
func (s *PriceSeries) IsEmpty() bool {
	return len(s.Candles) == 0
}

// Closes returns the close column of the series
func (s *PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		closes[i] = c.Close
	}
	return closes
}

// Volumes returns the volume column of the series
func (s *PriceSeries) Volumes() []float64 {
	volumes := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		volumes[i] = c.Volume
	}
	return volumes
}
