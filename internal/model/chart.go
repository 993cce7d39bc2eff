package model

import "time"

// Candle is one renderable candlestick with precomputed hover text.
// PercentChangeUndefined is set instead of emitting Inf/NaN when Open is zero.
type Candle struct {
	Date                   time.Time `json:"date"`
	Open                   float64   `json:"open"`
	High                   float64   `json:"high"`
	Low                    float64   `json:"low"`
	Close                  float64   `json:"close"`
	PercentChange          float64   `json:"percentChange"`
	PercentChangeUndefined bool      `json:"percentChangeUndefined,omitempty"`
	HoverText              string    `json:"hoverText"`
}

// EarningsMarker is a marker point placed at the close of an earnings-day bar.
type EarningsMarker struct {
	Date      time.Time `json:"date"`
	Close     float64   `json:"close"`
	HoverText string    `json:"hoverText"`
}

// ChartSpec describes a candlestick chart with earnings-day markers. It is a
// pure data structure with no rendering-library dependency; any chart
// frontend can consume its JSON form.
type ChartSpec struct {
	Symbol          string           `json:"symbol"`
	Title           string           `json:"title"`
	XAxisLabel      string           `json:"xAxisLabel"`
	YAxisLabel      string           `json:"yAxisLabel"`
	Candles         []Candle         `json:"candles"`
	EarningsMarkers []EarningsMarker `json:"earningsMarkers"`
}
