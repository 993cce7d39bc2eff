package model

import (
	"fmt"
	"strings"
	"time"
)

// RawBar is one trading interval as delivered by a data source. Its
// timestamp may carry an arbitrary time-of-day; how the timestamp is to be
// read is declared by the RawSeries that holds it.
type RawBar struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

// RawSeries is an unnormalized bar sequence for one symbol.
//
// Location declares how the bar timestamps are to be interpreted: nil means
// they are wall-clock readings with no timezone attached, non-nil means they
// are absolute instants to be read in that location.
type RawSeries struct {
	Symbol   string
	Period   string
	Interval string
	Location *time.Location
	Bars     []RawBar
}

// Bar is one normalized trading interval. Date is the canonical calendar day
// (midnight in the series' exchange timezone once localized).
type Bar struct {
	Date              time.Time
	Open              float64
	High              float64
	Low               float64
	Close             float64
	Volume            int64
	HasEarningsReport bool
}

// TimeSeries is an annotated, date-sorted bar sequence for one symbol.
// It is immutable after construction: transformations return a new series.
//
// Location is nil until the series has been localized to its exchange
// timezone.
type TimeSeries struct {
	Symbol   string
	Period   string
	Interval string
	Location *time.Location
	Bars     []Bar
}

// Len returns the number of bars.
func (ts *TimeSeries) Len() int { return len(ts.Bars) }

// Empty reports whether the series has no bars.
func (ts *TimeSeries) Empty() bool { return len(ts.Bars) == 0 }

// Metadata is a point-in-time company snapshot for a symbol.
type Metadata struct {
	Symbol      string
	CompanyName string
	MarketCap   int64
	Sector      string
	Industry    string
	FetchedAt   time.Time
}

// NormalizeSymbol trims and uppercases a ticker symbol.
func NormalizeSymbol(symbol string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" {
		return "", fmt.Errorf("empty symbol")
	}
	return s, nil
}
