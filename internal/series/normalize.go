package series

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"StockScope/internal/model"
)

var (
	// ErrAlreadyLocalized is returned when a timezone is attached to a series
	// that already carries one. Silently re-localizing corrupts trading-day
	// boundaries, so it is fatal to the call.
	ErrAlreadyLocalized = errors.New("series already localized")

	// ErrInvalidBar marks a bar whose OHLC or volume values are malformed.
	// Invalid bars are dropped and counted, never silently discarded.
	ErrInvalidBar = errors.New("invalid bar")
)

// Stats reports non-fatal issues encountered while normalizing.
type Stats struct {
	Dropped    int // bars rejected by validation
	Duplicates int // same-day bars overwritten by a later occurrence
}

// Normalizer canonicalizes raw bar series into annotated time series.
type Normalizer struct {
	ExchangeTZ *time.Location
}

// NewNormalizer creates a Normalizer for the given exchange timezone.
func NewNormalizer(exchangeTZ *time.Location) *Normalizer {
	return &Normalizer{ExchangeTZ: exchangeTZ}
}

// Normalize canonicalizes bar dates to calendar days, joins the earnings
// calendar onto the series, and localizes the result to the exchange
// timezone.
//
// Bars with a duplicate day keep the last occurrence (fetch sources overwrite
// same-day bars); malformed bars are dropped. Both are counted in Stats.
// An empty input yields an empty, localized series.
func (n *Normalizer) Normalize(raw *model.RawSeries, earningsDates []time.Time) (*model.TimeSeries, *Stats, error) {
	symbol, err := model.NormalizeSymbol(raw.Symbol)
	if err != nil {
		return nil, nil, err
	}

	earnings := canonicalDaySet(earningsDates)
	stats := &Stats{}

	// Duplicate days keep the last occurrence, so index by day first.
	byDay := make(map[string]model.Bar)
	days := make([]string, 0, len(raw.Bars))
	for _, rb := range raw.Bars {
		if err := validateBar(rb); err != nil {
			stats.Dropped++
			continue
		}
		day := canonicalDay(rb.Timestamp, raw.Location)
		key := dayKey(day)
		if _, seen := byDay[key]; seen {
			stats.Duplicates++
		} else {
			days = append(days, key)
		}
		byDay[key] = model.Bar{
			Date:              day,
			Open:              rb.Open,
			High:              rb.High,
			Low:               rb.Low,
			Close:             rb.Close,
			Volume:            rb.Volume,
			HasEarningsReport: earnings[key],
		}
	}
	sort.Strings(days)

	bars := make([]model.Bar, 0, len(days))
	for _, key := range days {
		bars = append(bars, byDay[key])
	}

	ts := &model.TimeSeries{
		Symbol:   symbol,
		Period:   raw.Period,
		Interval: raw.Interval,
		Bars:     bars,
	}

	if raw.Location != nil {
		// Already timezone-aware: keep the source zone, do not re-localize.
		ts.Location = raw.Location
		return ts, stats, nil
	}
	localized, err := Localize(ts, n.ExchangeTZ)
	if err != nil {
		return nil, nil, err
	}
	return localized, stats, nil
}

// Localize attaches loc to a series whose bars carry no timezone yet,
// returning a new series with every bar date at midnight in loc. Attaching a
// timezone twice fails with ErrAlreadyLocalized.
func Localize(ts *model.TimeSeries, loc *time.Location) (*model.TimeSeries, error) {
	if ts.Location != nil {
		return nil, fmt.Errorf("%w: series %s is in %s", ErrAlreadyLocalized, ts.Symbol, ts.Location)
	}
	if loc == nil {
		return nil, fmt.Errorf("localize %s: nil location", ts.Symbol)
	}

	bars := make([]model.Bar, len(ts.Bars))
	for i, b := range ts.Bars {
		y, m, d := b.Date.Date()
		bars[i] = b
		bars[i].Date = time.Date(y, m, d, 0, 0, 0, 0, loc)
	}
	return &model.TimeSeries{
		Symbol:   ts.Symbol,
		Period:   ts.Period,
		Interval: ts.Interval,
		Location: loc,
		Bars:     bars,
	}, nil
}

// canonicalDay truncates a timestamp to its calendar day. An aware timestamp
// is read in loc; a naive one keeps its wall-clock fields.
func canonicalDay(t time.Time, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// canonicalDaySet builds the day-granularity membership set for the earnings
// join. Earnings timestamps are not guaranteed sorted or unique, so this is a
// set, not a merge.
func canonicalDaySet(dates []time.Time) map[string]bool {
	set := make(map[string]bool, len(dates))
	for _, t := range dates {
		set[dayKey(t)] = true
	}
	return set
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func validateBar(rb model.RawBar) error {
	if rb.Open < 0 || rb.High < 0 || rb.Low < 0 || rb.Close < 0 {
		return fmt.Errorf("%w: negative price at %s", ErrInvalidBar, rb.Timestamp)
	}
	if rb.Volume < 0 {
		return fmt.Errorf("%w: negative volume at %s", ErrInvalidBar, rb.Timestamp)
	}
	if rb.Low > rb.High {
		return fmt.Errorf("%w: low %.4f above high %.4f at %s", ErrInvalidBar, rb.Low, rb.High, rb.Timestamp)
	}
	if rb.Open < rb.Low || rb.Open > rb.High || rb.Close < rb.Low || rb.Close > rb.High {
		return fmt.Errorf("%w: open/close outside low-high range at %s", ErrInvalidBar, rb.Timestamp)
	}
	return nil
}
