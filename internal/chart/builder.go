// Package chart turns an annotated time series into a rendering-library-
// agnostic candlestick description with earnings-day markers.
package chart

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"StockScope/internal/model"
)

// ErrTimezoneMismatch is returned when a timezone-aware range bound is
// compared against a series that carries no timezone. Coercing silently would
// shift trading-day boundaries, so the call fails instead.
var ErrTimezoneMismatch = errors.New("timezone mismatch")

// Bound is an inclusive range endpoint for date filtering. A Bound without a
// Location is interpreted in the series' exchange timezone.
type Bound struct {
	Time     time.Time
	Location *time.Location
}

// ParseBound parses a bare calendar date ("2006-01-02") into a naive Bound.
func ParseBound(s string) (Bound, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Bound{}, fmt.Errorf("parse bound %q: %w", s, err)
	}
	return Bound{Time: t}, nil
}

// At wraps an absolute instant into an aware Bound.
func At(t time.Time) Bound {
	return Bound{Time: t, Location: t.Location()}
}

// Build filters the series by the optional inclusive bounds and emits a
// ChartSpec. An empty filtered range is a valid, empty spec.
func Build(ts *model.TimeSeries, start, end *Bound) (*model.ChartSpec, error) {
	startAt, err := resolveBound(ts, start)
	if err != nil {
		return nil, err
	}
	endAt, err := resolveBound(ts, end)
	if err != nil {
		return nil, err
	}

	spec := &model.ChartSpec{
		Symbol:          ts.Symbol,
		Title:           "Candlestick Chart with Earnings Report Days",
		XAxisLabel:      "Date",
		YAxisLabel:      "Price",
		Candles:         []model.Candle{},
		EarningsMarkers: []model.EarningsMarker{},
	}

	for _, b := range ts.Bars {
		if startAt != nil && b.Date.Before(*startAt) {
			continue
		}
		if endAt != nil && b.Date.After(*endAt) {
			continue
		}
		spec.Candles = append(spec.Candles, candle(b))
		if b.HasEarningsReport {
			spec.EarningsMarkers = append(spec.EarningsMarkers, model.EarningsMarker{
				Date:      b.Date,
				Close:     b.Close,
				HoverText: fmt.Sprintf("Earnings Report Day<br>Close: %s", formatPrice(b.Close)),
			})
		}
	}
	return spec, nil
}

// resolveBound canonicalizes a bound to the series' timezone. A naive bound
// against a localized series is attached to the series' zone; an aware bound
// against a naive series cannot be compared and fails.
func resolveBound(ts *model.TimeSeries, b *Bound) (*time.Time, error) {
	if b == nil {
		return nil, nil
	}
	if ts.Location == nil {
		if b.Location != nil {
			return nil, fmt.Errorf("%w: aware bound %s against naive series %s", ErrTimezoneMismatch, b.Time, ts.Symbol)
		}
		t := b.Time
		return &t, nil
	}
	if b.Location == nil {
		y, m, d := b.Time.Date()
		t := time.Date(y, m, d, b.Time.Hour(), b.Time.Minute(), b.Time.Second(), b.Time.Nanosecond(), ts.Location)
		return &t, nil
	}
	t := b.Time.In(ts.Location)
	return &t, nil
}

func candle(b model.Bar) model.Candle {
	c := model.Candle{
		Date:  b.Date,
		Open:  b.Open,
		High:  b.High,
		Low:   b.Low,
		Close: b.Close,
	}
	pct := "n/a"
	if b.Open == 0 {
		c.PercentChangeUndefined = true
	} else {
		c.PercentChange = (b.Close - b.Open) / b.Open * 100
		pct = fmt.Sprintf("%.2f%%", c.PercentChange)
	}
	c.HoverText = fmt.Sprintf("Open: %s<br>Close: %s<br>Percent Change: %s<br>Date: %s",
		formatPrice(b.Open), formatPrice(b.Close), pct, b.Date.Format("2006-01-02"))
	return c
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
