// Package codec serializes annotated time series to a flat CSV snapshot and
// reconstructs them losslessly. Dates are written as absolute UTC instants so
// daylight-saving transitions in the exchange timezone cannot shift the
// recovered calendar day.
package codec

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"StockScope/internal/model"
)

var (
	// ErrCorruptRecord marks an unparseable row. Decoding aborts for the
	// whole file: a partial series is worse than a hard failure.
	ErrCorruptRecord = errors.New("corrupt record")

	// ErrStorageUnavailable marks a missing or unreadable snapshot file.
	// Callers may treat it as a cache miss.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

var header = []string{"Date", "Open", "High", "Low", "Close", "Volume", "HasEarningsReport"}

// Encode writes the series as CSV: one header line, one record per bar in
// ascending date order, dates in RFC3339 with explicit UTC offset.
func Encode(w io.Writer, ts *model.TimeSeries) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, b := range ts.Bars {
		row := []string{
			b.Date.UTC().Format(time.RFC3339),
			strconv.FormatFloat(b.Open, 'f', -1, 64),
			strconv.FormatFloat(b.High, 'f', -1, 64),
			strconv.FormatFloat(b.Low, 'f', -1, 64),
			strconv.FormatFloat(b.Close, 'f', -1, 64),
			strconv.FormatInt(b.Volume, 10),
			strconv.FormatBool(b.HasEarningsReport),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write bar %s: %w", b.Date, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Decode reads a CSV snapshot and reconstructs the series in the given
// exchange timezone. Any malformed row fails the whole decode with
// ErrCorruptRecord.
func Decode(r io.Reader, symbol, period, interval string, loc *time.Location) (*model.TimeSeries, error) {
	symbol, err := model.NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, fmt.Errorf("decode %s: nil location", symbol)
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)

	head, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: missing header: %v", ErrCorruptRecord, err)
	}
	for i, col := range header {
		if head[i] != col {
			return nil, fmt.Errorf("%w: header column %d is %q, want %q", ErrCorruptRecord, i, head[i], col)
		}
	}

	ts := &model.TimeSeries{Symbol: symbol, Period: period, Interval: interval, Location: loc}
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrCorruptRecord, row, err)
		}
		bar, err := parseBar(rec, loc)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrCorruptRecord, row, err)
		}
		ts.Bars = append(ts.Bars, bar)
	}
	return ts, nil
}

func parseBar(rec []string, loc *time.Location) (model.Bar, error) {
	var bar model.Bar

	instant, err := time.Parse(time.RFC3339, rec[0])
	if err != nil {
		return bar, fmt.Errorf("date %q: %v", rec[0], err)
	}
	bar.Date = instant.In(loc)

	prices := [4]*float64{&bar.Open, &bar.High, &bar.Low, &bar.Close}
	for i, dst := range prices {
		v, err := strconv.ParseFloat(rec[i+1], 64)
		if err != nil {
			return bar, fmt.Errorf("%s %q: %v", header[i+1], rec[i+1], err)
		}
		*dst = v
	}

	bar.Volume, err = strconv.ParseInt(rec[5], 10, 64)
	if err != nil {
		return bar, fmt.Errorf("volume %q: %v", rec[5], err)
	}
	bar.HasEarningsReport, err = strconv.ParseBool(rec[6])
	if err != nil {
		return bar, fmt.Errorf("hasEarningsReport %q: %v", rec[6], err)
	}
	return bar, nil
}

// Save writes a series snapshot to path, creating parent directories.
func Save(path string, ts *model.TimeSeries) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	if err := Encode(f, ts); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", ts.Symbol, err)
	}
	return f.Close()
}

// Load reads a series snapshot from path. A missing or unreadable file is
// reported as ErrStorageUnavailable so callers can fall back to a fresh
// fetch.
func Load(path, symbol, period, interval string, loc *time.Location) (*model.TimeSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	defer f.Close()
	return Decode(f, symbol, period, interval, loc)
}
