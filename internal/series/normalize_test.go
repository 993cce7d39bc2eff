package series

import (
	"errors"
	"testing"
	"time"

	"StockScope/internal/model"
)

func nyLoc(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func TestNormalize_EarningsAnnotation(t *testing.T) {
	ny := nyLoc(t)
	raw := &model.RawSeries{
		Symbol:   "AAPL",
		Period:   "1y",
		Interval: "1d",
		Bars: []model.RawBar{
			{Timestamp: time.Date(2024, 1, 5, 9, 30, 0, 0, time.UTC), Open: 100, High: 105, Low: 99, Close: 104, Volume: 1000},
		},
	}
	earnings := []time.Time{time.Date(2024, 1, 5, 16, 30, 0, 0, time.UTC)}

	ts, stats, err := NewNormalizer(ny).Normalize(raw, earnings)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if stats.Dropped != 0 || stats.Duplicates != 0 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if ts.Len() != 1 {
		t.Fatalf("expected 1 bar, got %d", ts.Len())
	}
	bar := ts.Bars[0]
	want := time.Date(2024, 1, 5, 0, 0, 0, 0, ny)
	if !bar.Date.Equal(want) {
		t.Errorf("expected date %s, got %s", want, bar.Date)
	}
	if ts.Location != ny {
		t.Errorf("expected series localized to %s, got %v", ny, ts.Location)
	}
	if !bar.HasEarningsReport {
		t.Error("expected earnings annotation on 2024-01-05")
	}
	if bar.Open != 100 || bar.High != 105 || bar.Low != 99 || bar.Close != 104 || bar.Volume != 1000 {
		t.Errorf("bar values changed: %+v", bar)
	}
}

func TestNormalize_AnnotationIsSetMembership(t *testing.T) {
	ny := nyLoc(t)
	raw := &model.RawSeries{
		Symbol: "MSFT",
		Bars: []model.RawBar{
			{Timestamp: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), Open: 10, High: 11, Low: 9, Close: 10, Volume: 1},
			{Timestamp: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), Open: 10, High: 11, Low: 9, Close: 10, Volume: 1},
			{Timestamp: time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC), Open: 10, High: 11, Low: 9, Close: 10, Volume: 1},
		},
	}
	// Unsorted, duplicated earnings stamps with differing times of day.
	earnings := []time.Time{
		time.Date(2024, 3, 6, 21, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 4, 16, 30, 0, 0, time.UTC),
	}

	ts, _, err := NewNormalizer(ny).Normalize(raw, earnings)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	got := []bool{ts.Bars[0].HasEarningsReport, ts.Bars[1].HasEarningsReport, ts.Bars[2].HasEarningsReport}
	want := []bool{true, false, true}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("bar %d: HasEarningsReport = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestNormalize_SortsAndKeepsLastDuplicate(t *testing.T) {
	ny := nyLoc(t)
	raw := &model.RawSeries{
		Symbol: "TSLA",
		Bars: []model.RawBar{
			{Timestamp: time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC), Open: 10, High: 12, Low: 9, Close: 11, Volume: 5},
			{Timestamp: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Open: 20, High: 22, Low: 19, Close: 21, Volume: 6},
			{Timestamp: time.Date(2024, 2, 2, 15, 0, 0, 0, time.UTC), Open: 30, High: 33, Low: 29, Close: 32, Volume: 7},
		},
	}

	ts, stats, err := NewNormalizer(ny).Normalize(raw, nil)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if stats.Duplicates != 1 {
		t.Errorf("expected 1 duplicate, got %d", stats.Duplicates)
	}
	if ts.Len() != 2 {
		t.Fatalf("expected 2 bars, got %d", ts.Len())
	}
	if !ts.Bars[0].Date.Before(ts.Bars[1].Date) {
		t.Error("series not strictly ascending")
	}
	// The later occurrence of 2024-02-02 wins.
	if ts.Bars[1].Close != 32 {
		t.Errorf("expected last duplicate to win, got close %v", ts.Bars[1].Close)
	}
}

func TestNormalize_DropsInvalidBars(t *testing.T) {
	ny := nyLoc(t)
	raw := &model.RawSeries{
		Symbol: "NVDA",
		Bars: []model.RawBar{
			{Timestamp: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), Open: 10, High: 11, Low: 9, Close: 10, Volume: 1},
			{Timestamp: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), Open: 10, High: 9, Low: 11, Close: 10, Volume: 1},  // low > high
			{Timestamp: time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC), Open: 10, High: 11, Low: 9, Close: 10, Volume: -1}, // negative volume
			{Timestamp: time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), Open: 20, High: 11, Low: 9, Close: 10, Volume: 1},  // open above high
		},
	}

	ts, stats, err := NewNormalizer(ny).Normalize(raw, nil)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if stats.Dropped != 3 {
		t.Errorf("expected 3 dropped bars, got %d", stats.Dropped)
	}
	if ts.Len() != 1 {
		t.Errorf("expected 1 surviving bar, got %d", ts.Len())
	}
}

func TestNormalize_EmptyInput(t *testing.T) {
	ny := nyLoc(t)
	ts, stats, err := NewNormalizer(ny).Normalize(&model.RawSeries{Symbol: "AAPL"}, nil)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if !ts.Empty() {
		t.Errorf("expected empty series, got %d bars", ts.Len())
	}
	if ts.Location == nil {
		t.Error("expected empty series to still be localized")
	}
	if stats.Dropped != 0 {
		t.Errorf("unexpected drops: %d", stats.Dropped)
	}
}

func TestNormalize_AwareInputKeepsZone(t *testing.T) {
	ny := nyLoc(t)
	raw := &model.RawSeries{
		Symbol:   "AAPL",
		Location: time.UTC,
		Bars: []model.RawBar{
			{Timestamp: time.Date(2024, 1, 5, 23, 45, 0, 0, time.UTC), Open: 10, High: 11, Low: 9, Close: 10, Volume: 1},
		},
	}
	ts, _, err := NewNormalizer(ny).Normalize(raw, nil)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if ts.Location != time.UTC {
		t.Errorf("aware input must keep its zone, got %v", ts.Location)
	}
	want := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	if !ts.Bars[0].Date.Equal(want) {
		t.Errorf("expected %s, got %s", want, ts.Bars[0].Date)
	}
}

func TestNormalize_CaseNormalizesSymbol(t *testing.T) {
	ny := nyLoc(t)
	ts, _, err := NewNormalizer(ny).Normalize(&model.RawSeries{Symbol: " aapl "}, nil)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if ts.Symbol != "AAPL" {
		t.Errorf("expected AAPL, got %q", ts.Symbol)
	}
	if _, _, err := NewNormalizer(ny).Normalize(&model.RawSeries{Symbol: "  "}, nil); err == nil {
		t.Error("expected error for empty symbol")
	}
}

func TestLocalize_SecondAttemptFails(t *testing.T) {
	ny := nyLoc(t)
	naive := &model.TimeSeries{
		Symbol: "AAPL",
		Bars:   []model.Bar{{Date: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), Open: 1, High: 1, Low: 1, Close: 1}},
	}
	localized, err := Localize(naive, ny)
	if err != nil {
		t.Fatalf("first localize: %v", err)
	}
	if _, err := Localize(localized, ny); !errors.Is(err, ErrAlreadyLocalized) {
		t.Errorf("expected ErrAlreadyLocalized, got %v", err)
	}
	// Same for a series that came out of Normalize.
	ts, _, err := NewNormalizer(ny).Normalize(&model.RawSeries{Symbol: "AAPL"}, nil)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if _, err := Localize(ts, ny); !errors.Is(err, ErrAlreadyLocalized) {
		t.Errorf("expected ErrAlreadyLocalized, got %v", err)
	}
}

func TestLocalize_DoesNotMutateInput(t *testing.T) {
	ny := nyLoc(t)
	naive := &model.TimeSeries{
		Symbol: "AAPL",
		Bars:   []model.Bar{{Date: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), Open: 1, High: 1, Low: 1, Close: 1}},
	}
	if _, err := Localize(naive, ny); err != nil {
		t.Fatalf("localize: %v", err)
	}
	if naive.Location != nil {
		t.Error("input series mutated by Localize")
	}
	if naive.Bars[0].Date.Location() != time.UTC {
		t.Error("input bar date mutated by Localize")
	}
}
