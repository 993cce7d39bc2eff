package pipeline

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"StockScope/internal/gateway"
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

func TestSnapshot_FetchAnnotateLocalize(t *testing.T) {
	ny := nyLoc(t)
	mock := &gateway.MockGateway{
		Bars: []model.RawBar{
			{Timestamp: time.Date(2024, 1, 4, 9, 30, 0, 0, time.UTC), Open: 99, High: 101, Low: 98, Close: 100, Volume: 500},
			{Timestamp: time.Date(2024, 1, 5, 9, 30, 0, 0, time.UTC), Open: 100, High: 105, Low: 99, Close: 104, Volume: 1000},
		},
		EarningsDates: []time.Time{time.Date(2024, 1, 5, 16, 30, 0, 0, time.UTC)},
	}

	ts, stats, err := New(mock, ny).Snapshot("aapl", "1y", "1d")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if ts.Symbol != "AAPL" {
		t.Errorf("expected case-normalized symbol, got %q", ts.Symbol)
	}
	if ts.Location != ny {
		t.Errorf("expected series in %s, got %v", ny, ts.Location)
	}
	if ts.Len() != 2 {
		t.Fatalf("expected 2 bars, got %d", ts.Len())
	}
	if ts.Bars[0].HasEarningsReport || !ts.Bars[1].HasEarningsReport {
		t.Errorf("earnings annotation wrong: %v %v", ts.Bars[0].HasEarningsReport, ts.Bars[1].HasEarningsReport)
	}
	if stats.Dropped != 0 {
		t.Errorf("unexpected drops: %d", stats.Dropped)
	}
}

func TestSnapshot_GatewayFailureSurfaces(t *testing.T) {
	mock := &gateway.MockGateway{
		Err: fmt.Errorf("%w: connection refused", gateway.ErrUnavailable),
	}
	_, _, err := New(mock, nyLoc(t)).Snapshot("AAPL", "1y", "1d")
	if !errors.Is(err, gateway.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable to surface, got %v", err)
	}
}

func TestSnapshot_EmptySymbol(t *testing.T) {
	if _, _, err := New(&gateway.MockGateway{}, nyLoc(t)).Snapshot("  ", "1y", "1d"); err == nil {
		t.Error("expected error for empty symbol")
	}
}

func TestMetadataAndCurrentPrice(t *testing.T) {
	mock := &gateway.MockGateway{
		Metadata: &model.Metadata{Symbol: "AAPL", CompanyName: "Apple Inc.", MarketCap: 3_000_000_000_000, Sector: "Technology", Industry: "Consumer Electronics"},
		Price:    234.56,
	}
	p := New(mock, nyLoc(t))

	md, err := p.Metadata("AAPL")
	if err != nil {
		t.Fatalf("metadata: %v", err)
	}
	if md.CompanyName != "Apple Inc." {
		t.Errorf("unexpected metadata: %+v", md)
	}
	price, err := p.CurrentPrice("AAPL")
	if err != nil {
		t.Fatalf("current price: %v", err)
	}
	if price != 234.56 {
		t.Errorf("expected 234.56, got %v", price)
	}
}
