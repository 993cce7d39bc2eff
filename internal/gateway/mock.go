package gateway

import (
	"time"

	"StockScope/internal/model"
)

// MockGateway returns controllable fixed data for development and testing.
type MockGateway struct {
	Bars          []model.RawBar
	BarLocation   *time.Location // nil mimics a timezone-naive source
	EarningsDates []time.Time
	Metadata      *model.Metadata
	Price         float64
	Err           error // returned by every fetch when set
}

func (m *MockGateway) Name() string { return "mock" }

func (m *MockGateway) FetchBars(symbol, period, interval string) (*model.RawSeries, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return &model.RawSeries{
		Symbol:   symbol,
		Period:   period,
		Interval: interval,
		Location: m.BarLocation,
		Bars:     m.Bars,
	}, nil
}

func (m *MockGateway) FetchEarningsDates(symbol string) ([]time.Time, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.EarningsDates, nil
}

func (m *MockGateway) FetchMetadata(symbol string) (*model.Metadata, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Metadata != nil {
		return m.Metadata, nil
	}
	return &model.Metadata{Symbol: symbol, FetchedAt: time.Now()}, nil
}

func (m *MockGateway) FetchCurrentPrice(symbol string) (float64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	return m.Price, nil
}
