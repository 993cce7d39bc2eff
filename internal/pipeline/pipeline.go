// Package pipeline wires the market data gateway to the series normalizer.
package pipeline

import (
	"fmt"
	"time"

	"StockScope/internal/gateway"
	"StockScope/internal/model"
	"StockScope/internal/series"
)

// Pipeline produces annotated time series for one symbol at a time. Each call
// is independent; callers may run pipelines for unrelated symbols
// concurrently.
type Pipeline struct {
	Gateway    gateway.Gateway
	Normalizer *series.Normalizer
}

// New creates a Pipeline fetching through gw and normalizing into exchangeTZ.
func New(gw gateway.Gateway, exchangeTZ *time.Location) *Pipeline {
	return &Pipeline{
		Gateway:    gw,
		Normalizer: series.NewNormalizer(exchangeTZ),
	}
}

// Snapshot fetches bars and the earnings calendar for symbol and returns the
// normalized, earnings-annotated series. Gateway failures surface unretried;
// per-bar validation drops are reported in Stats.
func (p *Pipeline) Snapshot(symbol, period, interval string) (*model.TimeSeries, *series.Stats, error) {
	symbol, err := model.NormalizeSymbol(symbol)
	if err != nil {
		return nil, nil, err
	}

	raw, err := p.Gateway.FetchBars(symbol, period, interval)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch bars: %w", err)
	}
	earnings, err := p.Gateway.FetchEarningsDates(symbol)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch earnings dates: %w", err)
	}
	return p.Normalizer.Normalize(raw, earnings)
}

// Metadata fetches the company snapshot for symbol.
func (p *Pipeline) Metadata(symbol string) (*model.Metadata, error) {
	symbol, err := model.NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	md, err := p.Gateway.FetchMetadata(symbol)
	if err != nil {
		return nil, fmt.Errorf("fetch metadata: %w", err)
	}
	return md, nil
}

// CurrentPrice fetches the latest price for symbol.
func (p *Pipeline) CurrentPrice(symbol string) (float64, error) {
	symbol, err := model.NormalizeSymbol(symbol)
	if err != nil {
		return 0, err
	}
	price, err := p.Gateway.FetchCurrentPrice(symbol)
	if err != nil {
		return 0, fmt.Errorf("fetch current price: %w", err)
	}
	return price, nil
}
