package gateway

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"
	"github.com/shopspring/decimal"

	"StockScope/internal/model"
)

const defaultQueryURL = "https://query1.finance.yahoo.com"

// YahooConfig carries everything a YahooGateway needs. It is passed in
// explicitly; the gateway holds no process-wide state.
type YahooConfig struct {
	QueryURL   string // defaults to the public query1 host
	Timeout    time.Duration
	Proxy      string
	ExchangeTZ *time.Location
}

// YahooGateway fetches bars and real-time quotes through the Yahoo Finance
// chart API and the earnings calendar / company profile through the
// visualization and quote-summary endpoints.
type YahooGateway struct {
	client *resty.Client
	tz     *time.Location
}

// NewYahooGateway creates a gateway for the given config.
func NewYahooGateway(cfg YahooConfig) *YahooGateway {
	base := cfg.QueryURL
	if base == "" {
		base = defaultQueryURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	client := resty.New().
		SetBaseURL(base).
		SetTimeout(timeout).
		SetHeader("User-Agent", "Mozilla/5.0")
	if cfg.Proxy != "" {
		client.SetProxy(cfg.Proxy)
	}
	tz := cfg.ExchangeTZ
	if tz == nil {
		tz = time.UTC
	}
	return &YahooGateway{client: client, tz: tz}
}

func (g *YahooGateway) Name() string { return "yahoo" }

// FetchBars returns timezone-aware raw bars: Yahoo timestamps are absolute
// instants, read in the exchange timezone.
func (g *YahooGateway) FetchBars(symbol, period, interval string) (*model.RawSeries, error) {
	end := time.Now()
	start := periodStart(period, end)

	iv := datetime.OneDay
	if interval != "" && interval != "1d" {
		iv = datetime.Interval(interval)
	}
	iter := chart.Get(&chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: iv,
	})

	var bars []model.RawBar
	for iter.Next() {
		b := iter.Bar()
		bars = append(bars, model.RawBar{
			Timestamp: time.Unix(int64(b.Timestamp), 0).In(g.tz),
			Open:      price(b.Open),
			High:      price(b.High),
			Low:       price(b.Low),
			Close:     price(b.Close),
			Volume:    int64(b.Volume),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%w: yahoo chart %s: %v", ErrUnavailable, symbol, err)
	}

	return &model.RawSeries{
		Symbol:   symbol,
		Period:   period,
		Interval: interval,
		Location: g.tz,
		Bars:     bars,
	}, nil
}

// visualizationResponse is the shape of the earnings calendar endpoint.
type visualizationResponse struct {
	Finance struct {
		Result []struct {
			Documents []struct {
				Columns []struct {
					ID string `json:"id"`
				} `json:"columns"`
				Rows [][]any `json:"rows"`
			} `json:"documents"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"finance"`
}

// FetchEarningsDates returns the raw earnings-report timestamps for a symbol,
// newest first as delivered. Timestamps may carry time-of-day and are not
// deduplicated here; the normalizer canonicalizes them.
func (g *YahooGateway) FetchEarningsDates(symbol string) ([]time.Time, error) {
	body := map[string]any{
		"size":          100,
		"entityIdType":  "earnings",
		"query":         map[string]any{"operator": "eq", "operands": []any{"ticker", symbol}},
		"sortField":     "startdatetime",
		"sortType":      "DESC",
		"includeFields": []string{"ticker", "startdatetime"},
	}
	resp, err := g.client.R().
		SetQueryParams(map[string]string{"lang": "en-US", "region": "US"}).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post("/v1/finance/visualization")
	if err != nil {
		return nil, fmt.Errorf("%w: yahoo earnings %s: %v", ErrUnavailable, symbol, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("%w: yahoo earnings %s: status %d", ErrUnavailable, symbol, resp.StatusCode())
	}

	var vr visualizationResponse
	if err := json.Unmarshal(resp.Body(), &vr); err != nil {
		return nil, fmt.Errorf("%w: yahoo earnings %s: decode: %v", ErrUnavailable, symbol, err)
	}
	if vr.Finance.Error != nil {
		return nil, fmt.Errorf("%w: yahoo earnings %s: %s", ErrUnavailable, symbol, vr.Finance.Error.Description)
	}

	var dates []time.Time
	for _, res := range vr.Finance.Result {
		for _, doc := range res.Documents {
			col := -1
			for i, c := range doc.Columns {
				if c.ID == "startdatetime" {
					col = i
					break
				}
			}
			if col < 0 {
				continue
			}
			for _, row := range doc.Rows {
				if col >= len(row) {
					continue
				}
				s, ok := row[col].(string)
				if !ok {
					continue
				}
				t, err := time.Parse(time.RFC3339, s)
				if err != nil {
					continue // rows without a parseable timestamp carry no usable date
				}
				dates = append(dates, t)
			}
		}
	}
	return dates, nil
}

// quoteSummaryResponse is the shape of the company profile endpoint.
type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			AssetProfile struct {
				Sector   string `json:"sector"`
				Industry string `json:"industry"`
			} `json:"assetProfile"`
			Price struct {
				ShortName string `json:"shortName"`
				MarketCap struct {
					Raw float64 `json:"raw"`
				} `json:"marketCap"`
			} `json:"price"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// FetchMetadata returns a point-in-time company snapshot.
func (g *YahooGateway) FetchMetadata(symbol string) (*model.Metadata, error) {
	resp, err := g.client.R().
		SetQueryParam("modules", "assetProfile,price").
		Get("/v10/finance/quoteSummary/" + symbol)
	if err != nil {
		return nil, fmt.Errorf("%w: yahoo metadata %s: %v", ErrUnavailable, symbol, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("%w: yahoo metadata %s: status %d", ErrUnavailable, symbol, resp.StatusCode())
	}

	var qs quoteSummaryResponse
	if err := json.Unmarshal(resp.Body(), &qs); err != nil {
		return nil, fmt.Errorf("%w: yahoo metadata %s: decode: %v", ErrUnavailable, symbol, err)
	}
	if qs.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("%w: yahoo metadata %s: %s", ErrUnavailable, symbol, qs.QuoteSummary.Error.Description)
	}
	if len(qs.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("%w: yahoo metadata %s: no result", ErrUnavailable, symbol)
	}

	r := qs.QuoteSummary.Result[0]
	return &model.Metadata{
		Symbol:      symbol,
		CompanyName: r.Price.ShortName,
		MarketCap:   int64(r.Price.MarketCap.Raw),
		Sector:      r.AssetProfile.Sector,
		Industry:    r.AssetProfile.Industry,
		FetchedAt:   time.Now(),
	}, nil
}

// FetchCurrentPrice returns the latest regular-market price.
func (g *YahooGateway) FetchCurrentPrice(symbol string) (float64, error) {
	q, err := quote.Get(symbol)
	if err != nil {
		return 0, fmt.Errorf("%w: yahoo quote %s: %v", ErrUnavailable, symbol, err)
	}
	if q == nil {
		return 0, fmt.Errorf("%w: yahoo quote %s: no data", ErrUnavailable, symbol)
	}
	return q.RegularMarketPrice, nil
}

// price converts a chart-API decimal to the float64 the model carries.
func price(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

// periodStart maps a yfinance-style period string onto a start time.
func periodStart(period string, now time.Time) time.Time {
	switch period {
	case "5d":
		return now.AddDate(0, 0, -5)
	case "1mo":
		return now.AddDate(0, -1, 0)
	case "3mo":
		return now.AddDate(0, -3, 0)
	case "6mo":
		return now.AddDate(0, -6, 0)
	case "2y":
		return now.AddDate(-2, 0, 0)
	case "5y":
		return now.AddDate(-5, 0, 0)
	case "10y":
		return now.AddDate(-10, 0, 0)
	case "max":
		return now.AddDate(-50, 0, 0)
	default: // "1y" and anything unrecognized
		return now.AddDate(-1, 0, 0)
	}
}
