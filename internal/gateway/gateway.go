package gateway

import (
	"errors"
	"time"

	"StockScope/internal/model"
)

// ErrUnavailable marks a network or data-source failure. The caller decides
// whether to retry; nothing retries silently below this boundary.
var ErrUnavailable = errors.New("market data gateway unavailable")

// Gateway supplies raw bars, the earnings calendar, and company metadata for
// a symbol. Implementations map source-native payloads into the model types;
// nothing above this interface sees a library-native response shape.
type Gateway interface {
	FetchBars(symbol, period, interval string) (*model.RawSeries, error)
	FetchEarningsDates(symbol string) ([]time.Time, error)
	FetchMetadata(symbol string) (*model.Metadata, error)
	FetchCurrentPrice(symbol string) (float64, error)
	Name() string
}
