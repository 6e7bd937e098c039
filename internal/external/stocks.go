package external

import (
	"context"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/kopilka-dev/kopilka/internal/model"
)

const stocksCacheKey = "stocks"

// StocksClient fetches the provider's full stock list with USD prices.
type StocksClient struct {
	client
}

// NewStocksClient creates a StocksClient. The API key is sent as the
// "apikey" query parameter.
func NewStocksClient(opts Options, log zerolog.Logger) *StocksClient {
	return &StocksClient{client: newClient(opts, log)}
}

type stockItem struct {
	Symbol string              `json:"symbol"`
	Price  decimal.NullDecimal `json:"price"`
}

// Fetch returns every quote with a price. Any failure is logged and
// yields nil.
func (c *StocksClient) Fetch(ctx context.Context) []model.Quote {
	if v, ok := c.cached(stocksCacheKey); ok {
		return v.([]model.Quote)
	}

	q := url.Values{}
	q.Set("apikey", c.apiKey)
	req, err := http.NewRequest(http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		c.log.Error().Err(err).Msg("building stock list request")
		return nil
	}

	var items []stockItem
	if err := c.getJSON(ctx, req, &items); err != nil {
		c.log.Error().Err(err).Msg("fetching stock list")
		return nil
	}

	quotes := make([]model.Quote, 0, len(items))
	for _, it := range items {
		if it.Symbol == "" || !it.Price.Valid {
			continue
		}
		quotes = append(quotes, model.Quote{Symbol: it.Symbol, Price: it.Price.Decimal})
	}
	if len(quotes) == 0 {
		c.log.Warn().Msg("stock list is empty")
		return nil
	}

	c.store(stocksCacheKey, quotes)
	return quotes
}
