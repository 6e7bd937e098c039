package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/kopilka-dev/kopilka/internal/analytics"
)

// RatesClient fetches the latest rates of selected currencies against RUB.
type RatesClient struct {
	client
}

// NewRatesClient creates a RatesClient. The API key is sent in the
// "apikey" header.
func NewRatesClient(opts Options, log zerolog.Logger) *RatesClient {
	return &RatesClient{client: newClient(opts, log)}
}

type ratesResponse struct {
	Rates orderedRates `json:"rates"`
}

// orderedRates decodes a JSON object of currency -> rate keeping the key
// order. Currencies with a null rate are collected in Null.
type orderedRates struct {
	Rates []analytics.RawRate
	Null  []string
}

func (o *orderedRates) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*o = orderedRates{}
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("rates: expected object, got %v", tok)
	}

	var out orderedRates
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		code, _ := keyTok.(string)

		var num *json.Number
		if err := dec.Decode(&num); err != nil {
			return fmt.Errorf("rates: %s: %w", code, err)
		}
		if num == nil {
			out.Null = append(out.Null, code)
			continue
		}
		rate, err := decimal.NewFromString(num.String())
		if err != nil {
			return fmt.Errorf("rates: %s: %w", code, err)
		}
		out.Rates = append(out.Rates, analytics.RawRate{Currency: code, Rate: rate})
	}
	*o = out
	return nil
}

// Fetch returns the provider's rates for codes with RUB as base, in the
// provider's order. Any failure is logged and yields nil.
func (c *RatesClient) Fetch(ctx context.Context, codes []string) []analytics.RawRate {
	if len(codes) == 0 {
		c.log.Warn().Msg("no currencies selected")
		return nil
	}

	q := url.Values{}
	q.Set("base", "RUB")
	q.Set("symbols", strings.Join(codes, ","))
	key := "rates:" + q.Encode()
	if v, ok := c.cached(key); ok {
		return v.([]analytics.RawRate)
	}

	req, err := http.NewRequest(http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		c.log.Error().Err(err).Msg("building currency rates request")
		return nil
	}
	req.Header.Set("apikey", c.apiKey)

	var resp ratesResponse
	if err := c.getJSON(ctx, req, &resp); err != nil {
		c.log.Error().Err(err).Msg("fetching currency rates")
		return nil
	}
	for _, code := range resp.Rates.Null {
		c.log.Warn().Str("currency", code).Msg("null currency rate skipped")
	}
	rates := resp.Rates.Rates
	if len(rates) == 0 {
		c.log.Warn().Msg("currency rates response has no rates")
		return nil
	}

	c.store(key, rates)
	return rates
}
