package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/kopilka-dev/kopilka/internal/model"
)

// PivotCurrency is the currency stock quotes are priced in.
const PivotCurrency = "USD"

var one = decimal.NewFromInt(1)

// RawRate is a provider rate: units of Currency per one RUB.
type RawRate struct {
	Currency string
	Rate     decimal.Decimal
}

// InvertRates turns per-RUB rates into RUB-per-unit rates rounded to
// kopecks, keeping the provider's order. Zero rates are dropped. The
// second result is the USD rate, or zero when USD is absent.
func (e *Engine) InvertRates(raw []RawRate) ([]model.RateEntry, decimal.Decimal) {
	if len(raw) == 0 {
		e.log.Warn().Msg("no currency rates received")
		return nil, decimal.Zero
	}

	rates := make([]model.RateEntry, 0, len(raw))
	pivot := decimal.Zero
	for _, r := range raw {
		if r.Rate.IsZero() {
			e.log.Warn().Str("currency", r.Currency).Msg("zero currency rate dropped")
			continue
		}
		entry := model.RateEntry{Currency: r.Currency, Rate: one.Div(r.Rate).Round(2)}
		if entry.Currency == PivotCurrency {
			pivot = entry.Rate
		}
		rates = append(rates, entry)
	}

	if pivot.IsZero() {
		e.log.Warn().Msg("no USD rate among currency rates")
	}
	return rates, pivot
}

// ConvertStockPrices prices the wanted symbols in RUB using the USD pivot
// rate, sorted by symbol. Wanted symbols absent from quotes are skipped.
func (e *Engine) ConvertStockPrices(quotes []model.Quote, wanted []string, pivot decimal.Decimal) []model.StockQuote {
	switch {
	case pivot.IsZero():
		e.log.Warn().Msg("no USD rate to convert stock prices")
		return nil
	case len(wanted) == 0:
		e.log.Warn().Msg("no stocks selected")
		return nil
	case len(quotes) == 0:
		e.log.Warn().Msg("no stock quotes received")
		return nil
	}

	want := make(map[string]bool, len(wanted))
	for _, s := range wanted {
		want[s] = false
	}

	var prices []model.StockQuote
	for _, q := range quotes {
		if _, ok := want[q.Symbol]; !ok {
			continue
		}
		want[q.Symbol] = true
		prices = append(prices, model.StockQuote{
			Symbol:     q.Symbol,
			PriceLocal: q.Price.Mul(pivot).Round(2),
		})
	}

	for _, s := range wanted {
		if !want[s] {
			e.log.Warn().Str("symbol", s).Msg("no quote for selected stock")
		}
	}

	sort.SliceStable(prices, func(i, j int) bool {
		return prices[i].Symbol < prices[j].Symbol
	})
	return prices
}
