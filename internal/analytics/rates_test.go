package analytics

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kopilka-dev/kopilka/internal/model"
)

func TestInvertRates(t *testing.T) {
	rates, pivot := quietEngine().InvertRates([]RawRate{
		{Currency: "USD", Rate: dec("0.009393")},
		{Currency: "EUR", Rate: dec("0.008879")},
	})
	require.Len(t, rates, 2)
	assert.Equal(t, "USD", rates[0].Currency)
	assert.Equal(t, "106.46", rates[0].Rate.StringFixed(2))
	assert.Equal(t, "EUR", rates[1].Currency)
	assert.Equal(t, "112.63", rates[1].Rate.StringFixed(2))
	assert.Equal(t, "106.46", pivot.StringFixed(2))
}

func TestInvertRates_OrderPreserved(t *testing.T) {
	rates, pivot := quietEngine().InvertRates([]RawRate{
		{Currency: "EUR", Rate: dec("0.009331")},
		{Currency: "USD", Rate: dec("0.009706")},
	})
	require.Len(t, rates, 2)
	assert.Equal(t, "EUR", rates[0].Currency)
	assert.Equal(t, "107.17", rates[0].Rate.StringFixed(2))
	assert.Equal(t, "103.03", pivot.StringFixed(2))
}

func TestInvertRates_ZeroDropped(t *testing.T) {
	e, buf := newTestEngine(t)
	rates, pivot := e.InvertRates([]RawRate{{Currency: "USD", Rate: decimal.Zero}})
	assert.Empty(t, rates)
	assert.True(t, pivot.IsZero())
	assert.Contains(t, buf.String(), "zero currency rate dropped")
}

func TestInvertRates_NoUSD(t *testing.T) {
	rates, pivot := quietEngine().InvertRates([]RawRate{{Currency: "CNY", Rate: dec("0.08")}})
	require.Len(t, rates, 1)
	assert.Equal(t, "12.50", rates[0].Rate.StringFixed(2))
	assert.True(t, pivot.IsZero())
}

func TestInvertRates_Empty(t *testing.T) {
	rates, pivot := quietEngine().InvertRates(nil)
	assert.Empty(t, rates)
	assert.True(t, pivot.IsZero())
}

func TestInvertRates_RoundTrip(t *testing.T) {
	tolerance := dec("0.0001")
	for _, raw := range []string{"0.009393", "0.008879", "0.0125", "0.5", "1", "3.7"} {
		r := dec(raw)
		rates, _ := quietEngine().InvertRates([]RawRate{{Currency: "X", Rate: r}})
		require.Len(t, rates, 1)
		back := one.Div(rates[0].Rate).Round(2)
		// Precision lost to rounding the inverse is bounded by its derivative.
		bound := r.Mul(r).Mul(dec("0.005")).Add(dec("0.005")).Add(tolerance)
		assert.True(t, back.Sub(r).Abs().LessThanOrEqual(bound), "raw %s came back as %s", raw, back)
	}
}

func stockQuotes() []model.Quote {
	return []model.Quote{
		{Symbol: "PACI-WT", Price: dec("1")},
		{Symbol: "TSLA", Price: dec("2")},
		{Symbol: "SEC0.F", Price: dec("3")},
		{Symbol: "GOOGL", Price: dec("4")},
		{Symbol: "AAPL", Price: dec("5")},
	}
}

func TestConvertStockPrices(t *testing.T) {
	prices := quietEngine().ConvertStockPrices(stockQuotes(), []string{"AAPL", "GOOGL", "TSLA"}, dec("100"))
	require.Len(t, prices, 3)
	want := []struct{ symbol, price string }{
		{"AAPL", "500"},
		{"GOOGL", "400"},
		{"TSLA", "200"},
	}
	for i, w := range want {
		assert.Equal(t, w.symbol, prices[i].Symbol)
		assert.True(t, dec(w.price).Equal(prices[i].PriceLocal), "%s: got %s", w.symbol, prices[i].PriceLocal)
	}
}

func TestConvertStockPrices_Rounds(t *testing.T) {
	quotes := []model.Quote{{Symbol: "AAPL", Price: dec("189.123")}}
	prices := quietEngine().ConvertStockPrices(quotes, []string{"AAPL"}, dec("106.46"))
	require.Len(t, prices, 1)
	assert.Equal(t, "20134.03", prices[0].PriceLocal.StringFixed(2))
}

func TestConvertStockPrices_ZeroPivot(t *testing.T) {
	prices := quietEngine().ConvertStockPrices(stockQuotes(), []string{"AAPL"}, decimal.Zero)
	assert.Empty(t, prices)
}

func TestConvertStockPrices_NothingWanted(t *testing.T) {
	assert.Empty(t, quietEngine().ConvertStockPrices(stockQuotes(), nil, dec("100")))
	assert.Empty(t, quietEngine().ConvertStockPrices(nil, []string{"AAPL"}, dec("100")))
}

func TestConvertStockPrices_MissingSymbolWarns(t *testing.T) {
	e, buf := newTestEngine(t)
	prices := e.ConvertStockPrices(stockQuotes(), []string{"AAPL", "MSFT"}, dec("100"))
	require.Len(t, prices, 1)
	assert.Equal(t, "AAPL", prices[0].Symbol)
	assert.Contains(t, buf.String(), `"symbol":"MSFT"`)
}

func TestGreeting(t *testing.T) {
	e, buf := newTestEngine(t)
	assert.Equal(t, "Доброе утро", e.GreetingAt("2023-10-01 06:00:00"))
	assert.Equal(t, "Добрый день", e.GreetingAt("2023-10-01 12:00:00"))
	assert.Equal(t, "Добрый вечер", e.GreetingAt("2023-10-01 18:00:00"))
	assert.Equal(t, "Добрый вечер", e.GreetingAt("2023-10-01 23:59:59"))
	assert.Equal(t, "Доброй ночи", e.GreetingAt("2023-10-01 00:00:00"))
	assert.Empty(t, buf.String())

	assert.Equal(t, "", e.GreetingAt("01-10-2023 00:00:00"))
	assert.Contains(t, buf.String(), "bad greeting timestamp")
}
