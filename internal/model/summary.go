package model

import "github.com/shopspring/decimal"

func init() {
	// Aggregates are rendered as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// CardSummary is the spend rollup for one card.
type CardSummary struct {
	LastDigits string          `json:"last_digits"`
	TotalSpent decimal.Decimal `json:"total_spent"`
	Cashback   decimal.Decimal `json:"cashback"`
}

// TopEntry is one row of the top transactions list.
type TopEntry struct {
	Date        string          `json:"date"` // DD.MM.YYYY
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
}

// CategoryReport is the spend total of one category over the trailing window.
type CategoryReport struct {
	Category   string          `json:"category"`
	TotalSpent decimal.Decimal `json:"total_spent"`
}

// RateEntry is the RUB price of one unit of a foreign currency.
type RateEntry struct {
	Currency string          `json:"currency"`
	Rate     decimal.Decimal `json:"rate"`
}

// Quote is a stock price in USD as the quote provider reports it.
type Quote struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
}

// StockQuote is a stock price converted to RUB.
type StockQuote struct {
	Symbol     string          `json:"stock"`
	PriceLocal decimal.Decimal `json:"price"`
}
