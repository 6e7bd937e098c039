package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/kopilka-dev/kopilka/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Cashback is the 1% cashback of one operation, truncated toward zero.
func Cashback(amount decimal.Decimal) decimal.Decimal {
	return amount.Div(hundred).Truncate(0)
}

// Cards groups valid spend by card in first-seen order. Rows without a
// card number are left out.
func (e *Engine) Cards(txns []model.Transaction) []model.CardSummary {
	if len(txns) == 0 {
		e.log.Warn().Msg("no transactions for card summary")
		return nil
	}

	type acc struct {
		spent    decimal.Decimal
		cashback decimal.Decimal
	}
	groups := make(map[string]*acc)
	var order []string

	for _, t := range txns {
		if !t.ValidSpend() || t.CardID == "" {
			continue
		}
		g, ok := groups[t.CardID]
		if !ok {
			g = &acc{}
			groups[t.CardID] = g
			order = append(order, t.CardID)
		}
		g.spent = g.spent.Add(t.Amount)
		g.cashback = g.cashback.Add(Cashback(t.Amount))
	}

	cards := make([]model.CardSummary, 0, len(order))
	for _, id := range order {
		g := groups[id]
		cards = append(cards, model.CardSummary{
			LastDigits: id,
			TotalSpent: g.spent.Abs(),
			Cashback:   g.cashback.Abs(),
		})
	}
	if len(cards) == 0 {
		e.log.Warn().Int("transactions", len(txns)).Msg("no card spending found")
	}
	return cards
}
