package analytics

import (
	"sort"

	"github.com/kopilka-dev/kopilka/internal/model"
)

// TopN is the length of the dashboard's top transactions list.
const TopN = 5

// Top returns up to n completed RUB operations with the largest signed
// amounts, largest first. Ties keep their original order.
func (e *Engine) Top(txns []model.Transaction, n int) []model.TopEntry {
	if n <= 0 {
		e.log.Warn().Int("size", n).Msg("top list size must be positive")
		return nil
	}

	var eligible []model.Transaction
	for _, t := range txns {
		if t.ValidRUB() {
			eligible = append(eligible, t)
		}
	}
	if len(eligible) == 0 {
		e.log.Warn().Int("transactions", len(txns)).Msg("no transactions for top list")
		return nil
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].Amount.GreaterThan(eligible[j].Amount)
	})
	if len(eligible) > n {
		eligible = eligible[:n]
	}

	top := make([]model.TopEntry, len(eligible))
	for i, t := range eligible {
		top[i] = model.TopEntry{
			Date:        t.OperationDate.Format(model.SourceDateFormat),
			Amount:      t.Amount,
			Category:    t.Category,
			Description: t.Description,
		}
	}
	return top
}
