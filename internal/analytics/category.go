package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kopilka-dev/kopilka/internal/model"
)

// WindowMonths is the length of the category report's trailing window.
const WindowMonths = 3

// MonthsBefore steps n calendar months back from t, clamping the day to
// the end of the target month: May 31 minus three months is Feb 28.
func MonthsBefore(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m-time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

// Window returns the inclusive [start, end] payment-date range for ref.
// The time of day of ref is ignored.
func Window(ref time.Time) (start, end time.Time) {
	y, m, d := ref.Date()
	end = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return MonthsBefore(end, WindowMonths), end
}

// SpendingByCategory returns the valid spend rows of category whose
// payment date lies in the trailing window ending at ref, in their
// original order. A zero ref means today.
func (e *Engine) SpendingByCategory(txns []model.Transaction, category string, ref time.Time) []model.Transaction {
	if len(txns) == 0 {
		e.log.Warn().Str("category", category).Msg("no transactions for category report")
		return nil
	}
	if ref.IsZero() {
		ref = e.now()
	}
	start, end := Window(ref)

	var rows []model.Transaction
	for _, t := range txns {
		if !t.ValidSpend() || t.Category != category || t.PaymentDate.IsZero() {
			continue
		}
		if t.PaymentDate.Before(start) || t.PaymentDate.After(end) {
			continue
		}
		rows = append(rows, t)
	}

	if len(rows) == 0 {
		e.log.Warn().
			Str("category", category).
			Time("from", start).
			Time("to", end).
			Msg("no spending in category")
	}
	return rows
}

// CategoryTotal reduces rows from SpendingByCategory to a report. It
// reports false for an empty set; zero spend is never reported as a
// zero-valued report.
func CategoryTotal(rows []model.Transaction) (model.CategoryReport, bool) {
	if len(rows) == 0 {
		return model.CategoryReport{}, false
	}
	sum := decimal.Zero
	for _, t := range rows {
		sum = sum.Add(t.Amount)
	}
	return model.CategoryReport{
		Category:   rows[0].Category,
		TotalSpent: sum.Neg(),
	}, true
}
