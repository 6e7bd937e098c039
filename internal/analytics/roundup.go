package analytics

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kopilka-dev/kopilka/internal/model"
)

// DefaultRoundLimit is the round-up threshold used when the caller passes
// a non-positive limit.
const DefaultRoundLimit = 50

// remainderPattern matches up to two digits on each side of the decimal point.
var remainderPattern = regexp.MustCompile(`\d{1,2}\.\d{1,2}`)

// InvestmentInput is the part of an operation the round-up calculator
// reads. An empty Date or an invalid Amount marks a missing field.
type InvestmentInput struct {
	Date   string // YYYY-MM-DD
	Amount decimal.NullDecimal
}

// InvestmentInputs extracts round-up inputs from the valid spend rows.
func InvestmentInputs(txns []model.Transaction) []InvestmentInput {
	var inputs []InvestmentInput
	for _, t := range txns {
		if !t.ValidSpend() {
			continue
		}
		inputs = append(inputs, InvestmentInput{
			Date:   t.OperationDate.Format(model.ISODateFormat),
			Amount: decimal.NewNullDecimal(t.Amount),
		})
	}
	return inputs
}

// Remainder extracts the sub-hundred tail of |amount|: up to two integer
// digits before the point and up to two after, taken from the shortest
// decimal form with at least one fractional digit. 1020.20 gives 20.2,
// 101 gives 1.0. It reports false when no such tail exists.
func Remainder(amount decimal.Decimal) (decimal.Decimal, bool) {
	s := amount.Abs().String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	m := remainderPattern.FindString(s)
	if m == "" {
		return decimal.Zero, false
	}
	return decimal.RequireFromString(m), true
}

// RoundUp is the contribution needed to lift remainder frac to the next
// threshold: limit when 0 < frac < limit, 100 when limit < frac < 100.
// A remainder of zero, exactly limit, or 100 and above contributes
// nothing.
func RoundUp(frac decimal.Decimal, limit int) decimal.Decimal {
	l := decimal.NewFromInt(int64(limit))
	switch {
	case frac.IsPositive() && frac.LessThan(l):
		return l.Sub(frac).Round(2)
	case frac.GreaterThan(l) && frac.LessThan(hundred):
		return hundred.Sub(frac).Round(2)
	default:
		return decimal.Zero
	}
}

// Investment sums the round-up contributions of the operations dated in
// month ("YYYY-MM"). Zero is returned both when nothing matched and when
// every match contributed nothing.
func (e *Engine) Investment(month string, inputs []InvestmentInput, limit int) decimal.Decimal {
	if len(inputs) == 0 {
		e.log.Warn().Msg("no transactions for investment")
		return decimal.Zero
	}
	if limit <= 0 {
		limit = DefaultRoundLimit
	}
	if limit >= 100 {
		e.log.Warn().Int("limit", limit).Msg("round limit at or above 100 only rounds up to the limit")
	}

	total := decimal.Zero
	for i, in := range inputs {
		if in.Date == "" {
			e.log.Warn().Int("index", i).Msg("transaction has no operation date, skipped")
			continue
		}
		if !strings.Contains(in.Date, month) {
			continue
		}
		if !in.Amount.Valid {
			e.log.Warn().Int("index", i).Str("date", in.Date).Msg("transaction has no amount, skipped")
			continue
		}
		frac, ok := Remainder(in.Amount.Decimal)
		if !ok {
			continue
		}
		total = total.Add(RoundUp(frac, limit))
	}

	if total.IsZero() {
		e.log.Warn().Str("month", month).Msg("month has no data to invest")
	}
	return total
}
