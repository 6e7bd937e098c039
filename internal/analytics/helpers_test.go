package analytics

import (
	"bytes"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/kopilka-dev/kopilka/internal/logger"
	"github.com/kopilka-dev/kopilka/internal/model"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestEngine(t *testing.T) (*Engine, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	return NewWithClock(logger.NewWithWriter(&buf), func() time.Time {
		return time.Date(2021, 12, 31, 22, 12, 59, 0, time.Local)
	}), &buf
}

func quietEngine() *Engine {
	return New(zerolog.Nop())
}

// spend builds a completed RUB operation.
func spend(card, amount, category string, day time.Time) model.Transaction {
	return model.Transaction{
		OperationDate: day,
		PaymentDate:   day,
		Amount:        dec(amount),
		Currency:      model.CurrencyRUB,
		Status:        model.StatusOK,
		Category:      category,
		Description:   category,
		CardID:        card,
	}
}
