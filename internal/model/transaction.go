package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the processing status the bank reports for an operation.
type Status string

// StatusOK marks an operation the bank completed.
const StatusOK Status = "OK"

// CurrencyRUB is the only currency the spending aggregates consider.
const CurrencyRUB = "RUB"

// Date layouts: the bank export's day.month.year and ISO.
const (
	SourceDateFormat = "02.01.2006"
	ISODateFormat    = "2006-01-02"
)

// Transaction is one normalized row of the bank operations export.
type Transaction struct {
	OperationDate time.Time       // calendar date, time of day discarded
	PaymentDate   time.Time       // zero if the export left it blank
	Amount        decimal.Decimal // negative = outflow
	Currency      string
	Status        Status
	Category      string // empty if absent
	Description   string // empty if absent
	CardID        string // digits only, empty if absent
}

// ValidSpend reports whether the row counts toward spending aggregates:
// a completed RUB outflow.
func (t Transaction) ValidSpend() bool {
	return t.Status == StatusOK && t.Currency == CurrencyRUB && t.Amount.IsNegative()
}

// ValidRUB reports whether the row is a completed RUB operation of either sign.
func (t Transaction) ValidRUB() bool {
	return t.Status == StatusOK && t.Currency == CurrencyRUB
}
