package importer

import "strings"

// Column names of the bank operations export.
const (
	ColOperationDate = "Дата операции"
	ColPaymentDate   = "Дата платежа"
	ColCardNumber    = "Номер карты"
	ColStatus        = "Статус"
	ColAmount        = "Сумма операции"
	ColCurrency      = "Валюта операции"
	ColCategory      = "Категория"
	ColDescription   = "Описание"
)

// RequiredColumns must all be present for a table to normalize.
var RequiredColumns = []string{
	ColOperationDate,
	ColPaymentDate,
	ColCardNumber,
	ColStatus,
	ColAmount,
	ColCurrency,
	ColCategory,
	ColDescription,
}

// Table is raw tabular data: a header row and string cells.
type Table struct {
	Header []string
	Rows   [][]string
}

// Empty reports whether the table has no data rows.
func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

// index maps trimmed header names to column positions. The first
// occurrence of a duplicated name wins.
func (t Table) index() map[string]int {
	idx := make(map[string]int, len(t.Header))
	for i, name := range t.Header {
		name = strings.TrimSpace(name)
		if _, ok := idx[name]; !ok {
			idx[name] = i
		}
	}
	return idx
}

// cell returns row[col], or "" when the row is short.
func cell(row []string, col int) string {
	if col < len(row) {
		return strings.TrimSpace(row[col])
	}
	return ""
}
